package session

import "fmt"

// BackendRequestError reports a failed request to the remote conversation
// backend. StatusCode is zero when the request never produced a response.
type BackendRequestError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *BackendRequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("session backend: %s failed with status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("session backend: %s failed: %v", e.Op, e.Err)
}

func (e *BackendRequestError) Unwrap() error {
	return e.Err
}

// SessionNotProvisionedError is returned by a remote store that was built
// without lazy provisioning when an operation needs a session that does not
// exist yet.
type SessionNotProvisionedError struct {
	Op string
}

func (e *SessionNotProvisionedError) Error() string {
	return fmt.Sprintf("session backend: %s requires a provisioned session", e.Op)
}
