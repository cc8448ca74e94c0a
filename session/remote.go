package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/janhq/sessions/conversation"
	"github.com/janhq/sessions/convert"
)

const (
	defaultPageSize     = 100
	maxItemsPerAppend   = 20
	defaultHTTPTimeout  = 30 * time.Second
	conversationsPrefix = "/v1/conversations"
)

// RemoteStore keeps session history in a conversation backend over REST.
// By default the backing session is provisioned lazily on first use; after
// ClearSession the store forgets its id, so the next operation provisions a
// fresh session.
type RemoteStore struct {
	client        *resty.Client
	pageSize      int
	lazyProvision bool

	mu        sync.Mutex
	sessionID string
}

var _ Store = (*RemoteStore)(nil)

// RemoteOption configures a RemoteStore.
type RemoteOption func(*RemoteStore)

// WithSessionID attaches the store to an existing backend session instead of
// provisioning a new one.
func WithSessionID(id string) RemoteOption {
	return func(s *RemoteStore) { s.sessionID = id }
}

// WithPageSize sets how many items each list request asks for.
func WithPageSize(n int) RemoteOption {
	return func(s *RemoteStore) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithoutLazyProvisioning makes operations fail with
// SessionNotProvisionedError instead of creating a session on demand.
func WithoutLazyProvisioning() RemoteOption {
	return func(s *RemoteStore) { s.lazyProvision = false }
}

// WithAPIKey sends the key as a bearer token on every request.
func WithAPIKey(key string) RemoteOption {
	return func(s *RemoteStore) { s.client.SetHeader("Authorization", "Bearer "+key) }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) RemoteOption {
	return func(s *RemoteStore) { s.client.SetTimeout(d) }
}

// WithRetries retries failed requests up to count times with exponential
// backoff. Requests are retried on transport errors and 5xx responses.
func WithRetries(count int) RemoteOption {
	return func(s *RemoteStore) {
		s.client.
			SetRetryCount(count).
			SetRetryWaitTime(500 * time.Millisecond).
			SetRetryMaxWaitTime(5 * time.Second).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || r.StatusCode() >= 500
			})
	}
}

// NewRemoteStore creates a store backed by the conversation API at baseURL.
func NewRemoteStore(baseURL string, opts ...RemoteOption) *RemoteStore {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(defaultHTTPTimeout)

	s := &RemoteStore{
		client:        client,
		pageSize:      defaultPageSize,
		lazyProvision: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ===============================================
// Wire payloads
// ===============================================

type conversationPayload struct {
	ID string `json:"id"`
}

type itemListPayload struct {
	Object  string                 `json:"object"`
	Data    []convert.ResponseItem `json:"data"`
	FirstID string                 `json:"first_id"`
	LastID  string                 `json:"last_id"`
	HasMore bool                   `json:"has_more"`
}

type appendItemsPayload struct {
	Items []convert.ResponseItem `json:"items"`
}

// ===============================================
// Store implementation
// ===============================================

func (s *RemoteStore) SessionID(ctx context.Context) (string, error) {
	return s.ensureSession(ctx, "get session id")
}

func (s *RemoteStore) ensureSession(ctx context.Context, op string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessionID != "" {
		return s.sessionID, nil
	}
	if !s.lazyProvision {
		return "", &SessionNotProvisionedError{Op: op}
	}

	var created conversationPayload
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"items": []any{}}).
		SetResult(&created).
		Post(conversationsPrefix)
	if err != nil {
		return "", &BackendRequestError{Op: "create session", Err: err}
	}
	if resp.IsError() {
		return "", &BackendRequestError{Op: "create session", StatusCode: resp.StatusCode()}
	}

	s.sessionID = created.ID
	return s.sessionID, nil
}

func (s *RemoteStore) GetItems(ctx context.Context, limit *int) ([]conversation.Item, error) {
	if limit != nil && *limit <= 0 {
		return []conversation.Item{}, nil
	}

	sessionID, err := s.ensureSession(ctx, "get items")
	if err != nil {
		return nil, err
	}

	if limit == nil {
		return s.getAllItems(ctx, sessionID)
	}
	return s.getLatestItems(ctx, sessionID, *limit)
}

// getAllItems walks ascending pages until the backend reports no more.
func (s *RemoteStore) getAllItems(ctx context.Context, sessionID string) ([]conversation.Item, error) {
	var wire []convert.ResponseItem
	after := ""
	for {
		page, err := s.listItems(ctx, sessionID, "asc", s.pageSize, after)
		if err != nil {
			return nil, err
		}
		wire = append(wire, page.Data...)
		if !page.HasMore || page.LastID == "" {
			break
		}
		after = page.LastID
	}
	return convert.FromResponses(wire)
}

// getLatestItems walks descending pages until limit items are collected,
// then reverses back into chronological order.
func (s *RemoteStore) getLatestItems(ctx context.Context, sessionID string, limit int) ([]conversation.Item, error) {
	var wire []convert.ResponseItem
	after := ""
	for len(wire) < limit {
		pageSize := s.pageSize
		if remaining := limit - len(wire); remaining < pageSize {
			pageSize = remaining
		}
		page, err := s.listItems(ctx, sessionID, "desc", pageSize, after)
		if err != nil {
			return nil, err
		}
		wire = append(wire, page.Data...)
		if !page.HasMore || page.LastID == "" {
			break
		}
		after = page.LastID
	}
	if len(wire) > limit {
		wire = wire[:limit]
	}
	for i, j := 0, len(wire)-1; i < j; i, j = i+1, j-1 {
		wire[i], wire[j] = wire[j], wire[i]
	}
	return convert.FromResponses(wire)
}

func (s *RemoteStore) listItems(ctx context.Context, sessionID, order string, limit int, after string) (*itemListPayload, error) {
	var page itemListPayload
	req := s.client.R().
		SetContext(ctx).
		SetQueryParam("order", order).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetResult(&page)
	if after != "" {
		req.SetQueryParam("after", after)
	}
	resp, err := req.Get(fmt.Sprintf("%s/%s/items", conversationsPrefix, sessionID))
	if err != nil {
		return nil, &BackendRequestError{Op: "list items", Err: err}
	}
	if resp.IsError() {
		return nil, &BackendRequestError{Op: "list items", StatusCode: resp.StatusCode()}
	}
	return &page, nil
}

// AddItems appends items in order. The backend caps one append request at
// maxItemsPerAppend items, so larger batches are split across sequential
// requests; atomicity holds per request, not per call. If a later chunk
// fails, the earlier chunks stay appended.
func (s *RemoteStore) AddItems(ctx context.Context, items []conversation.Item) error {
	if len(items) == 0 {
		return nil
	}

	sessionID, err := s.ensureSession(ctx, "add items")
	if err != nil {
		return err
	}

	wire, err := convert.ToResponses(items)
	if err != nil {
		return err
	}

	for start := 0; start < len(wire); start += maxItemsPerAppend {
		end := start + maxItemsPerAppend
		if end > len(wire) {
			end = len(wire)
		}
		resp, err := s.client.R().
			SetContext(ctx).
			SetBody(appendItemsPayload{Items: wire[start:end]}).
			Post(fmt.Sprintf("%s/%s/items", conversationsPrefix, sessionID))
		if err != nil {
			return &BackendRequestError{Op: "add items", Err: err}
		}
		if resp.IsError() {
			return &BackendRequestError{Op: "add items", StatusCode: resp.StatusCode()}
		}
	}
	return nil
}

// PopItem reads the newest item and then deletes it. The two steps are not
// atomic: a concurrent append between them can make this delete an item other
// than the one returned.
func (s *RemoteStore) PopItem(ctx context.Context) (conversation.Item, error) {
	sessionID, err := s.ensureSession(ctx, "pop item")
	if err != nil {
		return nil, err
	}

	page, err := s.listItems(ctx, sessionID, "desc", 1, "")
	if err != nil {
		return nil, err
	}
	if len(page.Data) == 0 {
		return nil, nil
	}

	newest := page.Data[0]
	itemID := wireItemID(newest)
	if itemID != "" {
		resp, err := s.client.R().
			SetContext(ctx).
			Delete(fmt.Sprintf("%s/%s/items/%s", conversationsPrefix, sessionID, itemID))
		if err != nil {
			return nil, &BackendRequestError{Op: "delete item", Err: err}
		}
		if resp.IsError() {
			return nil, &BackendRequestError{Op: "delete item", StatusCode: resp.StatusCode()}
		}
	}

	items, err := convert.FromResponses([]convert.ResponseItem{newest})
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

// ClearSession deletes the backend session and forgets its id. The next
// operation provisions a brand-new session.
func (s *RemoteStore) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()

	if sessionID == "" {
		return nil
	}

	resp, err := s.client.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("%s/%s", conversationsPrefix, sessionID))
	if err != nil {
		return &BackendRequestError{Op: "delete session", Err: err}
	}
	if resp.IsError() {
		return &BackendRequestError{Op: "delete session", StatusCode: resp.StatusCode()}
	}

	s.mu.Lock()
	s.sessionID = ""
	s.mu.Unlock()
	return nil
}

func wireItemID(item convert.ResponseItem) string {
	if item.ID != "" {
		return item.ID
	}
	if id, ok := item.Extra["id"].(string); ok {
		return id
	}
	return ""
}
