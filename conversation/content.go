package conversation

// ===============================================
// Content Parts
// ===============================================

// ContentPart is one typed fragment of a message's content.
type ContentPart interface {
	// PartType returns the wire-level content tag.
	PartType() string
	clonePart() ContentPart
}

// TextPart is plain text. The converter decides between the input and output
// tag based on the enclosing message's role.
type TextPart struct {
	Text string
}

func (p *TextPart) PartType() string      { return "text" }
func (p *TextPart) clonePart() ContentPart { c := *p; return &c }

// RefusalPart carries an assistant refusal.
type RefusalPart struct {
	Refusal string
}

func (p *RefusalPart) PartType() string      { return "refusal" }
func (p *RefusalPart) clonePart() ContentPart { c := *p; return &c }

// ImagePart references an image by URL or by a stable file identifier.
// At least one of URL and FileID must be set for conversion to succeed.
type ImagePart struct {
	URL    string
	FileID string
	Detail string
}

func (p *ImagePart) PartType() string      { return "image" }
func (p *ImagePart) clonePart() ContentPart { c := *p; return &c }

// FilePart is a file attachment: inline base64 data, a URL, or a stable file
// identifier. At least one source must be set for conversion to succeed.
type FilePart struct {
	Data     string
	URL      string
	FileID   string
	Filename string
}

func (p *FilePart) PartType() string      { return "file" }
func (p *FilePart) clonePart() ContentPart { c := *p; return &c }

// AudioPart is inline audio data with its encoding format.
type AudioPart struct {
	ID         string
	Data       string
	Format     string
	Transcript string
}

func (p *AudioPart) PartType() string      { return "audio" }
func (p *AudioPart) clonePart() ContentPart { c := *p; return &c }

// Text is a convenience constructor for a single-text-part content list.
func Text(s string) []ContentPart {
	return []ContentPart{&TextPart{Text: s}}
}
