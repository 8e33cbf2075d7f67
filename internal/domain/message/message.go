// Package message defines the single outbound reply produced per incoming event.
package message

// Kind discriminates the outbound message variant.
type Kind string

const (
	// KindText is a plain text reply.
	KindText Kind = "text"
	// KindImage is an image reply with a preview.
	KindImage Kind = "image"
)

// Outbound is either a text or an image message, never both.
// Construct it with Text or Image.
type Outbound struct {
	kind       Kind
	body       string
	url        string
	previewURL string
}

// Text creates a text message.
func Text(body string) Outbound {
	return Outbound{kind: KindText, body: body}
}

// Image creates an image message.
func Image(url, previewURL string) Outbound {
	return Outbound{kind: KindImage, url: url, previewURL: previewURL}
}

// Kind returns the message variant.
func (m Outbound) Kind() Kind { return m.kind }

// Body returns the text body (empty for images).
func (m Outbound) Body() string { return m.body }

// URL returns the original content URL (empty for text).
func (m Outbound) URL() string { return m.url }

// PreviewURL returns the preview image URL (empty for text).
func (m Outbound) PreviewURL() string { return m.previewURL }

// IsZero reports whether the message was never constructed.
func (m Outbound) IsZero() bool { return m.kind == "" }

// String returns a short debug representation.
func (m Outbound) String() string {
	switch m.kind {
	case KindText:
		return "text(" + m.body + ")"
	case KindImage:
		return "image(" + m.url + ")"
	default:
		return "empty"
	}
}
