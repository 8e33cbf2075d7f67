// Package event is the platform-neutral view of one webhook event.
package event

// Event types the dispatcher distinguishes.
const (
	TypeMessage = "message"
	// MessageText is the only message content the bot answers.
	MessageText = "text"
)

// Event is one entry of a webhook batch.
type Event struct {
	Type        string // "message", "follow", "unfollow", ...
	ReplyToken  string
	MessageType string // "text", "sticker", ... (message events only)
	Text        string
}

// IsTextMessage reports whether the event should be answered.
func (e Event) IsTextMessage() bool {
	return e.Type == TypeMessage && e.MessageType == MessageText
}
