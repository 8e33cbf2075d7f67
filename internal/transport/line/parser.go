package line

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/kailas-cloud/atango/internal/domain"
	"github.com/kailas-cloud/atango/internal/domain/event"
)

// Parser verifies and decodes webhook deliveries.
type Parser struct {
	secret string
}

// NewParser creates a Parser for the channel secret.
func NewParser(channelSecret string) (*Parser, error) {
	if channelSecret == "" {
		return nil, fmt.Errorf("channel secret is required")
	}
	return &Parser{secret: channelSecret}, nil
}

// Parse checks the X-Line-Signature HMAC and converts the events.
func (p *Parser) Parse(r *http.Request) ([]event.Event, error) {
	cb, err := webhook.ParseRequest(p.secret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			return nil, domain.ErrInvalidSignature
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedRequest, err)
	}

	events := make([]event.Event, 0, len(cb.Events))
	for _, e := range cb.Events {
		events = append(events, convert(e))
	}
	return events, nil
}

func convert(e webhook.EventInterface) event.Event {
	switch ev := e.(type) {
	case webhook.MessageEvent:
		out := event.Event{Type: event.TypeMessage, ReplyToken: ev.ReplyToken}
		switch m := ev.Message.(type) {
		case webhook.TextMessageContent:
			out.MessageType = event.MessageText
			out.Text = m.Text
		case nil:
		default:
			out.MessageType = m.GetType()
		}
		return out
	default:
		return event.Event{Type: e.GetType()}
	}
}
