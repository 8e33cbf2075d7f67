package dispatch

import (
	"context"

	"github.com/kailas-cloud/atango/internal/domain/message"
	"github.com/kailas-cloud/atango/internal/usecase/reply"
)

// Responder selects the reply to one utterance.
type Responder interface {
	Respond(ctx context.Context, utterance string) (reply.Response, error)
}

// Messenger delivers a reply to the platform.
type Messenger interface {
	Reply(ctx context.Context, replyToken string, m message.Outbound) error
}
