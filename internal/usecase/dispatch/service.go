// Package dispatch answers each text message of a webhook batch.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/atango/internal/domain"
	"github.com/kailas-cloud/atango/internal/domain/event"
	"github.com/kailas-cloud/atango/internal/logger"
	"github.com/kailas-cloud/atango/internal/metrics"
	"github.com/kailas-cloud/atango/internal/usecase/reply"
)

// DefaultTimeout bounds one reply delivery.
const DefaultTimeout = 5 * time.Second

// Dispatcher processes events in order, one reply per text message.
type Dispatcher struct {
	responder Responder
	messenger Messenger
	timeout   time.Duration
}

// New creates a Dispatcher.
func New(r Responder, m Messenger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{responder: r, messenger: m, timeout: timeout}
}

// Handle answers the batch. A search failure stops the batch and is returned as is.
// Delivery failures are isolated per event and joined after the batch.
func (d *Dispatcher) Handle(ctx context.Context, events []event.Event) error {
	var failed []error
	for i, ev := range events {
		evCtx, log := logger.With(ctx, zap.Int("event", i))

		if !ev.IsTextMessage() {
			log.Debug("Skipping event",
				zap.String("type", ev.Type),
				zap.String("message_type", ev.MessageType),
			)
			continue
		}

		start := time.Now()
		resp, err := d.responder.Respond(evCtx, ev.Text)
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}

		if err := d.reply(evCtx, ev.ReplyToken, resp); err != nil {
			metrics.DispatchTotal.WithLabelValues(metrics.StatusError).Inc()
			log.Error("Reply delivery failed",
				zap.String("branch", resp.Branch),
				zap.Error(err),
			)
			failed = append(failed, &domain.DispatchError{ReplyToken: ev.ReplyToken, Err: err})
			continue
		}
		metrics.DispatchTotal.WithLabelValues(metrics.StatusOK).Inc()

		log.Info("reply_selected",
			zap.String("branch", resp.Branch),
			zap.String("kind", string(resp.Message.Kind())),
			zap.Duration("latency", time.Since(start)),
		)
	}

	return errors.Join(failed...)
}

func (d *Dispatcher) reply(ctx context.Context, token string, resp reply.Response) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.messenger.Reply(ctx, token, resp.Message) //nolint:wrapcheck // wrapped in DispatchError
}
