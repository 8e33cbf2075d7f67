// Package fallback picks a canned or image reply when the index has nothing to say.
package fallback

import (
	"context"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/atango/internal/domain/message"
	"github.com/kailas-cloud/atango/internal/usecase/image"
)

// Decision is the chosen message and the branch that chose it.
type Decision struct {
	Message message.Outbound
	Branch  string
}

// Selector applies the rule table, then the image lookup, then filler.
type Selector struct {
	rules  []Rule
	filler []string
	images ImageFinder
	pick   Picker
	logger *zap.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithPicker overrides the random index source.
func WithPicker(p Picker) Option {
	return func(s *Selector) { s.pick = p }
}

// WithRules replaces the rule table.
func WithRules(rules []Rule) Option {
	return func(s *Selector) { s.rules = rules }
}

// New creates a Selector. images may be nil, which disables the image branch.
func New(replies Replies, images ImageFinder, logger *zap.Logger, opts ...Option) *Selector {
	replies = replies.WithDefaults()
	s := &Selector{
		rules:  Rules(replies),
		filler: replies.Filler,
		images: images,
		pick:   rand.IntN,
		logger: logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Select never fails: image lookup errors degrade to filler.
func (s *Selector) Select(ctx context.Context, utterance string) Decision {
	for _, r := range s.rules {
		if len(r.Replies) > 0 && r.Match(utterance) {
			return s.text(r.Name, r.Replies)
		}
	}

	if s.images != nil {
		q := strings.TrimSpace(StripEmoticons(utterance))
		res := s.images.Find(ctx, q)
		switch res.Outcome() {
		case image.OutcomeFound:
			return Decision{Message: message.Image(res.URL(), res.URL()), Branch: BranchImage}
		case image.OutcomeError:
			s.logger.Warn("Image lookup failed, falling back to filler",
				zap.String("query", q),
				zap.Error(res.Err()),
			)
		}
	}

	return s.text(BranchFiller, s.filler)
}

func (s *Selector) text(branch string, set []string) Decision {
	return Decision{Message: message.Text(set[s.pick(len(set))]), Branch: branch}
}
