// Package reply selects the single response to a user utterance.
package reply

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/atango/internal/domain"
	"github.com/kailas-cloud/atango/internal/domain/message"
	"github.com/kailas-cloud/atango/internal/domain/query"
	domreply "github.com/kailas-cloud/atango/internal/domain/reply"
	"github.com/kailas-cloud/atango/internal/metrics"
)

// BranchSearch marks replies taken from the index.
const BranchSearch = "search"

// DefaultSearchTimeout bounds one index lookup.
const DefaultSearchTimeout = 5 * time.Second

// DefaultRewrites is applied to every utterance before anything else.
func DefaultRewrites() map[string]string {
	return map[string]string{"ぁ単語": "貴殿"}
}

// Response is the chosen message plus the branch that produced it.
type Response struct {
	Message message.Outbound
	Branch  string
}

// Config tunes the engine.
type Config struct {
	Query         query.Options
	Rewrites      map[string]string
	SearchTimeout time.Duration
	// Driver labels search metrics.
	Driver string
}

// Engine turns an utterance into exactly one outbound message.
type Engine struct {
	searcher Searcher
	selector Selector
	rewriter *strings.Replacer
	cfg      Config
	logger   *zap.Logger
}

// New creates an Engine.
func New(s Searcher, sel Selector, cfg Config, logger *zap.Logger) *Engine {
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = DefaultSearchTimeout
	}
	if cfg.Rewrites == nil {
		cfg.Rewrites = DefaultRewrites()
	}
	return &Engine{
		searcher: s,
		selector: sel,
		rewriter: newRewriter(cfg.Rewrites),
		cfg:      cfg,
		logger:   logger,
	}
}

// Respond searches the index and falls back to the selector on no usable hit.
// A failing index is an error wrapping domain.ErrSearchBackend; nothing else fails.
func (e *Engine) Respond(ctx context.Context, utterance string) (Response, error) {
	utterance = e.rewriter.Replace(utterance)
	q := query.Build(utterance, e.cfg.Query)

	candidates, err := e.search(ctx, &q)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", domain.ErrSearchBackend, err)
	}

	for _, c := range candidates {
		body, ok := c.Body()
		if !ok {
			continue
		}
		e.logger.Debug("Reply found in index",
			zap.String("id", c.ID),
			zap.Float64("score", c.Score),
			zap.Int("quoted_by", c.QuotedBy),
		)
		return e.respond(message.Text(body), BranchSearch), nil
	}

	d := e.selector.Select(ctx, utterance)
	return e.respond(d.Message, d.Branch), nil
}

func (e *Engine) search(ctx context.Context, q *query.Query) ([]domreply.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.SearchTimeout)
	defer cancel()

	start := time.Now()
	candidates, err := e.searcher.Search(ctx, q)

	status := metrics.StatusOK
	if err != nil {
		status = metrics.StatusError
	}
	metrics.SearchDuration.WithLabelValues(e.cfg.Driver, status).Observe(time.Since(start).Seconds())

	return candidates, err //nolint:wrapcheck // wrapped by Respond
}

func (e *Engine) respond(m message.Outbound, branch string) Response {
	metrics.RepliesTotal.WithLabelValues(branch).Inc()
	return Response{Message: m, Branch: branch}
}

// newRewriter applies longer patterns first so overlapping keys are deterministic.
func newRewriter(rewrites map[string]string) *strings.Replacer {
	keys := make([]string, 0, len(rewrites))
	for k := range rewrites {
		if k != "" {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, rewrites[k])
	}
	return strings.NewReplacer(pairs...)
}
