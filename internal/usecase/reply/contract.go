package reply

import (
	"context"

	"github.com/kailas-cloud/atango/internal/domain/query"
	domreply "github.com/kailas-cloud/atango/internal/domain/reply"
	"github.com/kailas-cloud/atango/internal/usecase/fallback"
)

// Searcher returns ranked reply candidates for a query.
type Searcher interface {
	Search(ctx context.Context, q *query.Query) ([]domreply.Candidate, error)
}

// Selector picks a reply when search has none.
type Selector interface {
	Select(ctx context.Context, utterance string) fallback.Decision
}
