package reply

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/atango/internal/db"
	"github.com/kailas-cloud/atango/internal/domain/query"
	domreply "github.com/kailas-cloud/atango/internal/domain/reply"
)

// store is the consumer interface for reply lookups (ISP).
type store interface {
	Search(ctx context.Context, index string, q *query.Query) (*db.SearchResult, error)
}

// Repo implements usecase/reply.Searcher on top of a db.Searcher.
type Repo struct {
	store store
	index string
}

// New creates a reply repository reading from index.
func New(s store, index string) *Repo {
	return &Repo{store: s, index: index}
}

// Search returns candidates in ranking order. Backends that cannot evaluate the
// ranking expression are ranked here.
func (r *Repo) Search(ctx context.Context, q *query.Query) ([]domreply.Candidate, error) {
	sr, err := r.store.Search(ctx, r.index, q)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", r.index, err)
	}

	prefix := KeyPrefix(r.index)
	candidates := make([]domreply.Candidate, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		candidates = append(candidates, candidateFromEntry(e, prefix))
	}

	if !sr.Ranked {
		q.Ranking.Sort(candidates)
	}
	return candidates, nil
}

func candidateFromEntry(e db.SearchEntry, prefix string) domreply.Candidate {
	return domreply.Candidate{
		ID:       strings.TrimPrefix(e.Key, prefix),
		Text:     e.Fields[db.FieldText],
		QuotedBy: parsePopularity(e.Fields[db.FieldQuotedBy]),
		Score:    e.Score,
	}
}
