package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/kailas-cloud/atango/internal/domain/reply"
)

// ScoreField is the pseudo-field holding the backend relevance score.
const ScoreField = "_score"

// Order is the sort direction of a ranking.
type Order string

const (
	// Desc sorts highest rank first.
	Desc Order = "desc"
	// Asc sorts lowest rank first.
	Asc Order = "asc"
)

// RankTerm is one addend of the ranking expression.
type RankTerm struct {
	Field      string
	Popularity bool // counted: contributes the number of values in Field
}

// RankingSpec sums its terms into one rank and sorts by it.
type RankingSpec struct {
	Terms []RankTerm
	Order Order
}

// DefaultRanking combines quote popularity with the boosted relevance score.
func DefaultRanking() RankingSpec {
	return RankingSpec{
		Terms: []RankTerm{
			{Field: "quoted_by", Popularity: true},
			{Field: ScoreField},
		},
		Order: Desc,
	}
}

// Script renders the painless expression, e.g. "doc.quoted_by.size() + _score".
func (r RankingSpec) Script() string {
	parts := make([]string, 0, len(r.Terms))
	for _, t := range r.Terms {
		switch {
		case t.Field == ScoreField:
			parts = append(parts, ScoreField)
		case t.Popularity:
			parts = append(parts, "doc."+t.Field+".size()")
		default:
			parts = append(parts, "doc['"+t.Field+"'].value")
		}
	}
	return strings.Join(parts, " + ")
}

func (r RankingSpec) order() Order {
	if r.Order == Asc {
		return Asc
	}
	return Desc
}

func (r RankingSpec) sortClause() map[string]any {
	return map[string]any{
		"_script": map[string]any{
			"type": "number",
			"script": map[string]any{
				"source": r.Script(),
				"lang":   "painless",
			},
			"order": string(r.order()),
		},
	}
}

// Rank evaluates the expression for a candidate. Only the relevance score and the
// popularity counter are known client-side; other fields contribute zero.
func (r RankingSpec) Rank(c reply.Candidate) float64 {
	var total float64
	for _, t := range r.Terms {
		switch {
		case t.Field == ScoreField:
			total += c.Score
		case t.Popularity:
			total += float64(c.QuotedBy)
		}
	}
	return total
}

// Sort orders candidates in place by rank, keeping backend order on ties.
func (r RankingSpec) Sort(cs []reply.Candidate) {
	desc := r.order() == Desc
	slices.SortStableFunc(cs, func(a, b reply.Candidate) int {
		c := cmp.Compare(r.Rank(a), r.Rank(b))
		if desc {
			return -c
		}
		return c
	})
}
