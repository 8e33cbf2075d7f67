// Package query builds the relevance query and ranking expression sent to the reply index.
package query

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Defaults used by the consolidated bot.
const (
	DefaultField              = "q1"
	DefaultOperator           = OperatorAnd
	DefaultMinimumShouldMatch = "25%"
	DefaultBoost              = 1.2
	DefaultSize               = 10
)

// Operator joins the terms of a match query.
type Operator string

const (
	// OperatorAnd requires every term.
	OperatorAnd Operator = "and"
	// OperatorOr requires at least the minimum-should-match share of terms.
	OperatorOr Operator = "or"
)

// IsValid reports whether o is a supported operator.
func (o Operator) IsValid() bool { return o == OperatorAnd || o == OperatorOr }

// Options parameterise Build.
type Options struct {
	Field              string
	Operator           Operator
	MinimumShouldMatch string
	Boost              float64 // 0 omits the boost
	Size               int
	Ranking            RankingSpec
}

// DefaultOptions returns the tuning of the consolidated bot.
func DefaultOptions() Options {
	return Options{
		Field:              DefaultField,
		Operator:           DefaultOperator,
		MinimumShouldMatch: DefaultMinimumShouldMatch,
		Boost:              DefaultBoost,
		Size:               DefaultSize,
		Ranking:            DefaultRanking(),
	}
}

// Query is the backend-neutral search request.
type Query struct {
	Match   Match
	Ranking RankingSpec
	Size    int
}

// Match is a match query against a single field.
type Match struct {
	Field              string
	Text               string
	Operator           Operator
	MinimumShouldMatch string
	Boost              float64
}

// Build turns an utterance into a query. It is a pure function of its inputs;
// empty utterances produce a valid query with no terms.
func Build(utterance string, opts Options) Query {
	def := DefaultOptions()
	if opts.Field == "" {
		opts.Field = def.Field
	}
	if !opts.Operator.IsValid() {
		opts.Operator = def.Operator
	}
	if opts.MinimumShouldMatch == "" {
		opts.MinimumShouldMatch = def.MinimumShouldMatch
	}
	if opts.Size <= 0 {
		opts.Size = def.Size
	}
	if len(opts.Ranking.Terms) == 0 {
		opts.Ranking = def.Ranking
	}

	return Query{
		Match: Match{
			Field:              opts.Field,
			Text:               utterance,
			Operator:           opts.Operator,
			MinimumShouldMatch: opts.MinimumShouldMatch,
			Boost:              opts.Boost,
		},
		Ranking: opts.Ranking,
		Size:    opts.Size,
	}
}

// Terms splits the match text on whitespace.
func (m Match) Terms() []string { return strings.Fields(m.Text) }

// RequiredTerms returns how many of n terms a document must contain.
// Operator "and" requires all of them. Otherwise the minimum-should-match value is
// either an absolute count or a percentage rounded down; negative values count back
// from n. The result is clamped to [1, n].
func (m Match) RequiredTerms(n int) int {
	if n <= 0 {
		return 0
	}
	if m.Operator == OperatorAnd {
		return n
	}

	required := 1
	msm := strings.TrimSpace(m.MinimumShouldMatch)
	if pct, ok := strings.CutSuffix(msm, "%"); ok {
		if p, err := strconv.Atoi(pct); err == nil {
			if p < 0 {
				required = n - (n*-p)/100
			} else {
				required = (n * p) / 100
			}
		}
	} else if v, err := strconv.Atoi(msm); err == nil {
		if v < 0 {
			required = n + v
		} else {
			required = v
		}
	}

	return max(1, min(required, n))
}

// MarshalJSON renders the Elasticsearch request body:
// {"query":{"match":{field:{...}}},"sort":[ranking],"size":n}.
func (q Query) MarshalJSON() ([]byte, error) {
	clause := map[string]any{
		"query":                q.Match.Text,
		"operator":             string(q.Match.Operator),
		"minimum_should_match": q.Match.MinimumShouldMatch,
	}
	if q.Match.Boost != 0 {
		clause["boost"] = q.Match.Boost
	}

	body := map[string]any{
		"query": map[string]any{
			"match": map[string]any{q.Match.Field: clause},
		},
		"sort": []any{q.Ranking.sortClause()},
	}
	if q.Size > 0 {
		body["size"] = q.Size
	}

	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}
	return b, nil
}
