package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/atango/internal/db"
	"github.com/kailas-cloud/atango/internal/domain/query"
)

// Search runs a full-text match on the query field via FT.SEARCH.
// The engine has no minimum-should-match, so "or" queries are filtered client-side
// against the returned field. Ranking is left to the caller.
func (s *Store) Search(ctx context.Context, index string, q *query.Query) (*db.SearchResult, error) {
	if index == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Size <= 0 {
		return nil, fmt.Errorf("size must be positive")
	}

	terms := q.Match.Terms()
	if len(terms) == 0 {
		return &db.SearchResult{}, nil
	}

	returnFields := []string{q.Match.Field, db.FieldText, db.FieldQuotedBy}

	args := []string{index, buildMatchQuery(q.Match, terms)}
	args = append(args, "RETURN", strconv.Itoa(len(returnFields)))
	args = append(args, returnFields...)
	args = append(args,
		"WITHSCORES",
		"LIMIT", "0", strconv.Itoa(q.Size),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	sr, err := parseScoredResult(raw)
	if err != nil {
		return nil, err
	}

	if q.Match.Operator != query.OperatorAnd {
		sr = filterByRequiredTerms(sr, q.Match, terms)
	}
	return sr, nil
}

// buildMatchQuery renders e.g. `(@q1:(猫 かわいい)) => { $weight: 1.2; }`.
func buildMatchQuery(m query.Match, terms []string) string {
	escaped := make([]string, len(terms))
	for i, t := range terms {
		escaped[i] = escapeQuery(t)
	}

	sep := " "
	if m.Operator == query.OperatorOr {
		sep = " | "
	}

	q := fmt.Sprintf("(@%s:(%s))", m.Field, strings.Join(escaped, sep))
	if m.Boost > 0 {
		q += fmt.Sprintf(" => { $weight: %s; }", strconv.FormatFloat(m.Boost, 'g', -1, 64))
	}
	return q
}

// filterByRequiredTerms drops hits whose matched field contains fewer terms than required.
func filterByRequiredTerms(sr *db.SearchResult, m query.Match, terms []string) *db.SearchResult {
	required := m.RequiredTerms(len(terms))
	kept := sr.Entries[:0]
	for _, e := range sr.Entries {
		if countTerms(e.Fields[m.Field], terms) >= required {
			kept = append(kept, e)
		}
	}
	return &db.SearchResult{Total: len(kept), Entries: kept}
}

// countTerms counts terms equal to a whitespace token of the stored field.
// Seeded q1 values are pre-tokenized, so a term never matches part of a word.
func countTerms(text string, terms []string) int {
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tokens[tok] = struct{}{}
	}
	n := 0
	for _, t := range terms {
		if _, ok := tokens[strings.ToLower(t)]; ok {
			n++
		}
	}
	return n
}

// --- Result parsing ---

func parseScoredResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, len(raw)/3)
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Score:  score,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query helpers ---

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`?`, `\?`,
	`:`, `\:`,
	`,`, `\,`,
	`.`, `\.`,
)
