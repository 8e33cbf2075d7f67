package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/kailas-cloud/atango/internal/db"
	"github.com/kailas-cloud/atango/internal/domain/query"
)

// maxErrorBody caps how much of an error response ends up in the error message.
const maxErrorBody = 4 << 10

// Search posts the match query with its script sort to {index}/_search.
// The cluster applies the ranking expression, so the result is Ranked.
func (s *Store) Search(ctx context.Context, index string, q *query.Query) (*db.SearchResult, error) {
	if index == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Size <= 0 {
		return nil, fmt.Errorf("size must be positive")
	}

	body, err := json.Marshal(q)
	if err != nil {
		return nil, &db.Error{Op: db.OpESSearch, Err: err}
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(index),
		s.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpESSearch, Err: err}
	}
	defer drain(res)

	if res.IsError() {
		return nil, &db.Error{Op: db.OpESSearch, Err: statusError(res.StatusCode, res.Body)}
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, &db.Error{Op: db.OpESSearch, Err: fmt.Errorf("decode response: %w", err)}
	}

	return sr.toResult(), nil
}

type searchResponse struct {
	Hits struct {
		Total json.RawMessage `json:"total"`
		Hits  []hit           `json:"hits"`
	} `json:"hits"`
}

type hit struct {
	ID     string                     `json:"_id"`
	Score  *float64                   `json:"_score"`
	Sort   []json.RawMessage          `json:"sort"`
	Source map[string]json.RawMessage `json:"_source"`
}

func (r *searchResponse) toResult() *db.SearchResult {
	entries := make([]db.SearchEntry, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		entries = append(entries, db.SearchEntry{
			Key:    h.ID,
			Score:  h.score(),
			Fields: sourceFields(h.Source),
		})
	}

	return &db.SearchResult{
		Total:   parseTotal(r.Hits.Total, len(entries)),
		Ranked:  true,
		Entries: entries,
	}
}

// score prefers _score; with a script sort the cluster may null it and report the
// sort value instead.
func (h *hit) score() float64 {
	if h.Score != nil {
		return *h.Score
	}
	if len(h.Sort) > 0 {
		var v float64
		if err := json.Unmarshal(h.Sort[0], &v); err == nil {
			return v
		}
	}
	return 0
}

// parseTotal accepts both {"value":n,"relation":..} (7.x+) and the bare number (6.x).
func parseTotal(raw json.RawMessage, fallback int) int {
	if len(raw) == 0 {
		return fallback
	}
	var obj struct {
		Value int `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Value
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	return fallback
}

// sourceFields flattens _source to strings. Arrays become their length, which is how
// the popularity counter quoted_by is stored.
func sourceFields(src map[string]json.RawMessage) map[string]string {
	fields := make(map[string]string, len(src))
	for k, raw := range src {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}
		switch raw[0] {
		case '"':
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				fields[k] = s
			}
		case '[':
			var arr []json.RawMessage
			if err := json.Unmarshal(raw, &arr); err == nil {
				fields[k] = strconv.Itoa(len(arr))
			}
		case 'n': // null
		default:
			fields[k] = string(raw)
		}
	}
	return fields
}

func statusError(status int, body io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))

	var e struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if json.Unmarshal(b, &e) == nil && e.Error.Type == "index_not_found_exception" {
		return fmt.Errorf("%w: %s", db.ErrIndexNotFound, e.Error.Reason)
	}
	if e.Error.Reason != "" {
		return fmt.Errorf("status %d: %s: %s", status, e.Error.Type, e.Error.Reason)
	}
	return fmt.Errorf("status %d: %s", status, bytes.TrimSpace(b))
}
