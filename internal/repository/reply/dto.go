package reply

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/atango/internal/db"
)

// Record is one line of a reply seed file.
type Record struct {
	ID       string     `json:"id"`
	Q1       string     `json:"q1"`
	Text     string     `json:"text"`
	QuotedBy Popularity `json:"quoted_by"`
}

// Validate checks the fields required to index a record.
func (r Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(r.Q1) == "" {
		return fmt.Errorf("record %s: q1 is required", r.ID)
	}
	if r.Text == "" {
		return fmt.Errorf("record %s: text is required", r.ID)
	}
	return nil
}

// Popularity is the quoted_by counter. In source data it is either the list of
// quoting posts or already a number.
type Popularity int

// UnmarshalJSON accepts a JSON array (its length), a number, or null.
func (p *Popularity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*p = 0
		return nil
	case b[0] == '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(b, &arr); err != nil {
			return fmt.Errorf("quoted_by: %w", err)
		}
		*p = Popularity(len(arr))
		return nil
	default:
		var n float64
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("quoted_by: %w", err)
		}
		*p = Popularity(n)
		return nil
	}
}

// recordToHash converts a seed record to a map for HSET.
func recordToHash(field string, r Record) map[string]string {
	return map[string]string{
		field:            r.Q1,
		db.FieldText:     r.Text,
		db.FieldQuotedBy: strconv.Itoa(int(r.QuotedBy)),
	}
}

// parsePopularity reads the counter back; unparsable values count as zero.
func parsePopularity(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}
