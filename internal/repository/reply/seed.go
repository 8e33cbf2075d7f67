package reply

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kailas-cloud/atango/internal/db"
	"github.com/kailas-cloud/atango/internal/domain/query"
)

// DefaultSeedBatch is the number of hashes written per pipeline.
const DefaultSeedBatch = 500

// hashWriter is the consumer interface for seeding (ISP).
type hashWriter interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, keys ...string) error
}

// Seeder writes reply records as hashes under the index prefix.
type Seeder struct {
	store   hashWriter
	index   string
	field   string
	batch   int
	replace bool
}

// NewSeeder creates a Seeder. field defaults to q1.
func NewSeeder(s hashWriter, index, field string) *Seeder {
	if field == "" {
		field = query.DefaultField
	}
	return &Seeder{store: s, index: index, field: field, batch: DefaultSeedBatch}
}

// WithReplace deletes each record's existing hash before writing it, so fields
// absent from the new record do not survive.
func (s *Seeder) WithReplace(replace bool) *Seeder {
	s.replace = replace
	return s
}

// Write validates and stores records in batches. It returns the number written
// before the first failure.
func (s *Seeder) Write(ctx context.Context, records []Record) (int, error) {
	written := 0
	for start := 0; start < len(records); start += s.batch {
		end := min(start+s.batch, len(records))

		items := make([]db.HashSetItem, 0, end-start)
		keys := make([]string, 0, end-start)
		for _, r := range records[start:end] {
			if err := r.Validate(); err != nil {
				return written, err
			}
			key := Key(s.index, r.ID)
			keys = append(keys, key)
			items = append(items, db.HashSetItem{Key: key, Fields: recordToHash(s.field, r)})
		}

		if s.replace {
			if err := s.store.Del(ctx, keys...); err != nil {
				return written, fmt.Errorf("replace %s: %w", s.index, err)
			}
		}
		if err := s.store.HSetMulti(ctx, items); err != nil {
			return written, fmt.Errorf("seed %s: %w", s.index, err)
		}
		written += len(items)
	}
	return written, nil
}

// maxRecordLine bounds one JSONL line.
const maxRecordLine = 1 << 20

// ReadRecords decodes a JSONL stream, one Record per line. Blank lines are skipped.
func ReadRecords(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxRecordLine)

	var records []Record
	for line := 1; sc.Scan(); line++ {
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return records, nil
}
