package reply

import (
	"github.com/kailas-cloud/atango/internal/db"
	"github.com/kailas-cloud/atango/internal/domain/query"
)

const keyPrefix = "reply:"

// KeyPrefix is the hash key prefix covered by the index, e.g. "reply:sw_replies:".
func KeyPrefix(index string) string {
	return keyPrefix + index + ":"
}

// Key returns the hash key of one reply document.
func Key(index, id string) string {
	return KeyPrefix(index) + id
}

// IndexDefinition describes the FT index over reply hashes: the match field is
// searchable, text is stored only, quoted_by is a sortable counter.
// The field carries no WEIGHT; the boost travels with each query as $weight.
func IndexDefinition(index, field string) (*db.IndexDefinition, error) {
	if field == "" {
		field = query.DefaultField
	}
	return db.NewIndex(index).
		Prefix(KeyPrefix(index)).
		WeightedText(field, 0).
		StoredText(db.FieldText).
		SortableNumeric(db.FieldQuotedBy).
		Build()
}
