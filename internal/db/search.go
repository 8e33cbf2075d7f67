package db

// Reply document field names shared by every backend.
const (
	FieldText     = "text"
	FieldQuotedBy = "quoted_by"
)

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Ranked  bool // entries already follow the query's ranking expression
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
