package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/atango/internal/domain/query"
)

// Searcher is the read-only contract the reply engine depends on.
type Searcher interface {
	Pinger
	Search(ctx context.Context, index string, q *query.Query) (*SearchResult, error)
	Close()
}

// Store is everything the Redis backend offers. atangoctl needs the write half to
// build the index; the webhook binary only ever sees Searcher.
//
//nolint:interfacebloat
type Store interface {
	Searcher
	HashStore
	IndexManager
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore provides the hash writes needed to seed replies.
type HashStore interface {
	HSetMulti(ctx context.Context, items []HashSetItem) error
	Del(ctx context.Context, keys ...string) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}
