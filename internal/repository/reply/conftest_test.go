package reply

import (
	"context"
	"testing"

	"github.com/kailas-cloud/atango/internal/db"
	"github.com/kailas-cloud/atango/internal/domain/query"
)

// mockStore implements the consumer interfaces for tests.
type mockStore struct {
	searchFn    func(ctx context.Context, index string, q *query.Query) (*db.SearchResult, error)
	hsetMultiFn func(ctx context.Context, items []db.HashSetItem) error
	delFn       func(ctx context.Context, keys ...string) error
}

func (m *mockStore) Search(ctx context.Context, index string, q *query.Query) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, index, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "sw_replies"), ms
}

func testQuery() *query.Query {
	q := query.Build("これ 何", query.DefaultOptions())
	return &q
}
