package elastic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/atango/internal/db"
	"github.com/kailas-cloud/atango/internal/domain/query"
)

// elasticsearchHandler marks responses the way a real cluster does; the client
// rejects 2xx answers without the product header.
func elasticsearchHandler(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		h(w, r)
	}
}

func newTestStore(t *testing.T, h http.HandlerFunc) *Store {
	t.Helper()
	return newTestStoreWith(t, Config{}, h)
}

func newTestStoreWith(t *testing.T, cfg Config, h http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(elasticsearchHandler(h))
	t.Cleanup(srv.Close)

	cfg.Addrs = []string{srv.URL}
	s, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestNewStore_RequiresAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Error("expected error for empty addrs")
	}
	if _, err := NewStore(Config{Addrs: []string{" ", ""}}); err == nil {
		t.Error("expected error for blank addrs")
	}
}

func TestNewStore_NormalizesAddrs(t *testing.T) {
	s, err := NewStore(Config{Addrs: []string{"es:9200/", "https://es2:9200"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.addrs[0] != "http://es:9200" || s.addrs[1] != "https://es2:9200" {
		t.Errorf("unexpected addrs: %v", s.addrs)
	}
}

func TestSearch_PostsQueryAndParsesHits(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody map[string]any

	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"hits": {
				"total": {"value": 2, "relation": "eq"},
				"hits": [
					{"_id": "1", "_score": null, "sort": [5.2],
					 "_source": {"q1": "これ 何", "text": "<A href=x>猫</A>&amp;犬", "quoted_by": ["a", "b", "c"]}},
					{"_id": "2", "_score": 0.7,
					 "_source": {"q1": "何", "text": "にゃー", "quoted_by": 4, "extra": null}}
				]
			}
		}`)
	})

	q := query.Build("これ何？", query.DefaultOptions())
	sr, err := s.Search(context.Background(), "sw_replies", &q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/sw_replies/_search" {
		t.Errorf("unexpected request %s %s", gotMethod, gotPath)
	}
	if gotBody["size"] != float64(10) {
		t.Errorf("expected size 10 in body, got %v", gotBody["size"])
	}
	if _, ok := gotBody["sort"]; !ok {
		t.Error("expected sort clause in body")
	}

	if !sr.Ranked {
		t.Error("elasticsearch results are ranked server-side")
	}
	if sr.Total != 2 || len(sr.Entries) != 2 {
		t.Fatalf("expected 2 entries, got total=%d len=%d", sr.Total, len(sr.Entries))
	}
	first := sr.Entries[0]
	if first.Key != "1" || first.Score != 5.2 {
		t.Errorf("unexpected first entry %+v", first)
	}
	if first.Fields[db.FieldQuotedBy] != "3" {
		t.Errorf("expected quoted_by list length 3, got %q", first.Fields[db.FieldQuotedBy])
	}
	if first.Fields[db.FieldText] != "<A href=x>猫</A>&amp;犬" {
		t.Errorf("text must be returned raw, got %q", first.Fields[db.FieldText])
	}
	second := sr.Entries[1]
	if second.Score != 0.7 || second.Fields[db.FieldQuotedBy] != "4" {
		t.Errorf("unexpected second entry %+v", second)
	}
	if _, ok := second.Fields["extra"]; ok {
		t.Error("null fields should be skipped")
	}
}

func TestSearch_LegacyTotal(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"hits":{"total":7,"hits":[]}}`)
	})

	q := query.Build("猫", query.DefaultOptions())
	sr, err := s.Search(context.Background(), "sw_replies", &q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sr.Total != 7 || len(sr.Entries) != 0 {
		t.Errorf("unexpected result %+v", sr)
	}
}

func TestSearch_IndexNotFound(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"type":"index_not_found_exception","reason":"no such index [sw_replies]"},"status":404}`)
	})

	q := query.Build("猫", query.DefaultOptions())
	_, err := s.Search(context.Background(), "sw_replies", &q)
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpESSearch {
		t.Errorf("expected db.Error with op %q, got %v", db.OpESSearch, err)
	}
}

func TestSearch_ServerError(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	})

	q := query.Build("猫", query.DefaultOptions())
	_, err := s.Search(context.Background(), "sw_replies", &q)
	if err == nil || !strings.Contains(err.Error(), "status 500: boom") {
		t.Fatalf("expected status error with body, got %v", err)
	}
}

func TestSearch_BasicAuth(t *testing.T) {
	var gotUser, gotPass string
	s := newTestStoreWith(t, Config{Username: "elastic", Password: "secret"}, func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":0},"hits":[]}}`)
	})

	q := query.Build("猫", query.DefaultOptions())
	if _, err := s.Search(context.Background(), "sw_*", &q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUser != "elastic" || gotPass != "secret" {
		t.Errorf("expected credentials on search, got %q/%q", gotUser, gotPass)
	}
}

func TestSearch_Validation(t *testing.T) {
	s := &Store{}
	q := query.Build("猫", query.DefaultOptions())
	if _, err := s.Search(context.Background(), "", &q); err == nil {
		t.Error("expected error for empty index")
	}
	q.Size = 0
	if _, err := s.Search(context.Background(), "sw_replies", &q); err == nil {
		t.Error("expected error for size=0")
	}
}

func TestSearch_FailsOverToNextNode(t *testing.T) {
	srv := httptest.NewServer(elasticsearchHandler(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":0},"hits":[]}}`)
	}))
	defer srv.Close()

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	s, err := NewStore(Config{Addrs: []string{deadURL, srv.URL}})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()

	q := query.Build("猫", query.DefaultOptions())
	if _, err := s.Search(context.Background(), "sw_replies", &q); err != nil {
		t.Fatalf("expected failover to succeed, got %v", err)
	}
}

func TestPing(t *testing.T) {
	var gotUser, gotMethod string
	s := newTestStoreWith(t, Config{Username: "elastic", Password: "secret"}, func(w http.ResponseWriter, r *http.Request) {
		gotUser, _, _ = r.BasicAuth()
		gotMethod = r.Method
		if r.URL.Path != "/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodHead {
		t.Errorf("expected HEAD, got %s", gotMethod)
	}
	if gotUser != "elastic" {
		t.Errorf("expected basic auth user, got %q", gotUser)
	}
}

func TestPing_NotElasticsearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := NewStore(Config{Addrs: []string{srv.URL}})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()

	err = s.Ping(context.Background())
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpPing {
		t.Fatalf("expected db.Error with op %q for a non-Elasticsearch server, got %v", db.OpPing, err)
	}
}

func TestPing_Unavailable(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	err := s.Ping(context.Background())
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpPing {
		t.Fatalf("expected db.Error with op %q, got %v", db.OpPing, err)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if err := s.WaitForReady(context.Background(), 250*time.Millisecond); err == nil {
		t.Fatal("expected timeout")
	}
}
