// Package elastic implements the reply index on Elasticsearch via go-elasticsearch.
package elastic

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kailas-cloud/atango/internal/db"
)

var _ db.Searcher = (*Store)(nil)

// Config holds connection parameters for an Elasticsearch cluster.
type Config struct {
	Addrs    []string // a scheme is added when missing
	Username string
	Password string
	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// Store implements db.Searcher against Elasticsearch.
type Store struct {
	es        *elasticsearch.Client
	addrs     []string
	transport http.RoundTripper
}

// NewStore creates an Elasticsearch store. No request is made until first use.
func NewStore(cfg Config) (*Store, error) {
	addrs := normalizeAddrs(cfg.Addrs)
	if len(addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addrs,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: transport,
		// one attempt per node; a dead node is skipped on transport errors
		MaxRetries: len(addrs),
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client %v: %w", addrs, err)
	}

	return &Store{es: es, addrs: addrs, transport: transport}, nil
}

// Ping checks that a node answers HEAD /.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.es.Ping(s.es.Ping.WithContext(ctx))
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	defer drain(res)

	if res.IsError() {
		return &db.Error{Op: db.OpPing, Err: fmt.Errorf("status %d", res.StatusCode)}
	}
	return nil
}

// Close releases idle connections.
func (s *Store) Close() {
	if t, ok := s.transport.(interface{ CloseIdleConnections() }); ok {
		t.CloseIdleConnections()
	}
}

// WaitForReady blocks until a node answers or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, timeout)
}

func normalizeAddrs(in []string) []string {
	addrs := make([]string, 0, len(in))
	for _, a := range in {
		a = strings.TrimRight(strings.TrimSpace(a), "/")
		if a == "" {
			continue
		}
		if !strings.HasPrefix(a, "http://") && !strings.HasPrefix(a, "https://") {
			a = "http://" + a
		}
		addrs = append(addrs, a)
	}
	return addrs
}

func drain(res *esapi.Response) {
	if res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
	_ = res.Body.Close()
}
