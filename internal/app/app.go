// Package app assembles the reply engine from configuration. Both binaries share it.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/atango/internal/config"
	"github.com/kailas-cloud/atango/internal/db"
	dbElastic "github.com/kailas-cloud/atango/internal/db/elastic"
	dbRedis "github.com/kailas-cloud/atango/internal/db/redis"
	"github.com/kailas-cloud/atango/internal/domain/query"
	replyrepo "github.com/kailas-cloud/atango/internal/repository/reply"
	"github.com/kailas-cloud/atango/internal/transport/crawler"
	"github.com/kailas-cloud/atango/internal/usecase/fallback"
	"github.com/kailas-cloud/atango/internal/usecase/image"
	replyuc "github.com/kailas-cloud/atango/internal/usecase/reply"
)

// SearchStore is the searcher plus the lifecycle calls the binaries need.
type SearchStore interface {
	db.Searcher
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// NewSearchStore opens the configured search backend. It does not wait for readiness.
func NewSearchStore(cfg config.SearchConfig) (SearchStore, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverElasticsearch:
		s, err := dbElastic.NewStore(dbElastic.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown search driver %q", cfg.Driver)
	}
}

// QueryOptions maps the search section onto query builder options.
func QueryOptions(cfg config.SearchConfig) query.Options {
	opts := query.DefaultOptions()
	opts.Field = cfg.Field
	opts.Operator = query.Operator(cfg.Operator)
	opts.MinimumShouldMatch = cfg.MinimumShouldMatch
	if cfg.Boost != nil {
		opts.Boost = *cfg.Boost
	}
	opts.Size = cfg.Size
	return opts
}

// Replies maps the fallback section onto reply sets. Empty sets keep the defaults.
func Replies(cfg config.FallbackConfig) fallback.Replies {
	return fallback.Replies{
		Question:          cfg.Question,
		Exclamation:       cfg.Exclamation,
		Agreement:         cfg.Agreement,
		Filler:            cfg.Filler,
		AgreementSuffixes: cfg.AgreementSuffixes,
	}.WithDefaults()
}

// ImageFinder returns the crawler-backed lookup, or a finder that never matches when disabled.
func ImageFinder(cfg config.ImageConfig, logger *zap.Logger) fallback.ImageFinder {
	if !cfg.Enabled {
		return image.Disabled{}
	}
	g := crawler.NewGoogle(crawler.Config{
		SearchURL: cfg.SearchURL,
		UserAgent: cfg.UserAgent,
	})
	return image.New(g, image.Config{
		TempRoot: cfg.TempDir,
		Timeout:  time.Duration(cfg.TimeoutSec) * time.Second,
		Size:     cfg.Size,
	}, logger)
}

// NewEngine wires repository, fallback selector and engine over an open store.
func NewEngine(cfg config.Config, store db.Searcher, logger *zap.Logger) *replyuc.Engine {
	repo := replyrepo.New(store, cfg.Search.Index)
	selector := fallback.New(Replies(cfg.Fallback), ImageFinder(cfg.Image, logger), logger)

	return replyuc.New(repo, selector, replyuc.Config{
		Query:         QueryOptions(cfg.Search),
		Rewrites:      cfg.Engine.Rewrites,
		SearchTimeout: time.Duration(cfg.Search.TimeoutSec) * time.Second,
		Driver:        cfg.Search.Driver,
	}, logger)
}
