// Package image looks up a picture for an utterance by running a crawler and
// scraping the first image URL out of its log.
package image

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kailas-cloud/atango/internal/metrics"
)

// DefaultTimeout bounds a single crawl.
const DefaultTimeout = 10 * time.Second

var imageURL = regexp.MustCompile(`https?://[^/]+/[a-zA-Z0-9\-\.\+_/]+\.[a-z]{3,4}`)

// Config tunes the lookup.
type Config struct {
	TempRoot string        // parent of the per-lookup temp artifacts; "" means os.TempDir()
	Timeout  time.Duration // 0 means DefaultTimeout
	Size     string        // "" means SizeMedium
	MaxNum   int           // 0 means 1
}

// Lookup runs one crawl per query in a private temp directory.
type Lookup struct {
	crawler Crawler
	cfg     Config
	logger  *zap.Logger
}

// New creates a Lookup.
func New(c Crawler, cfg Config, logger *zap.Logger) *Lookup {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Size == "" {
		cfg.Size = SizeMedium
	}
	if cfg.MaxNum <= 0 {
		cfg.MaxNum = 1
	}
	return &Lookup{crawler: c, cfg: cfg, logger: logger}
}

// Find returns the first image URL the crawler logged for query.
// The temp log file and download directory are removed on every path.
func (l *Lookup) Find(ctx context.Context, query string) Result {
	res := l.find(ctx, query)
	metrics.ImageLookupsTotal.WithLabelValues(string(res.Outcome())).Inc()
	return res
}

func (l *Lookup) find(ctx context.Context, query string) Result {
	if strings.TrimSpace(query) == "" {
		return NotFound()
	}

	logFile, err := os.CreateTemp(l.cfg.TempRoot, "atango-crawl-*.log")
	if err != nil {
		return LookupError(fmt.Sprintf("create log file: %v", err))
	}
	defer func() {
		_ = logFile.Close()
		_ = os.Remove(logFile.Name())
	}()

	dir, err := os.MkdirTemp(l.cfg.TempRoot, "atango-crawl-*")
	if err != nil {
		return LookupError(fmt.Sprintf("create download dir: %v", err))
	}
	defer func() { _ = os.RemoveAll(dir) }()

	crawlLog := newMessageLogger(logFile)

	ctx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	start := time.Now()
	err = l.crawl(ctx, CrawlRequest{
		Keyword: query,
		Size:    l.cfg.Size,
		MaxNum:  l.cfg.MaxNum,
		Dir:     dir,
	}, crawlLog)
	_ = crawlLog.Sync()

	if err != nil {
		l.logger.Debug("Crawl failed",
			zap.String("query", query),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return LookupError(err.Error())
	}

	data, err := os.ReadFile(logFile.Name())
	if err != nil {
		return LookupError(fmt.Sprintf("read crawl log: %v", err))
	}

	url := imageURL.FindString(string(data))
	l.logger.Debug("Crawl completed",
		zap.String("query", query),
		zap.Duration("duration", time.Since(start)),
		zap.String("url", url),
	)
	if url == "" {
		return NotFound()
	}
	return Found(url)
}

// crawl turns a crawler panic into an error so the deferred cleanup still runs.
func (l *Lookup) crawl(ctx context.Context, req CrawlRequest, log *zap.Logger) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("crawler panic: %v", p)
		}
	}()
	return l.crawler.Crawl(ctx, req, log)
}

// newMessageLogger writes bare messages, one per line, so URLs are easy to scrape.
func newMessageLogger(f *os.File) *zap.Logger {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey: "msg",
		LineEnding: zapcore.DefaultLineEnding,
	})
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(f), zapcore.DebugLevel))
}

// Disabled never finds anything.
type Disabled struct{}

// Find implements the finder contract.
func (Disabled) Find(context.Context, string) Result { return NotFound() }
