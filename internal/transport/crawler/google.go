// Package crawler fetches images from a web image search.
package crawler

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/kailas-cloud/atango/internal/usecase/image"
)

// Defaults for Config.
const (
	DefaultSearchURL = "https://www.google.com/search"
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

	maxPageBytes  = 4 << 20
	maxImageBytes = 16 << 20
	// extraAttempts is how many failed downloads are tolerated beyond MaxNum.
	extraAttempts = 5
)

var _ image.Crawler = (*Google)(nil)

// scriptImage matches the ["url",height,width] triples embedded in result page scripts.
var scriptImage = regexp.MustCompile(`\["(https?://[^"\s]+?)",\d+,\d+\]`)

// Config configures the Google image crawler.
type Config struct {
	SearchURL  string
	UserAgent  string
	HTTPClient *http.Client
}

// Google crawls the Google image search result page.
type Google struct {
	searchURL string
	userAgent string
	hc        *http.Client
}

// NewGoogle creates a crawler.
func NewGoogle(cfg Config) *Google {
	if cfg.SearchURL == "" {
		cfg.SearchURL = DefaultSearchURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Google{searchURL: cfg.SearchURL, userAgent: cfg.UserAgent, hc: hc}
}

// Crawl downloads up to req.MaxNum images for req.Keyword into req.Dir.
// Each saved image is logged as "image #N\t<url>", each failed one as
// "failed to download <url>: <err>". A failed search page is an error; failed
// downloads are not.
func (g *Google) Crawl(ctx context.Context, req image.CrawlRequest, log *zap.Logger) error {
	pageURL, err := g.buildSearchURL(req)
	if err != nil {
		return err
	}

	urls, err := g.fetchCandidates(ctx, pageURL)
	if err != nil {
		return err
	}

	maxNum := max(req.MaxNum, 1)
	saved, attempts := 0, 0
	for _, u := range urls {
		if saved >= maxNum || attempts >= maxNum+extraAttempts {
			break
		}
		if ctx.Err() != nil {
			return fmt.Errorf("crawl %q: %w", req.Keyword, ctx.Err())
		}
		attempts++

		if err := g.download(ctx, u, req.Dir, saved+1); err != nil {
			log.Error(fmt.Sprintf("failed to download %s: %v", u, err))
			continue
		}
		saved++
		log.Info(fmt.Sprintf("image #%d\t%s", saved, u))
	}
	return nil
}

func (g *Google) buildSearchURL(req image.CrawlRequest) (string, error) {
	u, err := url.Parse(g.searchURL)
	if err != nil {
		return "", fmt.Errorf("parse search url: %w", err)
	}
	q := u.Query()
	q.Set("q", req.Keyword)
	q.Set("tbm", "isch")
	if s := sizeFilter(req.Size); s != "" {
		q.Set("tbs", "isz:"+s)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func sizeFilter(size string) string {
	switch size {
	case image.SizeLarge:
		return "l"
	case image.SizeMedium:
		return "m"
	case image.SizeIcon:
		return "i"
	default:
		return ""
	}
}

// fetchCandidates returns image URLs from the result page, script-embedded
// originals first, then plain img sources, without duplicates.
func (g *Google) fetchCandidates(ctx context.Context, pageURL string) ([]string, error) {
	resp, err := g.get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch search page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch search page: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	base := resp.Request.URL
	seen := make(map[string]bool)
	var urls []string
	add := func(raw string) {
		abs, ok := absoluteHTTP(base, raw)
		if ok && !seen[abs] {
			seen[abs] = true
			urls = append(urls, abs)
		}
	}

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		for _, m := range scriptImage.FindAllStringSubmatch(s.Text(), -1) {
			add(unescapeScriptURL(m[1]))
		}
	})
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range []string{"data-iurl", "data-src", "src"} {
			if v, ok := s.Attr(attr); ok {
				add(v)
				return
			}
		}
	})

	return urls, nil
}

// download saves one image as <dir>/<index><ext>.
func (g *Google) download(ctx context.Context, rawURL, dir string, index int) error {
	resp, err := g.get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("unexpected content type %q", ct)
	}

	name := filepath.Join(dir, fmt.Sprintf("%06d%s", index, extension(rawURL, ct)))
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, io.LimitReader(resp.Body, maxImageBytes)); err != nil {
		_ = f.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}

func (g *Google) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	resp, err := g.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	return resp, nil
}

func absoluteHTTP(base *url.URL, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "data:") {
		return "", false
	}
	u, err := base.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	return u.String(), true
}

var scriptEscapes = strings.NewReplacer(`\u003d`, "=", `\u0026`, "&", `\/`, "/")

func unescapeScriptURL(s string) string { return scriptEscapes.Replace(s) }

func extension(rawURL, contentType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		switch ext := strings.ToLower(path.Ext(u.Path)); ext {
		case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp":
			return ext
		}
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if exts, err := mime.ExtensionsByType(mt); err == nil && len(exts) > 0 {
			return exts[0]
		}
	}
	return ".jpg"
}
