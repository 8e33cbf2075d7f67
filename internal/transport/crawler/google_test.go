package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kailas-cloud/atango/internal/usecase/image"
)

// bufferLogger captures bare messages, one per line.
func bufferLogger() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{MessageKey: "msg", LineEnding: "\n"})
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(&buf), zapcore.DebugLevel)), &buf
}

// searchRecord holds what the fake search endpoint received.
type searchRecord struct {
	mu        sync.Mutex
	query     url.Values
	userAgent string
}

func (s *searchRecord) get() (url.Values, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query, s.userAgent
}

func newImageSearchServer(t *testing.T, page func(base string) string) (*httptest.Server, *searchRecord) {
	t.Helper()
	rec := &searchRecord{}
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.query, rec.userAgent = r.URL.Query(), r.UserAgent()
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page(srv.URL))
	})
	mux.HandleFunc("/img/ok.jpg", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte{0xff, 0xd8, 0xff})
	})
	mux.HandleFunc("/img/second.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	})
	mux.HandleFunc("/img/gone.jpg", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/img/page.jpg", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html></html>")
	})
	return srv, rec
}

func TestCrawl_SavesFirstImage(t *testing.T) {
	srv, searchReq := newImageSearchServer(t, func(base string) string {
		return `<html><body>
			<img src="data:image/gif;base64,R0lGOD">
			<img data-src="` + base + `/img/ok.jpg">
			<img src="` + base + `/img/second.png">
		</body></html>`
	})

	g := NewGoogle(Config{SearchURL: srv.URL + "/search", UserAgent: "atango-test"})
	log, buf := bufferLogger()
	dir := t.TempDir()

	err := g.Crawl(context.Background(), image.CrawlRequest{
		Keyword: "猫", Size: image.SizeMedium, MaxNum: 1, Dir: dir,
	}, log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q, ua := searchReq.get()
	if q.Get("q") != "猫" || q.Get("tbm") != "isch" || q.Get("tbs") != "isz:m" {
		t.Errorf("unexpected search query %v", q)
	}
	if ua != "atango-test" {
		t.Errorf("unexpected user agent %q", ua)
	}

	want := "image #1\t" + srv.URL + "/img/ok.jpg\n"
	if buf.String() != want {
		t.Errorf("log = %q, want %q", buf.String(), want)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "000001.jpg" {
		t.Errorf("unexpected downloads %v", entries)
	}
}

func TestCrawl_ScriptURLsComeFirst(t *testing.T) {
	srv, _ := newImageSearchServer(t, func(base string) string {
		escaped := base + "/img/second.png?v\\u003d1"
		return `<html><head><script>AF_initDataCallback({data:[["` + escaped + `",640,480]]});</script></head>
			<body><img src="` + base + `/img/ok.jpg"></body></html>`
	})

	g := NewGoogle(Config{SearchURL: srv.URL + "/search"})
	log, buf := bufferLogger()

	if err := g.Crawl(context.Background(), image.CrawlRequest{Keyword: "x", MaxNum: 1, Dir: t.TempDir()}, log); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "/img/second.png") {
		t.Errorf("expected script-embedded image first, log: %q", buf.String())
	}
}

func TestCrawl_LogsFailedDownloadsAndContinues(t *testing.T) {
	srv, _ := newImageSearchServer(t, func(base string) string {
		return `<img src="` + base + `/img/gone.jpg"><img src="` + base + `/img/page.jpg"><img src="` + base + `/img/ok.jpg">`
	})

	g := NewGoogle(Config{SearchURL: srv.URL + "/search"})
	log, buf := bufferLogger()

	if err := g.Crawl(context.Background(), image.CrawlRequest{Keyword: "x", MaxNum: 1, Dir: t.TempDir()}, log); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 log lines, got %q", lines)
	}
	if !strings.HasPrefix(lines[0], "failed to download "+srv.URL+"/img/gone.jpg: status 404") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], "unexpected content type") {
		t.Errorf("unexpected second line %q", lines[1])
	}
	if lines[2] != "image #1\t"+srv.URL+"/img/ok.jpg" {
		t.Errorf("unexpected third line %q", lines[2])
	}
}

func TestCrawl_NoResults(t *testing.T) {
	srv, _ := newImageSearchServer(t, func(string) string { return "<html><body>nothing</body></html>" })

	g := NewGoogle(Config{SearchURL: srv.URL + "/search"})
	log, buf := bufferLogger()

	if err := g.Crawl(context.Background(), image.CrawlRequest{Keyword: "x", MaxNum: 1, Dir: t.TempDir()}, log); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected empty log, got %q", buf.String())
	}
}

func TestCrawl_SearchPageError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGoogle(Config{SearchURL: srv.URL})
	log, _ := bufferLogger()
	if err := g.Crawl(context.Background(), image.CrawlRequest{Keyword: "x", Dir: t.TempDir()}, log); err == nil {
		t.Fatal("expected error")
	}
}

func TestCrawl_CancelledContext(t *testing.T) {
	srv, _ := newImageSearchServer(t, func(base string) string { return `<img src="` + base + `/img/ok.jpg">` })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGoogle(Config{SearchURL: srv.URL + "/search"})
	log, _ := bufferLogger()
	if err := g.Crawl(ctx, image.CrawlRequest{Keyword: "x", Dir: t.TempDir()}, log); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestSizeFilter(t *testing.T) {
	cases := map[string]string{
		image.SizeLarge:  "l",
		image.SizeMedium: "m",
		image.SizeIcon:   "i",
		"":               "",
		"huge":           "",
	}
	for in, want := range cases {
		if got := sizeFilter(in); got != want {
			t.Errorf("sizeFilter(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		url, ct, want string
	}{
		{"http://a/b.PNG", "", ".png"},
		{"http://a/b", "image/gif", ".gif"},
		{"http://a/b", "", ".jpg"},
	}
	for _, tc := range tests {
		if got := extension(tc.url, tc.ct); got != tc.want {
			t.Errorf("extension(%q, %q) = %q, want %q", tc.url, tc.ct, got, tc.want)
		}
	}
}

func TestUnescapeScriptURL(t *testing.T) {
	got := unescapeScriptURL(`https://a.example\/x.jpg?w\u003d1\u0026h\u003d2`)
	if got != "https://a.example/x.jpg?w=1&h=2" {
		t.Errorf("unexpected %q", got)
	}
}
