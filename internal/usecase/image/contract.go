package image

import (
	"context"

	"go.uber.org/zap"
)

// Size names the image size filter passed to the crawler.
const (
	SizeLarge  = "large"
	SizeMedium = "medium"
	SizeIcon   = "icon"
)

// CrawlRequest parameterises one crawl.
type CrawlRequest struct {
	Keyword string
	Size    string
	MaxNum  int
	Dir     string // downloads land here
}

// Crawler fetches images for a keyword and reports every URL it touches to log,
// one line per image.
type Crawler interface {
	Crawl(ctx context.Context, req CrawlRequest, log *zap.Logger) error
}
