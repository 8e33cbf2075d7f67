package fallback

import (
	"context"

	"github.com/kailas-cloud/atango/internal/usecase/image"
)

// ImageFinder looks up a picture for the default branch.
type ImageFinder interface {
	Find(ctx context.Context, query string) image.Result
}

// Picker returns an index in [0, n).
type Picker func(n int) int
