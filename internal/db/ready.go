package db

import (
	"context"
	"fmt"
	"time"
)

// readyPollInterval is the delay between readiness probes.
const readyPollInterval = 100 * time.Millisecond

// WaitForReady polls p until it answers or timeout expires. The first probe is immediate.
func WaitForReady(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		if lastErr = p.Ping(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for search backend: %w (last error: %w)", ctx.Err(), lastErr)
		case <-ticker.C:
		}
	}
}
