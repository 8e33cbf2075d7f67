package health

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"
)

// Status is the aggregate answer /health gives.
type Status string

const (
	Healthy  Status = "ok"
	Degraded Status = "degraded"
)

// CheckResult is the outcome of one probe.
type CheckResult string

const (
	CheckOK      CheckResult = "ok"
	CheckError   CheckResult = "error"
	CheckTimeout CheckResult = "timeout"
)

// DefaultProbeTimeout bounds a single Ping when no timeout is configured.
const DefaultProbeTimeout = 2 * time.Second

// Report aggregates probe results by component name.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service probes the bot's dependencies.
type Service struct {
	components map[string]Pinger
	timeout    time.Duration
}

// New creates a Service over named components, e.g. {"search": store}.
// Nil pingers are skipped.
func New(components map[string]Pinger) *Service {
	c := make(map[string]Pinger, len(components))
	for name, p := range components {
		if p != nil {
			c[name] = p
		}
	}
	return &Service{components: c, timeout: DefaultProbeTimeout}
}

// WithTimeout sets the per-probe deadline. Non-positive values keep the default.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check pings every component concurrently. Any failure degrades the report.
func (s *Service) Check(ctx context.Context) Report {
	names := slices.Sorted(maps.Keys(s.components))
	results := make([]CheckResult, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.probe(ctx, s.components[name])
		}()
	}
	wg.Wait()

	report := Report{Status: Healthy, Checks: make(map[string]CheckResult, len(names))}
	for i, name := range names {
		report.Checks[name] = results[i]
		if results[i] != CheckOK {
			report.Status = Degraded
		}
	}
	return report
}

func (s *Service) probe(ctx context.Context, p Pinger) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := p.Ping(ctx)
	switch {
	case err == nil:
		return CheckOK
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return CheckTimeout
	default:
		return CheckError
	}
}
