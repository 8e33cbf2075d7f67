// Package chi serves the webhook, health and metrics endpoints.
package chi

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/atango/internal/domain"
	"github.com/kailas-cloud/atango/internal/domain/event"
	"github.com/kailas-cloud/atango/internal/logger"
	healthuc "github.com/kailas-cloud/atango/internal/usecase/health"
)

// DefaultMaxBodyBytes caps a webhook delivery.
const DefaultMaxBodyBytes = 1 << 20

// EventParser verifies and decodes a webhook request.
type EventParser interface {
	Parse(r *http.Request) ([]event.Event, error)
}

// EventHandler answers a batch of events.
type EventHandler interface {
	Handle(ctx context.Context, events []event.Event) error
}

// HealthChecker reports dependency health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	parser        EventParser
	events        EventHandler
	health        HealthChecker
	logger        *zap.Logger
	maxBodyBytes  int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP server for the webhook.
func NewServer(parser EventParser, events EventHandler, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		parser:       parser,
		events:       events,
		health:       health,
		logger:       logger,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	s.errorHandlers = []errorHandler{
		bodyTooLargeHandler,
		sentinelHandler(domain.ErrInvalidSignature, http.StatusUnauthorized, CodeInvalidSignature),
		sentinelHandler(domain.ErrMalformedRequest, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(domain.ErrSearchBackend, http.StatusServiceUnavailable, CodeSearchUnavailable),
		sentinelHandler(domain.ErrDispatch, http.StatusInternalServerError, CodeDispatchFailed),
	}
	return s
}

// WithMaxBodyBytes overrides the webhook body limit.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// Routes registers the endpoints. metricsKeys, when set, guard /metrics with bearer auth.
func (s *Server) Routes(r chi.Router, metricsKeys []string) {
	r.Post("/callback", s.Callback)
	r.Get("/health", s.HealthCheck)
	r.With(BearerAuthMiddleware(metricsKeys)).Get("/metrics", s.Metrics)
}

// Callback handles POST /callback.
func (s *Server) Callback(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	events, err := s.parser.Parse(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if err := s.events.Handle(r.Context(), events); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok")
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Warn("webhook failed", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
