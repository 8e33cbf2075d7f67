package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kailas-cloud/atango/internal/domain"
)

// ErrorCode is the machine-readable error code of an ErrorResponse.
type ErrorCode string

const (
	CodeBadRequest        ErrorCode = "bad_request"
	CodeUnauthorized      ErrorCode = "unauthorized"
	CodeInvalidSignature  ErrorCode = "invalid_signature"
	CodePayloadTooLarge   ErrorCode = "payload_too_large"
	CodeSearchUnavailable ErrorCode = "search_unavailable"
	CodeDispatchFailed    ErrorCode = "dispatch_failed"
	CodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx answer.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// HealthResponse is the JSON body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidSignature,
		domain.ErrMalformedRequest,
		domain.ErrSearchBackend,
		domain.ErrDispatch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// bodyTooLargeHandler catches the MaxBytesReader limit before the parser's generic wrap.
func bodyTooLargeHandler(w http.ResponseWriter, err error, _ string) bool {
	var mbe *http.MaxBytesError
	if !errors.As(err, &mbe) {
		return false
	}
	writeError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "request body too large")
	return true
}
