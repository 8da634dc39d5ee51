package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"spesa/internal/auth"
	"spesa/internal/core"
	applog "spesa/internal/log"
	"spesa/internal/services"
)

var (
	errBadRequest       = errors.New("malformed request")
	errNoSession        = errors.New("no active session, log in first")
	errPayloadTooLarge  = errors.New("request body too large")
	errUnsupportedImage = errors.New("unsupported image type")
)

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps domain and service errors to HTTP status codes. Unknown
// errors are internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errUnsupportedImage):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrListNotFound):
		return http.StatusNotFound
	case errors.Is(err, errNoSession), errors.Is(err, services.ErrHydrating):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidFormat),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidStatus),
		errors.Is(err, core.ErrNegativePrice),
		errors.Is(err, core.ErrNegativeQuantity),
		errors.Is(err, core.ErrDuplicateList),
		errors.Is(err, core.ErrDuplicateDay),
		errors.Is(err, core.ErrDuplicateItem),
		errors.Is(err, core.ErrDuplicateVendor),
		errors.Is(err, services.ErrEmptyQuestion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrReceiptScan),
		errors.Is(err, services.ErrInsight),
		errors.Is(err, services.ErrSummary):
		return http.StatusBadGateway
	case errors.Is(err, services.ErrAIUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status and writes its message. Internal errors
// are logged and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentHTTP).
			ErrorContext(r.Context(), "Request failed",
				applog.FieldPath, r.URL.Path,
				applog.FieldError, err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
