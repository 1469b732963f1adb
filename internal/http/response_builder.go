package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"fincontrol/internal/core"
	"fincontrol/internal/extract"
	applog "fincontrol/internal/log"
	"fincontrol/internal/ports"
	"fincontrol/internal/services"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidDate,
	core.ErrInvalidDay,
	core.ErrInvalidMonth,
	core.ErrMissingID,
	core.ErrEmptyDescription,
	core.ErrDescriptionLong,
	core.ErrEmptyName,
	core.ErrEmptyCategory,
	core.ErrInvalidKind,
	core.ErrInvalidMethod,
	core.ErrInvalidRecurring,
	extract.ErrEmptyText,
	errBadRequest,
}

// statusFor maps an error to its HTTP status and the message safe to show
// to the caller.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, services.ErrExtractorUnavailable):
		return http.StatusServiceUnavailable, services.ErrExtractorUnavailable.Error()
	case errors.Is(err, services.ErrExtraction):
		return http.StatusBadGateway, services.ErrExtraction.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return http.StatusBadRequest, err.Error()
		}
	}
	return http.StatusInternalServerError, "internal error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeError logs err and writes the mapped status. Server-side failures
// are logged at error level, client mistakes at warn.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	ctx := r.Context()
	logger := applog.FromContext(ctx)
	fields := applog.NewFields().
		WithError(err).
		WithHTTPRequest(r.Method, r.URL.Path, "", "")
	fields[applog.FieldStatusCode] = status
	if status >= 500 {
		logger.ErrorContext(ctx, "Request failed", fields.ToSlice()...)
	} else {
		logger.WarnContext(ctx, "Request rejected", fields.ToSlice()...)
	}
	writeJSON(w, status, errorBody{Error: msg, RequestID: w.Header().Get("X-Request-ID")})
}
