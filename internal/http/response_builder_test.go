package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"fincontrol/internal/core"
	"fincontrol/internal/extract"
	"fincontrol/internal/ports"
	"fincontrol/internal/services"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ports.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("get goal: %w", ports.ErrNotFound), http.StatusNotFound},
		{"invalid amount", fmt.Errorf("validate transaction: %w", core.ErrInvalidAmount), http.StatusBadRequest},
		{"description too long", core.ErrDescriptionLong, http.StatusBadRequest},
		{"empty extraction text", extract.ErrEmptyText, http.StatusBadRequest},
		{"bad request", errBadRequest, http.StatusBadRequest},
		{"extractor missing", services.ErrExtractorUnavailable, http.StatusServiceUnavailable},
		{"extraction failed", fmt.Errorf("%w: %w", services.ErrExtraction, errors.New("quota")), http.StatusBadGateway},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"unknown", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestStatusForHidesInternalDetail(t *testing.T) {
	_, msg := statusFor(errors.New("open /var/lib/fincontrol.db: permission denied"))
	if msg != "internal error" {
		t.Errorf("message = %q", msg)
	}
	_, msg = statusFor(fmt.Errorf("%w: upstream said 429", services.ErrExtraction))
	if msg != services.ErrExtraction.Error() {
		t.Errorf("extraction message = %q", msg)
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, map[string]int{"n": 1})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	var got map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil || got["n"] != 1 {
		t.Errorf("body = %q (%v)", rec.Body.String(), err)
	}
}

func TestWriteJSONNilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusAccepted, nil)
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
}

func TestWriteErrorIncludesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.Header().Set("X-Request-ID", "req-42")
	r := httptest.NewRequest(http.MethodGet, "/api/goals/x", nil)

	writeError(rec, r, ports.ErrNotFound)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "not found" || body.RequestID != "req-42" {
		t.Errorf("body = %+v", body)
	}
}
