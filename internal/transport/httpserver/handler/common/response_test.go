package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"book-club-go/internal/domain/apperr"
	"book-club-go/pkg/logger"
)

func TestWriteDomainErrorStatus(t *testing.T) {
	notFound := apperr.New(apperr.KindNotFound, "meeting_not_found", "meeting not found")
	conflict := apperr.New(apperr.KindConflict, "already_voted", "already voted")

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "validation", err: apperr.Invalid("title", "required"), status: http.StatusBadRequest, code: "invalid_request"},
		{name: "forbidden", err: apperr.ErrForbidden, status: http.StatusForbidden, code: "forbidden"},
		{name: "not found", err: notFound, status: http.StatusNotFound, code: "meeting_not_found"},
		{name: "wrapped conflict", err: errors.Join(errors.New("tx"), conflict), status: http.StatusConflict, code: "already_voted"},
		{name: "unknown", err: errors.New("connection reset"), status: http.StatusInternalServerError, code: "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteDomainError(rec, logger.Discard(), "test.op", tc.err)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var body errorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != tc.code {
				t.Fatalf("expected code %q, got %q", tc.code, body.Error.Code)
			}
		})
	}
}

func TestUnknownErrorHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteDomainError(rec, logger.Discard(), "test.op", errors.New("pq: password authentication failed"))

	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("expected generic message, got %s", rec.Body.String())
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"x","extra":1}`))
	var dst struct {
		Title string `json:"title"`
	}
	if err := DecodeJSON(req, &dst); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestParseIntParam(t *testing.T) {
	if got, err := ParseIntParam("", 50); err != nil || got != 50 {
		t.Fatalf("expected fallback 50, got %d (%v)", got, err)
	}
	if got, err := ParseIntParam(" 20 ", 50); err != nil || got != 20 {
		t.Fatalf("expected 20, got %d (%v)", got, err)
	}
	if _, err := ParseIntParam("-1", 50); err == nil {
		t.Fatalf("expected error for negative value")
	}
	if _, err := ParseIntParam("ten", 50); err == nil {
		t.Fatalf("expected error for non-number")
	}
}
