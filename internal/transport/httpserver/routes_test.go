package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"book-club-go/internal/config"
	"book-club-go/internal/transport/httpserver/handler"
	"book-club-go/pkg/logger"
)

func newTestRouter() http.Handler {
	cfg := config.Config{
		CORSOrigins: []string{"http://localhost:5173"},
		Auth:        config.AuthConfig{JWTSecret: "secret"},
	}
	log := logger.Discard()
	return NewRouter(cfg, handler.New(handler.Services{}, log), nil, log)
}

func TestHealthIsPublic(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter()

	for _, target := range []string{
		"/api/auth/me",
		"/api/clubs",
		"/api/clubs/c1/books",
		"/api/clubs/c1/meetings/m1/guide",
		"/api/clubs/c1/messages",
		"/api/clubs/c1/events",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", target, rec.Code)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/clubs", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected origin echoed, got %q", got)
	}
}
