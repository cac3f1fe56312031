package httpserver

import (
	"net/http"
	"time"

	"book-club-go/internal/config"
)

// New leaves WriteTimeout unset so event streams stay open; handlers are
// bounded by the router's timeout middleware instead.
func New(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
