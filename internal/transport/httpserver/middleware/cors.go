package middleware

import (
	"net/http"
	"slices"
	"strings"
)

const (
	corsMethods       = "GET,POST,PUT,PATCH,DELETE,OPTIONS"
	corsHeaders       = "Authorization,Content-Type,Last-Event-ID"
	corsExposeHeaders = "Content-Disposition"
	corsMaxAge        = "86400"
)

type originPolicy struct {
	any     bool
	origins []string
}

func newOriginPolicy(configured []string) originPolicy {
	var policy originPolicy
	for _, origin := range configured {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		switch origin {
		case "":
		case "*":
			policy.any = true
		default:
			policy.origins = append(policy.origins, origin)
		}
	}
	return policy
}

func (p originPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}
	return p.any || slices.Contains(p.origins, origin)
}

// NewCORS echoes allowed origins and ends every OPTIONS request with 204.
// A "*" entry allows every origin; trailing slashes in the list are ignored.
func NewCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	policy := newOriginPolicy(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); policy.allows(origin) {
				h := w.Header()
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
				if r.Method == http.MethodOptions {
					h.Set("Access-Control-Allow-Methods", corsMethods)
					h.Set("Access-Control-Allow-Headers", corsHeaders)
					h.Set("Access-Control-Max-Age", corsMaxAge)
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
