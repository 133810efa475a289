package api

import (
	"net/http"
	"strings"
)

const (
	apiPathPrefix       = "/api/"
	corsAllowedMethods  = "GET, POST, OPTIONS"
	corsAllowedHeaders  = "Content-Type"
	corsWildcardOrigins = "*"
)

// NewCORSMiddleware returns the general handler adding the CORS headers on every /api/ response.
// A request origin found in allowedOrigins is echoed back, any other origin receives the first allowed one.
// Preflight requests are answered directly with 204.
func NewCORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	origins := make([]string, len(allowedOrigins))
	copy(origins, allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, apiPathPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			header := w.Header()
			header.Set("Access-Control-Allow-Origin", resolveOrigin(origins, r.Header.Get("Origin")))
			header.Set("Access-Control-Allow-Methods", corsAllowedMethods)
			header.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
			header.Add("Vary", "Origin")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func resolveOrigin(allowedOrigins []string, origin string) string {
	if len(allowedOrigins) == 0 {
		return corsWildcardOrigins
	}

	for _, allowed := range allowedOrigins {
		if allowed == origin {
			return origin
		}
	}

	return allowedOrigins[0]
}
