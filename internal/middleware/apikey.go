package middleware

import (
	"crypto/subtle"
	"net/http"

	"catalog-sync-api/pkg/apierror"
)

// APIKey guards a route group with a static key carried in the X-API-Key
// header. An empty configured key disables the check entirely, which is the
// local-development mode.
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				apiErr := apierror.Unauthorized("invalid or missing API key")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(apiErr.StatusCode)
				w.Write(apiErr.ToJSON())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
