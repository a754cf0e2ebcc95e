package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// HeaderAPIKey is the admin key header.
const HeaderAPIKey = "X-Admin-Key"

// RequireKey wraps a handler with the admin key check. The key is read from
// the X-Admin-Key header or an Authorization: Bearer value. With no key
// configured the admin surface answers 404 so it cannot be probed.
func RequireKey(v *Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := v.Validate(extractKey(r))
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, ErrDisabled):
				http.NotFound(w, r)
			default:
				slog.Warn("admin authentication failed",
					"error", err,
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
				)
				w.Header().Set("WWW-Authenticate", "Bearer")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			}
		})
	}
}

func extractKey(r *http.Request) string {
	if key := r.Header.Get(HeaderAPIKey); key != "" {
		return key
	}
	if value := r.Header.Get("Authorization"); strings.HasPrefix(value, "Bearer ") {
		return strings.TrimPrefix(value, "Bearer ")
	}
	return ""
}
