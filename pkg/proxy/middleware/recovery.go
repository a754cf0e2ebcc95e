package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"meridian-hq/janus/pkg/proxy/types"
	"meridian-hq/janus/pkg/telemetry/logging"
)

// Recovery converts a handler panic into a 500 problem document. The panic
// and its stack are logged; the client sees no internal detail.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				slog.ErrorContext(r.Context(), "panic in handler",
					"panic", v,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				types.WriteProblem(w, types.ProblemFromError(
					errors.New("internal"),
					logging.GetCorrelationID(r.Context()),
				))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
