package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"meridian-hq/janus/pkg/telemetry/logging"
)

// CorrelationIDHeader is the HTTP header carrying the request correlation
// id, both inbound and echoed on the response.
const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationID accepts a client-supplied correlation id or generates one,
// attaches it to the request context and echoes it on the response. Every
// log line, record and problem document for the request carries it.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		ctx := logging.WithCorrelationID(r.Context(), id)
		w.Header().Set(CorrelationIDHeader, id)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
