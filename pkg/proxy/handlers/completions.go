package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/proxy/types"
	"meridian-hq/janus/pkg/telemetry/logging"
)

// maxRequestBody caps the decoded request size at 10 MiB.
const maxRequestBody = 10 << 20

// Completions serves POST /v1/completions, both buffered and streaming.
type Completions struct {
	core Core
	log  *slog.Logger
}

// NewCompletions creates the completions handler.
func NewCompletions(core Core) *Completions {
	return &Completions{
		core: core,
		log:  slog.Default().With("component", "handlers.completions"),
	}
}

func (h *Completions) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	correlationID := logging.GetCorrelationID(r.Context())

	var req providers.CompletionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		types.WriteProblem(w, types.ProblemFromError(err, correlationID))
		return
	}

	if req.Stream {
		h.stream(w, r, &req, correlationID)
		return
	}

	resp, err := h.core.Complete(r.Context(), &req)
	if err != nil {
		types.WriteProblem(w, types.ProblemFromError(err, correlationID))
		return
	}
	writeJSON(w, http.StatusOK, types.FromCompletion(resp))
}

// stream relays chunks as server-sent events: one "data: {json}" frame per
// chunk, a terminal "data: [DONE]" frame. A failure before the first chunk
// is still a problem document; afterwards it becomes an error frame, since
// the 200 and the event-stream content type are already on the wire.
func (h *Completions) stream(w http.ResponseWriter, r *http.Request, req *providers.CompletionRequest, correlationID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		types.WriteProblem(w, types.ProblemFromError(
			fmt.Errorf("streaming unsupported by the underlying writer"), correlationID))
		return
	}

	chunks, err := h.core.CompleteStream(r.Context(), req)
	if err != nil {
		types.WriteProblem(w, types.ProblemFromError(err, correlationID))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for chunk := range chunks {
		if chunk.Err != nil {
			h.log.WarnContext(r.Context(), "stream failed mid-flight",
				"error", chunk.Err,
				"correlation_id", correlationID,
			)
			writeSSE(w, map[string]any{
				"error": types.ProblemFromError(chunk.Err, correlationID),
			})
			flusher.Flush()
			break
		}
		writeSSE(w, types.FromChunk(chunk))
		flusher.Flush()
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// writeSSE writes one event-stream data frame.
func writeSSE(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}

// decodeJSON decodes a JSON body, rejecting unknown payloads with a
// validation error rather than a bare 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return &providers.ValidationError{Field: "body", Message: "malformed JSON: " + err.Error()}
	}
	return nil
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
