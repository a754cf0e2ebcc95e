package handlers

import (
	"net/http"

	"meridian-hq/janus/pkg/proxy/types"
	"meridian-hq/janus/pkg/telemetry/logging"
)

// Embeddings serves POST /v1/embeddings.
type Embeddings struct {
	core Core
}

// NewEmbeddings creates the embeddings handler.
func NewEmbeddings(core Core) *Embeddings {
	return &Embeddings{core: core}
}

func (h *Embeddings) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	correlationID := logging.GetCorrelationID(r.Context())

	var wire types.EmbeddingRequest
	if err := decodeJSON(w, r, &wire); err != nil {
		types.WriteProblem(w, types.ProblemFromError(err, correlationID))
		return
	}

	resp, err := h.core.Embed(r.Context(), wire.Canonical())
	if err != nil {
		types.WriteProblem(w, types.ProblemFromError(err, correlationID))
		return
	}
	writeJSON(w, http.StatusOK, types.FromEmbedding(resp))
}
