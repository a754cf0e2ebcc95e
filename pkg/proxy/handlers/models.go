package handlers

import (
	"net/http"

	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/proxy/types"
	"meridian-hq/janus/pkg/registry"
	"meridian-hq/janus/pkg/telemetry/logging"
)

// Models serves GET /v1/models and the POST /admin/models override upsert.
type Models struct {
	source ModelSource
}

// NewModels creates the model handlers.
func NewModels(source ModelSource) *Models {
	return &Models{source: source}
}

// List serves GET /v1/models.
func (h *Models) List(w http.ResponseWriter, r *http.Request) {
	models := h.source.ListModels()
	out := types.ModelList{Object: "list", Data: make([]types.Model, 0, len(models))}
	for _, m := range models {
		out.Data = append(out.Data, types.Model{
			ID:              m.ID,
			Object:          "model",
			Provider:        m.Provider,
			DisplayName:     m.DisplayName,
			ContextWindow:   m.ContextWindow,
			Capabilities:    capabilityNames(m.Capabilities),
			InputCostPer1K:  m.InputCostPer1K,
			OutputCostPer1K: m.OutputCostPer1K,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// Upsert serves POST /admin/models: install or replace one registry
// override. The override takes effect immediately and lasts until the next
// configuration reload.
func (h *Models) Upsert(w http.ResponseWriter, r *http.Request) {
	correlationID := logging.GetCorrelationID(r.Context())

	var override config.ModelOverride
	if err := decodeJSON(w, r, &override); err != nil {
		types.WriteProblem(w, types.ProblemFromError(err, correlationID))
		return
	}
	if override.ID == "" || override.Provider == "" {
		types.WriteProblem(w, types.ProblemFromError(
			&providers.ValidationError{Field: "id", Message: "id and provider are required"},
			correlationID))
		return
	}

	h.source.UpsertOverride(override)
	writeJSON(w, http.StatusOK, map[string]string{"id": override.ID, "status": "applied"})
}

func capabilityNames(c registry.Capabilities) []string {
	var names []string
	if c.Completions {
		names = append(names, "completions")
	}
	if c.Embeddings {
		names = append(names, "embeddings")
	}
	if c.Streaming {
		names = append(names, "streaming")
	}
	if c.FunctionCalling {
		names = append(names, "function_calling")
	}
	if c.Vision {
		names = append(names, "vision")
	}
	return names
}
