package registry

import "time"

// Capabilities are the boolean capability flags of a model.
type Capabilities struct {
	// Completions means the model serves chat completions.
	Completions bool `json:"completions"`

	// Embeddings means the model serves embeddings.
	Embeddings bool `json:"embeddings"`

	// Streaming means the model supports incremental responses.
	Streaming bool `json:"streaming"`

	// FunctionCalling means the model supports tool/function calls.
	FunctionCalling bool `json:"function_calling"`

	// Vision means the model accepts image input.
	Vision bool `json:"vision"`
}

// Includes reports whether every capability set in want is also set in c.
func (c Capabilities) Includes(want Capabilities) bool {
	if want.Completions && !c.Completions {
		return false
	}
	if want.Embeddings && !c.Embeddings {
		return false
	}
	if want.Streaming && !c.Streaming {
		return false
	}
	if want.FunctionCalling && !c.FunctionCalling {
		return false
	}
	if want.Vision && !c.Vision {
		return false
	}
	return true
}

// ModelInfo is the immutable descriptor of one model. Instances are built by
// the registry merge and handed out by value; callers must not mutate them.
type ModelInfo struct {
	// ID is the canonical model id, provider-qualified
	// (e.g. "anthropic.claude-3-opus").
	ID string `json:"id"`

	// Provider is the provider name (openai, anthropic, ...).
	Provider string `json:"provider"`

	// ProviderModelID is the provider-native model id sent on the wire.
	ProviderModelID string `json:"provider_model_id"`

	// DisplayName is a human-readable name.
	DisplayName string `json:"display_name"`

	// ContextWindow is the model's context window in tokens.
	ContextWindow int `json:"context_window"`

	// Capabilities are the model's capability flags.
	Capabilities Capabilities `json:"capabilities"`

	// InputCostPer1K is the USD price per 1000 prompt tokens. Zero with
	// HasCost false means the price is unknown.
	InputCostPer1K float64 `json:"input_cost_per_1k"`

	// OutputCostPer1K is the USD price per 1000 completion tokens.
	OutputCostPer1K float64 `json:"output_cost_per_1k"`

	// HasCost reports whether the cost row is known. The cost-optimized
	// router skips models without one.
	HasCost bool `json:"has_cost"`

	// DefaultLatencyMS seeds the latency router before live metrics exist.
	// Zero means unknown.
	DefaultLatencyMS int64 `json:"default_latency_ms"`
}

// Source identifies which merge layer produced an entry. Higher values win.
type Source int

const (
	// SourceCatalogue is the built-in per-provider catalogue.
	SourceCatalogue Source = iota

	// SourceDynamic is a live provider model listing.
	SourceDynamic

	// SourceOverride is an administrator-configured override.
	SourceOverride
)

func (s Source) String() string {
	switch s {
	case SourceCatalogue:
		return "catalogue"
	case SourceDynamic:
		return "dynamic"
	case SourceOverride:
		return "override"
	default:
		return "unknown"
	}
}

// Snapshot is a read-only view of the registry at one point in time.
type Snapshot struct {
	// Models is sorted by canonical id.
	Models []ModelInfo

	// BuiltAt is when the snapshot was assembled.
	BuiltAt time.Time
}
