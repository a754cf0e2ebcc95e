package registry

// Built-in model catalogue. This layer is required because not every backend
// exposes a model-listing endpoint (Anthropic in particular), and because
// listings never carry pricing or context-window data. Dynamic listings and
// configured overrides are merged on top.
//
// Prices are USD per 1000 tokens.

func catalogueModels() []ModelInfo {
	completions := Capabilities{Completions: true, Streaming: true}
	withTools := Capabilities{Completions: true, Streaming: true, FunctionCalling: true}
	withVision := Capabilities{Completions: true, Streaming: true, FunctionCalling: true, Vision: true}
	embeddings := Capabilities{Embeddings: true}

	return []ModelInfo{
		// OpenAI
		{
			ID:               "openai.gpt-4",
			Provider:         "openai",
			ProviderModelID:  "gpt-4",
			DisplayName:      "GPT-4",
			ContextWindow:    8192,
			Capabilities:     withTools,
			InputCostPer1K:   0.03,
			OutputCostPer1K:  0.06,
			HasCost:          true,
			DefaultLatencyMS: 2000,
		},
		{
			ID:               "openai.gpt-4-turbo",
			Provider:         "openai",
			ProviderModelID:  "gpt-4-turbo",
			DisplayName:      "GPT-4 Turbo",
			ContextWindow:    128000,
			Capabilities:     withVision,
			InputCostPer1K:   0.01,
			OutputCostPer1K:  0.03,
			HasCost:          true,
			DefaultLatencyMS: 1500,
		},
		{
			ID:               "openai.gpt-4o",
			Provider:         "openai",
			ProviderModelID:  "gpt-4o",
			DisplayName:      "GPT-4o",
			ContextWindow:    128000,
			Capabilities:     withVision,
			InputCostPer1K:   0.005,
			OutputCostPer1K:  0.015,
			HasCost:          true,
			DefaultLatencyMS: 1000,
		},
		{
			ID:               "openai.gpt-3.5-turbo",
			Provider:         "openai",
			ProviderModelID:  "gpt-3.5-turbo",
			DisplayName:      "GPT-3.5 Turbo",
			ContextWindow:    16385,
			Capabilities:     withTools,
			InputCostPer1K:   0.0005,
			OutputCostPer1K:  0.0015,
			HasCost:          true,
			DefaultLatencyMS: 800,
		},
		{
			ID:              "openai.text-embedding-3-small",
			Provider:        "openai",
			ProviderModelID: "text-embedding-3-small",
			DisplayName:     "Text Embedding 3 Small",
			ContextWindow:   8191,
			Capabilities:    embeddings,
			InputCostPer1K:  0.00002,
			HasCost:         true,
		},
		{
			ID:              "openai.text-embedding-3-large",
			Provider:        "openai",
			ProviderModelID: "text-embedding-3-large",
			DisplayName:     "Text Embedding 3 Large",
			ContextWindow:   8191,
			Capabilities:    embeddings,
			InputCostPer1K:  0.00013,
			HasCost:         true,
		},

		// Anthropic. No list-models endpoint; this catalogue is the only
		// source unless overrides are configured.
		{
			ID:               "anthropic.claude-3-opus",
			Provider:         "anthropic",
			ProviderModelID:  "claude-3-opus-20240229",
			DisplayName:      "Claude 3 Opus",
			ContextWindow:    200000,
			Capabilities:     withVision,
			InputCostPer1K:   0.015,
			OutputCostPer1K:  0.075,
			HasCost:          true,
			DefaultLatencyMS: 3000,
		},
		{
			ID:               "anthropic.claude-3-sonnet",
			Provider:         "anthropic",
			ProviderModelID:  "claude-3-sonnet-20240229",
			DisplayName:      "Claude 3 Sonnet",
			ContextWindow:    200000,
			Capabilities:     withVision,
			InputCostPer1K:   0.003,
			OutputCostPer1K:  0.015,
			HasCost:          true,
			DefaultLatencyMS: 1500,
		},
		{
			ID:               "anthropic.claude-3-haiku",
			Provider:         "anthropic",
			ProviderModelID:  "claude-3-haiku-20240307",
			DisplayName:      "Claude 3 Haiku",
			ContextWindow:    200000,
			Capabilities:     withVision,
			InputCostPer1K:   0.00025,
			OutputCostPer1K:  0.00125,
			HasCost:          true,
			DefaultLatencyMS: 600,
		},

		// Cohere
		{
			ID:               "cohere.command-r-plus",
			Provider:         "cohere",
			ProviderModelID:  "command-r-plus",
			DisplayName:      "Command R+",
			ContextWindow:    128000,
			Capabilities:     withTools,
			InputCostPer1K:   0.0025,
			OutputCostPer1K:  0.01,
			HasCost:          true,
			DefaultLatencyMS: 1200,
		},
		{
			ID:               "cohere.command-r",
			Provider:         "cohere",
			ProviderModelID:  "command-r",
			DisplayName:      "Command R",
			ContextWindow:    128000,
			Capabilities:     withTools,
			InputCostPer1K:   0.00015,
			OutputCostPer1K:  0.0006,
			HasCost:          true,
			DefaultLatencyMS: 900,
		},
		{
			ID:              "cohere.embed-english-v3.0",
			Provider:        "cohere",
			ProviderModelID: "embed-english-v3.0",
			DisplayName:     "Embed English v3",
			ContextWindow:   512,
			Capabilities:    embeddings,
			InputCostPer1K:  0.0001,
			HasCost:         true,
		},

		// HuggingFace inference. Pricing is deployment-specific, so the
		// catalogue carries no cost row; the cost router skips these unless
		// an override supplies one.
		{
			ID:               "huggingface.mistral-7b-instruct",
			Provider:         "huggingface",
			ProviderModelID:  "mistralai/Mistral-7B-Instruct-v0.2",
			DisplayName:      "Mistral 7B Instruct",
			ContextWindow:    32768,
			Capabilities:     completions,
			DefaultLatencyMS: 2500,
		},
		{
			ID:               "huggingface.llama-3-8b-instruct",
			Provider:         "huggingface",
			ProviderModelID:  "meta-llama/Meta-Llama-3-8B-Instruct",
			DisplayName:      "Llama 3 8B Instruct",
			ContextWindow:    8192,
			Capabilities:     completions,
			DefaultLatencyMS: 2500,
		},
		{
			ID:              "huggingface.all-minilm-l6-v2",
			Provider:        "huggingface",
			ProviderModelID: "sentence-transformers/all-MiniLM-L6-v2",
			DisplayName:     "All-MiniLM L6 v2",
			ContextWindow:   512,
			Capabilities:    embeddings,
		},

		// Azure OpenAI. The native id is the deployment name, which defaults
		// to the model name; overrides remap it per installation.
		{
			ID:               "azure.gpt-4",
			Provider:         "azure",
			ProviderModelID:  "gpt-4",
			DisplayName:      "Azure GPT-4",
			ContextWindow:    8192,
			Capabilities:     withTools,
			InputCostPer1K:   0.03,
			OutputCostPer1K:  0.06,
			HasCost:          true,
			DefaultLatencyMS: 2000,
		},
		{
			ID:               "azure.gpt-35-turbo",
			Provider:         "azure",
			ProviderModelID:  "gpt-35-turbo",
			DisplayName:      "Azure GPT-3.5 Turbo",
			ContextWindow:    16385,
			Capabilities:     withTools,
			InputCostPer1K:   0.0005,
			OutputCostPer1K:  0.0015,
			HasCost:          true,
			DefaultLatencyMS: 900,
		},
		{
			ID:              "azure.text-embedding-ada-002",
			Provider:        "azure",
			ProviderModelID: "text-embedding-ada-002",
			DisplayName:     "Azure Ada Embeddings",
			ContextWindow:   8191,
			Capabilities:    embeddings,
			InputCostPer1K:  0.0001,
			HasCost:         true,
		},
	}
}
