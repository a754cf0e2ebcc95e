package providers

import "context"

// Adapter is the contract every backend integration presents to the gateway
// core. One adapter instance serves one configured provider.
//
// All methods take a context for cancellation and deadlines. Implementations
// must return promptly once the context is done; for streams, cancellation
// terminates the upstream connection within one read boundary.
//
// Example:
//
//	adapter, err := openai.New(cfg)
//	if err != nil {
//		return err
//	}
//	defer adapter.Close()
//
//	resp, err := adapter.CreateCompletion(ctx, &providers.CompletionRequest{
//		Model:    "gpt-4",
//		Messages: []providers.Message{{Role: providers.RoleUser, Content: "Hello!"}},
//	})
type Adapter interface {
	// CreateCompletion sends a completion request and returns the normalized
	// response. Failures are typed errors carrying an error code.
	CreateCompletion(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// CreateCompletionStream opens a streaming completion. The returned
	// channel yields chunks until the stream finishes and is then closed.
	// A mid-stream failure is delivered as a final chunk with Err set.
	//
	//	chunks, err := adapter.CreateCompletionStream(ctx, req)
	//	if err != nil {
	//		return err
	//	}
	//	for chunk := range chunks {
	//		if chunk.Err != nil {
	//			return chunk.Err
	//		}
	//		fmt.Print(chunk.Delta)
	//	}
	CreateCompletionStream(ctx context.Context, req *CompletionRequest) (<-chan *CompletionChunk, error)

	// CreateEmbedding embeds the inputs. Backends without an embedding
	// endpoint fail with a CapabilityError.
	CreateEmbedding(ctx context.Context, req *EmbeddingRequest) (*EmbeddingResponse, error)

	// ListModels returns the backend's native model ids. Backends without a
	// listing endpoint return their static catalogue ids.
	ListModels(ctx context.Context) ([]string, error)

	// IsAvailable probes the backend with a cheap authenticated request.
	// A nil return means available. Probe latency is recorded in Health.
	IsAvailable(ctx context.Context) error

	// Name is the configured provider name (openai, anthropic, ...).
	Name() string

	// Health returns the current availability view for this adapter.
	Health() Health

	// Close releases transport resources. The adapter must not be used
	// afterwards.
	Close() error
}
