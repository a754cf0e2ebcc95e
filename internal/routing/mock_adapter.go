// Package routing provides test doubles for the routing and fallback layer:
// a scriptable provider adapter and an in-memory adapter source.
package routing

import (
	"context"
	"sync"
	"time"

	"meridian-hq/janus/pkg/providers"
)

// MockAdapter is a scriptable providers.Adapter. Completion and stream
// calls consume scripted errors in order; a nil entry (or an exhausted
// script) means success.
type MockAdapter struct {
	name string

	mu             sync.Mutex
	completionErrs []error
	streamErrs     []error
	embedErr       error
	availableErr   error

	response     *providers.CompletionResponse
	streamChunks []*providers.CompletionChunk
	models       []string

	calls       int
	streamCalls int
	lastRequest *providers.CompletionRequest
}

// NewMockAdapter creates a mock adapter that succeeds on every call.
func NewMockAdapter(name string) *MockAdapter {
	return &MockAdapter{name: name}
}

// ScriptCompletionErrors sets the per-call outcomes for CreateCompletion.
func (m *MockAdapter) ScriptCompletionErrors(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completionErrs = errs
}

// ScriptStreamErrors sets the per-call outcomes for CreateCompletionStream.
func (m *MockAdapter) ScriptStreamErrors(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streamErrs = errs
}

// SetResponse overrides the canned completion response.
func (m *MockAdapter) SetResponse(resp *providers.CompletionResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = resp
}

// SetStreamChunks sets the chunks every successful stream yields.
func (m *MockAdapter) SetStreamChunks(chunks ...*providers.CompletionChunk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streamChunks = chunks
}

// SetEmbeddingError makes CreateEmbedding fail.
func (m *MockAdapter) SetEmbeddingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedErr = err
}

// SetAvailableError makes IsAvailable fail.
func (m *MockAdapter) SetAvailableError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.availableErr = err
}

// SetModels sets the ListModels result.
func (m *MockAdapter) SetModels(models ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.models = models
}

// Calls returns how many completion calls were made.
func (m *MockAdapter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// StreamCalls returns how many stream calls were made.
func (m *MockAdapter) StreamCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streamCalls
}

// LastRequest returns the most recent completion or stream request.
func (m *MockAdapter) LastRequest() *providers.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

func (m *MockAdapter) nextErr(script *[]error) error {
	if len(*script) == 0 {
		return nil
	}
	err := (*script)[0]
	*script = (*script)[1:]
	return err
}

// CreateCompletion returns the next scripted outcome.
func (m *MockAdapter) CreateCompletion(_ context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.lastRequest = req
	if err := m.nextErr(&m.completionErrs); err != nil {
		return nil, err
	}
	if m.response != nil {
		resp := *m.response
		return &resp, nil
	}
	return &providers.CompletionResponse{
		ID:           "mock-" + m.name,
		Model:        req.Model,
		Provider:     m.name,
		Content:      "mock response",
		FinishReason: providers.FinishReasonStop,
		Usage:        providers.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		Created:      time.Now().Unix(),
	}, nil
}

// CreateCompletionStream returns a channel carrying the configured chunks,
// or the next scripted error.
func (m *MockAdapter) CreateCompletionStream(_ context.Context, req *providers.CompletionRequest) (<-chan *providers.CompletionChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.streamCalls++
	m.lastRequest = req
	if err := m.nextErr(&m.streamErrs); err != nil {
		return nil, err
	}

	chunks := m.streamChunks
	if chunks == nil {
		chunks = []*providers.CompletionChunk{
			{ID: "mock-" + m.name, Model: req.Model, Provider: m.name, Delta: "mock "},
			{
				ID: "mock-" + m.name, Model: req.Model, Provider: m.name,
				Delta: "stream", FinishReason: providers.FinishReasonStop,
				Usage: &providers.TokenUsage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12},
			},
		}
	}

	out := make(chan *providers.CompletionChunk, len(chunks))
	for _, chunk := range chunks {
		out <- chunk
	}
	close(out)
	return out, nil
}

// CreateEmbedding returns one fixed vector per input.
func (m *MockAdapter) CreateEmbedding(_ context.Context, req *providers.EmbeddingRequest) (*providers.EmbeddingResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}

	vectors := make([][]float64, len(req.Input))
	for i := range vectors {
		vectors[i] = []float64{0.1, 0.2, 0.3}
	}
	return &providers.EmbeddingResponse{
		Model:      req.Model,
		Provider:   m.name,
		Embeddings: vectors,
		Usage:      providers.TokenUsage{PromptTokens: 5, TotalTokens: 5},
	}, nil
}

// ListModels returns the configured model list.
func (m *MockAdapter) ListModels(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.models...), nil
}

// IsAvailable returns the configured availability error.
func (m *MockAdapter) IsAvailable(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.availableErr
}

// Name returns the adapter name.
func (m *MockAdapter) Name() string {
	return m.name
}

// Health reports availability based on the configured error.
func (m *MockAdapter) Health() providers.Health {
	m.mu.Lock()
	defer m.mu.Unlock()
	return providers.Health{
		Available: m.availableErr == nil,
		LastCheck: time.Now(),
		LastError: m.availableErr,
	}
}

// Close is a no-op.
func (m *MockAdapter) Close() error {
	return nil
}

// AdapterSource is an in-memory routing.AdapterSource for tests.
type AdapterSource struct {
	mu       sync.RWMutex
	adapters map[string]providers.Adapter
}

// NewAdapterSource creates a source holding the given adapters.
func NewAdapterSource(adapters ...providers.Adapter) *AdapterSource {
	s := &AdapterSource{adapters: make(map[string]providers.Adapter)}
	for _, a := range adapters {
		s.adapters[a.Name()] = a
	}
	return s
}

// Get returns the adapter registered under name.
func (s *AdapterSource) Get(name string) (providers.Adapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	adapter, ok := s.adapters[name]
	if !ok {
		return nil, &providers.ProviderNotFoundError{Provider: name}
	}
	return adapter, nil
}
