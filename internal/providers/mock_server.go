// Package providers holds shared test doubles for the provider adapters: an
// httptest-backed mock backend that serves JSON fixtures and SSE streams,
// plus fixture builders for the supported wire formats.
package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockServer simulates a provider backend for adapter tests. Responses are
// registered per path; unknown paths return 404.
type MockServer struct {
	server    *httptest.Server
	responses map[string]MockResponse

	mu           sync.Mutex
	requestCount int
	lastBody     []byte
	lastHeaders  http.Header
}

// MockResponse configures the reply for one path.
type MockResponse struct {
	// StatusCode is the HTTP status. Ignored for streaming responses.
	StatusCode int

	// Body is the response payload: a string, []byte, or any JSON-encodable
	// value.
	Body any

	// Delay is applied before responding.
	Delay time.Duration

	// Headers are set on the response.
	Headers map[string]string

	// StreamChunks, when non-empty, makes the response an SSE stream: each
	// entry is written as "data: <chunk>\n\n" followed by a terminal
	// "data: [DONE]\n\n".
	StreamChunks []string

	// StreamEvents, when non-empty, makes the response an SSE stream of
	// typed events written as "event: <type>\ndata: <data>\n\n" without a
	// [DONE] sentinel (the Anthropic framing).
	StreamEvents []MockStreamEvent

	// NoDone suppresses the [DONE] sentinel for StreamChunks streams.
	NoDone bool
}

// MockStreamEvent is one typed SSE event.
type MockStreamEvent struct {
	Type string
	Data string
}

// NewMockServer starts a mock backend. Callers must Close it.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]MockResponse),
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// URL returns the mock server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close shuts the mock server down.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse registers the reply for a path.
func (ms *MockServer) SetResponse(path string, response MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responses[path] = response
}

// RequestCount returns the number of requests received.
func (ms *MockServer) RequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.requestCount
}

// LastHeaders returns the headers of the most recent request.
func (ms *MockServer) LastHeaders() http.Header {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.lastHeaders
}

// LastBody decodes the most recent request body into v.
func (ms *MockServer) LastBody(v any) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if len(ms.lastBody) == 0 {
		return fmt.Errorf("no request body captured")
	}
	return json.Unmarshal(ms.lastBody, v)
}

func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	body := make([]byte, 0)
	if r.Body != nil {
		buf := make([]byte, 64<<10)
		for {
			n, err := r.Body.Read(buf)
			body = append(body, buf[:n]...)
			if err != nil {
				break
			}
		}
	}

	ms.mu.Lock()
	ms.requestCount++
	ms.lastBody = body
	ms.lastHeaders = r.Header.Clone()
	response, ok := ms.responses[r.URL.Path]
	ms.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if response.Delay > 0 {
		select {
		case <-time.After(response.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	if len(response.StreamChunks) > 0 || len(response.StreamEvents) > 0 {
		ms.handleStream(w, r, response)
		return
	}

	if response.StatusCode != 0 {
		w.WriteHeader(response.StatusCode)
	}

	switch v := response.Body.(type) {
	case nil:
	case string:
		_, _ = w.Write([]byte(v))
	case []byte:
		_, _ = w.Write(v)
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (ms *MockServer) handleStream(w http.ResponseWriter, r *http.Request, response MockResponse) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	write := func(s string) bool {
		select {
		case <-r.Context().Done():
			return false
		default:
		}
		fmt.Fprint(w, s)
		flusher.Flush()
		return true
	}

	for _, event := range response.StreamEvents {
		if !write(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, event.Data)) {
			return
		}
	}

	for _, chunk := range response.StreamChunks {
		if !write(fmt.Sprintf("data: %s\n\n", chunk)) {
			return
		}
	}

	if len(response.StreamChunks) > 0 && !response.NoDone {
		write("data: [DONE]\n\n")
	}
}
