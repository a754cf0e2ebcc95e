package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"
)

// HTTPBase is the shared transport for HTTP-backed adapters. It owns the
// pooled client, retry loop, upstream error mapping and the adapter-local
// availability view. Concrete adapters embed it and add translation.
type HTTPBase struct {
	config Config
	client *http.Client

	healthMu sync.RWMutex
	health   Health
}

// NewHTTPBase creates the shared transport for one provider.
func NewHTTPBase(config Config) *HTTPBase {
	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPBase{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		health: Health{
			// Start optimistic so the first request is not refused.
			Available: true,
			LastCheck: time.Now(),
		},
	}
}

// Name returns the configured provider name.
func (b *HTTPBase) Name() string {
	return b.config.Name
}

// Config returns the adapter configuration.
func (b *HTTPBase) Config() Config {
	return b.config
}

// Health returns the current availability view.
func (b *HTTPBase) Health() Health {
	b.healthMu.RLock()
	defer b.healthMu.RUnlock()
	return b.health
}

// Available reports whether the adapter currently considers the backend
// reachable.
func (b *HTTPBase) Available() bool {
	b.healthMu.RLock()
	defer b.healthMu.RUnlock()
	return b.health.Available
}

// MarkProbe records the outcome of an availability probe.
func (b *HTTPBase) MarkProbe(err error, latency time.Duration) {
	b.healthMu.Lock()
	defer b.healthMu.Unlock()

	b.health.LastCheck = time.Now()
	b.health.LastProbeLatency = latency

	if err == nil {
		b.health.Available = true
		b.health.ConsecutiveFailures = 0
		b.health.LastError = nil
		return
	}

	b.health.Available = false
	b.health.ConsecutiveFailures++
	b.health.LastError = err
}

// recordOutcome counts one request against the adapter totals.
func (b *HTTPBase) recordOutcome(success bool) {
	b.healthMu.Lock()
	defer b.healthMu.Unlock()

	b.health.TotalRequests++
	if !success {
		b.health.FailedRequests++
	}
}

// DoRequest performs an HTTP request with retries. Transient failures
// (network errors, 5xx) retry with exponential backoff up to MaxRetries;
// everything else maps straight to a typed error:
//
//	401/403        AuthError
//	404            NotFoundError (narrow with ScopeToModel)
//	429            RateLimitError with Retry-After
//	other 4xx      ProviderError, upstream code preserved
//	5xx, network   UnavailableError after retries
//	deadline       TimeoutError
func (b *HTTPBase) DoRequest(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= b.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			slog.Debug("retrying request",
				"provider", b.config.Name,
				"attempt", attempt,
				"max_retries", b.config.MaxRetries,
				"backoff", backoff,
			)

			select {
			case <-ctx.Done():
				return nil, &TimeoutError{Provider: b.config.Name, Timeout: b.config.Timeout}
			case <-time.After(backoff):
			}
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		for key, value := range headers {
			req.Header.Set(key, value)
		}
		if req.Header.Get("Content-Type") == "" && body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := b.client.Do(req)
		if err != nil {
			lastErr = err
			b.recordOutcome(false)

			if ctx.Err() != nil {
				return nil, &TimeoutError{Provider: b.config.Name, Timeout: b.config.Timeout}
			}

			slog.Warn("request failed, will retry",
				"provider", b.config.Name,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			b.recordOutcome(true)
			return resp, nil
		}

		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		b.recordOutcome(false)

		upstreamCode, upstreamMsg := extractUpstreamError(errorBody)
		if upstreamMsg == "" {
			upstreamMsg = string(errorBody)
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, &AuthError{Provider: b.config.Name, Message: upstreamMsg}

		case resp.StatusCode == http.StatusNotFound:
			return nil, &NotFoundError{Provider: b.config.Name, Resource: upstreamMsg}

		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, &RateLimitError{
				Provider:   b.config.Name,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Message:    upstreamMsg,
			}

		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return nil, &ProviderError{
				Provider:     b.config.Name,
				StatusCode:   resp.StatusCode,
				ProviderCode: upstreamCode,
				Message:      upstreamMsg,
			}

		default:
			lastErr = &ProviderError{
				Provider:     b.config.Name,
				StatusCode:   resp.StatusCode,
				ProviderCode: upstreamCode,
				Message:      upstreamMsg,
			}
			slog.Warn("request returned server error, will retry",
				"provider", b.config.Name,
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)
		}
	}

	return nil, &UnavailableError{
		Provider: b.config.Name,
		Message:  "retries exhausted",
		Cause:    lastErr,
	}
}

// DoJSON performs a JSON request and decodes the response into respBody.
func (b *HTTPBase) DoJSON(ctx context.Context, method, url string, reqBody, respBody any, headers map[string]string) error {
	var bodyBytes []byte
	var err error
	if reqBody != nil {
		bodyBytes, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	resp, err := b.DoRequest(ctx, method, url, bodyBytes, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ParseError{
			Provider: b.config.Name,
			Cause:    fmt.Errorf("failed to read response: %w", err),
		}
	}

	if respBody != nil && len(responseBytes) > 0 {
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return &ParseError{
				Provider:    b.config.Name,
				RawResponse: string(responseBytes),
				Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
			}
		}
	}

	return nil
}

// Close releases pooled connections.
func (b *HTTPBase) Close() error {
	b.client.CloseIdleConnections()
	slog.Debug("provider transport closed", "provider", b.config.Name)
	return nil
}

// upstreamErrorBody covers the error envelopes the supported backends use:
// OpenAI and Azure nest {"error":{"message","type","code"}}, Anthropic nests
// {"error":{"type","message"}}, Cohere and HuggingFace return a flat message.
type upstreamErrorBody struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
	Message string `json:"message"`
}

// extractUpstreamError pulls the backend's error code and message out of an
// error response body. Both return values may be empty.
func extractUpstreamError(body []byte) (code, message string) {
	if len(body) == 0 {
		return "", ""
	}

	var parsed upstreamErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", ""
	}

	if parsed.Error != nil {
		code = parsed.Error.Code
		if code == "" {
			code = parsed.Error.Type
		}
		return code, parsed.Error.Message
	}
	return "", parsed.Message
}

// parseRetryAfter parses a Retry-After header in either delay-seconds or
// HTTP-date form.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
