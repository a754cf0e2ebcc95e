package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"meridian-hq/janus/pkg/providers"
)

// CreateCompletionStream opens a streaming completion. The backend is asked
// to append a usage-only final chunk so the caller sees real token totals.
func (a *Adapter) CreateCompletionStream(ctx context.Context, req *providers.CompletionRequest) (<-chan *providers.CompletionChunk, error) {
	if err := validateCompletion(req); err != nil {
		return nil, err
	}

	wire := encodeRequest(req)
	wire.Stream = true
	wire.StreamOptions = &StreamOptions{IncludeUsage: true}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, &providers.ParseError{Provider: a.Name(), Cause: err}
	}

	headers := a.headers()
	headers["Accept"] = "text/event-stream"

	resp, err := a.DoRequest(ctx, http.MethodPost, a.endpoints.Completions(req.Model), body, headers)
	if err != nil {
		return nil, providers.ScopeToModel(err, a.Name(), req.Model)
	}

	reader := providers.NewSSEReader(resp.Body)
	chunks := make(chan *providers.CompletionChunk, 16)
	go a.pump(ctx, reader, chunks)
	return chunks, nil
}

// pump forwards decoded chunks until the stream ends. A malformed payload is
// logged and skipped; only a transport failure becomes a terminal chunk with
// Err set. The channel is always closed.
func (a *Adapter) pump(ctx context.Context, reader *providers.SSEReader, chunks chan<- *providers.CompletionChunk) {
	defer close(chunks)
	defer reader.Close()

	for {
		event, err := reader.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			a.fail(ctx, chunks, "reading stream", err)
			return
		}
		if event.Data == "" {
			continue
		}

		var wire StreamResponse
		if err := json.Unmarshal([]byte(event.Data), &wire); err != nil {
			slog.Warn("skipping malformed stream chunk",
				"provider", a.Name(),
				"data", event.Data,
				"error", err,
			)
			continue
		}

		chunk := decodeStreamChunk(a.Name(), &wire)
		if chunk == nil {
			continue
		}

		select {
		case chunks <- chunk:
		case <-ctx.Done():
			return
		}
	}
}

func (a *Adapter) fail(ctx context.Context, chunks chan<- *providers.CompletionChunk, msg string, cause error) {
	chunk := &providers.CompletionChunk{
		Provider: a.Name(),
		Err: &providers.StreamError{
			Provider: a.Name(),
			Message:  msg,
			Cause:    cause,
		},
	}
	select {
	case chunks <- chunk:
	case <-ctx.Done():
	}
}
