package cohere

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"meridian-hq/janus/pkg/providers"
)

// CreateCompletionStream opens a streaming v2 chat request. The stream is
// event-framed: message-start carries the response id, content-delta events
// the text, and message-end the finish reason and billed usage.
func (a *Adapter) CreateCompletionStream(ctx context.Context, req *providers.CompletionRequest) (<-chan *providers.CompletionChunk, error) {
	if err := validateCompletion(req); err != nil {
		return nil, err
	}

	wire := encodeRequest(req)
	wire.Stream = true

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, &providers.ParseError{Provider: a.Name(), Cause: err}
	}

	headers := a.requestHeaders()
	headers["Accept"] = "text/event-stream"

	resp, err := a.DoRequest(ctx, http.MethodPost, a.chatURL, body, headers)
	if err != nil {
		return nil, providers.ScopeToModel(err, a.Name(), req.Model)
	}

	reader := providers.NewSSEReader(resp.Body)
	chunks := make(chan *providers.CompletionChunk, 16)
	go a.pump(ctx, reader, chunks, req.Model)
	return chunks, nil
}

func (a *Adapter) pump(ctx context.Context, reader *providers.SSEReader, chunks chan<- *providers.CompletionChunk, model string) {
	defer close(chunks)
	defer reader.Close()

	state := streamState{model: model}
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

		// Malformed payloads are skipped, not fatal; the stream keeps going.
		var wire streamEvent
		if err := json.Unmarshal([]byte(event.Data), &wire); err != nil {
			slog.Warn("skipping malformed stream event",
				"provider", a.Name(),
				"data", event.Data,
				"error", err,
			)
			continue
		}

		chunk, err := decodeStreamEvent(a.Name(), &wire, &state)
		if err != nil {
			a.fail(ctx, chunks, "handling stream event", err)
			return
		}
		if chunk == nil {
			continue
		}

		select {
		case chunks <- chunk:
		case <-ctx.Done():
			return
		}

		if wire.Type == "message-end" {
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
