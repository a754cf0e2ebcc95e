package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"meridian-hq/janus/pkg/providers"
)

// CreateCompletionStream opens a streaming Messages API request. The stream
// is event-framed: identity arrives in message_start, text in
// content_block_delta events, and the stop reason plus output token count in
// message_delta.
func (a *Adapter) CreateCompletionStream(ctx context.Context, req *providers.CompletionRequest) (<-chan *providers.CompletionChunk, error) {
	if err := validateCompletion(req); err != nil {
		return nil, err
	}

	wire, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}
	wire.Stream = true

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, &providers.ParseError{Provider: a.Name(), Cause: err}
	}

	headers := a.requestHeaders()
	headers["Accept"] = "text/event-stream"

	resp, err := a.DoRequest(ctx, http.MethodPost, a.messagesURL, body, headers)
	if err != nil {
		return nil, providers.ScopeToModel(err, a.Name(), req.Model)
	}

	reader := providers.NewSSEReader(resp.Body)
	chunks := make(chan *providers.CompletionChunk, 16)
	go a.pump(ctx, reader, chunks)
	return chunks, nil
}

func (a *Adapter) pump(ctx context.Context, reader *providers.SSEReader, chunks chan<- *providers.CompletionChunk) {
	defer close(chunks)
	defer reader.Close()

	var state streamState
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

		if wire.Type == "message_stop" {
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
