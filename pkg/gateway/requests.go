package gateway

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/records"
	"meridian-hq/janus/pkg/records/recorder"
	"meridian-hq/janus/pkg/telemetry/logging"
	"meridian-hq/janus/pkg/telemetry/tracing"
)

// promptExcerptLen bounds the prompt text stored per request record.
const promptExcerptLen = 200

// Complete validates, routes and executes a completion request.
func (g *Gateway) Complete(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.complete")
	defer span.End()

	if err := g.admit(ctx, span, req.User, func() error {
		if err := validateCompletion(req); err != nil {
			return err
		}
		return g.filter.Load().CheckCompletion(req)
	}); err != nil {
		return nil, err
	}

	ctx = recorder.WithRequestInfo(ctx, g.completionInfo(ctx, req, false))

	start := time.Now()
	resp, err := g.executor.Do(ctx, req)
	if err != nil {
		g.observeFailure(req.Model, providers.CodeOf(err), time.Since(start))
		tracing.RecordError(span, err, providers.CodeOf(err))
		return nil, err
	}

	tracing.WithTokens(span, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
	g.observeSuccess(ctx, req.User, resp.Provider, resp.Model, resp.Usage, time.Since(start))
	return resp, nil
}

// CompleteStream validates, routes and opens a streaming completion. The
// returned channel carries the upstream chunks; usage is accounted once the
// stream drains, from the totals on the final chunk.
func (g *Gateway) CompleteStream(ctx context.Context, req *providers.CompletionRequest) (<-chan *providers.CompletionChunk, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.complete_stream")

	if err := g.admit(ctx, span, req.User, func() error {
		if err := validateCompletion(req); err != nil {
			return err
		}
		return g.filter.Load().CheckCompletion(req)
	}); err != nil {
		span.End()
		return nil, err
	}

	ctx = recorder.WithRequestInfo(ctx, g.completionInfo(ctx, req, true))

	start := time.Now()
	upstream, err := g.executor.DoStream(ctx, req)
	if err != nil {
		g.observeFailure(req.Model, providers.CodeOf(err), time.Since(start))
		tracing.RecordError(span, err, providers.CodeOf(err))
		span.End()
		return nil, err
	}

	out := make(chan *providers.CompletionChunk, 16)
	go g.relayStream(ctx, span, req.User, start, upstream, out)
	return out, nil
}

// Embed validates, routes and executes an embedding request.
func (g *Gateway) Embed(ctx context.Context, req *providers.EmbeddingRequest) (*providers.EmbeddingResponse, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.embed")
	defer span.End()

	if err := g.admit(ctx, span, req.User, func() error {
		if err := validateEmbedding(req); err != nil {
			return err
		}
		return g.filter.Load().CheckEmbedding(req)
	}); err != nil {
		return nil, err
	}

	ctx = recorder.WithRequestInfo(ctx, recorder.RequestInfo{
		CorrelationID:  logging.GetCorrelationID(ctx),
		User:           req.User,
		Kind:           records.KindEmbedding,
		RequestedModel: req.Model,
		Messages:       len(req.Input),
	})

	start := time.Now()
	resp, err := g.executor.DoEmbedding(ctx, req)
	if err != nil {
		g.observeFailure(req.Model, providers.CodeOf(err), time.Since(start))
		tracing.RecordError(span, err, providers.CodeOf(err))
		return nil, err
	}

	tracing.WithTokens(span, resp.Usage.PromptTokens, 0, resp.Usage.TotalTokens)
	g.observeSuccess(ctx, req.User, resp.Provider, resp.Model, resp.Usage, time.Since(start))
	return resp, nil
}

// admit runs the pre-routing gate: schema validation, the content filter
// and the caller's token budget. Failures are counted and traced but never
// reach a provider.
func (g *Gateway) admit(ctx context.Context, span trace.Span, user string, check func() error) error {
	err := check()
	if err == nil && g.usage != nil {
		err = g.usage.Check(ctx, user)
	}
	if err != nil {
		code := providers.CodeOf(err)
		g.collector.RecordRequest("", "", code, 0, 0, 0)
		tracing.RecordError(span, err, code)
	}
	return err
}

// completionInfo builds the record context for a completion request.
func (g *Gateway) completionInfo(ctx context.Context, req *providers.CompletionRequest, stream bool) recorder.RequestInfo {
	return recorder.RequestInfo{
		CorrelationID:  logging.GetCorrelationID(ctx),
		User:           req.User,
		Kind:           records.KindCompletion,
		RequestedModel: req.Model,
		Stream:         stream,
		Messages:       len(req.Messages),
		PromptExcerpt:  recorder.Excerpt(lastUserContent(req.Messages), promptExcerptLen),
	}
}

// relayStream forwards chunks to the client, then accounts the stream once
// the upstream channel closes. Usage totals arrive on the final chunk when
// the backend reports them.
func (g *Gateway) relayStream(ctx context.Context, span trace.Span, user string, start time.Time, upstream <-chan *providers.CompletionChunk, out chan<- *providers.CompletionChunk) {
	defer close(out)
	defer span.End()

	var (
		usage    providers.TokenUsage
		provider string
		model    string
		failed   bool
	)

	for chunk := range upstream {
		if chunk.Provider != "" {
			provider = chunk.Provider
		}
		if chunk.Model != "" {
			model = chunk.Model
		}
		if chunk.Usage != nil {
			usage = *chunk.Usage
		}
		if chunk.Err != nil {
			failed = true
		}

		select {
		case out <- chunk:
		case <-ctx.Done():
			return
		}
	}

	elapsed := time.Since(start)
	if failed {
		g.observeFailure(model, providers.CodeProviderError, elapsed)
		return
	}
	tracing.WithTokens(span, usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)
	g.observeSuccess(context.WithoutCancel(ctx), user, provider, model, usage, elapsed)
}

// observeSuccess records a served request: the request metric with its cost
// and the caller's usage accounting.
func (g *Gateway) observeSuccess(ctx context.Context, user, provider, model string, usage providers.TokenUsage, elapsed time.Duration) {
	var cost float64
	if info, err := g.registry.GetModel(model); err == nil {
		if est := g.costs.ActualCost(info, usage); est != nil {
			cost = est.TotalCost
		}
	}
	g.collector.RecordRequest(provider, model, "success", elapsed, usage.TotalTokens, cost)
	if g.usage != nil {
		g.usage.Record(ctx, user, model, usage)
	}
}

// observeFailure records a failed request under its error code.
func (g *Gateway) observeFailure(model, code string, elapsed time.Duration) {
	g.collector.RecordRequest("", model, code, elapsed, 0, 0)
}

// lastUserContent returns the text of the most recent user message.
func lastUserContent(messages []providers.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == providers.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
