package routing

import (
	"context"
	"log/slog"
	"time"

	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/registry"
)

// defaultMaxAttempts caps total attempts per request, primary included,
// regardless of how long the configured fallback chain is.
const defaultMaxAttempts = 4

// AdapterSource resolves provider names to live adapters. Implemented by
// *providerfactory.Manager.
type AdapterSource interface {
	Get(name string) (providers.Adapter, error)
}

// PerformanceReporter receives the outcome of every provider attempt.
// Implemented by *monitor.PerformanceMonitor.
type PerformanceReporter interface {
	Report(model string, success bool, latency time.Duration, tokens int)
}

// Attempt describes one provider call made by the executor.
type Attempt struct {
	// Model is the model the attempt targeted.
	Model registry.ModelInfo

	// Index is the 1-based attempt number within the request.
	Index int

	// Strategy is the routing strategy that selected the model.
	Strategy string

	// Latency is how long the attempt took.
	Latency time.Duration

	// Usage is the token usage reported by the backend, when known.
	Usage providers.TokenUsage

	// Err is the attempt's failure, nil on success.
	Err error
}

// AttemptObserver receives every attempt for persistence. Calls must be
// cheap and must not fail the request.
type AttemptObserver interface {
	ObserveAttempt(ctx context.Context, att Attempt)
}

// Executor routes a request, invokes the selected adapter and walks the
// configured fallback chain when attempts fail.
type Executor struct {
	router   *Router
	adapters AdapterSource
	perf     PerformanceReporter
	observer AttemptObserver
	options  func() config.FallbackConfig
	log      *slog.Logger
}

// NewExecutor creates an executor. perf and observer may be nil; options is
// read once per request.
func NewExecutor(router *Router, adapters AdapterSource, perf PerformanceReporter, observer AttemptObserver, options func() config.FallbackConfig) *Executor {
	return &Executor{
		router:   router,
		adapters: adapters,
		perf:     perf,
		observer: observer,
		options:  options,
		log:      slog.Default().With("component", "fallback"),
	}
}

// Do routes and executes a completion request, falling back across the
// configured substitutes until one succeeds or the chain is exhausted.
func (e *Executor) Do(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	primary := e.router.Route(ctx, req)
	if !primary.Success {
		return nil, routeFailure(primary, req.Model)
	}

	var resp *providers.CompletionResponse
	err := e.run(ctx, req.Model, primary, false, func(ctx context.Context, res Result, _ int) (providers.TokenUsage, error) {
		wire := *req
		wire.Model = res.Model.ProviderModelID

		adapter, err := e.adapters.Get(res.Model.Provider)
		if err != nil {
			return providers.TokenUsage{}, err
		}
		out, err := adapter.CreateCompletion(ctx, &wire)
		if err != nil {
			return providers.TokenUsage{}, err
		}
		out.Provider = adapter.Name()
		resp = out
		return out.Usage, nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// DoEmbedding routes and executes an embedding request with the same
// fallback semantics as Do.
func (e *Executor) DoEmbedding(ctx context.Context, req *providers.EmbeddingRequest) (*providers.EmbeddingResponse, error) {
	primary := e.router.RouteEmbedding(ctx, req)
	if !primary.Success {
		return nil, routeFailure(primary, req.Model)
	}

	var resp *providers.EmbeddingResponse
	err := e.run(ctx, req.Model, primary, false, func(ctx context.Context, res Result, _ int) (providers.TokenUsage, error) {
		wire := *req
		wire.Model = res.Model.ProviderModelID

		adapter, err := e.adapters.Get(res.Model.Provider)
		if err != nil {
			return providers.TokenUsage{}, err
		}
		out, err := adapter.CreateEmbedding(ctx, &wire)
		if err != nil {
			return providers.TokenUsage{}, err
		}
		out.Provider = adapter.Name()
		resp = out
		return out.Usage, nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// DoStream routes and opens a completion stream. Fallback applies only until
// the first chunk arrives from a backend; once a chunk exists the stream is
// committed to that backend and later failures surface as stream errors.
func (e *Executor) DoStream(ctx context.Context, req *providers.CompletionRequest) (<-chan *providers.CompletionChunk, error) {
	primary := e.router.Route(ctx, req)
	if !primary.Success {
		return nil, routeFailure(primary, req.Model)
	}

	var out chan *providers.CompletionChunk
	err := e.run(ctx, req.Model, primary, true, func(attemptCtx context.Context, res Result, index int) (providers.TokenUsage, error) {
		wire := *req
		wire.Model = res.Model.ProviderModelID

		adapter, err := e.adapters.Get(res.Model.Provider)
		if err != nil {
			return providers.TokenUsage{}, err
		}

		// The stream outlives the per-attempt timeout; only the wait for
		// the first chunk is bounded by attemptCtx. The open still gets its
		// own cancelable context so an abandoned attempt releases its
		// upstream connection instead of lingering until the request ends.
		streamCtx, cancel := context.WithCancel(ctx)
		upstream, err := adapter.CreateCompletionStream(streamCtx, &wire)
		if err != nil {
			cancel()
			return providers.TokenUsage{}, err
		}

		first, err := awaitFirstChunk(attemptCtx, upstream, res.Model.Provider)
		if err != nil {
			cancel()
			return providers.TokenUsage{}, err
		}

		out = make(chan *providers.CompletionChunk, 16)
		go func() {
			defer cancel()
			e.forward(streamCtx, res, index, first, upstream, out)
		}()
		return providers.TokenUsage{}, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// run executes the attempt loop: primary first, then rule substitutes,
// bounded by the attempt cap and the error-code filter. streaming attempts
// report their outcome at forward completion rather than per call.
func (e *Executor) run(ctx context.Context, requested string, primary Result, streaming bool, call func(context.Context, Result, int) (providers.TokenUsage, error)) error {
	opts := e.options()
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	rule := findRule(opts.Rules, requested, primary.Model.ID)

	var queue []string
	if opts.Enabled && rule != nil {
		queue = append(queue, rule.Fallbacks...)
	}

	current := primary
	tried := make([]string, 0, 1+len(queue))
	fellBack := false
	var lastErr error

	for attempt := 1; ; attempt++ {
		usage, err := e.attempt(ctx, current, attempt, streaming, call)
		if err == nil {
			if fellBack {
				e.log.Info("fallback succeeded",
					"requested_model", requested,
					"model", current.Model.ID,
					"attempt", attempt,
					"tokens", usage.TotalTokens,
				)
			}
			return nil
		}

		lastErr = err
		tried = append(tried, current.Model.ID)

		// Cancellation ends the chain immediately.
		if ctx.Err() != nil {
			break
		}
		if attempt >= maxAttempts {
			break
		}
		if rule != nil && !codeEligible(rule.OnlyErrorCodes, err) {
			break
		}

		next, ok := e.nextSubstitute(ctx, &queue)
		if !ok {
			break
		}

		e.log.Warn("attempt failed, falling back",
			"requested_model", requested,
			"failed_model", current.Model.ID,
			"next_model", next.Model.ID,
			"error_code", providers.CodeOf(err),
		)
		current = next
		fellBack = true
	}

	if fellBack {
		return &FallbackExhaustedError{
			Model:    requested,
			Attempts: len(tried),
			Tried:    tried,
			LastErr:  lastErr,
		}
	}
	return lastErr
}

// attempt runs one provider call under the per-attempt timeout and reports
// the outcome to the monitor and the observer. Successful stream openings
// are not reported here; forward reports them once the stream ends.
func (e *Executor) attempt(ctx context.Context, res Result, index int, streaming bool, call func(context.Context, Result, int) (providers.TokenUsage, error)) (providers.TokenUsage, error) {
	attemptCtx := ctx
	if timeout := e.options().AttemptTimeout; timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	usage, err := call(attemptCtx, res, index)
	latency := time.Since(start)

	deferred := streaming && err == nil
	if e.perf != nil && !deferred {
		e.perf.Report(res.Model.ID, err == nil, latency, usage.TotalTokens)
	}
	if e.observer != nil && !deferred {
		e.observer.ObserveAttempt(ctx, Attempt{
			Model:    res.Model,
			Index:    index,
			Strategy: res.Strategy,
			Latency:  latency,
			Usage:    usage,
			Err:      err,
		})
	}
	return usage, err
}

// nextSubstitute pops substitutes off the queue until one resolves.
func (e *Executor) nextSubstitute(ctx context.Context, queue *[]string) (Result, bool) {
	for len(*queue) > 0 {
		id := (*queue)[0]
		*queue = (*queue)[1:]

		res := e.router.ResolveModel(ctx, id)
		if res.Success {
			return res, true
		}
		e.log.Warn("fallback model did not resolve", "model", id)
	}
	return Result{}, false
}

// forward relays upstream chunks to the client and reports the stream
// outcome once the channel drains.
func (e *Executor) forward(ctx context.Context, res Result, index int, first *providers.CompletionChunk, upstream <-chan *providers.CompletionChunk, out chan<- *providers.CompletionChunk) {
	defer close(out)

	start := time.Now()
	success := true
	var usage providers.TokenUsage

	send := func(chunk *providers.CompletionChunk) bool {
		if chunk.Err != nil {
			success = false
		}
		if chunk.Usage != nil {
			usage = *chunk.Usage
		}
		select {
		case out <- chunk:
			return true
		case <-ctx.Done():
			success = false
			return false
		}
	}

	forwarded := send(first)
	for forwarded {
		chunk, ok := <-upstream
		if !ok {
			break
		}
		forwarded = send(chunk)
	}

	latency := time.Since(start)
	if e.perf != nil {
		e.perf.Report(res.Model.ID, success, latency, usage.TotalTokens)
	}
	if e.observer != nil {
		var attErr error
		if !success {
			attErr = &providers.StreamError{Provider: res.Model.Provider, Message: "stream failed mid-flight"}
		}
		e.observer.ObserveAttempt(context.WithoutCancel(ctx), Attempt{
			Model:    res.Model,
			Index:    index,
			Strategy: res.Strategy,
			Latency:  latency,
			Usage:    usage,
			Err:      attErr,
		})
	}
}

// awaitFirstChunk waits for the first upstream chunk. An error chunk or a
// channel closed before any data is an attempt failure, still eligible for
// fallback.
func awaitFirstChunk(ctx context.Context, upstream <-chan *providers.CompletionChunk, provider string) (*providers.CompletionChunk, error) {
	select {
	case chunk, ok := <-upstream:
		if !ok {
			return nil, &providers.StreamError{
				Provider: provider,
				Message:  "stream closed before the first chunk",
			}
		}
		if chunk.Err != nil {
			return nil, chunk.Err
		}
		return chunk, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// findRule returns the fallback rule matching the requested or resolved
// model id, or nil.
func findRule(rules []config.FallbackRule, requested, resolved string) *config.FallbackRule {
	for i := range rules {
		if rules[i].Model == requested || rules[i].Model == resolved {
			return &rules[i]
		}
	}
	return nil
}

// codeEligible reports whether the failure's error code passes the rule's
// filter. An empty filter admits every code.
func codeEligible(only []string, err error) bool {
	if len(only) == 0 {
		return true
	}
	code := providers.CodeOf(err)
	for _, c := range only {
		if c == code {
			return true
		}
	}
	return false
}

// routeFailure converts an unsuccessful routing result into an error.
func routeFailure(res Result, model string) error {
	if res.Err != nil {
		return res.Err
	}
	return &Error{Model: model, Reason: "no provider for model"}
}
