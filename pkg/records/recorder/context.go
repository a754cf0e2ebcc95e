package recorder

import "context"

// RequestInfo is the request-side context attached before routing so the
// recorder can tie provider attempts back to the client request.
type RequestInfo struct {
	// CorrelationID is the client request's correlation id.
	CorrelationID string

	// User is the end-user identifier, when supplied.
	User string

	// Kind is the request kind (completion, embedding).
	Kind string

	// RequestedModel is the model id the client asked for.
	RequestedModel string

	// Stream reports whether the client requested a stream.
	Stream bool

	// Messages is the conversation length.
	Messages int

	// PromptExcerpt is the leading text of the last user message, already
	// truncated. Left empty when prompt redaction is on.
	PromptExcerpt string
}

type contextKey struct{}

// WithRequestInfo attaches request info to the context.
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, contextKey{}, info)
}

// InfoFromContext extracts the request info attached by WithRequestInfo.
func InfoFromContext(ctx context.Context) (RequestInfo, bool) {
	info, ok := ctx.Value(contextKey{}).(RequestInfo)
	return info, ok
}
