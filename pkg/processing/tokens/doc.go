// Package tokens estimates token counts for canonical requests. The shipped
// estimator is character-based (chars/4 with a per-message overhead), which
// keeps routing decisions fast and provider-agnostic. Estimates feed the
// cost- and latency-optimized routers and the prompt-token fallback for
// providers that do not report usage.
package tokens
