// Package logging provides structured logging for the gateway.
//
// It wraps log/slog with JSON and text handlers, correlation-aware context
// helpers, and a Redactor that masks provider API keys, bearer tokens and
// other credentials before they reach a log sink.
//
//	logger, err := logging.New(logging.Config{
//	    Level:         "info",
//	    Format:        "json",
//	    RedactSecrets: true,
//	})
//	if err != nil {
//	    return err
//	}
//	logger.Install()
//
//	slog.InfoContext(ctx, "request routed",
//	    "model", "anthropic.claude-3-haiku",
//	    "strategy", "CostOptimized",
//	)
package logging
