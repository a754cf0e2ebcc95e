// Package retention enforces age and count limits on the record store.
//
// A Pruner applies the configured policy once per call; a Scheduler runs it
// on a cron cadence. Pruning is maintenance work and never touches the
// request path.
package retention
