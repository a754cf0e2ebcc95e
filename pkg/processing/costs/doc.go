// Package costs computes USD costs for requests from token counts and the
// registry's per-model pricing. Estimated costs feed the cost-optimized
// router; actual costs, derived from provider-reported usage, feed records
// and metrics.
package costs
