// Package registry maintains the catalogue of models the gateway can route
// to. Each model is described by a ModelInfo tuple: canonical id, provider,
// provider-native id, context window, capability flags, pricing, and a
// default latency estimate.
//
// The registry merges three layers, later layers winning field by field:
//
//  1. the built-in catalogue (required, since some providers have no
//     model-listing endpoint),
//  2. dynamic listings fetched from providers that expose them,
//  3. administrator-configured overrides.
//
// Resolution is deterministic and stable across restarts for a given
// configuration. Routers consume the registry read-only.
package registry
