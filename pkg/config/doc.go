// Package config defines the gateway configuration model, YAML loading with
// environment variable overrides, validation, and hot reload.
//
// Configuration is published in epochs through a Source. Components read a
// snapshot once per request and are never exposed to a half-applied reload:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	source := config.NewSource(cfg)
//	current := source.Current()
//
// Environment variables use the JANUS_ prefix, for example
// JANUS_SERVER_LISTEN_ADDRESS or JANUS_PROVIDERS_OPENAI_API_KEY.
package config
