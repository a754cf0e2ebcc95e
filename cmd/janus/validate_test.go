package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

const testConfigYAML = `server:
  listen_address: ":9090"
providers:
  openai:
    enabled: true
    api_key: sk-test
routing:
  enable_smart_routing: true
  model_aliases:
    cheap: cohere.command-r
fallbacks:
  enabled: true
  rules:
    - model: openai.gpt-4-turbo
      fallbacks: [anthropic.claude-3-sonnet]
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(testConfigYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestValidateConfigJSON(t *testing.T) {
	origCfgFile := cfgFile
	origFormat := validateFlags.format
	defer func() {
		cfgFile = origCfgFile
		validateFlags.format = origFormat
	}()

	cfgFile = writeTestConfig(t)
	validateFlags.format = "json"

	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)

	if err := validateConfig(cmd, nil); err != nil {
		t.Fatalf("validateConfig() error = %v", err)
	}

	var summary configSummary
	if err := json.Unmarshal(buf.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.ListenAddress != ":9090" {
		t.Errorf("ListenAddress = %q", summary.ListenAddress)
	}
	if len(summary.Providers) != 1 || summary.Providers[0] != "openai" {
		t.Errorf("Providers = %v", summary.Providers)
	}
	if summary.Aliases != 1 {
		t.Errorf("Aliases = %d, want 1", summary.Aliases)
	}
	if summary.FallbackRules != 1 {
		t.Errorf("FallbackRules = %d, want 1", summary.FallbackRules)
	}
}

func TestValidateConfigRejectsBadFile(t *testing.T) {
	origCfgFile := cfgFile
	defer func() { cfgFile = origCfgFile }()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfgFile = path

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	if err := validateConfig(cmd, nil); err == nil {
		t.Error("validateConfig() expected error for malformed file")
	}
}
