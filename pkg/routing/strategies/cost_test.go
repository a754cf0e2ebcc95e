package strategies

import (
	"context"
	"strings"
	"testing"

	"meridian-hq/janus/pkg/config"
)

func TestCostOptimizedPicksCheapest(t *testing.T) {
	env := testEnv(config.RoutingConfig{EnableCostOptimized: true},
		modelGPT4(), modelHaiku())

	// 400-char prompt with max_tokens 200: est_in = 110, est_out = 200.
	// haiku ~ $0.0002775, gpt-4 ~ $0.0153.
	req := userRequest("auto", strings.Repeat("x", 400))
	req.MaxTokens = 200

	res := NewCostOptimized().Route(context.Background(), req, env)
	if !res.Success {
		t.Fatalf("no selection: %v", res.Err)
	}
	if res.Model.ID != "anthropic.claude-3-haiku" {
		t.Errorf("model = %q, want anthropic.claude-3-haiku", res.Model.ID)
	}
}

func TestCostOptimizedDefaultsOutputBudget(t *testing.T) {
	// Without max_tokens the estimate uses 1000 completion tokens; the
	// cheap model still wins, just with a larger absolute estimate.
	env := testEnv(config.RoutingConfig{EnableCostOptimized: true},
		modelGPT4(), modelHaiku())

	res := NewCostOptimized().Route(context.Background(), userRequest("auto", "hi"), env)
	if !res.Success || res.Model.ID != "anthropic.claude-3-haiku" {
		t.Errorf("model = %q, want anthropic.claude-3-haiku", res.Model.ID)
	}
}

func TestCostOptimizedTieBreaksLexicographically(t *testing.T) {
	a := modelGPT4()
	a.ID = "openai.model-b"
	b := modelGPT4()
	b.ID = "openai.model-a"
	env := testEnv(config.RoutingConfig{EnableCostOptimized: true}, a, b)

	res := NewCostOptimized().Route(context.Background(), userRequest("auto", "hi"), env)
	if !res.Success || res.Model.ID != "openai.model-a" {
		t.Errorf("model = %q, want lexicographically smallest on tie", res.Model.ID)
	}
}

func TestCostOptimizedSkipsUnpricedModels(t *testing.T) {
	unpriced := modelHaiku()
	unpriced.HasCost = false
	unpriced.InputCostPer1K = 0
	unpriced.OutputCostPer1K = 0
	env := testEnv(config.RoutingConfig{EnableCostOptimized: true},
		modelGPT4(), unpriced)

	res := NewCostOptimized().Route(context.Background(), userRequest("auto", "hi"), env)
	if !res.Success || res.Model.ID != "openai.gpt-4" {
		t.Errorf("model = %q, want the only priced model", res.Model.ID)
	}
}

func TestCostOptimizedNoPricedModels(t *testing.T) {
	unpriced := modelGPT4()
	unpriced.HasCost = false
	env := testEnv(config.RoutingConfig{EnableCostOptimized: true}, unpriced)

	res := NewCostOptimized().Route(context.Background(), userRequest("auto", "hi"), env)
	if res.Success {
		t.Error("selection made with no cost rows available")
	}
}
