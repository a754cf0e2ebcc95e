package strategies

import (
	"context"
	"strings"
	"testing"

	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/monitor"
)

func TestLatencyOptimizedUsesLiveMetrics(t *testing.T) {
	haiku := modelHaiku()
	gpt35 := modelGPT4()
	gpt35.ID = "openai.gpt-3.5-turbo"
	gpt35.ProviderModelID = "gpt-3.5-turbo"
	gpt35.DefaultLatencyMS = 800

	env := testEnv(config.RoutingConfig{EnableLatencyOptimized: true}, haiku, gpt35)
	env.Performance = &fakePerf{metrics: map[string]monitor.ModelPerformance{
		// 50 observations averaging 400ms.
		"anthropic.claude-3-haiku": {
			Model: "anthropic.claude-3-haiku", RequestCount: 50,
			SuccessCount: 50, TotalLatencyMS: 20000,
		},
		// Too few observations: the configured default (800ms) applies.
		"openai.gpt-3.5-turbo": {
			Model: "openai.gpt-3.5-turbo", RequestCount: 5,
			SuccessCount: 5, TotalLatencyMS: 500,
		},
	}}

	res := NewLatencyOptimized().Route(context.Background(), userRequest("auto", "short prompt"), env)
	if !res.Success {
		t.Fatalf("no selection: %v", res.Err)
	}
	if res.Model.ID != "anthropic.claude-3-haiku" {
		t.Errorf("model = %q, want the 400ms live average over the 800ms default", res.Model.ID)
	}
}

func TestLatencyOptimizedSentinelWithoutData(t *testing.T) {
	// One model with a default, one with neither metrics nor a default.
	seeded := modelGPT4()
	seeded.DefaultLatencyMS = 900
	blank := modelHaiku()
	blank.DefaultLatencyMS = 0

	env := testEnv(config.RoutingConfig{EnableLatencyOptimized: true}, seeded, blank)

	res := NewLatencyOptimized().Route(context.Background(), userRequest("auto", "hi"), env)
	if !res.Success || res.Model.ID != "openai.gpt-4" {
		t.Errorf("model = %q, want the seeded default over the sentinel", res.Model.ID)
	}
}

func TestLatencyOptimizedScalesByPromptSize(t *testing.T) {
	// fast has a low base latency, slow a higher one. The scale factor is
	// identical across models so the ordering never flips, but the
	// adjusted score must grow with prompt size.
	fast := modelGPT4()
	fast.DefaultLatencyMS = 300
	slow := modelHaiku()
	slow.DefaultLatencyMS = 600

	env := testEnv(config.RoutingConfig{EnableLatencyOptimized: true}, fast, slow)

	long := userRequest("auto", strings.Repeat("a", 20000))
	res := NewLatencyOptimized().Route(context.Background(), long, env)
	if !res.Success || res.Model.ID != "openai.gpt-4" {
		t.Errorf("model = %q, want openai.gpt-4", res.Model.ID)
	}
}

func TestLatencyOptimizedNilPerformanceSource(t *testing.T) {
	env := testEnv(config.RoutingConfig{EnableLatencyOptimized: true}, modelGPT4())

	res := NewLatencyOptimized().Route(context.Background(), userRequest("auto", "hi"), env)
	if !res.Success {
		t.Fatalf("nil performance source broke routing: %v", res.Err)
	}
}
