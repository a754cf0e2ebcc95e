package costs

import (
	"math"
	"testing"

	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/registry"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestEstimateCost(t *testing.T) {
	c := NewCalculator()
	haiku := registry.ModelInfo{
		ID:              "anthropic.claude-3-haiku",
		Provider:        "anthropic",
		InputCostPer1K:  0.00025,
		OutputCostPer1K: 0.00125,
		HasCost:         true,
	}

	// 400-char message -> 110 prompt tokens (chars/4 + 10), max_tokens 200.
	est := c.EstimateCost(haiku, 110, 200)
	want := (0.00025*110 + 0.00125*200) / 1000
	if !almostEqual(est.TotalCost, want) {
		t.Errorf("TotalCost = %v, want %v", est.TotalCost, want)
	}
	if !est.Estimated {
		t.Error("Estimated flag not set")
	}
}

func TestActualCost(t *testing.T) {
	c := NewCalculator()
	gpt4 := registry.ModelInfo{
		ID:              "openai.gpt-4",
		Provider:        "openai",
		InputCostPer1K:  0.03,
		OutputCostPer1K: 0.06,
		HasCost:         true,
	}

	actual := c.ActualCost(gpt4, providers.TokenUsage{
		PromptTokens:     1000,
		CompletionTokens: 500,
	})
	if !almostEqual(actual.TotalCost, 0.03+0.03) {
		t.Errorf("TotalCost = %v, want 0.06", actual.TotalCost)
	}
	if actual.Estimated {
		t.Error("actual cost flagged as estimate")
	}
}

func TestDefaultPricingForUnknownCostRow(t *testing.T) {
	c := NewCalculator()
	unknown := registry.ModelInfo{ID: "huggingface.mistral-7b-instruct", Provider: "huggingface"}

	est := c.EstimateCost(unknown, 1000, 1000)
	want := (DefaultInputCostPer1K*1000 + DefaultOutputCostPer1K*1000) / 1000
	if !almostEqual(est.TotalCost, want) {
		t.Errorf("TotalCost = %v, want default-priced %v", est.TotalCost, want)
	}
}
