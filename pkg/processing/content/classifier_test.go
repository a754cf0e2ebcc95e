package content

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name string
		text string
		want Family
	}{
		{"fenced code block", "please fix this:\n```py\nprint(1)\n```", FamilyCode},
		{"code keywords", "refactor this function to avoid the stack trace", FamilyCode},
		{"math", "solve the equation 2x + 4 = 10", FamilyMath},
		{"arithmetic", "what is 1234 * 5678", FamilyMath},
		{"creative", "write a short story about a lighthouse keeper", FamilyCreative},
		{"analytical", "compare the pros and cons of SQL and NoSQL", FamilyAnalytical},
		{"long form", "write a comprehensive report on supply chains", FamilyLongForm},
		{"summarize document", "summarize this article for me", FamilyLongForm},
		{"general", "hello, how are you today?", FamilyGeneral},
		{"empty", "", FamilyGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

// Code outranks math even when both match: priority order is part of the
// contract.
func TestClassifyPriorityOrder(t *testing.T) {
	c := NewClassifier()

	text := "write python code to solve the equation 2x + 4 = 10"
	if got := c.Classify(text); got != FamilyCode {
		t.Errorf("Classify = %q, want %q (code outranks math)", got, FamilyCode)
	}
}

func TestClassifyLongInputFallsBackToLongForm(t *testing.T) {
	c := NewClassifier()

	text := strings.Repeat("the quick brown fox jumps over a lazy dog. ", 300)
	if got := c.Classify(text); got != FamilyLongForm {
		t.Errorf("Classify(long input) = %q, want %q", got, FamilyLongForm)
	}
}
