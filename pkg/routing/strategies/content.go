package strategies

import (
	"context"
	"fmt"
	"strings"

	"meridian-hq/janus/pkg/processing/content"
	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/registry"
	"meridian-hq/janus/pkg/routing"
)

// longFormMinContext is the context window a model needs to be preferred for
// long-form work.
const longFormMinContext = 32000

// preferredByFamily lists canonical model ids per content family in
// descending priority. The first id registered in the current registry
// snapshot wins. FamilyGeneral is intentionally absent: general requests are
// left to the remaining strategies.
var preferredByFamily = map[content.Family][]string{
	content.FamilyCode:       {"openai.gpt-4-turbo", "anthropic.claude-3-opus", "openai.gpt-4"},
	content.FamilyMath:       {"openai.gpt-4", "anthropic.claude-3-opus", "openai.gpt-4-turbo"},
	content.FamilyCreative:   {"anthropic.claude-3-opus", "openai.gpt-4o", "cohere.command-r-plus"},
	content.FamilyAnalytical: {"anthropic.claude-3-opus", "openai.gpt-4-turbo", "cohere.command-r-plus"},
	content.FamilyLongForm:   {"anthropic.claude-3-sonnet", "openai.gpt-4-turbo", "cohere.command-r"},
}

// ContentBased classifies the user messages into a content family and picks
// from the family's preferred model list.
type ContentBased struct {
	classifier *content.Classifier
}

// NewContentBased creates the content-based strategy.
func NewContentBased() *ContentBased {
	return &ContentBased{classifier: content.NewClassifier()}
}

// Name returns the strategy name.
func (s *ContentBased) Name() string {
	return routing.StrategyContentBased
}

// Route classifies the concatenated user-message text and selects the first
// registered model on the matched family's preferred list. Long-form
// requests first look for the registered model with the largest context
// window of at least 32000 tokens.
func (s *ContentBased) Route(_ context.Context, req *providers.CompletionRequest, env *routing.Env) routing.Result {
	if !env.Options.EnableContentBasedRouting {
		return routing.Result{Strategy: s.Name()}
	}

	var text strings.Builder
	for _, msg := range req.Messages {
		if msg.Role == providers.RoleUser {
			text.WriteString(msg.Content)
			text.WriteString("\n")
		}
	}

	family := s.classifier.Classify(text.String())
	if family == content.FamilyGeneral {
		return routing.Result{Strategy: s.Name()}
	}

	if family == content.FamilyLongForm {
		if info, ok := largestContext(env.Models, longFormMinContext); ok {
			return routing.Result{
				Model:    info,
				Strategy: s.Name(),
				Reason:   fmt.Sprintf("content family %s, largest context window", family),
				Success:  true,
			}
		}
	}

	for _, id := range preferredByFamily[family] {
		info, err := env.Models.GetModel(id)
		if err != nil || !info.Capabilities.Completions {
			continue
		}
		return routing.Result{
			Model:    info,
			Strategy: s.Name(),
			Reason:   fmt.Sprintf("content family %s", family),
			Success:  true,
		}
	}

	return routing.Result{Strategy: s.Name()}
}

// largestContext returns the completion-capable model with the largest
// context window of at least minWindow. Registry order is sorted by id, so
// ties resolve to the lexicographically smallest id.
func largestContext(models routing.ModelSource, minWindow int) (registry.ModelInfo, bool) {
	var best registry.ModelInfo
	found := false
	for _, m := range models.ListModels() {
		if !m.Capabilities.Completions || m.ContextWindow < minWindow {
			continue
		}
		if !found || m.ContextWindow > best.ContextWindow {
			best = m
			found = true
		}
	}
	return best, found
}
