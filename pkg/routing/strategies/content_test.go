package strategies

import (
	"context"
	"testing"

	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/routing"
)

func contentOpts() config.RoutingConfig {
	return config.RoutingConfig{EnableContentBasedRouting: true}
}

func TestContentBasedCodeFamily(t *testing.T) {
	env := testEnv(contentOpts(), modelGPT4(), modelGPT4Turbo(), modelHaiku())

	req := userRequest("auto", "please review this:\n```py\nprint(1)\n```")
	res := NewContentBased().Route(context.Background(), req, env)
	if !res.Success {
		t.Fatalf("code request not routed: %v", res.Err)
	}
	if res.Model.ID != "openai.gpt-4-turbo" {
		t.Errorf("model = %q, want openai.gpt-4-turbo (first code preference)", res.Model.ID)
	}
	if res.Strategy != routing.StrategyContentBased {
		t.Errorf("strategy = %q", res.Strategy)
	}
}

func TestContentBasedSkipsUnregisteredPreferences(t *testing.T) {
	// Only gpt-4 registered: code routing falls through turbo and opus.
	env := testEnv(contentOpts(), modelGPT4())

	res := NewContentBased().Route(context.Background(),
		userRequest("auto", "debug this stack trace for me"), env)
	if !res.Success || res.Model.ID != "openai.gpt-4" {
		t.Errorf("model = %q, want openai.gpt-4", res.Model.ID)
	}
}

func TestContentBasedGeneralYieldsNoSelection(t *testing.T) {
	env := testEnv(contentOpts(), modelGPT4(), modelGPT4Turbo())

	res := NewContentBased().Route(context.Background(),
		userRequest("auto", "hello there, how are you today?"), env)
	if res.Success {
		t.Errorf("general request selected %q, want fall-through", res.Model.ID)
	}
}

func TestContentBasedLongFormPrefersLargestContext(t *testing.T) {
	env := testEnv(contentOpts(), modelGPT4(), modelGPT4Turbo(), modelHaiku())

	res := NewContentBased().Route(context.Background(),
		userRequest("auto", "summarize this document into three paragraphs"), env)
	if !res.Success {
		t.Fatalf("long-form request not routed: %v", res.Err)
	}
	// Haiku has the largest context window at or above 32000.
	if res.Model.ID != "anthropic.claude-3-haiku" {
		t.Errorf("model = %q, want anthropic.claude-3-haiku", res.Model.ID)
	}
}

func TestContentBasedLongFormFallsBackToPreferredList(t *testing.T) {
	// No registered model reaches the 32000-token threshold.
	small := modelGPT4()
	sonnet := modelHaiku()
	sonnet.ID = "anthropic.claude-3-sonnet"
	sonnet.ProviderModelID = "claude-3-sonnet-20240229"
	sonnet.ContextWindow = 16000
	env := testEnv(contentOpts(), small, sonnet)

	res := NewContentBased().Route(context.Background(),
		userRequest("auto", "summarize this document into three paragraphs"), env)
	if !res.Success || res.Model.ID != "anthropic.claude-3-sonnet" {
		t.Errorf("model = %q, want anthropic.claude-3-sonnet from the preferred list", res.Model.ID)
	}
}

func TestContentBasedIgnoresAssistantMessages(t *testing.T) {
	env := testEnv(contentOpts(), modelGPT4(), modelGPT4Turbo())

	// Code keywords in an assistant turn must not classify the request.
	req := userRequest("auto", "what should I cook tonight?")
	req.Messages = append(req.Messages, providers.Message{
		Role:    providers.RoleAssistant,
		Content: "```py\nprint(1)\n```",
	})

	res := NewContentBased().Route(context.Background(), req, env)
	if res.Success {
		t.Errorf("assistant content classified the request as %s", res.Reason)
	}
}
