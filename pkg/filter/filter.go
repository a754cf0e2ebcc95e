package filter

import (
	"fmt"
	"log/slog"
	"regexp"

	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/providers"
)

// Filter evaluates request text against a compiled deny-rule table. It is
// immutable after construction and safe for concurrent use; configuration
// reloads build a replacement filter rather than mutating this one.
type Filter struct {
	enabled bool
	rules   []rule
	log     *slog.Logger
}

type rule struct {
	name       string
	re         *regexp.Regexp
	categories []string
}

// New compiles the configured deny rules. A rule whose pattern does not
// compile fails construction; a half-working filter table is worse than a
// startup error.
func New(cfg config.FilterConfig) (*Filter, error) {
	f := &Filter{
		enabled: cfg.Enabled,
		rules:   make([]rule, 0, len(cfg.Rules)),
		log:     slog.Default().With("component", "filter"),
	}

	for _, r := range cfg.Rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("filter rule %q: invalid pattern: %w", r.Name, err)
		}
		f.rules = append(f.rules, rule{name: r.Name, re: re, categories: r.Categories})
	}

	return f, nil
}

// Enabled reports whether the filter evaluates anything at all.
func (f *Filter) Enabled() bool { return f.enabled && len(f.rules) > 0 }

// RuleCount returns the number of compiled rules.
func (f *Filter) RuleCount() int { return len(f.rules) }

// CheckCompletion scans every message of a completion request. The first
// matching rule denies the request.
func (f *Filter) CheckCompletion(req *providers.CompletionRequest) error {
	if !f.Enabled() {
		return nil
	}
	for i := range req.Messages {
		if err := f.check(req.Messages[i].Content); err != nil {
			return err
		}
	}
	return nil
}

// CheckEmbedding scans every input of an embedding request.
func (f *Filter) CheckEmbedding(req *providers.EmbeddingRequest) error {
	if !f.Enabled() {
		return nil
	}
	for _, input := range req.Input {
		if err := f.check(input); err != nil {
			return err
		}
	}
	return nil
}

// check evaluates one text against the rule table in configured order.
func (f *Filter) check(text string) error {
	if text == "" {
		return nil
	}
	for i := range f.rules {
		if f.rules[i].re.MatchString(text) {
			f.log.Warn("request denied by content rule",
				"rule", f.rules[i].name,
				"categories", f.rules[i].categories,
			)
			return &providers.ContentFilteredError{
				Rule:       f.rules[i].name,
				Categories: f.rules[i].categories,
			}
		}
	}
	return nil
}
