package logging

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern is a named redaction pattern applied to string log values.
type Pattern struct {
	// Name identifies the pattern.
	Name string

	// Pattern is the regular expression to match.
	Pattern string

	// Replacement is the replacement text.
	Replacement string
}

// Redactor masks credentials and other secrets in log fields so that
// provider API keys never reach log sinks.
type Redactor struct {
	patterns map[string]*redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternAPIKey      = "api_key"
	PatternBearerToken = "bearer_token"
	PatternXAPIKey     = "x_api_key"
	PatternPassword    = "password"
	PatternEmail       = "email"
)

// NewRedactor creates a Redactor with the built-in patterns plus any custom
// patterns. Custom patterns that fail to compile are skipped.
func NewRedactor(custom []Pattern) *Redactor {
	r := &Redactor{
		patterns: make(map[string]*redactPattern),
	}

	r.addDefaultPatterns()

	for _, p := range custom {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns[p.Name] = &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		}
	}

	return r
}

// addDefaultPatterns installs the built-in secret patterns.
func (r *Redactor) addDefaultPatterns() {
	defaults := map[string]struct {
		regex       string
		replacement string
	}{
		// Provider API keys (OpenAI "sk-", Anthropic "sk-ant-", generic key=... forms)
		PatternAPIKey: {
			regex:       `(sk-[a-zA-Z0-9\-]+|api[-_]?key[-_:=]\s*[a-zA-Z0-9\-]+)`,
			replacement: "sk-***",
		},

		// Authorization: Bearer tokens
		PatternBearerToken: {
			regex:       `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`,
			replacement: "Bearer ***",
		},

		// x-api-key / api-key header values
		PatternXAPIKey: {
			regex:       `(?i)(x-)?api-key:\s*[^\s]+`,
			replacement: "api-key: ***",
		},

		// Password fields
		PatternPassword: {
			regex:       `(password|passwd|pwd)[:=]\s*[^\s]+`,
			replacement: "$1: ***",
		},

		// Email addresses in prompt excerpts
		PatternEmail: {
			regex:       `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
			replacement: "***@***",
		},
	}

	for name, p := range defaults {
		r.patterns[name] = &redactPattern{
			name:        name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		}
	}
}

// RedactString redacts secrets from a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	redacted := value
	for _, pattern := range r.patterns {
		redacted = pattern.regex.ReplaceAllString(redacted, pattern.replacement)
	}
	return redacted
}

// RedactArgs redacts secrets from variadic slog arguments of the form
// key1, value1, key2, value2, ...
func (r *Redactor) RedactArgs(args ...any) []any {
	if len(args) == 0 {
		return args
	}

	redacted := make([]any, len(args))
	copy(redacted, args)

	for i := 1; i < len(redacted); i += 2 {
		if key, ok := redacted[i-1].(string); ok && isSensitiveKey(key) {
			redacted[i] = maskValue(redacted[i])
			continue
		}
		if str, ok := redacted[i].(string); ok {
			redacted[i] = r.RedactString(str)
		}
	}

	return redacted
}

// isSensitiveKey reports whether a field name indicates secret material.
func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{
		"password", "passwd", "pwd",
		"secret", "token", "api_key", "apikey",
		"authorization", "credential",
	} {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

// maskValue masks a sensitive value, keeping a short prefix for debugging.
func maskValue(value any) any {
	switch v := value.(type) {
	case string:
		if v == "" {
			return ""
		}
		if len(v) <= 4 {
			return "***"
		}
		return v[:4] + "***"
	case fmt.Stringer:
		return "***"
	default:
		return "***"
	}
}

// MaskAPIKey masks an API key, keeping only a short prefix.
func MaskAPIKey(apiKey string) string {
	if len(apiKey) <= 4 {
		return "***"
	}
	return apiKey[:4] + "***"
}
