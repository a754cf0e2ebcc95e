package content

import "regexp"

// Family is a content family a request can be classified into.
type Family string

// Content families in classification priority order. The order is part of
// the routing contract: the first matching family wins.
const (
	FamilyCode       Family = "code"
	FamilyMath       Family = "math"
	FamilyCreative   Family = "creative"
	FamilyAnalytical Family = "analytical"
	FamilyLongForm   Family = "long_form"
	FamilyGeneral    Family = "general"
)

// longFormChars is the input length above which a request is treated as
// long-form regardless of phrasing.
const longFormChars = 8000

// familyPatterns are compiled once at startup. Each family matches if any of
// its expressions matches; families are evaluated strictly in order.
var familyPatterns = []struct {
	family   Family
	patterns []*regexp.Regexp
}{
	{
		family: FamilyCode,
		patterns: []*regexp.Regexp{
			regexp.MustCompile("(?s)```.*?```"),
			regexp.MustCompile(`(?i)\b(func|function|def|class|import|package|return|var|const)\b\s`),
			regexp.MustCompile(`(?i)\b(debug|refactor|compile|stack trace|unit test|code review)\b`),
			regexp.MustCompile(`(?i)\bwrite\b.{0,40}\b(code|script|program|function|class)\b`),
			regexp.MustCompile(`(?i)\b(python|javascript|typescript|golang|rust|java|sql)\b.{0,40}\b(code|snippet|query|script|example)\b`),
		},
	},
	{
		family: FamilyMath,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(calculate|compute|solve|equation|integral|derivative|theorem|proof)\b`),
			regexp.MustCompile(`(?i)\b(probability|statistics|algebra|geometry|matrix|vector)\b`),
			regexp.MustCompile(`\d+\s*[-+*/^=]\s*\d+`),
		},
	},
	{
		family: FamilyCreative,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bwrite\b.{0,40}\b(story|poem|song|lyrics|novel|fiction|screenplay|haiku)\b`),
			regexp.MustCompile(`(?i)\b(creative|imaginative|brainstorm|fictional)\b`),
			regexp.MustCompile(`(?i)\bonce upon a time\b`),
		},
	},
	{
		family: FamilyAnalytical,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(analyze|analyse|evaluate|compare|contrast|assess|critique)\b`),
			regexp.MustCompile(`(?i)\b(pros and cons|trade-?offs|implications|root cause)\b`),
			regexp.MustCompile(`(?i)\bwhy\b.{0,60}\b(better|worse|preferred|chosen)\b`),
		},
	},
	{
		family: FamilyLongForm,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(summarize|summarise|condense)\b.{0,60}\b(document|article|paper|report|book|transcript)\b`),
			regexp.MustCompile(`(?i)\b(detailed|comprehensive|in-?depth)\b.{0,40}\b(report|essay|analysis|guide|article)\b`),
			regexp.MustCompile(`(?i)\bwrite\b.{0,40}\b(essay|report|whitepaper|documentation)\b`),
		},
	},
}

// Classifier assigns request text to a content family. The zero value is not
// usable; call NewClassifier.
type Classifier struct{}

// NewClassifier creates a content classifier. All patterns are compiled at
// package init, so construction is free.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify returns the first family whose patterns match the text, in fixed
// priority order Code, Math, Creative, Analytical, LongForm. Inputs longer
// than 8000 characters that match nothing earlier classify as LongForm.
// Everything else is General.
func (c *Classifier) Classify(text string) Family {
	for _, fp := range familyPatterns {
		for _, p := range fp.patterns {
			if p.MatchString(text) {
				return fp.family
			}
		}
	}
	if len(text) > longFormChars {
		return FamilyLongForm
	}
	return FamilyGeneral
}
