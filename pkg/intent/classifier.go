package intent

import (
	"strings"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
)

// ClarifyThreshold is the confidence below which a message needs clarification.
const ClarifyThreshold = 0.7

// Confidence constants per branch.
const (
	ConfidenceClear    = 0.9
	ConfidenceContext  = 0.8
	ConfidenceTopical  = 0.75
	ConfidenceFallback = 0.5
)

// Classification is the outcome of classifying one message.
type Classification struct {
	Intent             domain.Intent
	Confidence         float64
	NeedsClarification bool
	// Rule names the rule that matched, or "fallback".
	Rule string
}

// Input is what a rule predicate sees.
type Input struct {
	Text    Text
	History []domain.MemoryEntry
}

// Rule is one row of the classification table.
type Rule struct {
	Name       string
	Intent     domain.Intent
	Confidence float64
	Match      func(in Input) bool
}

// Classifier evaluates an ordered rule table. It is stateless and safe for concurrent use.
type Classifier struct {
	rules     []Rule
	fallback  Rule
	threshold float64
}

// Option configures the Classifier.
type Option func(*Classifier)

// WithRules replaces the rule table.
func WithRules(rules ...Rule) Option {
	return func(c *Classifier) {
		c.rules = rules
	}
}

// WithThreshold overrides ClarifyThreshold.
func WithThreshold(threshold float64) Option {
	return func(c *Classifier) {
		c.threshold = threshold
	}
}

// New creates a Classifier with DefaultRules.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		rules:     DefaultRules(),
		fallback:  Rule{Name: "fallback", Intent: domain.IntentMenu, Confidence: ConfidenceFallback},
		threshold: ClarifyThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify maps a message and its recent history to an intent.
// history is chronological (oldest first).
func (c *Classifier) Classify(message string, history []domain.MemoryEntry) Classification {
	in := Input{Text: NewText(message), History: history}

	rule := c.fallback
	for _, r := range c.rules {
		if r.Match(in) {
			rule = r
			break
		}
	}

	return Classification{
		Intent:             rule.Intent,
		Confidence:         rule.Confidence,
		NeedsClarification: rule.Confidence < c.threshold,
		Rule:               rule.Name,
	}
}

// Rules returns a copy of the active rule table.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// DefaultRules is the canonical rule table. Order matters.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "cart-or-add", Intent: domain.IntentOrder, Confidence: ConfidenceClear,
			Match: func(in Input) bool { return in.Text.Has(CartTerms...) || in.Text.Has(AddVerbs...) },
		},
		{
			Name: "confirm", Intent: domain.IntentConfirmation, Confidence: ConfidenceClear,
			Match: func(in Input) bool { return in.Text.Has(ConfirmVerbs...) },
		},
		{
			Name: "affirm-after-prompt", Intent: domain.IntentConfirmation, Confidence: ConfidenceContext,
			Match: affirmsConfirmPrompt,
		},
		{
			Name: "browse", Intent: domain.IntentMenu, Confidence: ConfidenceClear,
			Match: func(in Input) bool { return in.Text.Has(MenuTerms...) },
		},
		{
			Name: "coffee-talk", Intent: domain.IntentMenu, Confidence: ConfidenceTopical,
			Match: func(in Input) bool { return in.Text.Has(CultureTerms...) },
		},
		{
			Name: "greeting", Intent: domain.IntentGreeting, Confidence: ConfidenceClear,
			Match: func(in Input) bool { return in.Text.Has(GreetingTerms...) && !in.Text.Has(AddVerbs...) },
		},
	}
}

// affirmsConfirmPrompt matches a short affirmative reply to an assistant turn
// that asked the user to confirm.
func affirmsConfirmPrompt(in Input) bool {
	if len(in.History) == 0 || in.Text.Len() == 0 || in.Text.Len() > 3 {
		return false
	}
	if !in.Text.Has(Affirmatives...) {
		return false
	}
	last := in.History[len(in.History)-1]
	return strings.Contains(strings.ToLower(last.AssistantText), "confirm")
}
