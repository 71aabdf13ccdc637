// Package intent classifies free-text chat messages into a closed set of
// conversational intents. The matching patterns are plain rules data so the
// phrase lists can be swapped without touching the classifier.
package intent

import (
	"regexp"
	"strings"
)

type Intent string

const (
	// Decline covers "not interested" phrasing from any stage.
	Decline Intent = "DECLINE"
	// Offerings covers generic questions about available products.
	Offerings Intent = "OFFERINGS"
	// Affirmative covers consent phrases ("yes", "confirm", "proceed").
	Affirmative Intent = "AFFIRMATIVE"
	// None means no recognized intent; the message is handled by the
	// current stage.
	None Intent = "NONE"
)

// Rule binds a pattern to the intent it signals. Rules are evaluated in
// order; the first match wins.
type Rule struct {
	Pattern *regexp.Regexp
	Intent  Intent
}

// DefaultRules is the stock phrase list. Decline outranks everything so a
// "no thanks" during consent is never read as anything else.
var DefaultRules = []Rule{
	{regexp.MustCompile(`(?i)^\s*(no|nope|nah)\s*[.!]*\s*$`), Decline},
	{regexp.MustCompile(`(?i)\bnot\s+interested\b`), Decline},
	{regexp.MustCompile(`(?i)^\s*(cancel|stop|exit|quit)\s*[.!]*\s*$`), Decline},
	{regexp.MustCompile(`(?i)\b(offerings?|products?)\b.*\?`), Offerings},
	{regexp.MustCompile(`(?i)\bwhat\b.*\b(offers?|products?|loans?)\b`), Offerings},
	{regexp.MustCompile(`(?i)^\s*(yes|y|yeah|yep|ok|okay|sure|confirm|proceed)\s*[.!]*\s*$`), Affirmative},
}

type Classifier struct {
	rules []Rule
}

// NewClassifier builds a classifier over the given rules; nil falls back to
// DefaultRules.
func NewClassifier(rules []Rule) *Classifier {
	if rules == nil {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Classify returns the first matching intent for the message, or None.
func (c *Classifier) Classify(text string) Intent {
	text = strings.TrimSpace(text)
	if text == "" {
		return None
	}

	for _, rule := range c.rules {
		if rule.Pattern.MatchString(text) {
			return rule.Intent
		}
	}

	return None
}
