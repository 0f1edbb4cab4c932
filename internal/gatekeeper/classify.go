package gatekeeper

import (
	"github.com/rcliao/gatekeeper/internal/model"
	"github.com/rcliao/gatekeeper/internal/normalize"
)

// FallbackResponse is served for simple queries with no stored reply.
const FallbackResponse = "Got it! (local response)"

// Rule names the classification step that produced a Decision.
type Rule string

const (
	RuleNotReady       Rule = "not_ready"
	RuleExactMatch     Rule = "exact_match"
	RuleEmpty          Rule = "empty"
	RuleUnknownWord    Rule = "unknown_word"
	RuleUnknownBigram  Rule = "unknown_bigram"
	RuleKnownStructure Rule = "known_structure"
)

// Decision is a classification together with the rule that decided it.
// Detail carries the offending word or pair for the veto rules.
type Decision struct {
	Input    string         `json:"input"`
	Category model.Category `json:"category"`
	Rule     Rule           `json:"rule"`
	Detail   string         `json:"detail,omitempty"`
}

// Classify labels raw as simple or complex.
func (g *Gatekeeper) Classify(raw string) model.Category {
	return g.Explain(raw).Category
}

// Explain runs the rule hierarchy and reports which rule matched.
// Rules are tried in order and the first match wins:
//
//  1. the normalized text is a stored phrase
//  2. the text has no words
//  3. any word is outside the simple vocabulary (complex)
//  4. any adjacent pair is outside the simple bigrams (complex)
//  5. otherwise simple
func (g *Gatekeeper) Explain(raw string) Decision {
	text := normalize.Normalize(raw)

	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.ready || g.brain == nil {
		return Decision{Input: text, Category: model.Complex, Rule: RuleNotReady}
	}
	return explain(g.brain, text)
}

func explain(b *model.Brain, text string) Decision {
	d := Decision{Input: text}

	if _, ok := b.SimpleResponses[text]; ok {
		d.Category, d.Rule = model.Simple, RuleExactMatch
		return d
	}

	words := normalize.Words(text)
	if len(words) == 0 {
		d.Category, d.Rule = model.Simple, RuleEmpty
		return d
	}

	for _, w := range words {
		if _, ok := b.SimpleVocab[w]; !ok {
			d.Category, d.Rule, d.Detail = model.Complex, RuleUnknownWord, w
			return d
		}
	}

	for _, pair := range normalize.Bigrams(words) {
		if _, ok := b.SimpleNgrams[pair]; !ok {
			d.Category, d.Rule, d.Detail = model.Complex, RuleUnknownBigram, pair
			return d
		}
	}

	d.Category, d.Rule = model.Simple, RuleKnownStructure
	return d
}

// SimpleResponse returns the stored reply for raw, or FallbackResponse.
func (g *Gatekeeper) SimpleResponse(raw string) string {
	text := normalize.Normalize(raw)

	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.brain != nil {
		if r, ok := g.brain.SimpleResponses[text]; ok {
			return r
		}
	}
	return FallbackResponse
}
