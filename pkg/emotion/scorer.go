// Package emotion provides lexical emotion scoring and temporariness
// classification for conversational text.
//
// Both analyzers are pure functions over injected word lists, so callers
// can substitute custom vocabularies without touching process globals.
package emotion

import (
	"math"
	"strings"
	"unicode"
)

// Scoring weights per keyword tier and boost caps.
const (
	highKeywordWeight   = 0.3
	mediumKeywordWeight = 0.15
	lowKeywordWeight    = 0.05

	exclamationBoost    = 0.1
	exclamationBoostCap = 0.3
	questionBoost       = 0.05
	questionBoostCap    = 0.15
	capsBoostFactor     = 0.2
	capsBoostCap        = 0.2

	// MinScore is the floor for any non-empty analysis; no text is
	// treated as perfectly neutral.
	MinScore = 0.1
)

// Scorer estimates the emotional intensity of a piece of text.
//
// The score is a weighted count of keyword hits plus boosts for
// exclamation marks, question marks, and capitalization. It is
// deterministic and has no side effects.
//
// Example usage:
//
//	scorer := emotion.NewScorer()
//	score := scorer.Score("My dog died yesterday, I'm devastated")
//	// score >= 0.7, treated as a high-emotion memory
type Scorer struct {
	keywords Keywords
}

// NewScorer creates a Scorer with the default keyword sets.
func NewScorer() *Scorer {
	return NewScorerWithKeywords(DefaultKeywords())
}

// NewScorerWithKeywords creates a Scorer with custom keyword sets.
//
// Parameters:
//   - keywords: Weighted keyword tiers to match against
//
// Returns a new Scorer using the given vocabulary.
func NewScorerWithKeywords(keywords Keywords) *Scorer {
	return &Scorer{keywords: keywords}
}

// Score returns the emotional intensity of text in [0.1, 1.0].
//
// The base score counts keyword hits per tier (repeated keywords
// compound: each occurrence of each keyword counts):
//
//	base = 0.3*highHits + 0.15*mediumHits + 0.05*lowHits
//
// Boosts are added for punctuation and capitalization, each capped:
//   - exclamation marks: 0.1 each, capped at 0.3
//   - question marks: 0.05 each, capped at 0.15
//   - upper-case character ratio: ratio*0.2, capped at 0.2
//
// The total is capped at 1.0 and floored at 0.1.
func (s *Scorer) Score(text string) float64 {
	lower := strings.ToLower(text)

	base := float64(countHits(lower, s.keywords.High))*highKeywordWeight +
		float64(countHits(lower, s.keywords.Medium))*mediumKeywordWeight +
		float64(countHits(lower, s.keywords.Low))*lowKeywordWeight

	exclaim := math.Min(float64(strings.Count(text, "!"))*exclamationBoost, exclamationBoostCap)
	question := math.Min(float64(strings.Count(text, "?"))*questionBoost, questionBoostCap)

	upper := 0
	for _, r := range text {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	length := len([]rune(text))
	if length < 1 {
		length = 1
	}
	caps := math.Min(float64(upper)/float64(length)*capsBoostFactor, capsBoostCap)

	score := math.Min(base+exclaim+question+caps, 1.0)
	return math.Max(score, MinScore)
}

// countHits counts keyword occurrences in text.
//
// Hits are occurrence-counted, not deduplicated: a keyword appearing
// twice contributes twice.
func countHits(text string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		hits += strings.Count(text, kw)
	}
	return hits
}
