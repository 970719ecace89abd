package emotion

import "strings"

// TemporaryClassifier detects contextual-only text that should not be
// stored as a durable memory.
//
// Time-of-day, weather, and "what are you doing right now" style
// questions describe the present moment; a human forgets them within
// minutes, so the memory engine gives them near-instant decay.
type TemporaryClassifier struct {
	phrases []string
}

// NewTemporaryClassifier creates a classifier with the default phrase list.
func NewTemporaryClassifier() *TemporaryClassifier {
	return NewTemporaryClassifierWithPhrases(DefaultTemporaryPhrases())
}

// NewTemporaryClassifierWithPhrases creates a classifier with a custom
// phrase list.
//
// Parameters:
//   - phrases: Substrings that mark text as contextual-only
//
// Returns a new TemporaryClassifier using the given phrases.
func NewTemporaryClassifierWithPhrases(phrases []string) *TemporaryClassifier {
	return &TemporaryClassifier{phrases: phrases}
}

// IsTemporary reports whether text contains any temporary phrase.
//
// Matching is case-insensitive substring containment; any single match
// classifies the whole text as temporary.
func (c *TemporaryClassifier) IsTemporary(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range c.phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
