package memory

import (
	"fmt"
	"strings"
)

// NoFactsToken is the literal the generation capability returns when a
// message contains nothing worth remembering.
const NoFactsToken = "NONE"

// ExtractionPrompt builds the fact-extraction prompt for a user message.
//
// The generation capability is asked to answer with newline-delimited
// "key: value" lines, or the literal NONE token when the message holds
// no durable facts.
func ExtractionPrompt(userMessage string) string {
	return fmt.Sprintf(`Analyze this message and extract any personal facts worth remembering.

User message: %q

If there are facts like names, preferences, relationships, hobbies, etc., return them in this format:
memory_key: memory_value

Examples:
- pet_name: Luna
- favorite_movie: Inception
- job: software engineer

If no important facts, respond with "NONE".
`, userMessage)
}

// ParseFacts parses a generated extraction response into key/value facts.
//
// The response format is inherently loose free text, so parsing is
// forgiving: lines without a colon, or with an empty key or value, are
// skipped individually and counted rather than failing the batch.
// Leading list dashes are stripped from keys. A response equal to the
// NONE token (or blank) yields zero facts.
//
// Parameters:
//   - response: Raw text from the generation capability
//
// Returns the parsed facts and the number of skipped malformed lines.
func ParseFacts(response string) ([]Fact, int) {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" || strings.EqualFold(trimmed, NoFactsToken) {
		return nil, 0
	}

	var facts []Fact
	skipped := 0

	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			skipped++
			continue
		}

		key = strings.TrimSpace(strings.ReplaceAll(key, "-", ""))
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			skipped++
			continue
		}

		facts = append(facts, Fact{Key: key, Value: value})
	}

	return facts, skipped
}
