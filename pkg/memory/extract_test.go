package memory_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amnesia-labs/amnesia-go/pkg/memory"
)

func TestParseFactsNone(t *testing.T) {
	facts, skipped := memory.ParseFacts("NONE")
	assert.Nil(t, facts)
	assert.Equal(t, 0, skipped)

	facts, skipped = memory.ParseFacts("  none \n")
	assert.Nil(t, facts)
	assert.Equal(t, 0, skipped)

	facts, skipped = memory.ParseFacts("")
	assert.Nil(t, facts)
	assert.Equal(t, 0, skipped)
}

func TestParseFactsBasic(t *testing.T) {
	response := "pet_name: Luna\nfavorite_movie: Inception\njob: software engineer"

	facts, skipped := memory.ParseFacts(response)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, []memory.Fact{
		{Key: "pet_name", Value: "Luna"},
		{Key: "favorite_movie", Value: "Inception"},
		{Key: "job", Value: "software engineer"},
	}, facts)
}

func TestParseFactsStripsListDashes(t *testing.T) {
	response := "- pet_name: Luna\n- hometown: Mumbai"

	facts, skipped := memory.ParseFacts(response)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, "pet_name", facts[0].Key)
	assert.Equal(t, "hometown", facts[1].Key)
}

func TestParseFactsSkipsMalformedLines(t *testing.T) {
	response := strings.Join([]string{
		"pet_name: Luna",
		"this line has no separator",
		": missing key",
		"missing_value:",
		"",
		"job: nurse",
	}, "\n")

	facts, skipped := memory.ParseFacts(response)
	assert.Len(t, facts, 2)
	assert.Equal(t, 3, skipped)
}

func TestParseFactsValueKeepsColons(t *testing.T) {
	facts, skipped := memory.ParseFacts("wake_up: around 7:30 usually")
	assert.Equal(t, 0, skipped)
	assert.Equal(t, []memory.Fact{{Key: "wake_up", Value: "around 7:30 usually"}}, facts)
}

func TestExtractionPromptMentionsFormat(t *testing.T) {
	prompt := memory.ExtractionPrompt("I just adopted a cat named Luna")

	assert.Contains(t, prompt, "I just adopted a cat named Luna")
	assert.Contains(t, prompt, "memory_key: memory_value")
	assert.Contains(t, prompt, memory.NoFactsToken)
}
