package emotion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amnesia-labs/amnesia-go/pkg/emotion"
)

func TestScoreFloor(t *testing.T) {
	scorer := emotion.NewScorer()

	// Text with no emotional signal still gets the minimum score.
	score := scorer.Score("zzz qqq xyz")
	assert.InDelta(t, emotion.MinScore, score, 0.001)
}

func TestScoreHighEmotionKeywords(t *testing.T) {
	scorer := emotion.NewScorer()

	// Three high-tier hits (mom, died, devastated) plus capped
	// exclamation boost saturates the score.
	score := scorer.Score("My mom died!!! I'm devastated")
	assert.InDelta(t, 1.0, score, 0.001)
}

func TestScoreMediumKeywords(t *testing.T) {
	scorer := emotion.NewScorer()

	// happy + birthday + friend: three medium hits at 0.15 each,
	// plus a small capitalization boost.
	score := scorer.Score("happy birthday friend")
	assert.InDelta(t, 0.45, score, 0.01)
}

func TestScoreExclamationBoostCapped(t *testing.T) {
	scorer := emotion.NewScorer()

	// Six exclamation marks, boost capped at 0.3.
	score := scorer.Score("wow!!!!!!")
	assert.InDelta(t, 0.3, score, 0.001)
}

func TestScoreQuestionBoost(t *testing.T) {
	scorer := emotion.NewScorer()

	// Three question marks at 0.05 each.
	score := scorer.Score("really???")
	assert.InDelta(t, 0.15, score, 0.001)
}

func TestScoreCapsBoostCapped(t *testing.T) {
	scorer := emotion.NewScorer()

	// All-caps text: ratio 1.0 * 0.2 factor, capped at 0.2.
	score := scorer.Score("HELPP")
	assert.InDelta(t, 0.2, score, 0.001)
}

func TestScoreCappedAtOne(t *testing.T) {
	scorer := emotion.NewScorer()

	score := scorer.Score("accident hospital died death funeral cancer trauma!!! WHY???")
	assert.InDelta(t, 1.0, score, 0.001)
}

func TestScoreRepeatedKeywordsCompound(t *testing.T) {
	scorer := emotion.NewScorer()

	single := scorer.Score("i am happy")
	double := scorer.Score("happy happy")
	assert.Greater(t, double, single)
}

func TestScoreCustomKeywords(t *testing.T) {
	scorer := emotion.NewScorerWithKeywords(emotion.Keywords{
		High: []string{"doom"},
	})

	assert.InDelta(t, 0.3, scorer.Score("doom approaches"), 0.01)
	// Default high keywords are not active on a custom scorer.
	assert.InDelta(t, emotion.MinScore, scorer.Score("devastated"), 0.001)
}

func TestIsTemporary(t *testing.T) {
	classifier := emotion.NewTemporaryClassifier()

	assert.True(t, classifier.IsTemporary("What's the weather like today"))
	assert.True(t, classifier.IsTemporary("are you busy right now"))
	assert.True(t, classifier.IsTemporary("CURRENTLY eating lunch"))
	assert.False(t, classifier.IsTemporary("My cat is named Luna"))
	assert.False(t, classifier.IsTemporary("I work as a nurse"))
}

func TestIsTemporaryCustomPhrases(t *testing.T) {
	classifier := emotion.NewTemporaryClassifierWithPhrases([]string{"brb"})

	assert.True(t, classifier.IsTemporary("ok BRB in five"))
	assert.False(t, classifier.IsTemporary("what's the weather"))
}
