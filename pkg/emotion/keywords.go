package emotion

// Keywords holds the weighted keyword sets used for emotion scoring.
//
// The three tiers reflect how strongly a topic tends to charge a message:
// life-changing events score high, moderate feelings and relationships
// score medium, mundane daily activity scores low.
type Keywords struct {
	// High contains life-event and extreme-emotion terms.
	High []string

	// Medium contains moderate feelings, relationships, and events.
	Medium []string

	// Low contains casual and mundane daily-activity terms.
	Low []string
}

// DefaultKeywords returns the built-in emotion keyword sets.
func DefaultKeywords() Keywords {
	return Keywords{
		High: []string{
			// Life-changing events
			"accident", "crash", "hospital", "surgery", "died", "death", "funeral", "cancer",
			"disease", "illness", "injury", "hurt", "pain", "emergency",
			// Major life events
			"married", "wedding", "divorce", "born", "baby", "pregnant", "graduation",
			"promoted", "fired", "job", "new job", "moved", "moving",
			// Extreme emotions
			"love", "hate", "devastated", "heartbroken", "betrayed", "betrayal",
			"trauma", "traumatic", "terrified", "scared", "fear", "nightmare",
			// Family and relationships
			"mom", "dad", "mother", "father", "parent", "child", "son", "daughter",
			"family", "grandma", "grandpa", "brother", "sister",
			// Critical moments
			"miracle", "amazing", "terrible", "worst", "best", "ever", "never forget",
			"proposal", "engaged", "broke up", "breakup", "cheated", "lost", "found",
		},
		Medium: []string{
			// Moderate emotions
			"happy", "sad", "angry", "upset", "excited", "nervous", "worried", "anxious",
			"stressed", "relieved", "proud", "disappointed", "frustrated", "jealous",
			// Relationships
			"friend", "girlfriend", "boyfriend", "partner", "colleague", "boss",
			"date", "dating", "relationship", "crush",
			// Events
			"birthday", "anniversary", "celebration", "party", "trip", "vacation",
			"exam", "test", "interview", "meeting", "project",
			// Moderate life details
			"like", "dislike", "enjoy", "prefer", "hope", "wish", "dream", "plan",
			"miss", "remember", "forget",
		},
		Low: []string{
			// Casual
			"okay", "fine", "alright", "good", "nice", "cool", "sure", "yeah",
			"maybe", "sometimes", "usually", "often", "rarely", "occasionally",
			// Daily activities
			"ate", "eat", "breakfast", "lunch", "dinner", "food", "coffee", "tea",
			"sleep", "slept", "woke", "shower", "walk", "run", "gym", "exercise",
			"watch", "watched", "movie", "show", "game", "read", "book",
			"work", "working", "study", "studying", "homework",
		},
	}
}

// DefaultTemporaryPhrases returns the built-in list of contextual-only
// phrases. Text containing any of them describes throwaway context
// (current time, weather, momentary status) rather than a durable fact.
func DefaultTemporaryPhrases() []string {
	return []string{
		"time", "what time", "what's the time", "clock", "hour", "minute",
		"weather", "what's the weather", "temperature", "raining", "sunny",
		"right now", "currently", "at the moment", "this second", "this minute",
		"online", "offline", "available", "busy", "free right now",
		"where are you", "what are you doing", "doing right now",
	}
}
