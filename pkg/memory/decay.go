// Package memory implements the layered memory engine: exponential decay,
// layer classification, the record lifecycle (create, reinforce, sweep,
// purge), and recall formatting for prompt construction.
package memory

import (
	"math"
	"time"

	"github.com/amnesia-labs/amnesia-go/pkg/storage"
)

// Default per-day decay rates, simulating human forgetting.
const (
	// LongTermDecayRate keeps long-term memories for years (1% per day).
	LongTermDecayRate = 0.01

	// FadedDecayRate makes faded memories disappear within days.
	FadedDecayRate = 0.35

	// DefaultShortTermDecayRate fades short-term memories over days;
	// personas may override it.
	DefaultShortTermDecayRate = 0.25

	// InstantDecayRate is assigned to temporary contextual facts
	// (time, weather). At 24.0 per day the effective half-life is
	// well under an hour.
	InstantDecayRate = 24.0
)

const secondsPerDay = 86400.0

// DecayEngine computes time-based confidence decay for memory records.
//
// Confidence follows an exponential curve from the record's last access:
//
//	newConfidence = confidence * e^(-rate * daysPassed)
//
// The effective rate is the record's own decay rate when set, otherwise
// a layer default (long-term memories decay far slower than faded ones).
//
// Example usage:
//
//	engine := memory.NewDecayEngine(persona.MemoryDecayRate)
//	rec.Confidence = engine.DecayedConfidence(rec, time.Now())
type DecayEngine struct {
	// shortTermRate is the per-day decay rate for short-term records
	// without an explicit rate of their own.
	shortTermRate float64
}

// NewDecayEngine creates a decay engine.
//
// Parameters:
//   - shortTermRate: Persona-configured short-term decay rate per day.
//     Zero or negative falls back to DefaultShortTermDecayRate.
func NewDecayEngine(shortTermRate float64) *DecayEngine {
	if shortTermRate <= 0 {
		shortTermRate = DefaultShortTermDecayRate
	}
	return &DecayEngine{shortTermRate: shortTermRate}
}

// ShortTermRate returns the effective short-term decay rate.
func (e *DecayEngine) ShortTermRate() float64 {
	return e.shortTermRate
}

// DecayedConfidence returns the record's confidence after decaying for
// the time elapsed between rec.LastAccessed and now.
//
// The result is monotonically non-increasing in elapsed time and equals
// the input confidence at zero elapsed time. Decay never raises
// confidence; only creation and reinforcement do that.
func (e *DecayEngine) DecayedConfidence(rec *storage.MemoryRecord, now time.Time) float64 {
	daysPassed := now.Sub(rec.LastAccessed).Seconds() / secondsPerDay
	if daysPassed < 0 {
		daysPassed = 0
	}

	rate := e.RateFor(rec)

	decayed := rec.Confidence * math.Exp(-rate*daysPassed)
	return math.Max(decayed, 0)
}

// RateFor returns the effective per-day decay rate for a record:
// the record's own rate when positive, otherwise the default for its
// current layer.
func (e *DecayEngine) RateFor(rec *storage.MemoryRecord) float64 {
	if rec.DecayRate > 0 {
		return rec.DecayRate
	}
	switch rec.Layer {
	case storage.LayerLongTerm:
		return LongTermDecayRate
	case storage.LayerFaded:
		return FadedDecayRate
	default:
		return e.shortTermRate
	}
}
