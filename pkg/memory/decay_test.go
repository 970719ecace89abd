package memory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/amnesia-labs/amnesia-go/pkg/memory"
	"github.com/amnesia-labs/amnesia-go/pkg/storage"
)

func TestDecayedConfidenceNoElapsedTime(t *testing.T) {
	engine := memory.NewDecayEngine(0.25)
	now := time.Now().UTC()

	rec := &storage.MemoryRecord{
		Confidence:   0.8,
		DecayRate:    0.25,
		LastAccessed: now,
	}

	assert.InDelta(t, 0.8, engine.DecayedConfidence(rec, now), 0.0001)
}

func TestDecayedConfidenceOneDay(t *testing.T) {
	engine := memory.NewDecayEngine(0.25)
	now := time.Now().UTC()

	rec := &storage.MemoryRecord{
		Confidence:   1.0,
		DecayRate:    0.25,
		LastAccessed: now.Add(-24 * time.Hour),
	}

	// e^(-0.25) after one day
	assert.InDelta(t, 0.7788, engine.DecayedConfidence(rec, now), 0.001)
}

func TestDecayedConfidenceClockSkew(t *testing.T) {
	engine := memory.NewDecayEngine(0.25)
	now := time.Now().UTC()

	// A last-access timestamp in the future must not inflate confidence.
	rec := &storage.MemoryRecord{
		Confidence:   0.5,
		DecayRate:    0.25,
		LastAccessed: now.Add(time.Hour),
	}

	assert.InDelta(t, 0.5, engine.DecayedConfidence(rec, now), 0.0001)
}

func TestDecayedConfidenceInstantRate(t *testing.T) {
	engine := memory.NewDecayEngine(0.25)
	now := time.Now().UTC()

	// Temporary facts at rate 24/day collapse below the purge floor
	// within a few hours.
	rec := &storage.MemoryRecord{
		Confidence:   1.0,
		DecayRate:    memory.InstantDecayRate,
		LastAccessed: now.Add(-4 * time.Hour),
	}

	decayed := engine.DecayedConfidence(rec, now)
	assert.Less(t, decayed, memory.PurgeConfidenceFloor)
	assert.Greater(t, decayed, 0.0)
}

func TestDecayMonotonicInTime(t *testing.T) {
	engine := memory.NewDecayEngine(0.25)
	now := time.Now().UTC()

	prev := 1.1
	for _, hours := range []int{0, 1, 12, 24, 72, 240} {
		rec := &storage.MemoryRecord{
			Confidence:   1.0,
			DecayRate:    0.25,
			LastAccessed: now.Add(-time.Duration(hours) * time.Hour),
		}
		decayed := engine.DecayedConfidence(rec, now)
		assert.Less(t, decayed, prev, "confidence should shrink as elapsed time grows")
		assert.GreaterOrEqual(t, decayed, 0.0)
		prev = decayed
	}
}

func TestRateForLayerDefaults(t *testing.T) {
	engine := memory.NewDecayEngine(0.5)

	// Explicit record rate wins.
	assert.InDelta(t, 0.1, engine.RateFor(&storage.MemoryRecord{DecayRate: 0.1}), 0.0001)

	// Otherwise the layer default applies.
	assert.InDelta(t, memory.LongTermDecayRate,
		engine.RateFor(&storage.MemoryRecord{Layer: storage.LayerLongTerm}), 0.0001)
	assert.InDelta(t, memory.FadedDecayRate,
		engine.RateFor(&storage.MemoryRecord{Layer: storage.LayerFaded}), 0.0001)
	assert.InDelta(t, 0.5,
		engine.RateFor(&storage.MemoryRecord{Layer: storage.LayerShortTerm}), 0.0001)
}

func TestNewDecayEngineFallback(t *testing.T) {
	engine := memory.NewDecayEngine(0)
	assert.InDelta(t, memory.DefaultShortTermDecayRate, engine.ShortTermRate(), 0.0001)

	engine = memory.NewDecayEngine(-1)
	assert.InDelta(t, memory.DefaultShortTermDecayRate, engine.ShortTermRate(), 0.0001)
}
