package memory

import (
	"context"
	"math"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/amnesia-labs/amnesia-go/pkg/emotion"
	"github.com/amnesia-labs/amnesia-go/pkg/storage"
)

// Reinforcement and creation constants.
const (
	// reinforceWeightStep is the base weight increase per reinforcement,
	// before the emotion boost.
	reinforceWeightStep = 0.3

	// reinforceConfidenceStep is the confidence restored per reinforcement.
	reinforceConfidenceStep = 0.2

	// MaxWeight caps memory strength.
	MaxWeight = 3.0

	// temporaryWeight is the initial weight for contextual throwaway facts.
	temporaryWeight = 0.3

	// highEmotionThreshold routes a fact straight to long-term memory.
	highEmotionThreshold = 0.7

	// mediumEmotionThreshold routes a fact to slower-fading short-term memory.
	mediumEmotionThreshold = 0.4

	// mediumDecayFactor slows short-term decay for medium-emotion facts.
	mediumDecayFactor = 0.7
)

// Fact is one extracted key/value pair from a user message.
type Fact struct {
	// Key is the short fact identifier, e.g. "pet_name".
	Key string

	// Value is the stated value, e.g. "Luna".
	Value string
}

// ExtractionSummary reports what a StoreFacts pass did.
type ExtractionSummary struct {
	// Created is the number of new records.
	Created int

	// Reinforced is the number of existing records strengthened.
	Reinforced int

	// SkippedTemporary is the number of facts dropped as contextual-only.
	SkippedTemporary int

	// DuplicateAnomalies counts (owner,key) pairs that matched more than
	// one stored record. The first match is reinforced; the anomaly is
	// reported rather than raised.
	DuplicateAnomalies int
}

// LayeredView is a user's memory set grouped by layer, each group
// ordered by weight descending.
type LayeredView struct {
	// LongTerm holds clear, strong memories.
	LongTerm []*storage.MemoryRecord

	// ShortTerm holds recent memories.
	ShortTerm []*storage.MemoryRecord

	// Faded holds vague, uncertain memories.
	Faded []*storage.MemoryRecord
}

// Empty reports whether the view contains no records in any layer.
func (v *LayeredView) Empty() bool {
	return len(v.LongTerm) == 0 && len(v.ShortTerm) == 0 && len(v.Faded) == 0
}

// Manager orchestrates the memory record lifecycle for one persona
// configuration: creation with emotion analysis, reinforcement on
// repeated mention, decay sweeps, and purging of collapsed records.
//
// All record mutation goes through the Manager; no other component
// writes record fields directly, which keeps the weight/confidence/layer
// invariants enforceable in one place.
//
// Example usage:
//
//	mgr := memory.NewManager(store, node,
//	    memory.WithShortTermDecayRate(persona.MemoryDecayRate))
//	rec, err := mgr.Create(ctx, owner, "pet_name", "Luna", userMessage)
type Manager struct {
	store  storage.RecordStore
	scorer *emotion.Scorer
	temp   *emotion.TemporaryClassifier
	decay  *DecayEngine
	node   *snowflake.Node
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithScorer replaces the default emotion scorer.
func WithScorer(s *emotion.Scorer) ManagerOption {
	return func(m *Manager) { m.scorer = s }
}

// WithTemporaryClassifier replaces the default temporariness classifier.
func WithTemporaryClassifier(c *emotion.TemporaryClassifier) ManagerOption {
	return func(m *Manager) { m.temp = c }
}

// WithShortTermDecayRate sets the persona-configured short-term decay
// rate (per day).
func WithShortTermDecayRate(rate float64) ManagerOption {
	return func(m *Manager) { m.decay = NewDecayEngine(rate) }
}

// NewManager creates a lifecycle manager.
//
// Parameters:
//   - store: Record store scoped queries run against
//   - node: Snowflake node for record ID generation
//   - opts: Optional overrides (scorer, classifier, decay rate)
//
// Returns a Manager with default emotion analysis and decay settings
// unless overridden.
func NewManager(store storage.RecordStore, node *snowflake.Node, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		scorer: emotion.NewScorer(),
		temp:   emotion.NewTemporaryClassifier(),
		decay:  NewDecayEngine(DefaultShortTermDecayRate),
		node:   node,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DecayEngine returns the manager's decay engine.
func (m *Manager) DecayEngine() *DecayEngine {
	return m.decay
}

// EmotionScore scores the emotional intensity of text using the
// manager's scorer.
func (m *Manager) EmotionScore(text string) float64 {
	return m.scorer.Score(text)
}

// Create forms a new memory with emotional analysis.
//
// The originating text (falling back to the value, then the key) is
// checked for temporariness and scored for emotion, then the record is
// classified one-shot at creation time:
//
//   - temporary context: weight 0.3, short-term, instant decay, no emotion
//   - emotion >= 0.7: weight 1.5+0.5e, long-term, near-permanent decay
//   - emotion >= 0.4: weight 0.8+0.4e, short-term, slowed decay
//   - otherwise: weight 0.5+0.3e, short-term, standard decay
//
// Confidence starts at 1.0 in every branch. Decay sweeps may later
// reclassify the record.
//
// Parameters:
//   - ctx: Context for cancellation
//   - owner: Persona/user scope the memory belongs to
//   - key: Fact identifier
//   - value: Fact value
//   - contextText: Originating message text for emotion analysis
//
// Returns the stored record, or an error if persistence fails.
func (m *Manager) Create(ctx context.Context, owner storage.Owner, key, value, contextText string) (*storage.MemoryRecord, error) {
	analyzed := contextText
	if analyzed == "" {
		analyzed = value
	}
	if analyzed == "" {
		analyzed = key
	}

	isTemporary := m.temp.IsTemporary(analyzed)
	emotionScore := m.scorer.Score(analyzed)

	var weight, decayRate float64
	var layer storage.Layer

	switch {
	case isTemporary:
		// Forgotten within the hour, like glancing at a clock.
		weight = temporaryWeight
		layer = storage.LayerShortTerm
		decayRate = InstantDecayRate
		emotionScore = 0
	case emotionScore >= highEmotionThreshold:
		weight = 1.5 + emotionScore*0.5
		layer = storage.LayerLongTerm
		decayRate = LongTermDecayRate
	case emotionScore >= mediumEmotionThreshold:
		weight = 0.8 + emotionScore*0.4
		layer = storage.LayerShortTerm
		decayRate = m.decay.ShortTermRate() * mediumDecayFactor
	default:
		weight = 0.5 + emotionScore*0.3
		layer = storage.LayerShortTerm
		decayRate = m.decay.ShortTermRate()
	}

	now := time.Now().UTC()
	rec := &storage.MemoryRecord{
		ID:             m.node.Generate().Int64(),
		PersonaID:      owner.PersonaID,
		UserID:         owner.UserID,
		Key:            key,
		Value:          value,
		EmotionScore:   emotionScore,
		Weight:         weight,
		Confidence:     1.0,
		Layer:          layer,
		DecayRate:      decayRate,
		LastAccessed:   now,
		LastReinforced: now,
		CreatedAt:      now,
	}

	if err := m.store.InsertRecord(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Reinforce strengthens an existing memory on repeated mention.
//
// Weight grows by 0.3 plus the emotion boost (capped at 3.0), confidence
// is partially restored by 0.2 (capped at 1.0), both timestamps are
// touched, the value is overwritten when a new one is given (latest
// mention wins), and the layer is reclassified.
//
// Parameters:
//   - ctx: Context for cancellation
//   - rec: Record to strengthen (mutated in place and written back)
//   - emotionBoost: Caller-supplied boost, typically
//     scorer.Score(newText) * persona.EmotionWeight
//   - newValue: Replacement value; empty keeps the stored value
//
// Returns an error if the write-back fails.
func (m *Manager) Reinforce(ctx context.Context, rec *storage.MemoryRecord, emotionBoost float64, newValue string) error {
	rec.Weight = math.Min(rec.Weight+reinforceWeightStep+emotionBoost, MaxWeight)
	rec.Confidence = math.Min(rec.Confidence+reinforceConfidenceStep, 1.0)

	now := time.Now().UTC()
	rec.LastReinforced = now
	rec.LastAccessed = now

	if newValue != "" {
		rec.Value = newValue
	}

	rec.Layer = ClassifyLayer(rec.Weight, rec.Confidence)

	return m.store.UpdateRecord(ctx, rec)
}

// DecaySweep applies decay to every record in the owner scope.
//
// For each record the new confidence is computed, the layer is
// reclassified, and records whose confidence collapsed below the purge
// floor are deleted. LastAccessed is advanced to the sweep time so the
// next sweep decays only the newly elapsed interval; the accumulated
// multiplications reproduce the exact exponential curve.
//
// Every read-facing operation runs a sweep first, so stale confidence
// never leaks to callers.
func (m *Manager) DecaySweep(ctx context.Context, owner storage.Owner) error {
	records, err := m.store.ListByOwner(ctx, owner)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, rec := range records {
		rec.Confidence = m.decay.DecayedConfidence(rec, now)
		rec.LastAccessed = now
		rec.Layer = ClassifyLayer(rec.Weight, rec.Confidence)

		if rec.Confidence < PurgeConfidenceFloor {
			if err := m.store.DeleteRecord(ctx, rec.ID); err != nil {
				return err
			}
			continue
		}
		if err := m.store.UpdateRecord(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// List returns all records in the owner scope ordered by weight
// descending, after a decay sweep.
func (m *Manager) List(ctx context.Context, owner storage.Owner) ([]*storage.MemoryRecord, error) {
	if err := m.DecaySweep(ctx, owner); err != nil {
		return nil, err
	}
	return m.store.ListByOwner(ctx, owner)
}

// Layered returns the owner's records grouped by layer, after a decay
// sweep. Groups preserve the store's weight-descending order.
func (m *Manager) Layered(ctx context.Context, owner storage.Owner) (*LayeredView, error) {
	records, err := m.List(ctx, owner)
	if err != nil {
		return nil, err
	}

	view := &LayeredView{}
	for _, rec := range records {
		switch rec.Layer {
		case storage.LayerLongTerm:
			view.LongTerm = append(view.LongTerm, rec)
		case storage.LayerShortTerm:
			view.ShortTerm = append(view.ShortTerm, rec)
		default:
			view.Faded = append(view.Faded, rec)
		}
	}
	return view, nil
}

// Delete removes a single record by ID.
//
// Returns storage.ErrNotFound if the record does not exist; deletion of
// a missing record never silently succeeds.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	return m.store.DeleteRecord(ctx, id)
}

// Clear removes all records in the owner scope.
func (m *Manager) Clear(ctx context.Context, owner storage.Owner) error {
	return m.store.DeleteRecordsByOwner(ctx, owner)
}

// StoreFacts persists extracted facts: each fact either reinforces the
// existing (owner,key) record or creates a new one.
//
// Facts whose combined key/value text is temporary are skipped. When a
// key matches more than one stored record the uniqueness invariant has
// been violated at the store layer; the first (oldest) match is
// reinforced and the anomaly is counted in the summary instead of
// raising an error.
//
// Parameters:
//   - ctx: Context for cancellation
//   - owner: Persona/user scope
//   - facts: Extracted key/value pairs
//   - sourceText: The originating user message, scored for emotion
//   - emotionWeight: Persona multiplier applied to reinforcement boosts
//
// Returns a summary of created/reinforced/skipped facts.
func (m *Manager) StoreFacts(ctx context.Context, owner storage.Owner, facts []Fact, sourceText string, emotionWeight float64) (*ExtractionSummary, error) {
	summary := &ExtractionSummary{}

	for _, fact := range facts {
		if m.temp.IsTemporary(fact.Key + " " + fact.Value) {
			summary.SkippedTemporary++
			continue
		}

		matches, err := m.store.FindByKey(ctx, owner, fact.Key)
		if err != nil {
			return summary, err
		}

		if len(matches) > 0 {
			if len(matches) > 1 {
				summary.DuplicateAnomalies++
			}
			boost := m.scorer.Score(sourceText) * emotionWeight
			if err := m.Reinforce(ctx, matches[0], boost, fact.Value); err != nil {
				return summary, err
			}
			summary.Reinforced++
			continue
		}

		if _, err := m.Create(ctx, owner, fact.Key, fact.Value, sourceText); err != nil {
			return summary, err
		}
		summary.Created++
	}

	return summary, nil
}
