package memory_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amnesia-labs/amnesia-go/pkg/memory"
	"github.com/amnesia-labs/amnesia-go/pkg/storage"
)

// fakeRecordStore is an in-memory RecordStore preserving the interface's
// ordering contracts.
type fakeRecordStore struct {
	records []*storage.MemoryRecord
}

func (f *fakeRecordStore) InsertRecord(_ context.Context, rec *storage.MemoryRecord) error {
	clone := *rec
	f.records = append(f.records, &clone)
	return nil
}

func (f *fakeRecordStore) FindByKey(_ context.Context, owner storage.Owner, key string) ([]*storage.MemoryRecord, error) {
	var out []*storage.MemoryRecord
	for _, r := range f.records {
		if r.Owner() == owner && r.Key == key {
			clone := *r
			out = append(out, &clone)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRecordStore) ListByOwner(_ context.Context, owner storage.Owner) ([]*storage.MemoryRecord, error) {
	var out []*storage.MemoryRecord
	for _, r := range f.records {
		if r.Owner() == owner {
			clone := *r
			out = append(out, &clone)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out, nil
}

func (f *fakeRecordStore) UpdateRecord(_ context.Context, rec *storage.MemoryRecord) error {
	for i, r := range f.records {
		if r.ID == rec.ID {
			clone := *rec
			f.records[i] = &clone
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeRecordStore) DeleteRecord(_ context.Context, id int64) error {
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeRecordStore) DeleteRecordsByOwner(_ context.Context, owner storage.Owner) error {
	kept := f.records[:0]
	for _, r := range f.records {
		if r.Owner() != owner {
			kept = append(kept, r)
		}
	}
	f.records = kept
	return nil
}

func (f *fakeRecordStore) get(id int64) *storage.MemoryRecord {
	for _, r := range f.records {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func newTestManager(t *testing.T, opts ...memory.ManagerOption) (*memory.Manager, *fakeRecordStore) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	store := &fakeRecordStore{}
	return memory.NewManager(store, node, opts...), store
}

var testOwner = storage.Owner{PersonaID: 1, UserID: "user_001"}

func TestCreateTemporaryFact(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	rec, err := mgr.Create(ctx, testOwner, "current_weather", "sunny", "it's sunny right now")
	require.NoError(t, err)

	assert.InDelta(t, 0.3, rec.Weight, 0.0001)
	assert.Equal(t, storage.LayerShortTerm, rec.Layer)
	assert.InDelta(t, memory.InstantDecayRate, rec.DecayRate, 0.0001)
	assert.InDelta(t, 0.0, rec.EmotionScore, 0.0001)
	assert.InDelta(t, 1.0, rec.Confidence, 0.0001)
}

func TestCreateHighEmotionFact(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	rec, err := mgr.Create(ctx, testOwner, "loss", "grandmother passed away",
		"My grandma died last week, I'm devastated and heartbroken")
	require.NoError(t, err)

	assert.Equal(t, storage.LayerLongTerm, rec.Layer)
	assert.InDelta(t, memory.LongTermDecayRate, rec.DecayRate, 0.0001)
	assert.GreaterOrEqual(t, rec.Weight, 1.5+0.7*0.5)
	assert.LessOrEqual(t, rec.Weight, 2.0)
	assert.InDelta(t, 1.0, rec.Confidence, 0.0001)
}

func TestCreateMediumEmotionFact(t *testing.T) {
	mgr, _ := newTestManager(t, memory.WithShortTermDecayRate(0.25))
	ctx := context.Background()

	// happy + birthday + friend: emotion 0.45
	rec, err := mgr.Create(ctx, testOwner, "birthday", "june 12", "happy birthday friend")
	require.NoError(t, err)

	assert.Equal(t, storage.LayerShortTerm, rec.Layer)
	assert.InDelta(t, 0.8+0.45*0.4, rec.Weight, 0.01)
	assert.InDelta(t, 0.25*0.7, rec.DecayRate, 0.0001)
}

func TestCreateLowEmotionFact(t *testing.T) {
	mgr, _ := newTestManager(t, memory.WithShortTermDecayRate(0.25))
	ctx := context.Background()

	rec, err := mgr.Create(ctx, testOwner, "pet_name", "Luna", "my cat is named luna")
	require.NoError(t, err)

	assert.Equal(t, storage.LayerShortTerm, rec.Layer)
	assert.InDelta(t, 0.25, rec.DecayRate, 0.0001)
	assert.GreaterOrEqual(t, rec.Weight, 0.5)
	assert.Less(t, rec.Weight, 0.8)
}

func TestCreateFallsBackToValueForAnalysis(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	// No context text; the value "sunny right now" is analyzed instead
	// and classified temporary.
	rec, err := mgr.Create(ctx, testOwner, "status", "sunny right now", "")
	require.NoError(t, err)
	assert.InDelta(t, memory.InstantDecayRate, rec.DecayRate, 0.0001)
}

func TestReinforceCapsAndReclassifies(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	rec, err := mgr.Create(ctx, testOwner, "pet_name", "Luna", "my cat is named luna")
	require.NoError(t, err)
	baseWeight := rec.Weight

	err = mgr.Reinforce(ctx, rec, 0.5, "Luna the tabby")
	require.NoError(t, err)

	assert.InDelta(t, baseWeight+0.3+0.5, rec.Weight, 0.0001)
	assert.InDelta(t, 1.0, rec.Confidence, 0.0001)
	assert.Equal(t, "Luna the tabby", rec.Value)

	// Stored copy reflects the mutation.
	stored := store.get(rec.ID)
	require.NotNil(t, stored)
	assert.Equal(t, "Luna the tabby", stored.Value)

	// Repeated reinforcement saturates at the weight cap and promotes
	// the record to long-term.
	for i := 0; i < 10; i++ {
		require.NoError(t, mgr.Reinforce(ctx, rec, 0.5, ""))
	}
	assert.InDelta(t, memory.MaxWeight, rec.Weight, 0.0001)
	assert.Equal(t, storage.LayerLongTerm, rec.Layer)
}

func TestReinforceKeepsValueWhenEmpty(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	rec, err := mgr.Create(ctx, testOwner, "pet_name", "Luna", "my cat is named luna")
	require.NoError(t, err)

	require.NoError(t, mgr.Reinforce(ctx, rec, 0, ""))
	assert.Equal(t, "Luna", rec.Value)
}

func TestDecaySweepPurgesCollapsedRecords(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	// A temporary fact last touched four hours ago: e^(-24*4/24) ≈ 0.018,
	// under the purge floor.
	stale, err := mgr.Create(ctx, testOwner, "current_weather", "sunny", "it's sunny right now")
	require.NoError(t, err)
	past := time.Now().UTC().Add(-4 * time.Hour)
	stored := store.get(stale.ID)
	stored.LastAccessed = past

	// A durable fact decays but survives.
	durable, err := mgr.Create(ctx, testOwner, "pet_name", "Luna", "my cat is named luna")
	require.NoError(t, err)
	store.get(durable.ID).LastAccessed = past

	require.NoError(t, mgr.DecaySweep(ctx, testOwner))

	assert.Nil(t, store.get(stale.ID), "collapsed record should be purged")

	survivor := store.get(durable.ID)
	require.NotNil(t, survivor)
	assert.Less(t, survivor.Confidence, 1.0)
	assert.Greater(t, survivor.Confidence, memory.PurgeConfidenceFloor)
}

func TestDecaySweepAdvancesLastAccessed(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	rec, err := mgr.Create(ctx, testOwner, "pet_name", "Luna", "my cat is named luna")
	require.NoError(t, err)
	past := time.Now().UTC().Add(-24 * time.Hour)
	store.get(rec.ID).LastAccessed = past

	require.NoError(t, mgr.DecaySweep(ctx, testOwner))

	first := store.get(rec.ID)
	assert.True(t, first.LastAccessed.After(past))
	confidenceAfterOne := first.Confidence

	// An immediate second sweep decays only the freshly elapsed instant.
	require.NoError(t, mgr.DecaySweep(ctx, testOwner))
	assert.InDelta(t, confidenceAfterOne, store.get(rec.ID).Confidence, 0.001)
}

func TestLayeredGroupsRecords(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.Create(ctx, testOwner, "loss", "grandmother passed away",
		"My grandma died last week, I'm devastated and heartbroken")
	require.NoError(t, err)
	short, err := mgr.Create(ctx, testOwner, "pet_name", "Luna", "my cat is named luna")
	require.NoError(t, err)

	// Age the short-term record until its confidence fades.
	store.get(short.ID).LastAccessed = time.Now().UTC().Add(-6 * 24 * time.Hour)

	view, err := mgr.Layered(ctx, testOwner)
	require.NoError(t, err)

	assert.Len(t, view.LongTerm, 1)
	assert.Empty(t, view.ShortTerm)
	assert.Len(t, view.Faded, 1)
	assert.Equal(t, "pet_name", view.Faded[0].Key)
}

func TestStoreFactsCreatesAndReinforces(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	summary, err := mgr.StoreFacts(ctx, testOwner,
		[]memory.Fact{{Key: "pet_name", Value: "Luna"}},
		"I adopted a cat named Luna", 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 0, summary.Reinforced)

	// Same key again: reinforced, value updated.
	summary, err = mgr.StoreFacts(ctx, testOwner,
		[]memory.Fact{{Key: "pet_name", Value: "Luna the tabby"}},
		"Luna is the best cat ever!", 1.5)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, 1, summary.Reinforced)

	matches, err := store.FindByKey(ctx, testOwner, "pet_name")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Luna the tabby", matches[0].Value)
}

func TestStoreFactsSkipsTemporary(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	summary, err := mgr.StoreFacts(ctx, testOwner,
		[]memory.Fact{{Key: "status", Value: "busy right now"}},
		"I'm busy right now", 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SkippedTemporary)
	assert.Equal(t, 0, summary.Created)
	assert.Empty(t, store.records)
}

func TestStoreFactsDuplicateAnomaly(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	// Two records under the same key violate the uniqueness convention.
	now := time.Now().UTC()
	older := &storage.MemoryRecord{
		ID: 1, PersonaID: testOwner.PersonaID, UserID: testOwner.UserID,
		Key: "pet_name", Value: "Luna", Weight: 0.5, Confidence: 0.9,
		Layer: storage.LayerShortTerm, DecayRate: 0.25,
		LastAccessed: now, LastReinforced: now, CreatedAt: now.Add(-time.Hour),
	}
	newer := &storage.MemoryRecord{
		ID: 2, PersonaID: testOwner.PersonaID, UserID: testOwner.UserID,
		Key: "pet_name", Value: "Max", Weight: 0.5, Confidence: 0.9,
		Layer: storage.LayerShortTerm, DecayRate: 0.25,
		LastAccessed: now, LastReinforced: now, CreatedAt: now,
	}
	require.NoError(t, store.InsertRecord(ctx, older))
	require.NoError(t, store.InsertRecord(ctx, newer))

	summary, err := mgr.StoreFacts(ctx, testOwner,
		[]memory.Fact{{Key: "pet_name", Value: "Luna"}},
		"my cat luna", 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.DuplicateAnomalies)
	assert.Equal(t, 1, summary.Reinforced)

	// The oldest record absorbed the reinforcement.
	assert.Greater(t, store.get(1).Weight, 0.5)
	assert.InDelta(t, 0.5, store.get(2).Weight, 0.0001)
}

func TestClearRemovesOnlyOwnerScope(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.Create(ctx, testOwner, "pet_name", "Luna", "my cat is named luna")
	require.NoError(t, err)

	other := storage.Owner{PersonaID: 2, UserID: "user_002"}
	_, err = mgr.Create(ctx, other, "pet_name", "Rex", "my dog is named rex")
	require.NoError(t, err)

	require.NoError(t, mgr.Clear(ctx, testOwner))

	mine, err := store.ListByOwner(ctx, testOwner)
	require.NoError(t, err)
	assert.Empty(t, mine)

	theirs, err := store.ListByOwner(ctx, other)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}
