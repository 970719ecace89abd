package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amnesia-labs/amnesia-go/pkg/storage"
	sqliteStore "github.com/amnesia-labs/amnesia-go/pkg/storage/sqlite"
)

func setupSQLiteTest(t *testing.T) storage.Store {
	t.Helper()

	store, err := sqliteStore.NewClient(&sqliteStore.Config{
		DBPath: filepath.Join(t.TempDir(), "amnesia_test.db"),
	})
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRecord(id int64, key string, weight float64, createdAt time.Time) *storage.MemoryRecord {
	return &storage.MemoryRecord{
		ID:             id,
		PersonaID:      1,
		UserID:         "user_001",
		Key:            key,
		Value:          "value of " + key,
		EmotionScore:   0.4,
		Weight:         weight,
		Confidence:     1.0,
		Layer:          storage.LayerShortTerm,
		DecayRate:      0.25,
		LastAccessed:   createdAt,
		LastReinforced: createdAt,
		CreatedAt:      createdAt,
	}
}

func TestSQLiteRecordRoundTrip(t *testing.T) {
	store := setupSQLiteTest(t)
	ctx := context.Background()
	owner := storage.Owner{PersonaID: 1, UserID: "user_001"}

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.InsertRecord(ctx, testRecord(100, "pet_name", 0.8, now)))

	matches, err := store.FindByKey(ctx, owner, "pet_name")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	rec := matches[0]
	assert.Equal(t, int64(100), rec.ID)
	assert.Equal(t, "pet_name", rec.Key)
	assert.Equal(t, "value of pet_name", rec.Value)
	assert.Equal(t, storage.LayerShortTerm, rec.Layer)
	assert.InDelta(t, 0.25, rec.DecayRate, 0.0001)
	assert.WithinDuration(t, now, rec.CreatedAt, time.Second)
}

func TestSQLiteFindByKeyOldestFirst(t *testing.T) {
	store := setupSQLiteTest(t)
	ctx := context.Background()
	owner := storage.Owner{PersonaID: 1, UserID: "user_001"}

	now := time.Now().UTC()
	require.NoError(t, store.InsertRecord(ctx, testRecord(2, "pet_name", 0.5, now)))
	require.NoError(t, store.InsertRecord(ctx, testRecord(1, "pet_name", 0.5, now.Add(-time.Hour))))

	matches, err := store.FindByKey(ctx, owner, "pet_name")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, int64(1), matches[0].ID)
	assert.Equal(t, int64(2), matches[1].ID)
}

func TestSQLiteListByOwnerOrdering(t *testing.T) {
	store := setupSQLiteTest(t)
	ctx := context.Background()
	owner := storage.Owner{PersonaID: 1, UserID: "user_001"}

	now := time.Now().UTC()
	require.NoError(t, store.InsertRecord(ctx, testRecord(1, "pet_name", 0.5, now)))
	require.NoError(t, store.InsertRecord(ctx, testRecord(2, "loss", 2.0, now)))
	require.NoError(t, store.InsertRecord(ctx, testRecord(3, "hometown", 1.0, now)))

	// Other owner scopes stay invisible.
	other := testRecord(4, "pet_name", 3.0, now)
	other.UserID = "user_002"
	require.NoError(t, store.InsertRecord(ctx, other))

	records, err := store.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "loss", records[0].Key)
	assert.Equal(t, "hometown", records[1].Key)
	assert.Equal(t, "pet_name", records[2].Key)
}

func TestSQLiteUpdateRecord(t *testing.T) {
	store := setupSQLiteTest(t)
	ctx := context.Background()
	owner := storage.Owner{PersonaID: 1, UserID: "user_001"}

	now := time.Now().UTC()
	rec := testRecord(1, "pet_name", 0.5, now)
	require.NoError(t, store.InsertRecord(ctx, rec))

	rec.Value = "Luna the tabby"
	rec.Weight = 0.95
	rec.Confidence = 0.8
	rec.Layer = storage.LayerLongTerm
	require.NoError(t, store.UpdateRecord(ctx, rec))

	matches, err := store.FindByKey(ctx, owner, "pet_name")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Luna the tabby", matches[0].Value)
	assert.InDelta(t, 0.95, matches[0].Weight, 0.0001)
	assert.Equal(t, storage.LayerLongTerm, matches[0].Layer)
}

func TestSQLiteUpdateMissingRecord(t *testing.T) {
	store := setupSQLiteTest(t)
	ctx := context.Background()

	rec := testRecord(999, "ghost", 0.5, time.Now().UTC())
	err := store.UpdateRecord(ctx, rec)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSQLiteDeleteRecord(t *testing.T) {
	store := setupSQLiteTest(t)
	ctx := context.Background()
	owner := storage.Owner{PersonaID: 1, UserID: "user_001"}

	require.NoError(t, store.InsertRecord(ctx, testRecord(1, "pet_name", 0.5, time.Now().UTC())))
	require.NoError(t, store.DeleteRecord(ctx, 1))

	matches, err := store.FindByKey(ctx, owner, "pet_name")
	require.NoError(t, err)
	assert.Empty(t, matches)

	assert.ErrorIs(t, store.DeleteRecord(ctx, 1), storage.ErrNotFound)
}

func TestSQLiteDeleteRecordsByOwner(t *testing.T) {
	store := setupSQLiteTest(t)
	ctx := context.Background()
	owner := storage.Owner{PersonaID: 1, UserID: "user_001"}

	now := time.Now().UTC()
	require.NoError(t, store.InsertRecord(ctx, testRecord(1, "pet_name", 0.5, now)))
	other := testRecord(2, "pet_name", 0.5, now)
	other.UserID = "user_002"
	require.NoError(t, store.InsertRecord(ctx, other))

	require.NoError(t, store.DeleteRecordsByOwner(ctx, owner))

	mine, err := store.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, mine)

	theirs, err := store.ListByOwner(ctx, storage.Owner{PersonaID: 1, UserID: "user_002"})
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestSQLiteMessages(t *testing.T) {
	store := setupSQLiteTest(t)
	ctx := context.Background()
	owner := storage.Owner{PersonaID: 1, UserID: "user_001"}

	now := time.Now().UTC()
	contents := []string{"hi", "hello there!", "how was your day?", "pretty good"}
	for i, content := range contents {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		msg := &storage.ChatMessage{
			PersonaID: 1,
			UserID:    "user_001",
			Role:      role,
			Content:   content,
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, store.InsertMessage(ctx, msg))
		assert.NotZero(t, msg.ID, "insert should assign the message ID")
	}

	// Limit applies to the newest messages; order is chronological.
	messages, err := store.RecentMessages(ctx, owner, 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "how was your day?", messages[0].Content)
	assert.Equal(t, "pretty good", messages[1].Content)

	require.NoError(t, store.DeleteMessagesByOwner(ctx, owner))
	messages, err = store.RecentMessages(ctx, owner, 10)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestSQLitePersonaLifecycle(t *testing.T) {
	store := setupSQLiteTest(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	p := &storage.Persona{
		ID:                  10,
		Name:                "Priya",
		Description:         "Your fun college friend",
		PersonalityPrompt:   "You are Priya, a 22-year-old college student...",
		PratfallProbability: 0.15,
		MemoryDecayRate:     0.25,
		RecallDepth:         6,
		EmotionWeight:       1.5,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	require.NoError(t, store.SavePersona(ctx, p))

	got, err := store.GetPersona(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "Priya", got.Name)
	assert.InDelta(t, 0.15, got.PratfallProbability, 0.0001)
	assert.Equal(t, 6, got.RecallDepth)

	// Saving again with the same ID updates in place.
	p.Description = "Updated description"
	require.NoError(t, store.SavePersona(ctx, p))
	got, err = store.GetPersona(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "Updated description", got.Description)

	personas, err := store.ListPersonas(ctx)
	require.NoError(t, err)
	assert.Len(t, personas, 1)

	require.NoError(t, store.DeletePersona(ctx, 10))
	_, err = store.GetPersona(ctx, 10)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, store.DeletePersona(ctx, 10), storage.ErrNotFound)
}
