// Package storage provides interfaces and types for memory persistence backends.
//
// It defines the RecordStore, MessageStore, and PersonaStore interfaces that all
// storage implementations must satisfy, along with the record types they persist.
package storage

import (
	"context"
	"errors"
	"time"
)

// Predefined errors returned by storage backends.
var (
	// ErrNotFound indicates that a requested row does not exist.
	ErrNotFound = errors.New("not found")
)

// Layer identifies which memory layer a record currently belongs to.
//
// Layers model human-like forgetting:
//   - LayerShortTerm: recently or weakly established facts, fast decay
//   - LayerLongTerm: reinforced or high-emotion facts, near-permanent
//   - LayerFaded: low-confidence facts recalled only vaguely
type Layer string

const (
	// LayerShortTerm is the short-term memory layer (STM).
	LayerShortTerm Layer = "STM"

	// LayerLongTerm is the long-term memory layer (LTM).
	LayerLongTerm Layer = "LTM"

	// LayerFaded is the faded memory layer (FM).
	LayerFaded Layer = "FM"
)

// Owner scopes memory records and chat messages to one persona/user pair.
//
// A record never migrates ownership; every query is scoped by Owner.
type Owner struct {
	// PersonaID identifies the persona that holds the memory.
	PersonaID int64

	// UserID identifies the user the memory is about.
	UserID string
}

// MemoryRecord is one remembered fact about one user, held by one persona.
//
// Records are created with full confidence and an emotion-derived weight,
// then decay exponentially over time. The layer field is a cached
// classification of weight and confidence; it is recomputed on every
// decay pass and never set independently.
type MemoryRecord struct {
	// ID is the unique identifier of the record.
	ID int64

	// PersonaID identifies the persona that holds this memory.
	PersonaID int64

	// UserID identifies the user this memory is about.
	UserID string

	// Key is a short fact identifier, e.g. "pet_name".
	// Unique per (PersonaID, UserID, Key) by convention; the lifecycle
	// manager enforces this with a lookup before creation, not the store.
	Key string

	// Value is the latest known value for the fact.
	// Overwritten on reinforcement (latest mention wins).
	Value string

	// EmotionScore is the emotional intensity at last creation/update (0.0-1.0).
	EmotionScore float64

	// Weight is the memory strength (0.0-3.0).
	// Increased by reinforcement, never decremented; decay acts on confidence.
	Weight float64

	// Confidence is the certainty of the memory (0.0-1.0).
	// Decays exponentially with time; records below the purge floor are
	// deleted on the next decay sweep.
	Confidence float64

	// Layer is the cached layer classification (STM, LTM, or FM).
	Layer Layer

	// DecayRate is the per-day exponential decay rate fixed at creation.
	// If zero, the decay engine falls back to a layer default.
	DecayRate float64

	// LastAccessed drives decay-time computation.
	// Advanced by decay sweeps and reinforcement.
	LastAccessed time.Time

	// LastReinforced is when the memory was last strengthened.
	LastReinforced time.Time

	// CreatedAt is when the memory was first formed.
	CreatedAt time.Time
}

// Owner returns the owner scope of the record.
func (r *MemoryRecord) Owner() Owner {
	return Owner{PersonaID: r.PersonaID, UserID: r.UserID}
}

// ChatMessage is one turn of conversation between a user and a persona.
type ChatMessage struct {
	// ID is the unique identifier of the message.
	ID int64

	// PersonaID identifies the persona in the conversation.
	PersonaID int64

	// UserID identifies the user in the conversation.
	UserID string

	// Role is "user" or "assistant".
	Role string

	// Content is the message text.
	Content string

	// AudioURL is the synthesized voice response location, if any.
	AudioURL string

	// IsPratfall marks assistant turns that simulated a memory lapse.
	IsPratfall bool

	// CreatedAt is when the message was stored.
	CreatedAt time.Time
}

// Persona is a configured AI companion character.
//
// Besides its identity fields, a persona carries the tunables that shape
// its memory behavior: how fast short-term memories decay, how strongly
// emotion reinforces them, how much recent conversation it recalls
// verbatim, and how often it fakes forgetting.
type Persona struct {
	// ID is the unique identifier of the persona.
	ID int64

	// Name is the display name of the persona.
	Name string

	// Description is a short free-text description.
	Description string

	// PersonalityPrompt holds the core personality instructions.
	PersonalityPrompt string

	// VoiceRef references a voice for speech synthesis (provider-specific).
	VoiceRef string

	// PratfallProbability is the per-turn chance of a simulated
	// memory lapse (0.0-1.0). Default 0.15.
	PratfallProbability float64

	// MemoryDecayRate overrides the short-term decay rate (per day).
	// Default 0.25.
	MemoryDecayRate float64

	// RecallDepth is the number of recent turns included verbatim in
	// the generation prompt. Default 6.
	RecallDepth int

	// EmotionWeight is the multiplier applied to emotion boosts during
	// reinforcement. Default 1.5.
	EmotionWeight float64

	// CreatedAt is when the persona was created.
	CreatedAt time.Time

	// UpdatedAt is when the persona was last modified.
	UpdatedAt time.Time
}

// RecordStore defines the persistence contract for memory records.
//
// All backends (SQLite, PostgreSQL, MySQL) must implement this interface.
// Implementations provide per-owner read-committed isolation; operations
// on different owner scopes never conflict.
type RecordStore interface {
	// InsertRecord inserts a new memory record.
	InsertRecord(ctx context.Context, rec *MemoryRecord) error

	// FindByKey returns all records matching (owner, key), oldest first.
	// An empty slice means no match. More than one element indicates a
	// store-level uniqueness anomaly the caller should tolerate.
	FindByKey(ctx context.Context, owner Owner, key string) ([]*MemoryRecord, error)

	// ListByOwner returns all records in the owner scope, ordered by
	// weight descending.
	ListByOwner(ctx context.Context, owner Owner) ([]*MemoryRecord, error)

	// UpdateRecord writes back the mutable fields of a record
	// (value, emotion score, weight, confidence, layer, timestamps).
	// Returns ErrNotFound if the record no longer exists.
	UpdateRecord(ctx context.Context, rec *MemoryRecord) error

	// DeleteRecord deletes a record by ID.
	// Returns ErrNotFound if the record does not exist.
	DeleteRecord(ctx context.Context, id int64) error

	// DeleteRecordsByOwner deletes all records in the owner scope.
	DeleteRecordsByOwner(ctx context.Context, owner Owner) error
}

// MessageStore defines the persistence contract for chat history.
type MessageStore interface {
	// InsertMessage stores one conversation turn.
	InsertMessage(ctx context.Context, msg *ChatMessage) error

	// RecentMessages returns up to limit most-recent messages for the
	// owner scope, in chronological order.
	RecentMessages(ctx context.Context, owner Owner, limit int) ([]*ChatMessage, error)

	// DeleteMessagesByOwner clears the conversation history for the owner scope.
	DeleteMessagesByOwner(ctx context.Context, owner Owner) error
}

// PersonaStore defines the persistence contract for personas.
type PersonaStore interface {
	// SavePersona inserts a persona, or updates it when ID is set and exists.
	SavePersona(ctx context.Context, p *Persona) error

	// GetPersona returns a persona by ID.
	// Returns ErrNotFound if the persona does not exist.
	GetPersona(ctx context.Context, id int64) (*Persona, error)

	// ListPersonas returns all personas, newest first.
	ListPersonas(ctx context.Context) ([]*Persona, error)

	// DeletePersona deletes a persona by ID.
	// Returns ErrNotFound if the persona does not exist.
	DeletePersona(ctx context.Context, id int64) error
}

// Store is the full persistence surface consumed by the chat client.
type Store interface {
	RecordStore
	MessageStore
	PersonaStore

	// Close closes the store and releases resources.
	Close() error
}
