package core

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/amnesia-labs/amnesia-go/pkg/llm"
	groqLLM "github.com/amnesia-labs/amnesia-go/pkg/llm/groq"
	ollamaLLM "github.com/amnesia-labs/amnesia-go/pkg/llm/ollama"
	openaiLLM "github.com/amnesia-labs/amnesia-go/pkg/llm/openai"
	"github.com/amnesia-labs/amnesia-go/pkg/memory"
	"github.com/amnesia-labs/amnesia-go/pkg/storage"
	mysqlStore "github.com/amnesia-labs/amnesia-go/pkg/storage/mysql"
	postgresStore "github.com/amnesia-labs/amnesia-go/pkg/storage/postgres"
	sqliteStore "github.com/amnesia-labs/amnesia-go/pkg/storage/sqlite"
	"github.com/amnesia-labs/amnesia-go/pkg/voice"
	elevenlabsVoice "github.com/amnesia-labs/amnesia-go/pkg/voice/elevenlabs"
	whisperVoice "github.com/amnesia-labs/amnesia-go/pkg/voice/whisper"
)

// Client is the main Amnesia client.
//
// It manages companion personas and orchestrates chat turns: recalling
// layered memories, rolling for pratfall moments, generating replies,
// optionally synthesizing speech, and extracting new memories from what
// the user said.
//
// The client is thread-safe and can be used concurrently from multiple
// goroutines.
//
// Example usage:
//
//	config, _ := core.LoadConfigFromEnv()
//	client, _ := core.NewClient(config)
//	defer client.Close()
//
//	persona, _ := client.CreatePersona(ctx, &storage.Persona{
//	    Name:              "Priya",
//	    PersonalityPrompt: "You are Priya, a 22-year-old college student...",
//	})
//	resp, _ := client.Chat(ctx, &core.ChatRequest{
//	    PersonaID: persona.ID,
//	    UserID:    "user_001",
//	    Message:   "I just adopted a cat named Luna!",
//	})
type Client struct {
	// config contains the client configuration.
	config *Config

	// store persists memories, chat history, and personas.
	store storage.Store

	// llm generates replies and extracts facts.
	llm llm.Provider

	// voice synthesizes speech (nil when voice is disabled).
	voice voice.Provider

	// transcriber converts spoken user input to text (nil when
	// transcription is unavailable).
	transcriber voice.Transcriber

	// formatter renders layered memories into prompt text.
	formatter *memory.Formatter

	// node generates unique IDs for personas and memory records.
	node *snowflake.Node

	// rng drives pratfall rolls.
	rng *rand.Rand

	// mu protects the rng; everything else is safe for concurrent use.
	mu sync.Mutex
}

// NewClient creates a new Amnesia client.
//
// The client is initialized with:
//   - Storage backend (SQLite, PostgreSQL, or MySQL)
//   - LLM provider (OpenAI, Groq, or Ollama)
//   - Voice provider (ElevenLabs, optional)
//
// Parameters:
//   - cfg: Configuration containing storage, LLM, and voice settings
//
// Returns a new Client instance, or an error if initialization fails.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := initStorage(cfg.Storage)
	if err != nil {
		return nil, err
	}

	llmProvider, err := initLLM(cfg.LLM)
	if err != nil {
		return nil, err
	}

	voiceProvider, err := initVoice(cfg.Voice)
	if err != nil {
		return nil, err
	}

	client, err := NewClientWithProviders(cfg, store, llmProvider, voiceProvider)
	if err != nil {
		return nil, err
	}
	client.transcriber = initTranscriber(cfg.LLM)
	return client, nil
}

// NewClientWithProviders creates a client with pre-built providers.
//
// This is the injection point for custom backends and for tests that
// substitute scripted providers.
//
// Parameters:
//   - cfg: Configuration (persona defaults and audio settings are read from it)
//   - store: Storage backend
//   - llmProvider: Text-generation provider
//   - voiceProvider: Speech provider, or nil for text-only operation
//
// Returns a new Client instance, or an error if initialization fails.
func NewClientWithProviders(cfg *Config, store storage.Store, llmProvider llm.Provider, voiceProvider voice.Provider) (*Client, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, NewEngineError("NewClient", err)
	}

	cfg.PersonaDefaults = cfg.PersonaDefaults.applyDefaults()

	return &Client{
		config:    cfg,
		store:     store,
		llm:       llmProvider,
		voice:     voiceProvider,
		formatter: memory.NewFormatter(),
		node:      node,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// initStorage creates the storage backend from configuration.
func initStorage(cfg StorageConfig) (storage.Store, error) {
	switch cfg.Provider {
	case "sqlite":
		return sqliteStore.NewClient(&sqliteStore.Config{
			DBPath: getStringConfig(cfg.Config, "db_path", "./amnesia.db"),
		})
	case "postgres":
		return postgresStore.NewClient(&postgresStore.Config{
			Host:     getStringConfig(cfg.Config, "host", "localhost"),
			Port:     getIntConfig(cfg.Config, "port", 5432),
			User:     getStringConfig(cfg.Config, "user", "postgres"),
			Password: getStringConfig(cfg.Config, "password", ""),
			DBName:   getStringConfig(cfg.Config, "db_name", "amnesia"),
			SSLMode:  getStringConfig(cfg.Config, "ssl_mode", "disable"),
		})
	case "mysql":
		return mysqlStore.NewClient(&mysqlStore.Config{
			Host:     getStringConfig(cfg.Config, "host", "127.0.0.1"),
			Port:     getIntConfig(cfg.Config, "port", 3306),
			User:     getStringConfig(cfg.Config, "user", "root"),
			Password: getStringConfig(cfg.Config, "password", ""),
			DBName:   getStringConfig(cfg.Config, "db_name", "amnesia"),
		})
	default:
		return nil, NewEngineError("initStorage",
			fmt.Errorf("%w: unknown storage provider %q", ErrInvalidConfig, cfg.Provider))
	}
}

// initLLM creates the LLM provider from configuration.
func initLLM(cfg LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return openaiLLM.NewClient(&openaiLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	case "groq":
		return groqLLM.NewClient(&groqLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	case "ollama":
		return ollamaLLM.NewClient(&ollamaLLM.Config{
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	default:
		return nil, NewEngineError("initLLM",
			fmt.Errorf("%w: unknown llm provider %q", ErrInvalidConfig, cfg.Provider))
	}
}

// initVoice creates the voice provider from configuration.
//
// A nil configuration disables speech synthesis.
func initVoice(cfg *VoiceConfig) (voice.Provider, error) {
	if cfg == nil {
		return nil, nil
	}
	switch cfg.Provider {
	case "elevenlabs":
		return elevenlabsVoice.NewClient(&elevenlabsVoice.Config{
			APIKey:  cfg.APIKey,
			VoiceID: cfg.VoiceID,
			Model:   cfg.Model,
		})
	case "", "none":
		return nil, nil
	default:
		return nil, NewEngineError("initVoice",
			fmt.Errorf("%w: unknown voice provider %q", ErrInvalidConfig, cfg.Provider))
	}
}

// initTranscriber builds a speech-to-text client when the configured LLM
// vendor also serves a Whisper endpoint. Transcription is best-effort
// infrastructure; a nil result just means Transcribe is unavailable.
func initTranscriber(cfg LLMConfig) voice.Transcriber {
	if cfg.APIKey == "" {
		return nil
	}
	switch cfg.Provider {
	case "groq":
		t, err := whisperVoice.NewClient(&whisperVoice.Config{APIKey: cfg.APIKey})
		if err != nil {
			return nil
		}
		return t
	case "openai":
		t, err := whisperVoice.NewClient(&whisperVoice.Config{
			APIKey:  cfg.APIKey,
			Model:   "whisper-1",
			BaseURL: "https://api.openai.com/v1",
		})
		if err != nil {
			return nil
		}
		return t
	default:
		return nil
	}
}

// manager builds a lifecycle manager tuned to one persona.
//
// Managers are cheap persona-scoped views over the shared store, built
// per call rather than cached.
func (c *Client) manager(p *storage.Persona) *memory.Manager {
	return memory.NewManager(c.store, c.node,
		memory.WithShortTermDecayRate(p.MemoryDecayRate))
}

// pratfallRoll decides whether this turn fakes a memory lapse.
func (c *Client) pratfallRoll(probability float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Float64() < probability
}

// CreatePersona creates a new persona, filling unset tunables with the
// configured defaults.
//
// The persona's ID and timestamps are assigned here; any caller-set ID
// is overwritten.
//
// Parameters:
//   - ctx: Context for cancellation
//   - p: Persona to create (mutated in place)
//
// Returns the stored persona, or an error if validation or persistence fails.
func (c *Client) CreatePersona(ctx context.Context, p *storage.Persona) (*storage.Persona, error) {
	if p == nil || p.Name == "" {
		return nil, NewEngineError("CreatePersona", ErrInvalidInput)
	}

	defaults := c.config.PersonaDefaults
	if p.PratfallProbability == 0 {
		p.PratfallProbability = defaults.PratfallProbability
	}
	if p.MemoryDecayRate == 0 {
		p.MemoryDecayRate = defaults.MemoryDecayRate
	}
	if p.RecallDepth == 0 {
		p.RecallDepth = defaults.RecallDepth
	}
	if p.EmotionWeight == 0 {
		p.EmotionWeight = defaults.EmotionWeight
	}

	now := time.Now().UTC()
	p.ID = c.node.Generate().Int64()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := c.store.SavePersona(ctx, p); err != nil {
		return nil, NewEngineError("CreatePersona", err)
	}
	return p, nil
}

// UpdatePersona updates an existing persona.
//
// Parameters:
//   - ctx: Context for cancellation
//   - p: Persona with ID set and updated fields
//
// Returns an error if the persona does not exist or persistence fails.
func (c *Client) UpdatePersona(ctx context.Context, p *storage.Persona) error {
	if p == nil || p.ID == 0 {
		return NewEngineError("UpdatePersona", ErrInvalidInput)
	}
	if _, err := c.store.GetPersona(ctx, p.ID); err != nil {
		return NewEngineError("UpdatePersona", err)
	}
	p.UpdatedAt = time.Now().UTC()
	if err := c.store.SavePersona(ctx, p); err != nil {
		return NewEngineError("UpdatePersona", err)
	}
	return nil
}

// GetPersona returns a persona by ID.
func (c *Client) GetPersona(ctx context.Context, id int64) (*storage.Persona, error) {
	p, err := c.store.GetPersona(ctx, id)
	if err != nil {
		return nil, NewEngineError("GetPersona", err)
	}
	return p, nil
}

// ListPersonas returns all personas, newest first.
func (c *Client) ListPersonas(ctx context.Context) ([]*storage.Persona, error) {
	personas, err := c.store.ListPersonas(ctx)
	if err != nil {
		return nil, NewEngineError("ListPersonas", err)
	}
	return personas, nil
}

// DeletePersona deletes a persona by ID.
//
// Memories and chat history held by the persona are left in place; they
// are scoped per user and can be cleared with ClearMemories and
// ClearHistory.
func (c *Client) DeletePersona(ctx context.Context, id int64) error {
	if err := c.store.DeletePersona(ctx, id); err != nil {
		return NewEngineError("DeletePersona", err)
	}
	return nil
}

// Memories returns all memories the persona holds about the user,
// strongest first, after applying decay.
func (c *Client) Memories(ctx context.Context, personaID int64, userID string) ([]*storage.MemoryRecord, error) {
	p, err := c.store.GetPersona(ctx, personaID)
	if err != nil {
		return nil, NewEngineError("Memories", err)
	}
	records, err := c.manager(p).List(ctx, storage.Owner{PersonaID: personaID, UserID: userID})
	if err != nil {
		return nil, NewEngineError("Memories", err)
	}
	return records, nil
}

// LayeredMemories returns the persona's memories about the user grouped
// by layer, after applying decay.
func (c *Client) LayeredMemories(ctx context.Context, personaID int64, userID string) (*memory.LayeredView, error) {
	p, err := c.store.GetPersona(ctx, personaID)
	if err != nil {
		return nil, NewEngineError("LayeredMemories", err)
	}
	view, err := c.manager(p).Layered(ctx, storage.Owner{PersonaID: personaID, UserID: userID})
	if err != nil {
		return nil, NewEngineError("LayeredMemories", err)
	}
	return view, nil
}

// DeleteMemory deletes a single memory record by ID.
func (c *Client) DeleteMemory(ctx context.Context, id int64) error {
	if err := c.store.DeleteRecord(ctx, id); err != nil {
		return NewEngineError("DeleteMemory", err)
	}
	return nil
}

// ClearMemories removes everything the persona remembers about the user.
func (c *Client) ClearMemories(ctx context.Context, personaID int64, userID string) error {
	owner := storage.Owner{PersonaID: personaID, UserID: userID}
	if err := c.store.DeleteRecordsByOwner(ctx, owner); err != nil {
		return NewEngineError("ClearMemories", err)
	}
	return nil
}

// History returns up to limit recent conversation turns in chronological
// order.
func (c *Client) History(ctx context.Context, personaID int64, userID string, limit int) ([]*storage.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	owner := storage.Owner{PersonaID: personaID, UserID: userID}
	messages, err := c.store.RecentMessages(ctx, owner, limit)
	if err != nil {
		return nil, NewEngineError("History", err)
	}
	return messages, nil
}

// ClearHistory removes the conversation history between the persona and
// the user.
func (c *Client) ClearHistory(ctx context.Context, personaID int64, userID string) error {
	owner := storage.Owner{PersonaID: personaID, UserID: userID}
	if err := c.store.DeleteMessagesByOwner(ctx, owner); err != nil {
		return NewEngineError("ClearHistory", err)
	}
	return nil
}

// Transcribe converts recorded user speech to text so it can be sent
// through Chat.
//
// Parameters:
//   - ctx: Context for cancellation
//   - audio: Encoded audio bytes (webm, mp3, wav)
//   - filename: Original filename, used to hint the audio format
//
// Returns the transcribed text, or an error if no transcriber is
// configured or transcription fails.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if c.transcriber == nil {
		return "", NewEngineError("Transcribe",
			fmt.Errorf("%w: no transcriber configured", ErrVoiceOperation))
	}
	if len(audio) == 0 {
		return "", NewEngineError("Transcribe", ErrInvalidInput)
	}
	text, err := c.transcriber.Transcribe(ctx, audio, filename)
	if err != nil {
		return "", NewEngineError("Transcribe", fmt.Errorf("%w: %v", ErrVoiceOperation, err))
	}
	return text, nil
}

// Close closes the client and releases resources.
func (c *Client) Close() error {
	if c.voice != nil {
		_ = c.voice.Close()
	}
	if c.transcriber != nil {
		_ = c.transcriber.Close()
	}
	if c.llm != nil {
		_ = c.llm.Close()
	}
	return c.store.Close()
}

// getStringConfig gets a string value from the config map or returns the default.
func getStringConfig(config map[string]interface{}, key, defaultValue string) string {
	if v, ok := config[key].(string); ok && v != "" {
		return v
	}
	return defaultValue
}

// getIntConfig gets an int value from the config map or returns the default.
//
// JSON decoding produces float64 for numbers, so both forms are accepted.
func getIntConfig(config map[string]interface{}, key string, defaultValue int) int {
	switch v := config[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return defaultValue
	}
}
