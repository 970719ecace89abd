package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config contains the complete configuration for an Amnesia client.
//
// It includes settings for:
//   - Storage backend (for memory, chat history, and persona persistence)
//   - LLM provider (for replies and fact extraction)
//   - Voice provider (optional speech synthesis)
//   - Persona defaults applied when a persona leaves a tunable unset
//
// Example:
//
//	config := &core.Config{
//	    Storage: core.StorageConfig{
//	        Provider: "sqlite",
//	        Config: map[string]interface{}{
//	            "db_path": "./amnesia.db",
//	        },
//	    },
//	    LLM: core.LLMConfig{
//	        Provider: "groq",
//	        APIKey:   "gsk_...",
//	    },
//	}
type Config struct {
	// Storage contains storage backend configuration.
	Storage StorageConfig `json:"storage"`

	// LLM contains LLM provider configuration.
	LLM LLMConfig `json:"llm"`

	// Voice contains voice provider configuration (optional).
	Voice *VoiceConfig `json:"voice,omitempty"`

	// PersonaDefaults contains defaults for persona memory tunables.
	PersonaDefaults PersonaDefaults `json:"persona_defaults"`

	// AudioDir is where synthesized audio files are written.
	// Default: "./audio"
	AudioDir string `json:"audio_dir,omitempty"`
}

// StorageConfig contains configuration for the storage backend.
//
// Supported providers: sqlite, postgres, mysql
//
// Example:
//
//	storageConfig := core.StorageConfig{
//	    Provider: "postgres",
//	    Config: map[string]interface{}{
//	        "host":    "localhost",
//	        "port":    5432,
//	        "user":    "postgres",
//	        "db_name": "amnesia",
//	    },
//	}
type StorageConfig struct {
	// Provider is the storage provider name (sqlite, postgres, mysql).
	Provider string `json:"provider"`

	// Config contains provider-specific configuration.
	// For SQLite: db_path
	// For PostgreSQL: host, port, user, password, db_name, ssl_mode
	// For MySQL: host, port, user, password, db_name
	Config map[string]interface{} `json:"config"`
}

// LLMConfig contains configuration for the LLM provider.
//
// Supported providers: openai, groq, ollama
type LLMConfig struct {
	// Provider is the LLM provider name (openai, groq, ollama).
	Provider string `json:"provider"`

	// APIKey is the API key for the LLM provider.
	APIKey string `json:"api_key"`

	// Model is the model name to use (e.g., "gpt-4o-mini", "llama-3.3-70b-versatile").
	Model string `json:"model"`

	// BaseURL is the base URL for the API (optional, uses provider default if empty).
	BaseURL string `json:"base_url,omitempty"`
}

// VoiceConfig contains configuration for the voice provider.
//
// Supported providers: elevenlabs
type VoiceConfig struct {
	// Provider is the voice provider name (elevenlabs).
	Provider string `json:"provider"`

	// APIKey is the API key for the voice provider.
	APIKey string `json:"api_key"`

	// VoiceID is the default voice identifier, used when a persona
	// has no VoiceRef of its own.
	VoiceID string `json:"voice_id,omitempty"`

	// Model is the TTS model name (optional).
	Model string `json:"model,omitempty"`
}

// PersonaDefaults contains fallback values for persona memory tunables.
//
// These apply when a persona is created without explicit values.
type PersonaDefaults struct {
	// PratfallProbability is the per-turn chance of a simulated memory
	// lapse. Default: 0.15
	PratfallProbability float64 `json:"pratfall_probability,omitempty"`

	// MemoryDecayRate is the short-term decay rate per day. Default: 0.25
	MemoryDecayRate float64 `json:"memory_decay_rate,omitempty"`

	// RecallDepth is the number of recent conversation turns included
	// in the generation prompt. Default: 6
	RecallDepth int `json:"recall_depth,omitempty"`

	// EmotionWeight is the multiplier applied to emotion boosts during
	// reinforcement. Default: 1.5
	EmotionWeight float64 `json:"emotion_weight,omitempty"`
}

// DefaultPersonaDefaults returns the standard persona tunables.
func DefaultPersonaDefaults() PersonaDefaults {
	return PersonaDefaults{
		PratfallProbability: 0.15,
		MemoryDecayRate:     0.25,
		RecallDepth:         6,
		EmotionWeight:       1.5,
	}
}

// applyDefaults fills any unset tunable with its standard value.
func (d PersonaDefaults) applyDefaults() PersonaDefaults {
	std := DefaultPersonaDefaults()
	if d.PratfallProbability == 0 {
		d.PratfallProbability = std.PratfallProbability
	}
	if d.MemoryDecayRate == 0 {
		d.MemoryDecayRate = std.MemoryDecayRate
	}
	if d.RecallDepth == 0 {
		d.RecallDepth = std.RecallDepth
	}
	if d.EmotionWeight == 0 {
		d.EmotionWeight = std.EmotionWeight
	}
	return d
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function:
//  1. Searches for .env or .env.example files (up to 5 directory levels up)
//  2. Loads environment variables from the found file
//  3. Parses environment variables into a Config struct
//
// Supported environment variables:
//   - DATABASE_PROVIDER (sqlite, postgres, mysql)
//   - SQLITE_PATH
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD, etc.
//   - MYSQL_HOST, MYSQL_PORT, MYSQL_USER, MYSQL_PASSWORD, MYSQL_DATABASE
//   - LLM_PROVIDER, LLM_API_KEY, LLM_MODEL, LLM_BASE_URL
//   - VOICE_PROVIDER, ELEVENLABS_API_KEY, ELEVENLABS_VOICE_ID
//   - AUDIO_DIR
//
// Returns a Config instance, or an error if loading fails.
//
// Example:
//
//	config, err := core.LoadConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
func LoadConfigFromEnv() (*Config, error) {
	// Use FindEnvFile to locate .env file (supports upward search)
	envPath, found := FindEnvFile()
	if found {
		_ = godotenv.Load(envPath)
	} else {
		// If not found, try loading from current directory (godotenv default behavior)
		_ = godotenv.Load()
	}

	provider := getEnvOrDefault("DATABASE_PROVIDER", "sqlite")

	storageConfig := make(map[string]interface{})
	switch provider {
	case "sqlite":
		storageConfig = map[string]interface{}{
			"db_path": getEnvOrDefault("SQLITE_PATH", "./amnesia.db"),
		}
	case "postgres":
		port, _ := strconv.Atoi(getEnvOrDefault("POSTGRES_PORT", "5432"))
		storageConfig = map[string]interface{}{
			"host":     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			"port":     port,
			"user":     getEnvOrDefault("POSTGRES_USER", "postgres"),
			"password": os.Getenv("POSTGRES_PASSWORD"),
			"db_name":  getEnvOrDefault("POSTGRES_DATABASE", "amnesia"),
			"ssl_mode": getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		}
	case "mysql":
		port, _ := strconv.Atoi(getEnvOrDefault("MYSQL_PORT", "3306"))
		storageConfig = map[string]interface{}{
			"host":     getEnvOrDefault("MYSQL_HOST", "127.0.0.1"),
			"port":     port,
			"user":     getEnvOrDefault("MYSQL_USER", "root"),
			"password": os.Getenv("MYSQL_PASSWORD"),
			"db_name":  getEnvOrDefault("MYSQL_DATABASE", "amnesia"),
		}
	}

	// Determine provider-specific base URL and default model
	llmProvider := getEnvOrDefault("LLM_PROVIDER", "groq")
	var llmBaseURL string
	var defaultModel string

	switch llmProvider {
	case "groq":
		llmBaseURL = os.Getenv("GROQ_BASE_URL")
		defaultModel = "llama-3.3-70b-versatile"
	case "ollama":
		llmBaseURL = os.Getenv("OLLAMA_BASE_URL")
		if llmBaseURL == "" {
			llmBaseURL = "http://localhost:11434"
		}
		defaultModel = "llama3.1:8b"
	default:
		llmBaseURL = os.Getenv("LLM_BASE_URL")
		defaultModel = "gpt-4o-mini"
	}

	config := &Config{
		Storage: StorageConfig{
			Provider: provider,
			Config:   storageConfig,
		},
		LLM: LLMConfig{
			Provider: llmProvider,
			APIKey:   os.Getenv("LLM_API_KEY"),
			Model:    getEnvOrDefault("LLM_MODEL", defaultModel),
			BaseURL:  llmBaseURL,
		},
		PersonaDefaults: DefaultPersonaDefaults(),
		AudioDir:        getEnvOrDefault("AUDIO_DIR", "./audio"),
	}

	// Voice synthesis is optional
	if os.Getenv("VOICE_PROVIDER") == "elevenlabs" {
		config.Voice = &VoiceConfig{
			Provider: "elevenlabs",
			APIKey:   os.Getenv("ELEVENLABS_API_KEY"),
			VoiceID:  os.Getenv("ELEVENLABS_VOICE_ID"),
			Model:    os.Getenv("ELEVENLABS_MODEL"),
		}
	}

	return config, nil
}

// LoadConfigFromEnvFile loads configuration from a specific .env file.
//
// Parameters:
//   - envPath: Path to the .env file
//
// Returns a Config instance, or an error if loading fails.
func LoadConfigFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadConfigFromEnv()
}

// LoadConfigFromJSON loads configuration from a JSON file.
//
// Parameters:
//   - path: Path to the JSON configuration file
//
// Returns a Config instance, or an error if loading or parsing fails.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewEngineError("LoadConfigFromJSON", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewEngineError("LoadConfigFromJSON", err)
	}

	return &config, nil
}

// Validate validates the configuration.
//
// Checks that all required fields are set:
//   - Storage provider must be specified
//   - LLM provider must be specified
//
// Returns an error if validation fails, nil otherwise.
func (c *Config) Validate() error {
	if c.Storage.Provider == "" {
		return NewEngineError("Validate", ErrInvalidConfig)
	}
	if c.LLM.Provider == "" {
		return NewEngineError("Validate", ErrInvalidConfig)
	}
	return nil
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FindEnvFile searches for .env or .env.example files.
//
// The search:
//  1. Checks the current directory
//  2. Searches up to 5 directory levels up
//  3. Returns the first .env or .env.example file found
//
// Returns:
//   - path: Path to the found file (empty if not found)
//   - found: True if a file was found, false otherwise
func FindEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	// Search upward toward the project root
	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		envExamplePath := filepath.Join(dir, ".env.example")

		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		if _, err := os.Stat(envExamplePath); err == nil {
			return envExamplePath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}
