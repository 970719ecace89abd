// Package elevenlabs provides an ElevenLabs implementation of the
// voice.Provider interface.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.elevenlabs.io/v1"

// Client is an ElevenLabs text-to-speech client.
type Client struct {
	client  *http.Client
	apiKey  string
	model   string
	voiceID string
	baseURL string
}

// Config is the configuration for the ElevenLabs client.
type Config struct {
	// APIKey is the ElevenLabs API key (required).
	APIKey string

	// VoiceID is the default voice identifier, used when a synthesis
	// call does not name one.
	VoiceID string

	// Model is the TTS model (default: "eleven_multilingual_v2").
	Model string

	// BaseURL overrides the API base URL (optional).
	BaseURL string

	// HTTPClient overrides the default HTTP client (30 second timeout).
	HTTPClient *http.Client
}

// NewClient creates a new ElevenLabs client.
//
// Parameters:
//   - cfg: Configuration containing APIKey, VoiceID, and Model
//
// Returns the client instance, or an error if the configuration is invalid.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("elevenlabs: API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "eleven_multilingual_v2"
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		client:  client,
		apiKey:  cfg.APIKey,
		model:   model,
		voiceID: cfg.VoiceID,
		baseURL: baseURL,
	}, nil
}

// Synthesize converts text to MP3 audio using the ElevenLabs API.
func (c *Client) Synthesize(ctx context.Context, text, voiceRef string) ([]byte, error) {
	voiceID := voiceRef
	if voiceID == "" {
		voiceID = c.voiceID
	}
	if voiceID == "" {
		return nil, errors.New("elevenlabs: no voice ID configured")
	}

	reqBody := map[string]interface{}{
		"text":     text,
		"model_id": c.model,
		"voice_settings": map[string]interface{}{
			"stability":        0.5,
			"similarity_boost": 0.75,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", c.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("elevenlabs request failed with status %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("elevenlabs: empty audio response")
	}
	return audio, nil
}

// Close closes the client.
func (c *Client) Close() error {
	return nil
}
