// Package whisper provides a voice.Transcriber backed by a Whisper model
// served over the OpenAI-compatible audio API. Groq hosts
// whisper-large-v3-turbo behind this API, so the client reuses the OpenAI
// SDK with Groq's base URL by default.
package whisper

import (
	"bytes"
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "whisper-large-v3-turbo"
)

// Client transcribes audio through an OpenAI-compatible transcription
// endpoint.
type Client struct {
	client *openai.Client
	model  string
	prompt string
}

// Config is the configuration for the Whisper client.
type Config struct {
	// APIKey is the API key (required).
	APIKey string

	// Model is the transcription model (default: "whisper-large-v3-turbo").
	Model string

	// BaseURL overrides the API base URL (default: Groq's
	// OpenAI-compatible endpoint).
	BaseURL string

	// Prompt optionally biases the transcription, e.g. toward a script
	// or vocabulary. Empty means no bias.
	Prompt string
}

// NewClient creates a new Whisper transcription client.
//
// Parameters:
//   - cfg: Configuration containing APIKey, Model, BaseURL, and Prompt
//
// Returns the client instance, or an error if the configuration is invalid.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("whisper: API key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	} else {
		config.BaseURL = defaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
		prompt: cfg.Prompt,
	}, nil
}

// Transcribe converts audio to text.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - audio: Encoded audio bytes (webm, mp3, wav)
//   - filename: Original filename, used to hint the audio format
//
// Returns the transcribed text and any error.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("whisper: empty audio")
	}
	if filename == "" {
		filename = "audio.webm"
	}

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       c.model,
		FilePath:    filename,
		Reader:      bytes.NewReader(audio),
		Prompt:      c.prompt,
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Close closes the client.
func (c *Client) Close() error {
	return nil
}
