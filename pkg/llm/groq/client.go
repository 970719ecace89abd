// Package groq provides a Groq implementation of the llm.Provider
// interface. Groq serves an OpenAI-compatible API, so the client reuses
// the OpenAI SDK with a different base URL.
package groq

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/amnesia-labs/amnesia-go/pkg/llm"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

// Client is a Groq text-generation client.
type Client struct {
	client *openai.Client
	model  string
}

// Config is the configuration for the Groq client.
type Config struct {
	// APIKey is the Groq API key (required).
	APIKey string

	// Model is the model name to use (default: "llama-3.3-70b-versatile").
	Model string

	// BaseURL overrides the API base URL (default: Groq's OpenAI-compatible endpoint).
	BaseURL string
}

// NewClient creates a new Groq client.
//
// Parameters:
//   - cfg: Configuration containing APIKey, Model, and BaseURL
//
// Returns the client instance, or an error if the configuration is invalid.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("groq: API key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	} else {
		config.BaseURL = defaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

// Generate generates text from a single prompt.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	return c.GenerateWithMessages(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

// GenerateWithMessages generates text from a conversation history.
func (c *Client) GenerateWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (string, error) {
	options := llm.ApplyGenerateOptions(opts)

	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    chatMessages,
		Temperature: float32(options.Temperature),
		MaxTokens:   options.MaxTokens,
		Stop:        options.Stop,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("groq: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// Close closes the client.
func (c *Client) Close() error {
	return nil
}
