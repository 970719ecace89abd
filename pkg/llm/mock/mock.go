// Package mock provides a scripted llm.Provider for tests and offline
// development. No network calls are made.
package mock

import (
	"context"
	"sync"

	"github.com/amnesia-labs/amnesia-go/pkg/llm"
)

// Provider is a scripted text-generation provider.
//
// Responses are returned in order; once the script is exhausted the
// final response repeats. Every request is recorded for assertions.
//
// Example usage:
//
//	p := mock.New("Hey! Nice to meet you.", "pet_name: Luna")
//	reply, _ := p.Generate(ctx, prompt)
type Provider struct {
	mu        sync.Mutex
	responses []string
	calls     int

	// Err, when set, is returned by every generation call.
	Err error

	// Requests records the last message of every generation call.
	Requests []string
}

// New creates a mock provider that replays the given responses in order.
func New(responses ...string) *Provider {
	return &Provider{responses: responses}
}

// Generate returns the next scripted response.
func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	return p.GenerateWithMessages(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

// GenerateWithMessages returns the next scripted response and records
// the final message content of the request.
func (p *Provider) GenerateWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(messages) > 0 {
		p.Requests = append(p.Requests, messages[len(messages)-1].Content)
	}

	if p.Err != nil {
		return "", p.Err
	}
	if len(p.responses) == 0 {
		return "", nil
	}

	idx := p.calls
	if idx >= len(p.responses) {
		idx = len(p.responses) - 1
	}
	p.calls++
	return p.responses[idx], nil
}

// Calls returns the number of generation calls made.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Close is a no-op.
func (p *Provider) Close() error {
	return nil
}
