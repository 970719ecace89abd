package core

import (
	"github.com/amnesia-labs/amnesia-go/pkg/memory"
	"github.com/amnesia-labs/amnesia-go/pkg/storage"
)

// ChatRequest is one user turn addressed to a persona.
//
// Example:
//
//	resp, _ := client.Chat(ctx, &core.ChatRequest{
//	    PersonaID: persona.ID,
//	    UserID:    "user_001",
//	    Message:   "My cat Luna knocked over my coffee again!",
//	})
type ChatRequest struct {
	// PersonaID identifies the persona to talk to.
	PersonaID int64 `json:"persona_id"`

	// UserID identifies the user sending the message.
	UserID string `json:"user_id"`

	// Message is the user's message text.
	Message string `json:"message"`

	// Scene is an optional roleplay context for this turn.
	Scene *Scene `json:"scene,omitempty"`
}

// ChatResponse is the persona's reply plus bookkeeping about the turn.
type ChatResponse struct {
	// Message is the stored assistant turn, including any audio URL.
	Message *storage.ChatMessage `json:"message"`

	// Pratfall reports whether this turn simulated a memory lapse.
	Pratfall bool `json:"pratfall"`

	// Extraction summarizes the fact-extraction pass for this turn.
	// Zero-valued when extraction was skipped or failed.
	Extraction memory.ExtractionSummary `json:"extraction"`
}

// Scene is an optional roleplay setting layered over a persona's core
// personality for the duration of a conversation.
type Scene struct {
	// Title is the display name of the scene.
	Title string `json:"title"`

	// Description is a short free-text description.
	Description string `json:"description,omitempty"`

	// ScenarioPrompt is the roleplay context injected into the
	// system prompt.
	ScenarioPrompt string `json:"scenario_prompt"`
}

// ChatResult carries an asynchronous chat outcome.
type ChatResult struct {
	// Response is the chat response (nil on error).
	Response *ChatResponse

	// Error is the operation error (nil on success).
	Error error
}
