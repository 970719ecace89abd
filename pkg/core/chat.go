package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amnesia-labs/amnesia-go/pkg/llm"
	"github.com/amnesia-labs/amnesia-go/pkg/memory"
	"github.com/amnesia-labs/amnesia-go/pkg/storage"
)

// Chat handles one conversation turn with a persona.
//
// The turn proceeds as follows:
//  1. Load the persona and recent conversation history
//  2. Persist the user's message
//  3. Run a decay sweep and gather the layered memory view
//  4. Roll for a pratfall moment; pick an old memory to "forget"
//  5. Generate the reply with personality, memories, and history in context
//  6. Synthesize speech for the reply (best-effort, never fails the turn)
//  7. Persist the assistant's message
//  8. Extract new facts from the user's message into memory (best-effort)
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - req: The chat request (persona, user, message, optional scene)
//
// Returns the assistant's reply and turn bookkeeping, or an error if a
// required step fails. Voice synthesis and fact extraction are optional
// steps; their failures are absorbed.
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req == nil || req.Message == "" || req.UserID == "" {
		return nil, NewEngineError("Chat", ErrInvalidInput)
	}

	p, err := c.store.GetPersona(ctx, req.PersonaID)
	if err != nil {
		return nil, NewEngineError("Chat", err)
	}

	owner := storage.Owner{PersonaID: req.PersonaID, UserID: req.UserID}

	// History is captured before the current message is stored so the
	// prompt carries it exactly once.
	history, err := c.store.RecentMessages(ctx, owner, p.RecallDepth)
	if err != nil {
		return nil, NewEngineError("Chat", err)
	}

	userMsg := &storage.ChatMessage{
		PersonaID: req.PersonaID,
		UserID:    req.UserID,
		Role:      "user",
		Content:   req.Message,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.store.InsertMessage(ctx, userMsg); err != nil {
		return nil, NewEngineError("Chat", err)
	}

	mgr := c.manager(p)
	view, err := mgr.Layered(ctx, owner)
	if err != nil {
		return nil, NewEngineError("Chat", err)
	}

	memoryText := c.formatter.FormatContext(view)

	// Pratfalls only ever target old memories. A roll with nothing old
	// enough to forget is discarded.
	pratfall := c.pratfallRoll(p.PratfallProbability)
	var pratfallKey string
	if pratfall {
		if target := c.formatter.PratfallTarget(view); target != nil {
			pratfallKey = target.Key
		} else {
			pratfall = false
		}
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    "system",
		Content: buildSystemPrompt(p, memoryText, pratfallKey, req.Scene),
	})
	for _, h := range history {
		messages = append(messages, llm.Message{Role: h.Role, Content: h.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: req.Message})

	reply, err := c.llm.GenerateWithMessages(ctx, messages)
	if err != nil {
		return nil, NewEngineError("Chat", fmt.Errorf("%w: %v", ErrLLMOperation, err))
	}

	audioURL := c.synthesize(ctx, p, reply)

	aiMsg := &storage.ChatMessage{
		PersonaID:  req.PersonaID,
		UserID:     req.UserID,
		Role:       "assistant",
		Content:    reply,
		AudioURL:   audioURL,
		IsPratfall: pratfall,
		CreatedAt:  time.Now().UTC(),
	}
	if err := c.store.InsertMessage(ctx, aiMsg); err != nil {
		return nil, NewEngineError("Chat", err)
	}

	summary := c.extractMemories(ctx, mgr, owner, req.Message, p.EmotionWeight)

	return &ChatResponse{
		Message:    aiMsg,
		Pratfall:   pratfall,
		Extraction: summary,
	}, nil
}

// synthesize converts the reply to speech and writes it under the audio
// directory. Failures leave the turn text-only and return an empty URL.
func (c *Client) synthesize(ctx context.Context, p *storage.Persona, text string) string {
	if c.voice == nil {
		return ""
	}

	audio, err := c.voice.Synthesize(ctx, text, p.VoiceRef)
	if err != nil {
		return ""
	}

	dir := c.config.AudioDir
	if dir == "" {
		dir = "./audio"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ""
	}

	filename := fmt.Sprintf("persona_%d_%d.mp3", p.ID, c.node.Generate().Int64())
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, audio, 0644); err != nil {
		return ""
	}
	return path
}

// extractMemories runs the fact-extraction pass for one user message.
//
// Extraction is best-effort: an LLM or storage failure returns a zero
// summary rather than failing the already-answered turn.
func (c *Client) extractMemories(ctx context.Context, mgr *memory.Manager, owner storage.Owner, userMessage string, emotionWeight float64) memory.ExtractionSummary {
	response, err := c.llm.Generate(ctx, memory.ExtractionPrompt(userMessage))
	if err != nil {
		return memory.ExtractionSummary{}
	}

	facts, _ := memory.ParseFacts(response)
	if len(facts) == 0 {
		return memory.ExtractionSummary{}
	}

	summary, err := mgr.StoreFacts(ctx, owner, facts, userMessage, emotionWeight)
	if err != nil || summary == nil {
		return memory.ExtractionSummary{}
	}
	return *summary
}
