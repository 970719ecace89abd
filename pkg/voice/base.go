// Package voice provides the speech capabilities around a chat turn:
// synthesis to give personas an audible voice, and transcription to
// accept spoken user input.
//
// It defines the Provider interface that all synthesis implementations
// (ElevenLabs) must satisfy, and the Transcriber interface for
// speech-to-text (Whisper). Both are optional: the chat client treats a
// missing or failing provider as text-only operation.
package voice

import "context"

// Provider defines the interface for text-to-speech backends.
type Provider interface {
	// Synthesize converts text to speech audio.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - text: The text to speak
	//   - voiceRef: Provider-specific voice identifier; empty selects
	//     the provider default
	//
	// Returns the encoded audio bytes (typically MP3) and any error.
	Synthesize(ctx context.Context, text, voiceRef string) ([]byte, error)

	// Close closes the provider and releases resources.
	Close() error
}

// Transcriber converts recorded speech into text. It is the inverse of
// Provider and is implemented separately because synthesis and
// transcription commonly come from different vendors.
type Transcriber interface {
	// Transcribe converts audio to text.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - audio: Encoded audio bytes (webm, mp3, wav)
	//   - filename: Original filename, used to hint the audio format
	//
	// Returns the transcribed text and any error.
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)

	// Close closes the transcriber and releases resources.
	Close() error
}
