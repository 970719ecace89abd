package memory

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/amnesia-labs/amnesia-go/pkg/storage"
)

// NoMemoriesSignal is rendered when a user has no memories in any layer,
// telling the persona it knows nothing about them yet.
const NoMemoriesSignal = "No memories yet."

// Formatter renders a layered memory view into the context block
// consumed by the response-generation step, and selects candidates for
// intentional-forgetting (pratfall) moments.
//
// Rendering follows how certain each layer feels: long-term entries are
// stated as confident facts with their confidence, short-term entries as
// plain recent facts, and faded entries with a hedging qualifier and
// their numeric confidence so the persona voices uncertainty.
type Formatter struct {
	rng *rand.Rand
}

// NewFormatter creates a Formatter with time-seeded randomness.
func NewFormatter() *Formatter {
	return NewFormatterWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewFormatterWithRand creates a Formatter with an injected random
// source, for deterministic selection in tests.
func NewFormatterWithRand(rng *rand.Rand) *Formatter {
	return &Formatter{rng: rng}
}

// FormatContext renders the layered view as a prompt-ready text block.
//
// An empty view across all three layers renders the explicit
// NoMemoriesSignal instead of an empty string.
func (f *Formatter) FormatContext(view *LayeredView) string {
	if view == nil || view.Empty() {
		return NoMemoriesSignal
	}

	var b strings.Builder

	if len(view.LongTerm) > 0 {
		b.WriteString("**Long-Term Memories** (Clear & Strong):\n")
		for _, m := range view.LongTerm {
			fmt.Fprintf(&b, "  - %s: %s (confident: %.1f%%)\n", m.Key, m.Value, m.Confidence*100)
		}
	}

	if len(view.ShortTerm) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("**Short-Term Memories** (Recent):\n")
		for _, m := range view.ShortTerm {
			fmt.Fprintf(&b, "  - %s: %s\n", m.Key, m.Value)
		}
	}

	if len(view.Faded) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("**Faded Memories** (Vague, Uncertain):\n")
		for _, m := range view.Faded {
			fmt.Fprintf(&b, "  - %s: %s... I think? (fuzzy: %.1f%%)\n", m.Key, m.Value, m.Confidence*100)
		}
	}

	return b.String()
}

// PratfallTarget picks the memory the persona should pretend to forget.
//
// Candidates are restricted to long-term and faded memories. Short-term
// records are excluded unconditionally: a fact mentioned in the last few
// turns must never be the subject of simulated forgetting. Selection is
// uniform over the candidate set.
//
// Returns nil when there are no candidates, in which case no pratfall
// occurs regardless of the caller's pratfall decision.
func (f *Formatter) PratfallTarget(view *LayeredView) *storage.MemoryRecord {
	if view == nil {
		return nil
	}

	candidates := make([]*storage.MemoryRecord, 0, len(view.LongTerm)+len(view.Faded))
	candidates = append(candidates, view.LongTerm...)
	candidates = append(candidates, view.Faded...)

	if len(candidates) == 0 {
		return nil
	}
	return candidates[f.rng.Intn(len(candidates))]
}
