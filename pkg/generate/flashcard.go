package generate

import (
	"context"
	"log"
	"strings"
	"time"

	"lecture-notes/pkg/domain"
)

// FlashcardGenerator produces per-chunk flashcard partials.
type FlashcardGenerator struct {
	caller
}

// NewFlashcardGenerator creates a flashcard generator over the given service.
func NewFlashcardGenerator(svc Service) *FlashcardGenerator {
	return &FlashcardGenerator{caller: newCaller(svc)}
}

// SetRetry overrides the transient-retry bound and initial backoff.
func (g *FlashcardGenerator) SetRetry(attempts int, backoff time.Duration) {
	g.setRetry(attempts, backoff)
}

func (g *FlashcardGenerator) Kind() domain.ArtifactKind { return domain.KindFlashcards }

type flashcardWire struct {
	Front    string `json:"front"`
	Back     string `json:"back"`
	Category string `json:"category"`
}

// Generate calls the service for one chunk and parses the reply. Cards
// failing invariants are dropped; a reply with no valid cards is a
// schema failure and retried once with the strict instruction.
func (g *FlashcardGenerator) Generate(ctx context.Context, chunk domain.Chunk) (Partial, error) {
	reply, err := g.generate(ctx, flashcardInstruction, chunk.Text)
	if err != nil {
		return FailedPartial(g.Kind(), chunk.Index), err
	}

	part, perr := g.parse(chunk.Index, reply)
	if perr == nil {
		return part, nil
	}

	reply, err = g.generate(ctx, flashcardStrictInstruction, chunk.Text)
	if err != nil {
		return FailedPartial(g.Kind(), chunk.Index), err
	}
	part, perr = g.parse(chunk.Index, reply)
	if perr != nil {
		return FailedPartial(g.Kind(), chunk.Index), perr
	}
	return part, nil
}

func (g *FlashcardGenerator) parse(index int, reply string) (Partial, error) {
	var wires []flashcardWire
	if err := decodeArray(reply, &wires); err != nil {
		return Partial{}, &SchemaError{Kind: g.Kind(), Reason: err.Error()}
	}

	cards := make([]domain.Flashcard, 0, len(wires))
	for _, w := range wires {
		card := domain.Flashcard{
			Front:    strings.TrimSpace(w.Front),
			Back:     strings.TrimSpace(w.Back),
			Category: strings.TrimSpace(w.Category),
		}
		if err := card.Validate(); err != nil {
			log.Printf("FlashcardGenerator: chunk %d: dropping invalid card: %v", index, err)
			continue
		}
		cards = append(cards, card)
	}
	if len(cards) == 0 {
		return Partial{}, &SchemaError{Kind: g.Kind(), Reason: "no valid cards"}
	}

	return Partial{Kind: g.Kind(), Index: index, Cards: cards}, nil
}
