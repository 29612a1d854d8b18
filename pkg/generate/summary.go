package generate

import (
	"context"
	"strings"
	"time"

	"lecture-notes/pkg/domain"
)

// SummaryGenerator produces per-chunk summary partials.
type SummaryGenerator struct {
	caller
}

// NewSummaryGenerator creates a summary generator over the given service.
func NewSummaryGenerator(svc Service) *SummaryGenerator {
	return &SummaryGenerator{caller: newCaller(svc)}
}

// SetRetry overrides the transient-retry bound and initial backoff.
func (g *SummaryGenerator) SetRetry(attempts int, backoff time.Duration) {
	g.setRetry(attempts, backoff)
}

func (g *SummaryGenerator) Kind() domain.ArtifactKind { return domain.KindSummary }

// summaryWire is the JSON shape the service is instructed to return.
type summaryWire struct {
	Overview    string `json:"overview"`
	KeyConcepts []struct {
		Label      string `json:"label"`
		Definition string `json:"definition"`
	} `json:"key_concepts"`
}

// Generate calls the service for one chunk and parses the reply. A
// schema-invalid reply is retried once with the strict instruction
// before the chunk is given up on.
func (g *SummaryGenerator) Generate(ctx context.Context, chunk domain.Chunk) (Partial, error) {
	reply, err := g.generate(ctx, summaryInstruction, chunk.Text)
	if err != nil {
		return FailedPartial(g.Kind(), chunk.Index), err
	}

	part, perr := g.parse(chunk.Index, reply)
	if perr == nil {
		return part, nil
	}

	reply, err = g.generate(ctx, summaryStrictInstruction, chunk.Text)
	if err != nil {
		return FailedPartial(g.Kind(), chunk.Index), err
	}
	part, perr = g.parse(chunk.Index, reply)
	if perr != nil {
		return FailedPartial(g.Kind(), chunk.Index), perr
	}
	return part, nil
}

func (g *SummaryGenerator) parse(index int, reply string) (Partial, error) {
	var wire summaryWire
	if err := decodeObject(reply, &wire); err != nil {
		return Partial{}, &SchemaError{Kind: g.Kind(), Reason: err.Error()}
	}

	overview := strings.TrimSpace(wire.Overview)
	if overview == "" {
		return Partial{}, &SchemaError{Kind: g.Kind(), Reason: "empty overview"}
	}

	concepts := make([]domain.KeyConcept, 0, len(wire.KeyConcepts))
	for _, kc := range wire.KeyConcepts {
		label := strings.TrimSpace(kc.Label)
		if label == "" {
			continue
		}
		concepts = append(concepts, domain.KeyConcept{
			Label:      label,
			Definition: strings.TrimSpace(kc.Definition),
		})
	}
	if len(concepts) == 0 {
		return Partial{}, &SchemaError{Kind: g.Kind(), Reason: "no key concepts"}
	}

	return Partial{
		Kind:        g.Kind(),
		Index:       index,
		Overview:    overview,
		KeyConcepts: concepts,
	}, nil
}
