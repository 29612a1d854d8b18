package generate

import (
	"context"
	"log"
	"strings"
	"time"

	"lecture-notes/pkg/domain"
)

// QuizGenerator produces per-chunk quiz partials.
type QuizGenerator struct {
	caller
}

// NewQuizGenerator creates a quiz generator over the given service.
func NewQuizGenerator(svc Service) *QuizGenerator {
	return &QuizGenerator{caller: newCaller(svc)}
}

// SetRetry overrides the transient-retry bound and initial backoff.
func (g *QuizGenerator) SetRetry(attempts int, backoff time.Duration) {
	g.setRetry(attempts, backoff)
}

func (g *QuizGenerator) Kind() domain.ArtifactKind { return domain.KindQuiz }

type quizWire struct {
	Kind    string `json:"kind"`
	Prompt  string `json:"prompt"`
	Choices []struct {
		Text    string `json:"text"`
		Correct bool   `json:"correct"`
	} `json:"choices"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
}

// Generate calls the service for one chunk and parses the reply.
// Individual invalid questions are dropped with a warning; a reply with
// no valid questions at all is a schema failure and retried once with
// the strict instruction.
func (g *QuizGenerator) Generate(ctx context.Context, chunk domain.Chunk) (Partial, error) {
	reply, err := g.generate(ctx, quizInstruction, chunk.Text)
	if err != nil {
		return FailedPartial(g.Kind(), chunk.Index), err
	}

	part, perr := g.parse(chunk.Index, reply)
	if perr == nil {
		return part, nil
	}

	reply, err = g.generate(ctx, quizStrictInstruction, chunk.Text)
	if err != nil {
		return FailedPartial(g.Kind(), chunk.Index), err
	}
	part, perr = g.parse(chunk.Index, reply)
	if perr != nil {
		return FailedPartial(g.Kind(), chunk.Index), perr
	}
	return part, nil
}

func (g *QuizGenerator) parse(index int, reply string) (Partial, error) {
	var wires []quizWire
	if err := decodeArray(reply, &wires); err != nil {
		return Partial{}, &SchemaError{Kind: g.Kind(), Reason: err.Error()}
	}

	questions := make([]domain.QuizQuestion, 0, len(wires))
	for _, w := range wires {
		q := domain.QuizQuestion{
			Kind:        domain.QuestionKind(strings.TrimSpace(w.Kind)),
			Prompt:      strings.TrimSpace(w.Prompt),
			Answer:      strings.TrimSpace(w.Answer),
			Explanation: strings.TrimSpace(w.Explanation),
		}
		for _, c := range w.Choices {
			text := strings.TrimSpace(c.Text)
			if text == "" {
				continue
			}
			q.Choices = append(q.Choices, domain.Choice{Text: text, Correct: c.Correct})
		}
		if err := q.Validate(); err != nil {
			log.Printf("QuizGenerator: chunk %d: dropping invalid question %q: %v", index, q.Prompt, err)
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return Partial{}, &SchemaError{Kind: g.Kind(), Reason: "no valid questions"}
	}

	return Partial{Kind: g.Kind(), Index: index, Questions: questions}, nil
}
