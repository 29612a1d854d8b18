package generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lecture-notes/pkg/domain"
)

// Service is the external generation collaborator: a pure function from
// (instruction, text) to generated text. Implementations classify their
// failures as TransientError (retryable) or plain errors.
type Service interface {
	Generate(ctx context.Context, instruction, text string) (string, error)
}

// TransientError marks a retryable service failure: rate limit, timeout,
// or an empty/malformed reply from the service itself.
type TransientError struct {
	Reason string
	Err    error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient generation failure (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("transient generation failure (%s)", e.Reason)
}

func (e *TransientError) Unwrap() error { return e.Err }

// SchemaError marks a reply that came back but could not be parsed into
// the expected structure.
type SchemaError struct {
	Kind   domain.ArtifactKind
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s response did not match schema: %s", e.Kind, e.Reason)
}

// Partial is one chunk's contribution to an artifact, tagged by kind.
// A Failed partial carries no payload; the merger skips it and degrades
// the artifact status to partial.
type Partial struct {
	Kind   domain.ArtifactKind
	Index  int
	Failed bool

	Overview    string
	KeyConcepts []domain.KeyConcept
	Questions   []domain.QuizQuestion
	Cards       []domain.Flashcard
}

// FailedPartial builds the placeholder recorded for a chunk whose
// generation exhausted its retries.
func FailedPartial(kind domain.ArtifactKind, index int) Partial {
	return Partial{Kind: kind, Index: index, Failed: true}
}

// Generator produces one kind of partial artifact from a chunk.
type Generator interface {
	Kind() domain.ArtifactKind
	Generate(ctx context.Context, chunk domain.Chunk) (Partial, error)
}

const (
	defaultAttempts = 3
	defaultBackoff  = time.Second
)

// caller wraps a Service with the bounded retry loop shared by all
// generators. Transient failures are retried with exponential backoff;
// anything else surfaces immediately.
type caller struct {
	svc      Service
	attempts int
	backoff  time.Duration
}

func newCaller(svc Service) caller {
	return caller{svc: svc, attempts: defaultAttempts, backoff: defaultBackoff}
}

func (c *caller) setRetry(attempts int, backoff time.Duration) {
	if attempts > 0 {
		c.attempts = attempts
	}
	if backoff > 0 {
		c.backoff = backoff
	}
}

// generate calls the service, retrying transient failures up to the
// attempt bound. A context timeout on the call itself counts as
// transient; cancellation of the parent context stops the loop.
func (c caller) generate(ctx context.Context, instruction, text string) (string, error) {
	var lastErr error
	delay := c.backoff

	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			delay *= 2
		}

		reply, err := c.svc.Generate(ctx, instruction, text)
		if err == nil {
			return reply, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		var transient *TransientError
		if errors.As(err, &transient) || errors.Is(err, context.DeadlineExceeded) {
			lastErr = err
			continue
		}
		return "", err
	}

	return "", fmt.Errorf("generation failed after %d attempts: %w", c.attempts, lastErr)
}
