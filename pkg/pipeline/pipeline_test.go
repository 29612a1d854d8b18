package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"lecture-notes/pkg/domain"
	"lecture-notes/pkg/generate"
	"lecture-notes/pkg/store"
	"lecture-notes/pkg/textproc"
)

// mockGenerator produces a fixed-shape partial per chunk, or fails
// every call when failAll is set.
type mockGenerator struct {
	kind    domain.ArtifactKind
	failAll bool

	mu    sync.Mutex
	calls int
}

func (m *mockGenerator) Kind() domain.ArtifactKind { return m.kind }

func (m *mockGenerator) Generate(ctx context.Context, chunk domain.Chunk) (generate.Partial, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.failAll {
		return generate.FailedPartial(m.kind, chunk.Index), errors.New("generation exhausted")
	}

	p := generate.Partial{Kind: m.kind, Index: chunk.Index}
	switch m.kind {
	case domain.KindSummary:
		p.Overview = fmt.Sprintf("Overview of chunk %d.", chunk.Index)
		p.KeyConcepts = []domain.KeyConcept{
			{Label: fmt.Sprintf("Concept %d", chunk.Index), Definition: "A definition."},
		}
	case domain.KindQuiz:
		p.Questions = []domain.QuizQuestion{
			{Kind: domain.ShortAnswer, Prompt: fmt.Sprintf("Question for chunk %d?", chunk.Index), Answer: "Answer."},
		}
	case domain.KindFlashcards:
		p.Cards = []domain.Flashcard{
			{Front: fmt.Sprintf("Front %d", chunk.Index), Back: "Back."},
		}
	}
	return p, nil
}

func allGenerators() []generate.Generator {
	return []generate.Generator{
		&mockGenerator{kind: domain.KindSummary},
		&mockGenerator{kind: domain.KindQuiz},
		&mockGenerator{kind: domain.KindFlashcards},
	}
}

const rawTranscript = "um, today we cover entropy. it measures disorder. " +
	"the second law says entropy never decreases. heat flows from hot to cold. " +
	"we then derive the carnot bound. no engine beats it."

func TestProcessComplete(t *testing.T) {
	s := store.NewMemoryStore()
	p, err := New(Config{
		Store:        s,
		Generators:   allGenerators(),
		MaxChunkSize: 60,
		Overlap:      10,
		Workers:      2,
	})
	if err != nil {
		t.Fatal(err)
	}

	lecture := NewLecture("Thermo 4", "thermo4.mp3", rawTranscript)
	if err := p.Process(context.Background(), lecture); err != nil {
		t.Fatalf("Process error = %v", err)
	}

	if lecture.Status != domain.StatusComplete {
		t.Errorf("lecture status = %s, want complete", lecture.Status)
	}

	stored, err := s.GetLecture(context.Background(), lecture.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domain.StatusComplete {
		t.Errorf("stored status = %s, want complete", stored.Status)
	}
	if stored.Transcript == "" || stored.Transcript == stored.RawTranscript {
		t.Error("transcript was not normalized before storing")
	}
	if stored.Summary == nil || stored.Summary.Status != domain.ArtifactComplete {
		t.Errorf("summary artifact missing or not complete: %+v", stored.Summary)
	}
	if stored.Quiz == nil || len(stored.Quiz.Questions) == 0 {
		t.Errorf("quiz artifact missing or empty: %+v", stored.Quiz)
	}
	if stored.Flashcards == nil || len(stored.Flashcards.Cards) == 0 {
		t.Errorf("flashcard artifact missing or empty: %+v", stored.Flashcards)
	}
}

func TestProcessPartialWhenOneKindFails(t *testing.T) {
	s := store.NewMemoryStore()
	p, err := New(Config{
		Store: s,
		Generators: []generate.Generator{
			&mockGenerator{kind: domain.KindSummary},
			&mockGenerator{kind: domain.KindQuiz, failAll: true},
			&mockGenerator{kind: domain.KindFlashcards},
		},
		MaxChunkSize: 60,
		Overlap:      0,
	})
	if err != nil {
		t.Fatal(err)
	}

	lecture := NewLecture("Thermo 4", "thermo4.mp3", rawTranscript)
	if err := p.Process(context.Background(), lecture); err != nil {
		t.Fatalf("Process error = %v", err)
	}

	if lecture.Status != domain.StatusPartial {
		t.Errorf("lecture status = %s, want partial", lecture.Status)
	}

	stored, err := s.GetLecture(context.Background(), lecture.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Summary == nil {
		t.Error("summary artifact missing despite its generator succeeding")
	}
	if stored.Quiz == nil || stored.Quiz.Status != domain.ArtifactFailed {
		t.Errorf("quiz artifact should be stored with failed status: %+v", stored.Quiz)
	}
}

func TestProcessFailedWhenAllKindsFail(t *testing.T) {
	s := store.NewMemoryStore()
	p, err := New(Config{
		Store: s,
		Generators: []generate.Generator{
			&mockGenerator{kind: domain.KindSummary, failAll: true},
			&mockGenerator{kind: domain.KindQuiz, failAll: true},
		},
		MaxChunkSize: 60,
	})
	if err != nil {
		t.Fatal(err)
	}

	lecture := NewLecture("Thermo 4", "", rawTranscript)
	if err := p.Process(context.Background(), lecture); err != nil {
		t.Fatalf("Process error = %v", err)
	}

	if lecture.Status != domain.StatusFailed {
		t.Errorf("lecture status = %s, want failed", lecture.Status)
	}
}

func TestProcessEmptyTranscript(t *testing.T) {
	s := store.NewMemoryStore()
	p, err := New(Config{Store: s, Generators: allGenerators()})
	if err != nil {
		t.Fatal(err)
	}

	lecture := NewLecture("Empty", "", "   ")
	err = p.Process(context.Background(), lecture)
	if !errors.Is(err, textproc.ErrEmptyTranscript) {
		t.Fatalf("Process error = %v, want ErrEmptyTranscript", err)
	}
	if lecture.Status != domain.StatusFailed {
		t.Errorf("lecture status = %s, want failed", lecture.Status)
	}

	stored, err := s.GetLecture(context.Background(), lecture.ID)
	if err != nil {
		t.Fatalf("failure was not persisted: %v", err)
	}
	if stored.Status != domain.StatusFailed || stored.Error == "" {
		t.Errorf("stored failure record incomplete: status=%s error=%q", stored.Status, stored.Error)
	}
}

func TestProcessReprocessIdempotent(t *testing.T) {
	s := store.NewMemoryStore()
	p, err := New(Config{Store: s, Generators: allGenerators(), MaxChunkSize: 60, Overlap: 10})
	if err != nil {
		t.Fatal(err)
	}

	lecture := NewLecture("Thermo 4", "thermo4.mp3", rawTranscript)
	if err := p.Process(context.Background(), lecture); err != nil {
		t.Fatal(err)
	}
	first, err := s.GetLecture(context.Background(), lecture.ID)
	if err != nil {
		t.Fatal(err)
	}

	// Running the same lecture again replaces artifacts in place and
	// leaves exactly one stored record.
	if err := p.Process(context.Background(), lecture); err != nil {
		t.Fatal(err)
	}
	second, err := s.GetLecture(context.Background(), lecture.ID)
	if err != nil {
		t.Fatal(err)
	}

	all, err := s.ListLectures(context.Background(), 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 lecture after reprocessing, got %d", len(all))
	}
	if len(first.Quiz.Questions) != len(second.Quiz.Questions) {
		t.Errorf("reprocessing changed quiz size: %d vs %d", len(first.Quiz.Questions), len(second.Quiz.Questions))
	}
}

// duplicateCardGenerator returns the same card for every chunk, so the
// merge dedup is observable end to end.
type duplicateCardGenerator struct{}

func (duplicateCardGenerator) Kind() domain.ArtifactKind { return domain.KindFlashcards }

func (duplicateCardGenerator) Generate(ctx context.Context, chunk domain.Chunk) (generate.Partial, error) {
	return generate.Partial{
		Kind:  domain.KindFlashcards,
		Index: chunk.Index,
		Cards: []domain.Flashcard{{Front: "A", Back: "B"}},
	}, nil
}

func TestProcessDeduplicatesAcrossChunks(t *testing.T) {
	s := store.NewMemoryStore()
	p, err := New(Config{
		Store:        s,
		Generators:   []generate.Generator{duplicateCardGenerator{}},
		MaxChunkSize: 27,
		Overlap:      0,
	})
	if err != nil {
		t.Fatal(err)
	}

	lecture := NewLecture("Tiny", "", "Sentence one. Sentence two. Sentence three.")
	if err := p.Process(context.Background(), lecture); err != nil {
		t.Fatalf("Process error = %v", err)
	}

	stored, err := s.GetLecture(context.Background(), lecture.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Flashcards == nil || len(stored.Flashcards.Cards) != 1 {
		t.Fatalf("expected exactly 1 card after cross-chunk dedup, got %+v", stored.Flashcards)
	}
	if stored.Flashcards.Status != domain.ArtifactComplete {
		t.Errorf("status = %s, want complete", stored.Flashcards.Status)
	}
}

func TestProcessCancelledContext(t *testing.T) {
	s := store.NewMemoryStore()
	p, err := New(Config{Store: s, Generators: allGenerators(), MaxChunkSize: 60})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lecture := NewLecture("Thermo 4", "", rawTranscript)
	err = p.Process(ctx, lecture)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Process error = %v, want context.Canceled", err)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{Generators: allGenerators()}); err == nil {
		t.Error("expected error for missing store")
	}
	if _, err := New(Config{Store: store.NewMemoryStore()}); err == nil {
		t.Error("expected error for missing generators")
	}
}
