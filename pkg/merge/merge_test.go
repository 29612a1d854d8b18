package merge

import (
	"errors"
	"testing"

	"lecture-notes/pkg/domain"
	"lecture-notes/pkg/generate"
)

func TestSummaryMerge(t *testing.T) {
	parts := []generate.Partial{
		{
			Kind:     domain.KindSummary,
			Index:    1,
			Overview: "Second chunk overview.",
			KeyConcepts: []domain.KeyConcept{
				{Label: "Entropy", Definition: "A later, different definition."},
				{Label: "Free Energy", Definition: "Energy available for work."},
			},
		},
		{
			Kind:     domain.KindSummary,
			Index:    0,
			Overview: "First chunk overview.",
			KeyConcepts: []domain.KeyConcept{
				{Label: "entropy", Definition: "A measure of disorder."},
			},
		},
	}

	got, err := Summary(parts)
	if err != nil {
		t.Fatalf("Summary error = %v", err)
	}

	if got.Status != domain.ArtifactComplete {
		t.Errorf("status = %s, want complete", got.Status)
	}

	// Overviews joined in chunk order, not input order.
	want := "First chunk overview.\n\nSecond chunk overview."
	if got.Overview != want {
		t.Errorf("overview = %q, want %q", got.Overview, want)
	}

	// Case-insensitive label dedup keeps the first occurrence.
	if len(got.KeyConcepts) != 2 {
		t.Fatalf("expected 2 key concepts, got %d: %+v", len(got.KeyConcepts), got.KeyConcepts)
	}
	if got.KeyConcepts[0].Label != "entropy" || got.KeyConcepts[0].Definition != "A measure of disorder." {
		t.Errorf("dedup kept wrong concept: %+v", got.KeyConcepts[0])
	}
	if got.KeyConcepts[1].Label != "Free Energy" {
		t.Errorf("unexpected second concept: %+v", got.KeyConcepts[1])
	}
}

func TestQuizMergeDedup(t *testing.T) {
	q := func(prompt string) domain.QuizQuestion {
		return domain.QuizQuestion{Kind: domain.ShortAnswer, Prompt: prompt, Answer: "x"}
	}

	parts := []generate.Partial{
		{Kind: domain.KindQuiz, Index: 0, Questions: []domain.QuizQuestion{
			q("What is entropy?"),
			q("Define free energy."),
		}},
		{Kind: domain.KindQuiz, Index: 1, Questions: []domain.QuizQuestion{
			// Same prompt modulo case, whitespace, and terminal punctuation.
			q("what is   Entropy"),
			q("State the second law."),
		}},
	}

	got, err := Quiz(parts)
	if err != nil {
		t.Fatalf("Quiz error = %v", err)
	}
	if len(got.Questions) != 3 {
		t.Fatalf("expected 3 questions after dedup, got %d", len(got.Questions))
	}
	if got.Questions[0].Prompt != "What is entropy?" {
		t.Errorf("dedup did not keep first occurrence: %q", got.Questions[0].Prompt)
	}
}

func TestFlashcardsMergePartialStatus(t *testing.T) {
	parts := []generate.Partial{
		{Kind: domain.KindFlashcards, Index: 0, Cards: []domain.Flashcard{
			{Front: "Entropy", Back: "Measure of disorder"},
		}},
		generate.FailedPartial(domain.KindFlashcards, 1),
		{Kind: domain.KindFlashcards, Index: 2, Cards: []domain.Flashcard{
			{Front: "Enthalpy", Back: "Heat content"},
		}},
	}

	got, err := Flashcards(parts)
	if err != nil {
		t.Fatalf("Flashcards error = %v", err)
	}
	if got.Status != domain.ArtifactPartial {
		t.Errorf("status = %s, want partial", got.Status)
	}
	if len(got.Cards) != 2 {
		t.Errorf("expected 2 cards, got %d", len(got.Cards))
	}
}

func TestMergeAllFailed(t *testing.T) {
	parts := []generate.Partial{
		generate.FailedPartial(domain.KindSummary, 0),
		generate.FailedPartial(domain.KindSummary, 1),
	}

	got, err := Summary(parts)
	if !errors.Is(err, ErrNothingToMerge) {
		t.Fatalf("error = %v, want ErrNothingToMerge", err)
	}
	if got == nil || got.Status != domain.ArtifactFailed {
		t.Errorf("expected failed payload, got %+v", got)
	}
}

func TestArtifactDispatch(t *testing.T) {
	parts := []generate.Partial{
		{Kind: domain.KindQuiz, Index: 0, Questions: []domain.QuizQuestion{
			{Kind: domain.TrueFalse, Prompt: "Entropy can decrease in an isolated system.", Answer: "False"},
		}},
	}

	artifact, err := Artifact(domain.KindQuiz, parts)
	if err != nil {
		t.Fatalf("Artifact error = %v", err)
	}
	if err := artifact.Validate(); err != nil {
		t.Errorf("merged artifact invalid: %v", err)
	}
	if artifact.Status() != domain.ArtifactComplete {
		t.Errorf("status = %s, want complete", artifact.Status())
	}

	if _, err := Artifact("nonsense", parts); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"What is entropy?", "what is   entropy"},
		{"Entropy.", "entropy"},
		{"Free\tenergy", "free energy"},
	}
	for _, tt := range tests {
		if normalizeKey(tt.a) != normalizeKey(tt.b) {
			t.Errorf("normalizeKey(%q) != normalizeKey(%q): %q vs %q",
				tt.a, tt.b, normalizeKey(tt.a), normalizeKey(tt.b))
		}
	}
}
