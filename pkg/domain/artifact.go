package domain

import (
	"errors"
	"fmt"
)

// ArtifactKind discriminates the three study artifact types.
type ArtifactKind string

const (
	KindSummary    ArtifactKind = "summary"
	KindQuiz       ArtifactKind = "quiz"
	KindFlashcards ArtifactKind = "flashcards"
)

// ArtifactStatus tracks how much of a lecture's chunks contributed to
// the artifact.
type ArtifactStatus string

const (
	ArtifactPending  ArtifactStatus = "pending"
	ArtifactPartial  ArtifactStatus = "partial"
	ArtifactComplete ArtifactStatus = "complete"
	ArtifactFailed   ArtifactStatus = "failed"
)

// Artifact is a tagged union over the three payload types. Exactly one
// payload pointer matching Kind is non-nil.
type Artifact struct {
	Kind       ArtifactKind  `bson:"kind" json:"kind"`
	Summary    *Summary      `bson:"summary,omitempty" json:"summary,omitempty"`
	Quiz       *Quiz         `bson:"quiz,omitempty" json:"quiz,omitempty"`
	Flashcards *FlashcardSet `bson:"flashcards,omitempty" json:"flashcards,omitempty"`
}

// Status returns the status of whichever payload is set.
func (a Artifact) Status() ArtifactStatus {
	switch a.Kind {
	case KindSummary:
		if a.Summary != nil {
			return a.Summary.Status
		}
	case KindQuiz:
		if a.Quiz != nil {
			return a.Quiz.Status
		}
	case KindFlashcards:
		if a.Flashcards != nil {
			return a.Flashcards.Status
		}
	}
	return ArtifactPending
}

// Validate checks the union invariant: Kind is known and exactly the
// matching payload is set.
func (a Artifact) Validate() error {
	switch a.Kind {
	case KindSummary:
		if a.Summary == nil || a.Quiz != nil || a.Flashcards != nil {
			return fmt.Errorf("artifact kind %q: payload mismatch", a.Kind)
		}
	case KindQuiz:
		if a.Quiz == nil || a.Summary != nil || a.Flashcards != nil {
			return fmt.Errorf("artifact kind %q: payload mismatch", a.Kind)
		}
	case KindFlashcards:
		if a.Flashcards == nil || a.Summary != nil || a.Quiz != nil {
			return fmt.Errorf("artifact kind %q: payload mismatch", a.Kind)
		}
	default:
		return fmt.Errorf("unknown artifact kind %q", a.Kind)
	}
	return nil
}

// KeyConcept is one labeled concept extracted from the lecture.
type KeyConcept struct {
	Label      string `bson:"label" json:"label"`
	Definition string `bson:"definition" json:"definition"`
}

// Summary is the whole-lecture summary artifact.
type Summary struct {
	Status      ArtifactStatus `bson:"status" json:"status"`
	Overview    string         `bson:"overview" json:"overview"`
	KeyConcepts []KeyConcept   `bson:"key_concepts" json:"key_concepts"`
}

// QuestionKind is the quiz question format.
type QuestionKind string

const (
	MultipleChoice QuestionKind = "multiple-choice"
	TrueFalse      QuestionKind = "true-false"
	ShortAnswer    QuestionKind = "short-answer"
)

// Choice is one option of a multiple-choice question.
type Choice struct {
	Text    string `bson:"text" json:"text"`
	Correct bool   `bson:"correct" json:"correct"`
}

// QuizQuestion is a single generated question.
type QuizQuestion struct {
	Kind        QuestionKind `bson:"kind" json:"kind"`
	Prompt      string       `bson:"prompt" json:"prompt"`
	Choices     []Choice     `bson:"choices,omitempty" json:"choices,omitempty"`
	Answer      string       `bson:"answer" json:"answer"`
	Explanation string       `bson:"explanation,omitempty" json:"explanation,omitempty"`
}

var (
	ErrEmptyPrompt   = errors.New("question prompt is empty")
	ErrTooFewChoices = errors.New("multiple-choice question needs at least 2 choices")
	ErrNoCorrect     = errors.New("multiple-choice question needs exactly one correct choice")
	ErrEmptyCard     = errors.New("flashcard front and back must both be non-empty")
)

// Validate enforces the question invariants: non-empty prompt, and for
// multiple-choice at least two choices with exactly one marked correct.
func (q QuizQuestion) Validate() error {
	if q.Prompt == "" {
		return ErrEmptyPrompt
	}
	switch q.Kind {
	case MultipleChoice:
		if len(q.Choices) < 2 {
			return ErrTooFewChoices
		}
		correct := 0
		for _, c := range q.Choices {
			if c.Correct {
				correct++
			}
		}
		if correct != 1 {
			return ErrNoCorrect
		}
	case TrueFalse, ShortAnswer:
		// No choice constraints.
	default:
		return fmt.Errorf("unknown question kind %q", q.Kind)
	}
	return nil
}

// Quiz is the whole-lecture quiz artifact.
type Quiz struct {
	Status    ArtifactStatus `bson:"status" json:"status"`
	Questions []QuizQuestion `bson:"questions" json:"questions"`
}

// Flashcard is a front/back study card with an optional category tag.
type Flashcard struct {
	Front    string `bson:"front" json:"front"`
	Back     string `bson:"back" json:"back"`
	Category string `bson:"category,omitempty" json:"category,omitempty"`
}

// Validate enforces that both sides of the card carry text.
func (c Flashcard) Validate() error {
	if c.Front == "" || c.Back == "" {
		return ErrEmptyCard
	}
	return nil
}

// FlashcardSet is the whole-lecture flashcard artifact.
type FlashcardSet struct {
	Status ArtifactStatus `bson:"status" json:"status"`
	Cards  []Flashcard    `bson:"cards" json:"cards"`
}
