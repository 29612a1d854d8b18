package export

import (
	"strings"
	"testing"

	"lecture-notes/pkg/domain"
)

func TestSummaryText(t *testing.T) {
	summary := &domain.Summary{
		Status:   domain.ArtifactComplete,
		Overview: "The lecture covers sorting algorithms.",
		KeyConcepts: []domain.KeyConcept{
			{Label: "Quicksort", Definition: "Divide and conquer sort with average n log n."},
		},
	}

	out := SummaryText("Algorithms Week 3", summary)

	for _, want := range []string{
		"Algorithms Week 3",
		"The lecture covers sorting algorithms.",
		"Quicksort: Divide and conquer sort",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SummaryText missing %q in:\n%s", want, out)
		}
	}
}

func TestSummaryTextNil(t *testing.T) {
	out := SummaryText("Empty", nil)
	if !strings.Contains(out, "No summary available.") {
		t.Errorf("expected placeholder for nil summary, got:\n%s", out)
	}
}

func TestQuizMarkdown(t *testing.T) {
	quiz := &domain.Quiz{
		Status: domain.ArtifactComplete,
		Questions: []domain.QuizQuestion{
			{
				Kind:   domain.MultipleChoice,
				Prompt: "Which sort is stable?",
				Choices: []domain.Choice{
					{Text: "Quicksort"},
					{Text: "Merge sort", Correct: true},
				},
				Explanation: "Merge sort preserves the order of equal keys.",
			},
			{
				Kind:   domain.TrueFalse,
				Prompt: "Heapsort is in-place.",
				Answer: "True",
			},
		},
	}

	out := QuizMarkdown("Sorting Quiz", quiz)

	for _, want := range []string{
		"# Sorting Quiz",
		"**1.** Which sort is stable?",
		"- b) Merge sort",
		"## Answers",
		"1. b) Merge sort (Merge sort preserves the order of equal keys.)",
		"2. True",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("QuizMarkdown missing %q in:\n%s", want, out)
		}
	}
}

func TestFlashcardsTSV(t *testing.T) {
	set := &domain.FlashcardSet{
		Status: domain.ArtifactComplete,
		Cards: []domain.Flashcard{
			{Front: "Big-O of binary search", Back: "O(log n)", Category: "complexity"},
			{Front: "Line one\nline two", Back: "tab\there"},
		},
	}

	out := FlashcardsTSV("algorithms", set)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d:\n%s", len(lines), out)
	}

	if lines[0] != "Big-O of binary search\tO(log n)\tcomplexity" {
		t.Errorf("unexpected first row: %q", lines[0])
	}

	// Newlines collapse to <br>, tabs to spaces, deck tag fills in when
	// the card has no category.
	if lines[1] != "Line one<br>line two\ttab here\talgorithms" {
		t.Errorf("unexpected second row: %q", lines[1])
	}
}

func TestFlashcardsTSVEmpty(t *testing.T) {
	if out := FlashcardsTSV("x", nil); out != "" {
		t.Errorf("expected empty output for nil set, got %q", out)
	}
	if out := FlashcardsTSV("x", &domain.FlashcardSet{}); out != "" {
		t.Errorf("expected empty output for empty set, got %q", out)
	}
}
