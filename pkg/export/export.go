// Package export renders stored lecture artifacts into shareable
// formats: plain text study notes, markdown quizzes, and Anki-ready
// flashcard TSV files.
package export

import (
	"fmt"
	"strings"

	"lecture-notes/pkg/domain"
)

// SummaryText renders a summary as plain text study notes.
func SummaryText(title string, summary *domain.Summary) string {
	var b strings.Builder

	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", len(title)))
	b.WriteString("\n\n")

	if summary == nil {
		b.WriteString("No summary available.\n")
		return b.String()
	}

	if summary.Overview != "" {
		b.WriteString(summary.Overview)
		b.WriteString("\n")
	}

	if len(summary.KeyConcepts) > 0 {
		b.WriteString("\nKey concepts:\n")
		for _, kc := range summary.KeyConcepts {
			fmt.Fprintf(&b, "  - %s: %s\n", kc.Label, kc.Definition)
		}
	}

	return b.String()
}

// QuizMarkdown renders a quiz as a markdown document with the answers
// in a separate section at the bottom.
func QuizMarkdown(title string, quiz *domain.Quiz) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)

	if quiz == nil || len(quiz.Questions) == 0 {
		b.WriteString("No questions available.\n")
		return b.String()
	}

	var answers []string
	for i, q := range quiz.Questions {
		fmt.Fprintf(&b, "**%d.** %s\n\n", i+1, q.Prompt)

		answer := q.Answer
		switch q.Kind {
		case domain.MultipleChoice:
			for j, choice := range q.Choices {
				fmt.Fprintf(&b, "- %c) %s\n", 'a'+j, choice.Text)
				if choice.Correct {
					answer = fmt.Sprintf("%c) %s", 'a'+j, choice.Text)
				}
			}
			b.WriteString("\n")
		case domain.TrueFalse:
			b.WriteString("- True\n- False\n\n")
		}

		line := fmt.Sprintf("%d. %s", i+1, answer)
		if q.Explanation != "" {
			line += fmt.Sprintf(" (%s)", q.Explanation)
		}
		answers = append(answers, line)
	}

	b.WriteString("---\n\n## Answers\n\n")
	for _, a := range answers {
		b.WriteString(a)
		b.WriteString("\n")
	}

	return b.String()
}

// FlashcardsTSV renders flashcards as tab-separated lines Anki can
// import directly: front, back, tag. Tabs inside a field become spaces
// and newlines become <br> so the row structure survives.
func FlashcardsTSV(tag string, set *domain.FlashcardSet) string {
	if set == nil || len(set.Cards) == 0 {
		return ""
	}

	var b strings.Builder
	for _, card := range set.Cards {
		cardTag := card.Category
		if cardTag == "" {
			cardTag = tag
		}
		fmt.Fprintf(&b, "%s\t%s\t%s\n",
			escapeField(card.Front),
			escapeField(card.Back),
			escapeField(cardTag),
		)
	}
	return b.String()
}

func escapeField(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", "<br>")
	return s
}
