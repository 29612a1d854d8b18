package merge

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"lecture-notes/pkg/domain"
	"lecture-notes/pkg/generate"
)

// ErrNothingToMerge is returned when every partial of a kind failed.
// The returned payload still carries the failed status so callers can
// persist it.
var ErrNothingToMerge = errors.New("no successful partials to merge")

// Artifact merges per-chunk partials of one kind into a whole-lecture
// artifact. Partials are processed in chunk order and deduplicated with
// a deterministic keep-first rule, so identical input always yields an
// identical artifact.
func Artifact(kind domain.ArtifactKind, parts []generate.Partial) (domain.Artifact, error) {
	switch kind {
	case domain.KindSummary:
		s, err := Summary(parts)
		return domain.Artifact{Kind: kind, Summary: s}, err
	case domain.KindQuiz:
		q, err := Quiz(parts)
		return domain.Artifact{Kind: kind, Quiz: q}, err
	case domain.KindFlashcards:
		f, err := Flashcards(parts)
		return domain.Artifact{Kind: kind, Flashcards: f}, err
	default:
		return domain.Artifact{}, fmt.Errorf("unknown artifact kind %q", kind)
	}
}

// Summary concatenates overview paragraphs in chunk order and unions
// key concepts, deduplicating labels case-insensitively and keeping the
// first occurrence's definition.
func Summary(parts []generate.Partial) (*domain.Summary, error) {
	parts, status := prepare(parts)

	out := &domain.Summary{Status: status}
	seen := make(map[string]bool)
	var overviews []string

	for _, p := range parts {
		if p.Failed {
			continue
		}
		if p.Overview != "" {
			overviews = append(overviews, p.Overview)
		}
		for _, kc := range p.KeyConcepts {
			key := normalizeKey(kc.Label)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out.KeyConcepts = append(out.KeyConcepts, kc)
		}
	}
	out.Overview = strings.Join(overviews, "\n\n")

	if status == domain.ArtifactFailed {
		return out, ErrNothingToMerge
	}
	return out, nil
}

// Quiz concatenates questions in chunk order, deduplicating questions
// whose normalized prompt text is identical and keeping the first.
func Quiz(parts []generate.Partial) (*domain.Quiz, error) {
	parts, status := prepare(parts)

	out := &domain.Quiz{Status: status}
	seen := make(map[string]bool)

	for _, p := range parts {
		if p.Failed {
			continue
		}
		for _, q := range p.Questions {
			key := normalizeKey(q.Prompt)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out.Questions = append(out.Questions, q)
		}
	}

	if status == domain.ArtifactFailed {
		return out, ErrNothingToMerge
	}
	return out, nil
}

// Flashcards concatenates cards in chunk order, deduplicating cards
// whose normalized front text is identical and keeping the first.
func Flashcards(parts []generate.Partial) (*domain.FlashcardSet, error) {
	parts, status := prepare(parts)

	out := &domain.FlashcardSet{Status: status}
	seen := make(map[string]bool)

	for _, p := range parts {
		if p.Failed {
			continue
		}
		for _, c := range p.Cards {
			key := normalizeKey(c.Front)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out.Cards = append(out.Cards, c)
		}
	}

	if status == domain.ArtifactFailed {
		return out, ErrNothingToMerge
	}
	return out, nil
}

// prepare sorts partials by chunk index and derives the overall status:
// complete when all chunks succeeded, partial when some did, failed when
// none did.
func prepare(parts []generate.Partial) ([]generate.Partial, domain.ArtifactStatus) {
	sorted := make([]generate.Partial, len(parts))
	copy(sorted, parts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	succeeded := 0
	for _, p := range sorted {
		if !p.Failed {
			succeeded++
		}
	}

	switch {
	case len(sorted) == 0 || succeeded == 0:
		return sorted, domain.ArtifactFailed
	case succeeded == len(sorted):
		return sorted, domain.ArtifactComplete
	default:
		return sorted, domain.ArtifactPartial
	}
}

var reInnerSpace = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

// normalizeKey is the dedup normalization: lowercase, collapse internal
// whitespace, trim trailing terminal punctuation.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(reInnerSpace.Replace(s)))
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimRight(s, ".!?")
}
