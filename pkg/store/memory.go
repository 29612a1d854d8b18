package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"lecture-notes/pkg/domain"
)

// MemoryStore is an in-memory Store. It is the reference implementation
// for the Store contract and the backend the tests run against; a
// single process can also use it as a throwaway store.
type MemoryStore struct {
	mu       sync.RWMutex
	lectures map[string]*domain.Lecture
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lectures: make(map[string]*domain.Lecture)}
}

// UpsertLecture creates or replaces the lecture's transcript and status
// fields, preserving any artifacts already attached to the id.
func (s *MemoryStore) UpsertLecture(ctx context.Context, lecture *domain.Lecture) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := cloneLecture(lecture)
	if existing, ok := s.lectures[lecture.ID]; ok {
		cp.Summary = existing.Summary
		cp.Quiz = existing.Quiz
		cp.Flashcards = existing.Flashcards
	}
	s.lectures[lecture.ID] = cp
	return nil
}

// UpdateStatus sets status and error on an existing lecture.
func (s *MemoryStore) UpdateStatus(ctx context.Context, id string, status domain.LectureStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lecture, ok := s.lectures[id]
	if !ok {
		return ErrNotFound
	}
	lecture.Status = status
	lecture.Error = errMsg
	return nil
}

// UpsertArtifact replaces the lecture's artifact of the payload's kind.
func (s *MemoryStore) UpsertArtifact(ctx context.Context, id string, artifact domain.Artifact) error {
	if err := artifact.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lecture, ok := s.lectures[id]
	if !ok {
		return ErrNotFound
	}
	switch artifact.Kind {
	case domain.KindSummary:
		lecture.Summary = cloneSummary(artifact.Summary)
	case domain.KindQuiz:
		lecture.Quiz = cloneQuiz(artifact.Quiz)
	case domain.KindFlashcards:
		lecture.Flashcards = cloneFlashcards(artifact.Flashcards)
	}
	return nil
}

// GetLecture fetches a lecture with all artifacts.
func (s *MemoryStore) GetLecture(ctx context.Context, id string) (*domain.Lecture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lecture, ok := s.lectures[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneLecture(lecture), nil
}

// ListLectures returns a page ordered by creation time descending.
func (s *MemoryStore) ListLectures(ctx context.Context, page, perPage int) ([]domain.Lecture, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	all := s.sortedByNewest()
	start := (page - 1) * perPage
	if start >= len(all) {
		return []domain.Lecture{}, nil
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

// SearchLectures matches query as a case-insensitive substring of title
// or transcript, newest first.
func (s *MemoryStore) SearchLectures(ctx context.Context, query string) ([]domain.Lecture, error) {
	q := strings.ToLower(query)
	var out []domain.Lecture
	for _, l := range s.sortedByNewest() {
		if strings.Contains(strings.ToLower(l.Title), q) ||
			strings.Contains(strings.ToLower(l.Transcript), q) {
			out = append(out, l)
		}
	}
	return out, nil
}

// DeleteLecture removes the lecture; the embedded artifacts go with it.
// Deleting an unknown id is a no-op so repeated deletes stay idempotent.
func (s *MemoryStore) DeleteLecture(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lectures, id)
	return nil
}

func (s *MemoryStore) sortedByNewest() []domain.Lecture {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Lecture, 0, len(s.lectures))
	for _, l := range s.lectures {
		all = append(all, *cloneLecture(l))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all
}

// cloneLecture deep-copies so callers never alias stored state.
func cloneLecture(l *domain.Lecture) *domain.Lecture {
	cp := *l
	cp.Summary = cloneSummary(l.Summary)
	cp.Quiz = cloneQuiz(l.Quiz)
	cp.Flashcards = cloneFlashcards(l.Flashcards)
	return &cp
}

func cloneSummary(s *domain.Summary) *domain.Summary {
	if s == nil {
		return nil
	}
	cp := *s
	cp.KeyConcepts = append([]domain.KeyConcept(nil), s.KeyConcepts...)
	return &cp
}

func cloneQuiz(q *domain.Quiz) *domain.Quiz {
	if q == nil {
		return nil
	}
	cp := *q
	cp.Questions = make([]domain.QuizQuestion, len(q.Questions))
	for i, question := range q.Questions {
		question.Choices = append([]domain.Choice(nil), question.Choices...)
		cp.Questions[i] = question
	}
	return &cp
}

func cloneFlashcards(f *domain.FlashcardSet) *domain.FlashcardSet {
	if f == nil {
		return nil
	}
	cp := *f
	cp.Cards = append([]domain.Flashcard(nil), f.Cards...)
	return &cp
}
