package store

import (
	"context"
	"errors"

	"lecture-notes/pkg/domain"
)

var (
	// ErrNotFound is returned for operations on an unknown lecture id.
	ErrNotFound = errors.New("lecture not found")

	// ErrConflict is returned when a concurrent write collided. Callers
	// retry once (re-read, re-apply) before surfacing it.
	ErrConflict = errors.New("conflicting concurrent write")
)

// Store persists lectures and their artifacts. All operations are
// idempotent under repeated identical calls: upserting the same payload
// twice leaves the stored state unchanged. Writes to a single lecture's
// record are serialized by the implementation.
type Store interface {
	// UpsertLecture creates the lecture or replaces its transcript and
	// status fields by id. Existing artifacts are preserved.
	UpsertLecture(ctx context.Context, lecture *domain.Lecture) error

	// UpdateStatus sets the lecture's processing status and, for failed
	// lectures, the recorded error.
	UpdateStatus(ctx context.Context, id string, status domain.LectureStatus, errMsg string) error

	// UpsertArtifact replaces the lecture's single artifact of the
	// payload's kind.
	UpsertArtifact(ctx context.Context, id string, artifact domain.Artifact) error

	// GetLecture fetches a lecture with all its artifacts.
	GetLecture(ctx context.Context, id string) (*domain.Lecture, error)

	// ListLectures returns a page of lectures ordered by creation time
	// descending. page is 1-based.
	ListLectures(ctx context.Context, page, perPage int) ([]domain.Lecture, error)

	// SearchLectures matches the query as a substring against title and
	// transcript, newest first.
	SearchLectures(ctx context.Context, query string) ([]domain.Lecture, error)

	// DeleteLecture removes the lecture and, with it, all its artifacts.
	DeleteLecture(ctx context.Context, id string) error
}
