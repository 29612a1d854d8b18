package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"lecture-notes/pkg/chunker"
	"lecture-notes/pkg/domain"
	"lecture-notes/pkg/generate"
	"lecture-notes/pkg/merge"
	"lecture-notes/pkg/store"
	"lecture-notes/pkg/textproc"
)

// Normalizer cleans a raw transcript into the normalized form the
// chunker operates on.
type Normalizer interface {
	Normalize(raw string) (string, int, error)
}

// Config wires the pipeline dependencies.
type Config struct {
	Store      store.Store
	Normalizer Normalizer
	Generators []generate.Generator

	// Chunking parameters. A zero MaxChunkSize takes the chunker
	// default; Overlap zero means no overlap and negative takes the
	// default.
	MaxChunkSize int
	Overlap      int

	// Workers bounds concurrent generation calls per artifact kind.
	Workers int
}

// Pipeline runs the content derivation for one lecture: normalize,
// chunk, fan generation out over a bounded worker pool per artifact
// kind, merge, and persist.
type Pipeline struct {
	store      store.Store
	normalizer Normalizer
	generators []generate.Generator
	maxSize    int
	overlap    int
	workers    int
}

// New creates a pipeline from the given configuration.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if len(cfg.Generators) == 0 {
		return nil, fmt.Errorf("at least one generator is required")
	}
	if cfg.Normalizer == nil {
		cfg.Normalizer = textproc.NewNormalizer()
	}
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = chunker.DefaultMaxSize
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = chunker.DefaultOverlap
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	return &Pipeline{
		store:      cfg.Store,
		normalizer: cfg.Normalizer,
		generators: cfg.Generators,
		maxSize:    cfg.MaxChunkSize,
		overlap:    cfg.Overlap,
		workers:    cfg.Workers,
	}, nil
}

// NewLecture builds a fresh lecture record for a raw transcript. The
// pipeline mints the id; CreatedAt is set once here.
func NewLecture(title, audioRef, rawTranscript string) *domain.Lecture {
	return &domain.Lecture{
		ID:            uuid.NewString(),
		Title:         title,
		AudioRef:      audioRef,
		RawTranscript: rawTranscript,
		CreatedAt:     time.Now().UTC(),
		Status:        domain.StatusProcessing,
	}
}

// Process derives all artifacts for the lecture and persists them.
//
// Normalization or chunking failures abort before any generation call
// and leave the lecture failed with the error recorded. Per-chunk
// generation failures degrade the affected kind to partial instead of
// failing the lecture. On cancellation nothing further is persisted.
func (p *Pipeline) Process(ctx context.Context, lecture *domain.Lecture) error {
	normalized, removed, err := p.normalizer.Normalize(lecture.RawTranscript)
	if err != nil {
		p.markFailed(ctx, lecture, err)
		return fmt.Errorf("normalize transcript: %w", err)
	}
	lecture.Transcript = normalized
	log.Printf("Pipeline: lecture %s: normalized transcript (%d runes removed)", lecture.ID, removed)

	chunks, err := chunker.Split(normalized, p.maxSize, p.overlap)
	if err != nil {
		p.markFailed(ctx, lecture, err)
		return fmt.Errorf("chunk transcript: %w", err)
	}
	log.Printf("Pipeline: lecture %s: %d chunks (max=%d overlap=%d)", lecture.ID, len(chunks), p.maxSize, p.overlap)

	lecture.Status = domain.StatusProcessing
	if err := p.store.UpsertLecture(ctx, lecture); err != nil {
		return fmt.Errorf("persist lecture: %w", err)
	}

	statuses := p.runGenerators(ctx, lecture.ID, chunks)
	if ctx.Err() != nil {
		// Cancelled mid-flight: nothing was persisted for the cancelled
		// kinds and the lecture keeps its processing status.
		return ctx.Err()
	}

	overall := overallStatus(statuses)
	if err := p.updateStatusWithRetry(ctx, lecture.ID, overall, ""); err != nil {
		return fmt.Errorf("update lecture status: %w", err)
	}
	lecture.Status = overall
	log.Printf("Pipeline: lecture %s: done, status=%s", lecture.ID, overall)
	return nil
}

// runGenerators processes every artifact kind concurrently and returns
// the status each kind's merged artifact ended with.
func (p *Pipeline) runGenerators(ctx context.Context, lectureID string, chunks []domain.Chunk) []domain.ArtifactStatus {
	statuses := make([]domain.ArtifactStatus, len(p.generators))

	var wg sync.WaitGroup
	for i, gen := range p.generators {
		wg.Add(1)
		go func(slot int, gen generate.Generator) {
			defer wg.Done()
			statuses[slot] = p.runKind(ctx, lectureID, gen, chunks)
		}(i, gen)
	}
	wg.Wait()

	return statuses
}

// runKind fans one kind's chunks out to the worker pool, joins on the
// full result set, merges, and persists the artifact.
func (p *Pipeline) runKind(ctx context.Context, lectureID string, gen generate.Generator, chunks []domain.Chunk) domain.ArtifactStatus {
	kind := gen.Kind()
	partials := p.generatePartials(ctx, gen, chunks)

	if ctx.Err() != nil {
		log.Printf("Pipeline: lecture %s: %s cancelled, not persisting", lectureID, kind)
		return domain.ArtifactPending
	}

	artifact, err := merge.Artifact(kind, partials)
	if err != nil && !errors.Is(err, merge.ErrNothingToMerge) {
		log.Printf("Pipeline: lecture %s: merge %s: %v", lectureID, kind, err)
		return domain.ArtifactFailed
	}

	if err := p.upsertArtifactWithRetry(ctx, lectureID, artifact); err != nil {
		log.Printf("Pipeline: lecture %s: persist %s artifact: %v", lectureID, kind, err)
		return domain.ArtifactFailed
	}
	return artifact.Status()
}

// generatePartials runs the bounded worker pool over the chunks. Each
// chunk resolves to exactly one partial, failed or not, so the join is
// a barrier rather than a race.
func (p *Pipeline) generatePartials(ctx context.Context, gen generate.Generator, chunks []domain.Chunk) []generate.Partial {
	kind := gen.Kind()

	jobChan := make(chan domain.Chunk, len(chunks))
	for _, c := range chunks {
		jobChan <- c
	}
	close(jobChan)

	resultsChan := make(chan generate.Partial, len(chunks))

	var wg sync.WaitGroup
	workers := p.workers
	if workers > len(chunks) {
		workers = len(chunks)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for chunk := range jobChan {
				// Stop issuing new generation calls once cancelled;
				// record the remaining chunks as failed placeholders.
				if ctx.Err() != nil {
					resultsChan <- generate.FailedPartial(kind, chunk.Index)
					continue
				}

				partial, err := gen.Generate(ctx, chunk)
				if err != nil {
					log.Printf("Pipeline: %s worker %d: chunk %d failed: %v", kind, workerID, chunk.Index, err)
					resultsChan <- generate.FailedPartial(kind, chunk.Index)
					continue
				}
				resultsChan <- partial
			}
		}(i)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	partials := make([]generate.Partial, 0, len(chunks))
	for partial := range resultsChan {
		partials = append(partials, partial)
	}
	return partials
}

// upsertArtifactWithRetry retries a conflicting write once before
// surfacing it.
func (p *Pipeline) upsertArtifactWithRetry(ctx context.Context, id string, artifact domain.Artifact) error {
	err := p.store.UpsertArtifact(ctx, id, artifact)
	if errors.Is(err, store.ErrConflict) {
		err = p.store.UpsertArtifact(ctx, id, artifact)
	}
	return err
}

// updateStatusWithRetry retries a conflicting status write once.
func (p *Pipeline) updateStatusWithRetry(ctx context.Context, id string, status domain.LectureStatus, errMsg string) error {
	err := p.store.UpdateStatus(ctx, id, status, errMsg)
	if errors.Is(err, store.ErrConflict) {
		err = p.store.UpdateStatus(ctx, id, status, errMsg)
	}
	return err
}

// markFailed records a pipeline-level failure on the lecture before any
// generation call has run.
func (p *Pipeline) markFailed(ctx context.Context, lecture *domain.Lecture, cause error) {
	lecture.Status = domain.StatusFailed
	lecture.Error = cause.Error()
	if err := p.store.UpsertLecture(ctx, lecture); err != nil {
		log.Printf("Pipeline: lecture %s: recording failure: %v", lecture.ID, err)
	}
}

// overallStatus folds per-kind artifact statuses into the lecture
// status: complete when every kind completed, failed when none produced
// anything, partial otherwise.
func overallStatus(statuses []domain.ArtifactStatus) domain.LectureStatus {
	complete, failed := 0, 0
	for _, s := range statuses {
		switch s {
		case domain.ArtifactComplete:
			complete++
		case domain.ArtifactFailed:
			failed++
		}
	}
	switch {
	case complete == len(statuses):
		return domain.StatusComplete
	case failed == len(statuses):
		return domain.StatusFailed
	default:
		return domain.StatusPartial
	}
}
