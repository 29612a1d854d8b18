// Package archive copies finished lectures from the primary store into
// a Postgres table for long-term retention and SQL reporting.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"lecture-notes/pkg/domain"
	"lecture-notes/pkg/store"
)

// Config wires the archiver dependencies.
type Config struct {
	Store    store.Store
	Postgres store.DBProvider
}

// Archiver copies completed lectures into Postgres.
//
// This is a one-shot, catch-up flow: every run reads all completed
// lectures and inserts the ones Postgres does not have yet.
type Archiver struct {
	store store.Store
	pg    store.DBProvider
}

// NewArchiver validates the config and builds an archiver.
func NewArchiver(cfg Config) (*Archiver, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Postgres == nil {
		return nil, fmt.Errorf("postgres client is required")
	}
	return &Archiver{
		store: cfg.Store,
		pg:    cfg.Postgres,
	}, nil
}

// ArchiveCompleted copies every completed lecture into the Postgres
// `lecture` table. Lectures already archived are skipped, so repeated
// runs are idempotent.
func (a *Archiver) ArchiveCompleted(ctx context.Context) error {
	if err := a.ensureLectureSchema(ctx); err != nil {
		return err
	}

	lectures, err := a.readCompletedLectures(ctx)
	if err != nil {
		return err
	}

	log.Printf("Archive: loaded %d completed lectures, processing in batches...", len(lectures))

	processed, inserted, err := a.processBatches(ctx, lectures)
	if err != nil {
		return err
	}

	log.Printf("Archive complete: processed %d lectures, inserted %d new", processed, inserted)
	return nil
}

// readCompletedLectures pages through the store and keeps the lectures
// whose derivation finished.
func (a *Archiver) readCompletedLectures(ctx context.Context) ([]domain.Lecture, error) {
	const pageSize = 200

	var out []domain.Lecture
	for page := 1; ; page++ {
		batch, err := a.store.ListLectures(ctx, page, pageSize)
		if err != nil {
			return nil, fmt.Errorf("list lectures page %d: %w", page, err)
		}
		if len(batch) == 0 {
			return out, nil
		}
		for _, l := range batch {
			if l.Status == domain.StatusComplete {
				out = append(out, l)
			}
		}
		if len(batch) < pageSize {
			return out, nil
		}
	}
}

// processBatches archives all lectures in parallel batches and returns
// total processed and inserted counts.
func (a *Archiver) processBatches(ctx context.Context, lectures []domain.Lecture) (int, int, error) {
	const batchSize = 50
	const numWorkers = 4

	type batchJob struct {
		batch []domain.Lecture
		start int
		end   int
	}

	type batchResult struct {
		processed int
		inserted  int
		err       error
	}

	numBatches := (len(lectures) + batchSize - 1) / batchSize
	jobs := make(chan batchJob, numBatches)
	results := make(chan batchResult, numBatches)

	for start := 0; start < len(lectures); start += batchSize {
		end := start + batchSize
		if end > len(lectures) {
			end = len(lectures)
		}
		jobs <- batchJob{batch: lectures[start:end], start: start, end: end}
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				inserted, err := a.processBatch(ctx, job.batch, job.start, job.end)
				results <- batchResult{
					processed: len(job.batch),
					inserted:  inserted,
					err:       err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	processed, inserted := 0, 0
	for result := range results {
		if result.err != nil {
			return processed, inserted, result.err
		}
		processed += result.processed
		inserted += result.inserted
	}

	return processed, inserted, nil
}

// processBatch checks which ids already exist in Postgres and inserts
// the rest inside one transaction.
func (a *Archiver) processBatch(ctx context.Context, batch []domain.Lecture, start, end int) (int, error) {
	existing, err := a.existingIDs(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("check existing ids for batch [%d:%d]: %w", start, end, err)
	}

	toInsert := make([]domain.Lecture, 0, len(batch))
	for _, l := range batch {
		if l.ID == "" || existing[l.ID] {
			continue
		}
		toInsert = append(toInsert, l)
	}
	if len(toInsert) == 0 {
		return 0, nil
	}

	if err := a.insertLecturesTx(ctx, toInsert); err != nil {
		return 0, fmt.Errorf("insert batch [%d:%d]: %w", start, end, err)
	}
	return len(toInsert), nil
}

func (a *Archiver) ensureLectureSchema(ctx context.Context) error {
	if a.pg.DB() == nil {
		return fmt.Errorf("postgres DB not connected")
	}

	// Artifacts archive as JSON documents; the archive serves reporting,
	// not the per-field access patterns of the primary store.
	const ddl = `
CREATE TABLE IF NOT EXISTS lecture (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL DEFAULT '',
  source_url TEXT NOT NULL DEFAULT '',
  transcript TEXT NOT NULL DEFAULT '',
  summary JSONB,
  quiz JSONB,
  flashcards JSONB,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

	if _, err := a.pg.DB().ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create lecture table: %w", err)
	}
	return nil
}

// existingIDs returns the subset of the batch's ids already archived.
func (a *Archiver) existingIDs(ctx context.Context, batch []domain.Lecture) (map[string]bool, error) {
	if a.pg.DB() == nil {
		return nil, fmt.Errorf("postgres DB not connected")
	}
	if len(batch) == 0 {
		return map[string]bool{}, nil
	}

	args := make([]interface{}, 0, len(batch))
	query := `SELECT id FROM lecture WHERE id IN (`
	for _, l := range batch {
		if l.ID == "" {
			continue
		}
		if len(args) > 0 {
			query += ", "
		}
		args = append(args, l.ID)
		query += fmt.Sprintf("$%d", len(args))
	}
	query += ")"
	if len(args) == 0 {
		return map[string]bool{}, nil
	}

	rows, err := a.pg.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query existing ids: %w", err)
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		set[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return set, nil
}

// insertLecturesTx inserts a batch of lectures within a transaction.
func (a *Archiver) insertLecturesTx(ctx context.Context, batch []domain.Lecture) error {
	tx, err := a.pg.DB().BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insertQuery = `
INSERT INTO lecture (id, title, source_url, transcript, summary, quiz, flashcards, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO NOTHING`

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range batch {
		summary, err := marshalOrNil(l.Summary)
		if err != nil {
			return fmt.Errorf("marshal summary for %s: %w", l.ID, err)
		}
		quiz, err := marshalOrNil(l.Quiz)
		if err != nil {
			return fmt.Errorf("marshal quiz for %s: %w", l.ID, err)
		}
		flashcards, err := marshalOrNil(l.Flashcards)
		if err != nil {
			return fmt.Errorf("marshal flashcards for %s: %w", l.ID, err)
		}

		if _, err := stmt.ExecContext(ctx, l.ID, l.Title, l.SourceURL, l.Transcript,
			summary, quiz, flashcards, l.CreatedAt); err != nil {
			return fmt.Errorf("insert lecture id=%q: %w", l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// marshalOrNil keeps absent artifacts as SQL NULL instead of the JSON
// string "null".
func marshalOrNil(v any) (any, error) {
	switch artifact := v.(type) {
	case *domain.Summary:
		if artifact == nil {
			return nil, nil
		}
	case *domain.Quiz:
		if artifact == nil {
			return nil, nil
		}
	case *domain.FlashcardSet:
		if artifact == nil {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}
