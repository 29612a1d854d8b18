package chunker

import (
	"errors"
	"fmt"
	"strings"

	"lecture-notes/pkg/domain"
	"lecture-notes/pkg/textproc"
)

var (
	// ErrBadChunkParams signals degenerate parameters (non-positive max
	// size, negative overlap, or overlap >= max size).
	ErrBadChunkParams = errors.New("bad chunk parameters")

	// ErrEmptyText signals an empty or whitespace-only transcript.
	ErrEmptyText = errors.New("empty text")
)

// Defaults chosen for a ~1k-token generation budget on character input.
const (
	DefaultMaxSize = 4000
	DefaultOverlap = 200
)

// Split cuts the normalized transcript into ordered chunks of at most
// maxSize runes, respecting sentence boundaries where possible.
//
// Sentences are accumulated greedily; a single sentence longer than
// maxSize is hard-split at the size boundary (lossy fallback). Each
// subsequent chunk starts `overlap` runes before the previous chunk's
// end, snapped back to the nearest sentence start at or before that
// point, so generation context is not cut mid-sentence when avoidable.
//
// The result is deterministic: identical input and parameters always
// produce an identical chunk sequence. Chunks are contiguous slices of
// the input, so concatenating them with overlaps removed reconstructs
// the transcript exactly.
func Split(text string, maxSize, overlap int) ([]domain.Chunk, error) {
	if maxSize <= 0 || overlap < 0 || overlap >= maxSize {
		return nil, fmt.Errorf("%w: max=%d overlap=%d", ErrBadChunkParams, maxSize, overlap)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	runes := []rune(text)
	spans := textproc.SentenceSpans(text)

	var chunks []domain.Chunk
	pos := 0
	prevEnd := 0

	for pos < len(runes) {
		end := chunkEnd(spans, pos, prevEnd, maxSize, len(runes))

		chunks = append(chunks, domain.Chunk{
			Index: len(chunks),
			Start: pos,
			End:   end,
			Text:  string(runes[pos:end]),
		})

		if end == len(runes) {
			break
		}
		prevEnd = end
		pos = nextStart(runes, spans, pos, end, overlap)
	}

	return chunks, nil
}

// chunkEnd returns the exclusive end offset for a chunk starting at pos.
// It picks the furthest sentence end within the size budget that still
// makes progress past prevEnd; if the sentence covering the budget
// boundary is itself oversized, it hard-splits at pos+maxSize.
func chunkEnd(spans []textproc.Span, pos, prevEnd, maxSize, total int) int {
	budget := pos + maxSize
	if budget >= total {
		return total
	}

	best := -1
	for _, s := range spans {
		if s.End > budget {
			break
		}
		if s.End > pos && s.End > prevEnd {
			best = s.End
		}
	}
	if best == -1 {
		return budget
	}
	return best
}

// nextStart returns the start offset of the chunk following one that
// ended at end. With no overlap it is the first rune after the
// separating whitespace; otherwise it is the latest sentence start at
// or before end-overlap that still lies inside the previous chunk.
func nextStart(runes []rune, spans []textproc.Span, pos, end, overlap int) int {
	if overlap == 0 {
		return skipSeparators(runes, end)
	}

	point := end - overlap
	best := -1
	for _, s := range spans {
		if s.Start > point {
			break
		}
		if s.Start > pos {
			best = s.Start
		}
	}
	if best != -1 {
		return best
	}
	if point > pos {
		return point
	}
	// Overlap window swallows the whole previous chunk; fall back to
	// no-overlap behavior so the walk still advances.
	return skipSeparators(runes, end)
}

// skipSeparators advances past the whitespace separating two sentences.
func skipSeparators(runes []rune, i int) int {
	for i < len(runes) && (runes[i] == ' ' || runes[i] == '\n' || runes[i] == '\t') {
		i++
	}
	return i
}
