package chunker

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestSplitBadParams(t *testing.T) {
	tests := []struct {
		name    string
		maxSize int
		overlap int
	}{
		{"zero max size", 0, 0},
		{"negative max size", -1, 0},
		{"negative overlap", 100, -1},
		{"overlap equals max size", 100, 100},
		{"overlap exceeds max size", 100, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split("some text.", tt.maxSize, tt.overlap)
			if !errors.Is(err, ErrBadChunkParams) {
				t.Errorf("Split error = %v, want ErrBadChunkParams", err)
			}
		})
	}
}

func TestSplitEmptyText(t *testing.T) {
	for _, in := range []string{"", "   ", "\n"} {
		_, err := Split(in, 100, 10)
		if !errors.Is(err, ErrEmptyText) {
			t.Errorf("Split(%q) error = %v, want ErrEmptyText", in, err)
		}
	}
}

func TestSplitSingleChunk(t *testing.T) {
	text := "A short transcript that fits."
	chunks, err := Split(text, 4000, 200)
	if err != nil {
		t.Fatalf("Split error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text || chunks[0].Start != 0 || chunks[0].End != len([]rune(text)) {
		t.Errorf("unexpected chunk: %+v", chunks[0])
	}
}

func TestSplitSentenceBoundaries(t *testing.T) {
	text := "Sentence one. Sentence two. Sentence three."
	chunks, err := Split(text, 20, 0)
	if err != nil {
		t.Fatalf("Split error = %v", err)
	}

	want := []string{"Sentence one.", "Sentence two.", "Sentence three."}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %+v", len(want), len(chunks), chunks)
	}
	for i, w := range want {
		if chunks[i].Text != w {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i].Text, w)
		}
		if chunks[i].Index != i {
			t.Errorf("chunk %d has index %d", i, chunks[i].Index)
		}
	}
}

func TestSplitTwoSentencesPerChunk(t *testing.T) {
	text := "Sentence one. Sentence two. Sentence three."
	chunks, err := Split(text, 27, 0)
	if err != nil {
		t.Fatalf("Split error = %v", err)
	}

	want := []string{"Sentence one. Sentence two.", "Sentence three."}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %+v", len(want), len(chunks), chunks)
	}
	for i, w := range want {
		if chunks[i].Text != w {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i].Text, w)
		}
	}
}

func TestSplitOverlap(t *testing.T) {
	text := "Sentence one. Sentence two. Sentence three."
	chunks, err := Split(text, 30, 14)
	if err != nil {
		t.Fatalf("Split error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		if cur.Start > prev.End {
			t.Errorf("chunk %d starts at %d, after previous end %d: no overlap coverage", i, cur.Start, prev.End)
		}
		if cur.End <= prev.End {
			t.Errorf("chunk %d end %d does not advance past previous end %d", i, cur.End, prev.End)
		}
	}
}

func TestSplitOverlapFallbackSkipsNewline(t *testing.T) {
	// The first chunk is shorter than the overlap, so the next start
	// falls back past the separator, which here is a newline.
	text := "Aaa bbb.\nCc dd."
	chunks, err := Split(text, 10, 9)
	if err != nil {
		t.Fatalf("Split error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %+v", len(chunks), chunks)
	}
	if chunks[1].Text != "Cc dd." {
		t.Errorf("second chunk = %q, want %q", chunks[1].Text, "Cc dd.")
	}
	for _, c := range chunks {
		if c.Text != strings.TrimLeft(c.Text, " \n\t") {
			t.Errorf("chunk %d starts on whitespace: %q", c.Index, c.Text)
		}
	}
}

func TestSplitMaxSizeRespected(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("This sentence pads the transcript with ordinary words. ")
	}
	text := strings.TrimSpace(b.String())

	chunks, err := Split(text, 200, 50)
	if err != nil {
		t.Fatalf("Split error = %v", err)
	}
	for _, c := range chunks {
		if n := len([]rune(c.Text)); n > 200 {
			t.Errorf("chunk %d has %d runes, exceeds max size", c.Index, n)
		}
	}
}

func TestSplitOversizedSentenceHardSplit(t *testing.T) {
	text := strings.Repeat("a", 50) + "."
	chunks, err := Split(text, 20, 5)
	if err != nil {
		t.Fatalf("Split error = %v", err)
	}
	if len(chunks) < 3 {
		t.Fatalf("expected multiple chunks for oversized sentence, got %d", len(chunks))
	}
	for _, c := range chunks {
		if n := len([]rune(c.Text)); n > 20 {
			t.Errorf("chunk %d has %d runes, exceeds max size", c.Index, n)
		}
	}
	if last := chunks[len(chunks)-1]; last.End != len([]rune(text)) {
		t.Errorf("last chunk ends at %d, want %d", last.End, len([]rune(text)))
	}
}

func TestSplitReconstruction(t *testing.T) {
	text := "Alpha beta gamma. Delta epsilon zeta. Eta theta iota kappa. Lambda mu nu. Xi omicron pi rho sigma."
	runes := []rune(text)

	for _, overlap := range []int{0, 10} {
		chunks, err := Split(text, 30, overlap)
		if err != nil {
			t.Fatalf("Split(overlap=%d) error = %v", overlap, err)
		}

		// Every chunk is a contiguous slice of the input.
		for _, c := range chunks {
			if got := string(runes[c.Start:c.End]); got != c.Text {
				t.Errorf("overlap=%d chunk %d text does not match offsets: %q vs %q", overlap, c.Index, c.Text, got)
			}
		}

		// Stitching the non-overlapping tails back together
		// reconstructs the tail of the input exactly.
		rebuilt := []rune(chunks[0].Text)
		for i := 1; i < len(chunks); i++ {
			rebuilt = append(rebuilt, runes[chunks[i-1].End:chunks[i].End]...)
		}
		if chunks[0].Start != 0 {
			t.Errorf("overlap=%d first chunk starts at %d", overlap, chunks[0].Start)
		}
		if string(rebuilt) != text {
			t.Errorf("overlap=%d reconstruction mismatch:\n%q\n%q", overlap, string(rebuilt), text)
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	text := "Alpha beta gamma. Delta epsilon zeta. Eta theta iota kappa. Lambda mu nu."

	a, err := Split(text, 25, 8)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Split(text, 25, 8)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same input produced different chunkings:\n%+v\n%+v", a, b)
	}
}

func TestSplitChunkOrdering(t *testing.T) {
	text := strings.Repeat("Short sentence here. ", 30)
	chunks, err := Split(strings.TrimSpace(text), 100, 20)
	if err != nil {
		t.Fatal(err)
	}

	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk at position %d has index %d", i, c.Index)
		}
		if c.Start >= c.End {
			t.Errorf("chunk %d has empty range [%d,%d)", i, c.Start, c.End)
		}
	}
}
