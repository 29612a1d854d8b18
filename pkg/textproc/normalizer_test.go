package textproc

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeRemovesArtifacts(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "fillers",
			in:   "so today we will, uh, talk about entropy.",
			want: "So today we will, talk about entropy.",
		},
		{
			name: "speaker label",
			in:   "Professor: welcome to the course.",
			want: "Welcome to the course.",
		},
		{
			name: "timestamp",
			in:   "today [00:12] we begin.",
			want: "Today we begin.",
		},
		{
			name: "noise marker",
			in:   "the result follows [inaudible] from the lemma.",
			want: "The result follows from the lemma.",
		},
		{
			name: "whitespace collapse",
			in:   "first   point.\n\n  second point.",
			want: "First point. Second point.",
		},
		{
			name: "space before punctuation",
			in:   "this is true , of course .",
			want: "This is true, of course.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := n.Normalize(tt.in)
			if err != nil {
				t.Fatalf("Normalize(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer()

	raw := "Professor: um, today we cover, uh, the second law. it states [inaudible] that entropy never decreases."

	once, removed, err := n.Normalize(raw)
	if err != nil {
		t.Fatalf("first Normalize error = %v", err)
	}
	if removed <= 0 {
		t.Errorf("expected positive removed count, got %d", removed)
	}

	twice, removedAgain, err := n.Normalize(once)
	if err != nil {
		t.Fatalf("second Normalize error = %v", err)
	}
	if twice != once {
		t.Errorf("Normalize is not idempotent:\nfirst:  %q\nsecond: %q", once, twice)
	}
	if removedAgain != 0 {
		t.Errorf("second pass removed %d runes, want 0", removedAgain)
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	n := NewNormalizer()
	raw := "uh, determinism matters. the same input, you know, yields the same output."

	a, _, err := n.Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := n.Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("same input produced different outputs:\n%q\n%q", a, b)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	n := NewNormalizer()
	for _, in := range []string{"", "   ", "\n\t "} {
		_, _, err := n.Normalize(in)
		if !errors.Is(err, ErrEmptyTranscript) {
			t.Errorf("Normalize(%q) error = %v, want ErrEmptyTranscript", in, err)
		}
	}
}

func TestNormalizeCustomFillers(t *testing.T) {
	n := NewNormalizer("basically", "literally")

	got, _, err := n.Normalize("this is basically the literally main idea. um, right.")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "basically") || strings.Contains(got, "literally") {
		t.Errorf("custom fillers not removed: %q", got)
	}
	// Default fillers are not active when a custom list is given.
	if !strings.Contains(strings.ToLower(got), "um") {
		t.Errorf("default filler removed despite custom list: %q", got)
	}
}
