package textproc

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrEmptyTranscript is returned when the input is empty or whitespace-only.
// The pipeline aborts on it before any generation call is made.
var ErrEmptyTranscript = errors.New("empty transcript")

// DefaultFillers are the spoken filler tokens stripped from transcripts.
// Multi-word phrases are matched as whole phrases.
var DefaultFillers = []string{
	"um", "uh", "er", "ah",
	"you know", "i mean", "kind of", "sort of",
}

var (
	reTimestamp   = regexp.MustCompile(`[\[(]\d{1,2}:\d{2}(?::\d{2})?[\])]`)
	reSpeaker     = regexp.MustCompile(`(?m)^(?:Speaker|Student|Professor|Lecturer|SPEAKER_\d+|UNKNOWN_\d+)\s*\d*\s*:\s*`)
	reNoise       = regexp.MustCompile(`(?i)\[(?:inaudible|unclear|crosstalk|music|applause|laughter)\]`)
	reWhitespace  = regexp.MustCompile(`\s+`)
	reSpaceBefore = regexp.MustCompile(`\s+([,.!?;:])`)
	reNoSpaceAfte = regexp.MustCompile(`([,.!?;:])([A-Za-z])`)
	reMultiPunct  = regexp.MustCompile(`[,;:]*([.!?])[,.!?;:]+`)
	reSentStart   = regexp.MustCompile(`([.!?] )([a-z])`)
)

// Normalizer cleans raw transcript text deterministically. The same
// input always yields the same output, and normalizing an already
// normalized transcript is a no-op; chunk offsets depend on this.
type Normalizer struct {
	fillerRe *regexp.Regexp
}

// NewNormalizer builds a normalizer stripping the given filler tokens.
// With no arguments the DefaultFillers list is used.
func NewNormalizer(fillers ...string) *Normalizer {
	if len(fillers) == 0 {
		fillers = DefaultFillers
	}
	quoted := make([]string, 0, len(fillers))
	for _, f := range fillers {
		f = strings.TrimSpace(f)
		if f != "" {
			quoted = append(quoted, regexp.QuoteMeta(f))
		}
	}
	pattern := `(?i)\b(?:` + strings.Join(quoted, "|") + `)\b[,]?`
	return &Normalizer{fillerRe: regexp.MustCompile(pattern)}
}

// Normalize cleans the raw transcript and reports the net number of
// runes removed. Empty or whitespace-only input is an error rather
// than a silently empty result.
func (n *Normalizer) Normalize(raw string) (string, int, error) {
	if strings.TrimSpace(raw) == "" {
		return "", 0, ErrEmptyTranscript
	}

	text := raw

	// Transcription artifacts: timestamps, speaker labels, noise markers.
	text = reTimestamp.ReplaceAllString(text, " ")
	text = reSpeaker.ReplaceAllString(text, "")
	text = reNoise.ReplaceAllString(text, " ")

	// Filler tokens.
	text = n.fillerRe.ReplaceAllString(text, " ")

	// Whitespace and punctuation spacing.
	text = reWhitespace.ReplaceAllString(text, " ")
	text = reSpaceBefore.ReplaceAllString(text, "$1")
	text = reMultiPunct.ReplaceAllString(text, "$1")
	text = reNoSpaceAfte.ReplaceAllString(text, "$1 $2")

	text = capitalizeSentences(strings.TrimSpace(text))

	if text == "" {
		return "", 0, fmt.Errorf("%w: nothing left after cleaning", ErrEmptyTranscript)
	}

	removed := utf8.RuneCountInString(raw) - utf8.RuneCountInString(text)
	if removed < 0 {
		removed = 0
	}
	return text, removed, nil
}

// capitalizeSentences upper-cases the first letter of the text and of
// every sentence following a terminator.
func capitalizeSentences(text string) string {
	if text == "" {
		return text
	}
	r, size := utf8.DecodeRuneInString(text)
	text = string(unicode.ToUpper(r)) + text[size:]
	return reSentStart.ReplaceAllStringFunc(text, func(m string) string {
		return m[:len(m)-1] + strings.ToUpper(m[len(m)-1:])
	})
}
