package textproc

import (
	"strings"
	"unicode"
)

// abbreviations that end with a period without ending a sentence.
// Compared lowercase, without the trailing period.
var abbreviations = map[string]bool{
	"dr": true, "prof": true, "mr": true, "ms": true, "mrs": true,
	"st": true, "vs": true, "etc": true, "fig": true, "no": true,
	"al": true, "e.g": true, "i.e": true, "cf": true, "approx": true,
}

// Span is a half-open [Start, End) rune-offset range of one sentence
// within the text it was computed from. End excludes the space that
// separates it from the next sentence.
type Span struct {
	Start int
	End   int
}

// SentenceSpans segments text into sentence spans. A sentence ends at
// `.`, `!` or `?` followed by whitespace (or end of text), unless the
// word before a period is a known abbreviation. Offsets are rune
// offsets, so callers can slice []rune(text) directly.
func SentenceSpans(text string) []Span {
	runes := []rune(text)
	var spans []Span

	start := 0
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		atEnd := i == len(runes)-1
		if !atEnd && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if c == '.' && isAbbreviation(runes, start, i) {
			continue
		}
		spans = append(spans, Span{Start: start, End: i + 1})
		// Skip separating whitespace.
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}

	if start < len(runes) {
		spans = append(spans, Span{Start: start, End: len(runes)})
	}
	return spans
}

// Sentences returns the sentence texts of text, in order.
func Sentences(text string) []string {
	runes := []rune(text)
	spans := SentenceSpans(text)
	out := make([]string, 0, len(spans))
	for _, s := range spans {
		out = append(out, string(runes[s.Start:s.End]))
	}
	return out
}

// isAbbreviation reports whether the word ending at the period runes[dot]
// is a known abbreviation.
func isAbbreviation(runes []rune, start, dot int) bool {
	w := dot - 1
	for w >= start && (unicode.IsLetter(runes[w]) || runes[w] == '.') {
		w--
	}
	word := strings.ToLower(string(runes[w+1 : dot]))
	word = strings.TrimSuffix(word, ".")
	return abbreviations[word]
}
