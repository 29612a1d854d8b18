package transcribe

import (
	"context"
	"errors"
	"time"
)

// ErrUnsupportedFormat is returned when the audio file extension is not
// one the transcription backends accept.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Result is the output of a transcription run. Text is the full raw
// transcript; Duration is best-effort and zero when the backend does
// not report it.
type Result struct {
	Text     string
	Language string
	Duration time.Duration
}

// Transcriber is a pluggable speech-to-text backend.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (Result, error)
}
