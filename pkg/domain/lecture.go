package domain

import "time"

// LectureStatus is the user-visible processing state of a lecture.
type LectureStatus string

const (
	StatusProcessing LectureStatus = "processing"
	StatusComplete   LectureStatus = "complete"
	StatusPartial    LectureStatus = "partial"
	StatusFailed     LectureStatus = "failed"
)

// Lecture is the root aggregate: one uploaded recording (or imported
// transcript) and everything derived from it. The transcript fields are
// set once and immutable afterwards; only Status, Error and the artifact
// fields change as the pipeline runs.
type Lecture struct {
	ID            string        `bson:"_id" json:"id"`
	Title         string        `bson:"title" json:"title"`
	AudioRef      string        `bson:"audio_ref,omitempty" json:"audio_ref,omitempty"`
	SourceURL     string        `bson:"source_url,omitempty" json:"source_url,omitempty"`
	RawTranscript string        `bson:"raw_transcript" json:"raw_transcript"`
	Transcript    string        `bson:"transcript" json:"transcript"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
	Status        LectureStatus `bson:"status" json:"status"`
	Error         string        `bson:"error,omitempty" json:"error,omitempty"`

	Summary    *Summary      `bson:"summary,omitempty" json:"summary,omitempty"`
	Quiz       *Quiz         `bson:"quiz,omitempty" json:"quiz,omitempty"`
	Flashcards *FlashcardSet `bson:"flashcards,omitempty" json:"flashcards,omitempty"`
}

// Chunk is a bounded, ordered slice of the normalized transcript.
// Chunks exist only while the pipeline runs; they are never persisted.
// Start/End are rune offsets into the normalized transcript, End exclusive.
type Chunk struct {
	Index int
	Start int
	End   int
	Text  string
}
