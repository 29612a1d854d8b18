package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const transcriptionURL = "https://api.openai.com/v1/audio/transcriptions"

// OpenAITranscriber calls the hosted audio/transcriptions endpoint.
type OpenAITranscriber struct {
	apiKey   string
	model    string
	language string
	client   *http.Client
}

// NewOpenAITranscriber builds a transcriber for the given API key.
// Model defaults to whisper-1; language is an optional ISO 639-1 hint
// passed through to the API.
func NewOpenAITranscriber(apiKey, model, language string) *OpenAITranscriber {
	if model == "" {
		model = "whisper-1"
	}
	return &OpenAITranscriber{
		apiKey:   apiKey,
		model:    model,
		language: language,
		// Lecture files can run long; the upload dominates.
		client: &http.Client{Timeout: 30 * time.Minute},
	}
}

type transcriptionResp struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

// Transcribe uploads the audio file and returns the transcript text.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	if err := ValidateAudioPath(audioPath); err != nil {
		return Result{}, err
	}

	f, err := os.Open(audioPath)
	if err != nil {
		return Result{}, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("model", t.model); err != nil {
		return Result{}, err
	}
	if t.language != "" {
		if err := mw.WriteField("language", t.language); err != nil {
			return Result{}, err
		}
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return Result{}, err
	}

	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return Result{}, err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return Result{}, fmt.Errorf("read audio file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, transcriptionURL, &body)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("transcription api http %d: %s", resp.StatusCode, string(b))
	}

	var tr transcriptionResp
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return Result{}, fmt.Errorf("decode transcription response: %w", err)
	}

	return Result{
		Text:     tr.Text,
		Language: tr.Language,
		Duration: time.Duration(tr.Duration * float64(time.Second)),
	}, nil
}
