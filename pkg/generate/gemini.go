package generate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// GeminiService implements Service against the Gemini API. It rotates
// through the supplied API keys when one is rate limited. One service
// instance is shared by all generators and their pool workers, so the
// key cursor is guarded by a mutex.
type GeminiService struct {
	apiKeys []string
	model   string

	mu         sync.Mutex
	currentKey int
}

// NewGeminiService creates a Gemini-backed generation service.
func NewGeminiService(apiKeys []string, model string) (*GeminiService, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("at least one Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiService{apiKeys: apiKeys, model: model}, nil
}

// Generate sends instruction + text to Gemini and returns the reply.
// Rate-limit and quota errors rotate to the next key and come back as
// TransientError so the caller's retry loop handles them.
func (s *GeminiService) Generate(ctx context.Context, instruction, text string) (string, error) {
	prompt := instruction + "\n\nTranscript segment:\n---\n" + text + "\n---"

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
	if err != nil {
		if isRateLimited(err) {
			s.rotateKey()
			return "", &TransientError{Reason: "rate limited", Err: err}
		}
		if ctx.Err() == context.DeadlineExceeded {
			return "", &TransientError{Reason: "timeout", Err: err}
		}
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", &TransientError{Reason: "empty response"}
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	reply := sb.String()
	if strings.TrimSpace(reply) == "" {
		return "", &TransientError{Reason: "empty response"}
	}
	return reply, nil
}

// apiKey returns the key concurrent calls should use right now.
func (s *GeminiService) apiKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKeys[s.currentKey]
}

func (s *GeminiService) rotateKey() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
