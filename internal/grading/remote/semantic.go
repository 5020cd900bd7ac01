// Package remote grades free-text answers through an OpenAI-compatible
// chat completion API. Callers must treat every error as a cue to fall
// back to local scoring; nothing here is allowed to leave an answer
// ungraded.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/examforge/examforge/internal/grading"
)

// ErrMalformedResponse marks a backend reply that could not be parsed or
// failed range validation.
var ErrMalformedResponse = errors.New("remote grader: malformed response")

type Config struct {
	APIKey  string
	BaseURL string // e.g. https://integrate.api.nvidia.com/v1 for NIM
	Model   string
}

// Grader calls a remote model to grade answers semantically.
type Grader struct {
	client *openai.Client
	model  string
}

func New(cfg Config) (*Grader, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("remote grader: API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("remote grader: model is required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &Grader{client: openai.NewClientWithConfig(oc), model: cfg.Model}, nil
}

const systemPrompt = "You are a strict exam grader. Compare the student answer " +
	"to the reference answer and reply with ONLY a JSON object: " +
	`{"similarity": <0..1>, "percentage": <0..100>, "grade": "<letter>", "feedback": "<one sentence>"}`

// Grade asks the backend to score a student answer against a reference.
// The returned outcome's score is derived locally from the reported
// percentage so a misbehaving model cannot exceed maxPoints.
func (g *Grader) Grade(ctx context.Context, studentAnswer, referenceAnswer string, maxPoints float64) (grading.Outcome, error) {
	prompt := fmt.Sprintf("Reference answer:\n%s\n\nStudent answer:\n%s", referenceAnswer, studentAnswer)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
		MaxTokens:   300,
	})
	if err != nil {
		return grading.Outcome{}, fmt.Errorf("remote grader: %w", err)
	}
	if len(resp.Choices) == 0 {
		return grading.Outcome{}, fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}

	var parsed struct {
		Similarity float64 `json:"similarity"`
		Percentage float64 `json:"percentage"`
		Grade      string  `json:"grade"`
		Feedback   string  `json:"feedback"`
	}
	content := stripFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return grading.Outcome{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if parsed.Percentage < 0 || parsed.Percentage > 100 || parsed.Similarity < 0 || parsed.Similarity > 1 {
		return grading.Outcome{}, fmt.Errorf("%w: values out of range", ErrMalformedResponse)
	}

	return grading.Outcome{
		Score:      round2(parsed.Percentage / 100 * maxPoints),
		Percentage: parsed.Percentage,
		Similarity: parsed.Similarity,
		Grade:      parsed.Grade,
		Feedback:   parsed.Feedback,
	}, nil
}

// stripFences removes a markdown code fence around a JSON payload, which
// some backends emit despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if after, ok := strings.CutPrefix(s, "```json"); ok {
		s = after
	} else if after, ok := strings.CutPrefix(s, "```"); ok {
		s = after
	} else {
		return s
	}
	if before, _, ok := strings.Cut(s, "```"); ok {
		s = before
	}
	return strings.TrimSpace(s)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
