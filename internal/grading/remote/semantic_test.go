package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func newTestGrader(t *testing.T, handler http.HandlerFunc) *Grader {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	oc := openai.DefaultConfig("test-key")
	oc.BaseURL = server.URL + "/v1"
	return &Grader{client: openai.NewClientWithConfig(oc), model: "test-model"}
}

func completionResponse(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "test-model",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		})
	}
}

func TestGrade_HappyPath(t *testing.T) {
	g := newTestGrader(t, completionResponse(
		`{"similarity":0.91,"percentage":100,"grade":"A+","feedback":"Spot on."}`))

	out, err := g.Grade(context.Background(), "plants use sunlight", "photosynthesis converts light", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Score != 10 {
		t.Errorf("score = %v, want 10", out.Score)
	}
	if out.Percentage != 100 || out.Grade != "A+" {
		t.Errorf("unexpected outcome: %+v", out)
	}
	if out.Similarity != 0.91 {
		t.Errorf("similarity = %v, want 0.91", out.Similarity)
	}
}

func TestGrade_StripsMarkdownFences(t *testing.T) {
	g := newTestGrader(t, completionResponse(
		"```json\n{\"similarity\":0.5,\"percentage\":50,\"grade\":\"C\",\"feedback\":\"Partial.\"}\n```"))

	out, err := g.Grade(context.Background(), "a", "b", 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Score != 4 {
		t.Errorf("score = %v, want 4", out.Score)
	}
}

func TestGrade_MalformedJSON(t *testing.T) {
	g := newTestGrader(t, completionResponse(`the answer looks okay to me`))

	_, err := g.Grade(context.Background(), "a", "b", 10)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("error = %v, want ErrMalformedResponse", err)
	}
}

func TestGrade_OutOfRangeValues(t *testing.T) {
	g := newTestGrader(t, completionResponse(
		`{"similarity":0.9,"percentage":250,"grade":"A+","feedback":"x"}`))

	_, err := g.Grade(context.Background(), "a", "b", 10)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("error = %v, want ErrMalformedResponse", err)
	}
}

func TestGrade_BackendError(t *testing.T) {
	g := newTestGrader(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	if _, err := g.Grade(context.Background(), "a", "b", 10); err == nil {
		t.Fatal("expected an error from an unreachable backend")
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{Model: "m"}); err == nil {
		t.Error("expected error for missing API key")
	}
	if _, err := New(Config{APIKey: "k"}); err == nil {
		t.Error("expected error for missing model")
	}
	if _, err := New(Config{APIKey: "k", Model: "m", BaseURL: "http://localhost:9999/v1"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
