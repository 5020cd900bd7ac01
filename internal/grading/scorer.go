// Package grading scores free-text answers against reference answers by
// keyword recall, mapping similarity to percentage bands with letter
// grades and feedback.
package grading

import (
	"math"
	"strings"
)

// Outcome is the result of grading one answer.
type Outcome struct {
	Correct    bool    `json:"correct"`
	Score      float64 `json:"score"`
	Percentage float64 `json:"percentage"`
	Similarity float64 `json:"similarity"`
	Grade      string  `json:"grade"`
	Feedback   string  `json:"feedback"`
}

// Band maps a minimum similarity to a percentage, letter grade and
// feedback. Bands are evaluated highest threshold first.
type Band struct {
	MinSimilarity float64
	Percentage    float64
	Grade         string
	Feedback      string
}

// Config carries the scorer's tunables. Zero-value fields fall back to
// the defaults.
type Config struct {
	Bands     []Band
	StopWords []string
}

// DefaultConfig returns the standard similarity bands and stop-word list.
func DefaultConfig() Config {
	return Config{
		Bands: []Band{
			{MinSimilarity: 0.85, Percentage: 100, Grade: "A+", Feedback: "Excellent! Your answer covers the key concepts completely."},
			{MinSimilarity: 0.65, Percentage: 85, Grade: "A", Feedback: "Great answer. Very close to the expected response."},
			{MinSimilarity: 0.45, Percentage: 70, Grade: "B", Feedback: "Good understanding. Minor details may be missing."},
			{MinSimilarity: 0.25, Percentage: 50, Grade: "C", Feedback: "Partial understanding. Important concepts are missing."},
			{MinSimilarity: 0.10, Percentage: 25, Grade: "D", Feedback: "Weak answer. Related but not accurate enough."},
		},
		StopWords: DefaultStopWords,
	}
}

// Scorer grades free-text answers. It holds no mutable state and is safe
// for concurrent use.
type Scorer struct {
	bands []Band
	stop  map[string]struct{}
}

func NewScorer(cfg Config) *Scorer {
	if len(cfg.Bands) == 0 {
		cfg.Bands = DefaultConfig().Bands
	}
	if cfg.StopWords == nil {
		cfg.StopWords = DefaultStopWords
	}
	stop := make(map[string]struct{}, len(cfg.StopWords))
	for _, w := range cfg.StopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &Scorer{bands: cfg.Bands, stop: stop}
}

// Grade compares a student answer against a reference answer. An empty
// student answer scores zero; an empty reference is ungradable and is
// reported distinctly (grade N/A) rather than as a zero score.
func (s *Scorer) Grade(studentAnswer, referenceAnswer string, maxPoints float64) Outcome {
	if strings.TrimSpace(studentAnswer) == "" {
		return Outcome{Grade: "F", Feedback: "No answer provided."}
	}
	if strings.TrimSpace(referenceAnswer) == "" {
		return Outcome{Grade: "N/A", Feedback: "No reference answer available for comparison."}
	}

	student := wordSet(studentAnswer)
	reference := wordSet(referenceAnswer)

	keywords := make(map[string]struct{}, len(reference))
	for w := range reference {
		if _, skip := s.stop[w]; !skip {
			keywords[w] = struct{}{}
		}
	}

	var similarity float64
	if len(keywords) > 0 {
		similarity = recall(student, keywords)
	} else {
		similarity = overlap(student, reference)
	}

	out := Outcome{
		Similarity: round4(similarity),
		Grade:      "F",
		Feedback:   "Answer does not match the expected response.",
	}
	for _, b := range s.bands {
		if similarity >= b.MinSimilarity {
			out.Percentage = b.Percentage
			out.Grade = b.Grade
			out.Feedback = b.Feedback
			break
		}
	}
	out.Score = round2(out.Percentage / 100 * maxPoints)
	return out
}

// BatchInput is one (student, reference, points) triple for BatchGrade.
type BatchInput struct {
	StudentAnswer   string  `json:"student_answer"`
	ReferenceAnswer string  `json:"reference_answer"`
	MaxPoints       float64 `json:"max_points"`
}

// BatchGrade grades each input independently, preserving input order.
func (s *Scorer) BatchGrade(inputs []BatchInput) []Outcome {
	out := make([]Outcome, len(inputs))
	for i, in := range inputs {
		out[i] = s.Grade(in.StudentAnswer, in.ReferenceAnswer, in.MaxPoints)
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
