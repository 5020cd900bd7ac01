package grading

import "testing"

func TestGrade(t *testing.T) {
	s := NewScorer(DefaultConfig())

	tests := []struct {
		name       string
		student    string
		reference  string
		maxPoints  float64
		score      float64
		percentage float64
		similarity float64
		grade      string
	}{
		{
			name:      "empty student answer",
			student:   "   ",
			reference: "cat sat mat",
			maxPoints: 10,
			grade:     "F",
		},
		{
			name:      "full keyword recall",
			student:   "the cat sat on the mat",
			reference: "cat sat mat",
			maxPoints: 10, score: 10, percentage: 100, similarity: 1, grade: "A+",
		},
		{
			name:      "partial recall lands in C band",
			student:   "something about a cat",
			reference: "cat sat mat",
			maxPoints: 10, score: 5, percentage: 50, similarity: 0.3333, grade: "C",
		},
		{
			name:      "weak recall lands in D band",
			student:   "photosynthesis",
			reference: "photosynthesis converts light energy into chemical energy inside chloroplasts stroma thylakoid",
			maxPoints: 4, score: 1, percentage: 25, similarity: 0.1111, grade: "D",
		},
		{
			name:      "no recall",
			student:   "completely unrelated words",
			reference: "cat sat mat",
			maxPoints: 10, grade: "F",
		},
		{
			name:      "stop-word-only reference falls back to overlap",
			student:   "it is",
			reference: "is",
			maxPoints: 10, score: 7, percentage: 70, similarity: 0.5, grade: "B",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Grade(tc.student, tc.reference, tc.maxPoints)
			if got.Score != tc.score {
				t.Errorf("score = %v, want %v", got.Score, tc.score)
			}
			if got.Percentage != tc.percentage {
				t.Errorf("percentage = %v, want %v", got.Percentage, tc.percentage)
			}
			if got.Similarity != tc.similarity {
				t.Errorf("similarity = %v, want %v", got.Similarity, tc.similarity)
			}
			if got.Grade != tc.grade {
				t.Errorf("grade = %q, want %q", got.Grade, tc.grade)
			}
			if got.Feedback == "" {
				t.Error("feedback must never be empty")
			}
		})
	}
}

func TestGrade_NoReferenceIsDistinctFromZeroScore(t *testing.T) {
	s := NewScorer(DefaultConfig())

	noRef := s.Grade("cat dog", "", 10)
	if noRef.Score != 0 || noRef.Percentage != 0 {
		t.Fatalf("ungradable answer must not earn points: %+v", noRef)
	}
	if noRef.Grade != "N/A" {
		t.Fatalf("grade = %q, want N/A", noRef.Grade)
	}

	empty := s.Grade("", "cat sat mat", 10)
	if empty.Grade == noRef.Grade || empty.Feedback == noRef.Feedback {
		t.Fatalf("empty-answer and no-reference outcomes must be distinguishable: %+v vs %+v", empty, noRef)
	}
}

func TestGrade_ScoreRounding(t *testing.T) {
	s := NewScorer(DefaultConfig())

	// C band (50%) of 0.33 points = 0.165, rounded to 2 decimals.
	got := s.Grade("cat", "cat sat mat", 0.33)
	if got.Score != 0.17 {
		t.Fatalf("score = %v, want 0.17", got.Score)
	}
}

func TestGrade_CustomBands(t *testing.T) {
	s := NewScorer(Config{
		Bands: []Band{{MinSimilarity: 0.5, Percentage: 100, Grade: "P", Feedback: "pass"}},
	})
	got := s.Grade("cat sat mat", "cat sat mat", 1)
	if got.Grade != "P" || got.Percentage != 100 {
		t.Fatalf("custom bands not applied: %+v", got)
	}
	got = s.Grade("cat", "cat sat mat", 1)
	if got.Percentage != 0 || got.Grade != "F" {
		t.Fatalf("below all bands must score zero: %+v", got)
	}
}

func TestBatchGrade_PreservesOrder(t *testing.T) {
	s := NewScorer(DefaultConfig())

	got := s.BatchGrade([]BatchInput{
		{StudentAnswer: "cat sat mat", ReferenceAnswer: "cat sat mat", MaxPoints: 10},
		{StudentAnswer: "", ReferenceAnswer: "cat sat mat", MaxPoints: 10},
		{StudentAnswer: "cat", ReferenceAnswer: "", MaxPoints: 10},
	})
	if len(got) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(got))
	}
	if got[0].Score != 10 {
		t.Errorf("outcome 0: score = %v, want 10", got[0].Score)
	}
	if got[1].Score != 0 || got[1].Grade != "F" {
		t.Errorf("outcome 1: %+v, want empty-answer zero", got[1])
	}
	if got[2].Grade != "N/A" {
		t.Errorf("outcome 2: grade = %q, want N/A", got[2].Grade)
	}
}

func TestWordSet(t *testing.T) {
	got := wordSet("The cat, sat on the MAT!")
	want := []string{"the", "cat", "sat", "on", "mat"}
	if len(got) != len(want) {
		t.Fatalf("wordSet size = %d, want %d (%v)", len(got), len(want), got)
	}
	for _, w := range want {
		if _, ok := got[w]; !ok {
			t.Errorf("missing word %q", w)
		}
	}
}
