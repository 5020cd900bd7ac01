package session

import (
	"math"

	"github.com/examforge/examforge/internal/exam"
)

// Summary aggregates every graded answer of a finished attempt. It is
// computed once at finish time and never mutated afterward.
type Summary struct {
	TotalScore        float64 `json:"total_score"`
	MaxScore          float64 `json:"max_score"`
	Percentage        float64 `json:"percentage"`
	QuestionsAnswered int     `json:"questions_answered"`
	CorrectCount      int     `json:"correct_count"`
	Grade             string  `json:"grade"`
}

// Summarize folds the attempt's answer records into a Summary.
func Summarize(answers []exam.AnswerRecord) Summary {
	s := Summary{QuestionsAnswered: len(answers)}
	for _, a := range answers {
		s.TotalScore += a.Score
		s.MaxScore += a.MaxPoints
		if a.Correct {
			s.CorrectCount++
		}
	}
	if s.MaxScore > 0 {
		s.Percentage = round2(s.TotalScore / s.MaxScore * 100)
	}
	s.TotalScore = round2(s.TotalScore)
	s.MaxScore = round2(s.MaxScore)
	s.Grade = LetterGrade(s.Percentage)
	return s
}

// LetterGrade maps an overall percentage to a letter grade.
func LetterGrade(percentage float64) string {
	switch {
	case percentage >= 90:
		return "A+"
	case percentage >= 80:
		return "A"
	case percentage >= 70:
		return "B"
	case percentage >= 60:
		return "C"
	case percentage >= 50:
		return "D"
	default:
		return "F"
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
