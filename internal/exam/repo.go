package exam

import "errors"

var (
	ErrExamNotFound    = errors.New("exam not found")
	ErrAttemptNotFound = errors.New("attempt not found")
)

// Store supplies item pools and durably records attempt state. The
// session controller calls SaveAttempt after every state transition.
type Store interface {
	PutExam(e Exam) error
	GetExam(id string) (Exam, error)     // student-safe (answer content stripped)
	GetExamFull(id string) (Exam, error) // with answer content, for grading
	NewAttempt(examID, userID string) (Attempt, error)
	GetAttempt(id string) (Attempt, error)
	SaveAttempt(a Attempt) error
}

// Sanitize strips answer content from an exam so it can be served to a
// test-taker mid-attempt.
func Sanitize(e Exam) Exam {
	items := make([]Item, len(e.Items))
	copy(items, e.Items)
	for i := range items {
		items[i] = SanitizeItem(items[i])
	}
	e.Items = items
	return e
}

// SanitizeItem clears correct/reference answers and variants from an item.
func SanitizeItem(it Item) Item {
	it.CorrectAnswer = ""
	it.ReferenceAnswer = ""
	it.Variants = nil
	return it
}
