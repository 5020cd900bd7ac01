package exam

// Item types. Choice items carry Options plus CorrectAnswer; free-text
// items carry ReferenceAnswer.
const (
	TypeChoice   = "choice"
	TypeFreeText = "free_text"
)

// Attempt statuses.
const (
	StatusInProgress = "in_progress"
	StatusComplete   = "complete"
)

// Variant is an alternate rendering of an item at a different difficulty.
// The selector may substitute a variant's content for the base item's when
// the variant sits closer to the test-taker's ability.
type Variant struct {
	Text            string  `json:"text"`
	Difficulty      float64 `json:"difficulty"`
	CorrectAnswer   string  `json:"correct_answer,omitempty"`
	ReferenceAnswer string  `json:"reference_answer,omitempty"`
}

type Item struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"` // choice|free_text
	Text       string  `json:"text"`
	Difficulty float64 `json:"difficulty"` // 0..1
	Points     float64 `json:"points"`

	Options         map[string]string `json:"options,omitempty"` // option key -> label
	CorrectAnswer   string            `json:"correct_answer,omitempty"`
	ReferenceAnswer string            `json:"reference_answer,omitempty"`

	Variants []Variant `json:"variants,omitempty"`
}

type Exam struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Adaptive       bool   `json:"adaptive"`
	TotalQuestions int    `json:"total_questions"` // cap for adaptive delivery; 0 means whole pool
	TimeLimitSec   int    `json:"time_limit_sec"`
	Items          []Item `json:"items"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

// AnswerRecord is one graded answer, as persisted on the attempt.
type AnswerRecord struct {
	ItemID     string  `json:"item_id"`
	Response   string  `json:"response"`
	Correct    bool    `json:"correct"`
	Score      float64 `json:"score"`
	MaxPoints  float64 `json:"max_points"`
	Difficulty float64 `json:"difficulty"`
	Feedback   string  `json:"feedback"`
}

// Attempt is one test-taker's pass through an exam. Ability and the
// answered set are owned by the session controller; the store just
// records them after every transition.
type Attempt struct {
	ID          string         `json:"id"`
	ExamID      string         `json:"exam_id"`
	UserID      string         `json:"user_id"`
	Status      string         `json:"status"` // in_progress|complete
	Ability     float64        `json:"ability"`
	AnsweredIDs []string       `json:"answered_ids"`
	Answers     []AnswerRecord `json:"answers"`
	Current     *Item          `json:"current,omitempty"` // item as presented (variant content applied)
	Score       float64        `json:"score"`
	StartedAt   int64          `json:"started_at"`
	CompletedAt int64          `json:"completed_at,omitempty"`
}

// Answered reports whether the item id has already been presented.
func (a *Attempt) Answered(itemID string) bool {
	for _, id := range a.AnsweredIDs {
		if id == itemID {
			return true
		}
	}
	return false
}
