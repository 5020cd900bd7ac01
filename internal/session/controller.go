// Package session drives one exam attempt end-to-end: start, present,
// grade, re-estimate ability, select next, finish. It composes the
// adaptive engine and the grading pipeline over an exam.Store.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/examforge/examforge/internal/adaptive"
	"github.com/examforge/examforge/internal/exam"
	"github.com/examforge/examforge/internal/grading"
	"github.com/examforge/examforge/internal/grading/ocr"
)

var (
	// ErrAttemptComplete is returned when answering or re-finishing a
	// completed attempt. Complete is terminal.
	ErrAttemptComplete = errors.New("attempt already complete")

	// ErrWrongItem is returned when the submitted item id does not match
	// the item currently presented. This is a caller contract violation.
	ErrWrongItem = errors.New("answer does not match the presented item")
)

// SemanticGrader is an optional remote backend substituted for the local
// scorer on free-text items. Any error from it triggers the local
// fallback; it is never surfaced to the test-taker.
type SemanticGrader interface {
	Grade(ctx context.Context, studentAnswer, referenceAnswer string, maxPoints float64) (grading.Outcome, error)
}

// Controller owns attempt state transitions. Submissions for the same
// attempt are serialized with a per-attempt lock; different attempts
// proceed in parallel.
type Controller struct {
	store     exam.Store
	estimator adaptive.Estimator
	scorer    *grading.Scorer
	remote    SemanticGrader
	extractor ocr.Extractor

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(*Controller)

// WithRemoteGrader routes free-text grading through a remote backend,
// with unconditional fallback to the local scorer on failure.
func WithRemoteGrader(g SemanticGrader) Option {
	return func(c *Controller) { c.remote = g }
}

// WithExtractor enables handwritten-image answers.
func WithExtractor(e ocr.Extractor) Option {
	return func(c *Controller) { c.extractor = e }
}

func New(store exam.Store, estimator adaptive.Estimator, scorer *grading.Scorer, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		estimator: estimator,
		scorer:    scorer,
		locks:     map[string]*sync.Mutex{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) lockAttempt(id string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.locks[id]
	if !ok {
		m = &sync.Mutex{}
		c.locks[id] = m
	}
	return m
}

// StartResult is the initial state of a new attempt.
type StartResult struct {
	Attempt        exam.Attempt `json:"attempt"`
	FirstItem      *exam.Item   `json:"first_item,omitempty"` // answer content stripped
	TotalQuestions int          `json:"total_questions"`
}

// Start creates an attempt with ability 0.5 and an empty answered set,
// then presents the first item: selector-chosen if the exam is adaptive,
// lowest item id if sequential.
func (c *Controller) Start(ctx context.Context, examID, userID string) (StartResult, error) {
	ex, err := c.store.GetExamFull(examID)
	if err != nil {
		return StartResult{}, err
	}
	a, err := c.store.NewAttempt(examID, userID)
	if err != nil {
		return StartResult{}, err
	}
	a.Ability = adaptive.InitialAbility

	var first *exam.Item
	if ex.Adaptive {
		first = adaptive.SelectNext(ex.Items, a.Ability, nil)
	} else {
		first = firstByID(ex.Items)
	}
	if first == nil {
		a.Status = exam.StatusComplete
		a.CompletedAt = time.Now().Unix()
	}
	a.Current = first
	if err := c.store.SaveAttempt(a); err != nil {
		return StartResult{}, err
	}

	res := StartResult{Attempt: a, TotalQuestions: totalQuestions(ex)}
	if first != nil {
		pres := exam.SanitizeItem(*first)
		res.FirstItem = &pres
	}
	return res, nil
}

// AnswerInput is one submitted answer. Image, when present, is routed
// through the handwriting extractor before grading.
type AnswerInput struct {
	ItemID   string
	Response string
	Image    []byte
}

// AnswerResult reports the grading outcome and the advanced state.
type AnswerResult struct {
	Outcome           grading.Outcome `json:"outcome"`
	ExtractedText     string          `json:"extracted_text,omitempty"`
	NeedsManualReview bool            `json:"needs_manual_review,omitempty"`
	Ability           float64         `json:"ability"`
	NextItem          *exam.Item      `json:"next_item,omitempty"` // answer content stripped
	Complete          bool            `json:"complete"`
}

// Answer grades a submission against the currently presented item,
// updates the ability estimate (adaptive exams) and selects the next
// item. When extraction of a handwritten image fails the submission is
// surfaced for manual review and the attempt does not advance.
func (c *Controller) Answer(ctx context.Context, attemptID string, in AnswerInput) (AnswerResult, error) {
	lock := c.lockAttempt(attemptID)
	lock.Lock()
	defer lock.Unlock()

	a, err := c.store.GetAttempt(attemptID)
	if err != nil {
		return AnswerResult{}, err
	}
	if a.Status == exam.StatusComplete {
		return AnswerResult{}, ErrAttemptComplete
	}
	if a.Current == nil {
		return AnswerResult{}, fmt.Errorf("attempt %s has no presented item", attemptID)
	}
	item := *a.Current
	if in.ItemID != "" && in.ItemID != item.ID {
		return AnswerResult{}, fmt.Errorf("%w: got %s, presented %s", ErrWrongItem, in.ItemID, item.ID)
	}

	response := in.Response
	extracted := ""
	if len(in.Image) > 0 {
		text, ok := c.extractImage(ctx, in.Image)
		if !ok {
			return AnswerResult{
				Outcome:           grading.Outcome{Feedback: "Could not process handwritten image."},
				NeedsManualReview: true,
				Ability:           a.Ability,
			}, nil
		}
		response = text
		extracted = text
	}

	out := c.gradeItem(ctx, item, response)

	a.AnsweredIDs = append(a.AnsweredIDs, item.ID)
	a.Answers = append(a.Answers, exam.AnswerRecord{
		ItemID:     item.ID,
		Response:   response,
		Correct:    out.Correct,
		Score:      out.Score,
		MaxPoints:  item.Points,
		Difficulty: item.Difficulty,
		Feedback:   out.Feedback,
	})

	ex, err := c.store.GetExamFull(a.ExamID)
	if err != nil {
		return AnswerResult{}, err
	}
	next := c.advance(&a, ex, item, out.Correct)
	if next == nil {
		a.Status = exam.StatusComplete
		a.CompletedAt = time.Now().Unix()
	}
	a.Current = next
	if err := c.store.SaveAttempt(a); err != nil {
		return AnswerResult{}, err
	}

	res := AnswerResult{
		Outcome:       out,
		ExtractedText: extracted,
		Ability:       a.Ability,
		Complete:      a.Status == exam.StatusComplete,
	}
	if next != nil {
		pres := exam.SanitizeItem(*next)
		res.NextItem = &pres
	}
	return res, nil
}

// Finish aggregates all graded answers into a Summary and marks the
// attempt complete. Finishing an already-complete attempt recomputes the
// summary without mutating anything.
func (c *Controller) Finish(ctx context.Context, attemptID string) (Summary, error) {
	lock := c.lockAttempt(attemptID)
	lock.Lock()
	defer lock.Unlock()

	a, err := c.store.GetAttempt(attemptID)
	if err != nil {
		return Summary{}, err
	}
	summary := Summarize(a.Answers)
	if a.Status != exam.StatusComplete {
		a.Status = exam.StatusComplete
		a.CompletedAt = time.Now().Unix()
		a.Current = nil
		a.Score = summary.TotalScore
		if err := c.store.SaveAttempt(a); err != nil {
			return Summary{}, err
		}
	}
	return summary, nil
}

// gradeItem applies the controller's grading policy: choice items by
// case-insensitive trimmed key match, free-text through the remote
// backend when configured (falling back locally) or the local scorer.
func (c *Controller) gradeItem(ctx context.Context, item exam.Item, response string) grading.Outcome {
	if item.Type == exam.TypeChoice {
		return gradeChoice(item, response)
	}
	if c.remote != nil && strings.TrimSpace(response) != "" && strings.TrimSpace(item.ReferenceAnswer) != "" {
		out, err := c.remote.Grade(ctx, response, item.ReferenceAnswer, item.Points)
		if err == nil {
			out.Correct = out.Percentage >= 50
			return out
		}
		log.Printf("session: remote grading failed, using local scorer: %v", err)
	}
	out := c.scorer.Grade(response, item.ReferenceAnswer, item.Points)
	out.Correct = out.Percentage >= 50
	return out
}

func gradeChoice(item exam.Item, response string) grading.Outcome {
	correct := strings.EqualFold(strings.TrimSpace(response), strings.TrimSpace(item.CorrectAnswer))
	out := grading.Outcome{Correct: correct}
	if correct {
		out.Score = item.Points
		out.Percentage = 100
		out.Feedback = "Correct!"
	} else {
		out.Feedback = fmt.Sprintf("Incorrect. The correct answer was %s.", strings.ToUpper(strings.TrimSpace(item.CorrectAnswer)))
	}
	return out
}

// advance picks the next item, or nil when the attempt is done. Adaptive
// exams re-estimate ability first and honor the total-question cap;
// sequential exams walk the pool in item-id order.
func (c *Controller) advance(a *exam.Attempt, ex exam.Exam, answered exam.Item, correct bool) *exam.Item {
	if ex.Adaptive {
		a.Ability = c.estimator.Update(a.Ability, answered.Difficulty, correct)
		if len(a.AnsweredIDs) >= totalQuestions(ex) {
			return nil
		}
		return adaptive.SelectNext(ex.Items, a.Ability, a.AnsweredIDs)
	}
	return nextByID(ex.Items, answered.ID)
}

func (c *Controller) extractImage(ctx context.Context, image []byte) (string, bool) {
	if c.extractor == nil {
		log.Printf("session: handwritten answer received but no extractor configured")
		return "", false
	}
	res, err := c.extractor.Extract(ctx, bytes.NewReader(image))
	if err != nil {
		log.Printf("session: image extraction failed: %v", err)
		return "", false
	}
	if res.NeedsReview {
		return "", false
	}
	return res.Text, true
}

func totalQuestions(ex exam.Exam) int {
	if ex.TotalQuestions > 0 && ex.TotalQuestions < len(ex.Items) {
		return ex.TotalQuestions
	}
	return len(ex.Items)
}

func firstByID(items []exam.Item) *exam.Item {
	if len(items) == 0 {
		return nil
	}
	sorted := make([]exam.Item, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	it := sorted[0]
	return &it
}

func nextByID(items []exam.Item, afterID string) *exam.Item {
	sorted := make([]exam.Item, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for i, it := range sorted {
		if it.ID == afterID && i+1 < len(sorted) {
			next := sorted[i+1]
			return &next
		}
	}
	return nil
}
