package exam

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutExam(e Exam) error {
	ij, err := json.Marshal(e.Items)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO exams (id,title,adaptive,total_questions,time_limit_sec,items_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, adaptive=EXCLUDED.adaptive,
			total_questions=EXCLUDED.total_questions, time_limit_sec=EXCLUDED.time_limit_sec,
			items_json=EXCLUDED.items_json`,
		e.ID, e.Title, e.Adaptive, e.TotalQuestions, e.TimeLimitSec, string(ij), time.Now().Unix())
	return err
}

func (s *SQLStore) GetExam(id string) (Exam, error) {
	e, err := s.GetExamFull(id)
	if err != nil {
		return Exam{}, err
	}
	return Sanitize(e), nil
}

func (s *SQLStore) GetExamFull(id string) (Exam, error) {
	row := s.db.QueryRow(`SELECT id,title,adaptive,total_questions,time_limit_sec,items_json,created_at FROM exams WHERE id=$1`, id)
	var e Exam
	var ijson string
	if err := row.Scan(&e.ID, &e.Title, &e.Adaptive, &e.TotalQuestions, &e.TimeLimitSec, &ijson, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrExamNotFound
		}
		return Exam{}, err
	}
	if err := json.Unmarshal([]byte(ijson), &e.Items); err != nil {
		return Exam{}, err
	}
	return e, nil
}

func (s *SQLStore) NewAttempt(examID, userID string) (Attempt, error) {
	var exist int
	if err := s.db.QueryRow(`SELECT 1 FROM exams WHERE id=$1`, examID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrExamNotFound
		}
		return Attempt{}, err
	}
	a := Attempt{
		ID:        uuid.NewString(),
		ExamID:    examID,
		UserID:    userID,
		Status:    StatusInProgress,
		Ability:   0.5,
		StartedAt: time.Now().Unix(),
	}
	answered, _ := json.Marshal([]string{})
	answers, _ := json.Marshal([]AnswerRecord{})
	_, err := s.db.Exec(`INSERT INTO attempts (id,exam_id,user_id,status,ability,answered_json,answers_json,current_json,score,started_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,'',0,$8)`,
		a.ID, a.ExamID, a.UserID, a.Status, a.Ability, string(answered), string(answers), a.StartedAt)
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) GetAttempt(id string) (Attempt, error) {
	row := s.db.QueryRow(`SELECT id,exam_id,user_id,status,ability,answered_json,answers_json,current_json,score,started_at,COALESCE(completed_at,0)
		FROM attempts WHERE id=$1`, id)
	var a Attempt
	var answered, answers, current string
	if err := row.Scan(&a.ID, &a.ExamID, &a.UserID, &a.Status, &a.Ability, &answered, &answers, &current, &a.Score, &a.StartedAt, &a.CompletedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrAttemptNotFound
		}
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(answered), &a.AnsweredIDs); err != nil {
		a.AnsweredIDs = nil
	}
	if err := json.Unmarshal([]byte(answers), &a.Answers); err != nil {
		a.Answers = nil
	}
	if current != "" {
		var it Item
		if err := json.Unmarshal([]byte(current), &it); err == nil {
			a.Current = &it
		}
	}
	return a, nil
}

func (s *SQLStore) SaveAttempt(a Attempt) error {
	answered, err := json.Marshal(a.AnsweredIDs)
	if err != nil {
		return err
	}
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	current := ""
	if a.Current != nil {
		buf, err := json.Marshal(a.Current)
		if err != nil {
			return err
		}
		current = string(buf)
	}
	var completed interface{}
	if a.CompletedAt != 0 {
		completed = a.CompletedAt
	}
	res, err := s.db.Exec(`UPDATE attempts SET status=$1, ability=$2, answered_json=$3, answers_json=$4,
		current_json=$5, score=$6, completed_at=$7 WHERE id=$8`,
		a.Status, a.Ability, string(answered), string(answers), current, a.Score, completed, a.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAttemptNotFound
	}
	return nil
}
