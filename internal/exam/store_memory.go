package exam

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu       sync.RWMutex
	exams    map[string]Exam
	attempts map[string]Attempt
}

// NewInMemoryStore returns a Store backed by process memory, for offline
// use and tests.
func NewInMemoryStore() Store {
	return &memoryStore{
		exams:    map[string]Exam{},
		attempts: map[string]Attempt{},
	}
}

func (m *memoryStore) PutExam(e Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	m.exams[e.ID] = e
	return nil
}

func (m *memoryStore) GetExam(id string) (Exam, error) {
	e, err := m.GetExamFull(id)
	if err != nil {
		return Exam{}, err
	}
	return Sanitize(e), nil
}

func (m *memoryStore) GetExamFull(id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, ErrExamNotFound
	}
	return e, nil
}

func (m *memoryStore) NewAttempt(examID, userID string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exams[examID]; !ok {
		return Attempt{}, ErrExamNotFound
	}
	a := Attempt{
		ID:        uuid.NewString(),
		ExamID:    examID,
		UserID:    userID,
		Status:    StatusInProgress,
		Ability:   0.5,
		StartedAt: time.Now().Unix(),
	}
	m.attempts[a.ID] = a
	return a, nil
}

func (m *memoryStore) GetAttempt(id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return a, nil
}

func (m *memoryStore) SaveAttempt(a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attempts[a.ID]; !ok {
		return ErrAttemptNotFound
	}
	m.attempts[a.ID] = a
	return nil
}
