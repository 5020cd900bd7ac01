package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/examforge/examforge/internal/exam"
)

// POST /exams
func UploadExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var e exam.Exam
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := validateExam(e); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := store.PutExam(e); err != nil {
			http.Error(w, "save exam: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": e.ID})
	}
}

// GET /exams/{examID} (student-safe: answer content stripped)
func GetExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "examID"))
		if id == "" {
			http.Error(w, "examID required", http.StatusBadRequest)
			return
		}
		e, err := store.GetExam(id)
		if err != nil {
			if errors.Is(err, exam.ErrExamNotFound) {
				http.Error(w, "exam not found", http.StatusNotFound)
				return
			}
			http.Error(w, "get exam: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(e)
	}
}

func validateExam(e exam.Exam) error {
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("exam id required")
	}
	if len(e.Items) == 0 {
		return errors.New("exam has no items")
	}
	seen := map[string]struct{}{}
	for _, it := range e.Items {
		if it.ID == "" {
			return errors.New("item id required")
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("duplicate item id %s", it.ID)
		}
		seen[it.ID] = struct{}{}
		if it.Difficulty < 0 || it.Difficulty > 1 {
			return fmt.Errorf("item %s: difficulty must be in [0,1]", it.ID)
		}
		if it.Points <= 0 {
			return fmt.Errorf("item %s: points must be positive", it.ID)
		}
		switch it.Type {
		case exam.TypeChoice:
			if it.CorrectAnswer == "" {
				return fmt.Errorf("item %s: choice item needs correct_answer", it.ID)
			}
		case exam.TypeFreeText:
		default:
			return fmt.Errorf("item %s: unknown type %q", it.ID, it.Type)
		}
		for _, v := range it.Variants {
			if v.Difficulty < 0 || v.Difficulty > 1 {
				return fmt.Errorf("item %s: variant difficulty must be in [0,1]", it.ID)
			}
		}
	}
	return nil
}
