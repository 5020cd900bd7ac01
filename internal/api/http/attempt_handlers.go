package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/examforge/examforge/internal/auth/middleware"
	"github.com/examforge/examforge/internal/exam"
	"github.com/examforge/examforge/internal/session"
)

// POST /attempts  { "exam_id": "..." }
func StartAttemptHandler(ctrl *session.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ExamID string `json:"exam_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		userID := authmw.SubjectFromContext(r.Context())
		res, err := ctrl.Start(r.Context(), req.ExamID, userID)
		if err != nil {
			if errors.Is(err, exam.ErrExamNotFound) {
				http.Error(w, "exam not found", http.StatusNotFound)
				return
			}
			http.Error(w, "start attempt: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}

// POST /attempts/{attemptID}/answer
// { "item_id": "...", "response": "...", "image": "<base64, optional>" }
func AnswerHandler(ctrl *session.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := strings.TrimSpace(chi.URLParam(r, "attemptID"))
		if attemptID == "" {
			http.Error(w, "attemptID required", http.StatusBadRequest)
			return
		}
		var req struct {
			ItemID   string `json:"item_id"`
			Response string `json:"response"`
			Image    string `json:"image,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		in := session.AnswerInput{ItemID: req.ItemID, Response: req.Response}
		if req.Image != "" {
			img, err := base64.StdEncoding.DecodeString(req.Image)
			if err != nil {
				http.Error(w, "bad image encoding", http.StatusBadRequest)
				return
			}
			in.Image = img
		}
		res, err := ctrl.Answer(r.Context(), attemptID, in)
		if err != nil {
			switch {
			case errors.Is(err, exam.ErrAttemptNotFound):
				http.Error(w, "attempt not found", http.StatusNotFound)
			case errors.Is(err, session.ErrAttemptComplete):
				http.Error(w, "attempt already complete", http.StatusConflict)
			case errors.Is(err, session.ErrWrongItem):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "answer: "+err.Error(), http.StatusInternalServerError)
			}
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}

// POST /attempts/{attemptID}/finish
func FinishAttemptHandler(ctrl *session.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := strings.TrimSpace(chi.URLParam(r, "attemptID"))
		if attemptID == "" {
			http.Error(w, "attemptID required", http.StatusBadRequest)
			return
		}
		summary, err := ctrl.Finish(r.Context(), attemptID)
		if err != nil {
			if errors.Is(err, exam.ErrAttemptNotFound) {
				http.Error(w, "attempt not found", http.StatusNotFound)
				return
			}
			http.Error(w, "finish: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(summary)
	}
}

// GET /attempts/{attemptID}
func GetAttemptHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := strings.TrimSpace(chi.URLParam(r, "attemptID"))
		if attemptID == "" {
			http.Error(w, "attemptID required", http.StatusBadRequest)
			return
		}
		a, err := store.GetAttempt(attemptID)
		if err != nil {
			if errors.Is(err, exam.ErrAttemptNotFound) {
				http.Error(w, "attempt not found", http.StatusNotFound)
				return
			}
			http.Error(w, "get attempt: "+err.Error(), http.StatusInternalServerError)
			return
		}
		// students only see their own attempts
		sub := authmw.SubjectFromContext(r.Context())
		role := authmw.RoleFromContext(r.Context())
		if role == "student" && a.UserID != sub {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if a.Current != nil {
			cur := exam.SanitizeItem(*a.Current)
			a.Current = &cur
		}
		_ = json.NewEncoder(w).Encode(a)
	}
}
