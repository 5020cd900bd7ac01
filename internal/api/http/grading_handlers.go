package http

import (
	"encoding/json"
	"net/http"

	"github.com/examforge/examforge/internal/grading"
)

// POST /grading/batch
// Teacher tool for rescoring a set of free-text answers outside any
// attempt. Results come back in input order.
func BatchGradeHandler(scorer *grading.Scorer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answers []grading.BatchInput `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(scorer.BatchGrade(req.Answers))
	}
}
