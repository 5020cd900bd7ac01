package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/examforge/examforge/internal/adaptive"
	api "github.com/examforge/examforge/internal/api/http"
	auth "github.com/examforge/examforge/internal/auth/middleware"
	"github.com/examforge/examforge/internal/config"
	"github.com/examforge/examforge/internal/db"
	"github.com/examforge/examforge/internal/exam"
	"github.com/examforge/examforge/internal/grading"
	"github.com/examforge/examforge/internal/grading/ocr"
	"github.com/examforge/examforge/internal/grading/remote"
	"github.com/examforge/examforge/internal/session"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := exam.NewSQLStore(dbh, cfg.DBDriver)

	// --- Engine ---
	estimator := adaptive.NewEstimator(cfg.LearningRate)
	scorer := grading.NewScorer(grading.DefaultConfig())

	opts := []session.Option{}
	if cfg.RemoteGraderAPIKey != "" {
		rg, err := remote.New(remote.Config{
			APIKey:  cfg.RemoteGraderAPIKey,
			BaseURL: cfg.RemoteGraderBaseURL,
			Model:   cfg.RemoteGraderModel,
		})
		if err != nil {
			log.Fatalf("remote grader: %v", err)
		}
		opts = append(opts, session.WithRemoteGrader(rg))
		log.Printf("remote semantic grading enabled (model %s)", cfg.RemoteGraderModel)
	}
	if cfg.EnableOCR {
		t := ocr.NewTesseract()
		t.Lang = cfg.OCRLang
		opts = append(opts, session.WithExtractor(t))
	}
	ctrl := session.New(store, estimator, scorer, opts...)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, cfg.AdminUser, cfg.AdminPassHash))

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Teacher-only
		pr.With(auth.RequireRole("teacher")).
			Post("/exams", api.UploadExamHandler(store))
		pr.With(auth.RequireRole("teacher")).
			Post("/grading/batch", api.BatchGradeHandler(scorer))

		// Student/Teacher
		pr.Get("/exams/{examID}", api.GetExamHandler(store))
		pr.Post("/attempts", api.StartAttemptHandler(ctrl))
		pr.Post("/attempts/{attemptID}/answer", api.AnswerHandler(ctrl))
		pr.Post("/attempts/{attemptID}/finish", api.FinishAttemptHandler(ctrl))
		pr.Get("/attempts/{attemptID}", api.GetAttemptHandler(store))
	})

	log.Printf("gateway listening on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatalf("server: %v", err)
	}
}
