package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	AuthSecret    string
	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOrigins []string

	// Adaptive engine
	LearningRate float64

	// Remote semantic grading backend (optional). Empty API key disables
	// it; grading then always uses the local scorer.
	RemoteGraderAPIKey  string
	RemoteGraderBaseURL string
	RemoteGraderModel   string

	// Handwriting extraction
	EnableOCR bool
	OCRLang   string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:      addr,
		DBDriver:      envOr("DB_DRIVER", "sqlite"),
		DBDSN:         envOr("DB_DSN", ""),
		AuthSecret:    envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminUser:     envOr("ADMIN_USER", "admin"),
		AdminPassHash: envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		CORSOrigins:   csvOr("CORS_ORIGINS", "http://localhost:3000"),

		LearningRate: envFloat("ADAPTIVE_LEARNING_RATE", 0.1),

		RemoteGraderAPIKey:  os.Getenv("REMOTE_GRADER_API_KEY"),
		RemoteGraderBaseURL: envOr("REMOTE_GRADER_BASE_URL", "https://integrate.api.nvidia.com/v1"),
		RemoteGraderModel:   envOr("REMOTE_GRADER_MODEL", "meta/llama-3.1-70b-instruct"),

		EnableOCR: envBool("ENABLE_OCR", false),
		OCRLang:   envOr("OCR_LANG", "eng"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envFloat(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
