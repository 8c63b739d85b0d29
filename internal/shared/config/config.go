package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"contract-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	Version         string
	CORSAllowOrigin []string
	LogLevel        string
	LogFormat       string

	AIProvider   string
	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string
	GroqBaseURL  string
	LLMTimeout   time.Duration

	ExtractCharBudget   int
	AnswerDocCharBudget int
	AuditCharBudget     int

	DatabaseURL     string
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	WebhookURL     string
	WebhookSecret  string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables with sensible defaults.
// An optional YAML file named by CONFIG_FILE supplies defaults that the
// environment overrides.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	file := fileValues{}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		loaded, err := loadYAML(path)
		if err != nil {
			telemetry.Warn("config.file_unreadable", map[string]any{"path": path, "error": err.Error()})
		} else {
			file = loaded
		}
	}
	get := func(key, def string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		if val, ok := file[key]; ok && val != "" {
			return val
		}
		return def
	}

	env := normalizeEnv(get("ENV", "dev"))
	dbURL := get("DATABASE_URL", "")
	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	return Config{
		Port:            get("PORT", "8080"),
		Env:             env,
		Version:         get("APP_VERSION", "1.0.0"),
		CORSAllowOrigin: splitAndTrim(get("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		LogLevel:        get("LOG_LEVEL", "info"),
		LogFormat:       get("LOG_FORMAT", "json"),

		AIProvider:   normalizeProvider(get("AI_PROVIDER", "gemini")),
		GeminiAPIKey: get("GEMINI_API_KEY", ""),
		GeminiModel:  get("GEMINI_MODEL", "gemini-2.5-flash"),
		GroqAPIKey:   get("GROQ_API_KEY", ""),
		GroqModel:    get("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GroqBaseURL:  get("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMTimeout:   time.Duration(atoiDefault(get("LLM_TIMEOUT_SECONDS", ""), 30)) * time.Second,

		ExtractCharBudget:   atoiDefault(get("EXTRACT_CHAR_BUDGET", ""), 8000),
		AnswerDocCharBudget: atoiDefault(get("ANSWER_DOC_CHAR_BUDGET", ""), 5000),
		AuditCharBudget:     atoiDefault(get("AUDIT_CHAR_BUDGET", ""), 8000),

		DatabaseURL:     dbURL,
		ObjectStoreType: normalizeStoreType(get("OBJECT_STORE", "local")),
		LocalStoreDir:   get("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       get("AWS_REGION", ""),
		S3Bucket:        get("S3_BUCKET", ""),
		S3Prefix:        get("S3_PREFIX", ""),
		SSEKMSKeyID:     get("SSE_KMS_KEY_ID", ""),

		WebhookURL:     get("WEBHOOK_URL", ""),
		WebhookSecret:  get("WEBHOOK_SECRET", ""),
		RateLimitRPS:   atofDefault(get("RATE_LIMIT_RPS", ""), 5),
		RateLimitBurst: atoiDefault(get("RATE_LIMIT_BURST", ""), 20),
	}
}

func atoiDefault(raw string, def int) int {
	if parsed, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && parsed > 0 {
		return parsed
	}
	return def
}

func atofDefault(raw string, def float64) float64 {
	if parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && parsed >= 0 {
		return parsed
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "groq":
		return "groq"
	default:
		return "gemini"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
