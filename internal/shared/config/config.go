package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultMaxUploadBytes     = 5 << 20
	defaultContentSampleChars = 500
	defaultWorkerConcurrency  = 4
	defaultWorkerQueueSize    = 64
	defaultShutdownTimeout    = 30 * time.Second
)

// Config holds application configuration. It is built once at startup and
// passed by value.
type Config struct {
	Port            string
	Env             string
	DatabaseURL     string
	APIPrefix       string
	CORSAllowOrigin []string
	Upload          UploadConfig
	Analysis        AnalysisConfig
	Worker          WorkerConfig
}

// UploadConfig bounds what the upload endpoint accepts.
type UploadConfig struct {
	MaxBytes          int64
	AllowedExtensions []string
}

// AnalysisConfig tunes the analysis pipeline.
type AnalysisConfig struct {
	ContentSampleChars int
	SkillsCatalogPath  string
	SkillsPolicy       string
}

// WorkerConfig sizes the background executor.
type WorkerConfig struct {
	Concurrency     int
	QueueSize       int
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		DatabaseURL:     dbURL,
		APIPrefix:       normalizePrefix(getEnv("API_PREFIX", "/api/v1")),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		Upload: UploadConfig{
			MaxBytes:          int64(getEnvInt("UPLOAD_MAX_BYTES", defaultMaxUploadBytes)),
			AllowedExtensions: normalizeExtensions(splitAndTrim(getEnv("UPLOAD_ALLOWED_EXTENSIONS", ".pdf,.docx"))),
		},
		Analysis: AnalysisConfig{
			ContentSampleChars: getEnvInt("CONTENT_SAMPLE_CHARS", defaultContentSampleChars),
			SkillsCatalogPath:  getEnv("SKILLS_CATALOG_PATH", ""),
			SkillsPolicy:       getEnv("SKILLS_POLICY", ""),
		},
		Worker: WorkerConfig{
			Concurrency:     getEnvInt("WORKER_CONCURRENCY", defaultWorkerConcurrency),
			QueueSize:       getEnvInt("WORKER_QUEUE_SIZE", defaultWorkerQueueSize),
			ShutdownTimeout: time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", int(defaultShutdownTimeout/time.Second))) * time.Second,
		},
	}
}

// Defaults returns a dev configuration without consulting the environment.
func Defaults() Config {
	return Config{
		Port:      "8080",
		Env:       "dev",
		APIPrefix: "/api/v1",
		Upload: UploadConfig{
			MaxBytes:          defaultMaxUploadBytes,
			AllowedExtensions: []string{".pdf", ".docx"},
		},
		Analysis: AnalysisConfig{
			ContentSampleChars: defaultContentSampleChars,
		},
		Worker: WorkerConfig{
			Concurrency:     defaultWorkerConcurrency,
			QueueSize:       defaultWorkerQueueSize,
			ShutdownTimeout: defaultShutdownTimeout,
		},
	}
}

// IsDevLike reports whether the environment tolerates in-memory fallbacks.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		log.Printf("config: %s invalid value %q, using %d", key, raw, def)
		return def
	}
	return val
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

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

func normalizePrefix(raw string) string {
	p := strings.TrimSpace(raw)
	if p == "" || p == "/" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}
