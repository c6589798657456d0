package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"PORT", "ENV", "DATABASE_URL", "API_PREFIX", "UPLOAD_MAX_BYTES", "UPLOAD_ALLOWED_EXTENSIONS", "WORKER_CONCURRENCY"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Port)
	}
	if cfg.Env != "dev" {
		t.Fatalf("expected dev env, got %q", cfg.Env)
	}
	if cfg.APIPrefix != "/api/v1" {
		t.Fatalf("expected /api/v1 prefix, got %q", cfg.APIPrefix)
	}
	if cfg.Upload.MaxBytes != 5<<20 {
		t.Fatalf("expected 5MiB ceiling, got %d", cfg.Upload.MaxBytes)
	}
	if len(cfg.Upload.AllowedExtensions) != 2 || cfg.Upload.AllowedExtensions[0] != ".pdf" || cfg.Upload.AllowedExtensions[1] != ".docx" {
		t.Fatalf("unexpected allowed extensions: %v", cfg.Upload.AllowedExtensions)
	}
	if cfg.Analysis.ContentSampleChars != 500 {
		t.Fatalf("expected sample of 500 chars, got %d", cfg.Analysis.ContentSampleChars)
	}
	if cfg.Worker.ShutdownTimeout != 30*time.Second {
		t.Fatalf("expected 30s shutdown timeout, got %s", cfg.Worker.ShutdownTimeout)
	}
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV", "prod")
	t.Setenv("API_PREFIX", "v2/")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")
	t.Setenv("UPLOAD_ALLOWED_EXTENSIONS", "PDF, .Docx")
	t.Setenv("WORKER_CONCURRENCY", "not-a-number")

	cfg := Load()

	if cfg.Env != "production" {
		t.Fatalf("expected production env, got %q", cfg.Env)
	}
	if cfg.APIPrefix != "/v2" {
		t.Fatalf("expected /v2 prefix, got %q", cfg.APIPrefix)
	}
	if cfg.Upload.MaxBytes != 1024 {
		t.Fatalf("expected 1024 byte ceiling, got %d", cfg.Upload.MaxBytes)
	}
	if got := cfg.Upload.AllowedExtensions; len(got) != 2 || got[0] != ".pdf" || got[1] != ".docx" {
		t.Fatalf("unexpected normalized extensions: %v", got)
	}
	if cfg.Worker.Concurrency != defaultWorkerConcurrency {
		t.Fatalf("expected invalid concurrency to fall back, got %d", cfg.Worker.Concurrency)
	}
	if cfg.IsDevLike() {
		t.Fatalf("production must not be dev-like")
	}
}

func TestLoadReadsDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("PORT", "")
	_ = os.Unsetenv("PORT")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=9191\n# comment\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg := Load()
	if cfg.Port != "9191" {
		t.Fatalf("expected port from .env, got %q", cfg.Port)
	}
}
