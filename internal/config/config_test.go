package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "LISTEN_ADDR", "DATABASE_PATH", "APP_ENV", "NODE_ENV", "UPLOAD_DIR",
		"UPLOAD_URL_PATH", "SITE_URL", "SESSION_TTL_HOURS", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())

	cfg := Load()
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected :8080, got %q", cfg.ListenAddr)
	}
	if cfg.DatabasePath != "./db/blog.db" {
		t.Fatalf("unexpected database path %q", cfg.DatabasePath)
	}
	if cfg.UploadURLPath != "/uploads" {
		t.Fatalf("unexpected upload url %q", cfg.UploadURLPath)
	}
	if cfg.SessionTTL != 30*24*time.Hour {
		t.Fatalf("unexpected session ttl %v", cfg.SessionTTL)
	}
	if cfg.IsProduction() {
		t.Fatalf("default env must not be production")
	}
	if cfg.SiteURL != "http://localhost:8080" {
		t.Fatalf("unexpected site url %q", cfg.SiteURL)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Fatalf("expected no cors origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("APP_ENV", "production")
	t.Setenv("UPLOAD_URL_PATH", "media/")
	t.Setenv("SITE_URL", "https://example.com/")
	t.Setenv("SESSION_TTL_HOURS", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()
	if cfg.ListenAddr != ":9000" {
		t.Fatalf("expected :9000, got %q", cfg.ListenAddr)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production")
	}
	if cfg.UploadURLPath != "/media" {
		t.Fatalf("unexpected upload url %q", cfg.UploadURLPath)
	}
	if cfg.SiteURL != "https://example.com" {
		t.Fatalf("unexpected site url %q", cfg.SiteURL)
	}
	if cfg.SessionTTL != 30*24*time.Hour {
		t.Fatalf("invalid ttl should fall back, got %v", cfg.SessionTTL)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("ADMIN_EMAIL", "")
	os.Unsetenv("ADMIN_EMAIL")

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ADMIN_EMAIL=admin@example.com\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg := Load()
	if cfg.AdminEmail != "admin@example.com" {
		t.Fatalf("expected email from .env, got %q", cfg.AdminEmail)
	}
	os.Unsetenv("ADMIN_EMAIL")
}
