package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/folio/internal/config"
	"github.com/folio/internal/db"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"
)

func setupTestRouter(t *testing.T, cfg config.AppConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "blog.db"),
		db.WithGormLogger(logger.Default.LogMode(logger.Silent)))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return SetupRouter(Deps{DB: store.Gorm(), Config: cfg})
}

func TestSetupRouterServesUploads(t *testing.T) {
	uploadDir := t.TempDir()
	fileName := "example.txt"
	fileContent := []byte("hello uploads")
	if err := os.WriteFile(filepath.Join(uploadDir, fileName), fileContent, 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	r := setupTestRouter(t, config.AppConfig{UploadDir: uploadDir, UploadURLPath: "/media"})

	req := httptest.NewRequest(http.MethodGet, "/media/"+fileName, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Body.String() != string(fileContent) {
		t.Fatalf("unexpected body, got %q", rr.Body.String())
	}
}

func TestSetupRouterRoutes(t *testing.T) {
	r := setupTestRouter(t, config.AppConfig{UploadDir: t.TempDir(), UploadURLPath: "/uploads"})

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/rss.xml", http.StatusOK},
		{http.MethodGet, "/sitemap.xml", http.StatusOK},
		{http.MethodGet, "/api/posts", http.StatusOK},
		{http.MethodGet, "/api/posts/abc", http.StatusBadRequest},
		{http.MethodGet, "/api/posts/slug/missing", http.StatusNotFound},
		{http.MethodGet, "/api/projects", http.StatusOK},
		{http.MethodGet, "/api/settings/site", http.StatusOK},
		{http.MethodGet, "/api/auth/check", http.StatusOK},
		{http.MethodGet, "/api/settings", http.StatusUnauthorized},
		{http.MethodGet, "/api/dashboard", http.StatusUnauthorized},
		{http.MethodPost, "/api/posts", http.StatusUnauthorized},
		{http.MethodDelete, "/api/projects/1", http.StatusUnauthorized},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestSetupRouterCORS(t *testing.T) {
	r := setupTestRouter(t, config.AppConfig{
		UploadDir:      t.TempDir(),
		UploadURLPath:  "/uploads",
		AllowedOrigins: []string{"http://localhost:3000"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected credentials header, got %q", got)
	}
}
