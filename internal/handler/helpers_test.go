package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/folio/internal/config"
	"github.com/folio/internal/db"
	"github.com/folio/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "correct horse"
)

type testEnv struct {
	engine *gin.Engine
	api    *API
	db     *gorm.DB
	cfg    config.AppConfig
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	store, err := db.Open(context.Background(), filepath.Join(dir, "blog.db"),
		db.WithGormLogger(logger.Default.LogMode(logger.Silent)))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	hash, err := service.HashPasswordWithParams(testAdminPassword, service.Argon2Params{
		Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16,
	})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	cfg := config.AppConfig{
		Env:               "development",
		UploadDir:         filepath.Join(dir, "uploads"),
		UploadURLPath:     "/uploads",
		AdminEmail:        testAdminEmail,
		AdminPasswordHash: hash,
		SiteName:          "Test Blog",
		SiteDescription:   "Testing",
		SiteURL:           "http://blog.test",
	}

	api := NewAPI(store.Gorm(), cfg, nil)
	return &testEnv{engine: newTestEngine(api), api: api, db: store.Gorm(), cfg: cfg}
}

func newTestEngine(api *API) *gin.Engine {
	r := gin.New()

	r.GET("/rss.xml", api.RSS)
	r.GET("/sitemap.xml", api.Sitemap)
	r.GET("/healthz", api.Healthz)

	r.GET("/api/posts", api.ListPosts)
	r.GET("/api/posts/:id", api.GetPost)
	r.GET("/api/posts/slug/:slug", api.GetPostBySlug)
	r.GET("/api/search", api.SearchPosts)
	r.GET("/api/categories", api.ListCategories)
	r.GET("/api/categories/:category/posts", api.ListCategoryPosts)
	r.GET("/api/tags", api.ListTags)
	r.GET("/api/projects", api.ListProjects)
	r.GET("/api/projects/:id", api.GetProject)
	r.GET("/api/projects/slug/:slug", api.GetProjectBySlug)
	r.GET("/api/settings/site", api.GetSiteMetadata)
	r.POST("/api/auth/login", api.Login)
	r.POST("/api/auth/logout", api.Logout)
	r.GET("/api/auth/check", api.CheckAuth)

	admin := r.Group("/api", api.AuthRequired())
	admin.POST("/posts", api.CreatePost)
	admin.PUT("/posts/:id", api.UpdatePost)
	admin.DELETE("/posts/:id", api.DeletePost)
	admin.POST("/projects", api.CreateProject)
	admin.PUT("/projects/:id", api.UpdateProject)
	admin.DELETE("/projects/:id", api.DeleteProject)
	admin.GET("/settings", api.GetSettings)
	admin.PUT("/settings", api.UpdateSettings)
	admin.GET("/dashboard", api.Dashboard)
	admin.POST("/upload", api.UploadImage)
	return r
}

// login 返回登录后的会话 Cookie
func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rr.Code, rr.Body.String())
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatalf("login did not set %s cookie", sessionCookieName)
	return nil
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	e.engine.ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}
