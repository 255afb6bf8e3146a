package handler

import (
	"time"

	"github.com/folio/internal/config"
	"github.com/folio/internal/markdown"
	"github.com/folio/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	posts        *service.PostService
	projects     *service.ProjectService
	settings     *service.SettingService
	sessions     *service.SessionService
	auth         *service.AuthService
	uploads      *service.UploadService
	renderer     *markdown.Renderer
	logger       *zap.Logger
	secureCookie bool
	now          func() time.Time
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, cfg config.AppConfig, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}

	sessions := service.NewSessionService(gdb)
	admin := service.AdminCredentials{
		Email:        cfg.AdminEmail,
		PasswordHash: cfg.AdminPasswordHash,
	}
	defaults := service.SiteMetadata{
		Title:       cfg.SiteName,
		Description: cfg.SiteDescription,
		URL:         cfg.SiteURL,
	}

	return &API{
		posts:        service.NewPostService(gdb),
		projects:     service.NewProjectService(gdb),
		settings:     service.NewSettingService(gdb, defaults),
		sessions:     sessions,
		auth:         service.NewAuthService(admin, sessions, cfg.SessionTTL, logger),
		uploads:      service.NewUploadService(cfg.UploadDir, cfg.UploadURLPath),
		renderer:     markdown.NewRenderer(),
		logger:       logger,
		secureCookie: cfg.IsProduction(),
		now:          time.Now,
	}
}
