package router

import (
	"time"

	"github.com/folio/internal/config"
	"github.com/folio/internal/handler"
	"github.com/folio/internal/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps 路由所需的依赖
type Deps struct {
	DB     *gorm.DB
	Config config.AppConfig
	Logger *zap.Logger
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(deps Deps) *gin.Engine {
	l := deps.Logger
	if l == nil {
		l = zap.NewNop()
	}

	r := gin.New()
	r.Use(logger.GinLogger(l), logger.GinRecovery(l))
	r.MaxMultipartMemory = 8 << 20

	if origins := deps.Config.AllowedOrigins; len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 上传目录静态服务
	r.Static(deps.Config.UploadURLPath, deps.Config.UploadDir)

	api := handler.NewAPI(deps.DB, deps.Config, l)

	r.GET("/healthz", api.Healthz)
	r.GET("/rss.xml", api.RSS)
	r.GET("/sitemap.xml", api.Sitemap)

	public := r.Group("/api")
	{
		public.GET("/posts", api.ListPosts)
		public.GET("/posts/:id", api.GetPost)
		public.GET("/posts/slug/:slug", api.GetPostBySlug)
		public.GET("/search", api.SearchPosts)
		public.GET("/categories", api.ListCategories)
		public.GET("/categories/:category/posts", api.ListCategoryPosts)
		public.GET("/tags", api.ListTags)

		public.GET("/projects", api.ListProjects)
		public.GET("/projects/:id", api.GetProject)
		public.GET("/projects/slug/:slug", api.GetProjectBySlug)

		public.GET("/settings/site", api.GetSiteMetadata)

		public.POST("/auth/login", api.Login)
		public.POST("/auth/logout", api.Logout)
		public.GET("/auth/check", api.CheckAuth)
	}

	// 需要认证的后台接口
	admin := r.Group("/api")
	admin.Use(api.AuthRequired())
	{
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
	}

	return r
}
