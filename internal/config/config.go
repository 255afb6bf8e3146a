package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string
	Port          string
	DatabasePath  string
	Env           string
	GinMode       string
	UploadDir     string
	UploadURLPath string

	AdminEmail        string
	AdminPasswordHash string
	SessionTTL        time.Duration

	SiteName        string
	SiteDescription string
	SiteURL         string

	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	AllowedOrigins []string
}

// IsProduction 表示是否运行在生产环境，决定 cookie 是否带 Secure。
func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadDotEnv 依次加载 .env.local 与 .env，文件不存在时忽略；已存在的环境变量优先。
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env.local", ".env"}
	}
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		_ = godotenv.Load(file)
	}
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	LoadDotEnv()

	port := env("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = env("NODE_ENV", "development")
	}

	uploadURLPath := "/" + strings.Trim(env("UPLOAD_URL_PATH", "/uploads"), "/")

	ttlHours := envInt("SESSION_TTL_HOURS", 30*24)

	return AppConfig{
		ListenAddr:    listenAddr,
		Port:          port,
		DatabasePath:  env("DATABASE_PATH", "./db/blog.db"),
		Env:           appEnv,
		GinMode:       env("GIN_MODE", "release"),
		UploadDir:     env("UPLOAD_DIR", "public/uploads"),
		UploadURLPath: uploadURLPath,

		AdminEmail:        strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		AdminPasswordHash: strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_HASH")),
		SessionTTL:        time.Duration(ttlHours) * time.Hour,

		SiteName:        env("SITE_NAME", "Personal Blog"),
		SiteDescription: env("SITE_DESCRIPTION", "A personal blog and portfolio"),
		SiteURL:         strings.TrimRight(env("SITE_URL", "http://localhost:"+port), "/"),

		LogLevel:      strings.ToLower(env("LOG_LEVEL", "info")),
		LogPath:       strings.TrimSpace(os.Getenv("LOG_PATH")),
		LogMaxSizeMB:  envInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: envInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: envInt("LOG_MAX_AGE_DAYS", 7),

		AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}
}

func env(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
