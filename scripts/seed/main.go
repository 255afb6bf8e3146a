package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/folio/internal/config"
	"github.com/folio/internal/db"
	"github.com/folio/internal/logger"
	"github.com/folio/internal/service"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const (
	sampleAdminEmail    = "admin@example.com"
	sampleAdminPassword = "changeme123"
)

// 示例数据生成器，也可导入 markdown 目录或清理过期会话
func main() {
	cfg := config.Load()

	var dbPath string
	var importDir string
	var cleanup bool
	flag.StringVar(&dbPath, "db", cfg.DatabasePath, "sqlite db path")
	flag.StringVar(&importDir, "import", "", "import markdown files with frontmatter from this directory instead of seeding")
	flag.BoolVar(&cleanup, "cleanup", false, "only remove expired sessions")
	flag.Parse()

	l, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer l.Sync()

	store, err := db.Open(context.Background(), dbPath,
		db.WithGormLogger(logger.NewGorm(l, gormlogger.Warn)),
		db.WithMigrationLogger(logger.NewMigration(l)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case cleanup:
		removed, err := service.NewSessionService(store.Gorm()).Cleanup()
		if err != nil {
			fmt.Fprintf(os.Stderr, "cleanup sessions: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("done: removed %d expired sessions\n", removed)

	case importDir != "":
		importer := service.NewContentImporter(service.NewPostService(store.Gorm()), l)
		result, err := importer.ImportDir(importDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "import %s: %v\n", importDir, err)
			os.Exit(1)
		}
		fmt.Printf("done: created %d, updated %d, skipped %d\n", result.Created, result.Updated, len(result.Skipped))
		for _, name := range result.Skipped {
			fmt.Printf("  skipped: %s\n", name)
		}

	default:
		seed(store, cfg, l)
	}
}

func seed(store *db.Store, cfg config.AppConfig, l *zap.Logger) {
	site := service.SiteMetadata{Title: cfg.SiteName, Description: cfg.SiteDescription, URL: cfg.SiteURL}
	settings := service.NewSettingService(store.Gorm(), site)

	fmt.Println("开始生成示例数据...")
	result, err := service.NewSeeder(store.Gorm(), settings, l).Seed(site)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  已创建 %d 篇文章, %d 个项目\n", result.Posts, result.Projects)

	hash, err := service.HashPassword(sampleAdminPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("管理员账号 (写入 .env.local):")
	fmt.Printf("  ADMIN_EMAIL=%s\n", sampleAdminEmail)
	fmt.Printf("  ADMIN_PASSWORD_HASH='%s'\n", hash)
	fmt.Printf("  密码: %s\n", sampleAdminPassword)
}
