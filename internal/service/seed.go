package service

import (
	"fmt"

	"github.com/folio/internal/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedResult 记录写入的示例数据数量。
type SeedResult struct {
	Posts    int
	Projects int
}

// Seeder 清空内容表并写入示例文章、项目与站点设置。
type Seeder struct {
	db       *gorm.DB
	posts    *PostService
	projects *ProjectService
	settings *SettingService
	logger   *zap.Logger
}

// NewSeeder 构造 Seeder。
func NewSeeder(gdb *gorm.DB, settings *SettingService, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		db:       gdb,
		posts:    NewPostService(gdb),
		projects: NewProjectService(gdb),
		settings: settings,
		logger:   logger,
	}
}

// Reset 删除全部文章、项目与会话。
func (s *Seeder) Reset() error {
	for _, table := range []string{"posts", "projects", "sessions"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Seed 重置后写入示例数据。
func (s *Seeder) Seed(site SiteMetadata) (SeedResult, error) {
	if err := s.Reset(); err != nil {
		return SeedResult{}, err
	}

	var result SeedResult
	for _, input := range samplePosts() {
		if _, err := s.posts.Create(input); err != nil {
			return result, fmt.Errorf("seed post %s: %w", input.Slug, err)
		}
		s.logger.Info("seeded post", zap.String("slug", input.Slug))
		result.Posts++
	}
	for _, input := range sampleProjects() {
		if _, err := s.projects.Create(input); err != nil {
			return result, fmt.Errorf("seed project %s: %w", input.Slug, err)
		}
		s.logger.Info("seeded project", zap.String("slug", input.Slug))
		result.Projects++
	}

	err := s.settings.SetMany(map[string]string{
		db.SettingKeySiteTitle:       site.Title,
		db.SettingKeySiteDescription: site.Description,
		db.SettingKeySiteURL:         site.URL,
	})
	if err != nil {
		return result, err
	}
	return result, nil
}

func samplePosts() []PostInput {
	date := func(v string) *string { return &v }
	return []PostInput{
		{
			Slug:    "structured-logging-with-zap",
			Title:   "Structured Logging with zap",
			Excerpt: "Why key-value logs beat printf once a service leaves your laptop.",
			Content: "# Structured Logging with zap\n\n" +
				"Plain text logs are fine until you need to search them.\n\n" +
				"## A first logger\n\n" +
				"```go\nlogger, _ := zap.NewProduction()\ndefer logger.Sync()\nlogger.Info(\"started\", zap.Int(\"port\", 8080))\n```\n\n" +
				"## Fields over formatting\n\n" +
				"Attach context as fields and let the log pipeline do the rest.\n",
			Category:    "Go",
			Tags:        []string{"go", "logging", "observability"},
			Status:      db.PostStatusPublished,
			PublishDate: date("2025-12-08"),
		},
		{
			Slug:    "sqlite-full-text-search",
			Title:   "Full-Text Search in SQLite",
			Excerpt: "FTS5 gives a small site real search without another server.",
			Content: "# Full-Text Search in SQLite\n\n" +
				"An external content table keeps the index in sync through triggers.\n\n" +
				"## Creating the index\n\n" +
				"```sql\nCREATE VIRTUAL TABLE posts_fts USING fts5(title, content, content='posts', content_rowid='id');\n```\n\n" +
				"## Ranking\n\n" +
				"Order by `rank` to get the best matches first.\n",
			Category:    "Databases",
			Tags:        []string{"sqlite", "search", "go"},
			Status:      db.PostStatusPublished,
			PublishDate: date("2025-12-05"),
		},
		{
			Slug:    "graceful-shutdown-in-go",
			Title:   "Graceful Shutdown in Go",
			Excerpt: "Draining in-flight requests before the process exits.",
			Content: "# Graceful Shutdown in Go\n\n" +
				"## Listening for signals\n\n" +
				"```go\nctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)\ndefer stop()\n```\n\n" +
				"## Shutting down the server\n\n" +
				"Give `Shutdown` a deadline so a stuck client cannot hold the deploy.\n",
			Category:    "Go",
			Tags:        []string{"go", "http", "deployment"},
			Status:      db.PostStatusPublished,
			PublishDate: date("2025-12-03"),
		},
		{
			Slug:     "notes-on-caching",
			Title:    "Notes on Caching",
			Excerpt:  "Unfinished thoughts on cache invalidation.",
			Content:  "# Notes on Caching\n\nStill collecting material.\n",
			Category: "Architecture",
			Tags:     []string{"caching"},
			Status:   db.PostStatusDraft,
		},
	}
}

func sampleProjects() []ProjectInput {
	url := func(v string) *string { return &v }
	return []ProjectInput{
		{
			Slug:        "pipeline-board",
			Title:       "Pipeline Board",
			Description: "A live board that aggregates CI runs from several providers.",
			Content:     "# Pipeline Board\n\n## Features\n\n- Live build status\n- Provider agnostic\n- Slack notifications\n",
			Tags:        []string{"Go", "WebSocket", "React"},
			DemoURL:     url("https://pipeline-board.example.com"),
			GithubURL:   url("https://github.com/example/pipeline-board"),
			Status:      db.ProjectStatusPublished,
			OrderIndex:  1,
		},
		{
			Slug:        "edge-gateway",
			Title:       "Edge Gateway",
			Description: "A small reverse proxy with per-client rate limits and response caching.",
			Content:     "# Edge Gateway\n\n## Features\n\n- Token bucket rate limiting\n- Cache with TTL\n- Health checks\n",
			Tags:        []string{"Go", "Redis", "Docker"},
			GithubURL:   url("https://github.com/example/edge-gateway"),
			Status:      db.ProjectStatusPublished,
			OrderIndex:  2,
		},
		{
			Slug:        "snippet-vault",
			Title:       "Snippet Vault",
			Description: "Markdown notes for code snippets with git-backed sync.",
			Content:     "# Snippet Vault\n\n## Features\n\n- Syntax highlighting\n- Git sync\n",
			Tags:        []string{"TypeScript", "Electron"},
			DemoURL:     url("https://snippet-vault.example.com"),
			Status:      db.ProjectStatusPublished,
			OrderIndex:  3,
		},
	}
}
