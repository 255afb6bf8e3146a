package service

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/folio/internal/db"
	"github.com/folio/internal/markdown"
	"go.uber.org/zap"
)

// ImportResult 汇总一次导入的结果。
type ImportResult struct {
	Created int
	Updated int
	Skipped []string
}

// ContentImporter 将带 frontmatter 的 markdown 文件导入为文章。
type ContentImporter struct {
	posts  *PostService
	logger *zap.Logger
}

// NewContentImporter 构造导入器。
func NewContentImporter(posts *PostService, logger *zap.Logger) *ContentImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentImporter{posts: posts, logger: logger}
}

// ImportDir 递归导入 dir 下所有 .md 文件，按路径排序处理。
// 已存在的 slug 会被更新而不是重复创建。
func (i *ContentImporter) ImportDir(dir string) (ImportResult, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".md") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(files)

	var result ImportResult
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return result, fmt.Errorf("read %s: %w", path, err)
		}
		created, err := i.ImportFile(filepath.Base(path), data)
		if err != nil {
			i.logger.Warn("skip markdown file", zap.String("path", path), zap.Error(err))
			result.Skipped = append(result.Skipped, path)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	return result, nil
}

// ImportFile 导入单个文件，返回是否为新建。
func (i *ContentImporter) ImportFile(name string, data []byte) (bool, error) {
	meta, body := markdown.ParseFrontmatter(string(data))
	input := postInputFromFrontmatter(name, meta, body)
	if input.Title == "" || input.Slug == "" {
		return false, errors.New("missing title and slug")
	}

	existing, err := i.posts.GetBySlug(input.Slug)
	switch {
	case errors.Is(err, ErrPostNotFound):
		if _, err := i.posts.Create(input); err != nil {
			return false, err
		}
		i.logger.Info("imported post", zap.String("slug", input.Slug))
		return true, nil
	case err != nil:
		return false, err
	}

	tags := input.Tags
	update := PostUpdate{
		Title:       &input.Title,
		Excerpt:     &input.Excerpt,
		Content:     &input.Content,
		Category:    &input.Category,
		Tags:        &tags,
		Status:      &input.Status,
		CoverImage:  Some(input.CoverImage),
		PublishDate: Some(input.PublishDate),
	}
	if _, err := i.posts.Update(existing.ID, update); err != nil {
		return false, err
	}
	i.logger.Info("updated post", zap.String("slug", input.Slug))
	return false, nil
}

func postInputFromFrontmatter(name string, meta map[string]string, body string) PostInput {
	base := strings.TrimSuffix(name, filepath.Ext(name))

	title := meta["title"]
	if title == "" {
		title = base
	}
	slug := markdown.Slugify(meta["slug"])
	if slug == "" {
		slug = markdown.Slugify(title)
	}
	if slug == "" {
		slug = markdown.Slugify(base)
	}

	status := meta["status"]
	if !db.IsPostStatus(status) {
		status = db.PostStatusPublished
	}

	return PostInput{
		Slug:        slug,
		Title:       title,
		Excerpt:     meta["excerpt"],
		Content:     strings.TrimLeft(body, "\n"),
		Category:    defaultString(meta["category"], db.DefaultCategory),
		Tags:        parseTagField(meta["tags"]),
		CoverImage:  optionalString(firstMeta(meta, "cover_image", "cover", "featured_image")),
		Status:      status,
		PublishDate: optionalString(firstMeta(meta, "publish_date", "date")),
	}
}

// parseTagField 支持 "a, b" 与 "[a, b]" 两种写法。
func parseTagField(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		tag := strings.Trim(strings.TrimSpace(part), `"'`)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func firstMeta(meta map[string]string, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(meta[key]); v != "" {
			return v
		}
	}
	return ""
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
