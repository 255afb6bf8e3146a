package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/folio/internal/db"
	"gorm.io/gorm"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrPostNotFound       = errors.New("post not found")
	ErrInvalidSearchQuery = errors.New("invalid search query")
)

const (
	searchLimit = 20

	// sqlNow 与建表默认值保持一致的毫秒级时间戳
	sqlNow = "strftime('%Y-%m-%d %H:%M:%f', 'now')"
)

// PostService wraps post related database operations.
type PostService struct {
	db *gorm.DB
}

// PostFilter describes filters for listing posts.
// Offset 仅在 Limit 大于 0 时生效。
type PostFilter struct {
	Status string
	Limit  int
	Offset int
}

// PostInput represents fields accepted when creating a post.
type PostInput struct {
	Slug        string
	Title       string
	Excerpt     string
	Content     string
	Category    string
	Tags        []string
	CoverImage  *string
	Status      string
	PublishDate *string
}

// PostUpdate 描述部分更新，nil / 未设置的字段保持不变。
type PostUpdate struct {
	Slug        *string
	Title       *string
	Excerpt     *string
	Content     *string
	Category    *string
	Tags        *[]string
	CoverImage  Optional[*string]
	Status      *string
	PublishDate Optional[*string]
}

// columns 将更新结构映射为列名到新值的集合。
func (u PostUpdate) columns() map[string]any {
	cols := make(map[string]any)
	setString(cols, "slug", u.Slug)
	setString(cols, "title", u.Title)
	setString(cols, "excerpt", u.Excerpt)
	setString(cols, "content", u.Content)
	setString(cols, "category", u.Category)
	setString(cols, "status", u.Status)
	if u.Tags != nil {
		cols["tags"] = db.TagList(*u.Tags)
	}
	if u.CoverImage.Set {
		cols["featured_image"] = u.CoverImage.Value
	}
	if u.PublishDate.Set {
		cols["publish_date"] = u.PublishDate.Value
	}
	return cols
}

// CategoryCount 分类及其已发布文章数。
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// TagCount 标签及其出现次数。
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

// List returns posts ordered by publish date then creation time, newest first.
func (s *PostService) List(filter PostFilter) ([]db.Post, error) {
	query := s.db.Model(&db.Post{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	query = query.Order("publish_date DESC").Order("created_at DESC").Order("id DESC")

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
		if filter.Offset > 0 {
			query = query.Offset(filter.Offset)
		}
	}

	var posts []db.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// GetBySlug fetches a single post by slug.
func (s *PostService) GetBySlug(slug string) (*db.Post, error) {
	var post db.Post
	if err := s.db.Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetByID fetches a single post by id.
func (s *PostService) GetByID(id int64) (*db.Post, error) {
	var post db.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetByCategory 返回指定分类下的已发布文章。
func (s *PostService) GetByCategory(category string) ([]db.Post, error) {
	var posts []db.Post
	err := s.db.
		Where("category = ? AND status = ?", category, db.PostStatusPublished).
		Order("publish_date DESC").
		Order("id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts by category: %w", err)
	}
	return posts, nil
}

// Search 对已发布文章执行全文检索，按相关度排序，最多返回 20 条。
// 查询串原样交给 FTS5，语法错误以 ErrInvalidSearchQuery 返回。
func (s *PostService) Search(query string) ([]db.Post, error) {
	if strings.TrimSpace(query) == "" {
		return []db.Post{}, nil
	}

	var posts []db.Post
	err := s.db.Raw(`
		SELECT p.* FROM posts_fts
		CROSS JOIN posts p ON p.id = posts_fts.rowid
		WHERE posts_fts MATCH ? AND p.status = ?
		ORDER BY posts_fts.rank
		LIMIT ?`, query, db.PostStatusPublished, searchLimit).
		Scan(&posts).Error
	if err != nil {
		if isFTSQueryError(err) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSearchQuery, err)
		}
		return nil, fmt.Errorf("search posts: %w", err)
	}
	if posts == nil {
		posts = []db.Post{}
	}
	return posts, nil
}

// Categories 统计已发布文章的分类，按数量倒序。
func (s *PostService) Categories() ([]CategoryCount, error) {
	var out []CategoryCount
	err := s.db.Model(&db.Post{}).
		Select("category, COUNT(*) AS count").
		Where("status = ?", db.PostStatusPublished).
		Group("category").
		Order("count DESC").
		Order("category ASC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	if out == nil {
		out = []CategoryCount{}
	}
	return out, nil
}

// Tags 汇总已发布文章的标签频次，按数量倒序；同数量时保持首次出现的顺序。
func (s *PostService) Tags() ([]TagCount, error) {
	var rows []db.Post
	err := s.db.Model(&db.Post{}).
		Select("id", "tags").
		Where("status = ?", db.PostStatusPublished).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}

	index := make(map[string]int)
	out := []TagCount{}
	for _, row := range rows {
		for _, tag := range row.Tags {
			if i, ok := index[tag]; ok {
				out[i].Count++
				continue
			}
			index[tag] = len(out)
			out = append(out, TagCount{Tag: tag, Count: 1})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out, nil
}

// Create 写入新文章并重新读取，以拿到数据库赋值的字段。
// slug 冲突直接返回存储层错误，调用方可用 IsUniqueViolation 判断。
func (s *PostService) Create(input PostInput) (*db.Post, error) {
	post := db.Post{
		Slug:          input.Slug,
		Title:         input.Title,
		Excerpt:       input.Excerpt,
		Content:       input.Content,
		Category:      defaultString(input.Category, db.DefaultCategory),
		Tags:          db.TagList(input.Tags),
		FeaturedImage: input.CoverImage,
		Status:        defaultString(input.Status, db.PostStatusDraft),
		PublishDate:   input.PublishDate,
	}

	if err := s.db.Omit("created_at", "updated_at", "views").Create(&post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.GetByID(post.ID)
}

// Update 只写入提供的字段，并始终刷新 updated_at。
func (s *PostService) Update(id int64, update PostUpdate) (*db.Post, error) {
	if _, err := s.GetByID(id); err != nil {
		return nil, err
	}

	cols := update.columns()
	cols["updated_at"] = gorm.Expr(sqlNow)

	if err := s.db.Model(&db.Post{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return s.GetByID(id)
}

// Delete 删除文章，不检查是否存在。
func (s *PostService) Delete(id int64) error {
	if err := s.db.Where("id = ?", id).Delete(&db.Post{}).Error; err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// IncrementViews 以单条语句自增浏览量。
func (s *PostService) IncrementViews(id int64) error {
	err := s.db.Model(&db.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// Count 返回文章总数，status 非空时按状态过滤。
func (s *PostService) Count(status string) (int64, error) {
	query := s.db.Model(&db.Post{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return total, nil
}

// TotalViews 汇总全部文章的浏览量。
func (s *PostService) TotalViews() (int64, error) {
	var total int64
	if err := s.db.Model(&db.Post{}).Select("COALESCE(SUM(views), 0)").Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("sum views: %w", err)
	}
	return total, nil
}

// Related 返回同分类下除自身外的最多 limit 篇文章。
func (s *PostService) Related(post *db.Post, limit int) ([]db.Post, error) {
	posts, err := s.GetByCategory(post.Category)
	if err != nil {
		return nil, err
	}
	related := make([]db.Post, 0, limit)
	for _, candidate := range posts {
		if candidate.ID == post.ID {
			continue
		}
		related = append(related, candidate)
		if len(related) == limit {
			break
		}
	}
	return related, nil
}

// IsUniqueViolation 判断错误是否来自唯一约束冲突。
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isFTSQueryError 判断 MATCH 语句的错误是否源于查询串本身。
// FTS5 的语法错误（含 unterminated string、unknown special query）都以 SQLITE_ERROR 返回。
func isFTSQueryError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_ERROR
	}
	msg := err.Error()
	return strings.Contains(msg, "fts5:") || strings.Contains(msg, "no such column")
}

func setString(cols map[string]any, column string, value *string) {
	if value != nil {
		cols[column] = *value
	}
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
