package db

import "encoding/json"

const (
	// PostStatusDraft 草稿
	PostStatusDraft = "draft"
	// PostStatusPublished 已发布
	PostStatusPublished = "published"
	// PostStatusScheduled 定时发布
	PostStatusScheduled = "scheduled"

	// DefaultCategory 是未指定分类时的默认值。
	DefaultCategory = "Uncategorized"
)

// Post 定义了文章模型，对应 posts 表。
// 时间字段保持数据库中的文本格式，由 SQLite 负责赋值。
type Post struct {
	ID            int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id,string"`
	Slug          string  `gorm:"column:slug" json:"slug"`
	Title         string  `gorm:"column:title" json:"title"`
	Excerpt       string  `gorm:"column:excerpt" json:"excerpt"`
	Content       string  `gorm:"column:content" json:"content"`
	Category      string  `gorm:"column:category" json:"category"`
	Tags          TagList `gorm:"column:tags" json:"tags"`
	FeaturedImage *string `gorm:"column:featured_image" json:"featured_image"`
	Status        string  `gorm:"column:status" json:"status"`
	PublishDate   *string `gorm:"column:publish_date" json:"publish_date"`
	CreatedAt     string  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     string  `gorm:"column:updated_at" json:"updated_at"`
	Views         int64   `gorm:"column:views" json:"views"`
}

// TableName 固定表名。
func (Post) TableName() string {
	return "posts"
}

// CoverImage 是 featured_image 的别名。
func (p Post) CoverImage() *string {
	return p.FeaturedImage
}

// MarshalJSON 在输出中同时提供 featured_image 与 cover_image。
func (p Post) MarshalJSON() ([]byte, error) {
	type plain Post
	return json.Marshal(struct {
		plain
		CoverImage *string `json:"cover_image"`
	}{
		plain:      plain(p),
		CoverImage: p.FeaturedImage,
	})
}

// IsPostStatus 判断是否为合法的文章状态。
func IsPostStatus(status string) bool {
	switch status {
	case PostStatusDraft, PostStatusPublished, PostStatusScheduled:
		return true
	}
	return false
}
