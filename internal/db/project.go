package db

const (
	// ProjectStatusDraft 草稿
	ProjectStatusDraft = "draft"
	// ProjectStatusPublished 已发布
	ProjectStatusPublished = "published"
)

// Project 作品集条目，对应 projects 表。
type Project struct {
	ID            int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id,string"`
	Slug          string  `gorm:"column:slug" json:"slug"`
	Title         string  `gorm:"column:title" json:"title"`
	Description   string  `gorm:"column:description" json:"description"`
	Content       string  `gorm:"column:content" json:"content"`
	Tags          TagList `gorm:"column:tags" json:"tags"`
	FeaturedImage *string `gorm:"column:featured_image" json:"featured_image"`
	DemoURL       *string `gorm:"column:demo_url" json:"demo_url"`
	GithubURL     *string `gorm:"column:github_url" json:"github_url"`
	Status        string  `gorm:"column:status" json:"status"`
	OrderIndex    int     `gorm:"column:order_index" json:"order_index"`
	CreatedAt     string  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     string  `gorm:"column:updated_at" json:"updated_at"`
}

// TableName 固定表名。
func (Project) TableName() string {
	return "projects"
}

// IsProjectStatus 判断是否为合法的项目状态。
func IsProjectStatus(status string) bool {
	return status == ProjectStatusDraft || status == ProjectStatusPublished
}
