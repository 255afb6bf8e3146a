package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/folio/internal/db"
	"gorm.io/gorm"
)

// ErrProjectNotFound 表示项目不存在。
var ErrProjectNotFound = errors.New("project not found")

// ProjectService 提供作品集条目的读写。
type ProjectService struct {
	db *gorm.DB
}

// ProjectInput 创建项目时接受的字段。
type ProjectInput struct {
	Slug          string
	Title         string
	Description   string
	Content       string
	Tags          []string
	FeaturedImage *string
	DemoURL       *string
	GithubURL     *string
	Status        string
	OrderIndex    int
}

// ProjectUpdate 描述项目的部分更新。
type ProjectUpdate struct {
	Slug          *string
	Title         *string
	Description   *string
	Content       *string
	Tags          *[]string
	FeaturedImage Optional[*string]
	DemoURL       Optional[*string]
	GithubURL     Optional[*string]
	Status        *string
	OrderIndex    *int
}

func (u ProjectUpdate) columns() map[string]any {
	cols := make(map[string]any)
	setString(cols, "slug", u.Slug)
	setString(cols, "title", u.Title)
	setString(cols, "description", u.Description)
	setString(cols, "content", u.Content)
	setString(cols, "status", u.Status)
	if u.Tags != nil {
		cols["tags"] = db.TagList(*u.Tags)
	}
	if u.FeaturedImage.Set {
		cols["featured_image"] = u.FeaturedImage.Value
	}
	if u.DemoURL.Set {
		cols["demo_url"] = u.DemoURL.Value
	}
	if u.GithubURL.Set {
		cols["github_url"] = u.GithubURL.Value
	}
	if u.OrderIndex != nil {
		cols["order_index"] = *u.OrderIndex
	}
	return cols
}

// NewProjectService 构造 ProjectService。
func NewProjectService(gdb *gorm.DB) *ProjectService {
	return &ProjectService{db: gdb}
}

// List 按 order_index 升序返回项目，同序号时新建的在前。
func (s *ProjectService) List(status string) ([]db.Project, error) {
	query := s.db.Model(&db.Project{})
	if status = strings.TrimSpace(status); status != "" {
		query = query.Where("status = ?", status)
	}

	var projects []db.Project
	err := query.
		Order("order_index ASC").
		Order("created_at DESC").
		Order("id DESC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// GetBySlug 按 slug 查询项目。
func (s *ProjectService) GetBySlug(slug string) (*db.Project, error) {
	var project db.Project
	if err := s.db.Where("slug = ?", slug).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// GetByID 按 id 查询项目。
func (s *ProjectService) GetByID(id int64) (*db.Project, error) {
	var project db.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// Create 写入新项目并返回数据库中的记录。
func (s *ProjectService) Create(input ProjectInput) (*db.Project, error) {
	project := db.Project{
		Slug:          input.Slug,
		Title:         input.Title,
		Description:   input.Description,
		Content:       input.Content,
		Tags:          db.TagList(input.Tags),
		FeaturedImage: input.FeaturedImage,
		DemoURL:       input.DemoURL,
		GithubURL:     input.GithubURL,
		Status:        defaultString(input.Status, db.ProjectStatusDraft),
		OrderIndex:    input.OrderIndex,
	}

	if err := s.db.Omit("created_at", "updated_at").Create(&project).Error; err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return s.GetByID(project.ID)
}

// Update 只写入提供的字段，并刷新 updated_at。
func (s *ProjectService) Update(id int64, update ProjectUpdate) (*db.Project, error) {
	if _, err := s.GetByID(id); err != nil {
		return nil, err
	}

	cols := update.columns()
	cols["updated_at"] = gorm.Expr(sqlNow)

	if err := s.db.Model(&db.Project{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return s.GetByID(id)
}

// Delete 删除项目，不检查是否存在。
func (s *ProjectService) Delete(id int64) error {
	if err := s.db.Where("id = ?", id).Delete(&db.Project{}).Error; err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// Count 返回项目数量。
func (s *ProjectService) Count(status string) (int64, error) {
	query := s.db.Model(&db.Project{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return total, nil
}
