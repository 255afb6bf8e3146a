package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/folio/internal/db"
	"github.com/folio/internal/markdown"
	"github.com/folio/internal/service"
	"github.com/gin-gonic/gin"
)

type projectRequest struct {
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Description   string     `json:"description"`
	Content       string     `json:"content"`
	Tags          db.TagList `json:"tags"`
	FeaturedImage *string    `json:"featured_image"`
	DemoURL       *string    `json:"demo_url"`
	GithubURL     *string    `json:"github_url"`
	Status        string     `json:"status"`
	OrderIndex    int        `json:"order_index"`
}

type projectUpdateRequest struct {
	Title         *string                   `json:"title"`
	Slug          *string                   `json:"slug"`
	Description   *string                   `json:"description"`
	Content       *string                   `json:"content"`
	Tags          *db.TagList               `json:"tags"`
	FeaturedImage service.Optional[*string] `json:"featured_image"`
	DemoURL       service.Optional[*string] `json:"demo_url"`
	GithubURL     service.Optional[*string] `json:"github_url"`
	Status        *string                   `json:"status"`
	OrderIndex    *int                      `json:"order_index"`
}

func (r projectUpdateRequest) toUpdate() service.ProjectUpdate {
	update := service.ProjectUpdate{
		Slug:          r.Slug,
		Title:         r.Title,
		Description:   r.Description,
		Content:       r.Content,
		FeaturedImage: r.FeaturedImage,
		DemoURL:       r.DemoURL,
		GithubURL:     r.GithubURL,
		Status:        r.Status,
		OrderIndex:    r.OrderIndex,
	}
	if r.Tags != nil {
		tags := []string(*r.Tags)
		update.Tags = &tags
	}
	return update
}

type renderedProject struct {
	Project db.Project `json:"project"`
	HTML    string     `json:"html"`
}

// ListProjects 获取项目列表，未登录时只返回已发布项目。
func (a *API) ListProjects(c *gin.Context) {
	status := strings.TrimSpace(c.Query("status"))
	switch {
	case !a.isAuthenticated(c):
		status = db.ProjectStatusPublished
	case !db.IsProjectStatus(status):
		status = ""
	}

	projects, err := a.projects.List(status)
	if err != nil {
		a.respondInternal(c, "Failed to fetch projects", err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// GetProject 按 id 获取项目。
func (a *API) GetProject(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid project ID")
		return
	}
	project, err := a.projects.GetByID(id)
	if err != nil {
		a.respondProjectError(c, err, "Failed to fetch project")
		return
	}
	if project.Status != db.ProjectStatusPublished && !a.isAuthenticated(c) {
		respondError(c, http.StatusNotFound, "Project not found")
		return
	}
	c.JSON(http.StatusOK, project)
}

// GetProjectBySlug 返回项目及渲染后的正文。
func (a *API) GetProjectBySlug(c *gin.Context) {
	project, err := a.projects.GetBySlug(c.Param("slug"))
	if err != nil {
		a.respondProjectError(c, err, "Failed to fetch project")
		return
	}
	if project.Status != db.ProjectStatusPublished && !a.isAuthenticated(c) {
		respondError(c, http.StatusNotFound, "Project not found")
		return
	}

	rendered, err := a.renderer.Render(project.Content, markdown.ParseTheme(c.Query("theme")))
	if err != nil {
		a.respondInternal(c, "Failed to render project", err)
		return
	}
	c.JSON(http.StatusOK, renderedProject{Project: *project, HTML: rendered.HTML})
}

// CreateProject 创建项目
func (a *API) CreateProject(c *gin.Context) {
	var req projectRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Slug) == "" {
		respondError(c, http.StatusBadRequest, "Title and slug are required")
		return
	}
	if req.Status != "" && !db.IsProjectStatus(req.Status) {
		respondError(c, http.StatusBadRequest, "Invalid status")
		return
	}
	if _, err := a.projects.GetBySlug(req.Slug); err == nil {
		respondError(c, http.StatusConflict, "A project with this slug already exists")
		return
	}

	project, err := a.projects.Create(service.ProjectInput{
		Slug:          req.Slug,
		Title:         req.Title,
		Description:   req.Description,
		Content:       req.Content,
		Tags:          req.Tags,
		FeaturedImage: req.FeaturedImage,
		DemoURL:       req.DemoURL,
		GithubURL:     req.GithubURL,
		Status:        req.Status,
		OrderIndex:    req.OrderIndex,
	})
	if err != nil {
		if service.IsUniqueViolation(err) {
			respondError(c, http.StatusConflict, "A project with this slug already exists")
			return
		}
		a.respondInternal(c, "Failed to create project", err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// UpdateProject 部分更新项目
func (a *API) UpdateProject(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req projectUpdateRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}
	if req.Status != nil && !db.IsProjectStatus(*req.Status) {
		respondError(c, http.StatusBadRequest, "Invalid status")
		return
	}
	if req.Slug != nil {
		if strings.TrimSpace(*req.Slug) == "" {
			respondError(c, http.StatusBadRequest, "Slug cannot be empty")
			return
		}
		if existing, err := a.projects.GetBySlug(*req.Slug); err == nil && existing.ID != id {
			respondError(c, http.StatusConflict, "A project with this slug already exists")
			return
		}
	}

	project, err := a.projects.Update(id, req.toUpdate())
	if err != nil {
		if service.IsUniqueViolation(err) {
			respondError(c, http.StatusConflict, "A project with this slug already exists")
			return
		}
		a.respondProjectError(c, err, "Failed to update project")
		return
	}
	c.JSON(http.StatusOK, project)
}

// DeleteProject 删除项目
func (a *API) DeleteProject(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid project ID")
		return
	}
	if _, err := a.projects.GetByID(id); err != nil {
		a.respondProjectError(c, err, "Failed to delete project")
		return
	}
	if err := a.projects.Delete(id); err != nil {
		a.respondInternal(c, "Failed to delete project", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (a *API) respondProjectError(c *gin.Context, err error, message string) {
	if errors.Is(err, service.ErrProjectNotFound) {
		respondError(c, http.StatusNotFound, "Project not found")
		return
	}
	a.respondInternal(c, message, err)
}
