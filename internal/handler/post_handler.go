package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/folio/internal/db"
	"github.com/folio/internal/markdown"
	"github.com/folio/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const relatedPostLimit = 3

type postRequest struct {
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt"`
	Category      string     `json:"category"`
	Tags          db.TagList `json:"tags"`
	CoverImage    *string    `json:"cover_image"`
	FeaturedImage *string    `json:"featured_image"`
	Status        string     `json:"status"`
	PublishDate   *string    `json:"publish_date"`
}

type postUpdateRequest struct {
	Title         *string                   `json:"title"`
	Slug          *string                   `json:"slug"`
	Content       *string                   `json:"content"`
	Excerpt       *string                   `json:"excerpt"`
	Category      *string                   `json:"category"`
	Tags          *db.TagList               `json:"tags"`
	CoverImage    service.Optional[*string] `json:"cover_image"`
	FeaturedImage service.Optional[*string] `json:"featured_image"`
	Status        *string                   `json:"status"`
	PublishDate   service.Optional[*string] `json:"publish_date"`
}

func (r postUpdateRequest) toUpdate() service.PostUpdate {
	update := service.PostUpdate{
		Slug:        r.Slug,
		Title:       r.Title,
		Excerpt:     r.Excerpt,
		Content:     r.Content,
		Category:    r.Category,
		Status:      r.Status,
		PublishDate: r.PublishDate,
	}
	if r.Tags != nil {
		tags := []string(*r.Tags)
		update.Tags = &tags
	}
	// cover_image 优先
	switch {
	case r.CoverImage.Set:
		update.CoverImage = r.CoverImage
	case r.FeaturedImage.Set:
		update.CoverImage = r.FeaturedImage
	}
	return update
}

type renderedPost struct {
	Post        db.Post            `json:"post"`
	HTML        string             `json:"html"`
	TOC         []markdown.TOCItem `json:"toc"`
	ReadingTime int                `json:"reading_time"`
	Related     []db.Post          `json:"related"`
}

// ListPosts 获取文章列表，未登录时只返回已发布文章。
func (a *API) ListPosts(c *gin.Context) {
	filter := service.PostFilter{
		Limit:  parseIntQuery(c, "limit"),
		Offset: parseIntQuery(c, "offset"),
	}
	status := strings.TrimSpace(c.Query("status"))
	switch {
	case !a.isAuthenticated(c):
		filter.Status = db.PostStatusPublished
	case db.IsPostStatus(status):
		filter.Status = status
	}

	posts, err := a.posts.List(filter)
	if err != nil {
		a.respondInternal(c, "Failed to fetch posts", err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost 按 id 获取文章。
func (a *API) GetPost(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid post ID")
		return
	}

	post, err := a.posts.GetByID(id)
	if err != nil {
		a.respondPostError(c, err, "Failed to fetch post")
		return
	}
	if post.Status != db.PostStatusPublished && !a.isAuthenticated(c) {
		respondError(c, http.StatusNotFound, "Post not found")
		return
	}
	c.JSON(http.StatusOK, post)
}

// GetPostBySlug 返回渲染后的文章详情，并增加浏览量。
func (a *API) GetPostBySlug(c *gin.Context) {
	post, err := a.posts.GetBySlug(c.Param("slug"))
	if err != nil {
		a.respondPostError(c, err, "Failed to fetch post")
		return
	}
	if post.Status != db.PostStatusPublished && !a.isAuthenticated(c) {
		respondError(c, http.StatusNotFound, "Post not found")
		return
	}

	if post.Status == db.PostStatusPublished {
		if err := a.posts.IncrementViews(post.ID); err != nil {
			a.logger.Warn("increment views failed", zap.Int64("post_id", post.ID), zap.Error(err))
		} else {
			post.Views++
		}
	}

	rendered, err := a.renderer.Render(post.Content, markdown.ParseTheme(c.Query("theme")))
	if err != nil {
		a.respondInternal(c, "Failed to render post", err)
		return
	}

	related, err := a.posts.Related(post, relatedPostLimit)
	if err != nil {
		a.respondInternal(c, "Failed to fetch related posts", err)
		return
	}

	c.JSON(http.StatusOK, renderedPost{
		Post:        *post,
		HTML:        rendered.HTML,
		TOC:         rendered.TOC,
		ReadingTime: rendered.ReadingTime,
		Related:     related,
	})
}

// SearchPosts 全文检索已发布文章。
func (a *API) SearchPosts(c *gin.Context) {
	posts, err := a.posts.Search(c.Query("q"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidSearchQuery) {
			respondError(c, http.StatusBadRequest, "Invalid search query")
			return
		}
		a.respondInternal(c, "Search failed", err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// ListCategories 返回分类及文章数。
func (a *API) ListCategories(c *gin.Context) {
	categories, err := a.posts.Categories()
	if err != nil {
		a.respondInternal(c, "Failed to fetch categories", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// ListCategoryPosts 返回分类下的已发布文章。
func (a *API) ListCategoryPosts(c *gin.Context) {
	posts, err := a.posts.GetByCategory(c.Param("category"))
	if err != nil {
		a.respondInternal(c, "Failed to fetch posts", err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// ListTags 返回标签及出现次数。
func (a *API) ListTags(c *gin.Context) {
	tags, err := a.posts.Tags()
	if err != nil {
		a.respondInternal(c, "Failed to fetch tags", err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// CreatePost 创建新文章
func (a *API) CreatePost(c *gin.Context) {
	var req postRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Slug) == "" || strings.TrimSpace(req.Content) == "" {
		respondError(c, http.StatusBadRequest, "Title, slug, and content are required")
		return
	}
	if req.Status != "" && !db.IsPostStatus(req.Status) {
		respondError(c, http.StatusBadRequest, "Invalid status")
		return
	}
	if _, err := a.posts.GetBySlug(req.Slug); err == nil {
		respondError(c, http.StatusConflict, "A post with this slug already exists")
		return
	}

	cover := req.CoverImage
	if cover == nil {
		cover = req.FeaturedImage
	}
	post, err := a.posts.Create(service.PostInput{
		Slug:        req.Slug,
		Title:       req.Title,
		Excerpt:     req.Excerpt,
		Content:     req.Content,
		Category:    req.Category,
		Tags:        req.Tags,
		CoverImage:  cover,
		Status:      req.Status,
		PublishDate: req.PublishDate,
	})
	if err != nil {
		if service.IsUniqueViolation(err) {
			respondError(c, http.StatusConflict, "A post with this slug already exists")
			return
		}
		a.respondInternal(c, "Failed to create post", err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// UpdatePost 部分更新文章
func (a *API) UpdatePost(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid post ID")
		return
	}

	var req postUpdateRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}
	if req.Status != nil && !db.IsPostStatus(*req.Status) {
		respondError(c, http.StatusBadRequest, "Invalid status")
		return
	}
	if req.Slug != nil {
		if strings.TrimSpace(*req.Slug) == "" {
			respondError(c, http.StatusBadRequest, "Slug cannot be empty")
			return
		}
		if existing, err := a.posts.GetBySlug(*req.Slug); err == nil && existing.ID != id {
			respondError(c, http.StatusConflict, "A post with this slug already exists")
			return
		}
	}

	post, err := a.posts.Update(id, req.toUpdate())
	if err != nil {
		if service.IsUniqueViolation(err) {
			respondError(c, http.StatusConflict, "A post with this slug already exists")
			return
		}
		a.respondPostError(c, err, "Failed to update post")
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost 删除文章
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid post ID")
		return
	}
	if _, err := a.posts.GetByID(id); err != nil {
		a.respondPostError(c, err, "Failed to delete post")
		return
	}
	if err := a.posts.Delete(id); err != nil {
		a.respondInternal(c, "Failed to delete post", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (a *API) respondPostError(c *gin.Context, err error, message string) {
	if errors.Is(err, service.ErrPostNotFound) {
		respondError(c, http.StatusNotFound, "Post not found")
		return
	}
	a.respondInternal(c, message, err)
}
