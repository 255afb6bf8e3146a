package handler

import (
	"net/http"
	"strings"

	"github.com/folio/internal/db"
	"github.com/gin-gonic/gin"
)

// GetSiteMetadata 返回公开的站点信息。
func (a *API) GetSiteMetadata(c *gin.Context) {
	meta, err := a.settings.SiteMetadata()
	if err != nil {
		a.respondInternal(c, "Failed to fetch settings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"title":       meta.Title,
		"description": meta.Description,
		"url":         meta.URL,
	})
}

// GetSettings 返回全部设置项。
func (a *API) GetSettings(c *gin.Context) {
	settings, err := a.settings.All()
	if err != nil {
		a.respondInternal(c, "Failed to fetch settings", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings 逐项 upsert 请求体中的键值。
func (a *API) UpdateSettings(c *gin.Context) {
	var req map[string]string
	if !bindJSON(c, &req, "Settings must be an object of string values") {
		return
	}
	for key := range req {
		if strings.TrimSpace(key) == "" {
			respondError(c, http.StatusBadRequest, "Setting key cannot be empty")
			return
		}
	}

	if err := a.settings.SetMany(req); err != nil {
		a.respondInternal(c, "Failed to update settings", err)
		return
	}
	settings, err := a.settings.All()
	if err != nil {
		a.respondInternal(c, "Failed to fetch settings", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Dashboard 汇总后台首页需要的计数。
func (a *API) Dashboard(c *gin.Context) {
	counts := make(map[string]int64)
	for key, status := range map[string]string{
		"total_posts":     "",
		"published_posts": db.PostStatusPublished,
		"draft_posts":     db.PostStatusDraft,
		"scheduled_posts": db.PostStatusScheduled,
	} {
		n, err := a.posts.Count(status)
		if err != nil {
			a.respondInternal(c, "Failed to load dashboard", err)
			return
		}
		counts[key] = n
	}

	projects, err := a.projects.Count("")
	if err != nil {
		a.respondInternal(c, "Failed to load dashboard", err)
		return
	}
	views, err := a.posts.TotalViews()
	if err != nil {
		a.respondInternal(c, "Failed to load dashboard", err)
		return
	}
	counts["total_projects"] = projects
	counts["total_views"] = views

	c.JSON(http.StatusOK, counts)
}
