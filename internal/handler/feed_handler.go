package handler

import (
	"bytes"
	"net/http"

	"github.com/folio/internal/db"
	"github.com/folio/internal/feed"
	"github.com/folio/internal/service"
	"github.com/gin-gonic/gin"
)

const feedCacheControl = "public, max-age=3600"

func (a *API) feedSite() (feed.Site, error) {
	meta, err := a.settings.SiteMetadata()
	if err != nil {
		return feed.Site{}, err
	}
	return feed.Site{Title: meta.Title, Description: meta.Description, URL: meta.URL}, nil
}

// RSS 输出最近发布的文章订阅。
func (a *API) RSS(c *gin.Context) {
	site, err := a.feedSite()
	if err != nil {
		a.respondInternal(c, "Failed to build feed", err)
		return
	}
	posts, err := a.posts.List(service.PostFilter{Status: db.PostStatusPublished, Limit: feed.MaxRSSItems})
	if err != nil {
		a.respondInternal(c, "Failed to build feed", err)
		return
	}

	var buf bytes.Buffer
	if err := feed.WriteRSS(&buf, site, posts, a.now()); err != nil {
		a.respondInternal(c, "Failed to build feed", err)
		return
	}
	c.Header("Cache-Control", feedCacheControl)
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", buf.Bytes())
}

// Sitemap 输出站点地图。
func (a *API) Sitemap(c *gin.Context) {
	site, err := a.feedSite()
	if err != nil {
		a.respondInternal(c, "Failed to build sitemap", err)
		return
	}
	posts, err := a.posts.List(service.PostFilter{Status: db.PostStatusPublished})
	if err != nil {
		a.respondInternal(c, "Failed to build sitemap", err)
		return
	}
	projects, err := a.projects.List(db.ProjectStatusPublished)
	if err != nil {
		a.respondInternal(c, "Failed to build sitemap", err)
		return
	}

	var buf bytes.Buffer
	if err := feed.WriteSitemap(&buf, site, posts, projects); err != nil {
		a.respondInternal(c, "Failed to build sitemap", err)
		return
	}
	c.Header("Cache-Control", feedCacheControl)
	c.Data(http.StatusOK, "application/xml; charset=utf-8", buf.Bytes())
}

// Healthz 存活检查
func (a *API) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
