package feed

import (
	"encoding/xml"
	"io"
	"strconv"

	"github.com/folio/internal/db"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

var staticPages = []sitemapURL{
	{Loc: "", Priority: "1.0", ChangeFreq: "weekly"},
	{Loc: "/blog", Priority: "0.9", ChangeFreq: "daily"},
	{Loc: "/projects", Priority: "0.8", ChangeFreq: "monthly"},
	{Loc: "/about", Priority: "0.7", ChangeFreq: "monthly"},
}

// WriteSitemap 输出站点地图：固定页面、已发布文章与项目锚点。
func WriteSitemap(w io.Writer, site Site, posts []db.Post, projects []db.Project) error {
	urls := make([]sitemapURL, 0, len(staticPages)+len(posts)+len(projects))
	for _, page := range staticPages {
		page.Loc = site.URL + page.Loc
		urls = append(urls, page)
	}

	for _, p := range posts {
		entry := sitemapURL{
			Loc:        joinURL(site.URL, "blog", p.Slug),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		}
		if t, ok := ParseTime(firstNonEmpty(&p.UpdatedAt, p.PublishDate, &p.CreatedAt)); ok {
			entry.LastMod = t.Format("2006-01-02")
		}
		urls = append(urls, entry)
	}

	for _, p := range projects {
		urls = append(urls, sitemapURL{
			Loc:        site.URL + "/projects#" + strconv.FormatInt(p.ID, 10),
			ChangeFreq: "monthly",
			Priority:   "0.6",
		})
	}

	doc := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(doc)
}
