package feed

import (
	"encoding/xml"
	"io"
	"time"

	"github.com/folio/internal/db"
)

// MaxRSSItems RSS 中最多包含的文章数
const MaxRSSItems = 20

type rssXML struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	AtomXMLNS string     `xml:"xmlns:atom,attr"`
	Channel   rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	AtomLink      atomLink  `xml:"atom:link"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
	Description string  `xml:"description"`
	PubDate     string  `xml:"pubDate,omitempty"`
	Category    string  `xml:"category,omitempty"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// WriteRSS 输出文章订阅，posts 应为已发布文章且已按时间倒序排列。
func WriteRSS(w io.Writer, site Site, posts []db.Post, now time.Time) error {
	if len(posts) > MaxRSSItems {
		posts = posts[:MaxRSSItems]
	}

	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		link := joinURL(site.URL, "blog", p.Slug)
		item := rssItem{
			Title:       p.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: "true", Value: link},
			Description: p.Excerpt,
			Category:    p.Category,
		}
		published := firstNonEmpty(p.PublishDate, &p.CreatedAt)
		if t, ok := ParseTime(published); ok {
			item.PubDate = t.Format(time.RFC1123Z)
		}
		items = append(items, item)
	}

	doc := rssXML{
		Version:   "2.0",
		AtomXMLNS: "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:       site.Title,
			Link:        site.URL,
			Description: site.Description,
			AtomLink: atomLink{
				Href: joinURL(site.URL, "rss.xml"),
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Language:      "en-us",
			LastBuildDate: now.UTC().Format(time.RFC1123Z),
			Items:         items,
		},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(doc)
}
