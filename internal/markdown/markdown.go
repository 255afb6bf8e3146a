// Package markdown 将文章的 markdown 源文本渲染为可直接展示的 HTML，
// 同时产出目录与阅读时长。
package markdown

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Theme 选择代码高亮的配色。
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// chroma 样式名
const (
	lightStyle = "github"
	darkStyle  = "github-dark"
)

// ParseTheme 将任意输入归一到 light / dark，未知值按 light 处理。
func ParseTheme(s string) Theme {
	if Theme(s) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// TOCItem 目录项，只收集 2 到 4 级标题。
type TOCItem struct {
	Level int    `json:"level"`
	ID    string `json:"id"`
	Text  string `json:"text"`
}

// Rendered 是一次渲染的结果。
type Rendered struct {
	HTML        string    `json:"html"`
	TOC         []TOCItem `json:"toc"`
	ReadingTime int       `json:"reading_time"`
}

// Renderer 持有两套配色的 goldmark 实例与清洗策略，可并发使用。
type Renderer struct {
	light  goldmark.Markdown
	dark   goldmark.Markdown
	policy *bluemonday.Policy
}

// NewRenderer 构建渲染器。
func NewRenderer() *Renderer {
	return &Renderer{
		light:  newMarkdown(lightStyle),
		dark:   newMarkdown(darkStyle),
		policy: newPolicy(),
	}
}

func newMarkdown(style string) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(headingIDTransformer{}, 100)),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			renderer.WithNodeRenderers(
				util.Prioritized(newHeadingRenderer(), 100),
				util.Prioritized(newLinkRenderer(), 100),
				util.Prioritized(newCodeBlockRenderer(style), 100),
			),
		),
	)
}

// Render 渲染 markdown。阅读时长基于源文本而非生成的 HTML 计算。
func (r *Renderer) Render(source string, theme Theme) (Rendered, error) {
	md := r.light
	if theme == ThemeDark {
		md = r.dark
	}

	ctx := parser.NewContext()
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf, parser.WithContext(ctx)); err != nil {
		return Rendered{}, fmt.Errorf("render markdown: %w", err)
	}

	toc, _ := ctx.Get(tocKey).([]TOCItem)
	if toc == nil {
		toc = []TOCItem{}
	}

	return Rendered{
		HTML:        r.policy.Sanitize(buf.String()),
		TOC:         toc,
		ReadingTime: ReadingTime(source),
	}, nil
}
