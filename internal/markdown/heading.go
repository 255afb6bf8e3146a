package markdown

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var tocKey = parser.NewContextKey()

var (
	slugStripPattern    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapsePattern = regexp.MustCompile(`[\s_-]+`)
)

// Slugify 生成标题锚点：小写，去掉非单词字符，空白与连字符合并为单个 "-"，去掉首尾 "-"。
func Slugify(s string) string {
	slug := strings.TrimSpace(strings.ToLower(s))
	slug = slugStripPattern.ReplaceAllString(slug, "")
	slug = slugCollapsePattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// headingIDTransformer 为每个标题分配唯一 id，并在同一次遍历中收集目录。
type headingIDTransformer struct{}

func (headingIDTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	used := make(map[string]bool)
	toc := []TOCItem{}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		label := strings.TrimSpace(headingText(heading, source))
		id := uniqueID(Slugify(label), used)
		heading.SetAttributeString("id", []byte(id))

		if heading.Level >= 2 && heading.Level <= 4 {
			toc = append(toc, TOCItem{Level: heading.Level, ID: id, Text: label})
		}
		return ast.WalkSkipChildren, nil
	})

	pc.Set(tocKey, toc)
}

// uniqueID 重复的 id 依次追加 -2、-3。
func uniqueID(base string, used map[string]bool) string {
	if base == "" {
		base = "section"
	}
	id := base
	for i := 2; used[id]; i++ {
		id = base + "-" + strconv.Itoa(i)
	}
	used[id] = true
	return id
}

func headingText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	collectText(n, source, &buf)
	return buf.String()
}

func collectText(n ast.Node, source []byte, buf *bytes.Buffer) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.AutoLink:
			buf.Write(t.Label(source))
		default:
			collectText(c, source, buf)
		}
	}
}

// headingRenderer 输出带自链接锚点的标题。
type headingRenderer struct {
	html.Config
}

func newHeadingRenderer() renderer.NodeRenderer {
	return &headingRenderer{Config: html.NewConfig()}
}

func (r *headingRenderer) SetOption(name renderer.OptionName, value any) {
	r.Config.SetOption(name, value)
}

func (r *headingRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHeading, r.renderHeading)
}

func (r *headingRenderer) renderHeading(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	if !entering {
		_, _ = w.WriteString("</h")
		_ = w.WriteByte("0123456"[n.Level])
		_, _ = w.WriteString(">\n")
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString("<h")
	_ = w.WriteByte("0123456"[n.Level])

	var id []byte
	if raw, ok := n.AttributeString("id"); ok {
		id, _ = raw.([]byte)
	}
	if len(id) == 0 {
		_ = w.WriteByte('>')
		return ast.WalkContinue, nil
	}

	escaped := util.EscapeHTML(id)
	_, _ = w.WriteString(` id="`)
	_, _ = w.Write(escaped)
	_, _ = w.WriteString(`"><a href="#`)
	_, _ = w.Write(escaped)
	_, _ = w.WriteString(`" class="heading-anchor">#</a>`)
	return ast.WalkContinue, nil
}
