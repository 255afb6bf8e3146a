package markdown

import (
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

const (
	defaultLanguage = "text"
	codeTabWidth    = 4
)

// 允许高亮的语言（含常用别名），其余语言按纯文本输出。
var supportedLanguages = map[string]bool{
	"typescript": true, "ts": true,
	"javascript": true, "js": true,
	"jsx": true, "tsx": true,
	"json": true, "html": true, "css": true,
	"bash": true, "sh": true, "shell": true,
	"python": true, "py": true,
	"go":   true,
	"rust": true,
	"sql":  true,
	"yaml": true, "yml": true,
	"markdown": true, "md": true,
	"dockerfile": true,
	"text":       true,
}

// codeBlockRenderer 在 goldmark-highlighting 外包一层：
// 白名单内的语言交给 chroma 高亮并套上带复制按钮的容器，其余退化为转义后的 <pre><code>。
type codeBlockRenderer struct {
	html.Config
	highlighter renderer.NodeRenderer
	highlight   renderer.NodeRendererFunc
}

func newCodeBlockRenderer(style string) renderer.NodeRenderer {
	r := &codeBlockRenderer{
		Config: html.NewConfig(),
		highlighter: highlighting.NewHTMLRenderer(
			highlighting.WithStyle(style),
			highlighting.WithGuessLanguage(false),
			highlighting.WithFormatOptions(chromahtml.TabWidth(codeTabWidth)),
			highlighting.WithWrapperRenderer(renderCodeWrapper),
		),
	}
	capture := &funcCapture{}
	r.highlighter.RegisterFuncs(capture)
	r.highlight = capture.funcs[ast.KindFencedCodeBlock]
	return r
}

func (r *codeBlockRenderer) SetOption(name renderer.OptionName, value any) {
	r.Config.SetOption(name, value)
	if so, ok := r.highlighter.(renderer.SetOptioner); ok {
		so.SetOption(name, value)
	}
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.FencedCodeBlock)
	lang := normalizeLanguage(n.Language(source))
	if supportedLanguages[lang] && r.highlight != nil {
		return r.highlight(w, source, node, entering)
	}
	if !entering {
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString(`<pre><code class="language-`)
	_, _ = w.Write(util.EscapeHTML([]byte(lang)))
	_, _ = w.WriteString(`">`)
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		r.Writer.RawWrite(w, line.Value(source))
	}
	_, _ = w.WriteString("</code></pre>\n")
	return ast.WalkContinue, nil
}

func normalizeLanguage(lang []byte) string {
	s := strings.ToLower(strings.TrimSpace(string(lang)))
	if s == "" {
		return defaultLanguage
	}
	return s
}

// renderCodeWrapper 输出代码块外层容器。chroma 未能高亮时自行补上 <pre><code>。
func renderCodeWrapper(w util.BufWriter, ctx highlighting.CodeBlockContext, entering bool) {
	raw, _ := ctx.Language()
	lang := util.EscapeHTML([]byte(normalizeLanguage(raw)))

	if !entering {
		if !ctx.Highlighted() {
			_, _ = w.WriteString("</code></pre>")
		}
		_, _ = w.WriteString("</div>\n")
		return
	}

	_, _ = w.WriteString(`<div class="code-block" data-language="`)
	_, _ = w.Write(lang)
	_, _ = w.WriteString(`"><div class="code-header"><span class="code-language">`)
	_, _ = w.Write(lang)
	_, _ = w.WriteString(`</span><button type="button" class="copy-button" data-copy>Copy</button></div>`)
	if !ctx.Highlighted() {
		_, _ = w.WriteString(`<pre><code class="language-`)
		_, _ = w.Write(lang)
		_, _ = w.WriteString(`">`)
	}
}

// funcCapture 截获其他 NodeRenderer 注册的渲染函数，便于按条件委托。
type funcCapture struct {
	funcs map[ast.NodeKind]renderer.NodeRendererFunc
}

func (c *funcCapture) Register(kind ast.NodeKind, fn renderer.NodeRendererFunc) {
	if c.funcs == nil {
		c.funcs = make(map[ast.NodeKind]renderer.NodeRendererFunc)
	}
	c.funcs[kind] = fn
}
