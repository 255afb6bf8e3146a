package markdown

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// chroma 内联样式只包含颜色、字重等简单声明
var inlineStylePattern = regexp.MustCompile(`^[a-zA-Z0-9:;#%.,()\s-]*$`)

// newPolicy 在 UGC 策略基础上放行高亮代码与标题锚点需要的属性。
func newPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(false)
	policy.AllowStyling()

	policy.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	policy.AllowAttrs("rel").OnElements("a")

	policy.AllowAttrs("style").Matching(inlineStylePattern).OnElements("pre", "code", "span", "th", "td")
	policy.AllowAttrs("tabindex").Matching(bluemonday.Integer).OnElements("pre")

	policy.AllowAttrs("data-language").OnElements("div")
	policy.AllowAttrs("type").Matching(regexp.MustCompile(`^button$`)).OnElements("button")
	policy.AllowAttrs("data-copy").OnElements("button")

	// GFM 任务列表
	policy.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	policy.AllowAttrs("checked", "disabled").OnElements("input")

	return policy
}
