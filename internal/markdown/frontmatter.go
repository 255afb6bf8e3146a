package markdown

import (
	"math"
	"regexp"
	"strings"
)

const wordsPerMinute = 200

var frontmatterPattern = regexp.MustCompile(`(?s)\A---\n(.*?)\n---\n(.*)\z`)

// ParseFrontmatter 拆分 "---" 包裹的头部键值与正文。没有头部时返回空 map 与原文。
// 每行按第一个冒号拆分，值两端的引号会被去掉。
func ParseFrontmatter(source string) (map[string]string, string) {
	normalized := strings.ReplaceAll(source, "\r\n", "\n")
	meta := make(map[string]string)

	m := frontmatterPattern.FindStringSubmatch(normalized)
	if m == nil {
		return meta, source
	}

	for _, line := range strings.Split(m[1], "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		meta[strings.TrimSpace(key)] = trimQuotes(strings.TrimSpace(value))
	}
	return meta, m[2]
}

func trimQuotes(s string) string {
	if strings.HasPrefix(s, `"`) || strings.HasPrefix(s, `'`) {
		s = s[1:]
	}
	if strings.HasSuffix(s, `"`) || strings.HasSuffix(s, `'`) {
		s = s[:len(s)-1]
	}
	return s
}

// ReadingTime 按每分钟 200 词估算，最少 1 分钟。
func ReadingTime(source string) int {
	words := len(strings.Fields(source))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}
