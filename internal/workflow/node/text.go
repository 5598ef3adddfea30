package node

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	titleRe = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	mathRe  = regexp.MustCompile(`(?s)\$.*?\$`)
	codeRe  = regexp.MustCompile("(?s)```.*?```")
)

// ExtractTitle 从 markdown 内容中提取第一个一级标题；没有则返回空串
func ExtractTitle(content string) string {
	m := titleRe.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// WordCount 按空白分词统计词数
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// HasMath 判断内容是否包含 LaTeX 数学片段（$...$ 或 $$...$$）
func HasMath(content string) bool {
	return mathRe.MatchString(content)
}

// HasCode 判断内容是否包含围栏代码块
func HasCode(content string) bool {
	return codeRe.MatchString(content)
}

// TruncateByRunes 按 rune 数截断字符串
func TruncateByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}
