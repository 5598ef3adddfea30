package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"一级标题", "# Go 并发模型\n\n正文", "Go 并发模型"},
		{"标题不在首行", "前言\n\n# 真正的标题\n正文", "真正的标题"},
		{"只有二级标题", "## 小节\n正文", ""},
		{"无标题", "纯正文内容", ""},
		{"标题带空白", "#   带空格的标题  \n正文", "带空格的标题"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTitle(tt.content))
		})
	}
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 3, WordCount("one two three"))
	assert.Equal(t, 2, WordCount("  hello\n\tworld  "))
}

func TestHasMath(t *testing.T) {
	assert.True(t, HasMath("质能方程 $E=mc^2$ 很有名"))
	assert.True(t, HasMath("块级公式：\n$$\n\\int_0^1 x dx\n$$"))
	assert.False(t, HasMath("这里只提到美元符号 $ 一次"))
	assert.False(t, HasMath("没有公式"))
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode("示例：\n```go\nfmt.Println(\"hi\")\n```"))
	assert.False(t, HasCode("只有 `行内代码` 不算"))
	assert.False(t, HasCode("```未闭合的围栏"))
}

func TestTruncateByRunes(t *testing.T) {
	assert.Equal(t, "", TruncateByRunes("abc", 0))
	assert.Equal(t, "abc", TruncateByRunes("abc", 5))
	assert.Equal(t, "ab", TruncateByRunes("abcd", 2))
	// 多字节字符按 rune 截断，不能截出半个汉字
	assert.Equal(t, "你好", TruncateByRunes("你好世界", 2))
}
