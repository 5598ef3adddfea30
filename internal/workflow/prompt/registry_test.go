package prompt

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorPromptID(t *testing.T) {
	tests := []struct {
		stage string
		want  PromptID
	}{
		{"structure", PromptValidatorStructureV1},
		{"language", PromptValidatorLanguageV1},
		{"grammar", PromptValidatorGrammarV1},
		{"length", PromptValidatorLengthV1},
		{"math", PromptValidatorMathV1},
		{"depth", PromptValidatorDepthV1},
		{"readability", PromptValidatorReadabilityV1},
		{"code", PromptValidatorCodeV1},
	}
	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			got, err := ValidatorPromptID(tt.stage)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ValidatorPromptID("unknown")
	assert.Error(t, err)
}

func TestFormatValidatorPrompt(t *testing.T) {
	r := NewRegistry()

	msgs, err := r.Format(context.Background(), PromptValidatorGrammarV1, map[string]any{
		"topic":           "Go 并发模型",
		"target_audience": "后端工程师",
		"article_type":    "技术深度",
		"content":         "# 正文\n\n内容。",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	// system 原样使用：内嵌 JSON 输出示例的字面量花括号必须完整保留
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, `"score": <float>`)
	assert.Contains(t, msgs[0].Content, "{")

	// user 模板完成变量替换
	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "Topic: Go 并发模型")
	assert.Contains(t, msgs[1].Content, "# 正文")
	assert.NotContains(t, msgs[1].Content, "{topic}")
}

func TestFormatChatPromptSystemOnly(t *testing.T) {
	r := NewRegistry()

	msgs, err := r.Format(context.Background(), PromptChatV1, nil)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.NotEmpty(t, msgs[0].Content)
}

func TestFormatUnknownPrompt(t *testing.T) {
	r := NewRegistry()

	_, err := r.Format(context.Background(), PromptID("nope"), nil)
	assert.Error(t, err)
}

func TestSystemText(t *testing.T) {
	r := NewRegistry()

	text, err := r.SystemText(PromptChatV1)
	require.NoError(t, err)
	assert.NotEmpty(t, text)

	// 二次读取命中缓存，内容一致
	again, err := r.SystemText(PromptChatV1)
	require.NoError(t, err)
	assert.Equal(t, text, again)
}
