package node

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"纯 JSON 原样返回",
			`{"score": 8.5, "feedback": "ok"}`,
			`{"score": 8.5, "feedback": "ok"}`,
		},
		{
			"前后夹杂说明文字",
			"评审结果如下：\n{\"score\": 7.0}\n以上。",
			`{"score": 7.0}`,
		},
		{
			"markdown 围栏包裹",
			"```json\n{\"score\": 9.0}\n```",
			`{"score": 9.0}`,
		},
		{
			"JSON 数组",
			"列表：[1, 2, 3] 完",
			`[1, 2, 3]`,
		},
		{
			"对象先于数组出现",
			`{"items": [1, 2]} 尾注`,
			`{"items": [1, 2]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSONObject(tt.input)
			assert.Equal(t, tt.want, got)
			assert.True(t, json.Valid([]byte(got)))
		})
	}
}

func TestExtractJSONObjectGarbageFallsBack(t *testing.T) {
	// 完全没有 JSON 时退回原始文本（去除首尾空白由调用方处理）
	got := ExtractJSONObject("模型没有按要求输出")
	assert.Equal(t, "模型没有按要求输出", got)
}

func TestExtractJSONObjectUnmarshalable(t *testing.T) {
	got := ExtractJSONObject("噪声 {\"score\": 8.0, \"issues\": [\"a\", \"b\"]} 噪声")

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(got), &result))
	assert.Equal(t, 8.0, result["score"])
}
