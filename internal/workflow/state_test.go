package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArticleStateExtractsRequirements(t *testing.T) {
	state := NewArticleState("sess-1", "article_abc", map[string]any{
		"topic":           "Go 并发模型",
		"author":          "张三",
		"target_audience": "后端工程师",
		"article_type":    "技术深度",
		"tone":            "严谨",
		"extra":           42,
	})

	assert.Equal(t, "sess-1", state.SessionID)
	assert.Equal(t, "article_abc", state.ArticleID)
	assert.Equal(t, "Go 并发模型", state.Topic)
	assert.Equal(t, "张三", state.Author)
	assert.Equal(t, "后端工程师", state.TargetAudience)
	assert.Equal(t, "技术深度", state.ArticleType)
	assert.Equal(t, "严谨", state.Tone)
	assert.Equal(t, StatusProcessing, state.Status)

	// 元数据预填需求字段
	assert.Equal(t, "Go 并发模型", state.Metadata["topic"])
	assert.Equal(t, "后端工程师", state.Metadata["target_audience"])
}

func TestCloneIsDeepCopy(t *testing.T) {
	state := NewArticleState("sess-1", "article_abc", map[string]any{"topic": "测试"})
	state.Scores["grammar"] = 8.0
	state.RetryCounts["grammar"] = 1
	state.FailedNodes = []string{"grammar"}
	state.Feedback["grammar"] = map[string]any{"score": 8.0}

	clone := state.Clone()
	clone.Scores["grammar"] = 3.0
	clone.RetryCounts["grammar"] = 9
	clone.FailedNodes[0] = "depth"
	clone.Feedback["grammar"]["score"] = 3.0
	clone.Requirements["topic"] = "改写"
	clone.Metadata["topic"] = "改写"

	assert.Equal(t, 8.0, state.Scores["grammar"])
	assert.Equal(t, 1, state.RetryCounts["grammar"])
	assert.Equal(t, []string{"grammar"}, state.FailedNodes)
	assert.Equal(t, 8.0, state.Feedback["grammar"]["score"])
	assert.Equal(t, "测试", state.Requirements["topic"])
	assert.Equal(t, "测试", state.Metadata["topic"])
}

func TestSnapshotRoundTrip(t *testing.T) {
	state := NewArticleState("sess-1", "article_abc", map[string]any{"topic": "测试"})
	state.Content = "# 正文"
	state.Title = "正文"
	state.Scores["grammar"] = 8.0
	state.Iteration = 2
	state.HasMath = true

	data, err := state.Snapshot()
	require.NoError(t, err)

	restored, err := StateFromSnapshot(data)
	require.NoError(t, err)

	assert.Equal(t, state.SessionID, restored.SessionID)
	assert.Equal(t, state.ArticleID, restored.ArticleID)
	assert.Equal(t, state.Content, restored.Content)
	assert.Equal(t, state.Scores, restored.Scores)
	assert.Equal(t, state.Iteration, restored.Iteration)
	assert.True(t, restored.HasMath)
}

func TestStateFromSnapshotRestoresEmptyMaps(t *testing.T) {
	// 快照里缺失的 map/slice 字段恢复后必须可直接写入
	restored, err := StateFromSnapshot([]byte(`{"session_id":"s","article_id":"a"}`))
	require.NoError(t, err)

	restored.Scores["grammar"] = 8.0
	restored.RetryCounts["grammar"] = 1
	restored.Metadata["topic"] = "测试"
	restored.Requirements["topic"] = "测试"
	restored.Feedback["grammar"] = map[string]any{"score": 8.0}
	assert.NotNil(t, restored.FailedNodes)
}

func TestApplyOverrides(t *testing.T) {
	state := NewArticleState("sess-1", "article_abc", map[string]any{"topic": "旧题目"})
	state.Content = "旧正文"

	state.ApplyOverrides(map[string]any{
		"topic":   "新题目",
		"content": "新正文",
		"tone":    "轻松",
		"unknown": "忽略",
		"author":  123, // 类型不符也忽略
	})

	assert.Equal(t, "新题目", state.Topic)
	assert.Equal(t, "新题目", state.Requirements["topic"])
	assert.Equal(t, "新题目", state.Metadata["topic"])
	assert.Equal(t, "新正文", state.Content)
	assert.Equal(t, "轻松", state.Tone)
	assert.Equal(t, "", state.Author)
	_, exists := state.Requirements["unknown"]
	assert.False(t, exists)
}

func TestMarkError(t *testing.T) {
	state := NewArticleState("sess-1", "article_abc", nil)
	state.MarkError(assert.AnError)

	assert.Equal(t, StatusError, state.Status)
	assert.Equal(t, assert.AnError.Error(), state.Error)
}
