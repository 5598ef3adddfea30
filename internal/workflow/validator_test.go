package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"article-writer-api/internal/domain/entity"
)

func findStage(t *testing.T, name string) Stage {
	t.Helper()
	for _, s := range Stages() {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("unknown stage %q", name)
	return Stage{}
}

func TestRunStageMathSkippedWithoutFormula(t *testing.T) {
	gen := newFakeGenerator("", 9.0)
	f := newEngineFixture(gen, testConfig())

	state := NewArticleState("s", "a", nil)
	state.Content = "# 纯文字文章\n\n没有任何公式。"

	err := f.engine.runStage(context.Background(), findStage(t, "math"), state)
	require.NoError(t, err)

	// 跳过：记满分、写说明、不调 LLM、不落日志
	assert.False(t, state.HasMath)
	assert.Equal(t, 10.0, state.Scores["math"])
	assert.Equal(t, "No mathematical content to validate", state.Feedback["math"]["feedback"])
	assert.Zero(t, gen.validateCalls["math"])
	assert.Empty(t, f.logs.logs)
}

func TestRunStageCodeSkippedWithoutCodeBlock(t *testing.T) {
	gen := newFakeGenerator("", 9.0)
	f := newEngineFixture(gen, testConfig())

	state := NewArticleState("s", "a", nil)
	state.Content = "# 纯文字文章\n\n没有代码。"

	err := f.engine.runStage(context.Background(), findStage(t, "code"), state)
	require.NoError(t, err)

	assert.False(t, state.HasCode)
	assert.Equal(t, 10.0, state.Scores["code"])
	assert.Equal(t, "No code content to validate", state.Feedback["code"]["feedback"])
	assert.Zero(t, gen.validateCalls["code"])
}

func TestRunStageMathAppliesWithFormula(t *testing.T) {
	gen := newFakeGenerator("", 9.0)
	f := newEngineFixture(gen, testConfig())

	state := NewArticleState("s", "a", nil)
	state.Content = "质能方程 $E=mc^2$ 很有名。"

	err := f.engine.runStage(context.Background(), findStage(t, "math"), state)
	require.NoError(t, err)

	assert.True(t, state.HasMath)
	assert.Equal(t, 1, gen.validateCalls["math"])
	assert.Equal(t, 9.0, state.Scores["math"])
	require.Len(t, f.logs.logs, 1)
	assert.Equal(t, entity.ValidationStatusPassed, f.logs.logs[0].Status)
}

func TestRunStageFailureRecordsRetry(t *testing.T) {
	gen := newFakeGenerator("", 9.0)
	gen.scores["grammar"] = []float64{6.0}
	f := newEngineFixture(gen, testConfig())

	state := NewArticleState("s", "a", nil)
	state.Content = "正文。"

	err := f.engine.runStage(context.Background(), findStage(t, "grammar"), state)
	require.NoError(t, err)

	assert.Equal(t, []string{"grammar"}, state.FailedNodes)
	assert.Equal(t, 1, state.RetryCounts["grammar"])
	assert.Equal(t, StatusProcessing, state.Status)

	require.Len(t, f.logs.logs, 1)
	assert.Equal(t, entity.ValidationStatusFailed, f.logs.logs[0].Status)
	assert.Equal(t, 6.0, f.logs.logs[0].Score)
}

func TestRunStageRetryExhaustionMarksFailed(t *testing.T) {
	gen := newFakeGenerator("", 9.0)
	gen.scores["grammar"] = []float64{6.0}
	f := newEngineFixture(gen, testConfig())

	state := NewArticleState("s", "a", nil)
	state.Content = "正文。"
	state.RetryCounts["grammar"] = 4 // 下一次失败即达上限

	err := f.engine.runStage(context.Background(), findStage(t, "grammar"), state)
	require.NoError(t, err)

	// 置 failed 但不中断本轮
	assert.Equal(t, StatusFailed, state.Status)
	assert.Contains(t, state.Error, "grammar validation failed after 5 retries")
	assert.Equal(t, 5, state.RetryCounts["grammar"])
}

func TestRunStageLLMErrorMarksError(t *testing.T) {
	gen := newFakeGenerator("", 9.0)
	gen.validateErr["depth"] = errors.New("llm timeout")
	f := newEngineFixture(gen, testConfig())

	state := NewArticleState("s", "a", nil)
	state.Content = "正文。"

	err := f.engine.runStage(context.Background(), findStage(t, "depth"), state)
	require.Error(t, err)
	assert.Equal(t, StatusError, state.Status)
	assert.Contains(t, state.Error, "llm timeout")
}

func TestRunStageLengthEnrichesMetadata(t *testing.T) {
	gen := newFakeGenerator("", 9.0)
	f := newEngineFixture(gen, testConfig())
	gen.scores["length"] = []float64{8.5}

	state := NewArticleState("s", "a", nil)
	state.Content = "正文。"

	err := f.engine.runStage(context.Background(), findStage(t, "length"), state)
	require.NoError(t, err)

	// fake 不返回 word_count，提取后按零值与 N/A 兜底
	assert.Equal(t, 0, state.Metadata["word_count"])
	assert.Equal(t, "N/A", state.Metadata["read_time"])
}

func TestRunStageReadabilityEnrichesMetadata(t *testing.T) {
	gen := newFakeGenerator("", 9.0)
	gen.extras = map[string]map[string]any{
		"readability": {
			"flesch_reading_ease": 65.2,
			"gunning_fog_index":   10.1,
		},
	}
	f := newEngineFixture(gen, testConfig())

	state := NewArticleState("s", "a", nil)
	state.Content = "正文。"

	err := f.engine.runStage(context.Background(), findStage(t, "readability"), state)
	require.NoError(t, err)

	assert.Equal(t, 65.2, state.Metadata["flesch_reading_ease"])
	assert.Equal(t, 10.1, state.Metadata["gunning_fog_index"])
}

func TestRunStageReadabilityMissingMetricsDefaultZero(t *testing.T) {
	gen := newFakeGenerator("", 9.0)
	f := newEngineFixture(gen, testConfig())

	state := NewArticleState("s", "a", nil)
	state.Content = "正文。"

	err := f.engine.runStage(context.Background(), findStage(t, "readability"), state)
	require.NoError(t, err)

	assert.Equal(t, 0.0, state.Metadata["flesch_reading_ease"])
	assert.Equal(t, 0.0, state.Metadata["gunning_fog_index"])
}

func TestScoreFromResult(t *testing.T) {
	tests := []struct {
		name   string
		result map[string]any
		want   float64
	}{
		{"浮点评分", map[string]any{"score": 8.5}, 8.5},
		{"整数评分", map[string]any{"score": 8}, 8.0},
		{"缺失评分", map[string]any{"feedback": "ok"}, 0.0},
		{"非数值评分", map[string]any{"score": "high"}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoreFromResult(tt.result))
		})
	}
}

func TestFeedbackFromResult(t *testing.T) {
	fb := feedbackFromResult(map[string]any{
		"feedback":    "结构清晰",
		"issues":      []any{"缺少结尾", 42},
		"suggestions": []any{"补充总结"},
	}, 8.0, true)

	assert.Equal(t, "结构清晰", fb.Summary)
	assert.Equal(t, []string{"缺少结尾"}, fb.Issues)
	assert.Equal(t, []string{"补充总结"}, fb.Suggestions)
	assert.True(t, fb.Passed)
}
