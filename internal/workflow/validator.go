package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"article-writer-api/internal/domain/entity"
	"article-writer-api/internal/workflow/node"
	"article-writer-api/pkg/logger"
	"article-writer-api/pkg/metrics"
)

// Stage 校验节点定义。所有节点共享同一套执行契约，
// 差异只体现在适用条件与元数据写回上。
type Stage struct {
	// Name 节点短名，同时是评分/反馈/重试计数的键
	Name string

	// Applies 适用性判定；不适用的节点记满分并跳过 LLM 调用。nil 表示总是适用
	Applies func(s *ArticleState) bool

	// SkipFeedback 不适用时写入反馈的说明
	SkipFeedback string

	// Enrich 评审通过后从判定中提取元数据写回状态
	Enrich func(s *ArticleState, result map[string]any)
}

// Stages 固定顺序的校验节点序列
func Stages() []Stage {
	return []Stage{
		{Name: "structure"},
		{Name: "language"},
		{Name: "grammar"},
		{Name: "length", Enrich: func(s *ArticleState, result map[string]any) {
			s.Metadata["word_count"] = intFromAny(result["word_count"])
			if v, ok := result["estimated_read_time"].(string); ok {
				s.Metadata["read_time"] = v
			} else {
				s.Metadata["read_time"] = "N/A"
			}
		}},
		{Name: "math",
			Applies: func(s *ArticleState) bool {
				s.HasMath = node.HasMath(s.Content)
				return s.HasMath
			},
			SkipFeedback: "No mathematical content to validate",
			Enrich: func(s *ArticleState, result map[string]any) {
				s.Metadata["equation_count"] = intFromAny(result["equation_count"])
			}},
		{Name: "depth"},
		{Name: "readability", Enrich: func(s *ArticleState, result map[string]any) {
			s.Metadata["flesch_reading_ease"] = floatFromAny(result["flesch_reading_ease"])
			s.Metadata["gunning_fog_index"] = floatFromAny(result["gunning_fog_index"])
		}},
		{Name: "code",
			Applies: func(s *ArticleState) bool {
				s.HasCode = node.HasCode(s.Content)
				return s.HasCode
			},
			SkipFeedback: "No code content to validate",
			Enrich: func(s *ArticleState, result map[string]any) {
				s.Metadata["code_block_count"] = intFromAny(result["code_block_count"])
			}},
	}
}

// runStage 执行单个校验节点。
// 契约：写评分与反馈；记录校验日志；低于阈值时登记失败节点并累加重试；
// 重试耗尽置 failed（不中断本轮）；LLM 调用失败置 error 并返回。
func (e *Engine) runStage(ctx context.Context, stage Stage, state *ArticleState) error {
	state.CurrentNode = stage.Name

	if stage.Applies != nil && !stage.Applies(state) {
		logger.Info(ctx, "validation skipped, not applicable",
			"article_id", state.ArticleID, "node", stage.Name)
		state.Scores[stage.Name] = 10.0
		state.Feedback[stage.Name] = map[string]any{
			"score":    10.0,
			"feedback": stage.SkipFeedback,
		}
		return nil
	}

	result, err := e.generator.ValidateContent(ctx, stage.Name, state)
	if err != nil {
		logger.Error(ctx, "validation call failed", err,
			"article_id", state.ArticleID, "node", stage.Name)
		state.MarkError(err)
		metrics.ValidationTotal.WithLabelValues(stage.Name, "error").Inc()
		return err
	}

	score := scoreFromResult(result)
	state.Scores[stage.Name] = score
	state.Feedback[stage.Name] = result

	if stage.Enrich != nil {
		stage.Enrich(state, result)
	}

	passed := score >= e.cfg.MinScoreThreshold
	feedback := feedbackFromResult(result, score, passed)
	log := entity.NewValidationLog(
		state.ArticleID, stage.Name, score, feedback,
		state.RetryCounts[stage.Name], passed,
	)
	if err := e.logs.Append(ctx, log); err != nil {
		logger.Warn(ctx, "failed to persist validation log", "error", err,
			"article_id", state.ArticleID, "node", stage.Name)
	}

	metrics.ValidationScore.WithLabelValues(stage.Name).Observe(score)
	if passed {
		metrics.ValidationTotal.WithLabelValues(stage.Name, "passed").Inc()
	} else {
		metrics.ValidationTotal.WithLabelValues(stage.Name, "failed").Inc()
	}

	e.notifier.SendNodeUpdate(state.SessionID, stage.Name, score)

	if !passed {
		state.FailedNodes = append(state.FailedNodes, stage.Name)
		state.RetryCounts[stage.Name]++

		if state.RetryCounts[stage.Name] >= e.cfg.MaxRetries {
			state.Status = StatusFailed
			state.Error = fmt.Sprintf("%s validation failed after %d retries", stage.Name, e.cfg.MaxRetries)
			logger.Error(ctx, "validation retries exhausted", fmt.Errorf("%s", state.Error),
				"article_id", state.ArticleID, "node", stage.Name)
		}
	}

	logger.Info(ctx, "validation completed",
		"article_id", state.ArticleID, "node", stage.Name, "score", score, "passed", passed)
	return nil
}

// scoreFromResult 提取评分；缺失或非数值按 0.0 处理
func scoreFromResult(result map[string]any) float64 {
	switch v := result["score"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0.0
		}
		return f
	default:
		return 0.0
	}
}

func feedbackFromResult(result map[string]any, score float64, passed bool) *entity.ValidationFeedback {
	fb := &entity.ValidationFeedback{Score: score, Passed: passed}
	if v, ok := result["feedback"].(string); ok {
		fb.Summary = v
	}
	fb.Issues = stringsFromAny(result["issues"])
	fb.Suggestions = stringsFromAny(result["suggestions"])
	return fb
}

func stringsFromAny(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func floatFromAny(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0.0
		}
		return f
	default:
		return 0.0
	}
}

func intFromAny(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0
		}
		return int(i)
	default:
		return 0
	}
}
