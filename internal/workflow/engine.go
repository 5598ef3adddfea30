package workflow

import (
	"context"
	"fmt"
	"strings"

	"article-writer-api/internal/config"
	"article-writer-api/internal/domain/entity"
	"article-writer-api/internal/domain/repository"
	"article-writer-api/internal/workflow/node"
	"article-writer-api/pkg/logger"
	"article-writer-api/pkg/metrics"
)

// Engine 文章生成状态机：
// generate → structure → language → grammar → length → math → depth → readability → code
// → decide → {regenerate → structure …, finalize → 终止}
type Engine struct {
	generator   Generator
	notifier    Notifier
	equations   EquationProcessor
	articles    repository.ArticleRepository
	versions    repository.VersionRepository
	logs        repository.ValidationLogRepository
	checkpoints repository.CheckpointRepository
	cfg         *config.GenerationConfig
}

// NewEngine 创建工作流引擎
func NewEngine(
	generator Generator,
	notifier Notifier,
	equations EquationProcessor,
	articles repository.ArticleRepository,
	versions repository.VersionRepository,
	logs repository.ValidationLogRepository,
	checkpoints repository.CheckpointRepository,
	cfg *config.GenerationConfig,
) *Engine {
	return &Engine{
		generator:   generator,
		notifier:    notifier,
		equations:   equations,
		articles:    articles,
		versions:    versions,
		logs:        logs,
		checkpoints: checkpoints,
		cfg:         cfg,
	}
}

// Run 执行完整工作流：生成草稿后进入校验回环直到定稿
func (e *Engine) Run(ctx context.Context, state *ArticleState) *ArticleState {
	ctx = logger.WithContext(ctx, logger.SessionIDKey, state.SessionID)
	ctx = logger.WithContext(ctx, logger.ArticleIDKey, state.ArticleID)

	if err := e.generate(ctx, state); err != nil {
		e.abort(ctx, state)
		return state
	}

	return e.validateLoop(ctx, state)
}

// Resume 从已有状态恢复（时间旅行）：跳过生成，直接进入校验回环
func (e *Engine) Resume(ctx context.Context, state *ArticleState) *ArticleState {
	ctx = logger.WithContext(ctx, logger.SessionIDKey, state.SessionID)
	ctx = logger.WithContext(ctx, logger.ArticleIDKey, state.ArticleID)

	if strings.TrimSpace(state.Content) == "" {
		// 没有内容的快照（尚未生成）回退到完整运行
		return e.Run(ctx, state)
	}
	return e.validateLoop(ctx, state)
}

// validateLoop 校验 → 判定 → {重新生成, 定稿} 的回环
func (e *Engine) validateLoop(ctx context.Context, state *ArticleState) *ArticleState {
	for {
		for _, stage := range Stages() {
			if err := e.runStage(ctx, stage, state); err != nil {
				e.abort(ctx, state)
				return state
			}
		}

		decision := e.Decide(ctx, state)
		if decision == DecisionFinalize {
			e.finalize(ctx, state)
			return state
		}

		if err := e.regenerate(ctx, state); err != nil {
			e.abort(ctx, state)
			return state
		}
	}
}

// generate 生成初稿节点
func (e *Engine) generate(ctx context.Context, state *ArticleState) error {
	logger.Info(ctx, "generating article", "article_id", state.ArticleID)
	state.CurrentNode = "generate"
	e.notifier.SendStatus(state.SessionID, "generating", "")

	content, err := e.generator.GenerateArticle(ctx, state, func(token string) {
		e.notifier.SendToken(state.SessionID, token)
	})
	if err != nil {
		logger.Error(ctx, "generation failed", err, "article_id", state.ArticleID)
		state.MarkError(err)
		return err
	}

	state.Content = content
	if title := node.ExtractTitle(content); title != "" {
		state.Title = title
	}

	e.persistSnapshot(ctx, state, "generate", map[string]float64{})

	logger.Info(ctx, "article generated",
		"article_id", state.ArticleID, "chars", len(content))
	return nil
}

// regenerate 依据失败节点反馈改写内容
func (e *Engine) regenerate(ctx context.Context, state *ArticleState) error {
	logger.Info(ctx, "regenerating article",
		"article_id", state.ArticleID, "failed_nodes", state.FailedNodes)
	state.CurrentNode = "regenerate"
	state.Iteration++
	e.notifier.SendStatus(state.SessionID, "regenerating",
		strings.Join(state.FailedNodes, ", "))

	var lines []string
	for _, nodeName := range state.FailedNodes {
		fb := "No feedback"
		if raw, ok := state.Feedback[nodeName]; ok {
			if s, ok := raw["feedback"].(string); ok && s != "" {
				fb = s
			}
		}
		lines = append(lines, fmt.Sprintf("%s: %s", nodeName, fb))
	}

	content, err := e.generator.RegenerateContent(ctx, state,
		strings.Join(state.FailedNodes, ", "),
		strings.Join(lines, "\n"),
		func(token string) {
			e.notifier.SendToken(state.SessionID, token)
		},
	)
	if err != nil {
		logger.Error(ctx, "regeneration failed", err, "article_id", state.ArticleID)
		state.MarkError(err)
		return err
	}

	state.Content = content
	if title := node.ExtractTitle(content); title != "" {
		state.Title = title
	}
	state.FailedNodes = []string{}

	e.persistSnapshot(ctx, state, "regenerate", state.Scores)

	logger.Info(ctx, "article regenerated",
		"article_id", state.ArticleID, "iteration", state.Iteration)
	return nil
}

// finalize 定稿节点：渲染公式、计算总分并落库。
// 重试耗尽（failed）的运行同样发布最后一版草稿，但保留 failed 状态。
func (e *Engine) finalize(ctx context.Context, state *ArticleState) {
	logger.Info(ctx, "finalizing article", "article_id", state.ArticleID)
	state.CurrentNode = "finalize"

	if state.HasMath && e.equations != nil {
		modified, count, err := e.equations.Process(ctx, state.Content, state.ArticleID)
		if err != nil {
			logger.Warn(ctx, "equation processing failed, keeping raw content",
				"error", err, "article_id", state.ArticleID)
		} else {
			state.Content = modified
			state.Metadata["equation_count"] = count
			logger.Info(ctx, "equations processed",
				"article_id", state.ArticleID, "count", count)
		}
	}

	state.OverallScore = meanScore(state.Scores)

	article, err := e.articles.GetByID(ctx, state.ArticleID)
	if err != nil || article == nil {
		logger.Error(ctx, "failed to load article for finalize", err,
			"article_id", state.ArticleID)
		return
	}

	article.Metadata = articleMetadata(state)
	if state.Status == StatusFailed {
		article.Fail(state.Title, state.Content, state.OverallScore)
	} else {
		state.Status = StatusCompleted
		article.Complete(state.Title, state.Content, state.OverallScore)
	}

	if err := e.articles.Update(ctx, article); err != nil {
		logger.Error(ctx, "failed to persist finalized article", err,
			"article_id", state.ArticleID)
		return
	}

	metrics.ArticleIterations.Observe(float64(state.Iteration))
	metrics.ArticleOverallScore.Observe(state.OverallScore)

	e.notifier.SendCompletion(state.SessionID, state.ArticleID, map[string]any{
		"article_id":    state.ArticleID,
		"title":         state.Title,
		"status":        state.Status,
		"overall_score": state.OverallScore,
		"iterations":    state.Iteration,
	})

	logger.Info(ctx, "article finalized",
		"article_id", state.ArticleID,
		"status", state.Status,
		"overall_score", state.OverallScore)
}

// abort 运行异常中止：落库 error 状态并推送错误
func (e *Engine) abort(ctx context.Context, state *ArticleState) {
	if err := e.articles.UpdateStatus(ctx, state.ArticleID, entity.ArticleStatusError); err != nil {
		logger.Error(ctx, "failed to mark article error", err, "article_id", state.ArticleID)
	}
	e.notifier.SendError(state.SessionID, state.Error)
}

// persistSnapshot 在生成类节点之后保存版本与检查点
func (e *Engine) persistSnapshot(ctx context.Context, state *ArticleState, nodeName string, scores map[string]float64) {
	if _, err := e.versions.Append(ctx, state.ArticleID, state.Content, scores, nodeName); err != nil {
		logger.Warn(ctx, "failed to persist version", "error", err,
			"article_id", state.ArticleID, "node", nodeName)
	}

	snapshot, err := state.Snapshot()
	if err != nil {
		logger.Warn(ctx, "failed to snapshot state", "error", err,
			"article_id", state.ArticleID, "node", nodeName)
		return
	}
	cp := entity.NewCheckpoint(state.ArticleID, nodeName, snapshot)
	if err := e.checkpoints.Save(ctx, cp); err != nil {
		logger.Warn(ctx, "failed to persist checkpoint", "error", err,
			"article_id", state.ArticleID, "node", nodeName)
	}
}

// articleMetadata 将运行状态折叠为文章元数据
func articleMetadata(state *ArticleState) *entity.ArticleMetadata {
	meta := &entity.ArticleMetadata{
		Topic:      state.Topic,
		Iterations: state.Iteration,
	}
	if v, ok := state.Metadata["equation_count"].(int); ok {
		meta.EquationCount = v
	}
	if len(state.FailedNodes) > 0 {
		meta.FailedNodes = append([]string{}, state.FailedNodes...)
	}
	return meta
}
