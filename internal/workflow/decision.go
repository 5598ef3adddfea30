package workflow

import (
	"context"

	"article-writer-api/pkg/logger"
)

// Decision 一轮校验后的路由结果
type Decision string

const (
	DecisionRegenerate Decision = "regenerate"
	DecisionFinalize   Decision = "finalize"
)

// Decide 一轮校验结束后的路由判定：
//  1. 达到总轮次上限直接定稿（防止无限回环）
//  2. 存在失败节点：任一失败节点重试耗尽则定稿，否则重新生成
//  3. 均分低于发布阈值且最低单项低于通过阈值：归因最低节点并重新生成
//  4. 其余情况定稿
func (e *Engine) Decide(ctx context.Context, state *ArticleState) Decision {
	if state.Iteration >= e.cfg.MaxIterations {
		logger.Warn(ctx, "iteration cap reached, proceeding to finalize",
			"article_id", state.ArticleID, "iteration", state.Iteration)
		return DecisionFinalize
	}

	if len(state.FailedNodes) > 0 {
		for _, nodeName := range state.FailedNodes {
			if state.RetryCounts[nodeName] >= e.cfg.MaxRetries {
				logger.Warn(ctx, "max retries reached, proceeding to finalize",
					"article_id", state.ArticleID, "node", nodeName)
				return DecisionFinalize
			}
		}
		return DecisionRegenerate
	}

	overall := meanScore(state.Scores)
	if overall < e.cfg.PublishThreshold && len(state.Scores) > 0 {
		lowest, lowestScore := lowestStage(state.Scores)
		if lowestScore < e.cfg.MinScoreThreshold {
			logger.Info(ctx, "overall score below publish threshold, regenerating",
				"article_id", state.ArticleID, "overall", overall,
				"lowest_node", lowest, "lowest_score", lowestScore)
			state.FailedNodes = append(state.FailedNodes, lowest)
			return DecisionRegenerate
		}
	}

	return DecisionFinalize
}

func meanScore(scores map[string]float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range scores {
		sum += v
	}
	return sum / float64(len(scores))
}

// lowestStage 返回得分最低的节点；并列时取节点名最小者，保证判定确定性
func lowestStage(scores map[string]float64) (string, float64) {
	lowest := ""
	lowestScore := 0.0
	for name, score := range scores {
		if lowest == "" || score < lowestScore || (score == lowestScore && name < lowest) {
			lowest = name
			lowestScore = score
		}
	}
	return lowest, lowestScore
}
