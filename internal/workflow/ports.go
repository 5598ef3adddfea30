package workflow

import (
	"context"
)

// Generator 工作流对 LLM 协作者的最小依赖。
// 生成类调用逐 token 产出，onToken 可为 nil；校验调用返回原始 JSON 判定。
type Generator interface {
	// GenerateArticle 依据需求生成文章草稿
	GenerateArticle(ctx context.Context, state *ArticleState, onToken func(token string)) (string, error)

	// RegenerateContent 依据失败节点反馈改写当前内容
	RegenerateContent(ctx context.Context, state *ArticleState, failedNodes, feedback string, onToken func(token string)) (string, error)

	// ValidateContent 对内容执行指定节点的 LLM 评审，返回解析后的 JSON 判定
	ValidateContent(ctx context.Context, stage string, state *ArticleState) (map[string]any, error)
}

// Notifier 运行过程的实时推送（WebSocket 等）；实现必须不阻塞工作流
type Notifier interface {
	SendToken(sessionID, token string)
	SendStatus(sessionID, status, detail string)
	SendNodeUpdate(sessionID, node string, score float64)
	SendError(sessionID, message string)
	SendCompletion(sessionID, articleID string, payload any)
}

// EquationProcessor 公式渲染协作者：替换内容中的 LaTeX 公式并返回替换数量
type EquationProcessor interface {
	Process(ctx context.Context, content, articleID string) (modified string, count int, err error)
}
