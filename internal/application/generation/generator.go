// Package generation 提供基于 Eino 的 LLM 生成适配器
package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"article-writer-api/internal/config"
	"article-writer-api/internal/domain/entity"
	"article-writer-api/internal/workflow"
	"article-writer-api/internal/workflow/node"
	workflowport "article-writer-api/internal/workflow/port"
	workflowprompt "article-writer-api/internal/workflow/prompt"
	"article-writer-api/pkg/logger"
	"article-writer-api/pkg/metrics"
)

// EinoGenerator workflow.Generator 的 Eino 实现：
// 草稿/改写走流式生成，校验走单次判定
type EinoGenerator struct {
	factory workflowport.ChatModelFactory
	prompts *workflowprompt.Registry
	cfg     *config.GenerationConfig
}

var _ workflow.Generator = (*EinoGenerator)(nil)

// NewEinoGenerator 创建生成适配器
func NewEinoGenerator(factory workflowport.ChatModelFactory, cfg *config.GenerationConfig) *EinoGenerator {
	return &EinoGenerator{
		factory: factory,
		prompts: workflowprompt.NewRegistry(),
		cfg:     cfg,
	}
}

// GenerateArticle 依据需求生成文章草稿（流式）
func (g *EinoGenerator) GenerateArticle(ctx context.Context, state *workflow.ArticleState, onToken func(string)) (string, error) {
	extra, err := json.MarshalIndent(additionalRequirements(state.Requirements), "", "  ")
	if err != nil {
		extra = []byte("{}")
	}

	msgs, err := g.prompts.Format(ctx, workflowprompt.PromptArticleGenV1, map[string]any{
		"topic":                   state.Topic,
		"target_audience":         state.TargetAudience,
		"article_type":            state.ArticleType,
		"tone":                    state.Tone,
		"author":                  state.Author,
		"additional_requirements": string(extra),
	})
	if err != nil {
		return "", err
	}

	return g.stream(ctx, g.cfg.GeneratorProvider, "generation", msgs, g.cfg.GeneratorTemperature, onToken)
}

// RegenerateContent 依据失败节点反馈改写内容（流式）
func (g *EinoGenerator) RegenerateContent(ctx context.Context, state *workflow.ArticleState, failedNodes, feedback string, onToken func(string)) (string, error) {
	msgs, err := g.prompts.Format(ctx, workflowprompt.PromptRegenerateV1, map[string]any{
		"node_name": failedNodes,
		"feedback":  feedback,
		"content":   state.Content,
	})
	if err != nil {
		return "", err
	}

	return g.stream(ctx, g.cfg.GeneratorProvider, "regeneration", msgs, g.cfg.GeneratorTemperature, onToken)
}

// ValidateContent 执行指定节点的 LLM 评审，返回解析后的 JSON 判定
func (g *EinoGenerator) ValidateContent(ctx context.Context, stage string, state *workflow.ArticleState) (map[string]any, error) {
	promptID, err := workflowprompt.ValidatorPromptID(stage)
	if err != nil {
		return nil, err
	}

	msgs, err := g.prompts.Format(ctx, promptID, map[string]any{
		"topic":           orNA(state.Topic),
		"target_audience": orNA(state.TargetAudience),
		"article_type":    orNA(state.ArticleType),
		"content":         state.Content,
	})
	if err != nil {
		return nil, err
	}

	chatModel, err := g.factory.Get(ctx, g.cfg.ValidatorProvider)
	if err != nil {
		return nil, err
	}

	operation := "validation_" + stage
	start := time.Now()
	out, err := chatModel.Generate(ctx, msgs, model.WithTemperature(float32(g.cfg.ValidatorTemperature)))
	metrics.LLMCallDuration.WithLabelValues(g.cfg.ValidatorProvider, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(g.cfg.ValidatorProvider, operation, "error").Inc()
		return nil, fmt.Errorf("validation call failed: %w", err)
	}
	metrics.LLMCallTotal.WithLabelValues(g.cfg.ValidatorProvider, operation, "success").Inc()
	recordUsage(g.cfg.ValidatorProvider, out.ResponseMeta)

	raw := node.ExtractJSONObject(out.Content)
	var result map[string]any
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to parse validator judgment: %w", err)
	}
	return result, nil
}

// Chat 需求收集聊天（流式），history 为既往轮次
func (g *EinoGenerator) Chat(ctx context.Context, history []*entity.ChatMessage, userMessage string, onToken func(string)) (string, error) {
	system, err := g.prompts.SystemText(workflowprompt.PromptChatV1)
	if err != nil {
		return "", err
	}

	msgs := make([]*schema.Message, 0, len(history)*2+2)
	msgs = append(msgs, schema.SystemMessage(system))
	for _, turn := range history {
		if turn.UserMessage != "" {
			msgs = append(msgs, schema.UserMessage(turn.UserMessage))
		}
		if turn.BotResponse != "" {
			msgs = append(msgs, schema.AssistantMessage(turn.BotResponse, nil))
		}
	}
	msgs = append(msgs, schema.UserMessage(userMessage))

	return g.stream(ctx, g.cfg.GeneratorProvider, "chat", msgs, g.cfg.GeneratorTemperature, onToken)
}

// stream 流式调用并累积完整输出，逐 token 回调
func (g *EinoGenerator) stream(ctx context.Context, provider, operation string, msgs []*schema.Message, temperature float64, onToken func(string)) (string, error) {
	chatModel, err := g.factory.Get(ctx, provider)
	if err != nil {
		return "", err
	}

	start := time.Now()
	reader, err := chatModel.Stream(ctx, msgs, model.WithTemperature(float32(temperature)))
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(provider, operation, "error").Inc()
		return "", fmt.Errorf("%s stream failed: %w", operation, err)
	}
	defer reader.Close()

	var sb strings.Builder
	for {
		chunk, err := reader.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			metrics.LLMCallTotal.WithLabelValues(provider, operation, "error").Inc()
			return "", fmt.Errorf("%s stream recv failed: %w", operation, err)
		}
		if chunk.Content != "" {
			sb.WriteString(chunk.Content)
			if onToken != nil {
				onToken(chunk.Content)
			}
		}
		recordUsage(provider, chunk.ResponseMeta)
	}

	metrics.LLMCallDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
	metrics.LLMCallTotal.WithLabelValues(provider, operation, "success").Inc()

	content := sb.String()
	logger.Debug(ctx, "llm stream completed",
		"operation", operation, "provider", provider, "words", len(strings.Fields(content)))
	return content, nil
}

func recordUsage(provider string, meta *schema.ResponseMeta) {
	if meta == nil || meta.Usage == nil {
		return
	}
	metrics.LLMTokensUsed.WithLabelValues(provider, "prompt").Add(float64(meta.Usage.PromptTokens))
	metrics.LLMTokensUsed.WithLabelValues(provider, "completion").Add(float64(meta.Usage.CompletionTokens))
}

// additionalRequirements 剔除已单列的需求字段
func additionalRequirements(requirements map[string]any) map[string]any {
	extra := make(map[string]any)
	for k, v := range requirements {
		switch k {
		case "topic", "author", "target_audience", "article_type", "tone":
		default:
			extra[k] = v
		}
	}
	return extra
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
