// Package chat 提供需求收集对话用例
package chat

import (
	"context"

	"article-writer-api/internal/application/generation"
	"article-writer-api/internal/domain/entity"
	"article-writer-api/internal/domain/repository"
	"article-writer-api/internal/workflow"
	"article-writer-api/pkg/logger"
)

// 每轮对话携带的历史条数上限
const historyLimit = 50

// Service 需求收集对话服务：维护会话历史并驱动 LLM 流式回复
type Service struct {
	generator *generation.EinoGenerator
	notifier  workflow.Notifier
	messages  repository.ChatRepository
}

// NewService 创建对话服务
func NewService(generator *generation.EinoGenerator, notifier workflow.Notifier, messages repository.ChatRepository) *Service {
	return &Service{
		generator: generator,
		notifier:  notifier,
		messages:  messages,
	}
}

// Reply 处理一轮对话：取历史、流式生成回复（token 推送到 websocket）、落库
func (s *Service) Reply(ctx context.Context, sessionID, userMessage string) (string, error) {
	ctx = logger.WithContext(ctx, logger.SessionIDKey, sessionID)

	history, err := s.messages.History(ctx, sessionID, historyLimit)
	if err != nil {
		return "", err
	}

	response, err := s.generator.Chat(ctx, history, userMessage, func(token string) {
		s.notifier.SendToken(sessionID, token)
	})
	if err != nil {
		logger.Error(ctx, "chat reply failed", err)
		return "", err
	}

	message := entity.NewChatMessage(sessionID, userMessage, response, entity.ChatMessageTypeRequirement)
	if err := s.messages.Append(ctx, message); err != nil {
		// 回复已经生成并推送，落库失败不影响本轮结果
		logger.Warn(ctx, "failed to persist chat message", "error", err)
	}

	return response, nil
}

// History 获取会话历史（按时间升序）
func (s *Service) History(ctx context.Context, sessionID string, limit int) ([]*entity.ChatMessage, error) {
	if limit <= 0 || limit > historyLimit {
		limit = historyLimit
	}
	return s.messages.History(ctx, sessionID, limit)
}
