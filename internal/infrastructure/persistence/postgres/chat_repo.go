// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"article-writer-api/internal/domain/entity"
)

// ChatRepository 聊天记录仓储实现
type ChatRepository struct {
	client *Client
}

// NewChatRepository 创建聊天记录仓储
func NewChatRepository(client *Client) *ChatRepository {
	return &ChatRepository{client: client}
}

// Append 追加一轮对话
func (r *ChatRepository) Append(ctx context.Context, message *entity.ChatMessage) error {
	ctx, span := tracer.Start(ctx, "postgres.ChatRepository.Append")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(message).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to append chat message: %w", err)
	}
	return nil
}

// History 获取会话历史
func (r *ChatRepository) History(ctx context.Context, sessionID string, limit int) ([]*entity.ChatMessage, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChatRepository.History")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Where("session_id = ?", sessionID).Order("created_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var messages []*entity.ChatMessage
	if err := query.Find(&messages).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}
	return messages, nil
}
