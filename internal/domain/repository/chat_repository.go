// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"article-writer-api/internal/domain/entity"
)

// ChatRepository 聊天记录仓储接口
type ChatRepository interface {
	// Append 追加一轮对话
	Append(ctx context.Context, message *entity.ChatMessage) error

	// History 获取会话历史（按时间升序）
	History(ctx context.Context, sessionID string, limit int) ([]*entity.ChatMessage, error)
}
