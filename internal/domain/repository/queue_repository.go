// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"article-writer-api/internal/domain/entity"
)

// QueueRepository 生成队列仓储接口
type QueueRepository interface {
	// Enqueue 入队，返回排队位置（从 1 开始）
	Enqueue(ctx context.Context, sessionID string) (*entity.QueueItem, error)

	// GetBySession 获取会话的队列条目
	GetBySession(ctx context.Context, sessionID string) (*entity.QueueItem, error)

	// MarkProcessing 标记会话开始处理；无条目时插入处理中条目，保证在途计数准确
	MarkProcessing(ctx context.Context, sessionID string) error

	// MarkCompleted 标记会话处理完成
	MarkCompleted(ctx context.Context, sessionID string) error

	// ProcessingCount 当前处理中的会话数量
	ProcessingCount(ctx context.Context) (int64, error)

	// NextInQueue 队首等待中的会话（FIFO）
	NextInQueue(ctx context.Context) (*entity.QueueItem, error)

	// Position 会话当前排队位置（1 为队首，0 表示未在排队）
	Position(ctx context.Context, sessionID string) (int, error)
}
