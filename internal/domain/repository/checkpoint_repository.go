// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"article-writer-api/internal/domain/entity"
)

// CheckpointRepository 检查点仓储接口
type CheckpointRepository interface {
	// Save 保存检查点
	Save(ctx context.Context, checkpoint *entity.Checkpoint) error

	// GetByID 根据 ID 获取检查点
	GetByID(ctx context.Context, id string) (*entity.Checkpoint, error)

	// ListByArticle 获取文章全部检查点（按时间升序）
	ListByArticle(ctx context.Context, articleID string) ([]*entity.Checkpoint, error)
}
