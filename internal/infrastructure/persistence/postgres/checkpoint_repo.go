// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"article-writer-api/internal/domain/entity"
)

// CheckpointRepository 检查点仓储实现
type CheckpointRepository struct {
	client *Client
}

// NewCheckpointRepository 创建检查点仓储
func NewCheckpointRepository(client *Client) *CheckpointRepository {
	return &CheckpointRepository{client: client}
}

// Save 保存检查点
func (r *CheckpointRepository) Save(ctx context.Context, checkpoint *entity.Checkpoint) error {
	ctx, span := tracer.Start(ctx, "postgres.CheckpointRepository.Save")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(checkpoint).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取检查点
func (r *CheckpointRepository) GetByID(ctx context.Context, id string) (*entity.Checkpoint, error) {
	ctx, span := tracer.Start(ctx, "postgres.CheckpointRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var checkpoint entity.Checkpoint
	if err := db.First(&checkpoint, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}
	return &checkpoint, nil
}

// ListByArticle 获取文章全部检查点
func (r *CheckpointRepository) ListByArticle(ctx context.Context, articleID string) ([]*entity.Checkpoint, error) {
	ctx, span := tracer.Start(ctx, "postgres.CheckpointRepository.ListByArticle")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var checkpoints []*entity.Checkpoint
	if err := db.Where("article_id = ?", articleID).
		Order("created_at ASC").
		Find(&checkpoints).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	return checkpoints, nil
}
