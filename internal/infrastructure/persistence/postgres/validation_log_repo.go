// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"article-writer-api/internal/domain/entity"
)

// ValidationLogRepository 校验日志仓储实现
type ValidationLogRepository struct {
	client *Client
}

// NewValidationLogRepository 创建校验日志仓储
func NewValidationLogRepository(client *Client) *ValidationLogRepository {
	return &ValidationLogRepository{client: client}
}

// Append 追加校验日志
func (r *ValidationLogRepository) Append(ctx context.Context, log *entity.ValidationLog) error {
	ctx, span := tracer.Start(ctx, "postgres.ValidationLogRepository.Append")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(log).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to append validation log: %w", err)
	}
	return nil
}

// ListByArticle 获取文章全部校验日志
func (r *ValidationLogRepository) ListByArticle(ctx context.Context, articleID string) ([]*entity.ValidationLog, error) {
	ctx, span := tracer.Start(ctx, "postgres.ValidationLogRepository.ListByArticle")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var logs []*entity.ValidationLog
	if err := db.Where("article_id = ?", articleID).
		Order("created_at ASC, id ASC").
		Find(&logs).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list validation logs: %w", err)
	}
	return logs, nil
}
