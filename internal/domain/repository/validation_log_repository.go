// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"article-writer-api/internal/domain/entity"
)

// ValidationLogRepository 校验日志仓储接口（追加写）
type ValidationLogRepository interface {
	// Append 追加校验日志
	Append(ctx context.Context, log *entity.ValidationLog) error

	// ListByArticle 获取文章全部校验日志（按时间升序）
	ListByArticle(ctx context.Context, articleID string) ([]*entity.ValidationLog, error)
}
