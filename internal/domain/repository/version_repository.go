// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"article-writer-api/internal/domain/entity"
)

// VersionRepository 文章版本仓储接口
type VersionRepository interface {
	// Append 追加版本快照，版本号为当前数量 + 1
	Append(ctx context.Context, articleID, content string, scores map[string]float64, nodeName string) (*entity.ArticleVersion, error)

	// ListByArticle 获取文章全部版本（按版本号升序）
	ListByArticle(ctx context.Context, articleID string) ([]*entity.ArticleVersion, error)

	// CountByArticle 获取文章版本数量
	CountByArticle(ctx context.Context, articleID string) (int64, error)
}
