// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"article-writer-api/internal/domain/entity"
)

// VersionRepository 文章版本仓储实现
type VersionRepository struct {
	client *Client
}

// NewVersionRepository 创建文章版本仓储
func NewVersionRepository(client *Client) *VersionRepository {
	return &VersionRepository{client: client}
}

// Append 追加版本快照，版本号为当前数量 + 1
func (r *VersionRepository) Append(ctx context.Context, articleID, content string, scores map[string]float64, nodeName string) (*entity.ArticleVersion, error) {
	ctx, span := tracer.Start(ctx, "postgres.VersionRepository.Append")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var count int64
	if err := db.Model(&entity.ArticleVersion{}).
		Where("article_id = ?", articleID).
		Count(&count).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count versions: %w", err)
	}

	version := entity.NewArticleVersion(articleID, int(count)+1, content, scores, nodeName)
	if err := db.Create(version).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to append version: %w", err)
	}
	return version, nil
}

// ListByArticle 获取文章全部版本
func (r *VersionRepository) ListByArticle(ctx context.Context, articleID string) ([]*entity.ArticleVersion, error) {
	ctx, span := tracer.Start(ctx, "postgres.VersionRepository.ListByArticle")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var versions []*entity.ArticleVersion
	if err := db.Where("article_id = ?", articleID).
		Order("version_number ASC").
		Find(&versions).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	return versions, nil
}

// CountByArticle 获取文章版本数量
func (r *VersionRepository) CountByArticle(ctx context.Context, articleID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.VersionRepository.CountByArticle")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var count int64
	if err := db.Model(&entity.ArticleVersion{}).
		Where("article_id = ?", articleID).
		Count(&count).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count versions: %w", err)
	}
	return count, nil
}
