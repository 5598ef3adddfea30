// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"article-writer-api/internal/domain/entity"
	"article-writer-api/internal/domain/repository"
)

// ArticleRepository 文章仓储实现
type ArticleRepository struct {
	client *Client
}

// NewArticleRepository 创建文章仓储
func NewArticleRepository(client *Client) *ArticleRepository {
	return &ArticleRepository{client: client}
}

// Create 创建文章
func (r *ArticleRepository) Create(ctx context.Context, article *entity.Article) error {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(article).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create article: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取文章
func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*entity.Article, error) {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var article entity.Article
	if err := db.First(&article, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return &article, nil
}

// Update 更新文章
func (r *ArticleRepository) Update(ctx context.Context, article *entity.Article) error {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(article).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update article: %w", err)
	}
	return nil
}

// UpdateStatus 更新文章状态
func (r *ArticleRepository) UpdateStatus(ctx context.Context, id string, status entity.ArticleStatus) error {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.UpdateStatus")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Article{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update article status: %w", err)
	}
	return nil
}

// List 获取文章列表
func (r *ArticleRepository) List(ctx context.Context, filter *repository.ArticleFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Article], error) {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Article{})

	// 应用过滤条件
	if filter != nil {
		if filter.SessionID != "" {
			query = query.Where("session_id = ?", filter.SessionID)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
	}

	// 获取总数
	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}

	// 获取列表
	var articles []*entity.Article
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&articles).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	return repository.NewPagedResult(articles, total, pagination), nil
}

// GetBySession 获取会话下的文章
func (r *ArticleRepository) GetBySession(ctx context.Context, sessionID string) ([]*entity.Article, error) {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.GetBySession")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var articles []*entity.Article
	if err := db.Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&articles).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get articles by session: %w", err)
	}
	return articles, nil
}
