// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"article-writer-api/internal/domain/entity"
)

// ArticleFilter 文章过滤条件
type ArticleFilter struct {
	SessionID string
	Status    entity.ArticleStatus
}

// ArticleRepository 文章仓储接口
type ArticleRepository interface {
	// Create 创建文章
	Create(ctx context.Context, article *entity.Article) error

	// GetByID 根据 ID 获取文章
	GetByID(ctx context.Context, id string) (*entity.Article, error)

	// Update 更新文章
	Update(ctx context.Context, article *entity.Article) error

	// UpdateStatus 更新文章状态
	UpdateStatus(ctx context.Context, id string, status entity.ArticleStatus) error

	// List 获取文章列表（按创建时间倒序）
	List(ctx context.Context, filter *ArticleFilter, pagination Pagination) (*PagedResult[*entity.Article], error)

	// GetBySession 获取会话下的文章（按创建时间倒序）
	GetBySession(ctx context.Context, sessionID string) ([]*entity.Article, error)
}
