// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"article-writer-api/internal/domain/entity"
)

// QueueRepository 生成队列仓储实现
type QueueRepository struct {
	client *Client
}

// NewQueueRepository 创建生成队列仓储
func NewQueueRepository(client *Client) *QueueRepository {
	return &QueueRepository{client: client}
}

// Enqueue 入队，返回排队位置
func (r *QueueRepository) Enqueue(ctx context.Context, sessionID string) (*entity.QueueItem, error) {
	ctx, span := tracer.Start(ctx, "postgres.QueueRepository.Enqueue")
	defer span.End()

	db := getDB(ctx, r.client.db)

	// 已有排队或处理中的条目则原样返回
	existing, err := r.getActive(db, sessionID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	var waiting int64
	if err := db.Model(&entity.QueueItem{}).
		Where("status = ?", entity.QueueStatusQueued).
		Count(&waiting).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count queue: %w", err)
	}

	item := entity.NewQueueItem(sessionID, int(waiting)+1)
	if err := db.Create(item).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to enqueue session: %w", err)
	}
	return item, nil
}

// GetBySession 获取会话的队列条目
func (r *QueueRepository) GetBySession(ctx context.Context, sessionID string) (*entity.QueueItem, error) {
	ctx, span := tracer.Start(ctx, "postgres.QueueRepository.GetBySession")
	defer span.End()

	db := getDB(ctx, r.client.db)
	return r.getActive(db, sessionID)
}

// getActive 获取会话未完成的队列条目
func (r *QueueRepository) getActive(db *gorm.DB, sessionID string) (*entity.QueueItem, error) {
	var item entity.QueueItem
	err := db.Where("session_id = ? AND status <> ?", sessionID, entity.QueueStatusCompleted).
		Order("created_at DESC").
		First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get queue item: %w", err)
	}
	return &item, nil
}

// MarkProcessing 标记会话开始处理
// 直接启动（未经排队）的会话没有队列条目，此处补插一条处理中的记录，
// 保证 ProcessingCount 统计的是全部在途任务
func (r *QueueRepository) MarkProcessing(ctx context.Context, sessionID string) error {
	ctx, span := tracer.Start(ctx, "postgres.QueueRepository.MarkProcessing")
	defer span.End()

	db := getDB(ctx, r.client.db)

	item, err := r.getActive(db, sessionID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if item == nil {
		item = entity.NewQueueItem(sessionID, 0)
		item.MarkProcessing()
		if err := db.Create(item).Error; err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to create processing item: %w", err)
		}
		return nil
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":     entity.QueueStatusProcessing,
		"position":   0,
		"started_at": &now,
	}
	if err := db.Model(&entity.QueueItem{}).Where("id = ?", item.ID).Updates(updates).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to mark processing: %w", err)
	}
	return nil
}

// MarkCompleted 标记会话处理完成
func (r *QueueRepository) MarkCompleted(ctx context.Context, sessionID string) error {
	ctx, span := tracer.Start(ctx, "postgres.QueueRepository.MarkCompleted")
	defer span.End()

	db := getDB(ctx, r.client.db)
	now := time.Now()
	updates := map[string]interface{}{
		"status":       entity.QueueStatusCompleted,
		"completed_at": &now,
	}
	if err := db.Model(&entity.QueueItem{}).
		Where("session_id = ? AND status = ?", sessionID, entity.QueueStatusProcessing).
		Updates(updates).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to mark completed: %w", err)
	}
	return nil
}

// ProcessingCount 当前处理中的会话数量
func (r *QueueRepository) ProcessingCount(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.QueueRepository.ProcessingCount")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var count int64
	if err := db.Model(&entity.QueueItem{}).
		Where("status = ?", entity.QueueStatusProcessing).
		Count(&count).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count processing: %w", err)
	}
	return count, nil
}

// NextInQueue 队首等待中的会话
func (r *QueueRepository) NextInQueue(ctx context.Context) (*entity.QueueItem, error) {
	ctx, span := tracer.Start(ctx, "postgres.QueueRepository.NextInQueue")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var item entity.QueueItem
	err := db.Where("status = ?", entity.QueueStatusQueued).
		Order("created_at ASC, id ASC").
		First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get next in queue: %w", err)
	}
	return &item, nil
}

// Position 会话当前排队位置
func (r *QueueRepository) Position(ctx context.Context, sessionID string) (int, error) {
	ctx, span := tracer.Start(ctx, "postgres.QueueRepository.Position")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var item entity.QueueItem
	err := db.Where("session_id = ? AND status = ?", sessionID, entity.QueueStatusQueued).
		First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		span.RecordError(err)
		return 0, fmt.Errorf("failed to get queue item: %w", err)
	}

	// 位置按更早入队的等待条目数计算
	var ahead int64
	if err := db.Model(&entity.QueueItem{}).
		Where("status = ? AND (created_at < ? OR (created_at = ? AND id < ?))",
			entity.QueueStatusQueued, item.CreatedAt, item.CreatedAt, item.ID).
		Count(&ahead).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count queue position: %w", err)
	}
	return int(ahead) + 1, nil
}
