// Package entity 定义领域实体
package entity

import (
	"time"
)

// QueueStatus 队列条目状态
type QueueStatus string

const (
	QueueStatusQueued     QueueStatus = "queued"
	QueueStatusProcessing QueueStatus = "processing"
	QueueStatusCompleted  QueueStatus = "completed"
)

// QueueItem 生成任务准入队列条目（FIFO）
type QueueItem struct {
	ID          uint        `json:"id" gorm:"primaryKey;autoIncrement"`
	SessionID   string      `json:"session_id" gorm:"type:varchar(64);uniqueIndex;not null"`
	Position    int         `json:"position" gorm:"default:0"`
	Status      QueueStatus `json:"status" gorm:"type:varchar(20);default:'queued'"`
	CreatedAt   time.Time   `json:"created_at" gorm:"autoCreateTime"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// TableName 指定表名
func (QueueItem) TableName() string {
	return "generation_queue"
}

// NewQueueItem 创建队列条目
func NewQueueItem(sessionID string, position int) *QueueItem {
	return &QueueItem{
		SessionID: sessionID,
		Position:  position,
		Status:    QueueStatusQueued,
		CreatedAt: time.Now(),
	}
}

// MarkProcessing 标记开始处理
func (q *QueueItem) MarkProcessing() {
	now := time.Now()
	q.Status = QueueStatusProcessing
	q.Position = 0
	q.StartedAt = &now
}

// MarkCompleted 标记处理完成
func (q *QueueItem) MarkCompleted() {
	now := time.Now()
	q.Status = QueueStatusCompleted
	q.CompletedAt = &now
}
