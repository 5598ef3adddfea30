// Package entity 定义领域实体
package entity

import (
	"time"
)

// ValidationStatus 校验结果状态
type ValidationStatus string

const (
	ValidationStatusPassed ValidationStatus = "passed"
	ValidationStatusFailed ValidationStatus = "failed"
)

// ValidationFeedback 校验反馈
type ValidationFeedback struct {
	Score       float64  `json:"score"`
	Passed      bool     `json:"passed"`
	Issues      []string `json:"issues,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Summary     string   `json:"summary,omitempty"`
}

// ValidationLog 校验日志，追加写，不可变
type ValidationLog struct {
	ID         uint                `json:"id" gorm:"primaryKey;autoIncrement"`
	ArticleID  string              `json:"article_id" gorm:"type:varchar(64);index;not null"`
	NodeName   string              `json:"node_name" gorm:"type:varchar(64);not null"`
	Score      float64             `json:"score"`
	Feedback   *ValidationFeedback `json:"feedback,omitempty" gorm:"type:jsonb;serializer:json"`
	RetryCount int                 `json:"retry_count" gorm:"default:0"`
	Status     ValidationStatus    `json:"status" gorm:"type:varchar(20)"`
	CreatedAt  time.Time           `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (ValidationLog) TableName() string {
	return "validation_logs"
}

// NewValidationLog 创建校验日志
func NewValidationLog(articleID, nodeName string, score float64, feedback *ValidationFeedback, retryCount int, passed bool) *ValidationLog {
	status := ValidationStatusFailed
	if passed {
		status = ValidationStatusPassed
	}
	return &ValidationLog{
		ArticleID:  articleID,
		NodeName:   nodeName,
		Score:      score,
		Feedback:   feedback,
		RetryCount: retryCount,
		Status:     status,
		CreatedAt:  time.Now(),
	}
}
