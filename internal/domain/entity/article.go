// Package entity 定义领域实体
package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArticleStatus 文章状态
type ArticleStatus string

const (
	ArticleStatusProcessing ArticleStatus = "processing"
	ArticleStatusCompleted  ArticleStatus = "completed"
	ArticleStatusFailed     ArticleStatus = "failed"
	ArticleStatusError      ArticleStatus = "error"
)

// IsTerminal 判断是否为终止状态
func (s ArticleStatus) IsTerminal() bool {
	return s == ArticleStatusCompleted || s == ArticleStatusFailed || s == ArticleStatusError
}

// ArticleMetadata 文章元数据
type ArticleMetadata struct {
	Topic          string   `json:"topic,omitempty"`
	Requirements   string   `json:"requirements,omitempty"`
	Iterations     int      `json:"iterations,omitempty"`
	EquationCount  int      `json:"equation_count,omitempty"`
	FailedNodes    []string `json:"failed_nodes,omitempty"`
	SourceArticle  string   `json:"source_article,omitempty"`
	SourceNode     string   `json:"source_node,omitempty"`
}

// Article 文章实体
type Article struct {
	ID           string           `json:"id" gorm:"type:varchar(64);primaryKey"`
	SessionID    string           `json:"session_id" gorm:"type:varchar(64);index;not null"`
	Title        string           `json:"title,omitempty" gorm:"type:varchar(255)"`
	Content      string           `json:"content,omitempty" gorm:"type:text"`
	Author       string           `json:"author,omitempty" gorm:"type:varchar(128)"`
	Metadata     *ArticleMetadata `json:"metadata,omitempty" gorm:"type:jsonb;serializer:json"`
	Status       ArticleStatus    `json:"status" gorm:"type:varchar(50);default:'processing'"`
	OverallScore float64          `json:"overall_score" gorm:"default:0"`
	CreatedAt    time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Article) TableName() string {
	return "articles"
}

// NewArticleID 生成文章 ID，形如 article_a1b2c3d4e5f6
func NewArticleID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("article_%s", hex[:12])
}

// NewArticle 创建新文章
func NewArticle(sessionID, topic string) *Article {
	now := time.Now()
	return &Article{
		ID:        NewArticleID(),
		SessionID: sessionID,
		Status:    ArticleStatusProcessing,
		Metadata:  &ArticleMetadata{Topic: topic},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Complete 标记文章完成
func (a *Article) Complete(title, content string, score float64) {
	a.Title = title
	a.Content = content
	a.OverallScore = score
	a.Status = ArticleStatusCompleted
	a.UpdatedAt = time.Now()
}

// Fail 标记文章失败（重试耗尽，保留最后一版草稿）
func (a *Article) Fail(title, content string, score float64) {
	a.Title = title
	a.Content = content
	a.OverallScore = score
	a.Status = ArticleStatusFailed
	a.UpdatedAt = time.Now()
}

// MarkError 标记文章异常中止
func (a *Article) MarkError() {
	a.Status = ArticleStatusError
	a.UpdatedAt = time.Now()
}
