// Package entity 定义领域实体
package entity

import (
	"time"
)

// ArticleVersion 文章版本快照，每次生成/重新生成后追加
type ArticleVersion struct {
	ID            uint               `json:"id" gorm:"primaryKey;autoIncrement"`
	ArticleID     string             `json:"article_id" gorm:"type:varchar(64);index;not null"`
	VersionNumber int                `json:"version_number" gorm:"not null"`
	Content       string             `json:"content" gorm:"type:text"`
	Scores        map[string]float64 `json:"scores,omitempty" gorm:"type:jsonb;serializer:json"`
	NodeName      string             `json:"node_name" gorm:"type:varchar(64)"`
	CreatedAt     time.Time          `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (ArticleVersion) TableName() string {
	return "article_versions"
}

// NewArticleVersion 创建版本快照
func NewArticleVersion(articleID string, versionNumber int, content string, scores map[string]float64, nodeName string) *ArticleVersion {
	return &ArticleVersion{
		ArticleID:     articleID,
		VersionNumber: versionNumber,
		Content:       content,
		Scores:        scores,
		NodeName:      nodeName,
		CreatedAt:     time.Now(),
	}
}
