// Package entity 定义领域实体
package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Checkpoint 工作流检查点，保存完整状态快照，不可变
type Checkpoint struct {
	ID        string    `json:"id" gorm:"type:varchar(128);primaryKey"`
	ArticleID string    `json:"article_id" gorm:"type:varchar(64);index;not null"`
	NodeName  string    `json:"node_name" gorm:"type:varchar(64);not null"`
	StateData []byte    `json:"state_data" gorm:"type:jsonb"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Checkpoint) TableName() string {
	return "checkpoints"
}

// NewCheckpointID 生成检查点 ID，形如 <article>_<node>_<hex8>
func NewCheckpointID(articleID, nodeName string) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%s_%s_%s", articleID, nodeName, hex[:8])
}

// NewCheckpoint 创建检查点
func NewCheckpoint(articleID, nodeName string, stateData []byte) *Checkpoint {
	return &Checkpoint{
		ID:        NewCheckpointID(articleID, nodeName),
		ArticleID: articleID,
		NodeName:  nodeName,
		StateData: stateData,
		CreatedAt: time.Now(),
	}
}
