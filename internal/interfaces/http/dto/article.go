// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"article-writer-api/internal/application/article"
	"article-writer-api/internal/domain/entity"
)

// GenerateArticleRequest 文章生成请求
type GenerateArticleRequest struct {
	SessionID    string         `json:"session_id" binding:"required"`
	Requirements map[string]any `json:"requirements" binding:"required"`
}

// TimeTravelRequest 时间旅行请求：从检查点派生新文章
type TimeTravelRequest struct {
	CheckpointID  string         `json:"checkpoint_id" binding:"required"`
	Modifications map[string]any `json:"modifications"`
}

// StartGenerationResponse 生成受理响应
type StartGenerationResponse struct {
	ArticleID string `json:"article_id,omitempty"`
	Status    string `json:"status"`
	Position  int    `json:"position,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ToStartGenerationResponse 转换受理结果
func ToStartGenerationResponse(result *article.StartResult) *StartGenerationResponse {
	return &StartGenerationResponse{
		ArticleID: result.ArticleID,
		Status:    result.Status,
		Position:  result.Position,
		Message:   result.Message,
	}
}

// ArticleResponse 文章详情响应
type ArticleResponse struct {
	ID           string                  `json:"id"`
	SessionID    string                  `json:"session_id"`
	Title        string                  `json:"title,omitempty"`
	Content      string                  `json:"content,omitempty"`
	Author       string                  `json:"author,omitempty"`
	Metadata     *entity.ArticleMetadata `json:"metadata,omitempty"`
	Status       string                  `json:"status"`
	OverallScore float64                 `json:"overall_score"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// ToArticleResponse 转换文章详情
func ToArticleResponse(a *entity.Article) *ArticleResponse {
	return &ArticleResponse{
		ID:           a.ID,
		SessionID:    a.SessionID,
		Title:        a.Title,
		Content:      a.Content,
		Author:       a.Author,
		Metadata:     a.Metadata,
		Status:       string(a.Status),
		OverallScore: a.OverallScore,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// ArticleListItem 文章列表项（不含正文）
type ArticleListItem struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	Title        string    `json:"title,omitempty"`
	Author       string    `json:"author,omitempty"`
	Status       string    `json:"status"`
	OverallScore float64   `json:"overall_score"`
	CreatedAt    time.Time `json:"created_at"`
}

// ArticleListResponse 文章列表响应
type ArticleListResponse struct {
	Articles []*ArticleListItem `json:"articles"`
}

// ToArticleListResponse 转换文章列表
func ToArticleListResponse(articles []*entity.Article) *ArticleListResponse {
	items := make([]*ArticleListItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, &ArticleListItem{
			ID:           a.ID,
			SessionID:    a.SessionID,
			Title:        a.Title,
			Author:       a.Author,
			Status:       string(a.Status),
			OverallScore: a.OverallScore,
			CreatedAt:    a.CreatedAt,
		})
	}
	return &ArticleListResponse{Articles: items}
}

// CheckpointResponse 检查点响应（不含状态快照正文）
type CheckpointResponse struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"article_id"`
	NodeName  string    `json:"node_name"`
	CreatedAt time.Time `json:"created_at"`
}

// CheckpointListResponse 检查点列表响应
type CheckpointListResponse struct {
	Checkpoints []*CheckpointResponse `json:"checkpoints"`
}

// ToCheckpointListResponse 转换检查点列表
func ToCheckpointListResponse(checkpoints []*entity.Checkpoint) *CheckpointListResponse {
	items := make([]*CheckpointResponse, 0, len(checkpoints))
	for _, cp := range checkpoints {
		items = append(items, &CheckpointResponse{
			ID:        cp.ID,
			ArticleID: cp.ArticleID,
			NodeName:  cp.NodeName,
			CreatedAt: cp.CreatedAt,
		})
	}
	return &CheckpointListResponse{Checkpoints: items}
}

// SessionStatusResponse 会话排队状态响应
type SessionStatusResponse struct {
	SessionID     string `json:"session_id"`
	QueuePosition int    `json:"queue_position"`
}
