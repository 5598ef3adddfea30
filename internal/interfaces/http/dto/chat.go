// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"article-writer-api/internal/domain/entity"
)

// ChatRequest 需求收集对话请求
type ChatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// ChatResponse 对话响应
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

// ChatTurn 单轮对话记录
type ChatTurn struct {
	UserMessage string    `json:"user_message,omitempty"`
	BotResponse string    `json:"bot_response,omitempty"`
	MessageType string    `json:"message_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChatHistoryResponse 会话历史响应
type ChatHistoryResponse struct {
	SessionID string      `json:"session_id"`
	Turns     []*ChatTurn `json:"turns"`
}

// ToChatHistoryResponse 转换会话历史
func ToChatHistoryResponse(sessionID string, messages []*entity.ChatMessage) *ChatHistoryResponse {
	turns := make([]*ChatTurn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, &ChatTurn{
			UserMessage: m.UserMessage,
			BotResponse: m.BotResponse,
			MessageType: string(m.MessageType),
			CreatedAt:   m.CreatedAt,
		})
	}
	return &ChatHistoryResponse{SessionID: sessionID, Turns: turns}
}
