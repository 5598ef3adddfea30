// Package entity 定义领域实体
package entity

import (
	"time"
)

// ChatMessageType 聊天消息类型
type ChatMessageType string

const (
	ChatMessageTypeRequirement ChatMessageType = "requirement"
	ChatMessageTypeGeneral     ChatMessageType = "general"
)

// ChatMessage 需求收集聊天记录
type ChatMessage struct {
	ID          uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	SessionID   string          `json:"session_id" gorm:"type:varchar(64);index;not null"`
	UserMessage string          `json:"user_message" gorm:"type:text"`
	BotResponse string          `json:"bot_response" gorm:"type:text"`
	MessageType ChatMessageType `json:"message_type" gorm:"type:varchar(32);default:'requirement'"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (ChatMessage) TableName() string {
	return "chat_messages"
}

// NewChatMessage 创建聊天记录
func NewChatMessage(sessionID, userMessage, botResponse string, messageType ChatMessageType) *ChatMessage {
	return &ChatMessage{
		SessionID:   sessionID,
		UserMessage: userMessage,
		BotResponse: botResponse,
		MessageType: messageType,
		CreatedAt:   time.Now(),
	}
}
