// Package handler 提供 HTTP 请求处理器
package handler

import (
	"article-writer-api/internal/interfaces/ws"
	"article-writer-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// WSHandler websocket 接入处理器
type WSHandler struct {
	hub *ws.Hub
}

// NewWSHandler 创建 websocket 处理器
func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Attach 接入 websocket
// @Summary 接入 websocket
// @Description 按会话 ID 建立 websocket 连接，用于接收 token 流和状态推送
// @Tags Sessions
// @Param sid path string true "会话 ID"
// @Router /v1/ws/{sid} [get]
func (h *WSHandler) Attach(c *gin.Context) {
	sessionID := c.Param("sid")

	if err := h.hub.Attach(c.Writer, c.Request, sessionID); err != nil {
		logger.Warn(c.Request.Context(), "websocket attach failed",
			"session_id", sessionID, "error", err)
	}
}
