// Package handler 提供 HTTP 请求处理器
package handler

import (
	"strconv"

	"article-writer-api/internal/application/chat"
	"article-writer-api/internal/interfaces/http/dto"
	"article-writer-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ChatHandler 需求收集对话处理器
type ChatHandler struct {
	service *chat.Service
}

// NewChatHandler 创建对话处理器
func NewChatHandler(service *chat.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// Chat 处理一轮对话
// @Summary 需求收集对话
// @Description 处理一轮需求收集对话，回复同时通过 websocket 流式推送
// @Tags Chat
// @Accept json
// @Produce json
// @Param body body dto.ChatRequest true "对话消息"
// @Success 200 {object} dto.Response[dto.ChatResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	response, err := h.service.Reply(ctx, req.SessionID, req.Message)
	if err != nil {
		logger.Error(ctx, "chat failed", err, "session_id", req.SessionID)
		dto.FromAppError(c, err)
		return
	}

	dto.Success(c, &dto.ChatResponse{
		SessionID: req.SessionID,
		Response:  response,
	})
}

// History 获取会话历史
// @Summary 获取会话历史
// @Description 按时间升序返回会话的对话记录
// @Tags Chat
// @Produce json
// @Param sid path string true "会话 ID"
// @Param limit query int false "条数上限" default(50)
// @Success 200 {object} dto.Response[dto.ChatHistoryResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/chat/{sid}/history [get]
func (h *ChatHandler) History(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := c.Param("sid")

	limit := 0
	if v := c.Query("limit"); v != "" {
		if n, err := parseLimit(v); err == nil {
			limit = n
		}
	}

	messages, err := h.service.History(ctx, sessionID, limit)
	if err != nil {
		logger.Error(ctx, "failed to load chat history", err, "session_id", sessionID)
		dto.InternalError(c, "failed to load chat history")
		return
	}

	dto.Success(c, dto.ToChatHistoryResponse(sessionID, messages))
}

// parseLimit 解析 limit 查询参数
func parseLimit(s string) (int, error) {
	return strconv.Atoi(s)
}
