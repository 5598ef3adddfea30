// Package ws 提供基于 WebSocket 的会话推送
package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"article-writer-api/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// 跨域策略由网关层 CORS 中间件控制
	CheckOrigin: func(r *http.Request) bool { return true },
}

type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

// Hub 按会话管理 WebSocket 连接，推送生成过程事件。
// 所有 Send* 方法尽力而为：没有连接或写失败不影响工作流。
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*conn
}

// NewHub 创建连接管理器
func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]*conn),
	}
}

// Attach 将 HTTP 请求升级为 WebSocket 并注册到会话；
// 阻塞读取直到对端断开（客户端消息被忽略，通道只用于推送）
func (h *Hub) Attach(w http.ResponseWriter, r *http.Request, sessionID string) error {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &conn{ws: wsConn}
	h.mu.Lock()
	if old, ok := h.conns[sessionID]; ok {
		old.ws.Close()
	}
	h.conns[sessionID] = c
	h.mu.Unlock()

	logger.Info(r.Context(), "websocket connected", "session_id", sessionID)

	for {
		if _, _, err := wsConn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	if cur, ok := h.conns[sessionID]; ok && cur == c {
		delete(h.conns, sessionID)
	}
	h.mu.Unlock()
	wsConn.Close()

	logger.Info(r.Context(), "websocket disconnected", "session_id", sessionID)
	return nil
}

func (h *Hub) send(sessionID string, message map[string]any) {
	h.mu.RLock()
	c, ok := h.conns[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if err := c.writeJSON(message); err != nil {
		logger.Warn(context.Background(), "failed to push websocket message",
			"error", err, "session_id", sessionID)
	}
}

// SendToken 推送流式 token
func (h *Hub) SendToken(sessionID, token string) {
	h.send(sessionID, map[string]any{
		"type":         "token",
		"message_type": "content",
		"content":      token,
	})
}

// SendStatus 推送状态变化
func (h *Hub) SendStatus(sessionID, status, detail string) {
	data := map[string]any{}
	if detail != "" {
		data["detail"] = detail
	}
	h.send(sessionID, map[string]any{
		"type":   "status",
		"status": status,
		"data":   data,
	})
}

// SendNodeUpdate 推送校验节点结果
func (h *Hub) SendNodeUpdate(sessionID, nodeName string, score float64) {
	h.send(sessionID, map[string]any{
		"type":  "node_update",
		"node":  nodeName,
		"score": score,
	})
}

// SendError 推送错误
func (h *Hub) SendError(sessionID, message string) {
	h.send(sessionID, map[string]any{
		"type":    "error",
		"message": message,
	})
}

// SendCompletion 推送完成事件
func (h *Hub) SendCompletion(sessionID, articleID string, payload any) {
	h.send(sessionID, map[string]any{
		"type":       "completion",
		"article_id": articleID,
		"result":     payload,
	})
}
