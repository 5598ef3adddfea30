// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, h *Handlers) {
	// 需求收集对话
	chat := v1.Group("/chat")
	{
		chat.POST("", h.Chat.Chat)
		chat.GET("/:sid/history", h.Chat.History)
	}

	// 文章生成与查询
	articles := v1.Group("/articles")
	{
		articles.POST("/generate", h.Article.Generate)
		articles.GET("", h.Article.List)
		articles.GET("/:aid", h.Article.Get)
		articles.GET("/:aid/report", h.Article.Report)
		articles.GET("/:aid/checkpoints", h.Article.Checkpoints)
	}

	// 时间旅行
	v1.POST("/time-travel", h.Article.TimeTravel)

	// 会话状态与 websocket 接入
	sessions := v1.Group("/sessions")
	{
		sessions.GET("/:sid/status", h.Article.SessionStatus)
	}
	v1.GET("/ws/:sid", h.WS.Attach)
}
