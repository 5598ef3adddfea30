// Package handler 提供 HTTP 请求处理器
package handler

import (
	"article-writer-api/internal/application/article"
	"article-writer-api/internal/domain/entity"
	"article-writer-api/internal/domain/repository"
	"article-writer-api/internal/interfaces/http/dto"
	"article-writer-api/pkg/errors"
	"article-writer-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ArticleHandler 文章处理器
type ArticleHandler struct {
	service *article.Service
}

// NewArticleHandler 创建文章处理器
func NewArticleHandler(service *article.Service) *ArticleHandler {
	return &ArticleHandler{service: service}
}

// Generate 发起文章生成
// @Summary 发起文章生成
// @Description 受理生成请求：并发槽位不足时进入排队，否则立即开始后台生成
// @Tags Articles
// @Accept json
// @Produce json
// @Param body body dto.GenerateArticleRequest true "生成需求"
// @Success 202 {object} dto.Response[dto.StartGenerationResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/articles/generate [post]
func (h *ArticleHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.service.StartGeneration(ctx, req.SessionID, req.Requirements)
	if err != nil {
		logger.Error(ctx, "failed to start generation", err, "session_id", req.SessionID)
		dto.FromAppError(c, err)
		return
	}

	dto.Accepted(c, dto.ToStartGenerationResponse(result))
}

// List 获取文章列表
// @Summary 获取文章列表
// @Description 分页获取文章列表，可按会话和状态过滤
// @Tags Articles
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Param session_id query string false "会话 ID"
// @Param status query string false "文章状态"
// @Success 200 {object} dto.Response[dto.ArticleListResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/articles [get]
func (h *ArticleHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	pageReq := dto.BindPage(c)
	filter := &repository.ArticleFilter{
		SessionID: c.Query("session_id"),
		Status:    entity.ArticleStatus(c.Query("status")),
	}

	result, err := h.service.ListArticles(ctx, filter, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list articles", err)
		dto.InternalError(c, "failed to list articles")
		return
	}

	resp := dto.ToArticleListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// Get 获取文章详情
// @Summary 获取文章详情
// @Description 获取指定文章的完整内容与元数据
// @Tags Articles
// @Produce json
// @Param aid path string true "文章 ID"
// @Success 200 {object} dto.Response[dto.ArticleResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/articles/{aid} [get]
func (h *ArticleHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	articleID := c.Param("aid")

	a, err := h.service.GetArticle(ctx, articleID)
	if err != nil {
		if appErr := errors.AsAppError(err); appErr != nil && appErr.Code == errors.CodeArticleNotFound {
			dto.NotFound(c, "article not found")
			return
		}
		logger.Error(ctx, "failed to get article", err, "article_id", articleID)
		dto.InternalError(c, "failed to get article")
		return
	}

	dto.Success(c, dto.ToArticleResponse(a))
}

// Report 获取校验报告
// @Summary 获取校验报告
// @Description 汇总文章全部校验日志、版本历史与各节点最近得分
// @Tags Articles
// @Produce json
// @Param aid path string true "文章 ID"
// @Success 200 {object} dto.Response[article.Report]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/articles/{aid}/report [get]
func (h *ArticleHandler) Report(c *gin.Context) {
	ctx := c.Request.Context()
	articleID := c.Param("aid")

	report, err := h.service.BuildReport(ctx, articleID)
	if err != nil {
		logger.Error(ctx, "failed to build validation report", err, "article_id", articleID)
		dto.InternalError(c, "failed to build validation report")
		return
	}

	dto.Success(c, report)
}

// Checkpoints 获取检查点列表
// @Summary 获取检查点列表
// @Description 获取文章生成过程中保存的全部检查点（用于时间旅行）
// @Tags Articles
// @Produce json
// @Param aid path string true "文章 ID"
// @Success 200 {object} dto.Response[dto.CheckpointListResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/articles/{aid}/checkpoints [get]
func (h *ArticleHandler) Checkpoints(c *gin.Context) {
	ctx := c.Request.Context()
	articleID := c.Param("aid")

	checkpoints, err := h.service.ListCheckpoints(ctx, articleID)
	if err != nil {
		logger.Error(ctx, "failed to list checkpoints", err, "article_id", articleID)
		dto.InternalError(c, "failed to list checkpoints")
		return
	}

	dto.Success(c, dto.ToCheckpointListResponse(checkpoints))
}

// SessionStatus 获取会话排队状态
// @Summary 获取会话排队状态
// @Description 返回会话在生成队列中的位置，0 表示未在排队
// @Tags Sessions
// @Produce json
// @Param sid path string true "会话 ID"
// @Success 200 {object} dto.Response[dto.SessionStatusResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/sessions/{sid}/status [get]
func (h *ArticleHandler) SessionStatus(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := c.Param("sid")

	position, err := h.service.SessionStatus(ctx, sessionID)
	if err != nil {
		logger.Error(ctx, "failed to get session status", err, "session_id", sessionID)
		dto.InternalError(c, "failed to get session status")
		return
	}

	dto.Success(c, &dto.SessionStatusResponse{
		SessionID:     sessionID,
		QueuePosition: position,
	})
}

// TimeTravel 时间旅行
// @Summary 时间旅行
// @Description 从指定检查点加载状态，套用修改后以新文章 ID 恢复工作流
// @Tags Articles
// @Accept json
// @Produce json
// @Param body body dto.TimeTravelRequest true "检查点与修改项"
// @Success 202 {object} dto.Response[dto.StartGenerationResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/time-travel [post]
func (h *ArticleHandler) TimeTravel(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.TimeTravelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.service.TimeTravel(ctx, req.CheckpointID, req.Modifications)
	if err != nil {
		if appErr := errors.AsAppError(err); appErr != nil && appErr.Code == errors.CodeCheckpointNotFound {
			dto.NotFound(c, "checkpoint not found")
			return
		}
		logger.Error(ctx, "time travel failed", err, "checkpoint_id", req.CheckpointID)
		dto.FromAppError(c, err)
		return
	}

	dto.Accepted(c, dto.ToStartGenerationResponse(result))
}
