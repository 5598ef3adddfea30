// Package article 提供文章生成编排用例
package article

import (
	"context"
	"encoding/json"
	"time"

	"article-writer-api/internal/config"
	"article-writer-api/internal/domain/entity"
	"article-writer-api/internal/domain/repository"
	"article-writer-api/internal/infrastructure/messaging"
	"article-writer-api/internal/infrastructure/persistence/redis"
	"article-writer-api/internal/workflow"
	"article-writer-api/pkg/errors"
	"article-writer-api/pkg/logger"
	"article-writer-api/pkg/metrics"
)

// 文章详情缓存时长
const articleCacheTTL = 5 * time.Minute

// StartResult 生成请求的受理结果
type StartResult struct {
	ArticleID string `json:"article_id,omitempty"`
	Status    string `json:"status"`
	Position  int    `json:"position,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Service 文章生成编排服务：准入控制、后台运行工作流、查询与时间旅行
type Service struct {
	engine      *workflow.Engine
	notifier    workflow.Notifier
	articles    repository.ArticleRepository
	versions    repository.VersionRepository
	logs        repository.ValidationLogRepository
	checkpoints repository.CheckpointRepository
	queue       repository.QueueRepository
	tx          repository.Transactor
	cache       *redis.Cache
	producer    *messaging.Producer
	cfg         *config.GenerationConfig
}

// NewService 创建文章服务
func NewService(
	engine *workflow.Engine,
	notifier workflow.Notifier,
	articles repository.ArticleRepository,
	versions repository.VersionRepository,
	logs repository.ValidationLogRepository,
	checkpoints repository.CheckpointRepository,
	queue repository.QueueRepository,
	tx repository.Transactor,
	cache *redis.Cache,
	producer *messaging.Producer,
	cfg *config.GenerationConfig,
) *Service {
	return &Service{
		engine:      engine,
		notifier:    notifier,
		articles:    articles,
		versions:    versions,
		logs:        logs,
		checkpoints: checkpoints,
		queue:       queue,
		tx:          tx,
		cache:       cache,
		producer:    producer,
		cfg:         cfg,
	}
}

// StartGeneration 受理生成请求：在途数量达到上限时排队，否则立即启动后台工作流
func (s *Service) StartGeneration(ctx context.Context, sessionID string, requirements map[string]any) (*StartResult, error) {
	processing, err := s.queue.ProcessingCount(ctx)
	if err != nil {
		return nil, err
	}

	if processing >= int64(s.cfg.MaxConcurrentArticles) {
		item, err := s.queue.Enqueue(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		metrics.QueueDepth.Inc()
		s.notifier.SendStatus(sessionID, "queued", "waiting for a free generation slot")
		logger.Info(ctx, "generation request queued",
			"session_id", sessionID, "position", item.Position)
		return &StartResult{Status: "queued", Position: item.Position}, nil
	}

	article := entity.NewArticle(sessionID, stringValue(requirements, "topic"))
	article.Title = stringValue(requirements, "topic")
	article.Author = stringValue(requirements, "author")

	// 占用槽位与创建文章记录保持原子，避免失败后留下悬挂的处理中条目
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.queue.MarkProcessing(txCtx, sessionID); err != nil {
			return err
		}
		return s.articles.Create(txCtx, article)
	})
	if err != nil {
		return nil, err
	}

	state := workflow.NewArticleState(sessionID, article.ID, requirements)
	go s.runWorkflow(state)

	return &StartResult{
		ArticleID: article.ID,
		Status:    "processing",
		Message:   "article generation started",
	}, nil
}

// runWorkflow 在后台执行完整工作流，结束后释放队列槽位并发布生命周期事件
func (s *Service) runWorkflow(state *workflow.ArticleState) {
	ctx := logger.WithContext(context.Background(), logger.SessionIDKey, state.SessionID)
	ctx = logger.WithContext(ctx, logger.ArticleIDKey, state.ArticleID)

	s.publishLifecycle(ctx, state, "started")
	s.notifier.SendStatus(state.SessionID, "started", state.ArticleID)

	metrics.ActiveArticles.Inc()
	start := time.Now()

	final := s.engine.Run(ctx, state)

	status := final.Status
	metrics.ActiveArticles.Dec()
	metrics.ArticleGenerationTotal.WithLabelValues(status).Inc()
	metrics.ArticleGenerationDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	s.finishRun(ctx, final)
}

// finishRun 工作流结束后的收尾：缓存失效、槽位释放、事件发布、队列观测
func (s *Service) finishRun(ctx context.Context, final *workflow.ArticleState) {
	if err := s.cache.InvalidateArticle(ctx, final.ArticleID); err != nil {
		logger.Warn(ctx, "failed to invalidate article cache", "error", err)
	}

	if err := s.queue.MarkCompleted(ctx, final.SessionID); err != nil {
		logger.Warn(ctx, "failed to release queue slot", "error", err)
	}

	s.publishLifecycle(ctx, final, lifecycleEvent(final.Status))

	// 队首会话仅记录，不自动触发下一次生成：
	// 排队中的会话需要客户端重新提交请求才会占用空出的槽位
	next, err := s.queue.NextInQueue(ctx)
	if err != nil {
		logger.Warn(ctx, "failed to peek queue head", "error", err)
		return
	}
	if next != nil {
		metrics.QueueDepth.Dec()
		logger.Info(ctx, "generation slot freed, next session waiting",
			"next_session_id", next.SessionID)
	}
}

// publishLifecycle 发布生命周期事件，失败仅记录
func (s *Service) publishLifecycle(ctx context.Context, state *workflow.ArticleState, event string) {
	_, err := s.producer.PublishLifecycle(ctx, &messaging.ArticleLifecycleMessage{
		ArticleID:    state.ArticleID,
		SessionID:    state.SessionID,
		Event:        event,
		Status:       state.Status,
		OverallScore: state.OverallScore,
		Iterations:   state.Iteration,
		Detail:       state.Error,
	})
	if err != nil {
		logger.Warn(ctx, "failed to publish lifecycle event", "event", event, "error", err)
	}
}

// GetArticle 获取文章详情（redis 读穿缓存）
func (s *Service) GetArticle(ctx context.Context, articleID string) (*entity.Article, error) {
	data, err := s.cache.GetOrLoadSafe(ctx, redis.ArticleCacheKey(articleID), articleCacheTTL, func() (interface{}, error) {
		article, err := s.articles.GetByID(ctx, articleID)
		if err != nil {
			return nil, err
		}
		if article == nil {
			return nil, errors.ErrArticleNotFound
		}
		return article, nil
	})
	if err != nil {
		return nil, err
	}

	var article entity.Article
	if err := json.Unmarshal(data, &article); err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheError, "failed to decode cached article")
	}
	return &article, nil
}

// ListArticles 获取文章列表
func (s *Service) ListArticles(ctx context.Context, filter *repository.ArticleFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Article], error) {
	return s.articles.List(ctx, filter, pagination)
}

// ListCheckpoints 获取文章全部检查点
func (s *Service) ListCheckpoints(ctx context.Context, articleID string) ([]*entity.Checkpoint, error) {
	return s.checkpoints.ListByArticle(ctx, articleID)
}

// SessionStatus 会话当前排队位置（0 表示未在排队）
func (s *Service) SessionStatus(ctx context.Context, sessionID string) (int, error) {
	return s.queue.Position(ctx, sessionID)
}

// TimeTravel 从检查点派生新文章：加载快照、套用修改、换新 ID 后恢复工作流
func (s *Service) TimeTravel(ctx context.Context, checkpointID string, modifications map[string]any) (*StartResult, error) {
	checkpoint, err := s.checkpoints.GetByID(ctx, checkpointID)
	if err != nil {
		return nil, err
	}
	if checkpoint == nil {
		return nil, errors.ErrCheckpointNotFound
	}

	state, err := workflow.StateFromSnapshot(checkpoint.StateData)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternalError, "failed to restore checkpoint state")
	}

	state.ApplyOverrides(modifications)

	sourceArticle := state.ArticleID
	state.ArticleID = entity.NewArticleID()
	state.Status = workflow.StatusProcessing
	state.Error = ""

	article := entity.NewArticle(state.SessionID, state.Topic)
	article.ID = state.ArticleID
	article.Title = state.Title
	article.Author = state.Author
	article.Metadata.SourceArticle = sourceArticle
	article.Metadata.SourceNode = checkpoint.NodeName

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.queue.MarkProcessing(txCtx, state.SessionID); err != nil {
			return err
		}
		return s.articles.Create(txCtx, article)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "time travel started",
		"checkpoint_id", checkpointID,
		"source_article_id", sourceArticle,
		"new_article_id", state.ArticleID,
	)

	go s.resumeWorkflow(state)

	return &StartResult{
		ArticleID: state.ArticleID,
		Status:    "processing",
		Message:   "time travel successful, new article created",
	}, nil
}

// resumeWorkflow 在后台从快照状态恢复工作流
func (s *Service) resumeWorkflow(state *workflow.ArticleState) {
	ctx := logger.WithContext(context.Background(), logger.SessionIDKey, state.SessionID)
	ctx = logger.WithContext(ctx, logger.ArticleIDKey, state.ArticleID)

	s.publishLifecycle(ctx, state, "started")
	s.notifier.SendStatus(state.SessionID, "started", state.ArticleID)

	metrics.ActiveArticles.Inc()
	start := time.Now()

	final := s.engine.Resume(ctx, state)

	status := final.Status
	metrics.ActiveArticles.Dec()
	metrics.ArticleGenerationTotal.WithLabelValues(status).Inc()
	metrics.ArticleGenerationDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	s.finishRun(ctx, final)
}

// lifecycleEvent 终态到生命周期事件名的映射
func lifecycleEvent(status string) string {
	switch status {
	case workflow.StatusCompleted:
		return "completed"
	case workflow.StatusFailed:
		return "failed"
	case workflow.StatusError:
		return "error"
	default:
		return status
	}
}

func stringValue(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
