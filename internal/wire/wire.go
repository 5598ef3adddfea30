//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"github.com/google/wire"

	"article-writer-api/internal/application/article"
	"article-writer-api/internal/application/chat"
	"article-writer-api/internal/application/generation"
	"article-writer-api/internal/config"
	"article-writer-api/internal/domain/repository"
	"article-writer-api/internal/infrastructure/llm"
	"article-writer-api/internal/infrastructure/messaging"
	"article-writer-api/internal/infrastructure/persistence/postgres"
	"article-writer-api/internal/infrastructure/persistence/redis"
	"article-writer-api/internal/interfaces/http/handler"
	"article-writer-api/internal/interfaces/http/middleware"
	"article-writer-api/internal/interfaces/http/router"
	"article-writer-api/internal/interfaces/ws"
	"article-writer-api/internal/latex"
	"article-writer-api/internal/workflow"
	workflowport "article-writer-api/internal/workflow/port"
)

// App 应用顶层容器
type App struct {
	Router *router.Router
	Hub    *ws.Hub
}

// InitializeApp 初始化整个应用
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		WorkflowSet,
		RouterSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewArticleRepository,
	postgres.NewVersionRepository,
	postgres.NewValidationLogRepository,
	postgres.NewCheckpointRepository,
	postgres.NewChatRepository,
	postgres.NewQueueRepository,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.ArticleRepository), new(*postgres.ArticleRepository)),
	wire.Bind(new(repository.VersionRepository), new(*postgres.VersionRepository)),
	wire.Bind(new(repository.ValidationLogRepository), new(*postgres.ValidationLogRepository)),
	wire.Bind(new(repository.CheckpointRepository), new(*postgres.CheckpointRepository)),
	wire.Bind(new(repository.ChatRepository), new(*postgres.ChatRepository)),
	wire.Bind(new(repository.QueueRepository), new(*postgres.QueueRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
)

// WorkflowSet 工作流提供者集合
var WorkflowSet = wire.NewSet(
	ProvideGenerationConfig,
	llm.NewEinoFactory,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
	generation.NewEinoGenerator,
	wire.Bind(new(workflow.Generator), new(*generation.EinoGenerator)),
	ws.NewHub,
	wire.Bind(new(workflow.Notifier), new(*ws.Hub)),
	ProvideLatexProcessor,
	wire.Bind(new(workflow.EquationProcessor), new(*latex.Processor)),
	workflow.NewEngine,
	article.NewService,
	chat.NewService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewChatHandler,
	handler.NewArticleHandler,
	handler.NewWSHandler,
	wire.Struct(new(router.Handlers), "*"),
	ProvideRouter,
)

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 10000
	}
	return messaging.NewProducer(redisClient.Redis(), int64(maxLen))
}

// ProvideGenerationConfig 提供生成配置
func ProvideGenerationConfig(cfg *config.Config) *config.GenerationConfig {
	return &cfg.Generation
}

// ProvideLatexProcessor 提供公式处理器
func ProvideLatexProcessor(cfg *config.Config) *latex.Processor {
	renderer := latex.NewHTTPRenderer(&cfg.Latex)
	return latex.NewProcessor(renderer, &cfg.Latex)
}

// ProvideRouter 提供 HTTP 路由器
func ProvideRouter(cfg *config.Config, handlers *router.Handlers, rateLimiter middleware.RateLimiter) *router.Router {
	return router.New(cfg, handlers, rateLimiter)
}
