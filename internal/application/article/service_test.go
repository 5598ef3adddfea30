package article

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"article-writer-api/internal/config"
	"article-writer-api/internal/domain/entity"
	"article-writer-api/internal/domain/repository"
)

// fakeQueueRepo 内存排队仓储
type fakeQueueRepo struct {
	processing int64
	queued     []*entity.QueueItem
	marked     []string
	completed  []string
}

func (f *fakeQueueRepo) Enqueue(ctx context.Context, sessionID string) (*entity.QueueItem, error) {
	item := &entity.QueueItem{SessionID: sessionID, Position: len(f.queued) + 1, Status: entity.QueueStatusQueued}
	f.queued = append(f.queued, item)
	return item, nil
}

func (f *fakeQueueRepo) GetBySession(ctx context.Context, sessionID string) (*entity.QueueItem, error) {
	for _, item := range f.queued {
		if item.SessionID == sessionID {
			return item, nil
		}
	}
	return nil, nil
}

func (f *fakeQueueRepo) MarkProcessing(ctx context.Context, sessionID string) error {
	f.marked = append(f.marked, sessionID)
	f.processing++
	return nil
}

func (f *fakeQueueRepo) MarkCompleted(ctx context.Context, sessionID string) error {
	f.completed = append(f.completed, sessionID)
	f.processing--
	return nil
}

func (f *fakeQueueRepo) ProcessingCount(ctx context.Context) (int64, error) {
	return f.processing, nil
}

func (f *fakeQueueRepo) NextInQueue(ctx context.Context) (*entity.QueueItem, error) {
	if len(f.queued) == 0 {
		return nil, nil
	}
	return f.queued[0], nil
}

func (f *fakeQueueRepo) Position(ctx context.Context, sessionID string) (int, error) {
	for _, item := range f.queued {
		if item.SessionID == sessionID {
			return item.Position, nil
		}
	}
	return 0, nil
}

// fakeTx 直通事务
type fakeTx struct{ calls int }

func (f *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

// fakeArticleRepo 内存文章仓储
type fakeArticleRepo struct {
	articles map[string]*entity.Article
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{articles: map[string]*entity.Article{}}
}

func (f *fakeArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	f.articles[article.ID] = article
	return nil
}

func (f *fakeArticleRepo) GetByID(ctx context.Context, id string) (*entity.Article, error) {
	return f.articles[id], nil
}

func (f *fakeArticleRepo) Update(ctx context.Context, article *entity.Article) error {
	f.articles[article.ID] = article
	return nil
}

func (f *fakeArticleRepo) UpdateStatus(ctx context.Context, id string, status entity.ArticleStatus) error {
	if a, ok := f.articles[id]; ok {
		a.Status = status
	}
	return nil
}

func (f *fakeArticleRepo) List(ctx context.Context, filter *repository.ArticleFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Article], error) {
	items := make([]*entity.Article, 0, len(f.articles))
	for _, a := range f.articles {
		items = append(items, a)
	}
	return &repository.PagedResult[*entity.Article]{Items: items, Total: int64(len(items))}, nil
}

func (f *fakeArticleRepo) GetBySession(ctx context.Context, sessionID string) ([]*entity.Article, error) {
	return nil, nil
}

// fakeNotifier 记录推送
type fakeNotifier struct {
	statuses []string
}

func (f *fakeNotifier) SendToken(sessionID, token string) {}

func (f *fakeNotifier) SendStatus(sessionID, status, detail string) {
	f.statuses = append(f.statuses, status)
}

func (f *fakeNotifier) SendNodeUpdate(sessionID, nodeName string, score float64) {}

func (f *fakeNotifier) SendError(sessionID, message string) {}

func (f *fakeNotifier) SendCompletion(sessionID, articleID string, payload any) {}

// fakeLogRepo 内存校验日志仓储
type fakeLogRepo struct {
	logs []*entity.ValidationLog
}

func (f *fakeLogRepo) Append(ctx context.Context, log *entity.ValidationLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeLogRepo) ListByArticle(ctx context.Context, articleID string) ([]*entity.ValidationLog, error) {
	return f.logs, nil
}

// fakeVersionRepo 内存版本仓储
type fakeVersionRepo struct {
	versions []*entity.ArticleVersion
}

func (f *fakeVersionRepo) Append(ctx context.Context, articleID, content string, scores map[string]float64, nodeName string) (*entity.ArticleVersion, error) {
	v := entity.NewArticleVersion(articleID, len(f.versions)+1, content, scores, nodeName)
	f.versions = append(f.versions, v)
	return v, nil
}

func (f *fakeVersionRepo) ListByArticle(ctx context.Context, articleID string) ([]*entity.ArticleVersion, error) {
	return f.versions, nil
}

func (f *fakeVersionRepo) CountByArticle(ctx context.Context, articleID string) (int64, error) {
	return int64(len(f.versions)), nil
}

func TestStartGenerationQueuesWhenSlotsFull(t *testing.T) {
	queue := &fakeQueueRepo{processing: 3}
	notifier := &fakeNotifier{}
	s := &Service{
		notifier: notifier,
		queue:    queue,
		cfg:      &config.GenerationConfig{MaxConcurrentArticles: 3},
	}

	result, err := s.StartGeneration(context.Background(), "sess-1", map[string]any{"topic": "测试"})
	require.NoError(t, err)

	assert.Equal(t, "queued", result.Status)
	assert.Equal(t, 1, result.Position)
	assert.Empty(t, result.ArticleID)
	assert.Equal(t, []string{"queued"}, notifier.statuses)
	assert.Empty(t, queue.marked) // 未占用处理槽位
}

func TestSessionStatusReportsQueuePosition(t *testing.T) {
	queue := &fakeQueueRepo{}
	_, err := queue.Enqueue(context.Background(), "sess-a")
	require.NoError(t, err)
	_, err = queue.Enqueue(context.Background(), "sess-b")
	require.NoError(t, err)

	s := &Service{queue: queue}

	pos, err := s.SessionStatus(context.Background(), "sess-b")
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	pos, err = s.SessionStatus(context.Background(), "sess-unknown")
	require.NoError(t, err)
	assert.Zero(t, pos)
}

func TestBuildReport(t *testing.T) {
	now := time.Now()
	logs := &fakeLogRepo{logs: []*entity.ValidationLog{
		{ArticleID: "a", NodeName: "grammar", Score: 6.0, RetryCount: 0, Status: entity.ValidationStatusFailed, CreatedAt: now},
		{ArticleID: "a", NodeName: "depth", Score: 9.0, RetryCount: 0, Status: entity.ValidationStatusPassed, CreatedAt: now},
		{ArticleID: "a", NodeName: "grammar", Score: 8.0, RetryCount: 1, Status: entity.ValidationStatusPassed, CreatedAt: now},
	}}
	versions := &fakeVersionRepo{versions: []*entity.ArticleVersion{
		{ArticleID: "a", VersionNumber: 1, NodeName: "generate", CreatedAt: now},
		{ArticleID: "a", VersionNumber: 2, NodeName: "regenerate", Scores: map[string]float64{"grammar": 8.0}, CreatedAt: now},
	}}

	s := &Service{logs: logs, versions: versions}

	report, err := s.BuildReport(context.Background(), "a")
	require.NoError(t, err)

	assert.Equal(t, "a", report.ArticleID)
	assert.Len(t, report.Validations, 3)
	assert.Len(t, report.Versions, 2)

	require.NotNil(t, report.Summary)
	assert.Equal(t, 3, report.Summary.TotalValidations)
	assert.Equal(t, 2, report.Summary.TotalVersions)

	// 各节点取最近一次得分：grammar 取重试后的 8.0
	assert.Equal(t, map[string]float64{"grammar": 8.0, "depth": 9.0}, report.Summary.LatestScores)
	assert.InDelta(t, 8.5, report.Summary.AverageScore, 1e-9)
}

func TestBuildReportEmpty(t *testing.T) {
	s := &Service{logs: &fakeLogRepo{}, versions: &fakeVersionRepo{}}

	report, err := s.BuildReport(context.Background(), "a")
	require.NoError(t, err)

	assert.Empty(t, report.Validations)
	assert.Empty(t, report.Versions)
	assert.Nil(t, report.Summary)
}

func TestLifecycleEvent(t *testing.T) {
	assert.Equal(t, "completed", lifecycleEvent("completed"))
	assert.Equal(t, "failed", lifecycleEvent("failed"))
	assert.Equal(t, "error", lifecycleEvent("error"))
	assert.Equal(t, "processing", lifecycleEvent("processing"))
}
