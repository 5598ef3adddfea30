package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"article-writer-api/internal/config"
	"article-writer-api/internal/domain/entity"
	"article-writer-api/internal/domain/repository"
)

// fakeGenerator 按脚本返回草稿与评分
type fakeGenerator struct {
	mu sync.Mutex

	drafts   []string
	draftIdx int

	// 每个节点的评分队列，耗尽后重复最后一个
	scores map[string][]float64

	// 附加到指定节点判定结果中的额外字段
	extras map[string]map[string]any

	generateErr error
	validateErr map[string]error

	validateCalls map[string]int
	regenCalls    int
}

func newFakeGenerator(draft string, score float64) *fakeGenerator {
	return &fakeGenerator{
		drafts:        []string{draft},
		scores:        map[string][]float64{"": {score}},
		validateErr:   map[string]error{},
		validateCalls: map[string]int{},
	}
}

func (f *fakeGenerator) GenerateArticle(ctx context.Context, state *ArticleState, onToken func(string)) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.generateErr != nil {
		return "", f.generateErr
	}
	draft := f.drafts[min(f.draftIdx, len(f.drafts)-1)]
	f.draftIdx++
	if onToken != nil {
		onToken(draft)
	}
	return draft, nil
}

func (f *fakeGenerator) RegenerateContent(ctx context.Context, state *ArticleState, failedNodes, feedback string, onToken func(string)) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regenCalls++
	draft := f.drafts[min(f.draftIdx, len(f.drafts)-1)]
	f.draftIdx++
	return draft, nil
}

func (f *fakeGenerator) ValidateContent(ctx context.Context, stage string, state *ArticleState) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validateCalls[stage]++
	if err := f.validateErr[stage]; err != nil {
		return nil, err
	}
	queue, ok := f.scores[stage]
	if !ok {
		queue = f.scores[""]
	}
	idx := f.validateCalls[stage] - 1
	score := queue[min(idx, len(queue)-1)]
	result := map[string]any{
		"score":    score,
		"feedback": stage + " feedback",
	}
	for k, v := range f.extras[stage] {
		result[k] = v
	}
	return result, nil
}

// fakeNotifier 记录推送的消息
type fakeNotifier struct {
	mu          sync.Mutex
	tokens      []string
	statuses    []string
	nodeUpdates map[string]float64
	errs        []string
	completions []any
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{nodeUpdates: map[string]float64{}}
}

func (f *fakeNotifier) SendToken(sessionID, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
}

func (f *fakeNotifier) SendStatus(sessionID, status, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
}

func (f *fakeNotifier) SendNodeUpdate(sessionID, nodeName string, score float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nodeUpdates[nodeName] = score
}

func (f *fakeNotifier) SendError(sessionID, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = append(f.errs, message)
}

func (f *fakeNotifier) SendCompletion(sessionID, articleID string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completions = append(f.completions, payload)
}

// fakeArticleRepo 内存文章仓储
type fakeArticleRepo struct {
	mu       sync.Mutex
	articles map[string]*entity.Article
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{articles: map[string]*entity.Article{}}
}

func (f *fakeArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.articles[article.ID] = article
	return nil
}

func (f *fakeArticleRepo) GetByID(ctx context.Context, id string) (*entity.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.articles[id], nil
}

func (f *fakeArticleRepo) Update(ctx context.Context, article *entity.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.articles[article.ID] = article
	return nil
}

func (f *fakeArticleRepo) UpdateStatus(ctx context.Context, id string, status entity.ArticleStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.articles[id]; ok {
		a.Status = status
	}
	return nil
}

func (f *fakeArticleRepo) List(ctx context.Context, filter *repository.ArticleFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Article], error) {
	return &repository.PagedResult[*entity.Article]{}, nil
}

func (f *fakeArticleRepo) GetBySession(ctx context.Context, sessionID string) ([]*entity.Article, error) {
	return nil, nil
}

// fakeVersionRepo 内存版本仓储
type fakeVersionRepo struct {
	mu       sync.Mutex
	versions []*entity.ArticleVersion
}

func (f *fakeVersionRepo) Append(ctx context.Context, articleID, content string, scores map[string]float64, nodeName string) (*entity.ArticleVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := entity.NewArticleVersion(articleID, len(f.versions)+1, content, scores, nodeName)
	f.versions = append(f.versions, v)
	return v, nil
}

func (f *fakeVersionRepo) ListByArticle(ctx context.Context, articleID string) ([]*entity.ArticleVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*entity.ArticleVersion{}, f.versions...), nil
}

func (f *fakeVersionRepo) CountByArticle(ctx context.Context, articleID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.versions)), nil
}

// fakeLogRepo 内存校验日志仓储
type fakeLogRepo struct {
	mu   sync.Mutex
	logs []*entity.ValidationLog
}

func (f *fakeLogRepo) Append(ctx context.Context, log *entity.ValidationLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeLogRepo) ListByArticle(ctx context.Context, articleID string) ([]*entity.ValidationLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*entity.ValidationLog{}, f.logs...), nil
}

// fakeCheckpointRepo 内存检查点仓储
type fakeCheckpointRepo struct {
	mu          sync.Mutex
	checkpoints []*entity.Checkpoint
}

func (f *fakeCheckpointRepo) Save(ctx context.Context, checkpoint *entity.Checkpoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkpoints = append(f.checkpoints, checkpoint)
	return nil
}

func (f *fakeCheckpointRepo) GetByID(ctx context.Context, id string) (*entity.Checkpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cp := range f.checkpoints {
		if cp.ID == id {
			return cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCheckpointRepo) ListByArticle(ctx context.Context, articleID string) ([]*entity.Checkpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*entity.Checkpoint{}, f.checkpoints...), nil
}

// fakeEquations 记录公式处理调用
type fakeEquations struct {
	processed bool
	count     int
	err       error
}

func (f *fakeEquations) Process(ctx context.Context, content, articleID string) (string, int, error) {
	f.processed = true
	if f.err != nil {
		return "", 0, f.err
	}
	return content + "\n\n![Equation 1](/static/images/eq.png)", f.count, nil
}

func testConfig() *config.GenerationConfig {
	return &config.GenerationConfig{
		MaxRetries:        5,
		MaxIterations:     10,
		MinScoreThreshold: 7.5,
		PublishThreshold:  8.5,
	}
}

type engineFixture struct {
	engine      *Engine
	generator   *fakeGenerator
	notifier    *fakeNotifier
	articles    *fakeArticleRepo
	versions    *fakeVersionRepo
	logs        *fakeLogRepo
	checkpoints *fakeCheckpointRepo
	equations   *fakeEquations
}

func newEngineFixture(gen *fakeGenerator, cfg *config.GenerationConfig) *engineFixture {
	f := &engineFixture{
		generator:   gen,
		notifier:    newFakeNotifier(),
		articles:    newFakeArticleRepo(),
		versions:    &fakeVersionRepo{},
		logs:        &fakeLogRepo{},
		checkpoints: &fakeCheckpointRepo{},
		equations:   &fakeEquations{},
	}
	f.engine = NewEngine(f.generator, f.notifier, f.equations,
		f.articles, f.versions, f.logs, f.checkpoints, cfg)
	return f
}

func seedArticle(f *engineFixture, state *ArticleState) {
	a := entity.NewArticle(state.SessionID, state.Topic)
	a.ID = state.ArticleID
	_ = f.articles.Create(context.Background(), a)
}

func TestEngineRunCompletes(t *testing.T) {
	gen := newFakeGenerator("# Go 并发模型\n\n正文内容。", 9.0)
	f := newEngineFixture(gen, testConfig())

	state := NewArticleState("sess-1", "article_000000000001", map[string]any{"topic": "Go 并发模型"})
	seedArticle(f, state)

	final := f.engine.Run(context.Background(), state)

	assert.Equal(t, StatusCompleted, final.Status)
	assert.Equal(t, "Go 并发模型", final.Title)
	// 六个 LLM 节点 9.0，math/code 不适用记满分：(6*9.0 + 2*10.0) / 8
	assert.InDelta(t, 9.25, final.OverallScore, 1e-9)
	assert.Equal(t, 0, final.Iteration)

	// 八个节点全部出分
	assert.Len(t, final.Scores, 8)

	// 初稿版本 + 检查点各一份
	require.Len(t, f.versions.versions, 1)
	assert.Equal(t, "generate", f.versions.versions[0].NodeName)
	assert.Empty(t, f.versions.versions[0].Scores)
	assert.Len(t, f.checkpoints.checkpoints, 1)

	// 文章落库为 completed
	a, _ := f.articles.GetByID(context.Background(), state.ArticleID)
	require.NotNil(t, a)
	assert.Equal(t, entity.ArticleStatusCompleted, a.Status)
	assert.Equal(t, final.Content, a.Content)

	assert.Len(t, f.notifier.completions, 1)
}

func TestEngineRunRegeneratesOnLowScore(t *testing.T) {
	gen := newFakeGenerator("# 初稿\n\n正文。", 9.0)
	// grammar 第一轮 6.0，第二轮 9.0
	gen.scores["grammar"] = []float64{6.0, 9.0}
	gen.drafts = []string{"# 初稿\n\n正文。", "# 修订稿\n\n改写后的正文。"}
	f := newEngineFixture(gen, testConfig())

	state := NewArticleState("sess-1", "article_000000000002", map[string]any{"topic": "测试"})
	seedArticle(f, state)

	final := f.engine.Run(context.Background(), state)

	assert.Equal(t, StatusCompleted, final.Status)
	assert.Equal(t, 1, final.Iteration)
	assert.Equal(t, 1, gen.regenCalls)
	assert.Equal(t, "修订稿", final.Title)
	assert.Empty(t, final.FailedNodes)
	assert.Equal(t, 1, final.RetryCounts["grammar"])

	// 初稿 + 重写各一个版本；重写版本携带当轮评分
	require.Len(t, f.versions.versions, 2)
	assert.Equal(t, "generate", f.versions.versions[0].NodeName)
	assert.Equal(t, "regenerate", f.versions.versions[1].NodeName)
	assert.NotEmpty(t, f.versions.versions[1].Scores)
}

func TestEngineRunGenerateErrorAborts(t *testing.T) {
	gen := newFakeGenerator("", 9.0)
	gen.generateErr = errors.New("provider unavailable")
	f := newEngineFixture(gen, testConfig())

	state := NewArticleState("sess-1", "article_000000000003", map[string]any{"topic": "测试"})
	seedArticle(f, state)

	final := f.engine.Run(context.Background(), state)

	assert.Equal(t, StatusError, final.Status)
	assert.Contains(t, final.Error, "provider unavailable")

	a, _ := f.articles.GetByID(context.Background(), state.ArticleID)
	assert.Equal(t, entity.ArticleStatusError, a.Status)
	assert.Len(t, f.notifier.errs, 1)
}

func TestEngineRunValidateErrorAborts(t *testing.T) {
	gen := newFakeGenerator("# 初稿\n\n正文。", 9.0)
	gen.validateErr["depth"] = errors.New("llm timeout")
	f := newEngineFixture(gen, testConfig())

	state := NewArticleState("sess-1", "article_000000000004", map[string]any{"topic": "测试"})
	seedArticle(f, state)

	final := f.engine.Run(context.Background(), state)

	assert.Equal(t, StatusError, final.Status)
	a, _ := f.articles.GetByID(context.Background(), state.ArticleID)
	assert.Equal(t, entity.ArticleStatusError, a.Status)
}

func TestEngineRunRetryExhaustionPublishesFailed(t *testing.T) {
	gen := newFakeGenerator("# 初稿\n\n正文。", 9.0)
	gen.scores["grammar"] = []float64{6.0} // 永远不及格
	cfg := testConfig()
	cfg.MaxRetries = 2
	f := newEngineFixture(gen, cfg)

	state := NewArticleState("sess-1", "article_000000000005", map[string]any{"topic": "测试"})
	seedArticle(f, state)

	final := f.engine.Run(context.Background(), state)

	// 重试耗尽后保留 failed 状态，但最后一版草稿仍然发布
	assert.Equal(t, StatusFailed, final.Status)
	assert.Equal(t, 2, final.RetryCounts["grammar"])

	a, _ := f.articles.GetByID(context.Background(), state.ArticleID)
	assert.Equal(t, entity.ArticleStatusFailed, a.Status)
	assert.NotEmpty(t, a.Content)
	assert.Len(t, f.notifier.completions, 1)
}

func TestEngineRunProcessesEquations(t *testing.T) {
	gen := newFakeGenerator("# 数学文章\n\n质能方程 $E=mc^2$ 很有名。", 9.0)
	f := newEngineFixture(gen, testConfig())

	state := NewArticleState("sess-1", "article_000000000006", map[string]any{"topic": "数学"})
	seedArticle(f, state)

	final := f.engine.Run(context.Background(), state)

	assert.True(t, final.HasMath)
	assert.True(t, f.equations.processed)
	assert.Contains(t, final.Content, "![Equation 1]")
}

func TestEngineResumeSkipsGenerate(t *testing.T) {
	gen := newFakeGenerator("不应被使用", 9.0)
	f := newEngineFixture(gen, testConfig())

	state := NewArticleState("sess-1", "article_000000000007", map[string]any{"topic": "测试"})
	state.Content = "# 已有草稿\n\n从检查点恢复的内容。"
	state.Title = "已有草稿"
	seedArticle(f, state)

	final := f.engine.Resume(context.Background(), state)

	assert.Equal(t, StatusCompleted, final.Status)
	assert.Equal(t, 0, gen.draftIdx) // 未触发初稿生成
	assert.Contains(t, final.Content, "从检查点恢复的内容")
}

func TestEngineResumeEmptyContentFallsBack(t *testing.T) {
	gen := newFakeGenerator("# 新稿\n\n正文。", 9.0)
	f := newEngineFixture(gen, testConfig())

	state := NewArticleState("sess-1", "article_000000000008", map[string]any{"topic": "测试"})
	seedArticle(f, state)

	final := f.engine.Resume(context.Background(), state)

	assert.Equal(t, StatusCompleted, final.Status)
	assert.Equal(t, 1, gen.draftIdx)
}
