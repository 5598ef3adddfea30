// Package workflow 实现文章生成与校验的状态机
package workflow

import (
	"encoding/json"
	"time"
)

// 工作流状态
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusError      = "error"
)

// ArticleState 单次生成运行的完整可变状态。
// 由单个运行独占持有，检查点将其整体序列化为 JSON 快照。
type ArticleState struct {
	// 会话与文章标识
	SessionID string `json:"session_id"`
	ArticleID string `json:"article_id"`

	// 用户需求
	Topic          string         `json:"topic"`
	Author         string         `json:"author"`
	TargetAudience string         `json:"target_audience"`
	ArticleType    string         `json:"article_type"`
	Tone           string         `json:"tone"`
	Requirements   map[string]any `json:"requirements"`

	// 文章内容
	Content  string         `json:"content"`
	Title    string         `json:"title"`
	Metadata map[string]any `json:"metadata"`

	// 校验评分
	Scores       map[string]float64 `json:"scores"`
	OverallScore float64            `json:"overall_score"`

	// 校验反馈（各节点的原始 JSON 判定）
	Feedback map[string]map[string]any `json:"feedback"`

	// 重试追踪
	RetryCounts map[string]int `json:"retry_counts"`

	// 控制流
	NeedsRegeneration bool     `json:"needs_regeneration"`
	FailedNodes       []string `json:"failed_nodes"`
	CurrentNode       string   `json:"current_node"`
	Iteration         int      `json:"iteration"`

	// 内容特征标记
	HasCode bool `json:"has_code"`
	HasMath bool `json:"has_math"`

	// 状态
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`

	// 时间戳
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewArticleState 创建初始状态
func NewArticleState(sessionID, articleID string, requirements map[string]any) *ArticleState {
	now := time.Now()
	s := &ArticleState{
		SessionID:    sessionID,
		ArticleID:    articleID,
		Requirements: requirements,
		Metadata:     make(map[string]any),
		Scores:       make(map[string]float64),
		Feedback:     make(map[string]map[string]any),
		RetryCounts:  make(map[string]int),
		FailedNodes:  []string{},
		Status:       StatusProcessing,
		StartedAt:    now,
		UpdatedAt:    now,
	}

	strField := func(key string) string {
		if v, ok := requirements[key].(string); ok {
			return v
		}
		return ""
	}
	s.Topic = strField("topic")
	s.Author = strField("author")
	s.TargetAudience = strField("target_audience")
	s.ArticleType = strField("article_type")
	s.Tone = strField("tone")

	s.Metadata["topic"] = s.Topic
	s.Metadata["target_audience"] = s.TargetAudience
	s.Metadata["article_type"] = s.ArticleType
	return s
}

// Clone 深拷贝状态（map/slice 不共享）
func (s *ArticleState) Clone() *ArticleState {
	c := *s
	c.Requirements = cloneAnyMap(s.Requirements)
	c.Metadata = cloneAnyMap(s.Metadata)
	c.Scores = make(map[string]float64, len(s.Scores))
	for k, v := range s.Scores {
		c.Scores[k] = v
	}
	c.Feedback = make(map[string]map[string]any, len(s.Feedback))
	for k, v := range s.Feedback {
		c.Feedback[k] = cloneAnyMap(v)
	}
	c.RetryCounts = make(map[string]int, len(s.RetryCounts))
	for k, v := range s.RetryCounts {
		c.RetryCounts[k] = v
	}
	c.FailedNodes = append([]string{}, s.FailedNodes...)
	return &c
}

// Snapshot 序列化为检查点快照
func (s *ArticleState) Snapshot() ([]byte, error) {
	return json.Marshal(s)
}

// StateFromSnapshot 从检查点快照恢复状态
func StateFromSnapshot(data []byte) (*ArticleState, error) {
	var s ArticleState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Requirements == nil {
		s.Requirements = make(map[string]any)
	}
	if s.Metadata == nil {
		s.Metadata = make(map[string]any)
	}
	if s.Scores == nil {
		s.Scores = make(map[string]float64)
	}
	if s.Feedback == nil {
		s.Feedback = make(map[string]map[string]any)
	}
	if s.RetryCounts == nil {
		s.RetryCounts = make(map[string]int)
	}
	if s.FailedNodes == nil {
		s.FailedNodes = []string{}
	}
	return &s, nil
}

// ApplyOverrides 应用时间旅行修改；只接受已知字段，未知键忽略
func (s *ArticleState) ApplyOverrides(overrides map[string]any) {
	for key, val := range overrides {
		switch key {
		case "topic":
			if v, ok := val.(string); ok {
				s.Topic = v
				s.Requirements["topic"] = v
				s.Metadata["topic"] = v
			}
		case "author":
			if v, ok := val.(string); ok {
				s.Author = v
				s.Requirements["author"] = v
			}
		case "target_audience":
			if v, ok := val.(string); ok {
				s.TargetAudience = v
				s.Requirements["target_audience"] = v
				s.Metadata["target_audience"] = v
			}
		case "article_type":
			if v, ok := val.(string); ok {
				s.ArticleType = v
				s.Requirements["article_type"] = v
				s.Metadata["article_type"] = v
			}
		case "tone":
			if v, ok := val.(string); ok {
				s.Tone = v
				s.Requirements["tone"] = v
			}
		case "content":
			if v, ok := val.(string); ok {
				s.Content = v
			}
		case "title":
			if v, ok := val.(string); ok {
				s.Title = v
			}
		case "requirements":
			if v, ok := val.(map[string]any); ok {
				for rk, rv := range v {
					s.Requirements[rk] = rv
				}
			}
		}
	}
	s.UpdatedAt = time.Now()
}

// MarkError 记录异常并切换到 error 状态
func (s *ArticleState) MarkError(err error) {
	s.Status = StatusError
	s.Error = err.Error()
	s.UpdatedAt = time.Now()
}

func cloneAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
