package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func decisionEngine(t *testing.T) *Engine {
	t.Helper()
	return newEngineFixture(newFakeGenerator("", 9.0), testConfig()).engine
}

func TestDecideHighScoresFinalize(t *testing.T) {
	e := decisionEngine(t)
	state := NewArticleState("s", "a", nil)
	for _, name := range []string{"structure", "language", "grammar", "length", "math", "depth", "readability", "code"} {
		state.Scores[name] = 9.25
	}

	assert.Equal(t, DecisionFinalize, e.Decide(context.Background(), state))
	assert.Empty(t, state.FailedNodes)
}

func TestDecideLowMeanBlamesLowestStage(t *testing.T) {
	e := decisionEngine(t)
	state := NewArticleState("s", "a", nil)
	// 无失败节点，但均分低于发布阈值且 grammar 低于单项阈值
	state.Scores = map[string]float64{
		"structure":   8.0,
		"language":    8.0,
		"grammar":     6.0,
		"length":      8.0,
		"math":        8.0,
		"depth":       8.0,
		"readability": 8.0,
		"code":        8.0,
	}

	assert.Equal(t, DecisionRegenerate, e.Decide(context.Background(), state))
	assert.Equal(t, []string{"grammar"}, state.FailedNodes)
}

func TestDecideMediocreButPassingFinalize(t *testing.T) {
	e := decisionEngine(t)
	state := NewArticleState("s", "a", nil)
	// 均分 8.0 低于发布阈值，但最低单项不低于通过阈值：接受发布
	for _, name := range []string{"structure", "language", "grammar", "length", "math", "depth", "readability", "code"} {
		state.Scores[name] = 8.0
	}

	assert.Equal(t, DecisionFinalize, e.Decide(context.Background(), state))
	assert.Empty(t, state.FailedNodes)
}

func TestDecideFailedNodesRegenerate(t *testing.T) {
	e := decisionEngine(t)
	state := NewArticleState("s", "a", nil)
	state.FailedNodes = []string{"grammar"}
	state.RetryCounts["grammar"] = 2

	assert.Equal(t, DecisionRegenerate, e.Decide(context.Background(), state))
}

func TestDecideRetryExhaustedFinalize(t *testing.T) {
	e := decisionEngine(t)
	state := NewArticleState("s", "a", nil)
	state.FailedNodes = []string{"grammar", "depth"}
	state.RetryCounts["grammar"] = 2
	state.RetryCounts["depth"] = 5

	assert.Equal(t, DecisionFinalize, e.Decide(context.Background(), state))
}

func TestDecideIterationCapFinalize(t *testing.T) {
	e := decisionEngine(t)
	state := NewArticleState("s", "a", nil)
	state.Iteration = 10
	state.FailedNodes = []string{"grammar"}
	state.RetryCounts["grammar"] = 1

	// 达到轮次上限时即使还有可重试的失败节点也定稿
	assert.Equal(t, DecisionFinalize, e.Decide(context.Background(), state))
}

func TestDecideEmptyScoresFinalize(t *testing.T) {
	e := decisionEngine(t)
	state := NewArticleState("s", "a", nil)

	assert.Equal(t, DecisionFinalize, e.Decide(context.Background(), state))
}

func TestLowestStageTieBreaksByName(t *testing.T) {
	name, score := lowestStage(map[string]float64{
		"readability": 6.0,
		"grammar":     6.0,
		"depth":       9.0,
	})

	assert.Equal(t, "grammar", name)
	assert.InDelta(t, 6.0, score, 1e-9)
}

func TestMeanScore(t *testing.T) {
	assert.Equal(t, 0.0, meanScore(nil))
	assert.InDelta(t, 7.5, meanScore(map[string]float64{"a": 5.0, "b": 10.0}), 1e-9)
}
