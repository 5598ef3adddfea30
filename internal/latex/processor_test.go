package latex

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"article-writer-api/internal/config"
)

type renderedCall struct {
	equation string
	display  bool
	filename string
}

// fakeRenderer 记录渲染调用，可按公式体注入失败
type fakeRenderer struct {
	calls   []renderedCall
	failFor map[string]error
}

func (f *fakeRenderer) Render(ctx context.Context, equation string, displayMode bool, filename string) error {
	f.calls = append(f.calls, renderedCall{equation: equation, display: displayMode, filename: filename})
	if err := f.failFor[equation]; err != nil {
		return err
	}
	return nil
}

func newProcessorFixture() (*Processor, *fakeRenderer) {
	r := &fakeRenderer{failFor: map[string]error{}}
	cfg := &config.LatexConfig{ImagesDir: "static/images", ImagesURL: "/static/images"}
	return NewProcessor(r, cfg), r
}

func TestExtractEquations(t *testing.T) {
	content := "开头 $a+b$ 中间\n$$\n\\int_0^1 x dx\n$$\n结尾 $c^2$"
	equations := ExtractEquations(content)

	// display 公式先提取，inline 随后
	require.Len(t, equations, 3)
	assert.Equal(t, Equation{Body: `\int_0^1 x dx`, Mode: "display"}, equations[0])
	assert.Equal(t, Equation{Body: "a+b", Mode: "inline"}, equations[1])
	assert.Equal(t, Equation{Body: "c^2", Mode: "inline"}, equations[2])
}

func TestExtractEquationsNone(t *testing.T) {
	assert.Empty(t, ExtractEquations("没有任何公式的文章"))
}

func TestProcessReplacesInlineEquations(t *testing.T) {
	p, r := newProcessorFixture()

	content := "质能方程 $E=mc^2$ 与勾股定理 $a^2+b^2=c^2$。"
	modified, count, err := p.Process(context.Background(), content, "article_abc")
	require.NoError(t, err)

	assert.Equal(t, 2, count)
	require.Len(t, r.calls, 2)
	assert.Equal(t, "eq_article_abc_0.png", r.calls[0].filename)
	assert.Equal(t, "eq_article_abc_1.png", r.calls[1].filename)
	assert.False(t, r.calls[0].display)

	assert.NotContains(t, modified, "$E=mc^2$")
	assert.Contains(t, modified, "![Equation 1](/static/images/eq_article_abc_0.png)")
	assert.Contains(t, modified, "![Equation 2](/static/images/eq_article_abc_1.png)")
}

func TestProcessDisplayMode(t *testing.T) {
	p, r := newProcessorFixture()

	content := "推导：\n$$E=mc^2$$\n完毕。"
	modified, count, err := p.Process(context.Background(), content, "article_abc")
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	require.Len(t, r.calls, 1)
	assert.True(t, r.calls[0].display)
	assert.NotContains(t, modified, "$$")
}

func TestProcessRenderFailureKeepsRawLatex(t *testing.T) {
	p, r := newProcessorFixture()
	r.failFor["E=mc^2"] = errors.New("render service down")

	content := "公式 $E=mc^2$ 与 $a+b$。"
	modified, count, err := p.Process(context.Background(), content, "article_abc")
	require.NoError(t, err)

	// 失败的公式保留原文，其余照常替换
	assert.Equal(t, 1, count)
	assert.Contains(t, modified, "$E=mc^2$")
	assert.NotContains(t, modified, "$a+b$")
}

func TestProcessNoEquations(t *testing.T) {
	p, r := newProcessorFixture()

	content := "纯文字内容。"
	modified, count, err := p.Process(context.Background(), content, "article_abc")
	require.NoError(t, err)

	assert.Equal(t, content, modified)
	assert.Zero(t, count)
	assert.Empty(t, r.calls)
}
