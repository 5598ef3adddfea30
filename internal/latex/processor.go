// Package latex 提供文章内 LaTeX 公式的提取与渲染
package latex

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"article-writer-api/internal/config"
	"article-writer-api/pkg/logger"
	"article-writer-api/pkg/metrics"
)

var (
	displayRe = regexp.MustCompile(`(?s)\$\$(.*?)\$\$`)
	inlineRe  = regexp.MustCompile(`\$([^\$]+?)\$`)
)

// Equation 提取出的公式
type Equation struct {
	Body string // 去除定界符并 trim 后的公式体
	Mode string // display / inline
}

// Processor 公式处理器：提取公式、渲染为图片并替换为 markdown 图片引用
type Processor struct {
	renderer Renderer
	cfg      *config.LatexConfig
}

// NewProcessor 创建公式处理器
func NewProcessor(renderer Renderer, cfg *config.LatexConfig) *Processor {
	return &Processor{renderer: renderer, cfg: cfg}
}

// ExtractEquations 提取内容中的全部公式：先 display（$$...$$），再 inline（$...$）
func ExtractEquations(content string) []Equation {
	var equations []Equation

	remaining := content
	for _, m := range displayRe.FindAllStringSubmatch(content, -1) {
		equations = append(equations, Equation{Body: strings.TrimSpace(m[1]), Mode: "display"})
		remaining = strings.Replace(remaining, m[0], "", 1)
	}

	for _, m := range inlineRe.FindAllStringSubmatch(remaining, -1) {
		equations = append(equations, Equation{Body: strings.TrimSpace(m[1]), Mode: "inline"})
	}

	return equations
}

// Process 渲染并替换内容中的公式，返回修改后的内容与成功替换的数量。
// 单个公式渲染失败时跳过该公式，原始 LaTeX 片段保留在内容中。
func (p *Processor) Process(ctx context.Context, content, articleID string) (string, int, error) {
	equations := ExtractEquations(content)
	if len(equations) == 0 {
		return content, 0, nil
	}

	modified := content
	count := 0

	for idx, eq := range equations {
		filename := fmt.Sprintf("eq_%s_%d.png", articleID, idx)

		if err := p.renderer.Render(ctx, eq.Body, eq.Mode == "display", filename); err != nil {
			logger.Warn(ctx, "failed to render equation, keeping raw latex",
				"error", err, "article_id", articleID, "index", idx)
			metrics.EquationsRendered.WithLabelValues(eq.Mode, "error").Inc()
			continue
		}

		imageRef := fmt.Sprintf("\n\n![Equation %d](%s/%s)\n\n", idx+1, p.cfg.ImagesURL, filename)

		var span string
		if eq.Mode == "display" {
			span = "$$" + eq.Body + "$$"
		} else {
			span = "$" + eq.Body + "$"
		}

		replaced := strings.Replace(modified, span, imageRef, 1)
		if replaced == modified {
			// trim 后的公式体与原文不完全一致时放弃替换
			logger.Warn(ctx, "equation span not found for replacement",
				"article_id", articleID, "index", idx)
			continue
		}
		modified = replaced
		count++
		metrics.EquationsRendered.WithLabelValues(eq.Mode, "rendered").Inc()
	}

	logger.Info(ctx, "equations processed", "article_id", articleID, "count", count)
	return modified, count, nil
}
