// Package latex 提供文章内 LaTeX 公式的提取与渲染
package latex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"article-writer-api/internal/config"
)

// Renderer 将单个公式渲染为 PNG 图片
type Renderer interface {
	Render(ctx context.Context, equation string, displayMode bool, filename string) error
}

// HTTPRenderer 调用外部渲染服务生成公式图片
type HTTPRenderer struct {
	cfg    *config.LatexConfig
	client *http.Client
}

// NewHTTPRenderer 创建 HTTP 渲染器
func NewHTTPRenderer(cfg *config.LatexConfig) *HTTPRenderer {
	return &HTTPRenderer{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type renderRequest struct {
	Equation    string `json:"equation"`
	DisplayMode bool   `json:"display_mode"`
}

// Render 请求渲染服务并将返回的 PNG 写入图片目录
func (r *HTTPRenderer) Render(ctx context.Context, equation string, displayMode bool, filename string) error {
	if r.cfg.RenderURL == "" {
		return fmt.Errorf("latex render service not configured")
	}

	body, err := json.Marshal(renderRequest{Equation: equation, DisplayMode: displayMode})
	if err != nil {
		return fmt.Errorf("failed to marshal render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.RenderURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("render service call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("render service returned status %d", resp.StatusCode)
	}

	png, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read rendered image: %w", err)
	}

	if err := os.MkdirAll(r.cfg.ImagesDir, 0o755); err != nil {
		return fmt.Errorf("failed to create images dir: %w", err)
	}
	path := filepath.Join(r.cfg.ImagesDir, filename)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("failed to write image %s: %w", path, err)
	}
	return nil
}
