package article

import (
	"context"
	"time"

	"article-writer-api/internal/domain/entity"
)

// ValidationEntry 校验报告中的单条校验记录
type ValidationEntry struct {
	Node       string                     `json:"node"`
	Score      float64                    `json:"score"`
	Feedback   *entity.ValidationFeedback `json:"feedback,omitempty"`
	RetryCount int                        `json:"retry_count"`
	Status     entity.ValidationStatus    `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
}

// VersionEntry 校验报告中的单个版本记录
type VersionEntry struct {
	Version   int                `json:"version"`
	Node      string             `json:"node"`
	Scores    map[string]float64 `json:"scores"`
	Timestamp time.Time          `json:"timestamp"`
}

// ReportSummary 报告汇总：各节点最近一次得分及其均值
type ReportSummary struct {
	TotalValidations int                `json:"total_validations"`
	TotalVersions    int                `json:"total_versions"`
	LatestScores     map[string]float64 `json:"latest_scores"`
	AverageScore     float64            `json:"average_score"`
}

// Report 文章校验报告
type Report struct {
	ArticleID   string            `json:"article_id"`
	Validations []ValidationEntry `json:"validations"`
	Versions    []VersionEntry    `json:"versions"`
	Summary     *ReportSummary    `json:"summary,omitempty"`
}

// BuildReport 汇总文章的校验日志与版本历史
func (s *Service) BuildReport(ctx context.Context, articleID string) (*Report, error) {
	logs, err := s.logs.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	versions, err := s.versions.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	report := &Report{
		ArticleID:   articleID,
		Validations: make([]ValidationEntry, 0, len(logs)),
		Versions:    make([]VersionEntry, 0, len(versions)),
	}

	for _, log := range logs {
		report.Validations = append(report.Validations, ValidationEntry{
			Node:       log.NodeName,
			Score:      log.Score,
			Feedback:   log.Feedback,
			RetryCount: log.RetryCount,
			Status:     log.Status,
			Timestamp:  log.CreatedAt,
		})
	}

	for _, version := range versions {
		report.Versions = append(report.Versions, VersionEntry{
			Version:   version.VersionNumber,
			Node:      version.NodeName,
			Scores:    version.Scores,
			Timestamp: version.CreatedAt,
		})
	}

	if len(logs) > 0 {
		// 每个节点取最近一次得分
		latest := make(map[string]float64)
		for i := len(logs) - 1; i >= 0; i-- {
			if _, ok := latest[logs[i].NodeName]; !ok {
				latest[logs[i].NodeName] = logs[i].Score
			}
		}

		sum := 0.0
		for _, score := range latest {
			sum += score
		}

		report.Summary = &ReportSummary{
			TotalValidations: len(logs),
			TotalVersions:    len(versions),
			LatestScores:     latest,
			AverageScore:     sum / float64(len(latest)),
		}
	}

	return report, nil
}
