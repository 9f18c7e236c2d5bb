package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"complyflow/internal/cache"
	"complyflow/internal/model"
	"complyflow/internal/repository"

	"github.com/google/uuid"
)

// ReportService aggregates sessions into per-standard gap reports
type ReportService struct {
	contextRepo   repository.ContextRepo
	reportRepo    repository.ReportRepo
	statsCache    cache.StatsCache
	progressCache cache.ProgressCache
	phrasing      *PhrasingService
}

// NewReportService creates a new report service
func NewReportService(
	contextRepo repository.ContextRepo,
	reportRepo repository.ReportRepo,
	statsCache cache.StatsCache,
	progressCache cache.ProgressCache,
	phrasing *PhrasingService,
) *ReportService {
	return &ReportService{
		contextRepo:   contextRepo,
		reportRepo:    reportRepo,
		statsCache:    statsCache,
		progressCache: progressCache,
		phrasing:      phrasing,
	}
}

// GenerateOverview rebuilds the cross-session report for one standard and
// stores the snapshot.
func (s *ReportService) GenerateOverview(ctx context.Context, standardID string) (*model.GapReport, error) {
	sessions, err := s.contextRepo.GetByStandardID(ctx, standardID)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	report := &model.GapReport{
		ID:          "r_" + uuid.New().String()[:8],
		StandardID:  standardID,
		GeneratedAt: time.Now(),
	}

	var progressSum int
	for _, session := range sessions {
		report.TotalSessions++
		progressSum += session.Progress
		if session.CompletedAt != nil {
			report.CompletedSessions++
		}
		report.Sessions = append(report.Sessions, model.SessionDigest{
			SessionID: session.SessionID,
			UserID:    session.UserID,
			Phase:     session.Phase,
			Progress:  session.Progress,
			GapCount:  len(session.Gaps),
		})
		report.TopGaps = append(report.TopGaps, session.Gaps...)
	}
	if report.TotalSessions > 0 {
		report.AvgProgress = float64(progressSum) / float64(report.TotalSessions)
	}

	sort.SliceStable(report.TopGaps, func(i, j int) bool {
		return gapSeverityRank(report.TopGaps[i].Severity) > gapSeverityRank(report.TopGaps[j].Severity)
	})
	if len(report.TopGaps) > 10 {
		report.TopGaps = report.TopGaps[:10]
	}
	for i := range report.TopGaps {
		report.TopGaps[i].Recommendations = s.phrasing.RecommendRemediation(ctx, report.TopGaps[i])
	}

	report.CategoryStats, err = s.categoryStats(ctx, standardID, sessions)
	if err != nil {
		return nil, err
	}

	report.Summary = s.phrasing.SummarizeReport(ctx, report)

	if err := s.reportRepo.Save(ctx, report); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	return report, nil
}

// GetOverview returns the stored report for a standard, generating one on
// first request.
func (s *ReportService) GetOverview(ctx context.Context, standardID string) (*model.GapReport, error) {
	report, err := s.reportRepo.GetByStandardID(ctx, standardID)
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	if report == nil {
		return s.GenerateOverview(ctx, standardID)
	}
	return report, nil
}

// TopSessions returns the most advanced sessions for one standard
func (s *ReportService) TopSessions(ctx context.Context, standardID string, limit int) ([]cache.ProgressEntry, error) {
	return s.progressCache.GetTop(ctx, standardID, limit)
}

// categoryStats prefers the live Redis counters and falls back to a scan of
// the stored sessions when the cache is cold.
func (s *ReportService) categoryStats(ctx context.Context, standardID string, sessions []*model.AssessmentContext) ([]model.CategoryStat, error) {
	counts, err := s.statsCache.GetCategoryStats(ctx, standardID)
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}

	// Cold cache: rebuild negatives from stored gaps. Answered counts need
	// the catalog, so the fallback only fills what gap ranking uses.
	if len(counts) == 0 {
		counts = map[string]cache.CategoryCounts{}
		for _, session := range sessions {
			for _, gap := range session.Gaps {
				c := counts[gap.Category]
				c.Negative += len(gap.QuestionIDs)
				counts[gap.Category] = c
			}
		}
	}

	var stats []model.CategoryStat
	for category, c := range counts {
		stat := model.CategoryStat{Category: category, Answered: c.Answered, Negative: c.Negative}
		if c.Answered > 0 {
			stat.GapRate = float64(c.Negative) / float64(c.Answered)
		}
		stats = append(stats, stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].GapRate != stats[j].GapRate {
			return stats[i].GapRate > stats[j].GapRate
		}
		return stats[i].Category < stats[j].Category
	})
	return stats, nil
}

func gapSeverityRank(s model.GapSeverity) int {
	switch s {
	case model.SeverityCritical:
		return 4
	case model.SeverityHigh:
		return 3
	case model.SeverityMedium:
		return 2
	case model.SeverityLow:
		return 1
	}
	return 0
}
