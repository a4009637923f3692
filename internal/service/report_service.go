package service

import (
	"context"
	"database/sql"
	"math"

	"go.uber.org/zap"

	"github.com/edurecords/academy-api/internal/models"
	appErrors "github.com/edurecords/academy-api/pkg/errors"
)

const (
	cacheKeyFinancialSummary = "report:financial_summary"
)

type reportRepository interface {
	FinancialSummary(ctx context.Context) (*models.FinancialSummary, error)
	StudentHistory(ctx context.Context, studentID string) ([]models.StudentHistoryEntry, error)
	TabularReport(ctx context.Context) ([]models.TabularReportRow, error)
	StudentSummaries(ctx context.Context) ([]models.StudentSummaryRow, error)
}

type reportStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// ReportService computes read-only financial and enrollment statistics.
type ReportService struct {
	repo     reportRepository
	students reportStudentReader
	cache    *CacheService
	logger   *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(repo reportRepository, students reportStudentReader, cache *CacheService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, students: students, cache: cache, logger: logger}
}

// FinancialSummary returns the global summary, served from cache when warm.
func (s *ReportService) FinancialSummary(ctx context.Context) (*models.FinancialSummary, error) {
	var cached models.FinancialSummary
	if hit, err := s.cache.Get(ctx, cacheKeyFinancialSummary, &cached); err == nil && hit {
		return &cached, nil
	}
	summary, err := s.repo.FinancialSummary(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute financial summary")
	}
	if err := s.cache.Set(ctx, cacheKeyFinancialSummary, summary, 0); err != nil {
		s.logger.Warn("failed to cache financial summary", zap.Error(err))
	}
	return summary, nil
}

// StudentHistory returns a student's enrollment history with derived totals.
func (s *ReportService) StudentHistory(ctx context.Context, studentID string) (*models.StudentHistory, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	entries, err := s.repo.StudentHistory(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student history")
	}
	history := &models.StudentHistory{
		StudentID:   student.ID,
		StudentName: student.FullName,
		Entries:     entries,
	}
	for _, entry := range entries {
		switch entry.Status {
		case models.EnrollmentStatusPaid:
			history.TotalPaid = roundMoney(history.TotalPaid + entry.CourseFee)
		case models.EnrollmentStatusPending:
			history.TotalDue = roundMoney(history.TotalDue + entry.CourseFee)
		}
	}
	return history, nil
}

// Tabular returns the row-per-enrollment financial report.
func (s *ReportService) Tabular(ctx context.Context) ([]models.TabularReportRow, error) {
	rows, err := s.repo.TabularReport(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build tabular report")
	}
	return rows, nil
}

// StudentSummaries returns the per-student rollup of the tabular report.
func (s *ReportService) StudentSummaries(ctx context.Context) ([]models.StudentSummaryRow, error) {
	rows, err := s.repo.StudentSummaries(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build student summaries")
	}
	return rows, nil
}

// SummarizeTabular rolls tabular rows up by student name. It mirrors the SQL
// aggregation in StudentSummaries and is used to assert the two report views
// stay consistent.
func SummarizeTabular(rows []models.TabularReportRow) []models.StudentSummaryRow {
	index := make(map[string]int)
	var summaries []models.StudentSummaryRow
	for _, row := range rows {
		i, ok := index[row.StudentName]
		if !ok {
			i = len(summaries)
			index[row.StudentName] = i
			summaries = append(summaries, models.StudentSummaryRow{StudentName: row.StudentName})
		}
		summaries[i].TotalPaid = roundMoney(summaries[i].TotalPaid + row.AmountPaid)
		summaries[i].TotalDue = roundMoney(summaries[i].TotalDue + row.AmountDue)
		summaries[i].TotalEnrollments++
	}
	return summaries
}

// roundMoney keeps running money totals at two decimal places.
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
