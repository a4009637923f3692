package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/edurecords/academy-api/internal/models"
	"github.com/edurecords/academy-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type tabularReporter interface {
	Tabular(ctx context.Context) ([]models.TabularReportRow, error)
	StudentSummaries(ctx context.Context) ([]models.StudentSummaryRow, error)
}

// ExportService renders the financial reports as downloadable files.
type ExportService struct {
	reports tabularReporter
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(reports tabularReporter, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{reports: reports, csv: csv, pdf: pdf, logger: logger}
}

// TabularCSV renders the tabular financial report as CSV bytes.
func (s *ExportService) TabularCSV(ctx context.Context) ([]byte, error) {
	rows, err := s.reports.Tabular(ctx)
	if err != nil {
		return nil, err
	}
	return s.csv.Render(tabularDataset(rows))
}

// TabularPDF renders the tabular financial report as PDF bytes.
func (s *ExportService) TabularPDF(ctx context.Context) ([]byte, error) {
	rows, err := s.reports.Tabular(ctx)
	if err != nil {
		return nil, err
	}
	return s.pdf.Render(tabularDataset(rows), "Financial Report")
}

// SummaryCSV renders the per-student summary report as CSV bytes.
func (s *ExportService) SummaryCSV(ctx context.Context) ([]byte, error) {
	rows, err := s.reports.StudentSummaries(ctx)
	if err != nil {
		return nil, err
	}
	return s.csv.Render(summaryDataset(rows))
}

// SummaryPDF renders the per-student summary report as PDF bytes.
func (s *ExportService) SummaryPDF(ctx context.Context) ([]byte, error) {
	rows, err := s.reports.StudentSummaries(ctx)
	if err != nil {
		return nil, err
	}
	return s.pdf.Render(summaryDataset(rows), "Financial Summary by Student")
}

func tabularDataset(rows []models.TabularReportRow) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"student", "course", "status", "amount_paid", "amount_due"},
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"student":     row.StudentName,
			"course":      row.CourseName,
			"status":      string(row.Status),
			"amount_paid": formatMoney(row.AmountPaid),
			"amount_due":  formatMoney(row.AmountDue),
		})
	}
	return dataset
}

func summaryDataset(rows []models.StudentSummaryRow) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"student", "total_paid", "total_due", "total_enrollments"},
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"student":           row.StudentName,
			"total_paid":        formatMoney(row.TotalPaid),
			"total_due":         formatMoney(row.TotalDue),
			"total_enrollments": fmt.Sprintf("%d", row.TotalEnrollments),
		})
	}
	return dataset
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
