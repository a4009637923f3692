package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edurecords/academy-api/internal/models"
)

// ReportRepository exposes read-only aggregate queries. Every method is a
// single statement, so each result reflects one consistent snapshot.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// FinancialSummary returns the global counts and the gross revenue potential.
// The revenue figure sums course fees over all enrollment rows with no status
// filter, matching the historical definition of the metric.
func (r *ReportRepository) FinancialSummary(ctx context.Context) (*models.FinancialSummary, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM students) AS students,
        (SELECT COUNT(*) FROM courses) AS courses,
        COUNT(*) FILTER (WHERE e.status = 'paid') AS enrollments_paid,
        COUNT(*) FILTER (WHERE e.status = 'pending') AS enrollments_pending,
        COALESCE(SUM(c.enrollment_fee), 0) AS gross_revenue_potential
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id`
	var summary models.FinancialSummary
	if err := r.db.GetContext(ctx, &summary, query); err != nil {
		return nil, fmt.Errorf("financial summary: %w", err)
	}
	return &summary, nil
}

// StudentHistory returns a student's enrollments, most recent first.
func (r *ReportRepository) StudentHistory(ctx context.Context, studentID string) ([]models.StudentHistoryEntry, error) {
	const query = `SELECT e.id AS enrollment_id, c.name AS course_name, c.enrollment_fee AS course_fee, e.status, e.enrolled_at
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = $1
        ORDER BY e.enrolled_at DESC`
	var entries []models.StudentHistoryEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID); err != nil {
		return nil, fmt.Errorf("student history: %w", err)
	}
	return entries, nil
}

// TabularReport returns one row per enrollment with the derived amount_paid
// and amount_due columns.
func (r *ReportRepository) TabularReport(ctx context.Context) ([]models.TabularReportRow, error) {
	const query = `SELECT s.full_name AS student_name, c.name AS course_name, e.status,
        CASE WHEN e.status = 'paid' THEN c.enrollment_fee ELSE 0 END AS amount_paid,
        CASE WHEN e.status = 'pending' THEN c.enrollment_fee ELSE 0 END AS amount_due
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN courses c ON c.id = e.course_id
        ORDER BY s.full_name, c.name`
	var rows []models.TabularReportRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("tabular report: %w", err)
	}
	return rows, nil
}

// StudentSummaries aggregates the tabular report per distinct student name.
// It is the same join as TabularReport rolled up in SQL, so the two views
// stay consistent by construction.
func (r *ReportRepository) StudentSummaries(ctx context.Context) ([]models.StudentSummaryRow, error) {
	const query = `SELECT s.full_name AS student_name,
        COALESCE(SUM(CASE WHEN e.status = 'paid' THEN c.enrollment_fee ELSE 0 END), 0) AS total_paid,
        COALESCE(SUM(CASE WHEN e.status = 'pending' THEN c.enrollment_fee ELSE 0 END), 0) AS total_due,
        COUNT(e.id) AS total_enrollments
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN courses c ON c.id = e.course_id
        GROUP BY s.full_name
        ORDER BY s.full_name`
	var rows []models.StudentSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("student summaries: %w", err)
	}
	return rows, nil
}
