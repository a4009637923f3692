package models

import "time"

// FinancialSummary aggregates global counts and revenue across the system.
// GrossRevenuePotential sums course fees over every enrollment row regardless
// of payment status.
type FinancialSummary struct {
	Students              int     `db:"students" json:"students"`
	Courses               int     `db:"courses" json:"courses"`
	EnrollmentsPaid       int     `db:"enrollments_paid" json:"enrollments_paid"`
	EnrollmentsPending    int     `db:"enrollments_pending" json:"enrollments_pending"`
	GrossRevenuePotential float64 `db:"gross_revenue_potential" json:"gross_revenue_potential"`
}

// StudentHistoryEntry is one enrollment in a student's history, most recent
// first.
type StudentHistoryEntry struct {
	EnrollmentID string           `db:"enrollment_id" json:"enrollment_id"`
	CourseName   string           `db:"course_name" json:"course_name"`
	CourseFee    float64          `db:"course_fee" json:"course_fee"`
	Status       EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt   time.Time        `db:"enrolled_at" json:"enrolled_at"`
}

// StudentHistory combines a student's enrollment history with derived totals.
type StudentHistory struct {
	StudentID   string                `json:"student_id"`
	StudentName string                `json:"student_name"`
	Entries     []StudentHistoryEntry `json:"entries"`
	TotalPaid   float64               `json:"total_paid"`
	TotalDue    float64               `json:"total_due"`
}

// TabularReportRow is one enrollment row of the financial report. AmountPaid
// carries the course fee when the enrollment is paid, AmountDue when pending;
// the other column is zero.
type TabularReportRow struct {
	StudentName string           `db:"student_name" json:"student_name"`
	CourseName  string           `db:"course_name" json:"course_name"`
	Status      EnrollmentStatus `db:"status" json:"status"`
	AmountPaid  float64          `db:"amount_paid" json:"amount_paid"`
	AmountDue   float64          `db:"amount_due" json:"amount_due"`
}

// StudentSummaryRow aggregates the tabular report per distinct student name.
type StudentSummaryRow struct {
	StudentName      string  `db:"student_name" json:"student_name"`
	TotalPaid        float64 `db:"total_paid" json:"total_paid"`
	TotalDue         float64 `db:"total_due" json:"total_due"`
	TotalEnrollments int     `db:"total_enrollments" json:"total_enrollments"`
}
