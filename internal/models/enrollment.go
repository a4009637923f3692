package models

import "time"

// EnrollmentStatus represents the payment state of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. The set is closed: an enrollment starts
// pending and may move to paid, never back.
const (
	EnrollmentStatusPending EnrollmentStatus = "pending"
	EnrollmentStatusPaid    EnrollmentStatus = "paid"
)

// Valid reports whether the status is a member of the closed set.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusPending, EnrollmentStatusPaid:
		return true
	}
	return false
}

// Enrollment links a student to a course, carrying a payment status.
type Enrollment struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	CourseID   string           `db:"course_id" json:"course_id"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt time.Time        `db:"enrolled_at" json:"enrolled_at"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail enriches Enrollment with student and course info.
type EnrollmentDetail struct {
	Enrollment
	StudentName string  `db:"student_name" json:"student_name"`
	CourseName  string  `db:"course_name" json:"course_name"`
	CourseFee   float64 `db:"course_fee" json:"course_fee"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID string
	CourseID  string
	Status    EnrollmentStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
