package models

import "time"

// Course represents a course students can enroll in. EnrollmentFee is stored
// as NUMERIC(10,2); values are rounded to two decimal places at the edges.
type Course struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	WorkloadHours int       `db:"workload_hours" json:"workload_hours"`
	EnrollmentFee float64   `db:"enrollment_fee" json:"enrollment_fee"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures supported filters for listing courses.
type CourseFilter struct {
	Search    string
	IsActive  *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
