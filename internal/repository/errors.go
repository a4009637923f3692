package repository

import (
	"errors"

	"github.com/lib/pq"

	appErrors "github.com/edurecords/academy-api/pkg/errors"
)

// Domain errors surfaced by the persistence layer. They are defined here so
// that no write path can bypass them: repositories return them directly and
// services pass them through.
var (
	ErrInactiveCourse      = appErrors.WithField(appErrors.ErrValidation, "course_id", "cannot enroll in an inactive course")
	ErrDuplicateEnrollment = appErrors.WithField(appErrors.ErrConflict, "course_id", "student already enrolled in this course")
)

const pqUniqueViolation = "23505"

// constraintFields maps unique constraint names from scripts/schema.sql to the
// request field reported back to callers.
var constraintFields = map[string]string{
	"students_email_key":                   "email",
	"students_cpf_key":                     "cpf",
	"courses_name_key":                     "name",
	"enrollments_student_id_course_id_key": "course_id",
	"users_email_key":                      "email",
}

// mapUniqueViolation converts a Postgres unique-violation into a Conflict
// error naming the offending field. Pre-checks in the services catch most
// duplicates; this covers concurrent writers racing past them.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != pqUniqueViolation {
		return nil
	}
	if field, ok := constraintFields[pqErr.Constraint]; ok {
		return appErrors.WithField(appErrors.ErrConflict, field, field+" already in use")
	}
	return appErrors.Clone(appErrors.ErrConflict, "duplicate value")
}
