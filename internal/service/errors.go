package service

import (
	"errors"

	appErrors "github.com/edurecords/academy-api/pkg/errors"
)

// asDomainError unwraps typed errors raised by the persistence layer so they
// pass through to callers untouched instead of being re-wrapped as internal.
func asDomainError(err error) *appErrors.Error {
	var e *appErrors.Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
