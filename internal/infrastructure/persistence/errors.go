package persistence

import (
	"errors"
	"strings"

	"github.com/enrolment/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// isUniqueViolation recognises duplicate-key failures from postgres and
// sqlite, with or without GORM error translation enabled.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// notFound maps gorm.ErrRecordNotFound to the domain error
func notFound(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound.WithMessage(message)
	}
	return err
}
