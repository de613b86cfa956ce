package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates that a row with the same unique key already exists.
var ErrDuplicate = errors.New("duplicate")

// ErrQuotaExceeded is returned by ConsumeQuota when the window is exhausted.
var ErrQuotaExceeded = errors.New("quota exceeded")

// isUniqueViolation recognises unique-constraint failures from both drivers.
// glebarez/sqlite and pgx report them as plain-text errors unless
// TranslateError is enabled, so the message is inspected too.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key value violates unique constraint") ||
		strings.Contains(low, "sqlstate 23505")
}
