package mysql

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// isUniqueViolation matches the duplicate-key wording of both MySQL and the
// sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "Duplicate entry") ||
		strings.Contains(s, "UNIQUE constraint failed") ||
		strings.Contains(s, "unique constraint")
}

// isLockConflict matches serialization failures that are safe to retry.
func isLockConflict(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "Deadlock found") ||
		strings.Contains(s, "Lock wait timeout") ||
		strings.Contains(s, "try restarting transaction") ||
		strings.Contains(s, "database is locked") ||
		strings.Contains(s, "database table is locked")
}

// lockForUpdate adds a row lock on dialects that support it. sqlite rejects
// FOR UPDATE and serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
