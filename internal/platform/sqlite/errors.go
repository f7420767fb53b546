package sqlite

import "strings"

// isUniqueConstraintError checks if the error is a SQLite UNIQUE
// constraint violation. modernc.org/sqlite exposes no typed error for
// this; the message prefix is the driver's stable contract.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
