package mysql

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// IsDeadlock reports whether err is a MySQL deadlock (1213) or lock wait
// timeout (1205). Both are safe to retry on a fresh transaction.
func IsDeadlock(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}

// IsDuplicateEntry reports whether err is a unique-constraint violation
// (1062), e.g. two transactions racing for the same sale number.
func IsDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}
