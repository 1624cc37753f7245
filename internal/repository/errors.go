// Package repository implements the MySQL stores behind the booking
// service.  Stores take an sqlx.ExtContext so the same code runs against
// the pool or inside a transaction.  The sentinel values below let higher
// layers tell missing rows and uniqueness violations apart from driver
// failures.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrVenueNotFound    = errors.New("venue not found")
	ErrServiceNotFound  = errors.New("service not found")
	ErrTimeSlotNotFound = errors.New("time slot not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrTokenNotFound    = errors.New("refresh token not found")
)

// ErrDuplicate is returned when an insert or update violates a unique key,
// e.g. a taken username or a second active booking for one slot.
var ErrDuplicate = errors.New("duplicate entry")

// ErrMissingReference is returned when a row points at a parent that does
// not exist.
var ErrMissingReference = errors.New("referenced row does not exist")

// ErrLockConflict is returned when MySQL aborted a statement to resolve a
// deadlock or a lock wait timed out.  Two transactions racing for the same
// booking slot end this way; the loser may retry.
var ErrLockConflict = errors.New("lock conflict")

// ErrNoChange indicates an UPDATE was issued with nothing to set.
var ErrNoChange = errors.New("no change")

const (
	mysqlErrDuplicateEntry = 1062
	mysqlErrNoReferenced   = 1452
	mysqlErrLockWait       = 1205
	mysqlErrDeadlock       = 1213
)

// isDuplicate reports whether err is a MySQL duplicate-key error.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}

// isMissingReference reports whether err is a foreign key violation on insert.
func isMissingReference(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrNoReferenced
}

// isLockConflict reports whether err is a deadlock or lock wait timeout.
func isLockConflict(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && (me.Number == mysqlErrDeadlock || me.Number == mysqlErrLockWait)
}
