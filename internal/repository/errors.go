// Package repository is the persistence layer over MySQL. Domain
// failures (slot conflicts, capacity, missing rows) are reported with
// the sentinel errors from the engine package so handlers deal with a
// single taxonomy; this file only adds failures that have no domain
// meaning plus the duplicate-key detection shared by the
// repositories.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrEmailExists is returned when registering a user whose email is
// already taken. Handlers translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// isDuplicate reports whether err is a MySQL duplicate-key failure
// (error 1062) on the named unique key. The key name distinguishes a
// lost slot race (uq_slot) from a concurrent participant insert
// (uq_res_email).
func isDuplicate(err error, key string) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062 && strings.Contains(me.Message, key)
	}
	// Fallback for wrapped driver errors that lost their type.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") && strings.Contains(msg, key)
}
