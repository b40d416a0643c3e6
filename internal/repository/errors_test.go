package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
)

// isDuplicate decides both write-time races: a lost slot on uq_slot
// and a concurrent participant insert on uq_res_email. The key name
// must discriminate between the two so one race never reports as the
// other.
func TestIsDuplicate(t *testing.T) {
	slotErr := &mysql.MySQLError{
		Number:  1062,
		Message: "Duplicate entry '2025-03-01-09:00-1' for key 'reservations.uq_slot'",
	}
	emailErr := &mysql.MySQLError{
		Number:  1062,
		Message: "Duplicate entry 'a1b2-alice@example.com' for key 'participants.uq_res_email'",
	}

	cases := []struct {
		name string
		err  error
		key  string
		want bool
	}{
		{"slot duplicate matches uq_slot", slotErr, "uq_slot", true},
		{"slot duplicate is not uq_res_email", slotErr, "uq_res_email", false},
		{"participant duplicate matches uq_res_email", emailErr, "uq_res_email", true},
		{"participant duplicate is not uq_slot", emailErr, "uq_slot", false},
		{
			"wrapped driver error keeps its type",
			fmt.Errorf("create reservation: %w", slotErr),
			"uq_slot",
			true,
		},
		{
			"other mysql error number",
			&mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"},
			"uq_slot",
			false,
		},
		{
			"string fallback for untyped errors",
			errors.New("Error 1062: Duplicate entry 'x' for key 'participants.uq_res_email'"),
			"uq_res_email",
			true,
		},
		{
			"string fallback still checks the key",
			errors.New("Error 1062: Duplicate entry 'x' for key 'participants.uq_res_email'"),
			"uq_slot",
			false,
		},
		{"unrelated error", errors.New("connection refused"), "uq_slot", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isDuplicate(tc.err, tc.key); got != tc.want {
				t.Fatalf("isDuplicate(%v, %q) = %v, want %v", tc.err, tc.key, got, tc.want)
			}
		})
	}
}
