/*
attendance.go - Attendance ledger: which statuses count as paid time

PURPOSE:
  Owns the single policy lever for payroll correctness: the set of
  attendance statuses and which of them are billable. Callers ask
  IsBillable; they never compare statuses themselves.

POLICY:
  present -> billable
  late    -> billable
  absent  -> not billable

  A freshly bootstrapped attendance record starts as DefaultStatus (present).
*/
package tuition

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
)

// DefaultStatus is assigned to attendance seeded by SessionBootstrap.
const DefaultStatus = StatusPresent

// Statuses lists every valid status.
var Statuses = []Status{StatusPresent, StatusLate, StatusAbsent}

var billable = map[Status]bool{
	StatusPresent: true,
	StatusLate:    true,
}

// IsBillable reports whether time with this status is paid.
func IsBillable(s Status) bool {
	return billable[s]
}

// Valid reports whether s is one of Statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// =============================================================================
// BILLABLE HOURS
// =============================================================================

// Attended pairs a session with one student's status in it.
type Attended struct {
	Session Session
	Record  AttendanceRecord
}

// BillableHours sums HoursWorked per student over billable pairs.
// Students with only non-billable pairs are absent from the result, not zero.
func BillableHours(pairs []Attended) map[StudentID]decimal.Decimal {
	hours := make(map[StudentID]decimal.Decimal)
	for _, p := range pairs {
		if !IsBillable(p.Record.Status) {
			continue
		}
		hours[p.Record.StudentID] = hours[p.Record.StudentID].Add(p.Session.HoursWorked)
	}
	return hours
}
