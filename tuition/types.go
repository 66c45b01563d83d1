/*
Package tuition provides the attendance-to-earnings aggregation engine.

PURPOSE:
  Turns raw schedule, session, attendance and payment records into time
  totals, money totals and outstanding balances. Everything with real
  arithmetic in the tracker lives here; fetching and persisting records is
  delegated to a Store.

KEY CONCEPTS IN THIS FILE (types.go):
  - Student, ClassSchedule, Session, AttendanceRecord, Payment: the records
    the engine consumes
  - PayrollReport, BalanceReport: derived views, never persisted
  - Type-safe identifiers for every entity

DESIGN PRINCIPLES:
  1. Precision: hours, rates and money are decimal.Decimal, never float64
  2. Derived fields are computed, not supplied: Session.HoursWorked always
     comes from SessionHours(start, end)
  3. Rounding happens once, when a derived value is finalized

SEE ALSO:
  - time.go: Date, ClockTime and the hour arithmetic
  - attendance.go: Billable status policy
  - payroll.go, balance.go, bootstrap.go: The four engine operations
*/
package tuition

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type StudentID string
type ClassID string
type SessionID string
type AttendanceID string
type PaymentID string

// =============================================================================
// RECORDS
// =============================================================================

// Student is a tutored student. Active does not gate any computation:
// inactive students keep their historical balances.
type Student struct {
	ID              StudentID
	Name            string
	Phone           string
	Email           string
	HourlyRate      decimal.Decimal
	Active          bool
	EnrolledClasses []ClassID
	CreatedAt       time.Time
}

// ClassSchedule is a recurring class. StartTime and EndTime are only
// defaults for new sessions.
type ClassSchedule struct {
	ID         ClassID
	Name       string
	DayOfWeek  string
	StartTime  ClockTime
	EndTime    ClockTime
	StudentIDs []StudentID // ordered, no duplicates
	CreatedAt  time.Time
}

// Session is one concrete occurrence of a class.
type Session struct {
	ID          SessionID
	ClassID     ClassID
	Date        Date
	StartTime   ClockTime
	EndTime     ClockTime
	HoursWorked decimal.Decimal
	CreatedAt   time.Time
}

// AttendanceRecord is unique per (SessionID, StudentID).
type AttendanceRecord struct {
	ID        AttendanceID
	SessionID SessionID
	StudentID StudentID
	Status    Status
	CreatedAt time.Time
}

// Key returns the natural key of the record.
func (a AttendanceRecord) Key() AttendanceKey {
	return AttendanceKey{SessionID: a.SessionID, StudentID: a.StudentID}
}

// AttendanceKey is the natural key of an attendance record.
type AttendanceKey struct {
	SessionID SessionID
	StudentID StudentID
}

type Payment struct {
	ID        PaymentID
	StudentID StudentID
	Amount    decimal.Decimal
	Date      Date
	Notes     string
	CreatedAt time.Time
}

// =============================================================================
// DERIVED VIEWS
// =============================================================================

// PayrollEntry is one student's line in a payroll report.
type PayrollEntry struct {
	StudentID   StudentID
	StudentName string
	Hours       decimal.Decimal
	HourlyRate  decimal.Decimal
	Earnings    decimal.Decimal
}

// PayrollReport aggregates billable hours and earnings over a date range.
// TotalHours and TotalEarnings are exact sums over Students.
type PayrollReport struct {
	Range         DateRange
	Students      []PayrollEntry
	TotalHours    decimal.Decimal
	TotalEarnings decimal.Decimal
}

// BalanceReport is a lifetime reconciliation for one student.
// Balance is signed: positive is owed by the student, negative is credit.
type BalanceReport struct {
	StudentID   StudentID
	StudentName string
	HourlyRate  decimal.Decimal
	TotalHours  decimal.Decimal
	TotalDue    decimal.Decimal
	TotalPaid   decimal.Decimal
	Balance     decimal.Decimal
}
