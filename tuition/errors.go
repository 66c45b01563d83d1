/*
errors.go - Error types for the tuition engine

PURPOSE:
  All error kinds in one place. Callers match with errors.Is against the
  sentinels, or errors.As against the structured types when they need the
  offending values.

ERROR CATEGORIES:
  1. Validation errors - invalid time or date ranges, unknown statuses
  2. Lookup errors - student, class, session, attendance, payment not found
  3. Store errors - natural-key conflicts

The engine never logs and swallows: every failure reaches the caller, which
decides how to present it.
*/
package tuition

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTimeRange is returned when a session ends before it starts.
	ErrInvalidTimeRange = errors.New("invalid time range: end before start")

	// ErrInvalidDateRange is returned when a report range ends before it starts.
	ErrInvalidDateRange = errors.New("invalid date range: end before start")

	// ErrInvalidStatus is returned for an attendance status outside the ledger's set.
	ErrInvalidStatus = errors.New("invalid attendance status")

	ErrStudentNotFound    = errors.New("student not found")
	ErrClassNotFound      = errors.New("class not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrAttendanceNotFound = errors.New("attendance not found")
	ErrPaymentNotFound    = errors.New("payment not found")

	// ErrConflict is returned by a store when a plain insert hits an existing
	// natural key. The upsert path never returns it.
	ErrConflict = errors.New("conflict")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

type InvalidTimeRangeError struct {
	Start ClockTime
	End   ClockTime
}

func (e *InvalidTimeRangeError) Error() string {
	return fmt.Sprintf("invalid time range: end %s before start %s", e.End, e.Start)
}

func (e *InvalidTimeRangeError) Unwrap() error { return ErrInvalidTimeRange }

type StudentNotFoundError struct {
	ID StudentID
}

func (e *StudentNotFoundError) Error() string {
	return fmt.Sprintf("student not found: %s", e.ID)
}

func (e *StudentNotFoundError) Unwrap() error { return ErrStudentNotFound }

type ClassNotFoundError struct {
	ID ClassID
}

func (e *ClassNotFoundError) Error() string {
	return fmt.Sprintf("class not found: %s", e.ID)
}

func (e *ClassNotFoundError) Unwrap() error { return ErrClassNotFound }

// ConflictError reports a natural-key violation on attendance.
type ConflictError struct {
	Key AttendanceKey
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("attendance already recorded for session %s, student %s",
		e.Key.SessionID, e.Key.StudentID)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTimeRange) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrInvalidStatus)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrClassNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrAttendanceNotFound) ||
		errors.Is(err, ErrPaymentNotFound)
}

// IsConflict returns true if the error is a natural-key violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
