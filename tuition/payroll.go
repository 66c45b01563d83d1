/*
payroll.go - Earnings over a date range

ALGORITHM:
  1. Sessions with Date in [start, end]
  2. Their attendance, kept only when billable
  3. Per-student hours = sum of the session HoursWorked
  4. Earnings = round(hours x hourlyRate)
  5. Totals = exact sums of the per-student lines

MISSING STUDENTS:
  A student deleted after attending is still reported, as UnknownStudentName
  with a zero rate. Historical accounting must survive decayed references.

ORDER:
  Lines are sorted by name then ID so the same inputs give the same report.
*/
package tuition

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// UnknownStudentName labels payroll lines whose student record is gone.
const UnknownStudentName = "Unknown"

type PayrollAggregator struct {
	Store Reader
}

// Generate builds the payroll report for an inclusive date range.
// No data yields an empty report, not an error.
func (pa *PayrollAggregator) Generate(ctx context.Context, r DateRange) (PayrollReport, error) {
	if r.End.Before(r.Start) {
		return PayrollReport{}, ErrInvalidDateRange
	}

	sessions, err := pa.Store.ListSessions(ctx, SessionFilter{Range: &r})
	if err != nil {
		return PayrollReport{}, err
	}

	var records []AttendanceRecord
	if len(sessions) > 0 {
		records, err = pa.Store.ListAttendance(ctx, AttendanceFilter{SessionIDs: SessionIDs(sessions)})
		if err != nil {
			return PayrollReport{}, err
		}
	}

	students, err := pa.Store.ListStudents(ctx)
	if err != nil {
		return PayrollReport{}, err
	}

	hours := BillableHours(JoinAttendance(SessionsByID(sessions), records))
	return BuildPayrollReport(r, hours, StudentsByID(students)), nil
}

// BuildPayrollReport turns per-student hours into a report.
func BuildPayrollReport(r DateRange, hours map[StudentID]decimal.Decimal, students map[StudentID]Student) PayrollReport {
	report := PayrollReport{
		Range:         r,
		Students:      make([]PayrollEntry, 0, len(hours)),
		TotalHours:    decimal.Zero,
		TotalEarnings: decimal.Zero,
	}

	for id, h := range hours {
		entry := PayrollEntry{
			StudentID:   id,
			StudentName: UnknownStudentName,
			Hours:       h,
			HourlyRate:  decimal.Zero,
		}
		if s, ok := students[id]; ok {
			entry.StudentName = s.Name
			entry.HourlyRate = s.HourlyRate
		}
		entry.Earnings = Round(h.Mul(entry.HourlyRate))
		report.Students = append(report.Students, entry)
	}

	sort.Slice(report.Students, func(i, j int) bool {
		a, b := report.Students[i], report.Students[j]
		if a.StudentName != b.StudentName {
			return a.StudentName < b.StudentName
		}
		return a.StudentID < b.StudentID
	})

	for _, e := range report.Students {
		report.TotalHours = report.TotalHours.Add(e.Hours)
		report.TotalEarnings = report.TotalEarnings.Add(e.Earnings)
	}
	return report
}
