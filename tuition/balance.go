/*
balance.go - Lifetime balance for one student

ALGORITHM:
  totalHours = sum of HoursWorked over the student's billable attendance
  totalDue   = round(totalHours x hourlyRate)
  totalPaid  = sum of every payment by the student, any date
  balance    = totalDue - totalPaid

  Unlike payroll there is no date range. Balance is signed and never
  clamped: negative means the student has credit.
*/
package tuition

import (
	"context"

	"github.com/shopspring/decimal"
)

type BalanceReconciler struct {
	Store Reader
}

// Reconcile computes the balance report for a student.
// Returns StudentNotFoundError when the student does not exist.
func (br *BalanceReconciler) Reconcile(ctx context.Context, id StudentID) (BalanceReport, error) {
	student, err := br.Store.GetStudent(ctx, id)
	if err != nil {
		return BalanceReport{}, err
	}
	if student == nil {
		return BalanceReport{}, &StudentNotFoundError{ID: id}
	}

	records, err := br.Store.ListAttendance(ctx, AttendanceFilter{StudentID: id})
	if err != nil {
		return BalanceReport{}, err
	}

	var ids []SessionID
	for _, r := range records {
		if IsBillable(r.Status) {
			ids = append(ids, r.SessionID)
		}
	}

	var sessions []Session
	if len(ids) > 0 {
		sessions, err = br.Store.ListSessions(ctx, SessionFilter{IDs: ids})
		if err != nil {
			return BalanceReport{}, err
		}
	}

	payments, err := br.Store.ListPayments(ctx, PaymentFilter{StudentID: id})
	if err != nil {
		return BalanceReport{}, err
	}

	hours := BillableHours(JoinAttendance(SessionsByID(sessions), records))
	return BuildBalanceReport(*student, hours[id], SumPayments(payments)), nil
}

// BuildBalanceReport finalizes a balance from its inputs.
func BuildBalanceReport(s Student, totalHours, totalPaid decimal.Decimal) BalanceReport {
	due := Round(totalHours.Mul(s.HourlyRate))
	return BalanceReport{
		StudentID:   s.ID,
		StudentName: s.Name,
		HourlyRate:  s.HourlyRate,
		TotalHours:  totalHours,
		TotalDue:    due,
		TotalPaid:   totalPaid,
		Balance:     due.Sub(totalPaid),
	}
}
