package tuition

import (
	"context"

	"github.com/shopspring/decimal"
)

// Engine bundles the four operations behind one store.
type Engine struct {
	Payroll   *PayrollAggregator
	Balances  *BalanceReconciler
	Bootstrap *SessionBootstrap
}

func NewEngine(store Store) *Engine {
	return &Engine{
		Payroll:   &PayrollAggregator{Store: store},
		Balances:  &BalanceReconciler{Store: store},
		Bootstrap: &SessionBootstrap{Store: store},
	}
}

// ComputeSessionHours is SessionHours.
func (e *Engine) ComputeSessionHours(start, end ClockTime) (decimal.Decimal, error) {
	return SessionHours(start, end)
}

// GeneratePayrollReport reports billable hours and earnings in [start, end].
func (e *Engine) GeneratePayrollReport(ctx context.Context, start, end Date) (PayrollReport, error) {
	r, err := NewDateRange(start, end)
	if err != nil {
		return PayrollReport{}, err
	}
	return e.Payroll.Generate(ctx, r)
}

// ComputeStudentBalance reconciles a student's lifetime due against paid.
func (e *Engine) ComputeStudentBalance(ctx context.Context, id StudentID) (BalanceReport, error) {
	return e.Balances.Reconcile(ctx, id)
}

// BootstrapSessionAttendance creates a session and seeds its attendance.
func (e *Engine) BootstrapSessionAttendance(ctx context.Context, classID ClassID, date Date, start, end ClockTime) (BootstrapResult, error) {
	return e.Bootstrap.Bootstrap(ctx, BootstrapInput{
		ClassID:   classID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	})
}
