package tuition_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tuition-tracker/tuition"
)

// =============================================================================
// END-TO-END SCENARIO
// =============================================================================

func TestScenario_BootstrapPayrollBalance(t *testing.T) {
	// GIVEN: Student S at 20/hour enrolled in class C, Monday 09:00-10:00
	// WHEN: A session is bootstrapped, payroll run for the week, 15.00 paid
	// THEN: One present record, payroll 1.0h / 20.00, balance 5.00

	f := newFixture(t)
	f.student("S", "Sam", "20")
	f.class("C", "09:00", "10:00", "S")

	res := f.session("C", monday(), "09:00", "10:00")
	require.Len(t, res.Attendance, 1)
	assert.Equal(t, tuition.StudentID("S"), res.Attendance[0].StudentID)
	assert.Equal(t, tuition.StatusPresent, res.Attendance[0].Status)
	decEqual(t, "1.00", res.Session.HoursWorked)

	report, err := f.engine.Payroll.Generate(f.ctx, week(monday()))
	require.NoError(t, err)
	require.Len(t, report.Students, 1)
	assert.Equal(t, tuition.StudentID("S"), report.Students[0].StudentID)
	decEqual(t, "1.0", report.Students[0].Hours)
	decEqual(t, "20.00", report.Students[0].Earnings)
	decEqual(t, "1.0", report.TotalHours)
	decEqual(t, "20.00", report.TotalEarnings)

	f.pay("S", "15.00", monday())

	bal, err := f.engine.ComputeStudentBalance(f.ctx, "S")
	require.NoError(t, err)
	decEqual(t, "20.00", bal.TotalDue)
	decEqual(t, "15.00", bal.TotalPaid)
	decEqual(t, "5.00", bal.Balance)

	// WHEN: S is later marked absent
	// THEN: S disappears from the week's payroll
	f.mark(res.Session.ID, "S", tuition.StatusAbsent)

	report, err = f.engine.Payroll.Generate(f.ctx, week(monday()))
	require.NoError(t, err)
	assert.Empty(t, report.Students)
	decEqual(t, "0", report.TotalHours)
	decEqual(t, "0", report.TotalEarnings)
}

// =============================================================================
// PAYROLL
// =============================================================================

func TestPayroll_TotalsEqualSumOfLines(t *testing.T) {
	// GIVEN: Rates and session lengths whose products need rounding
	// THEN: Totals are exactly the sums of the rounded lines

	f := newFixture(t)
	f.student("a", "Ana", "17.33")
	f.student("b", "Ben", "12.49")
	f.student("c", "Cat", "9.99")
	f.class("C1", "09:00", "09:20", "a", "b", "c")
	f.class("C2", "15:00", "15:50", "a", "c")

	f.session("C1", monday(), "09:00", "09:20")
	f.session("C1", monday().AddDays(2), "09:00", "09:10")
	s3 := f.session("C2", monday().AddDays(3), "15:00", "15:50")
	f.mark(s3.Session.ID, "c", tuition.StatusLate)

	report, err := f.engine.GeneratePayrollReport(f.ctx, monday(), monday().AddDays(6))
	require.NoError(t, err)
	require.Len(t, report.Students, 3)

	hours, earnings := decimal.Zero, decimal.Zero
	for _, e := range report.Students {
		hours = hours.Add(e.Hours)
		earnings = earnings.Add(e.Earnings)
		assert.True(t, e.Earnings.Equal(e.Hours.Mul(e.HourlyRate).Round(2)), e.StudentName)
	}
	assert.True(t, report.TotalHours.Equal(hours))
	assert.True(t, report.TotalEarnings.Equal(earnings))

	// a: 0.33 + 0.17 + 0.83 = 1.33
	decEqual(t, "1.33", report.Students[0].Hours)
	decEqual(t, "23.05", report.Students[0].Earnings)
}

func TestPayroll_RangeIsInclusive(t *testing.T) {
	f := newFixture(t)
	f.student("s", "Sue", "10")
	f.class("C", "09:00", "10:00", "s")

	f.session("C", monday().AddDays(-1), "09:00", "10:00") // outside
	f.session("C", monday(), "09:00", "10:00")             // start edge
	f.session("C", monday().AddDays(6), "09:00", "11:00")  // end edge
	f.session("C", monday().AddDays(7), "09:00", "10:00")  // outside

	report, err := f.engine.Payroll.Generate(f.ctx, week(monday()))
	require.NoError(t, err)
	require.Len(t, report.Students, 1)
	decEqual(t, "3", report.TotalHours)
	decEqual(t, "30", report.TotalEarnings)

	single, err := f.engine.GeneratePayrollReport(f.ctx, monday(), monday())
	require.NoError(t, err)
	decEqual(t, "1", single.TotalHours)
}

func TestPayroll_MissingStudent_Placeholder(t *testing.T) {
	// GIVEN: A student attended, then their record was deleted
	// THEN: The report still includes the hours under a placeholder at rate 0

	f := newFixture(t)
	f.student("gone", "Gone", "50")
	f.student("kept", "Kept", "10")
	f.class("C", "09:00", "10:30", "gone", "kept")
	f.session("C", monday(), "09:00", "10:30")
	require.NoError(t, f.store.DeleteStudent(f.ctx, "gone"))

	report, err := f.engine.Payroll.Generate(f.ctx, week(monday()))
	require.NoError(t, err)
	require.Len(t, report.Students, 2)

	var placeholder tuition.PayrollEntry
	for _, e := range report.Students {
		if e.StudentID == "gone" {
			placeholder = e
		}
	}
	assert.Equal(t, tuition.UnknownStudentName, placeholder.StudentName)
	decEqual(t, "1.50", placeholder.Hours)
	decEqual(t, "0", placeholder.HourlyRate)
	decEqual(t, "0", placeholder.Earnings)
	decEqual(t, "3.00", report.TotalHours)
	decEqual(t, "15.00", report.TotalEarnings)
}

func TestPayroll_Empty(t *testing.T) {
	f := newFixture(t)

	report, err := f.engine.Payroll.Generate(f.ctx, week(monday()))
	require.NoError(t, err)
	assert.NotNil(t, report.Students)
	assert.Empty(t, report.Students)
	decEqual(t, "0", report.TotalHours)
}

func TestPayroll_InvalidRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.GeneratePayrollReport(f.ctx, monday(), monday().AddDays(-1))
	assert.ErrorIs(t, err, tuition.ErrInvalidDateRange)
}

func TestPayroll_StableOrder(t *testing.T) {
	f := newFixture(t)
	f.student("z", "Zed", "1")
	f.student("a2", "Amy", "1")
	f.student("a1", "Amy", "1")
	f.class("C", "09:00", "10:00", "z", "a2", "a1")
	f.session("C", monday(), "09:00", "10:00")

	for i := 0; i < 5; i++ {
		report, err := f.engine.Payroll.Generate(f.ctx, week(monday()))
		require.NoError(t, err)
		ids := []tuition.StudentID{}
		for _, e := range report.Students {
			ids = append(ids, e.StudentID)
		}
		assert.Equal(t, []tuition.StudentID{"a1", "a2", "z"}, ids)
	}
}
