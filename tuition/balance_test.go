package tuition_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tuition-tracker/tuition"
)

func TestBalance_StudentNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.ComputeStudentBalance(f.ctx, "nobody")

	require.Error(t, err)
	var nf *tuition.StudentNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, tuition.StudentID("nobody"), nf.ID)
	assert.True(t, tuition.IsNotFound(err))
}

func TestBalance_LifetimeAcrossDates(t *testing.T) {
	// GIVEN: Sessions and payments spread over two years
	// THEN: Balance ignores dates entirely

	f := newFixture(t)
	f.student("s", "Sue", "30")
	f.class("C", "09:00", "10:30", "s")

	old := tuition.NewDate(2023, time.January, 2)
	f.session("C", old, "09:00", "10:30")
	f.session("C", monday(), "09:00", "10:30")

	f.pay("s", "10.00", old)
	f.pay("s", "25.50", monday())
	f.pay("s", "4.50", monday().AddDays(400))

	bal, err := f.engine.ComputeStudentBalance(f.ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "Sue", bal.StudentName)
	decEqual(t, "30", bal.HourlyRate)
	decEqual(t, "3.00", bal.TotalHours)
	decEqual(t, "90.00", bal.TotalDue)
	decEqual(t, "40.00", bal.TotalPaid)
	decEqual(t, "50.00", bal.Balance)
	assert.True(t, bal.Balance.Equal(bal.TotalDue.Sub(bal.TotalPaid)))
}

func TestBalance_Overpayment_IsNegative(t *testing.T) {
	f := newFixture(t)
	f.student("s", "Sue", "20")
	f.class("C", "09:00", "10:00", "s")
	f.session("C", monday(), "09:00", "10:00")
	f.pay("s", "50", monday())

	bal, err := f.engine.ComputeStudentBalance(f.ctx, "s")
	require.NoError(t, err)
	decEqual(t, "-30.00", bal.Balance)
	assert.True(t, bal.Balance.IsNegative(), "credit must not be clamped")
}

func TestBalance_AbsentExcluded(t *testing.T) {
	f := newFixture(t)
	f.student("s", "Sue", "20")
	f.class("C", "09:00", "10:00", "s")
	f.session("C", monday(), "09:00", "10:00")
	absent := f.session("C", monday().AddDays(7), "09:00", "17:00")
	late := f.session("C", monday().AddDays(14), "09:00", "09:30")
	f.mark(absent.Session.ID, "s", tuition.StatusAbsent)
	f.mark(late.Session.ID, "s", tuition.StatusLate)

	bal, err := f.engine.ComputeStudentBalance(f.ctx, "s")
	require.NoError(t, err)
	decEqual(t, "1.50", bal.TotalHours)
	decEqual(t, "30.00", bal.TotalDue)
	decEqual(t, "0", bal.TotalPaid)
}

func TestBalance_OnlyOwnPayments(t *testing.T) {
	f := newFixture(t)
	f.student("s", "Sue", "20")
	f.student("t", "Tom", "20")
	f.pay("s", "5", monday())
	f.pay("t", "7", monday())

	bal, err := f.engine.ComputeStudentBalance(f.ctx, "s")
	require.NoError(t, err)
	decEqual(t, "0", bal.TotalHours)
	decEqual(t, "5", bal.TotalPaid)
	decEqual(t, "-5", bal.Balance)
}

func TestBalance_DeletedSessionDoesNotCount(t *testing.T) {
	// GIVEN: A session is deleted
	// THEN: Its attendance is gone with it and no longer billed

	f := newFixture(t)
	f.student("s", "Sue", "20")
	f.class("C", "09:00", "10:00", "s")
	keep := f.session("C", monday(), "09:00", "10:00")
	drop := f.session("C", monday().AddDays(1), "09:00", "12:00")
	require.NoError(t, f.store.DeleteSession(f.ctx, drop.Session.ID))

	records, err := f.store.ListAttendance(f.ctx, tuition.AttendanceFilter{SessionIDs: []tuition.SessionID{drop.Session.ID}})
	require.NoError(t, err)
	assert.Empty(t, records, "attendance must cascade with its session")

	bal, err := f.engine.ComputeStudentBalance(f.ctx, "s")
	require.NoError(t, err)
	decEqual(t, keep.Session.HoursWorked.String(), bal.TotalHours)
}
