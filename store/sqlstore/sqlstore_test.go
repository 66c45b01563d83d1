package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tuition-tracker/store/sqlstore"
	"github.com/warp/tuition-tracker/tuition"
)

func newStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	store, err := sqlstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func monday() tuition.Date {
	return tuition.NewDate(2025, time.March, 10)
}

func seedClass(t *testing.T, store *sqlstore.Store, ctx context.Context, students ...tuition.StudentID) {
	t.Helper()
	for _, id := range students {
		require.NoError(t, store.SaveStudent(ctx, tuition.Student{
			ID: id, Name: "Student " + string(id), HourlyRate: decimal.NewFromInt(20), Active: true,
		}))
	}
	require.NoError(t, store.SaveClass(ctx, tuition.ClassSchedule{
		ID:         "C",
		Name:       "Algebra",
		DayOfWeek:  "Monday",
		StartTime:  tuition.MustParseClock("09:00"),
		EndTime:    tuition.MustParseClock("10:00"),
		StudentIDs: students,
	}))
}

func TestStudents_RoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	st := tuition.Student{
		ID:         "s1",
		Name:       "Sue",
		Email:      "sue@example.com",
		HourlyRate: decimal.RequireFromString("17.50"),
		Active:     true,
	}
	require.NoError(t, store.SaveStudent(ctx, st))

	got, err := store.GetStudent(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Sue", got.Name)
	assert.True(t, got.Active)
	assert.True(t, got.HourlyRate.Equal(st.HourlyRate))
	assert.False(t, got.CreatedAt.IsZero())

	st.Active = false
	require.NoError(t, store.SaveStudent(ctx, st))
	got, err = store.GetStudent(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, got.Active)

	missing, err := store.GetStudent(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestClasses_EnrollmentOrderAndDedup(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveClass(ctx, tuition.ClassSchedule{
		ID:         "C",
		Name:       "Algebra",
		DayOfWeek:  "Monday",
		StartTime:  tuition.MustParseClock("09:00"),
		EndTime:    tuition.MustParseClock("10:00"),
		StudentIDs: []tuition.StudentID{"b", "a", "b", "c"},
	}))

	class, err := store.GetClass(ctx, "C")
	require.NoError(t, err)
	require.NotNil(t, class)
	assert.Equal(t, []tuition.StudentID{"b", "a", "c"}, class.StudentIDs)
	assert.Equal(t, "09:00", class.StartTime.String())

	require.NoError(t, store.SaveStudent(ctx, tuition.Student{ID: "a", Name: "Ana", HourlyRate: decimal.Zero}))
	st, err := store.GetStudent(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []tuition.ClassID{"C"}, st.EnrolledClasses)
}

func TestDeleteStudent_KeepsHistory(t *testing.T) {
	// GIVEN: A student with attendance and a payment
	// WHEN: The student is deleted
	// THEN: Enrollment goes, attendance and payments stay

	store := newStore(t)
	ctx := context.Background()
	seedClass(t, store, ctx, "s")
	require.NoError(t, store.CreateSession(ctx, tuition.Session{
		ID: "x", ClassID: "C", Date: monday(),
		StartTime: tuition.MustParseClock("09:00"), EndTime: tuition.MustParseClock("10:00"),
		HoursWorked: decimal.NewFromInt(1),
	}))
	_, err := store.UpsertAttendance(ctx, tuition.AttendanceRecord{ID: "a1", SessionID: "x", StudentID: "s", Status: tuition.StatusPresent})
	require.NoError(t, err)
	require.NoError(t, store.SavePayment(ctx, tuition.Payment{ID: "p1", StudentID: "s", Amount: decimal.NewFromInt(5), Date: monday()}))

	require.NoError(t, store.DeleteStudent(ctx, "s"))

	class, err := store.GetClass(ctx, "C")
	require.NoError(t, err)
	assert.Empty(t, class.StudentIDs)

	records, err := store.ListAttendance(ctx, tuition.AttendanceFilter{StudentID: "s"})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	payments, err := store.ListPayments(ctx, tuition.PaymentFilter{StudentID: "s"})
	require.NoError(t, err)
	assert.Len(t, payments, 1)

	err = store.DeleteStudent(ctx, "s")
	assert.ErrorIs(t, err, tuition.ErrStudentNotFound)
}

func TestUpsertAttendance_NaturalKey(t *testing.T) {
	// GIVEN: An attendance record for (x, s)
	// WHEN: Upserting the same key with a new ID and status
	// THEN: The original row is kept with the new status

	store := newStore(t)
	ctx := context.Background()
	seedClass(t, store, ctx, "s")
	require.NoError(t, store.CreateSession(ctx, tuition.Session{
		ID: "x", ClassID: "C", Date: monday(),
		StartTime: tuition.MustParseClock("09:00"), EndTime: tuition.MustParseClock("10:00"),
		HoursWorked: decimal.NewFromInt(1),
	}))

	first, err := store.UpsertAttendance(ctx, tuition.AttendanceRecord{ID: "a1", SessionID: "x", StudentID: "s", Status: tuition.StatusPresent})
	require.NoError(t, err)
	assert.Equal(t, tuition.AttendanceID("a1"), first.ID)

	second, err := store.UpsertAttendance(ctx, tuition.AttendanceRecord{ID: "a2", SessionID: "x", StudentID: "s", Status: tuition.StatusAbsent})
	require.NoError(t, err)
	assert.Equal(t, tuition.AttendanceID("a1"), second.ID)
	assert.Equal(t, tuition.StatusAbsent, second.Status)

	records, err := store.ListAttendance(ctx, tuition.AttendanceFilter{SessionIDs: []tuition.SessionID{"x"}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, tuition.StatusAbsent, records[0].Status)
}

func TestCreateAttendance_DuplicateIsConflict(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedClass(t, store, ctx, "s")
	require.NoError(t, store.CreateSession(ctx, tuition.Session{
		ID: "x", ClassID: "C", Date: monday(),
		StartTime: tuition.MustParseClock("09:00"), EndTime: tuition.MustParseClock("10:00"),
		HoursWorked: decimal.NewFromInt(1),
	}))

	rec := tuition.AttendanceRecord{ID: "a1", SessionID: "x", StudentID: "s", Status: tuition.StatusPresent}
	require.NoError(t, store.CreateAttendance(ctx, rec))

	rec.ID = "a2"
	err := store.CreateAttendance(ctx, rec)
	var conflict *tuition.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, rec.Key(), conflict.Key)
	assert.True(t, tuition.IsConflict(err))
}

func TestUpdateAttendanceStatus(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedClass(t, store, ctx, "s")
	require.NoError(t, store.CreateSession(ctx, tuition.Session{
		ID: "x", ClassID: "C", Date: monday(),
		StartTime: tuition.MustParseClock("09:00"), EndTime: tuition.MustParseClock("10:00"),
		HoursWorked: decimal.NewFromInt(1),
	}))
	require.NoError(t, store.CreateAttendance(ctx, tuition.AttendanceRecord{ID: "a1", SessionID: "x", StudentID: "s", Status: tuition.StatusPresent}))

	require.NoError(t, store.UpdateAttendanceStatus(ctx, "a1", tuition.StatusLate))
	rec, err := store.GetAttendance(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, tuition.StatusLate, rec.Status)

	assert.ErrorIs(t, store.UpdateAttendanceStatus(ctx, "missing", tuition.StatusLate), tuition.ErrAttendanceNotFound)
}

func TestListSessions_Filters(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedClass(t, store, ctx)

	for i, id := range []tuition.SessionID{"s0", "s1", "s2"} {
		require.NoError(t, store.CreateSession(ctx, tuition.Session{
			ID: id, ClassID: "C", Date: monday().AddDays(i * 7),
			StartTime: tuition.MustParseClock("09:00"), EndTime: tuition.MustParseClock("09:45"),
			HoursWorked: decimal.RequireFromString("0.75"),
		}))
	}

	r := tuition.DateRange{Start: monday().AddDays(1), End: monday().AddDays(14)}
	sessions, err := store.ListSessions(ctx, tuition.SessionFilter{Range: &r})
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, tuition.SessionID("s1"), sessions[0].ID)
	assert.True(t, sessions[0].HoursWorked.Equal(decimal.RequireFromString("0.75")))
	assert.Equal(t, "09:45", sessions[0].EndTime.String())

	sessions, err = store.ListSessions(ctx, tuition.SessionFilter{IDs: []tuition.SessionID{"s0", "s2"}})
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	sessions, err = store.ListSessions(ctx, tuition.SessionFilter{ClassID: "other"})
	require.NoError(t, err)
	assert.Empty(t, sessions)

	err = store.CreateSession(ctx, tuition.Session{ID: "s0", ClassID: "C", Date: monday(), HoursWorked: decimal.Zero})
	assert.ErrorIs(t, err, tuition.ErrConflict)
}

func TestDeleteSession_CascadesAttendance(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedClass(t, store, ctx, "a", "b")

	engine := tuition.NewEngine(store)
	res, err := engine.BootstrapSessionAttendance(ctx, "C", monday(), tuition.MustParseClock("09:00"), tuition.MustParseClock("10:00"))
	require.NoError(t, err)
	require.Len(t, res.Attendance, 2)

	require.NoError(t, store.DeleteSession(ctx, res.Session.ID))

	records, err := store.ListAttendance(ctx, tuition.AttendanceFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)

	assert.ErrorIs(t, store.DeleteSession(ctx, res.Session.ID), tuition.ErrSessionNotFound)
}

func TestWithTx_RollsBack(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx tuition.Store) error {
		if err := tx.CreateSession(ctx, tuition.Session{ID: "x", ClassID: "C", Date: monday(), HoursWorked: decimal.Zero}); err != nil {
			return err
		}
		return tuition.ErrConflict
	})
	assert.ErrorIs(t, err, tuition.ErrConflict)

	sessions, err := store.ListSessions(ctx, tuition.SessionFilter{})
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestEngine_EndToEndOnSQL(t *testing.T) {
	// GIVEN: Student at 20/hour enrolled in a Monday 09:00-10:00 class
	// WHEN: Session bootstrapped, payroll run, 15.00 paid
	// THEN: Payroll 1h / 20.00 and balance 5.00

	store := newStore(t)
	ctx := context.Background()
	seedClass(t, store, ctx, "S")
	engine := tuition.NewEngine(store)

	_, err := engine.BootstrapSessionAttendance(ctx, "C", monday(), tuition.MustParseClock("09:00"), tuition.MustParseClock("10:00"))
	require.NoError(t, err)

	report, err := engine.GeneratePayrollReport(ctx, monday(), monday().AddDays(6))
	require.NoError(t, err)
	require.Len(t, report.Students, 1)
	assert.Equal(t, "20.00", report.TotalEarnings.StringFixed(2))

	require.NoError(t, store.SavePayment(ctx, tuition.Payment{ID: "p", StudentID: "S", Amount: decimal.RequireFromString("15.00"), Date: monday()}))
	bal, err := engine.ComputeStudentBalance(ctx, "S")
	require.NoError(t, err)
	assert.Equal(t, "5.00", bal.Balance.StringFixed(2))
}

func TestReset(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedClass(t, store, ctx, "s")

	require.NoError(t, store.Reset(ctx))

	students, err := store.ListStudents(ctx)
	require.NoError(t, err)
	assert.Empty(t, students)
	classes, err := store.ListClasses(ctx)
	require.NoError(t, err)
	assert.Empty(t, classes)
}
