package tuition_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/warp/tuition-tracker/tuition"
	"github.com/warp/tuition-tracker/tuition/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func clock(s string) tuition.ClockTime {
	return tuition.MustParseClock(s)
}

// monday is 2025-03-10.
func monday() tuition.Date {
	return tuition.NewDate(2025, time.March, 10)
}

func week(start tuition.Date) tuition.DateRange {
	return tuition.DateRange{Start: start, End: start.AddDays(6)}
}

func decEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	store  *store.Memory
	engine *tuition.Engine
	seq    int
}

func newFixture(t *testing.T) *fixture {
	m := store.NewMemory()
	f := &fixture{t: t, ctx: context.Background(), store: m, engine: tuition.NewEngine(m)}
	f.engine.Bootstrap.NewID = f.nextID
	return f
}

func (f *fixture) nextID() string {
	f.seq++
	return fmt.Sprintf("id-%03d", f.seq)
}

func (f *fixture) student(id, name, rate string) tuition.Student {
	s := tuition.Student{ID: tuition.StudentID(id), Name: name, HourlyRate: dec(rate), Active: true}
	require.NoError(f.t, f.store.SaveStudent(f.ctx, s))
	return s
}

func (f *fixture) class(id, start, end string, students ...string) tuition.ClassSchedule {
	c := tuition.ClassSchedule{
		ID:        tuition.ClassID(id),
		Name:      "Class " + id,
		DayOfWeek: "Monday",
		StartTime: clock(start),
		EndTime:   clock(end),
	}
	for _, s := range students {
		c.StudentIDs = append(c.StudentIDs, tuition.StudentID(s))
	}
	require.NoError(f.t, f.store.SaveClass(f.ctx, c))
	return c
}

func (f *fixture) session(classID string, date tuition.Date, start, end string) tuition.BootstrapResult {
	res, err := f.engine.BootstrapSessionAttendance(f.ctx, tuition.ClassID(classID), date, clock(start), clock(end))
	require.NoError(f.t, err)
	return res
}

func (f *fixture) pay(studentID, amount string, date tuition.Date) {
	require.NoError(f.t, f.store.SavePayment(f.ctx, tuition.Payment{
		ID:        tuition.PaymentID(f.nextID()),
		StudentID: tuition.StudentID(studentID),
		Amount:    dec(amount),
		Date:      date,
	}))
}

func (f *fixture) mark(sessionID tuition.SessionID, studentID string, status tuition.Status) {
	key := tuition.AttendanceKey{SessionID: sessionID, StudentID: tuition.StudentID(studentID)}
	require.NoError(f.t, f.store.SetAttendanceStatus(f.ctx, key, status))
}
