package tuition_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tuition-tracker/tuition"
)

func TestBuildDashboard(t *testing.T) {
	today := monday() // 2025-03-10

	students := []tuition.Student{{ID: "a", Active: true}, {ID: "b", Active: false}, {ID: "c", Active: true}}
	classes := []tuition.ClassSchedule{
		{ID: "mon", DayOfWeek: "Monday"},
		{ID: "tue", DayOfWeek: "Tuesday"},
		{ID: "mon2", DayOfWeek: "monday"},
	}
	sessions := []tuition.Session{
		{ID: "today", Date: today, HoursWorked: dec("1.5")},
		{ID: "earlier", Date: tuition.NewDate(2025, time.March, 1), HoursWorked: dec("2")},
		{ID: "lastmonth", Date: tuition.NewDate(2025, time.February, 28), HoursWorked: dec("4")},
		{ID: "later", Date: tuition.NewDate(2025, time.March, 31), HoursWorked: dec("0.25")},
	}
	var payments []tuition.Payment
	for d := 1; d <= 7; d++ {
		payments = append(payments, tuition.Payment{
			ID:   tuition.PaymentID(fmt.Sprintf("p%d", d)),
			Date: tuition.NewDate(2025, time.March, d),
		})
	}

	d := tuition.BuildDashboard(today, students, classes, sessions, payments)

	assert.Equal(t, "Monday", d.DayOfWeek)
	assert.Equal(t, 2, d.ActiveStudents)
	assert.Equal(t, 3, d.TotalClasses)
	require.Len(t, d.TodaysClasses, 2)
	require.Len(t, d.TodaysSessions, 1)
	assert.Equal(t, tuition.SessionID("today"), d.TodaysSessions[0].ID)
	decEqual(t, "3.75", d.TotalHoursMonth)
	require.Len(t, d.RecentPayments, tuition.RecentPaymentsLimit)
	assert.Equal(t, "2025-03-07", d.RecentPayments[0].Date.String())
	assert.Equal(t, "2025-03-03", d.RecentPayments[4].Date.String())
}
