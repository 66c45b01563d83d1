package tuition

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// RecentPaymentsLimit caps Dashboard.RecentPayments.
const RecentPaymentsLimit = 5

// Dashboard is the at-a-glance summary for one day.
type Dashboard struct {
	Today           Date
	DayOfWeek       string
	ActiveStudents  int
	TotalClasses    int
	TodaysClasses   []ClassSchedule
	TodaysSessions  []Session
	TotalHoursMonth decimal.Decimal
	RecentPayments  []Payment
}

// BuildDashboard summarizes the given records as of today. Month hours sum
// HoursWorked of every session in today's calendar month, attended or not.
func BuildDashboard(today Date, students []Student, classes []ClassSchedule, sessions []Session, payments []Payment) Dashboard {
	d := Dashboard{
		Today:           today,
		DayOfWeek:       today.Weekday().String(),
		TotalClasses:    len(classes),
		TodaysClasses:   []ClassSchedule{},
		TodaysSessions:  []Session{},
		TotalHoursMonth: decimal.Zero,
	}

	for _, s := range students {
		if s.Active {
			d.ActiveStudents++
		}
	}

	for _, c := range classes {
		if strings.EqualFold(c.DayOfWeek, d.DayOfWeek) {
			d.TodaysClasses = append(d.TodaysClasses, c)
		}
	}

	month := DateRange{Start: today.StartOfMonth(), End: today.EndOfMonth()}
	for _, s := range sessions {
		if s.Date.Equal(today) {
			d.TodaysSessions = append(d.TodaysSessions, s)
		}
		if month.Contains(s.Date) {
			d.TotalHoursMonth = d.TotalHoursMonth.Add(s.HoursWorked)
		}
	}

	recent := append([]Payment(nil), payments...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date.After(recent[j].Date)
	})
	if len(recent) > RecentPaymentsLimit {
		recent = recent[:RecentPaymentsLimit]
	}
	d.RecentPayments = recent

	return d
}
