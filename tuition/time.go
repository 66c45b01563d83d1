package tuition

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// =============================================================================
// DATE - Calendar day, no time of day
// =============================================================================

type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool { return !d.Before(other) }

func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsZero() bool { return d.Time.IsZero() }
func (d Date) String() string { return d.Time.Format(DateLayout) }
func (d Date) StartOfMonth() Date { return NewDate(d.Time.Year(), d.Time.Month(), 1) }
func (d Date) EndOfMonth() Date { return d.StartOfMonth().AddMonths(1).AddDays(-1) }
func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }

// =============================================================================
// DATE RANGE - Inclusive on both ends
// =============================================================================

type DateRange struct {
	Start Date
	End   Date
}

// NewDateRange fails when end is before start. Equal dates are a single day.
func NewDateRange(start, end Date) (DateRange, error) {
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("%w: %s before %s", ErrInvalidDateRange, end, start)
	}
	return DateRange{Start: start, End: end}, nil
}

func (r DateRange) Contains(d Date) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}

// =============================================================================
// CLOCK TIME - Wall-clock hour and minute
// =============================================================================

type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock parses a 24h HH:MM string.
func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// MustParseClock is ParseClock for literals known to be valid.
func MustParseClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Minutes returns minutes since midnight.
func (c ClockTime) Minutes() int { return c.Hour*60 + c.Minute }

func (c ClockTime) Before(other ClockTime) bool { return c.Minutes() < other.Minutes() }

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// =============================================================================
// TIME ARITHMETIC
// =============================================================================

var minutesPerHour = decimal.NewFromInt(60)

// SessionHours returns the elapsed hours between two wall-clock times on the
// same day, rounded half-up to two decimals. 09:00-10:30 is 1.50.
// End before start is an InvalidTimeRangeError; midnight rollover is not inferred.
func SessionHours(start, end ClockTime) (decimal.Decimal, error) {
	if end.Before(start) {
		return decimal.Zero, &InvalidTimeRangeError{Start: start, End: end}
	}
	minutes := decimal.NewFromInt(int64(end.Minutes() - start.Minutes()))
	return Round(minutes.Div(minutesPerHour)), nil
}

// Round finalizes a derived value to two decimals, half away from zero.
// Every value it is applied to here is non-negative, where that is half-up.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
