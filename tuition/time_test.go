package tuition_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tuition-tracker/tuition"
)

func TestSessionHours(t *testing.T) {
	tests := []struct {
		start, end string
		want       string
	}{
		{"09:00", "10:30", "1.50"},
		{"09:00", "10:00", "1.00"},
		{"09:00", "09:00", "0"},
		{"09:00", "09:20", "0.33"},
		{"09:00", "09:10", "0.17"},
		{"09:00", "09:01", "0.02"},
		{"14:15", "16:00", "1.75"},
		{"00:00", "23:59", "23.98"},
	}

	for _, tt := range tests {
		t.Run(tt.start+"-"+tt.end, func(t *testing.T) {
			got, err := tuition.SessionHours(clock(tt.start), clock(tt.end))
			require.NoError(t, err)
			decEqual(t, tt.want, got)
		})
	}
}

func TestSessionHours_EndBeforeStart_Fails(t *testing.T) {
	// GIVEN: A window that would cross midnight
	// WHEN: Computing hours
	// THEN: InvalidTimeRangeError, never zero or negative hours

	_, err := tuition.SessionHours(clock("22:00"), clock("01:00"))

	require.Error(t, err)
	assert.ErrorIs(t, err, tuition.ErrInvalidTimeRange)
	var rangeErr *tuition.InvalidTimeRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, "22:00", rangeErr.Start.String())
	assert.Equal(t, "01:00", rangeErr.End.String())
	assert.True(t, tuition.IsClientError(err))
}

func TestSessionHours_MonotonicInLength(t *testing.T) {
	start := clock("08:00")
	prev, err := tuition.SessionHours(start, start)
	require.NoError(t, err)

	for m := 1; m <= 12*60; m++ {
		end := tuition.ClockTime{Hour: 8 + m/60, Minute: m % 60}
		got, err := tuition.SessionHours(start, end)
		require.NoError(t, err)
		assert.True(t, got.GreaterThanOrEqual(prev), "%d minutes: %s < %s", m, got, prev)
		assert.True(t, got.Equal(got.Round(2)), "%d minutes not two-decimal: %s", m, got)
		prev = got
	}
}

func TestParseClock(t *testing.T) {
	c, err := tuition.ParseClock("07:05")
	require.NoError(t, err)
	assert.Equal(t, tuition.ClockTime{Hour: 7, Minute: 5}, c)
	assert.Equal(t, 425, c.Minutes())

	for _, bad := range []string{"25:00", "9am", "", "10:60"} {
		_, err := tuition.ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestDateRange(t *testing.T) {
	start := tuition.NewDate(2025, time.March, 10)
	end := tuition.NewDate(2025, time.March, 16)

	r, err := tuition.NewDateRange(start, end)
	require.NoError(t, err)
	assert.True(t, r.Contains(start), "start is inclusive")
	assert.True(t, r.Contains(end), "end is inclusive")
	assert.False(t, r.Contains(end.AddDays(1)))
	assert.False(t, r.Contains(start.AddDays(-1)))

	single, err := tuition.NewDateRange(start, start)
	require.NoError(t, err)
	assert.True(t, single.Contains(start))

	_, err = tuition.NewDateRange(end, start)
	assert.ErrorIs(t, err, tuition.ErrInvalidDateRange)
}

func TestDate_Month(t *testing.T) {
	d, err := tuition.ParseDate("2024-02-14")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", d.StartOfMonth().String())
	assert.Equal(t, "2024-02-29", d.EndOfMonth().String())

	_, err = tuition.ParseDate("2024-13-01")
	assert.Error(t, err)
}
