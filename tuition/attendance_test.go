package tuition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tuition-tracker/tuition"
)

func TestIsBillable(t *testing.T) {
	assert.True(t, tuition.IsBillable(tuition.StatusPresent))
	assert.True(t, tuition.IsBillable(tuition.StatusLate))
	assert.False(t, tuition.IsBillable(tuition.StatusAbsent))
	assert.False(t, tuition.IsBillable("excused"))
	assert.Equal(t, tuition.StatusPresent, tuition.DefaultStatus)
}

func TestParseStatus(t *testing.T) {
	for _, s := range tuition.Statuses {
		got, err := tuition.ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := tuition.ParseStatus("excused")
	assert.ErrorIs(t, err, tuition.ErrInvalidStatus)
	assert.True(t, tuition.IsClientError(err))
}

func TestBillableHours_AbsentNeverCounts(t *testing.T) {
	// GIVEN: One long session where S1 is absent and S2 is late,
	//        and a short one where S1 is present
	// WHEN: Summing billable hours
	// THEN: S1 gets only the short session; absent contributes nothing

	long := tuition.Session{ID: "long", HoursWorked: dec("8.00")}
	short := tuition.Session{ID: "short", HoursWorked: dec("0.75")}

	hours := tuition.BillableHours([]tuition.Attended{
		{Session: long, Record: tuition.AttendanceRecord{SessionID: "long", StudentID: "s1", Status: tuition.StatusAbsent}},
		{Session: long, Record: tuition.AttendanceRecord{SessionID: "long", StudentID: "s2", Status: tuition.StatusLate}},
		{Session: short, Record: tuition.AttendanceRecord{SessionID: "short", StudentID: "s1", Status: tuition.StatusPresent}},
	})

	require.Len(t, hours, 2)
	decEqual(t, "0.75", hours["s1"])
	decEqual(t, "8.00", hours["s2"])
}

func TestBillableHours_OnlyAbsent_Omitted(t *testing.T) {
	hours := tuition.BillableHours([]tuition.Attended{
		{Session: tuition.Session{ID: "x", HoursWorked: dec("2")}, Record: tuition.AttendanceRecord{StudentID: "s1", Status: tuition.StatusAbsent}},
	})

	_, ok := hours["s1"]
	assert.False(t, ok, "absent-only student must be omitted, not zeroed")
}

func TestJoinAttendance_DropsOrphans(t *testing.T) {
	sessions := tuition.SessionsByID([]tuition.Session{{ID: "a", HoursWorked: dec("1")}})
	pairs := tuition.JoinAttendance(sessions, []tuition.AttendanceRecord{
		{SessionID: "a", StudentID: "s1", Status: tuition.StatusPresent},
		{SessionID: "gone", StudentID: "s1", Status: tuition.StatusPresent},
	})

	require.Len(t, pairs, 1)
	assert.Equal(t, tuition.SessionID("a"), pairs[0].Session.ID)
}
