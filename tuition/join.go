package tuition

import "github.com/shopspring/decimal"

// SessionsByID indexes sessions by ID.
func SessionsByID(sessions []Session) map[SessionID]Session {
	byID := make(map[SessionID]Session, len(sessions))
	for _, s := range sessions {
		byID[s.ID] = s
	}
	return byID
}

// StudentsByID indexes students by ID.
func StudentsByID(students []Student) map[StudentID]Student {
	byID := make(map[StudentID]Student, len(students))
	for _, s := range students {
		byID[s.ID] = s
	}
	return byID
}

// SessionIDs returns the IDs of sessions in order.
func SessionIDs(sessions []Session) []SessionID {
	ids := make([]SessionID, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	return ids
}

// GroupAttendanceBySession groups records under their session ID.
func GroupAttendanceBySession(records []AttendanceRecord) map[SessionID][]AttendanceRecord {
	grouped := make(map[SessionID][]AttendanceRecord)
	for _, r := range records {
		grouped[r.SessionID] = append(grouped[r.SessionID], r)
	}
	return grouped
}

// JoinAttendance pairs each record with its session. Records whose session
// is not in sessions are dropped.
func JoinAttendance(sessions map[SessionID]Session, records []AttendanceRecord) []Attended {
	pairs := make([]Attended, 0, len(records))
	for _, r := range records {
		s, ok := sessions[r.SessionID]
		if !ok {
			continue
		}
		pairs = append(pairs, Attended{Session: s, Record: r})
	}
	return pairs
}

// SumPayments totals payment amounts.
func SumPayments(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
