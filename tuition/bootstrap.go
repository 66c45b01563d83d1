/*
bootstrap.go - Session creation with seeded attendance

FLOW:
  1. HoursWorked = SessionHours(start, end)     (InvalidTimeRangeError)
  2. Look up the class                          (ClassNotFoundError)
  3. Persist the session
  4. Upsert one attendance record per enrolled student with DefaultStatus

  Steps 3 and 4 run in one store transaction when the store supports it.

IDEMPOTENCY:
  Attendance is written with UpsertAttendance, never a blind insert, so
  seeding the same session twice leaves one record per (session, student).
  Sessions themselves are not deduplicated: two calls create two sessions.

EMPTY ENROLLMENT:
  A class with no students yields a session with zero attendance. Not an error.
*/
package tuition

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SessionBootstrap struct {
	Store Store

	// NewID and Now default to uuid.NewString and time.Now.
	NewID func() string
	Now   func() time.Time
}

// BootstrapInput describes the session to create. ID is optional.
type BootstrapInput struct {
	ID        SessionID
	ClassID   ClassID
	Date      Date
	StartTime ClockTime
	EndTime   ClockTime
}

type BootstrapResult struct {
	Session    Session
	Attendance []AttendanceRecord
}

// Bootstrap creates the session and seeds attendance for the class roster
// as it is at this moment.
func (sb *SessionBootstrap) Bootstrap(ctx context.Context, in BootstrapInput) (BootstrapResult, error) {
	hours, err := SessionHours(in.StartTime, in.EndTime)
	if err != nil {
		return BootstrapResult{}, err
	}

	class, err := sb.Store.GetClass(ctx, in.ClassID)
	if err != nil {
		return BootstrapResult{}, err
	}
	if class == nil {
		return BootstrapResult{}, &ClassNotFoundError{ID: in.ClassID}
	}

	session := Session{
		ID:          in.ID,
		ClassID:     in.ClassID,
		Date:        in.Date,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		HoursWorked: hours,
		CreatedAt:   sb.now(),
	}
	if session.ID == "" {
		session.ID = SessionID(sb.newID())
	}

	var seeded []AttendanceRecord
	err = sb.atomically(ctx, func(s Store) error {
		if err := s.CreateSession(ctx, session); err != nil {
			return err
		}
		var seedErr error
		seeded, seedErr = sb.seed(ctx, s, session.ID, class.StudentIDs)
		return seedErr
	})
	if err != nil {
		return BootstrapResult{}, err
	}

	return BootstrapResult{Session: session, Attendance: seeded}, nil
}

// Reseed re-runs attendance seeding for an existing session against its
// class's current roster. Existing records for enrolled students are
// replaced with DefaultStatus; no duplicates are created.
func (sb *SessionBootstrap) Reseed(ctx context.Context, id SessionID) ([]AttendanceRecord, error) {
	sessions, err := sb.Store.ListSessions(ctx, SessionFilter{IDs: []SessionID{id}})
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrSessionNotFound
	}
	session := sessions[0]

	class, err := sb.Store.GetClass(ctx, session.ClassID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, &ClassNotFoundError{ID: session.ClassID}
	}

	var seeded []AttendanceRecord
	err = sb.atomically(ctx, func(s Store) error {
		var seedErr error
		seeded, seedErr = sb.seed(ctx, s, session.ID, class.StudentIDs)
		return seedErr
	})
	if err != nil {
		return nil, err
	}
	return seeded, nil
}

func (sb *SessionBootstrap) seed(ctx context.Context, s Store, sessionID SessionID, students []StudentID) ([]AttendanceRecord, error) {
	seeded := make([]AttendanceRecord, 0, len(students))
	for _, studentID := range students {
		rec, err := s.UpsertAttendance(ctx, AttendanceRecord{
			ID:        AttendanceID(sb.newID()),
			SessionID: sessionID,
			StudentID: studentID,
			Status:    DefaultStatus,
			CreatedAt: sb.now(),
		})
		if err != nil {
			return nil, err
		}
		seeded = append(seeded, rec)
	}
	return seeded, nil
}

func (sb *SessionBootstrap) atomically(ctx context.Context, fn func(Store) error) error {
	if tx, ok := sb.Store.(TxStore); ok {
		return tx.WithTx(ctx, fn)
	}
	return fn(sb.Store)
}

func (sb *SessionBootstrap) newID() string {
	if sb.NewID != nil {
		return sb.NewID()
	}
	return uuid.NewString()
}

func (sb *SessionBootstrap) now() time.Time {
	if sb.Now != nil {
		return sb.Now()
	}
	return time.Now().UTC()
}
