/*
store.go - Data-access interface consumed by the engine

PURPOSE:
  The engine reads records through predicate-filtered lists and performs
  exactly two kinds of write: creating a session and upserting attendance
  by its natural key. Everything else (CRUD, cascades, migrations) belongs
  to concrete stores.

NATURAL KEY:
  UpsertAttendance is insert-or-replace on (SessionID, StudentID). The store
  MUST enforce uniqueness of that pair (unique index, map key), so that a
  retried or duplicated submission replaces rather than appends. Concurrent
  upserts on one key: last write wins.

LOOKUPS:
  GetStudent and GetClass return (nil, nil) when the record does not exist.
  The engine turns that into a typed not-found error.

IMPLEMENTATIONS:
  - tuition/store/memory.go: In-memory, for engine tests
  - store/sqlstore: SQLite or Postgres through database/sql
*/
package tuition

import "context"

// SessionFilter selects sessions. Zero fields do not filter.
type SessionFilter struct {
	Range   *DateRange
	ClassID ClassID
	IDs     []SessionID
}

// AttendanceFilter selects attendance. Zero fields do not filter.
type AttendanceFilter struct {
	SessionIDs []SessionID
	StudentID  StudentID
}

// PaymentFilter selects payments. Zero fields do not filter.
type PaymentFilter struct {
	StudentID StudentID
}

// Reader is the read side the engine needs.
type Reader interface {
	ListSessions(ctx context.Context, f SessionFilter) ([]Session, error)
	ListAttendance(ctx context.Context, f AttendanceFilter) ([]AttendanceRecord, error)
	ListStudents(ctx context.Context) ([]Student, error)
	ListPayments(ctx context.Context, f PaymentFilter) ([]Payment, error)
	GetStudent(ctx context.Context, id StudentID) (*Student, error)
	GetClass(ctx context.Context, id ClassID) (*ClassSchedule, error)
}

// Writer is the write side the engine needs.
type Writer interface {
	CreateSession(ctx context.Context, s Session) error

	// UpsertAttendance inserts or replaces by natural key and returns the
	// stored record. The ID of an existing record is kept.
	UpsertAttendance(ctx context.Context, a AttendanceRecord) (AttendanceRecord, error)
}

type Store interface {
	Reader
	Writer
}

// TxStore runs fn atomically: if fn returns an error nothing it wrote survives.
type TxStore interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error
}
