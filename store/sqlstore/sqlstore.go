/*
Package sqlstore provides a database/sql implementation of tuition.TxStore
plus the CRUD the HTTP layer needs.

PURPOSE:
  Persists students, classes (with ordered enrollment), sessions,
  attendance and payments. SQLite is the default; a postgres:// DSN opens
  the same schema through pgx. Queries are written with ? placeholders and
  rebound to $n for Postgres.

KEY TABLES:
  students:        hourly_rate stored as decimal TEXT
  classes:         recurring schedule, default start/end
  class_students:  ordered enrollment, (class_id, student_id) primary key
  sessions:        hours_worked stored as decimal TEXT, always derived
  attendance:      one row per (session_id, student_id)
  payments:        amount stored as decimal TEXT

NATURAL KEY:
  idx_attendance_natural_key is a UNIQUE index on attendance(session_id,
  student_id). UpsertAttendance writes with ON CONFLICT ... DO UPDATE, so
  concurrent upserts on one key resolve to the last writer. CreateAttendance
  is a plain insert and surfaces the violation as tuition.ConflictError.

CASCADE:
  Deleting a session deletes its attendance in the same transaction (and
  through the foreign key where the driver enforces it).

CONCURRENCY:
  SQLite is limited to one open connection, which serializes writers and
  keeps ":memory:" databases on a single connection. Postgres uses a pool.

USAGE:
  store, err := sqlstore.Open("./data/tuition.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := tuition.NewEngine(store)
*/
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/tuition-tracker/tuition"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// rebind rewrites ? placeholders to $1, $2, ... for Postgres.
func (d dialect) rebind(query string) string {
	if d != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn runs queries against either the pool or an open transaction.
type conn struct {
	q queryer
	d dialect
}

func (c *conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.q.ExecContext(ctx, c.d.rebind(query), args...)
}

func (c *conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.q.QueryContext(ctx, c.d.rebind(query), args...)
}

func (c *conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.q.QueryRowContext(ctx, c.d.rebind(query), args...)
}

// Store implements tuition.TxStore.
type Store struct {
	conn
	db *sql.DB
}

// Open opens a SQLite path (":memory:" for an in-memory database) or a
// postgres:// URL, and migrates the schema.
func Open(dsn string) (*Store, error) {
	var (
		db  *sql.DB
		d   dialect
		err error
	)

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		d = dialectPostgres
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	} else {
		d = dialectSQLite
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		db, err = sql.Open("sqlite3", dsn+sep+"_foreign_keys=on&_journal_mode=WAL")
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		db.SetMaxOpenConns(1)
	}

	store := &Store{conn: conn{q: db, d: d}, db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		hourly_rate TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS classes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		day_of_week TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS class_students (
		class_id TEXT NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
		student_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (class_id, student_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_class_students_student
		ON class_students(student_id)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		class_id TEXT NOT NULL,
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		hours_worked TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_date
		ON sessions(date)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_class
		ON sessions(class_id)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		student_id TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	// One attendance row per (session, student). UpsertAttendance relies on it.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_natural_key
		ON attendance(session_id, student_id)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_student
		ON attendance(student_id)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		date TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_student
		ON payments(student_id)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// TRANSACTIONS (tuition.TxStore)
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tuition.Store) error) error {
	return s.inTx(ctx, func(c *conn) error { return fn(c) })
}

func (s *Store) inTx(ctx context.Context, fn func(*conn) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&conn{q: sqlTx, d: s.d}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// Reset clears all data (for demo scenarios and tests).
func (s *Store) Reset(ctx context.Context) error {
	return s.inTx(ctx, func(c *conn) error {
		for _, table := range []string{"attendance", "sessions", "class_students", "classes", "payments", "students"} {
			if _, err := c.exec(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
		}
		return nil
	})
}

// =============================================================================
// STUDENTS
// =============================================================================

// SaveStudent inserts or updates a student. Enrollment is owned by classes.
func (c *conn) SaveStudent(ctx context.Context, st tuition.Student) error {
	createdAt := st.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := c.exec(ctx, `
		INSERT INTO students (id, name, phone, email, hourly_rate, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			email = excluded.email,
			hourly_rate = excluded.hourly_rate,
			active = excluded.active
	`, st.ID, st.Name, st.Phone, st.Email, st.HourlyRate.String(), st.Active, formatTimestamp(createdAt))
	return err
}

// GetStudent returns nil, nil when the student does not exist.
func (c *conn) GetStudent(ctx context.Context, id tuition.StudentID) (*tuition.Student, error) {
	students, err := c.queryStudents(ctx, "WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, nil
	}
	return &students[0], nil
}

// ListStudents returns all students ordered by name.
func (c *conn) ListStudents(ctx context.Context) ([]tuition.Student, error) {
	return c.queryStudents(ctx, "")
}

func (c *conn) queryStudents(ctx context.Context, where string, args ...any) ([]tuition.Student, error) {
	rows, err := c.query(ctx, `
		SELECT id, name, phone, email, hourly_rate, active, created_at
		FROM students `+where+`
		ORDER BY name, id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	var students []tuition.Student
	for rows.Next() {
		var (
			st        tuition.Student
			rate      string
			createdAt string
		)
		if err := rows.Scan(&st.ID, &st.Name, &st.Phone, &st.Email, &rate, &st.Active, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		if st.HourlyRate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("student %s: bad hourly_rate %q: %w", st.ID, rate, err)
		}
		st.CreatedAt = parseTimestamp(createdAt)
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(students) == 0 {
		return students, nil
	}
	enrolled, err := c.enrollmentsByStudent(ctx)
	if err != nil {
		return nil, err
	}
	for i := range students {
		students[i].EnrolledClasses = enrolled[students[i].ID]
	}
	return students, nil
}

func (c *conn) enrollmentsByStudent(ctx context.Context) (map[tuition.StudentID][]tuition.ClassID, error) {
	rows, err := c.query(ctx, `SELECT student_id, class_id FROM class_students ORDER BY class_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	enrolled := make(map[tuition.StudentID][]tuition.ClassID)
	for rows.Next() {
		var (
			studentID tuition.StudentID
			classID   tuition.ClassID
		)
		if err := rows.Scan(&studentID, &classID); err != nil {
			return nil, err
		}
		enrolled[studentID] = append(enrolled[studentID], classID)
	}
	return enrolled, rows.Err()
}

// DeleteStudent removes a student and their enrollments. Attendance and
// payments are kept for historical reports.
func (s *Store) DeleteStudent(ctx context.Context, id tuition.StudentID) error {
	return s.inTx(ctx, func(c *conn) error {
		res, err := c.exec(ctx, "DELETE FROM students WHERE id = ?", id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &tuition.StudentNotFoundError{ID: id}
		}
		_, err = c.exec(ctx, "DELETE FROM class_students WHERE student_id = ?", id)
		return err
	})
}

// =============================================================================
// CLASSES
// =============================================================================

// SaveClass inserts or updates a class and replaces its enrollment with
// c.StudentIDs, keeping order and dropping duplicates.
func (s *Store) SaveClass(ctx context.Context, cl tuition.ClassSchedule) error {
	createdAt := cl.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return s.inTx(ctx, func(c *conn) error {
		_, err := c.exec(ctx, `
			INSERT INTO classes (id, name, day_of_week, start_time, end_time, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				day_of_week = excluded.day_of_week,
				start_time = excluded.start_time,
				end_time = excluded.end_time
		`, cl.ID, cl.Name, cl.DayOfWeek, cl.StartTime.String(), cl.EndTime.String(), formatTimestamp(createdAt))
		if err != nil {
			return err
		}

		if _, err := c.exec(ctx, "DELETE FROM class_students WHERE class_id = ?", cl.ID); err != nil {
			return err
		}
		seen := make(map[tuition.StudentID]bool)
		position := 0
		for _, studentID := range cl.StudentIDs {
			if seen[studentID] {
				continue
			}
			seen[studentID] = true
			if _, err := c.exec(ctx,
				"INSERT INTO class_students (class_id, student_id, position) VALUES (?, ?, ?)",
				cl.ID, studentID, position,
			); err != nil {
				return err
			}
			position++
		}
		return nil
	})
}

// GetClass returns nil, nil when the class does not exist.
func (c *conn) GetClass(ctx context.Context, id tuition.ClassID) (*tuition.ClassSchedule, error) {
	classes, err := c.queryClasses(ctx, "WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(classes) == 0 {
		return nil, nil
	}
	return &classes[0], nil
}

// ListClasses returns all classes ordered by name.
func (c *conn) ListClasses(ctx context.Context) ([]tuition.ClassSchedule, error) {
	return c.queryClasses(ctx, "")
}

func (c *conn) queryClasses(ctx context.Context, where string, args ...any) ([]tuition.ClassSchedule, error) {
	rows, err := c.query(ctx, `
		SELECT id, name, day_of_week, start_time, end_time, created_at
		FROM classes `+where+`
		ORDER BY name, id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query classes: %w", err)
	}
	defer rows.Close()

	var classes []tuition.ClassSchedule
	for rows.Next() {
		var (
			cl               tuition.ClassSchedule
			start, end, made string
		)
		if err := rows.Scan(&cl.ID, &cl.Name, &cl.DayOfWeek, &start, &end, &made); err != nil {
			return nil, fmt.Errorf("failed to scan class: %w", err)
		}
		if cl.StartTime, err = tuition.ParseClock(start); err != nil {
			return nil, err
		}
		if cl.EndTime, err = tuition.ParseClock(end); err != nil {
			return nil, err
		}
		cl.CreatedAt = parseTimestamp(made)
		classes = append(classes, cl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range classes {
		if classes[i].StudentIDs, err = c.roster(ctx, classes[i].ID); err != nil {
			return nil, err
		}
	}
	return classes, nil
}

func (c *conn) roster(ctx context.Context, id tuition.ClassID) ([]tuition.StudentID, error) {
	rows, err := c.query(ctx,
		"SELECT student_id FROM class_students WHERE class_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster: %w", err)
	}
	defer rows.Close()

	roster := []tuition.StudentID{}
	for rows.Next() {
		var studentID tuition.StudentID
		if err := rows.Scan(&studentID); err != nil {
			return nil, err
		}
		roster = append(roster, studentID)
	}
	return roster, rows.Err()
}

// DeleteClass removes a class and its enrollment. Past sessions are kept.
func (c *conn) DeleteClass(ctx context.Context, id tuition.ClassID) error {
	if _, err := c.exec(ctx, "DELETE FROM class_students WHERE class_id = ?", id); err != nil {
		return err
	}
	res, err := c.exec(ctx, "DELETE FROM classes WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &tuition.ClassNotFoundError{ID: id}
	}
	return nil
}

// =============================================================================
// SESSIONS
// =============================================================================

// CreateSession inserts a session. A duplicate ID is a conflict.
func (c *conn) CreateSession(ctx context.Context, se tuition.Session) error {
	createdAt := se.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := c.exec(ctx, `
		INSERT INTO sessions (id, class_id, date, start_time, end_time, hours_worked, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, se.ID, se.ClassID, se.Date.String(), se.StartTime.String(), se.EndTime.String(),
		se.HoursWorked.String(), formatTimestamp(createdAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: session %s exists", tuition.ErrConflict, se.ID)
	}
	return err
}

// UpdateSession rewrites the time window and derived hours of a session.
func (c *conn) UpdateSession(ctx context.Context, se tuition.Session) error {
	res, err := c.exec(ctx, `
		UPDATE sessions SET start_time = ?, end_time = ?, hours_worked = ?
		WHERE id = ?
	`, se.StartTime.String(), se.EndTime.String(), se.HoursWorked.String(), se.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tuition.ErrSessionNotFound
	}
	return nil
}

// GetSession returns nil, nil when the session does not exist.
func (c *conn) GetSession(ctx context.Context, id tuition.SessionID) (*tuition.Session, error) {
	sessions, err := c.ListSessions(ctx, tuition.SessionFilter{IDs: []tuition.SessionID{id}})
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return &sessions[0], nil
}

// ListSessions returns matching sessions ordered by date, start time and ID.
func (c *conn) ListSessions(ctx context.Context, f tuition.SessionFilter) ([]tuition.Session, error) {
	var (
		where []string
		args  []any
	)
	if f.Range != nil {
		where = append(where, "date >= ? AND date <= ?")
		args = append(args, f.Range.Start.String(), f.Range.End.String())
	}
	if f.ClassID != "" {
		where = append(where, "class_id = ?")
		args = append(args, f.ClassID)
	}
	if len(f.IDs) > 0 {
		where = append(where, "id IN ("+placeholders(len(f.IDs))+")")
		for _, id := range f.IDs {
			args = append(args, id)
		}
	}

	rows, err := c.query(ctx, `
		SELECT id, class_id, date, start_time, end_time, hours_worked, created_at
		FROM sessions `+whereClause(where)+`
		ORDER BY date, start_time, id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []tuition.Session
	for rows.Next() {
		var (
			se                          tuition.Session
			date, start, end, hrs, made string
		)
		if err := rows.Scan(&se.ID, &se.ClassID, &date, &start, &end, &hrs, &made); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if se.Date, err = tuition.ParseDate(date); err != nil {
			return nil, err
		}
		if se.StartTime, err = tuition.ParseClock(start); err != nil {
			return nil, err
		}
		if se.EndTime, err = tuition.ParseClock(end); err != nil {
			return nil, err
		}
		if se.HoursWorked, err = decimal.NewFromString(hrs); err != nil {
			return nil, fmt.Errorf("session %s: bad hours_worked %q: %w", se.ID, hrs, err)
		}
		se.CreatedAt = parseTimestamp(made)
		sessions = append(sessions, se)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session and all of its attendance.
func (s *Store) DeleteSession(ctx context.Context, id tuition.SessionID) error {
	return s.inTx(ctx, func(c *conn) error {
		if _, err := c.exec(ctx, "DELETE FROM attendance WHERE session_id = ?", id); err != nil {
			return err
		}
		res, err := c.exec(ctx, "DELETE FROM sessions WHERE id = ?", id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return tuition.ErrSessionNotFound
		}
		return nil
	})
}

// =============================================================================
// ATTENDANCE
// =============================================================================

const attendanceColumns = "id, session_id, student_id, status, created_at"

// CreateAttendance inserts a record and fails with ConflictError if the
// (session, student) pair already has one.
func (c *conn) CreateAttendance(ctx context.Context, a tuition.AttendanceRecord) error {
	_, err := c.exec(ctx, `
		INSERT INTO attendance (`+attendanceColumns+`)
		VALUES (?, ?, ?, ?, ?)
	`, a.ID, a.SessionID, a.StudentID, a.Status, formatTimestamp(orNow(a.CreatedAt)))
	if isUniqueViolation(err) {
		return &tuition.ConflictError{Key: a.Key()}
	}
	return err
}

// UpsertAttendance inserts or replaces by (session_id, student_id).
// An existing row keeps its ID and created_at; only status changes.
func (c *conn) UpsertAttendance(ctx context.Context, a tuition.AttendanceRecord) (tuition.AttendanceRecord, error) {
	row := c.queryRow(ctx, `
		INSERT INTO attendance (`+attendanceColumns+`)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id, student_id) DO UPDATE SET
			status = excluded.status
		RETURNING `+attendanceColumns,
		a.ID, a.SessionID, a.StudentID, a.Status, formatTimestamp(orNow(a.CreatedAt)))
	return scanAttendance(row)
}

// GetAttendance returns nil, nil when the record does not exist.
func (c *conn) GetAttendance(ctx context.Context, id tuition.AttendanceID) (*tuition.AttendanceRecord, error) {
	row := c.queryRow(ctx, "SELECT "+attendanceColumns+" FROM attendance WHERE id = ?", id)
	a, err := scanAttendance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAttendanceStatus changes the status of one record.
func (c *conn) UpdateAttendanceStatus(ctx context.Context, id tuition.AttendanceID, status tuition.Status) error {
	res, err := c.exec(ctx, "UPDATE attendance SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tuition.ErrAttendanceNotFound
	}
	return nil
}

// ListAttendance returns matching records ordered by session then student.
func (c *conn) ListAttendance(ctx context.Context, f tuition.AttendanceFilter) ([]tuition.AttendanceRecord, error) {
	var (
		where []string
		args  []any
	)
	if len(f.SessionIDs) > 0 {
		where = append(where, "session_id IN ("+placeholders(len(f.SessionIDs))+")")
		for _, id := range f.SessionIDs {
			args = append(args, id)
		}
	}
	if f.StudentID != "" {
		where = append(where, "student_id = ?")
		args = append(args, f.StudentID)
	}

	rows, err := c.query(ctx,
		"SELECT "+attendanceColumns+" FROM attendance "+whereClause(where)+" ORDER BY session_id, student_id",
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var records []tuition.AttendanceRecord
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttendance(row scanner) (tuition.AttendanceRecord, error) {
	var (
		a         tuition.AttendanceRecord
		createdAt string
	)
	if err := row.Scan(&a.ID, &a.SessionID, &a.StudentID, &a.Status, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return a, err
		}
		return a, fmt.Errorf("failed to scan attendance: %w", err)
	}
	a.CreatedAt = parseTimestamp(createdAt)
	return a, nil
}

// =============================================================================
// PAYMENTS
// =============================================================================

// SavePayment inserts or updates a payment.
func (c *conn) SavePayment(ctx context.Context, p tuition.Payment) error {
	_, err := c.exec(ctx, `
		INSERT INTO payments (id, student_id, amount, date, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			amount = excluded.amount,
			date = excluded.date,
			notes = excluded.notes
	`, p.ID, p.StudentID, p.Amount.String(), p.Date.String(), p.Notes, formatTimestamp(orNow(p.CreatedAt)))
	return err
}

// GetPayment returns nil, nil when the payment does not exist.
func (c *conn) GetPayment(ctx context.Context, id tuition.PaymentID) (*tuition.Payment, error) {
	payments, err := c.queryPayments(ctx, "WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, nil
	}
	return &payments[0], nil
}

// ListPayments returns matching payments, newest date first.
func (c *conn) ListPayments(ctx context.Context, f tuition.PaymentFilter) ([]tuition.Payment, error) {
	if f.StudentID != "" {
		return c.queryPayments(ctx, "WHERE student_id = ?", f.StudentID)
	}
	return c.queryPayments(ctx, "")
}

func (c *conn) queryPayments(ctx context.Context, where string, args ...any) ([]tuition.Payment, error) {
	rows, err := c.query(ctx, `
		SELECT id, student_id, amount, date, notes, created_at
		FROM payments `+where+`
		ORDER BY date DESC, created_at DESC, id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []tuition.Payment
	for rows.Next() {
		var (
			p                  tuition.Payment
			amount, date, made string
		)
		if err := rows.Scan(&p.ID, &p.StudentID, &amount, &date, &p.Notes, &made); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("payment %s: bad amount %q: %w", p.ID, amount, err)
		}
		if p.Date, err = tuition.ParseDate(date); err != nil {
			return nil, err
		}
		p.CreatedAt = parseTimestamp(made)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// DeletePayment removes a payment.
func (c *conn) DeletePayment(ctx context.Context, id tuition.PaymentID) error {
	res, err := c.exec(ctx, "DELETE FROM payments WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tuition.ErrPaymentNotFound
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(conds, " AND ")
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
