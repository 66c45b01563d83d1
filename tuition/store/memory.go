// Package store provides an in-memory tuition.TxStore.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/tuition-tracker/tuition"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keys attendance by its natural key, so an upsert can only ever
// replace. Sessions keep insertion order for stable listings.
type Memory struct {
	mu   sync.RWMutex
	data memoryData
}

type memoryData struct {
	students   map[tuition.StudentID]tuition.Student
	classes    map[tuition.ClassID]tuition.ClassSchedule
	sessions   map[tuition.SessionID]tuition.Session
	order      []tuition.SessionID
	attendance map[tuition.AttendanceKey]tuition.AttendanceRecord
	payments   map[tuition.PaymentID]tuition.Payment
}

func NewMemory() *Memory {
	return &Memory{data: newMemoryData()}
}

func newMemoryData() memoryData {
	return memoryData{
		students:   make(map[tuition.StudentID]tuition.Student),
		classes:    make(map[tuition.ClassID]tuition.ClassSchedule),
		sessions:   make(map[tuition.SessionID]tuition.Session),
		attendance: make(map[tuition.AttendanceKey]tuition.AttendanceRecord),
		payments:   make(map[tuition.PaymentID]tuition.Payment),
	}
}

// =============================================================================
// SEEDING (outside the engine's interface)
// =============================================================================

func (m *Memory) SaveStudent(_ context.Context, s tuition.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.students[s.ID] = s
	return nil
}

func (m *Memory) DeleteStudent(_ context.Context, id tuition.StudentID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data.students, id)
	return nil
}

func (m *Memory) SaveClass(_ context.Context, c tuition.ClassSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.StudentIDs = append([]tuition.StudentID(nil), c.StudentIDs...)
	m.data.classes[c.ID] = c
	return nil
}

func (m *Memory) SavePayment(_ context.Context, p tuition.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.payments[p.ID] = p
	return nil
}

// SetAttendanceStatus changes the status of an existing record.
func (m *Memory) SetAttendanceStatus(_ context.Context, key tuition.AttendanceKey, status tuition.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.data.attendance[key]
	if !ok {
		return tuition.ErrAttendanceNotFound
	}
	rec.Status = status
	m.data.attendance[key] = rec
	return nil
}

// DeleteSession removes a session and its attendance.
func (m *Memory) DeleteSession(_ context.Context, id tuition.SessionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data.sessions[id]; !ok {
		return tuition.ErrSessionNotFound
	}
	delete(m.data.sessions, id)
	for i, sid := range m.data.order {
		if sid == id {
			m.data.order = append(m.data.order[:i], m.data.order[i+1:]...)
			break
		}
	}
	for k := range m.data.attendance {
		if k.SessionID == id {
			delete(m.data.attendance, k)
		}
	}
	return nil
}

// =============================================================================
// tuition.Store
// =============================================================================

func (m *Memory) ListSessions(_ context.Context, f tuition.SessionFilter) ([]tuition.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.listSessions(f), nil
}

func (m *Memory) ListAttendance(_ context.Context, f tuition.AttendanceFilter) ([]tuition.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.listAttendance(f), nil
}

func (m *Memory) ListStudents(_ context.Context) ([]tuition.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.listStudents(), nil
}

func (m *Memory) ListPayments(_ context.Context, f tuition.PaymentFilter) ([]tuition.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.listPayments(f), nil
}

func (m *Memory) GetStudent(_ context.Context, id tuition.StudentID) (*tuition.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.getStudent(id), nil
}

func (m *Memory) GetClass(_ context.Context, id tuition.ClassID) (*tuition.ClassSchedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.getClass(id), nil
}

func (m *Memory) CreateSession(_ context.Context, s tuition.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.createSession(s)
}

func (m *Memory) UpsertAttendance(_ context.Context, a tuition.AttendanceRecord) (tuition.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.upsertAttendance(a), nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx runs fn against a view that writes straight through, restoring a
// snapshot if fn fails. Other callers block until fn returns.
func (m *Memory) WithTx(_ context.Context, fn func(tuition.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.data.clone()
	if err := fn(&txView{data: &m.data}); err != nil {
		m.data = snapshot
		return err
	}
	return nil
}

type txView struct {
	data *memoryData
}

func (tv *txView) ListSessions(_ context.Context, f tuition.SessionFilter) ([]tuition.Session, error) {
	return tv.data.listSessions(f), nil
}

func (tv *txView) ListAttendance(_ context.Context, f tuition.AttendanceFilter) ([]tuition.AttendanceRecord, error) {
	return tv.data.listAttendance(f), nil
}

func (tv *txView) ListStudents(_ context.Context) ([]tuition.Student, error) {
	return tv.data.listStudents(), nil
}

func (tv *txView) ListPayments(_ context.Context, f tuition.PaymentFilter) ([]tuition.Payment, error) {
	return tv.data.listPayments(f), nil
}

func (tv *txView) GetStudent(_ context.Context, id tuition.StudentID) (*tuition.Student, error) {
	return tv.data.getStudent(id), nil
}

func (tv *txView) GetClass(_ context.Context, id tuition.ClassID) (*tuition.ClassSchedule, error) {
	return tv.data.getClass(id), nil
}

func (tv *txView) CreateSession(_ context.Context, s tuition.Session) error {
	return tv.data.createSession(s)
}

func (tv *txView) UpsertAttendance(_ context.Context, a tuition.AttendanceRecord) (tuition.AttendanceRecord, error) {
	return tv.data.upsertAttendance(a), nil
}

// =============================================================================
// UNLOCKED OPERATIONS - callers hold the lock
// =============================================================================

func (d *memoryData) listSessions(f tuition.SessionFilter) []tuition.Session {
	var ids map[tuition.SessionID]bool
	if len(f.IDs) > 0 {
		ids = make(map[tuition.SessionID]bool, len(f.IDs))
		for _, id := range f.IDs {
			ids[id] = true
		}
	}

	var result []tuition.Session
	for _, id := range d.order {
		s := d.sessions[id]
		if f.Range != nil && !f.Range.Contains(s.Date) {
			continue
		}
		if f.ClassID != "" && s.ClassID != f.ClassID {
			continue
		}
		if ids != nil && !ids[s.ID] {
			continue
		}
		result = append(result, s)
	}
	return result
}

func (d *memoryData) listAttendance(f tuition.AttendanceFilter) []tuition.AttendanceRecord {
	var sessions map[tuition.SessionID]bool
	if len(f.SessionIDs) > 0 {
		sessions = make(map[tuition.SessionID]bool, len(f.SessionIDs))
		for _, id := range f.SessionIDs {
			sessions[id] = true
		}
	}

	var result []tuition.AttendanceRecord
	for k, a := range d.attendance {
		if sessions != nil && !sessions[k.SessionID] {
			continue
		}
		if f.StudentID != "" && k.StudentID != f.StudentID {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SessionID != result[j].SessionID {
			return result[i].SessionID < result[j].SessionID
		}
		return result[i].StudentID < result[j].StudentID
	})
	return result
}

func (d *memoryData) listStudents() []tuition.Student {
	result := make([]tuition.Student, 0, len(d.students))
	for _, s := range d.students {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (d *memoryData) listPayments(f tuition.PaymentFilter) []tuition.Payment {
	var result []tuition.Payment
	for _, p := range d.payments {
		if f.StudentID != "" && p.StudentID != f.StudentID {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (d *memoryData) getStudent(id tuition.StudentID) *tuition.Student {
	s, ok := d.students[id]
	if !ok {
		return nil
	}
	return &s
}

func (d *memoryData) getClass(id tuition.ClassID) *tuition.ClassSchedule {
	c, ok := d.classes[id]
	if !ok {
		return nil
	}
	c.StudentIDs = append([]tuition.StudentID(nil), c.StudentIDs...)
	return &c
}

func (d *memoryData) createSession(s tuition.Session) error {
	if _, exists := d.sessions[s.ID]; exists {
		return fmt.Errorf("%w: session %s exists", tuition.ErrConflict, s.ID)
	}
	d.sessions[s.ID] = s
	d.order = append(d.order, s.ID)
	return nil
}

func (d *memoryData) upsertAttendance(a tuition.AttendanceRecord) tuition.AttendanceRecord {
	if existing, ok := d.attendance[a.Key()]; ok {
		existing.Status = a.Status
		d.attendance[a.Key()] = existing
		return existing
	}
	d.attendance[a.Key()] = a
	return a
}

func (d *memoryData) clone() memoryData {
	c := newMemoryData()
	for k, v := range d.students {
		c.students[k] = v
	}
	for k, v := range d.classes {
		c.classes[k] = v
	}
	for k, v := range d.sessions {
		c.sessions[k] = v
	}
	c.order = append([]tuition.SessionID(nil), d.order...)
	for k, v := range d.attendance {
		c.attendance[k] = v
	}
	for k, v := range d.payments {
		c.payments[k] = v
	}
	return c
}
