/*
handlers.go - HTTP API handlers for the tuition tracker

PURPOSE:
  Exposes the tuition engine and its records via REST API. Handles HTTP
  request/response, JSON serialization and validation, and delegates to
  package tuition for every derived value.

ENDPOINTS:
  Students:
    GET    /api/students                      List students
    POST   /api/students                      Create student
    GET    /api/students/{id}                 Get student
    PUT    /api/students/{id}                 Partial update
    DELETE /api/students/{id}                 Delete (enrollment only; history kept)

  Classes:
    GET/POST /api/classes, GET/PUT/DELETE /api/classes/{id}

  Sessions:
    GET    /api/sessions?date&class_id&start_date&end_date
    POST   /api/sessions                      Bootstrap session + attendance
    GET    /api/sessions/{id}
    PUT    /api/sessions/{id}                 Change times; hours recomputed
    DELETE /api/sessions/{id}                 Cascades to attendance
    POST   /api/sessions/{id}/attendance/seed Re-run attendance seeding

  Attendance:
    GET    /api/attendance?session_id&student_id
    POST   /api/attendance                    Create; 409 if key exists
    PUT    /api/attendance/{id}               Change status
    POST   /api/attendance/bulk               Upsert by (session, student)

  Payments:
    GET/POST /api/payments, GET/PUT/DELETE /api/payments/{id}

  Reports:
    GET    /api/reports/payroll?start_date&end_date
    GET    /api/reports/payroll/export?start_date&end_date
    GET    /api/reports/student-balance/{id}
    GET    /api/dashboard

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid time or date range, unknown status
  - 404: Resource not found
  - 409: Conflict (attendance natural key already taken)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/warp/tuition-tracker/store/sqlstore"
	"github.com/warp/tuition-tracker/tuition"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlstore.Store
	Engine *tuition.Engine

	// Now supplies "today" for the dashboard. Defaults to time.Now.
	Now func() time.Time

	validate *validator.Validate

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlstore.Store) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		Store:    store,
		Engine:   tuition.NewEngine(store),
		Now:      time.Now,
		validate: v,
	}
}

// =============================================================================
// STUDENT HANDLERS
// =============================================================================

// ListStudents returns all students.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.Store.ListStudents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list students", err)
		return
	}

	dtos := make([]StudentDTO, len(students))
	for i, s := range students {
		dtos[i] = toStudentDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetStudent returns a single student.
func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id := tuition.StudentID(chi.URLParam(r, "id"))

	st, err := h.Store.GetStudent(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get student", err)
		return
	}
	if st == nil {
		writeError(w, http.StatusNotFound, "Student not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(*st))
}

// CreateStudent creates a new, active student.
func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req CreateStudentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.HourlyRate.IsNegative() {
		writeError(w, http.StatusBadRequest, "hourlyRate must not be negative", nil)
		return
	}

	st := tuition.Student{
		ID:         tuition.StudentID(req.ID),
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		HourlyRate: *req.HourlyRate,
		Active:     true,
		CreatedAt:  time.Now().UTC(),
	}
	if st.ID == "" {
		st.ID = tuition.StudentID(uuid.NewString())
	}

	if err := h.Store.SaveStudent(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create student", err)
		return
	}
	writeJSON(w, http.StatusCreated, toStudentDTO(st))
}

// UpdateStudent applies a partial update.
func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := tuition.StudentID(chi.URLParam(r, "id"))

	var req UpdateStudentRequest
	if !h.decode(w, r, &req) {
		return
	}

	st, err := h.Store.GetStudent(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get student", err)
		return
	}
	if st == nil {
		writeError(w, http.StatusNotFound, "Student not found", nil)
		return
	}

	if req.Name != nil {
		st.Name = *req.Name
	}
	if req.Phone != nil {
		st.Phone = *req.Phone
	}
	if req.Email != nil {
		st.Email = *req.Email
	}
	if req.HourlyRate != nil {
		if req.HourlyRate.IsNegative() {
			writeError(w, http.StatusBadRequest, "hourlyRate must not be negative", nil)
			return
		}
		st.HourlyRate = *req.HourlyRate
	}
	if req.Active != nil {
		st.Active = *req.Active
	}

	if err := h.Store.SaveStudent(ctx, *st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update student", err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(*st))
}

// DeleteStudent removes a student and their enrollments.
func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id := tuition.StudentID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteStudent(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete student", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Student deleted"})
}

// =============================================================================
// CLASS HANDLERS
// =============================================================================

// ListClasses returns all classes with their rosters.
func (h *Handler) ListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.Store.ListClasses(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list classes", err)
		return
	}

	dtos := make([]ClassDTO, len(classes))
	for i, c := range classes {
		dtos[i] = toClassDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetClass returns a single class.
func (h *Handler) GetClass(w http.ResponseWriter, r *http.Request) {
	id := tuition.ClassID(chi.URLParam(r, "id"))

	class, err := h.Store.GetClass(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get class", err)
		return
	}
	if class == nil {
		writeError(w, http.StatusNotFound, "Class not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toClassDTO(*class))
}

// CreateClass creates a class and its enrollment.
func (h *Handler) CreateClass(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateClassRequest
	if !h.decode(w, r, &req) {
		return
	}

	start, end, err := parseWindow(req.StartTime, req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid class times", err)
		return
	}

	class := tuition.ClassSchedule{
		ID:         tuition.ClassID(req.ID),
		Name:       req.Name,
		DayOfWeek:  req.DayOfWeek,
		StartTime:  start,
		EndTime:    end,
		StudentIDs: toStudentIDs(req.StudentIDs),
		CreatedAt:  time.Now().UTC(),
	}
	if class.ID == "" {
		class.ID = tuition.ClassID(uuid.NewString())
	}

	if err := h.Store.SaveClass(ctx, class); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create class", err)
		return
	}
	h.writeClass(w, r, class.ID, http.StatusCreated)
}

// UpdateClass applies a partial update. studentIds, when present, replaces
// the enrollment set.
func (h *Handler) UpdateClass(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := tuition.ClassID(chi.URLParam(r, "id"))

	var req UpdateClassRequest
	if !h.decode(w, r, &req) {
		return
	}

	class, err := h.Store.GetClass(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get class", err)
		return
	}
	if class == nil {
		writeError(w, http.StatusNotFound, "Class not found", nil)
		return
	}

	if req.Name != nil {
		class.Name = *req.Name
	}
	if req.DayOfWeek != nil {
		class.DayOfWeek = *req.DayOfWeek
	}
	startStr, endStr := class.StartTime.String(), class.EndTime.String()
	if req.StartTime != nil {
		startStr = *req.StartTime
	}
	if req.EndTime != nil {
		endStr = *req.EndTime
	}
	if class.StartTime, class.EndTime, err = parseWindow(startStr, endStr); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid class times", err)
		return
	}
	if req.StudentIDs != nil {
		class.StudentIDs = toStudentIDs(*req.StudentIDs)
	}

	if err := h.Store.SaveClass(ctx, *class); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update class", err)
		return
	}
	h.writeClass(w, r, id, http.StatusOK)
}

// DeleteClass removes a class. Sessions already held are kept.
func (h *Handler) DeleteClass(w http.ResponseWriter, r *http.Request) {
	id := tuition.ClassID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteClass(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete class", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Class deleted"})
}

// writeClass re-reads a class so the response shows the stored roster.
func (h *Handler) writeClass(w http.ResponseWriter, r *http.Request, id tuition.ClassID, status int) {
	class, err := h.Store.GetClass(r.Context(), id)
	if err != nil || class == nil {
		writeError(w, http.StatusInternalServerError, "Failed to read class", err)
		return
	}
	writeJSON(w, status, toClassDTO(*class))
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// ListSessions returns sessions filtered by date, class_id, or a
// start_date/end_date range.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := tuition.SessionFilter{ClassID: tuition.ClassID(q.Get("class_id"))}

	switch {
	case q.Get("date") != "":
		d, err := tuition.ParseDate(q.Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		filter.Range = &tuition.DateRange{Start: d, End: d}
	case q.Get("start_date") != "" || q.Get("end_date") != "":
		rng, err := parseRange(q.Get("start_date"), q.Get("end_date"))
		if err != nil {
			writeDomainError(w, "Invalid date range", err)
			return
		}
		filter.Range = &rng
	}

	sessions, err := h.Store.ListSessions(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions", err)
		return
	}

	dtos := make([]SessionDTO, len(sessions))
	for i, s := range sessions {
		dtos[i] = toSessionDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSession returns a single session.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := tuition.SessionID(chi.URLParam(r, "id"))

	session, err := h.Store.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get session", err)
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "Session not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(*session))
}

// CreateSession bootstraps a session and seeds attendance for every
// student enrolled in its class.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	date, err := tuition.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	start, err := tuition.ParseClock(req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid startTime (use HH:MM)", err)
		return
	}
	end, err := tuition.ParseClock(req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid endTime (use HH:MM)", err)
		return
	}

	res, err := h.Engine.BootstrapSessionAttendance(r.Context(), tuition.ClassID(req.ClassID), date, start, end)
	if err != nil {
		writeDomainError(w, "Failed to create session", err)
		return
	}
	sessionsBootstrapped.Inc()
	attendanceSeeded.Add(float64(len(res.Attendance)))

	writeJSON(w, http.StatusCreated, SessionWithAttendanceDTO{
		Session:    toSessionDTO(res.Session),
		Attendance: toAttendanceDTOs(res.Attendance),
	})
}

// UpdateSession changes the time window. hoursWorked is recomputed, never
// taken from the client.
func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := tuition.SessionID(chi.URLParam(r, "id"))

	var req UpdateSessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.Store.GetSession(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get session", err)
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "Session not found", nil)
		return
	}

	startStr, endStr := session.StartTime.String(), session.EndTime.String()
	if req.StartTime != nil {
		startStr = *req.StartTime
	}
	if req.EndTime != nil {
		endStr = *req.EndTime
	}
	if session.StartTime, session.EndTime, err = parseWindow(startStr, endStr); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session times", err)
		return
	}
	if session.HoursWorked, err = tuition.SessionHours(session.StartTime, session.EndTime); err != nil {
		writeDomainError(w, "Invalid session times", err)
		return
	}

	if err := h.Store.UpdateSession(ctx, *session); err != nil {
		writeDomainError(w, "Failed to update session", err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(*session))
}

// DeleteSession removes a session and its attendance.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := tuition.SessionID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteSession(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete session", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session deleted"})
}

// SeedSessionAttendance re-runs attendance seeding for an existing session.
// POST /api/sessions/{id}/attendance/seed
func (h *Handler) SeedSessionAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := tuition.SessionID(chi.URLParam(r, "id"))

	seeded, err := h.Engine.Bootstrap.Reseed(ctx, id)
	if err != nil {
		writeDomainError(w, "Failed to seed attendance", err)
		return
	}
	attendanceSeeded.Add(float64(len(seeded)))

	session, err := h.Store.GetSession(ctx, id)
	if err != nil || session == nil {
		writeError(w, http.StatusInternalServerError, "Failed to read session", err)
		return
	}
	writeJSON(w, http.StatusOK, SessionWithAttendanceDTO{
		Session:    toSessionDTO(*session),
		Attendance: toAttendanceDTOs(seeded),
	})
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// ListAttendance returns attendance filtered by session_id and/or student_id.
func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := tuition.AttendanceFilter{StudentID: tuition.StudentID(q.Get("student_id"))}
	if sid := q.Get("session_id"); sid != "" {
		filter.SessionIDs = []tuition.SessionID{tuition.SessionID(sid)}
	}

	records, err := h.Store.ListAttendance(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceDTOs(records))
}

// CreateAttendance records one attendance. A second record for the same
// (session, student) is a 409.
func (h *Handler) CreateAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateAttendanceRequest
	if !h.decode(w, r, &req) {
		return
	}
	rec, err := h.newAttendance(req)
	if err != nil {
		writeDomainError(w, "Invalid attendance", err)
		return
	}

	session, err := h.Store.GetSession(ctx, rec.SessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get session", err)
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "Session not found", nil)
		return
	}

	if err := h.Store.CreateAttendance(ctx, rec); err != nil {
		writeDomainError(w, "Failed to record attendance", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAttendanceDTO(rec))
}

// UpdateAttendance changes the status of one record.
func (h *Handler) UpdateAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := tuition.AttendanceID(chi.URLParam(r, "id"))

	var req UpdateAttendanceRequest
	if !h.decode(w, r, &req) {
		return
	}
	status, err := tuition.ParseStatus(req.Status)
	if err != nil {
		writeDomainError(w, "Invalid status", err)
		return
	}

	if err := h.Store.UpdateAttendanceStatus(ctx, id, status); err != nil {
		writeDomainError(w, "Failed to update attendance", err)
		return
	}
	rec, err := h.Store.GetAttendance(ctx, id)
	if err != nil || rec == nil {
		writeError(w, http.StatusInternalServerError, "Failed to read attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceDTO(*rec))
}

// BulkUpsertAttendance writes a JSON array of records, replacing any
// existing record with the same (session, student). All or nothing.
// POST /api/attendance/bulk
func (h *Handler) BulkUpsertAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqs []CreateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	records := make([]tuition.AttendanceRecord, len(reqs))
	for i := range reqs {
		if err := h.validate.Struct(reqs[i]); err != nil {
			writeValidationError(w, err)
			return
		}
		rec, err := h.newAttendance(reqs[i])
		if err != nil {
			writeDomainError(w, "Invalid attendance", err)
			return
		}
		records[i] = rec
	}

	written := make([]tuition.AttendanceRecord, 0, len(records))
	err := h.Store.WithTx(ctx, func(s tuition.Store) error {
		ids := make([]tuition.SessionID, len(records))
		for i, rec := range records {
			ids[i] = rec.SessionID
		}
		sessions, err := s.ListSessions(ctx, tuition.SessionFilter{IDs: ids})
		if err != nil {
			return err
		}
		known := tuition.SessionsByID(sessions)

		for _, rec := range records {
			if _, ok := known[rec.SessionID]; !ok {
				return tuition.ErrSessionNotFound
			}
			stored, err := s.UpsertAttendance(ctx, rec)
			if err != nil {
				return err
			}
			written = append(written, stored)
		}
		return nil
	})
	if err != nil {
		writeDomainError(w, "Failed to record attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceDTOs(written))
}

func (h *Handler) newAttendance(req CreateAttendanceRequest) (tuition.AttendanceRecord, error) {
	status := tuition.DefaultStatus
	if req.Status != "" {
		var err error
		if status, err = tuition.ParseStatus(req.Status); err != nil {
			return tuition.AttendanceRecord{}, err
		}
	}
	return tuition.AttendanceRecord{
		ID:        tuition.AttendanceID(uuid.NewString()),
		SessionID: tuition.SessionID(req.SessionID),
		StudentID: tuition.StudentID(req.StudentID),
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments returns payments, optionally for one student_id.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	filter := tuition.PaymentFilter{StudentID: tuition.StudentID(r.URL.Query().Get("student_id"))}

	payments, err := h.Store.ListPayments(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}

	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPayment returns a single payment.
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id := tuition.PaymentID(chi.URLParam(r, "id"))

	p, err := h.Store.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get payment", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Payment not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(*p))
}

// CreatePayment records a payment. Amounts are rounded to cents.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreatePaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Amount.IsNegative() {
		writeError(w, http.StatusBadRequest, "amount must not be negative", nil)
		return
	}
	date, err := tuition.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	st, err := h.Store.GetStudent(ctx, tuition.StudentID(req.StudentID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get student", err)
		return
	}
	if st == nil {
		writeError(w, http.StatusNotFound, "Student not found", nil)
		return
	}

	p := tuition.Payment{
		ID:        tuition.PaymentID(uuid.NewString()),
		StudentID: st.ID,
		Amount:    tuition.Round(*req.Amount),
		Date:      date,
		Notes:     req.Notes,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.SavePayment(ctx, p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentDTO(p))
}

// UpdatePayment applies a partial update.
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := tuition.PaymentID(chi.URLParam(r, "id"))

	var req UpdatePaymentRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.Store.GetPayment(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get payment", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Payment not found", nil)
		return
	}

	if req.Amount != nil {
		if req.Amount.IsNegative() {
			writeError(w, http.StatusBadRequest, "amount must not be negative", nil)
			return
		}
		p.Amount = tuition.Round(*req.Amount)
	}
	if req.Date != nil {
		if p.Date, err = tuition.ParseDate(*req.Date); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
	}
	if req.Notes != nil {
		p.Notes = *req.Notes
	}

	if err := h.Store.SavePayment(ctx, *p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update payment", err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(*p))
}

// DeletePayment removes a payment.
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id := tuition.PaymentID(chi.URLParam(r, "id"))
	if err := h.Store.DeletePayment(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete payment", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Payment deleted"})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// PayrollReport returns billable hours and earnings per student for the
// inclusive start_date..end_date range.
// GET /api/reports/payroll?start_date=2025-03-01&end_date=2025-03-31
func (h *Handler) PayrollReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.payroll(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toPayrollReportDTO(report))
}

func (h *Handler) payroll(w http.ResponseWriter, r *http.Request) (tuition.PayrollReport, bool) {
	q := r.URL.Query()
	if q.Get("start_date") == "" || q.Get("end_date") == "" {
		writeError(w, http.StatusBadRequest, "start_date and end_date are required", nil)
		return tuition.PayrollReport{}, false
	}
	rng, err := parseRange(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeDomainError(w, "Invalid date range", err)
		return tuition.PayrollReport{}, false
	}

	report, err := h.Engine.GeneratePayrollReport(r.Context(), rng.Start, rng.End)
	if err != nil {
		writeDomainError(w, "Failed to generate payroll report", err)
		return tuition.PayrollReport{}, false
	}
	reportsGenerated.WithLabelValues("payroll").Inc()
	return report, true
}

// StudentBalance returns the lifetime balance for one student.
// GET /api/reports/student-balance/{id}
func (h *Handler) StudentBalance(w http.ResponseWriter, r *http.Request) {
	id := tuition.StudentID(chi.URLParam(r, "id"))

	report, err := h.Engine.ComputeStudentBalance(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to compute balance", err)
		return
	}
	reportsGenerated.WithLabelValues("balance").Inc()
	writeJSON(w, http.StatusOK, toBalanceReportDTO(report))
}

// Dashboard returns today's summary.
// GET /api/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	students, err := h.Store.ListStudents(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list students", err)
		return
	}
	classes, err := h.Store.ListClasses(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list classes", err)
		return
	}
	sessions, err := h.Store.ListSessions(ctx, tuition.SessionFilter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions", err)
		return
	}
	payments, err := h.Store.ListPayments(ctx, tuition.PaymentFilter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}

	today := tuition.DateOf(h.Now())
	reportsGenerated.WithLabelValues("dashboard").Inc()
	writeJSON(w, http.StatusOK, toDashboardDTO(tuition.BuildDashboard(today, students, classes, sessions, payments)))
}

// =============================================================================
// HELPERS
// =============================================================================

// decode reads a JSON body into v and validates it. On failure it writes
// the 400 response and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeValidationError(w, err)
		return false
	}
	return true
}

// parseWindow parses and orders a start/end pair. Every error it returns
// is the client's.
func parseWindow(start, end string) (tuition.ClockTime, tuition.ClockTime, error) {
	s, err := tuition.ParseClock(start)
	if err != nil {
		return tuition.ClockTime{}, tuition.ClockTime{}, err
	}
	e, err := tuition.ParseClock(end)
	if err != nil {
		return tuition.ClockTime{}, tuition.ClockTime{}, err
	}
	if e.Before(s) {
		return tuition.ClockTime{}, tuition.ClockTime{}, &tuition.InvalidTimeRangeError{Start: s, End: e}
	}
	return s, e, nil
}

func parseRange(start, end string) (tuition.DateRange, error) {
	s, err := tuition.ParseDate(start)
	if err != nil {
		return tuition.DateRange{}, errors.Join(tuition.ErrInvalidDateRange, err)
	}
	e, err := tuition.ParseDate(end)
	if err != nil {
		return tuition.DateRange{}, errors.Join(tuition.ErrInvalidDateRange, err)
	}
	return tuition.NewDateRange(s, e)
}

func toStudentIDs(ids []string) []tuition.StudentID {
	out := make([]tuition.StudentID, len(ids))
	for i, id := range ids {
		out[i] = tuition.StudentID(id)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError picks the status from the error kind.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case tuition.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case tuition.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case tuition.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeValidationError(w http.ResponseWriter, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, "Invalid input", err)
		return
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Fields: fields})
}
