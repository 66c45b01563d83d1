/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the domain model in package tuition from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

NUMBERS:
  Hours and money are written as JSON numbers with exactly two decimals
  (Fixed2). Requests accept decimals as JSON numbers or strings.

VALIDATION:
  Request types carry go-playground/validator tags; handlers call
  h.validate.Struct before touching the store. Decimal fields are checked
  for sign in the handlers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/tuition-tracker/tuition"
)

// Fixed2 marshals a decimal as an unquoted JSON number with two decimals.
type Fixed2 decimal.Decimal

func (f Fixed2) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(f).StringFixed(2)), nil
}

func (f *Fixed2) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*f = Fixed2(d)
	return nil
}

// Decimal returns the underlying value.
func (f Fixed2) Decimal() decimal.Decimal {
	return decimal.Decimal(f)
}

// =============================================================================
// STUDENTS
// =============================================================================

type StudentDTO struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Phone           string   `json:"phone"`
	Email           string   `json:"email"`
	HourlyRate      Fixed2   `json:"hourlyRate"`
	Active          bool     `json:"active"`
	EnrolledClasses []string `json:"enrolledClasses"`
	CreatedAt       string   `json:"createdAt,omitempty"`
}

type CreateStudentRequest struct {
	ID         string           `json:"id"`
	Name       string           `json:"name" validate:"required"`
	Phone      string           `json:"phone"`
	Email      string           `json:"email" validate:"omitempty,email"`
	HourlyRate *decimal.Decimal `json:"hourlyRate" validate:"required"`
}

// UpdateStudentRequest is a partial update; nil fields are left unchanged.
type UpdateStudentRequest struct {
	Name       *string          `json:"name" validate:"omitempty,min=1"`
	Phone      *string          `json:"phone"`
	Email      *string          `json:"email" validate:"omitempty,email"`
	HourlyRate *decimal.Decimal `json:"hourlyRate"`
	Active     *bool            `json:"active"`
}

func toStudentDTO(s tuition.Student) StudentDTO {
	classes := make([]string, len(s.EnrolledClasses))
	for i, c := range s.EnrolledClasses {
		classes[i] = string(c)
	}
	return StudentDTO{
		ID:              string(s.ID),
		Name:            s.Name,
		Phone:           s.Phone,
		Email:           s.Email,
		HourlyRate:      Fixed2(s.HourlyRate),
		Active:          s.Active,
		EnrolledClasses: classes,
		CreatedAt:       formatTime(s.CreatedAt),
	}
}

// =============================================================================
// CLASSES
// =============================================================================

type ClassDTO struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	DayOfWeek  string   `json:"dayOfWeek"`
	StartTime  string   `json:"startTime"`
	EndTime    string   `json:"endTime"`
	StudentIDs []string `json:"studentIds"`
	CreatedAt  string   `json:"createdAt,omitempty"`
}

type CreateClassRequest struct {
	ID         string   `json:"id"`
	Name       string   `json:"name" validate:"required"`
	DayOfWeek  string   `json:"dayOfWeek" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime  string   `json:"startTime" validate:"required,datetime=15:04"`
	EndTime    string   `json:"endTime" validate:"required,datetime=15:04"`
	StudentIDs []string `json:"studentIds" validate:"dive,required"`
}

// UpdateClassRequest is a partial update. A non-nil StudentIDs replaces
// the enrollment set.
type UpdateClassRequest struct {
	Name       *string   `json:"name" validate:"omitempty,min=1"`
	DayOfWeek  *string   `json:"dayOfWeek" validate:"omitempty,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime  *string   `json:"startTime" validate:"omitempty,datetime=15:04"`
	EndTime    *string   `json:"endTime" validate:"omitempty,datetime=15:04"`
	StudentIDs *[]string `json:"studentIds"`
}

func toClassDTO(c tuition.ClassSchedule) ClassDTO {
	students := make([]string, len(c.StudentIDs))
	for i, s := range c.StudentIDs {
		students[i] = string(s)
	}
	return ClassDTO{
		ID:         string(c.ID),
		Name:       c.Name,
		DayOfWeek:  c.DayOfWeek,
		StartTime:  c.StartTime.String(),
		EndTime:    c.EndTime.String(),
		StudentIDs: students,
		CreatedAt:  formatTime(c.CreatedAt),
	}
}

// =============================================================================
// SESSIONS & ATTENDANCE
// =============================================================================

type SessionDTO struct {
	ID          string `json:"id"`
	ClassID     string `json:"classId"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	HoursWorked Fixed2 `json:"hoursWorked"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// CreateSessionRequest has no hoursWorked: it is always derived.
type CreateSessionRequest struct {
	ClassID   string `json:"classId" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime   string `json:"endTime" validate:"required,datetime=15:04"`
}

type UpdateSessionRequest struct {
	StartTime *string `json:"startTime" validate:"omitempty,datetime=15:04"`
	EndTime   *string `json:"endTime" validate:"omitempty,datetime=15:04"`
}

// SessionWithAttendanceDTO is returned by bootstrap and reseed.
type SessionWithAttendanceDTO struct {
	Session    SessionDTO      `json:"session"`
	Attendance []AttendanceDTO `json:"attendance"`
}

type AttendanceDTO struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	StudentID string `json:"studentId"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type CreateAttendanceRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	StudentID string `json:"studentId" validate:"required"`
	Status    string `json:"status" validate:"omitempty,oneof=present late absent"`
}

type UpdateAttendanceRequest struct {
	Status string `json:"status" validate:"required,oneof=present late absent"`
}

func toSessionDTO(s tuition.Session) SessionDTO {
	return SessionDTO{
		ID:          string(s.ID),
		ClassID:     string(s.ClassID),
		Date:        s.Date.String(),
		StartTime:   s.StartTime.String(),
		EndTime:     s.EndTime.String(),
		HoursWorked: Fixed2(s.HoursWorked),
		CreatedAt:   formatTime(s.CreatedAt),
	}
}

func toAttendanceDTO(a tuition.AttendanceRecord) AttendanceDTO {
	return AttendanceDTO{
		ID:        string(a.ID),
		SessionID: string(a.SessionID),
		StudentID: string(a.StudentID),
		Status:    string(a.Status),
		CreatedAt: formatTime(a.CreatedAt),
	}
}

func toAttendanceDTOs(records []tuition.AttendanceRecord) []AttendanceDTO {
	dtos := make([]AttendanceDTO, len(records))
	for i, a := range records {
		dtos[i] = toAttendanceDTO(a)
	}
	return dtos
}

// =============================================================================
// PAYMENTS
// =============================================================================

type PaymentDTO struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	Amount    Fixed2 `json:"amount"`
	Date      string `json:"date"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type CreatePaymentRequest struct {
	StudentID string           `json:"studentId" validate:"required"`
	Amount    *decimal.Decimal `json:"amount" validate:"required"`
	Date      string           `json:"date" validate:"required,datetime=2006-01-02"`
	Notes     string           `json:"notes"`
}

type UpdatePaymentRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Date   *string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Notes  *string          `json:"notes"`
}

func toPaymentDTO(p tuition.Payment) PaymentDTO {
	return PaymentDTO{
		ID:        string(p.ID),
		StudentID: string(p.StudentID),
		Amount:    Fixed2(p.Amount),
		Date:      p.Date.String(),
		Notes:     p.Notes,
		CreatedAt: formatTime(p.CreatedAt),
	}
}

// =============================================================================
// REPORTS
// =============================================================================

type PayrollEntryDTO struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	Hours       Fixed2 `json:"hours"`
	HourlyRate  Fixed2 `json:"hourlyRate"`
	Earnings    Fixed2 `json:"earnings"`
}

type PayrollReportDTO struct {
	StartDate     string            `json:"startDate"`
	EndDate       string            `json:"endDate"`
	Students      []PayrollEntryDTO `json:"students"`
	TotalHours    Fixed2            `json:"totalHours"`
	TotalEarnings Fixed2            `json:"totalEarnings"`
}

type BalanceReportDTO struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	HourlyRate  Fixed2 `json:"hourlyRate"`
	TotalHours  Fixed2 `json:"totalHours"`
	TotalDue    Fixed2 `json:"totalDue"`
	TotalPaid   Fixed2 `json:"totalPaid"`
	Balance     Fixed2 `json:"balance"`
}

type DashboardDTO struct {
	Today           string       `json:"today"`
	DayOfWeek       string       `json:"dayOfWeek"`
	ActiveStudents  int          `json:"activeStudents"`
	TotalClasses    int          `json:"totalClasses"`
	TodaysClasses   []ClassDTO   `json:"todaysClasses"`
	TodaysSessions  []SessionDTO `json:"todaysSessions"`
	TotalHoursMonth Fixed2       `json:"totalHoursMonth"`
	RecentPayments  []PaymentDTO `json:"recentPayments"`
}

func toPayrollReportDTO(r tuition.PayrollReport) PayrollReportDTO {
	entries := make([]PayrollEntryDTO, len(r.Students))
	for i, e := range r.Students {
		entries[i] = PayrollEntryDTO{
			StudentID:   string(e.StudentID),
			StudentName: e.StudentName,
			Hours:       Fixed2(e.Hours),
			HourlyRate:  Fixed2(e.HourlyRate),
			Earnings:    Fixed2(e.Earnings),
		}
	}
	return PayrollReportDTO{
		StartDate:     r.Range.Start.String(),
		EndDate:       r.Range.End.String(),
		Students:      entries,
		TotalHours:    Fixed2(r.TotalHours),
		TotalEarnings: Fixed2(r.TotalEarnings),
	}
}

func toBalanceReportDTO(b tuition.BalanceReport) BalanceReportDTO {
	return BalanceReportDTO{
		StudentID:   string(b.StudentID),
		StudentName: b.StudentName,
		HourlyRate:  Fixed2(b.HourlyRate),
		TotalHours:  Fixed2(b.TotalHours),
		TotalDue:    Fixed2(b.TotalDue),
		TotalPaid:   Fixed2(b.TotalPaid),
		Balance:     Fixed2(b.Balance),
	}
}

func toDashboardDTO(d tuition.Dashboard) DashboardDTO {
	dto := DashboardDTO{
		Today:           d.Today.String(),
		DayOfWeek:       d.DayOfWeek,
		ActiveStudents:  d.ActiveStudents,
		TotalClasses:    d.TotalClasses,
		TodaysClasses:   make([]ClassDTO, len(d.TodaysClasses)),
		TodaysSessions:  make([]SessionDTO, len(d.TodaysSessions)),
		TotalHoursMonth: Fixed2(d.TotalHoursMonth),
		RecentPayments:  make([]PaymentDTO, len(d.RecentPayments)),
	}
	for i, c := range d.TodaysClasses {
		dto.TodaysClasses[i] = toClassDTO(c)
	}
	for i, s := range d.TodaysSessions {
		dto.TodaysSessions[i] = toSessionDTO(s)
	}
	for i, p := range d.RecentPayments {
		dto.RecentPayments[i] = toPaymentDTO(p)
	}
	return dto
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ID string `json:"id" validate:"required"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
