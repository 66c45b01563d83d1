/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate the database with realistic
  data for demos. Each scenario creates students, classes, sessions (through
  the same bootstrap path as POST /api/sessions), attendance changes and
  payments.

AVAILABLE SCENARIOS:
  demo:       One student at 20/hour, one Monday 09:00-10:00 class, one
              session this week, 15.00 paid. Payroll 1.00h / 20.00,
              balance 5.00.
  busy-week:  Three students, two classes, sessions across the current
              week with a late and an absent mark, a credit balance.

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create students and classes
 3. Bootstrap sessions relative to the current week
 4. Adjust attendance statuses
 5. Record payments

USAGE VIA API:
  POST /api/scenarios/load
  {"id": "demo"}

NOTE:
  Scenarios reset the database. Only use in development/demo environments.
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/warp/tuition-tracker/tuition"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "demo",
		Name:        "Demo",
		Description: "One student, one Monday class, one session this week, partial payment",
	},
	{
		ID:          "busy-week",
		Name:        "Busy Week",
		Description: "Three students across two classes with late/absent marks and an overpayment",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}

	var load func(context.Context, tuition.Date) error
	switch req.ID {
	case "demo":
		load = h.loadDemoScenario
	case "busy-week":
		load = h.loadBusyWeekScenario
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	if err := load(ctx, weekStart(tuition.DateOf(h.Now()))); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ID
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadDemoScenario(ctx context.Context, monday tuition.Date) error {
	if err := h.Store.SaveStudent(ctx, tuition.Student{
		ID:         "student-sam",
		Name:       "Sam Carter",
		Email:      "sam@example.com",
		HourlyRate: decimal.NewFromInt(20),
		Active:     true,
	}); err != nil {
		return err
	}

	if err := h.Store.SaveClass(ctx, tuition.ClassSchedule{
		ID:         "class-algebra",
		Name:       "Algebra I",
		DayOfWeek:  "Monday",
		StartTime:  tuition.MustParseClock("09:00"),
		EndTime:    tuition.MustParseClock("10:00"),
		StudentIDs: []tuition.StudentID{"student-sam"},
	}); err != nil {
		return err
	}

	if _, err := h.Engine.BootstrapSessionAttendance(ctx, "class-algebra", monday,
		tuition.MustParseClock("09:00"), tuition.MustParseClock("10:00")); err != nil {
		return err
	}

	return h.Store.SavePayment(ctx, tuition.Payment{
		ID:        "payment-sam-1",
		StudentID: "student-sam",
		Amount:    decimal.RequireFromString("15.00"),
		Date:      monday,
		Notes:     "First lesson, partial",
	})
}

func (h *Handler) loadBusyWeekScenario(ctx context.Context, monday tuition.Date) error {
	students := []tuition.Student{
		{ID: "student-ana", Name: "Ana Lopez", HourlyRate: decimal.RequireFromString("25.00"), Active: true},
		{ID: "student-ben", Name: "Ben Okafor", HourlyRate: decimal.RequireFromString("18.50"), Active: true},
		{ID: "student-cho", Name: "Cho Min", HourlyRate: decimal.RequireFromString("30.00"), Active: true},
	}
	for _, st := range students {
		if err := h.Store.SaveStudent(ctx, st); err != nil {
			return err
		}
	}

	classes := []tuition.ClassSchedule{
		{
			ID:         "class-physics",
			Name:       "Physics",
			DayOfWeek:  "Monday",
			StartTime:  tuition.MustParseClock("16:00"),
			EndTime:    tuition.MustParseClock("17:30"),
			StudentIDs: []tuition.StudentID{"student-ana", "student-ben"},
		},
		{
			ID:         "class-essay",
			Name:       "Essay Writing",
			DayOfWeek:  "Wednesday",
			StartTime:  tuition.MustParseClock("18:00"),
			EndTime:    tuition.MustParseClock("18:45"),
			StudentIDs: []tuition.StudentID{"student-ben", "student-cho"},
		},
	}
	for _, c := range classes {
		if err := h.Store.SaveClass(ctx, c); err != nil {
			return err
		}
	}

	physics, err := h.Engine.BootstrapSessionAttendance(ctx, "class-physics", monday,
		tuition.MustParseClock("16:00"), tuition.MustParseClock("17:30"))
	if err != nil {
		return err
	}
	essay, err := h.Engine.BootstrapSessionAttendance(ctx, "class-essay", monday.AddDays(2),
		tuition.MustParseClock("18:00"), tuition.MustParseClock("18:45"))
	if err != nil {
		return err
	}

	marks := []struct {
		session tuition.SessionID
		student tuition.StudentID
		status  tuition.Status
	}{
		{physics.Session.ID, "student-ben", tuition.StatusAbsent},
		{essay.Session.ID, "student-cho", tuition.StatusLate},
	}
	for _, m := range marks {
		if _, err := h.Store.UpsertAttendance(ctx, tuition.AttendanceRecord{
			SessionID: m.session,
			StudentID: m.student,
			Status:    m.status,
		}); err != nil {
			return err
		}
	}

	payments := []tuition.Payment{
		{ID: "payment-ana-1", StudentID: "student-ana", Amount: decimal.RequireFromString("20.00"), Date: monday},
		{ID: "payment-cho-1", StudentID: "student-cho", Amount: decimal.RequireFromString("50.00"), Date: monday.AddDays(1), Notes: "Prepaid"},
	}
	for _, p := range payments {
		if err := h.Store.SavePayment(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// weekStart returns the Monday on or before d.
func weekStart(d tuition.Date) tuition.Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}
