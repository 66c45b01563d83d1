package api

import (
	"fmt"
	"net/http"

	"github.com/warp/tuition-tracker/tuition"
	"github.com/xuri/excelize/v2"
)

const (
	payrollSheet  = "Payroll"
	sessionsSheet = "Sessions"
)

// ExportPayroll streams the payroll report for start_date..end_date as an
// xlsx workbook: one sheet of per-student lines and totals, one sheet of
// the sessions in range with their attendance counts.
// GET /api/reports/payroll/export?start_date=2025-03-01&end_date=2025-03-31
func (h *Handler) ExportPayroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, ok := h.payroll(w, r)
	if !ok {
		return
	}

	rng := report.Range
	sessions, err := h.Store.ListSessions(ctx, tuition.SessionFilter{Range: &rng})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions", err)
		return
	}
	var records []tuition.AttendanceRecord
	if len(sessions) > 0 {
		records, err = h.Store.ListAttendance(ctx, tuition.AttendanceFilter{SessionIDs: tuition.SessionIDs(sessions)})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list attendance", err)
			return
		}
	}

	f, err := buildPayrollWorkbook(report, sessions, tuition.GroupAttendanceBySession(records))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build workbook", err)
		return
	}
	defer f.Close()

	fileName := fmt.Sprintf("payroll_%s_%s.xlsx", rng.Start, rng.End)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
	if err := f.Write(w); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to write Excel file", err)
	}
}

func buildPayrollWorkbook(report tuition.PayrollReport, sessions []tuition.Session, attendance map[tuition.SessionID][]tuition.AttendanceRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", payrollSheet); err != nil {
		f.Close()
		return nil, err
	}

	rows := [][]any{{"Student ID", "Student", "Hours", "Hourly Rate", "Earnings"}}
	for _, e := range report.Students {
		rows = append(rows, []any{
			string(e.StudentID),
			e.StudentName,
			e.Hours.InexactFloat64(),
			e.HourlyRate.InexactFloat64(),
			e.Earnings.InexactFloat64(),
		})
	}
	rows = append(rows, []any{
		"", "Total", report.TotalHours.InexactFloat64(), "", report.TotalEarnings.InexactFloat64(),
	})
	if err := writeRows(f, payrollSheet, rows); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(sessionsSheet); err != nil {
		f.Close()
		return nil, err
	}
	rows = [][]any{{"Date", "Class ID", "Start", "End", "Hours", "Present", "Late", "Absent"}}
	for _, s := range sessions {
		counts := make(map[tuition.Status]int)
		for _, a := range attendance[s.ID] {
			counts[a.Status]++
		}
		rows = append(rows, []any{
			s.Date.String(),
			string(s.ClassID),
			s.StartTime.String(),
			s.EndTime.String(),
			s.HoursWorked.InexactFloat64(),
			counts[tuition.StatusPresent],
			counts[tuition.StatusLate],
			counts[tuition.StatusAbsent],
		})
	}
	if err := writeRows(f, sessionsSheet, rows); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
