package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/crewdeck/crewdeck/internal/service"
)

// ReportHandlers provides HTTP handlers for weekly timesheet reports.
type ReportHandlers struct {
	Svc *service.ReportService
}

// weekRef resolves the ?week=YYYY-MM-DD query param, defaulting to now. Any
// date inside the desired week selects it.
func weekRef(r *http.Request) time.Time {
	if ref := queryDate(r, "week"); ref != nil {
		return *ref
	}
	return time.Now().UTC()
}

// Weekly handles HTTP requests for the caller's weekly report.
// GET /api/reports/weekly?week=<date>.
func (h *ReportHandlers) Weekly(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	if userID == "" {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: errors.New("authentication required")})
		return
	}

	report, err := h.Svc.Weekly(r.Context(), userID, weekRef(r))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// Export handles HTTP requests for the caller's weekly report as an XLSX
// download.
// GET /api/reports/weekly/export?week=<date>.
func (h *ReportHandlers) Export(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	if userID == "" {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: errors.New("authentication required")})
		return
	}

	// Build the workbook fully before touching the response so a failure can
	// still produce a proper error status.
	ref := weekRef(r)
	var buf bytes.Buffer
	if err := h.Svc.ExportXLSX(r.Context(), userID, ref, &buf); err != nil {
		WriteAppError(w, err)
		return
	}

	filename := fmt.Sprintf("timesheet-%s.xlsx", ref.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}
