package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/timeguard/timeguard-api/internal/domain/report"
	"github.com/timeguard/timeguard-api/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler interface {
	// Timesheet rows with totals by employee and by site
	Timesheet(w http.ResponseWriter, r *http.Request)

	// Same report as an XLSX download
	ExportTimesheet(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

func timesheetFilterFromQuery(r *http.Request) report.TimesheetFilter {
	return report.TimesheetFilter{
		StartDate:  r.URL.Query().Get("start_date"),
		EndDate:    r.URL.Query().Get("end_date"),
		SiteID:     queryString(r, "site_id"),
		EmployeeID: queryString(r, "employee_id"),
	}
}

// Timesheet handles GET /reports/timesheet
func (h *reportHandlerImpl) Timesheet(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.Timesheet(r.Context(), sess, timesheetFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportTimesheet handles GET /reports/timesheet/export
func (h *reportHandlerImpl) ExportTimesheet(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	filter := timesheetFilterFromQuery(r)

	// Buffer the workbook so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.reportService.ExportTimesheet(r.Context(), sess, filter, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("timesheet_%s_%s.xlsx", filter.StartDate, filter.EndDate)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write timesheet export", "error", err)
	}
}
