package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/timeguard/timeguard-api/internal/domain/assignment"
	"github.com/timeguard/timeguard-api/internal/handler/http/response"
)

type AssignmentHandler interface {
	Replace(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	CalendarFeed(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type assignmentHandlerImpl struct {
	assignmentService assignment.AssignmentService
}

func NewAssignmentHandler(assignmentService assignment.AssignmentService) AssignmentHandler {
	return &assignmentHandlerImpl{assignmentService: assignmentService}
}

// Replace implements AssignmentHandler. A 409 HOURS_CONFLICT response lists the
// offending sites; the client resends with confirm set to accept them.
func (h *assignmentHandlerImpl) Replace(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req assignment.ReplaceRequest
	if !decodeJSON(w, r, &req, "ReplaceAssignments") {
		return
	}
	req.EmployeeID = chi.URLParam(r, "id")
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.assignmentService.Replace(r.Context(), sess, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Assignments saved successfully", result)
}

// ListMine implements AssignmentHandler.
func (h *assignmentHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	results, err := h.assignmentService.ListMine(r.Context(), sess)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// CalendarFeed implements AssignmentHandler. The feed is served as an .ics
// attachment for import into Google Calendar or any iCalendar client.
func (h *assignmentHandlerImpl) CalendarFeed(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	feed, err := h.assignmentService.CalendarFeed(r.Context(), sess)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="timeguard-shifts.ics"`)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(feed)
}

// List implements AssignmentHandler.
func (h *assignmentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	filter := assignment.AssignmentFilter{
		EmployeeID: queryString(r, "employee_id"),
		SiteID:     queryString(r, "site_id"),
	}
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	results, err := h.assignmentService.List(r.Context(), sess, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}
