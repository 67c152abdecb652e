package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/timeguard/timeguard-api/internal/domain/timeentry"
	"github.com/timeguard/timeguard-api/internal/handler/http/middleware"
	"github.com/timeguard/timeguard-api/internal/handler/http/response"
)

type TimeEntryHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	GetActive(w http.ResponseWriter, r *http.Request)
	RecordLocation(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type timeEntryHandlerImpl struct {
	timeEntryService timeentry.TimeEntryService
}

func NewTimeEntryHandler(timeEntryService timeentry.TimeEntryService) TimeEntryHandler {
	return &timeEntryHandlerImpl{timeEntryService: timeEntryService}
}

// ClockIn implements TimeEntryHandler.
// position.timestamp may be an RFC 3339 string or epoch milliseconds; the same
// holds for ClockOut and RecordLocation.
func (h *timeEntryHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req timeentry.ClockInRequest
	if !decodeJSON(w, r, &req, "ClockIn") {
		return
	}
	req.IdempotencyKey = r.Header.Get(middleware.IdempotencyHeader)

	// Validate request
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	// Call service
	result, err := h.timeEntryService.ClockIn(r.Context(), sess, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.Replayed {
		response.SuccessWithMessage(w, "Clock in already recorded", result)
		return
	}
	response.Created(w, "Clock in successful", result)
}

// ClockOut implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req timeentry.ClockOutRequest
	// An empty body is a clock-out without a position.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.IdempotencyKey = r.Header.Get(middleware.IdempotencyHeader)

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timeEntryService.ClockOut(r.Context(), sess, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clock out successful", result)
}

// GetActive implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) GetActive(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	result, err := h.timeEntryService.GetActive(r.Context(), sess)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// RecordLocation implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) RecordLocation(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req timeentry.LocationSampleRequest
	if !decodeJSON(w, r, &req, "RecordLocation") {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timeEntryService.RecordLocation(r.Context(), sess, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func timeEntryFilterFromQuery(r *http.Request) timeentry.TimeEntryFilter {
	return timeentry.TimeEntryFilter{
		EmployeeID: queryString(r, "employee_id"),
		SiteID:     queryString(r, "site_id"),
		Status:     queryString(r, "status"),
		StartDate:  queryString(r, "start_date"),
		EndDate:    queryString(r, "end_date"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
		SortBy:     r.URL.Query().Get("sort_by"),
		SortOrder:  r.URL.Query().Get("sort_order"),
	}
}

// ListMine implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	filter := timeEntryFilterFromQuery(r)
	filter.EmployeeID = nil

	results, err := h.timeEntryService.ListMine(r.Context(), sess, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// List implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	results, err := h.timeEntryService.List(r.Context(), sess, timeEntryFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}
