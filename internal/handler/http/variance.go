package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/timeguard/timeguard-api/internal/domain/variance"
	"github.com/timeguard/timeguard-api/internal/handler/http/response"
)

type VarianceHandler interface {
	Generate(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Acknowledge(w http.ResponseWriter, r *http.Request)
}

type varianceHandlerImpl struct {
	varianceService variance.VarianceService
}

func NewVarianceHandler(varianceService variance.VarianceService) VarianceHandler {
	return &varianceHandlerImpl{varianceService: varianceService}
}

// Generate implements VarianceHandler.
func (h *varianceHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req variance.GenerateRequest
	if !decodeJSON(w, r, &req, "GenerateVariance") {
		return
	}

	result, err := h.varianceService.Generate(r.Context(), sess, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Variance alerts generated", result)
}

// List implements VarianceHandler.
func (h *varianceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	filter := variance.AlertFilter{
		SiteID:       queryString(r, "site_id"),
		EmployeeID:   queryString(r, "employee_id"),
		Acknowledged: queryBool(r, "acknowledged"),
		StartDate:    queryString(r, "start_date"),
		EndDate:      queryString(r, "end_date"),
		Page:         getIntQueryParam(r, "page", 1),
		Limit:        getIntQueryParam(r, "limit", 20),
		SortBy:       r.URL.Query().Get("sort_by"),
		SortOrder:    r.URL.Query().Get("sort_order"),
	}

	results, err := h.varianceService.List(r.Context(), sess, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// Acknowledge implements VarianceHandler.
func (h *varianceHandlerImpl) Acknowledge(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	result, err := h.varianceService.Acknowledge(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Variance alert acknowledged", result)
}
