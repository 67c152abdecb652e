package http

import (
	"net/http"

	"github.com/timeguard/timeguard-api/internal/domain/conflict"
	"github.com/timeguard/timeguard-api/internal/handler/http/response"
)

type ConflictHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type conflictHandlerImpl struct {
	conflictService conflict.ConflictService
}

func NewConflictHandler(conflictService conflict.ConflictService) ConflictHandler {
	return &conflictHandlerImpl{conflictService: conflictService}
}

// List implements ConflictHandler.
func (h *conflictHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	filter := conflict.ConflictFilter{
		EmployeeID:   queryString(r, "employee_id"),
		SiteID:       queryString(r, "site_id"),
		ConflictType: queryString(r, "conflict_type"),
		StartDate:    queryString(r, "start_date"),
		EndDate:      queryString(r, "end_date"),
		Page:         getIntQueryParam(r, "page", 1),
		Limit:        getIntQueryParam(r, "limit", 20),
	}

	results, err := h.conflictService.List(r.Context(), sess, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}
