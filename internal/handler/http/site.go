package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/timeguard/timeguard-api/internal/domain/site"
	"github.com/timeguard/timeguard-api/internal/handler/http/response"
)

type SiteHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Geocode(w http.ResponseWriter, r *http.Request)
}

type siteHandlerImpl struct {
	siteService site.SiteService
}

func NewSiteHandler(siteService site.SiteService) SiteHandler {
	return &siteHandlerImpl{siteService: siteService}
}

// Create implements SiteHandler.
func (h *siteHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req site.CreateSiteRequest
	if !decodeJSON(w, r, &req, "CreateSite") {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.siteService.Create(r.Context(), sess, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Site created successfully", result)
}

// Update implements SiteHandler.
func (h *siteHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req site.UpdateSiteRequest
	if !decodeJSON(w, r, &req, "UpdateSite") {
		return
	}
	req.ID = chi.URLParam(r, "id")
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.siteService.Update(r.Context(), sess, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Site updated successfully", result)
}

// Get implements SiteHandler.
func (h *siteHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	result, err := h.siteService.Get(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements SiteHandler.
func (h *siteHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	filter := site.SiteFilter{
		IsActive:  queryBool(r, "is_active"),
		ManagerID: queryString(r, "manager_id"),
		Search:    queryString(r, "search"),
	}

	results, err := h.siteService.List(r.Context(), sess, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// Delete implements SiteHandler.
func (h *siteHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	if err := h.siteService.Delete(r.Context(), sess, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Site deleted successfully", nil)
}

// Geocode implements SiteHandler.
func (h *siteHandlerImpl) Geocode(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req site.GeocodeRequest
	if !decodeJSON(w, r, &req, "Geocode") {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.siteService.Geocode(r.Context(), sess, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
