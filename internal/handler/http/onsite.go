package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/timeguard/timeguard-api/internal/domain/onsite"
	"github.com/timeguard/timeguard-api/internal/handler/http/response"
)

type OnsiteHandler interface {
	UploadPhoto(w http.ResponseWriter, r *http.Request)
	ListPhotos(w http.ResponseWriter, r *http.Request)
	SendMessage(w http.ResponseWriter, r *http.Request)
	ListMessages(w http.ResponseWriter, r *http.Request)
	ResolveMessage(w http.ResponseWriter, r *http.Request)
}

type onsiteHandlerImpl struct {
	onsiteService onsite.OnsiteService
}

func NewOnsiteHandler(onsiteService onsite.OnsiteService) OnsiteHandler {
	return &onsiteHandlerImpl{onsiteService: onsiteService}
}

// formFloat parses an optional multipart float field.
func formFloat(r *http.Request, key string) (*float64, bool) {
	val := r.FormValue(key)
	if val == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil, false
	}
	return &f, true
}

// UploadPhoto implements OnsiteHandler.
func (h *onsiteHandlerImpl) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	// Parse multipart form (max 10MB plus room for the text fields)
	r.Body = http.MaxBytesReader(w, r.Body, onsite.MaxPhotoSize+(1<<20))
	if err := r.ParseMultipartForm(onsite.MaxPhotoSize); err != nil {
		slog.Warn("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, fileHeader, err := r.FormFile("photo")
	if err != nil {
		if err == http.ErrMissingFile {
			response.BadRequest(w, "Site photo is required", nil)
			return
		}
		slog.Warn("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	lat, okLat := formFloat(r, "latitude")
	lon, okLon := formFloat(r, "longitude")
	if !okLat || !okLon {
		response.BadRequest(w, "latitude and longitude must be numbers", nil)
		return
	}

	req := onsite.UploadPhotoRequest{
		SiteID:    chi.URLParam(r, "id"),
		Caption:   r.FormValue("caption"),
		Filename:  fileHeader.Filename,
		Size:      fileHeader.Size,
		File:      file,
		Latitude:  lat,
		Longitude: lon,
	}

	result, err := h.onsiteService.UploadPhoto(r.Context(), sess, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Photo uploaded successfully", result)
}

// ListPhotos implements OnsiteHandler.
func (h *onsiteHandlerImpl) ListPhotos(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	results, err := h.onsiteService.ListPhotos(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// SendMessage implements OnsiteHandler.
func (h *onsiteHandlerImpl) SendMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req onsite.SendMessageRequest
	if !decodeJSON(w, r, &req, "SendMessage") {
		return
	}
	req.SiteID = chi.URLParam(r, "id")

	result, err := h.onsiteService.SendMessage(r.Context(), sess, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Message sent to site manager", result)
}

// ListMessages implements OnsiteHandler.
func (h *onsiteHandlerImpl) ListMessages(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	filter := onsite.MessageFilter{
		SiteID: queryString(r, "site_id"),
		Status: queryString(r, "status"),
	}

	results, err := h.onsiteService.ListMessages(r.Context(), sess, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// ResolveMessage implements OnsiteHandler.
func (h *onsiteHandlerImpl) ResolveMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	result, err := h.onsiteService.ResolveMessage(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Message resolved", result)
}
