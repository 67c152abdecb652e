package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/timeguard/timeguard-api/internal/domain/invitation"
	"github.com/timeguard/timeguard-api/internal/handler/http/response"
)

type InvitationHandler interface {
	// Public endpoints used by the enrollment link
	Validate(w http.ResponseWriter, r *http.Request)
	Enroll(w http.ResponseWriter, r *http.Request)

	// Admin endpoints
	Invite(w http.ResponseWriter, r *http.Request)
	Resend(w http.ResponseWriter, r *http.Request)
	ListPendingEnrollments(w http.ResponseWriter, r *http.Request)
	ApproveEnrollment(w http.ResponseWriter, r *http.Request)
	RejectEnrollment(w http.ResponseWriter, r *http.Request)
}

type invitationHandlerImpl struct {
	invitationService invitation.InvitationService
}

func NewInvitationHandler(invitationService invitation.InvitationService) InvitationHandler {
	return &invitationHandlerImpl{
		invitationService: invitationService,
	}
}

// Validate implements InvitationHandler - public endpoint
func (h *invitationHandlerImpl) Validate(w http.ResponseWriter, r *http.Request) {
	req := invitation.ValidateRequest{
		Token: r.URL.Query().Get("token"),
		Email: r.URL.Query().Get("email"),
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.invitationService.Validate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Enroll implements InvitationHandler - public endpoint
func (h *invitationHandlerImpl) Enroll(w http.ResponseWriter, r *http.Request) {
	var req invitation.EnrollRequest
	if !decodeJSON(w, r, &req, "Enroll") {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.invitationService.Enroll(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Enrollment submitted, waiting for admin approval", result)
}

// Invite implements InvitationHandler.
func (h *invitationHandlerImpl) Invite(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req invitation.CreateRequest
	if !decodeJSON(w, r, &req, "Invite") {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.invitationService.Invite(r.Context(), sess, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Invitation sent successfully", result)
}

// Resend implements InvitationHandler.
func (h *invitationHandlerImpl) Resend(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req invitation.ResendRequest
	if !decodeJSON(w, r, &req, "ResendInvitation") {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.invitationService.Resend(r.Context(), sess, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Invitation resent successfully", result)
}

// ListPendingEnrollments implements InvitationHandler.
func (h *invitationHandlerImpl) ListPendingEnrollments(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	results, err := h.invitationService.ListPendingEnrollments(r.Context(), sess)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// ApproveEnrollment implements InvitationHandler.
func (h *invitationHandlerImpl) ApproveEnrollment(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	result, err := h.invitationService.ApproveEnrollment(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Enrollment approved", result)
}

// RejectEnrollment implements InvitationHandler.
func (h *invitationHandlerImpl) RejectEnrollment(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	result, err := h.invitationService.RejectEnrollment(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Enrollment rejected", result)
}
