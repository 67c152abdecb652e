package response

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/timeguard/timeguard-api/internal/domain/assignment"
	"github.com/timeguard/timeguard-api/internal/domain/auth"
	"github.com/timeguard/timeguard-api/internal/domain/conflict"
	"github.com/timeguard/timeguard-api/internal/domain/invitation"
	"github.com/timeguard/timeguard-api/internal/domain/onsite"
	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/domain/report"
	"github.com/timeguard/timeguard-api/internal/domain/site"
	"github.com/timeguard/timeguard-api/internal/domain/timeentry"
	"github.com/timeguard/timeguard-api/internal/domain/variance"
	"github.com/timeguard/timeguard-api/internal/pkg/jwt"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
	"github.com/timeguard/timeguard-api/internal/pkg/storage"
	"github.com/timeguard/timeguard-api/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Typed errors carry details for the client
	var fenceErr *timeentry.GeofenceError
	if errors.As(err, &fenceErr) {
		Fail(w, http.StatusUnprocessableEntity, CodeOutsideGeofence, fenceErr.Error(), map[string]string{
			"distance":      strconv.Itoa(fenceErr.Distance),
			"radius_meters": strconv.Itoa(fenceErr.RadiusMeters),
		})
		return
	}
	var schedErr *timeentry.ScheduleConflictError
	if errors.As(err, &schedErr) {
		Fail(w, http.StatusConflict, CodeScheduleConflict, schedErr.Error(), map[string]string{
			"conflict_type": schedErr.ConflictType,
			"current_time":  schedErr.CurrentTime,
			"allowed_start": schedErr.AllowedStart,
			"allowed_end":   schedErr.AllowedEnd,
			"details":       schedErr.Details(),
		})
		return
	}
	var hoursErr *assignment.HoursConflictError
	if errors.As(err, &hoursErr) {
		Fail(w, http.StatusConflict, CodeHoursConflict, hoursErr.Error(), hoursErr.Details())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, jwt.ErrInvalidClaims), errors.Is(err, session.ErrNoSession):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrRefreshTokenCookieNotFound), errors.Is(err, auth.ErrRefreshTokenCookieEmpty):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrAccountNotApproved), errors.Is(err, auth.ErrAccountRejected):
		Forbidden(w, err.Error())
	case errors.Is(err, auth.ErrUserNotFound):
		NotFound(w, "User not found")

	// Profile domain errors
	case errors.Is(err, profile.ErrProfileNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, profile.ErrEmailExists):
		Conflict(w, err.Error())
	case errors.Is(err, profile.ErrAdminAccessRequired),
		errors.Is(err, profile.ErrManagerAccessRequired),
		errors.Is(err, profile.ErrInsufficientPermissions),
		errors.Is(err, profile.ErrCannotModifySelf):
		Forbidden(w, err.Error())
	case errors.Is(err, profile.ErrProfileNotPending):
		Conflict(w, err.Error())

	// Invitation domain errors
	case errors.Is(err, invitation.ErrInvitationNotFound), errors.Is(err, invitation.ErrNoPendingInvitation):
		NotFound(w, err.Error())
	case errors.Is(err, invitation.ErrInvitationExpired),
		errors.Is(err, invitation.ErrInvitationAlreadyUsed),
		errors.Is(err, invitation.ErrInvitationRevoked):
		Fail(w, http.StatusGone, "INVITATION_UNAVAILABLE", err.Error(), nil)
	case errors.Is(err, invitation.ErrEmailMismatch):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, invitation.ErrEmailAlreadyRegistered):
		Conflict(w, err.Error())

	// Site domain errors
	case errors.Is(err, site.ErrSiteNotFound):
		NotFound(w, "Site not found")
	case errors.Is(err, site.ErrSiteNameExists):
		Conflict(w, err.Error())
	case errors.Is(err, site.ErrSiteInactive), errors.Is(err, site.ErrSiteNotGeocoded), errors.Is(err, site.ErrInvalidManager):
		Fail(w, http.StatusUnprocessableEntity, CodeBadRequest, err.Error(), nil)
	case errors.Is(err, site.ErrGeocodeFailed):
		Fail(w, http.StatusBadGateway, CodeUnavailable, err.Error(), nil)
	case errors.Is(err, site.ErrGeocoderDisabled):
		Fail(w, http.StatusServiceUnavailable, CodeUnavailable, err.Error(), nil)

	// Assignment domain errors
	case errors.Is(err, assignment.ErrAssignmentNotFound), errors.Is(err, assignment.ErrEmployeeNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, assignment.ErrSiteNotAssigned):
		Forbidden(w, err.Error())

	// Time entry domain errors
	case errors.Is(err, timeentry.ErrLocationUnavailable):
		Fail(w, http.StatusUnprocessableEntity, CodeLocation, err.Error(), nil)
	case errors.Is(err, timeentry.ErrActiveEntryExists):
		Conflict(w, err.Error())
	case errors.Is(err, timeentry.ErrNoActiveEntry), errors.Is(err, timeentry.ErrTimeEntryNotFound):
		NotFound(w, err.Error())

	// Conflict / variance domain errors
	case errors.Is(err, conflict.ErrConflictNotFound), errors.Is(err, variance.ErrAlertNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, variance.ErrAlertAlreadyAcknowledged):
		Conflict(w, err.Error())
	case errors.Is(err, variance.ErrFutureDate):
		BadRequest(w, err.Error(), nil)

	// Onsite domain errors
	case errors.Is(err, onsite.ErrMessageNotFound), errors.Is(err, storage.ErrNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, onsite.ErrMessageAlreadyResolved):
		Conflict(w, err.Error())
	case errors.Is(err, onsite.ErrNoSiteManager):
		Fail(w, http.StatusUnprocessableEntity, CodeBadRequest, err.Error(), nil)
	case errors.Is(err, onsite.ErrInvalidPhoto), errors.Is(err, onsite.ErrPhotoTooLarge):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, onsite.ErrNotMessageRecipient):
		Forbidden(w, err.Error())

	// Report domain errors
	case errors.Is(err, report.ErrInvalidDateRange), errors.Is(err, report.ErrRangeTooLarge):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
