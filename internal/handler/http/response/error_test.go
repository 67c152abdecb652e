package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timeguard/timeguard-api/internal/domain/assignment"
	"github.com/timeguard/timeguard-api/internal/domain/auth"
	"github.com/timeguard/timeguard-api/internal/domain/onsite"
	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/domain/site"
	"github.com/timeguard/timeguard-api/internal/domain/timeentry"
	"github.com/timeguard/timeguard-api/internal/pkg/validator"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandleError_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", validator.ValidationErrors{{Field: "site_id", Message: "required"}}, http.StatusUnprocessableEntity, CodeValidation},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, CodeUnauthorized},
		{"not approved", auth.ErrAccountNotApproved, http.StatusForbidden, CodeForbidden},
		{"wrapped not found", fmt.Errorf("lookup: %w", site.ErrSiteNotFound), http.StatusNotFound, CodeNotFound},
		{"manager required", profile.ErrManagerAccessRequired, http.StatusForbidden, CodeForbidden},
		{"active entry", timeentry.ErrActiveEntryExists, http.StatusConflict, CodeConflict},
		{"no location", timeentry.ErrLocationUnavailable, http.StatusUnprocessableEntity, CodeLocation},
		{"not assigned", timeentry.ErrSiteNotAssigned, http.StatusForbidden, CodeForbidden},
		{"no manager", onsite.ErrNoSiteManager, http.StatusUnprocessableEntity, CodeBadRequest},
		{"geocoder off", site.ErrGeocoderDisabled, http.StatusServiceUnavailable, CodeUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestHandleError_GeofenceDetails(t *testing.T) {
	rec := httptest.NewRecorder()

	HandleError(rec, &timeentry.GeofenceError{Distance: 500, RadiusMeters: 50})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, CodeOutsideGeofence, resp.Error.Code)
	assert.Equal(t, "you are 500m away from the site, must be within 50m to clock in", resp.Error.Message)
	assert.Equal(t, "500", resp.Error.Details["distance"])
	assert.Equal(t, "50", resp.Error.Details["radius_meters"])
}

func TestHandleError_ScheduleConflict(t *testing.T) {
	rec := httptest.NewRecorder()

	HandleError(rec, &timeentry.ScheduleConflictError{ConflictType: "outside_hours", CurrentTime: "18:00", AllowedStart: "09:00", AllowedEnd: "17:00"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, CodeScheduleConflict, resp.Error.Code)
	assert.Equal(t, "18:00", resp.Error.Details["current_time"])
	assert.Equal(t, "17:00", resp.Error.Details["allowed_end"])
}

func TestHandleError_HoursConflict(t *testing.T) {
	rec := httptest.NewRecorder()

	HandleError(rec, &assignment.HoursConflictError{Warnings: []assignment.HoursWarning{
		{SiteID: "s1", SiteName: "Yard", Message: "Yard allows 09:00-17:00"},
	}})

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, CodeHoursConflict, resp.Error.Code)
	assert.Equal(t, "Yard allows 09:00-17:00", resp.Error.Details["s1"])
}
