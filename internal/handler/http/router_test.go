package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timeguard/timeguard-api/internal/domain/assignment"
	"github.com/timeguard/timeguard-api/internal/domain/auth"
	"github.com/timeguard/timeguard-api/internal/domain/report"
	"github.com/timeguard/timeguard-api/internal/domain/timeentry"
	"github.com/timeguard/timeguard-api/internal/handler/http/response"
	"github.com/timeguard/timeguard-api/internal/pkg/jwt"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
	"github.com/timeguard/timeguard-api/internal/pkg/sse"
)

// fakeTimeEntryService records the last request and returns canned results.
type fakeTimeEntryService struct {
	timeentry.TimeEntryService

	clockInErr  error
	lastSession session.Session
	lastClockIn timeentry.ClockInRequest
	lastOut     timeentry.ClockOutRequest
	listCalled  bool
}

func (f *fakeTimeEntryService) ClockIn(ctx context.Context, sess session.Session, req timeentry.ClockInRequest) (timeentry.ClockInResponse, error) {
	f.lastSession, f.lastClockIn = sess, req
	if f.clockInErr != nil {
		return timeentry.ClockInResponse{}, f.clockInErr
	}
	return timeentry.ClockInResponse{Entry: timeentry.TimeEntryResponse{ID: "entry-1", Status: "active"}}, nil
}

func (f *fakeTimeEntryService) ClockOut(ctx context.Context, sess session.Session, req timeentry.ClockOutRequest) (timeentry.TimeEntryResponse, error) {
	f.lastSession, f.lastOut = sess, req
	return timeentry.TimeEntryResponse{ID: "entry-1", Status: "completed"}, nil
}

func (f *fakeTimeEntryService) List(ctx context.Context, sess session.Session, filter timeentry.TimeEntryFilter) (timeentry.ListTimeEntryResponse, error) {
	f.listCalled = true
	return timeentry.ListTimeEntryResponse{}, nil
}

type fakeAuthService struct {
	auth.AuthService
	loginErr error
}

func (f *fakeAuthService) Login(ctx context.Context, req auth.LoginRequest, tr auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if f.loginErr != nil {
		return auth.TokenResponse{}, f.loginErr
	}
	return auth.TokenResponse{
		AccessToken:           "access",
		AccessTokenExpiresIn:  time.Now().Add(time.Hour).Unix(),
		RefreshToken:          "refresh",
		RefreshTokenExpiresIn: time.Now().Add(24 * time.Hour).Unix(),
	}, nil
}

type fakeAssignmentService struct {
	assignment.AssignmentService
	lastSession session.Session
}

func (f *fakeAssignmentService) CalendarFeed(ctx context.Context, sess session.Session) ([]byte, error) {
	f.lastSession = sess
	return []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"), nil
}

type fakeReportService struct {
	report.ReportService
}

func (f *fakeReportService) ExportTimesheet(ctx context.Context, sess session.Session, filter report.TimesheetFilter, w io.Writer) error {
	if filter.StartDate == "" {
		return report.ErrInvalidDateRange
	}
	_, err := w.Write([]byte("PK-workbook"))
	return err
}

type testServer struct {
	router  http.Handler
	jwt     jwt.Service
	hub     *sse.Hub
	entries *fakeTimeEntryService
	assign  *fakeAssignmentService
	authSvc *fakeAuthService
}

func newTestServer(t *testing.T, ratePerMinute, burst int) *testServer {
	t.Helper()
	jwtService, err := jwt.NewJWTService("test-secret-key-for-jwt", "1h", "24h", false)
	require.NoError(t, err)

	ts := &testServer{
		jwt:     jwtService,
		hub:     sse.NewHub(),
		entries: &fakeTimeEntryService{},
		assign:  &fakeAssignmentService{},
		authSvc: &fakeAuthService{},
	}
	handlers := Handlers{
		Auth:       NewAuthHandler(jwtService, ts.authSvc, nil, "http://localhost:3000", false),
		Profile:    NewProfileHandler(nil),
		Invitation: NewInvitationHandler(nil),
		Site:       NewSiteHandler(nil),
		Assignment: NewAssignmentHandler(ts.assign),
		TimeEntry:  NewTimeEntryHandler(ts.entries),
		Conflict:   NewConflictHandler(nil),
		Variance:   NewVarianceHandler(nil),
		Onsite:     NewOnsiteHandler(nil),
		Report:     NewReportHandler(&fakeReportService{}),
		Activity:   NewActivityHandler(ts.hub, jwtService),
	}
	ts.router = NewRouter(jwtService, handlers, RouterOptions{
		Env:                "test",
		FrontendURL:        "http://localhost:3000",
		ClockRatePerMinute: ratePerMinute,
		ClockRateBurst:     burst,
	})
	return ts
}

func (ts *testServer) token(t *testing.T, role session.Role) string {
	t.Helper()
	token, _, err := ts.jwt.GenerateAccessToken(session.Session{UserID: "user-" + string(role), Email: string(role) + "@example.com", Role: role})
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, target, token string, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

const clockInBody = `{"site_id":"0190a5e2-7b6c-7d4e-8f00-000000000001","position":{"latitude":41.8781,"longitude":-87.6298,"accuracy":10}}`

func TestRouter_RequiresAccessToken(t *testing.T) {
	ts := newTestServer(t, 60, 10)

	rec := ts.do(t, http.MethodPost, "/api/v1/time-entries/clock-in", "", `{}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A refresh token is not an access token.
	refresh, _, err := ts.jwt.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	rec = ts.do(t, http.MethodPost, "/api/v1/time-entries/clock-in", refresh, `{}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClockIn_PassesSessionAndIdempotencyKey(t *testing.T) {
	ts := newTestServer(t, 60, 10)

	rec := ts.do(t, http.MethodPost, "/api/v1/time-entries/clock-in", ts.token(t, session.RoleEmployee), clockInBody,
		map[string]string{"Idempotency-Key": "key-1"})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user-employee", ts.entries.lastSession.UserID)
	assert.Equal(t, "key-1", ts.entries.lastClockIn.IdempotencyKey)
	assert.Equal(t, "0190a5e2-7b6c-7d4e-8f00-000000000001", ts.entries.lastClockIn.SiteID)

	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)
}

func TestClockIn_AcceptsEpochMillisTimestamp(t *testing.T) {
	ts := newTestServer(t, 60, 10)
	body := `{"site_id":"0190a5e2-7b6c-7d4e-8f00-000000000001","position":{"latitude":41.8781,"longitude":-87.6298,"accuracy":10,"timestamp":1773131400000}}`

	rec := ts.do(t, http.MethodPost, "/api/v1/time-entries/clock-in", ts.token(t, session.RoleEmployee), body, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, ts.entries.lastClockIn.Position)
	assert.True(t, time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC).Equal(ts.entries.lastClockIn.Position.Timestamp))
}

func TestAssignmentCalendarFeed(t *testing.T) {
	ts := newTestServer(t, 60, 10)

	rec := ts.do(t, http.MethodGet, "/api/v1/assignments/me/calendar.ics", ts.token(t, session.RoleEmployee), "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "timeguard-shifts.ics")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "BEGIN:VCALENDAR"))
	assert.Equal(t, "user-employee", ts.assign.lastSession.UserID)

	rec = ts.do(t, http.MethodGet, "/api/v1/assignments/me/calendar.ics", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClockIn_GeofenceFailure(t *testing.T) {
	ts := newTestServer(t, 60, 10)
	ts.entries.clockInErr = &timeentry.GeofenceError{Distance: 500, RadiusMeters: 50}

	rec := ts.do(t, http.MethodPost, "/api/v1/time-entries/clock-in", ts.token(t, session.RoleEmployee), clockInBody, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, response.CodeOutsideGeofence, resp.Error.Code)
	assert.Equal(t, "500", resp.Error.Details["distance"])
}

func TestClockIn_InvalidJSON(t *testing.T) {
	ts := newTestServer(t, 60, 10)

	rec := ts.do(t, http.MethodPost, "/api/v1/time-entries/clock-in", ts.token(t, session.RoleEmployee), `{`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClockIn_RateLimited(t *testing.T) {
	ts := newTestServer(t, 1, 1)
	token := ts.token(t, session.RoleEmployee)

	first := ts.do(t, http.MethodPost, "/api/v1/time-entries/clock-in", token, clockInBody, nil)
	second := ts.do(t, http.MethodPost, "/api/v1/time-entries/clock-in", token, clockInBody, nil)

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestClockOut_EmptyBody(t *testing.T) {
	ts := newTestServer(t, 60, 10)

	rec := ts.do(t, http.MethodPost, "/api/v1/time-entries/clock-out", ts.token(t, session.RoleEmployee), "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, ts.entries.lastOut.Position)
}

func TestTimeEntries_ListRequiresManager(t *testing.T) {
	ts := newTestServer(t, 60, 10)

	rec := ts.do(t, http.MethodGet, "/api/v1/time-entries", ts.token(t, session.RoleEmployee), "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, ts.entries.listCalled)

	rec = ts.do(t, http.MethodGet, "/api/v1/time-entries?status=active", ts.token(t, session.RoleManager), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ts.entries.listCalled)
}

func TestSites_CreateIsAdminOnly(t *testing.T) {
	ts := newTestServer(t, 60, 10)

	rec := ts.do(t, http.MethodPost, "/api/v1/sites", ts.token(t, session.RoleManager), `{"name":"Yard"}`, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUsers_AdminRoutes(t *testing.T) {
	ts := newTestServer(t, 60, 10)

	rec := ts.do(t, http.MethodPost, "/api/v1/users/invitations", ts.token(t, session.RoleManager), `{}`, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogin_SetsRefreshCookie(t *testing.T) {
	ts := newTestServer(t, 60, 10)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", `{"email":"ana@example.com","password":"secret123"}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "refresh_token", cookies[0].Name)
	assert.Equal(t, "refresh", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLogin_PendingAccount(t *testing.T) {
	ts := newTestServer(t, 60, 10)
	ts.authSvc.loginErr = auth.ErrAccountNotApproved

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", `{"email":"ana@example.com","password":"secret123"}`, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogin_ValidationError(t *testing.T) {
	ts := newTestServer(t, 60, 10)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", `{"email":"nope"}`, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Contains(t, resp.Error.Details, "email")
	assert.Contains(t, resp.Error.Details, "password")
}

func TestGoogleLogin_Disabled(t *testing.T) {
	ts := newTestServer(t, 60, 10)

	rec := ts.do(t, http.MethodGet, "/api/v1/auth/login/oauth/google", "", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/auth/oauth/callback/google?code=x", "", "", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "http://localhost:3000/auth/callback/google?error=google_disabled", rec.Header().Get("Location"))
}

func TestExportTimesheet(t *testing.T) {
	ts := newTestServer(t, 60, 10)

	rec := ts.do(t, http.MethodGet, "/api/v1/reports/timesheet/export?start_date=2026-03-01&end_date=2026-03-31", ts.token(t, session.RoleManager), "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "timesheet_2026-03-01_2026-03-31.xlsx")
	assert.Equal(t, "PK-workbook", rec.Body.String())
}

func TestExportTimesheet_ErrorIsJSON(t *testing.T) {
	ts := newTestServer(t, 60, 10)

	rec := ts.do(t, http.MethodGet, "/api/v1/reports/timesheet/export", ts.token(t, session.RoleManager), "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestActivityStream_RejectsAccessToken(t *testing.T) {
	ts := newTestServer(t, 60, 10)

	rec := ts.do(t, http.MethodGet, "/api/v1/activity/stream", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/activity/stream?token="+ts.token(t, session.RoleManager), "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestActivityStream_DeliversEvents(t *testing.T) {
	ts := newTestServer(t, 60, 10)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	// Fetch a stream token with the access token.
	tokenRec := ts.do(t, http.MethodGet, "/api/v1/activity/token", ts.token(t, session.RoleAdmin), "", nil)
	require.Equal(t, http.StatusOK, tokenRec.Code)
	var envelope struct {
		Data auth.SSETokenResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(tokenRec.Body).Decode(&envelope))
	require.NotEmpty(t, envelope.Data.Token)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/activity/stream?token="+envelope.Data.Token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var name, data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "":
				return name, data
			}
		}
	}

	name, _ := readEvent()
	require.Equal(t, "connected", name)

	ts.hub.PublishActivity(nil, sse.Event{Event: sse.EventClockIn, Data: map[string]string{"employee_id": "e-1"}})

	name, data := readEvent()
	assert.Equal(t, sse.EventClockIn, name)
	assert.JSONEq(t, `{"employee_id":"e-1"}`, data)
}

func TestHeartbeat(t *testing.T) {
	ts := newTestServer(t, 60, 10)

	rec := ts.do(t, http.MethodGet, "/", "", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.Equal([]byte("."), rec.Body.Bytes()))
}
