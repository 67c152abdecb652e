package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/pkg/idempotency"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
	"golang.org/x/time/rate"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write([]byte(`{"ok":true}`))
})

func requestAs(method, target string, role session.Role) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if role == "" {
		return req
	}
	sess := session.Session{UserID: "u-1", Email: "u@example.com", Role: role}
	return req.WithContext(session.WithSession(req.Context(), sess))
}

func TestRequireManager(t *testing.T) {
	tests := []struct {
		role   session.Role
		status int
	}{
		{session.RoleAdmin, http.StatusCreated},
		{session.RoleManager, http.StatusCreated},
		{session.RoleEmployee, http.StatusForbidden},
		{"", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			rec := httptest.NewRecorder()
			RequireManager(okHandler).ServeHTTP(rec, requestAs(http.MethodGet, "/", tt.role))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestAdminOnly(t *testing.T) {
	rec := httptest.NewRecorder()
	AdminOnly(okHandler).ServeHTTP(rec, requestAs(http.MethodGet, "/", session.RoleManager))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	AdminOnly(okHandler).ServeHTTP(rec, requestAs(http.MethodGet, "/", session.RoleAdmin))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRequirePermission(t *testing.T) {
	h := RequirePermission(profile.PermissionSiteManage)(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestAs(http.MethodPost, "/", session.RoleManager))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestAs(http.MethodPost, "/", session.RoleAdmin))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUserRateLimiter(t *testing.T) {
	limiter := NewUserRateLimiter(rate.Every(time.Hour), 2)
	h := limiter.Limit(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestAs(http.MethodPost, "/clock-in", session.RoleEmployee))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)

	// Buckets are per user.
	other := httptest.NewRequest(http.MethodPost, "/clock-in", nil)
	other = other.WithContext(session.WithSession(other.Context(), session.Session{UserID: "u-2", Role: session.RoleEmployee}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestIdempotency_PassThrough(t *testing.T) {
	db, mock := redismock.NewClientMock()
	h := Idempotency(idempotency.NewStore(db, time.Hour))(okHandler)

	// No header, nothing touches Redis.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestAs(http.MethodPost, "/clock-in", session.RoleEmployee))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())

	// Nil store is a no-op.
	req := requestAs(http.MethodPost, "/clock-in", session.RoleEmployee)
	req.Header.Set(IdempotencyHeader, "abc")
	rec = httptest.NewRecorder()
	Idempotency(nil)(okHandler).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestIdempotency_StoresFirstResponse(t *testing.T) {
	db, mock := redismock.NewClientMock()
	h := Idempotency(idempotency.NewStore(db, time.Hour))(okHandler)

	key := idempotency.Key("/clock-in", "u-1", "abc")
	stored, err := json.Marshal(idempotency.Response{Status: http.StatusCreated, ContentType: "application/json", Body: []byte(`{"ok":true}`)})
	require.NoError(t, err)

	mock.ExpectGet(key).RedisNil()
	mock.ExpectSetNX(key+":lock", "locked", 30*time.Second).SetVal(true)
	mock.ExpectSet(key, stored, time.Hour).SetVal("OK")
	mock.ExpectDel(key + ":lock").SetVal(1)

	req := requestAs(http.MethodPost, "/clock-in", session.RoleEmployee)
	req.Header.Set(IdempotencyHeader, "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	db, mock := redismock.NewClientMock()
	calls := 0
	h := Idempotency(idempotency.NewStore(db, time.Hour))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	key := idempotency.Key("/clock-in", "u-1", "abc")
	stored, _ := json.Marshal(idempotency.Response{Status: http.StatusCreated, ContentType: "application/json", Body: []byte(`{"ok":true}`)})
	mock.ExpectGet(key).SetVal(string(stored))

	req := requestAs(http.MethodPost, "/clock-in", session.RoleEmployee)
	req.Header.Set(IdempotencyHeader, "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, 0, calls)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestIdempotency_InFlight(t *testing.T) {
	db, mock := redismock.NewClientMock()
	h := Idempotency(idempotency.NewStore(db, time.Hour))(okHandler)

	key := idempotency.Key("/clock-in", "u-1", "abc")
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSetNX(key+":lock", "locked", 30*time.Second).SetVal(false)

	req := requestAs(http.MethodPost, "/clock-in", session.RoleEmployee)
	req.Header.Set(IdempotencyHeader, "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestIdempotency_FailureReleasesLock(t *testing.T) {
	db, mock := redismock.NewClientMock()
	h := Idempotency(idempotency.NewStore(db, time.Hour))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	key := idempotency.Key("/clock-in", "u-1", "abc")
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSetNX(key+":lock", "locked", 30*time.Second).SetVal(true)
	mock.ExpectDel(key + ":lock").SetVal(1)

	req := requestAs(http.MethodPost, "/clock-in", session.RoleEmployee)
	req.Header.Set(IdempotencyHeader, "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
