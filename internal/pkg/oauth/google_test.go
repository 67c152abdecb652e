package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timeguard/timeguard-api/internal/config"
	"golang.org/x/oauth2"
)

func newTestService(userInfoURL string) *GoogleServiceImpl {
	svc := NewGoogleService(config.OAuth2GoogleConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/api/v1/auth/oauth/callback/google",
		Scopes:       []string{"openid", "email"},
	}).(*GoogleServiceImpl)
	svc.userInfoURL = userInfoURL
	return svc
}

func TestState(t *testing.T) {
	svc := newTestService("")

	a, err := svc.GenerateState()
	require.NoError(t, err)
	b, err := svc.GenerateState()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NoError(t, svc.ValidateState(a, a))
	assert.ErrorIs(t, svc.ValidateState(a, b), ErrStateMismatch)
	assert.ErrorIs(t, svc.ValidateState("", ""), ErrStateMismatch)
}

func TestRedirectURL(t *testing.T) {
	u, err := url.Parse(newTestService("").RedirectURL("xyz"))
	require.NoError(t, err)

	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "xyz", u.Query().Get("state"))
	assert.Equal(t, "client", u.Query().Get("client_id"))
	assert.Equal(t, "select_account", u.Query().Get("prompt"))
}

func TestUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"g-123","email":"ann@example.com","verified_email":true,"given_name":"Ann"}`))
	}))
	defer srv.Close()

	user, err := newTestService(srv.URL).UserInfo(context.Background(), &oauth2.Token{AccessToken: "tok", TokenType: "Bearer"})

	require.NoError(t, err)
	assert.Equal(t, GoogleUser{GoogleID: "g-123", Email: "ann@example.com", VerifiedEmail: true, GivenName: "Ann"}, user)
}

func TestUserInfo_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestService(srv.URL).UserInfo(context.Background(), &oauth2.Token{AccessToken: "tok"})

	assert.Error(t, err)
}
