package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountNotApproved  = errors.New("account is waiting for admin approval")
	ErrAccountRejected     = errors.New("account enrollment was rejected")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrTokenExpired        = errors.New("token has expired")
	ErrRefreshTokenRevoked = errors.New("refresh token has been revoked")
	ErrUserNotFound        = errors.New("user not found")

	ErrRefreshTokenCookieNotFound = errors.New("refresh token cookie not found")
	ErrRefreshTokenCookieEmpty    = errors.New("refresh token cookie is empty")

	// Google OAuth
	ErrGoogleAccessDeniedByUser = errors.New("google access denied by user")
	ErrGoogleEmailNotVerified   = errors.New("google email is not verified")
	ErrStateCookieEmpty         = errors.New("state cookie is empty")
	ErrStateParamEmpty          = errors.New("state parameter is empty")
	ErrStateMismatch            = errors.New("state mismatch")
	ErrCodeValueEmpty           = errors.New("code value is empty")
)
