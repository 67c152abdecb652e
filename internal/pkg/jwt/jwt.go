package jwt

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
	TypeSSE     = "sse"

	sseTokenTTL = 5 * time.Minute
)

var ErrInvalidClaims = errors.New("token claims are invalid")

type Service interface {
	GenerateAccessToken(sess session.Session) (token string, expiresAt int64, err error)
	GenerateRefreshToken(userID string) (token string, expiresAt int64, err error)
	// ParseRefreshToken validates a refresh token and returns its user ID.
	ParseRefreshToken(tokenString string) (userID string, err error)
	GenerateSSEToken(sess session.Session) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (session.Session, error)
	JWTAuth() *jwtauth.JWTAuth
	RefreshTokenCookie(token string, expiresAt int64) *http.Cookie
	ClearRefreshTokenCookie() *http.Cookie
	RevokeToken(token string)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	accessTokenExpiration  time.Duration
	refreshTokenExpiration time.Duration
	secureCookie           bool
	tokenAuth              *jwtauth.JWTAuth
	revokedTokens          map[string]int64
	mu                     sync.RWMutex
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService parses the expirations up front so token generation cannot fail on them.
func NewJWTService(secretKey string, accessTokenExpiration string, refreshTokenExpiration string, secureCookie bool) (Service, error) {
	access, err := time.ParseDuration(accessTokenExpiration)
	if err != nil {
		return nil, err
	}
	refresh, err := time.ParseDuration(refreshTokenExpiration)
	if err != nil {
		return nil, err
	}
	return &JWTService{
		accessTokenExpiration:  access,
		refreshTokenExpiration: refresh,
		secureCookie:           secureCookie,
		tokenAuth:              jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:          make(map[string]int64),
	}, nil
}

func (j *JWTService) GenerateAccessToken(sess session.Session) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpiration).Unix()

	claims := map[string]interface{}{
		"user_id": sess.UserID,
		"email":   sess.Email,
		"role":    string(sess.Role),
		"type":    TypeAccess,
		"exp":     expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func (j *JWTService) GenerateRefreshToken(userID string) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.refreshTokenExpiration).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"exp":     expiresAt,
		"type":    TypeRefresh,
		// Distinguishes tokens issued within the same second.
		"jti": uuid.NewString(),
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) ParseRefreshToken(tokenString string) (string, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}
	claims := token.PrivateClaims()
	if claims["type"] != TypeRefresh {
		return "", ErrInvalidClaims
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidClaims
	}
	return userID, nil
}

func (j *JWTService) RefreshTokenCookie(token string, expiresAt int64) *http.Cookie {
	return &http.Cookie{
		Name:     "refresh_token",
		Value:    token,
		Path:     "/api/v1/auth",
		Expires:  time.Unix(expiresAt, 0),
		HttpOnly: true,
		Secure:   j.secureCookie,
		SameSite: http.SameSiteStrictMode,
	}
}

func (j *JWTService) ClearRefreshTokenCookie() *http.Cookie {
	return &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/api/v1/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   j.secureCookie,
		SameSite: http.SameSiteStrictMode,
	}
}

// RevokeToken blocks an access token until it expires. Entries live in memory
// only; refresh tokens are revoked in the database.
func (j *JWTService) RevokeToken(token string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[token] = time.Now().Add(j.accessTokenExpiration).Unix()

	now := time.Now().Unix()
	for t, until := range j.revokedTokens {
		if until < now {
			delete(j.revokedTokens, t)
		}
	}
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(sess session.Session) (token string, expiresIn int, err error) {
	expiresAt := time.Now().Add(sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": sess.UserID,
		"email":   sess.Email,
		"role":    string(sess.Role),
		"type":    TypeSSE,
		"exp":     expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenTTL.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns the session it was issued for
func (j *JWTService) ValidateSSEToken(tokenString string) (session.Session, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return session.Session{}, err
	}

	claims := token.PrivateClaims()
	if claims["type"] != TypeSSE {
		return session.Session{}, ErrInvalidClaims
	}
	return SessionFromClaims(claims)
}

// SessionFromClaims builds a session from decoded token claims.
func SessionFromClaims(claims map[string]interface{}) (session.Session, error) {
	userID, _ := claims["user_id"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	if userID == "" || !session.ValidRole(role) {
		return session.Session{}, ErrInvalidClaims
	}
	return session.Session{UserID: userID, Email: email, Role: session.Role(role)}, nil
}
