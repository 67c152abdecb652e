package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/timeguard/timeguard-api/internal/domain/auth"
	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/pkg/database"
	"github.com/timeguard/timeguard-api/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	tx database.Transactor
	profile.ProfileRepository
	jwt.Service
	auth.TokenRepository
}

func NewAuthService(tx database.Transactor, profileRepository profile.ProfileRepository, jwtService jwt.Service, tokenRepository auth.TokenRepository) auth.AuthService {
	return &AuthServiceImpl{
		tx:                tx,
		ProfileRepository: profileRepository,
		Service:           jwtService,
		TokenRepository:   tokenRepository,
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := loginReq.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	p, err := a.ProfileRepository.GetByEmail(ctx, loginReq.Email)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get profile by email: %w", err)
	}

	// Google-only accounts have no password
	if p.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*p.PasswordHash), []byte(loginReq.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := checkStatus(p); err != nil {
		return auth.TokenResponse{}, err
	}

	return a.issueTokens(ctx, p, sessionTrackReq)
}

// LoginWithGoogle implements auth.AuthService. Only existing profiles may sign in;
// accounts are created through invitations.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, googleEmail string, googleID string, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	p, err := a.ProfileRepository.GetByEmail(ctx, googleEmail)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return auth.TokenResponse{}, auth.ErrUserNotFound
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get profile by email: %w", err)
	}
	if err := checkStatus(p); err != nil {
		return auth.TokenResponse{}, err
	}

	if p.GoogleID == nil {
		if err := a.ProfileRepository.LinkGoogleID(ctx, p.ID, googleID); err != nil {
			return auth.TokenResponse{}, fmt.Errorf("failed to link google account: %w", err)
		}
	} else if *p.GoogleID != googleID {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	return a.issueTokens(ctx, p, sessionTrackReq)
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.AccessTokenResponse{}, err
	}

	// 1. Verify signature, expiry and token type
	userID, err := a.Service.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	// 2. Check the stored copy for revocation
	revoked, err := a.TokenRepository.IsRefreshTokenRevoked(ctx, req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if revoked {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	// 3. Role or status may have changed since login
	p, err := a.ProfileRepository.GetByID(ctx, userID)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrUserNotFound
	}
	if err := checkStatus(p); err != nil {
		return auth.AccessTokenResponse{}, err
	}

	var resp auth.AccessTokenResponse
	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(p.Session())
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return resp, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	return a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		revoked, err := a.TokenRepository.IsRefreshTokenRevoked(txCtx, token)
		if err != nil {
			return fmt.Errorf("failed to check if refresh token is revoked: %w", err)
		}
		if revoked {
			return nil
		}
		if err := a.TokenRepository.RevokeRefreshToken(txCtx, token); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		return nil
	})
}

func (a *AuthServiceImpl) issueTokens(ctx context.Context, p profile.Profile, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var tokenResponse auth.TokenResponse

	err := a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(p.Session())
		if err != nil {
			return fmt.Errorf("failed to create access token: %w", err)
		}
		tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, err = a.Service.GenerateRefreshToken(p.ID)
		if err != nil {
			return fmt.Errorf("failed to create refresh token: %w", err)
		}

		err = a.TokenRepository.CreateRefreshToken(txCtx, p.ID, tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, sessionTrackReq)
		if err != nil {
			return fmt.Errorf("failed to save refresh token to database: %w", err)
		}
		return nil
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	return tokenResponse, nil
}

func checkStatus(p profile.Profile) error {
	switch p.RegistrationStatus {
	case profile.StatusApproved:
		return nil
	case profile.StatusRejected:
		return auth.ErrAccountRejected
	default:
		return auth.ErrAccountNotApproved
	}
}
