// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
	"github.com/carterperez-dev/templates/blog-api/internal/middleware"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// UserInfo is the slice of an account the auth flow needs.
type UserInfo struct {
	ID           int64
	Username     string
	Email        string
	FirstName    *string
	LastName     *string
	AvatarURL    *string
	IsActive     bool
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id int64) (*UserInfo, error)
	Create(ctx context.Context, u NewUser) (*UserInfo, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// RevocationList records access tokens that were logged out before they
// expired.
type RevocationList interface {
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Service struct {
	jwt          *JWTManager
	userProvider UserProvider
	revocations  RevocationList
}

func NewService(
	jwt *JWTManager,
	userProvider UserProvider,
	revocations RevocationList,
) *Service {
	return &Service{
		jwt:          jwt,
		userProvider: userProvider,
		revocations:  revocations,
	}
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*AuthResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Create(ctx, NewUser{
		Username:     req.Username,
		Email:        strings.ToLower(req.Email),
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.createAuthResponse(user)
}

// Login answers every failure the same way so callers cannot probe which
// emails are registered.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	user, err := s.userProvider.GetByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		if err := s.userProvider.UpdatePassword(ctx, user.ID, newHash); err != nil {
			slog.WarnContext(ctx, "password rehash failed",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	return s.createAuthResponse(user)
}

// Logout revokes the presented token until it would have expired anyway.
func (s *Service) Logout(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) error {
	if claims == nil {
		return fmt.Errorf("logout: %w", core.ErrUnauthorized)
	}
	return s.revocations.RevokeToken(ctx, claims.TokenID, claims.ExpiresAt)
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID int64,
	req ChangePasswordRequest,
) error {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, err := core.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return ErrInvalidCredentials
	}

	if req.NewPassword == req.CurrentPassword {
		return core.BadRequestError(
			"new password must differ from the current password",
		)
	}

	newHash, err := core.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userProvider.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

// VerifyAccessToken validates the token and rejects revoked ones and those
// of deactivated accounts. A redis outage does not lock every caller out:
// the revocation check is skipped with a warning.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if _, err := s.userProvider.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf(
				"verify token: inactive account: %w",
				core.ErrTokenInvalid,
			)
		}
		slog.ErrorContext(ctx, "token owner lookup failed",
			"user_id", claims.UserID,
			"error", err,
		)
		return nil, core.ServiceUnavailableError()
	}

	revoked, err := s.revocations.IsTokenRevoked(ctx, claims.TokenID)
	if err != nil {
		slog.WarnContext(ctx, "revocation list unavailable", "error", err)
		return claims, nil
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	return claims, nil
}

func (s *Service) createAuthResponse(user *UserInfo) (*AuthResponse, error) {
	issued, err := s.jwt.CreateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &AuthResponse{
		User:      toUserResponse(user),
		Token:     issued.Token,
		TokenType: "Bearer",
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

var _ middleware.TokenVerifier = (*Service)(nil)
