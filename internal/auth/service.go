package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anacreonhq/anacreon-backend/internal/users"
	"github.com/anacreonhq/anacreon-backend/pkg/auth"
	"github.com/anacreonhq/anacreon-backend/pkg/config"
	"github.com/anacreonhq/anacreon-backend/pkg/errors"
	"github.com/anacreonhq/anacreon-backend/pkg/redis"
	"github.com/anacreonhq/anacreon-backend/pkg/security"
)

// TokenPair is the credential set issued on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Service defines session operations: credential login, token refresh, and
// revocation. Refresh tokens are opaque and stored server-side in redis.
type Service interface {
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, userID uuid.UUID, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	users users.Service
	cache *redis.Client
	jwt   config.JWTConfig
}

// NewService wires an auth service with its dependencies.
func NewService(userSvc users.Service, cache *redis.Client, jwtCfg config.JWTConfig) (Service, error) {
	if userSvc == nil {
		return nil, fmt.Errorf("user service required")
	}
	if cache == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &service{users: userSvc, cache: cache, jwt: jwtCfg}, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if appErr := errors.As(err); appErr != nil && appErr.Code() == errors.CodeNotFound {
			return nil, errors.New(errors.CodeUnauthorized, "invalid credentials")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, errors.New(errors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to verify password")
	}
	if !ok {
		return nil, errors.New(errors.CodeUnauthorized, "invalid credentials")
	}
	return s.issueTokens(ctx, user.ID, user.IsStaff)
}

// Refresh rotates the token pair when the presented refresh token matches the
// stored one. A mismatch revokes nothing but issues nothing either.
func (s *service) Refresh(ctx context.Context, userID uuid.UUID, refreshToken string) (*TokenPair, error) {
	if userID == uuid.Nil || refreshToken == "" {
		return nil, errors.New(errors.CodeUnauthorized, "invalid refresh token")
	}
	stored, err := s.cache.GetRefreshToken(ctx, userID.String())
	if err != nil {
		return nil, errors.New(errors.CodeUnauthorized, "invalid refresh token")
	}
	if stored != refreshToken {
		return nil, errors.New(errors.CodeUnauthorized, "invalid refresh token")
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errors.New(errors.CodeUnauthorized, "invalid refresh token")
	}
	return s.issueTokens(ctx, user.ID, user.IsStaff)
}

func (s *service) Logout(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return errors.New(errors.CodeValidation, "user id is required")
	}
	if err := s.cache.RevokeRefreshToken(ctx, userID.String()); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "failed to revoke refresh token")
	}
	return nil
}

func (s *service) issueTokens(ctx context.Context, userID uuid.UUID, isStaff bool) (*TokenPair, error) {
	now := time.Now().UTC()
	access, err := auth.MintAccessToken(s.jwt, now, auth.AccessTokenPayload{
		UserID:  userID,
		IsStaff: isStaff,
		JTI:     uuid.NewString(),
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to mint access token")
	}

	refresh := uuid.NewString()
	if err := s.cache.StoreRefreshToken(ctx, userID.String(), refresh, s.jwt.RefreshTokenTTL()); err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "failed to store refresh token")
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.jwt.ExpirationMinutes * 60,
	}, nil
}
