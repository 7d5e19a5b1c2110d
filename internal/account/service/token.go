package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pingpong42/account/internal/account/domain"
	"github.com/pingpong42/account/internal/account/store"
	"github.com/pingpong42/account/pkg/jwtx"
)

var (
	// ErrTokenExpired is returned when a refresh token's lifetime has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid covers every other refresh token failure: bad
	// signature, wrong type, revoked, or its subject no longer exists.
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenService issues and rotates JWT pairs. Refresh tokens are revoked by
// blacklisting their jti until their natural expiry.
type TokenService struct {
	Codec *jwtx.HS256
	Store store.Store

	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (s *TokenService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *TokenService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// Issue mints a fresh access/refresh pair for the user. The access token
// carries the user's role for downstream authorization.
func (s *TokenService) Issue(ctx context.Context, user domain.User) (domain.TokenPair, error) {
	role, err := s.Store.Roles().GetRoleByID(ctx, user.RoleID)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("load role %d: %w", user.RoleID, err)
	}

	now := time.Now().UTC()

	access, err := s.Codec.Sign(jwtx.NewAccessClaims(user.ID, role.Name, role.ID, s.accessTTL(), s.Codec.Issuer(), now))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := s.Codec.Sign(jwtx.NewRefreshClaims(user.ID, s.refreshTTL(), s.Codec.Issuer(), now))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL().Seconds()),
	}, nil
}

// Refresh validates a refresh token and issues a new pair for its subject.
// Expired tokens return ErrTokenExpired; everything else that fails returns
// ErrTokenInvalid.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (domain.User, domain.TokenPair, error) {
	claims, err := s.verifyRefresh(ctx, refreshToken)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.TokenPair{}, ErrTokenInvalid
		}
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("load user: %w", err)
	}

	pair, err := s.Issue(ctx, user)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}
	return user, pair, nil
}

// Revoke blacklists a refresh token's jti so it can no longer be exchanged.
// Revoking an already-expired token is a no-op rather than an error.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := s.verifyRefresh(ctx, refreshToken)
	if errors.Is(err, ErrTokenExpired) {
		return nil
	}
	if err != nil {
		return err
	}

	entry := domain.BlacklistEntry{
		JTI:       claims.ID,
		UserID:    claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.TokenBlacklist().Add(ctx, entry); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (s *TokenService) verifyRefresh(ctx context.Context, raw string) (jwtx.Claims, error) {
	claims, err := s.Codec.Verify(raw)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return jwtx.Claims{}, ErrTokenExpired
		}
		return jwtx.Claims{}, ErrTokenInvalid
	}

	if claims.TokenType != jwtx.TokenTypeRefresh || claims.ID == "" || claims.ExpiresAt == nil {
		return jwtx.Claims{}, ErrTokenInvalid
	}

	revoked, err := s.Store.TokenBlacklist().Contains(ctx, claims.ID)
	if err != nil {
		return jwtx.Claims{}, fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		return jwtx.Claims{}, ErrTokenInvalid
	}

	return claims, nil
}
