package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pingpong42/account/internal/account/service"
	"github.com/pingpong42/account/pkg/jwtx"
)

func newTokenService(t *testing.T) *service.TokenService {
	t.Helper()
	return &service.TokenService{
		Codec: newTestCodec(t),
		Store: newTestStore(t),
	}
}

func TestTokenService_IssueAndRefresh(t *testing.T) {
	ctx := context.Background()
	svc := newTokenService(t)
	user := seedUser(t, svc.Store, "80001")

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, int64(jwtx.DefaultAccessTokenTTL.Seconds()), pair.ExpiresIn)

	access, err := svc.Codec.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "80001", access.Subject)
	require.Equal(t, jwtx.TokenTypeAccess, access.TokenType)
	require.Equal(t, "user", access.Role)

	refreshed, newPair, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, "80001", refreshed.ID)
	require.NotEmpty(t, newPair.AccessToken)
	require.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)
}

func TestTokenService_Refresh_RejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	svc := newTokenService(t)
	user := seedUser(t, svc.Store, "80002")

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	_, _, err = svc.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, service.ErrTokenInvalid)
}

func TestTokenService_Refresh_Expired(t *testing.T) {
	ctx := context.Background()
	svc := newTokenService(t)
	seedUser(t, svc.Store, "80003")

	expired, err := svc.Codec.Sign(jwtx.NewRefreshClaims(
		"80003", time.Minute, testIssuer, time.Now().UTC().Add(-time.Hour)))
	require.NoError(t, err)

	_, _, err = svc.Refresh(ctx, expired)
	require.ErrorIs(t, err, service.ErrTokenExpired)
}

func TestTokenService_Refresh_Tampered(t *testing.T) {
	ctx := context.Background()
	svc := newTokenService(t)
	user := seedUser(t, svc.Store, "80004")

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	raw := []byte(pair.RefreshToken)
	if raw[len(raw)-1] == 'A' {
		raw[len(raw)-1] = 'B'
	} else {
		raw[len(raw)-1] = 'A'
	}

	_, _, err = svc.Refresh(ctx, string(raw))
	require.ErrorIs(t, err, service.ErrTokenInvalid)
}

func TestTokenService_Refresh_DeletedUser(t *testing.T) {
	ctx := context.Background()
	svc := newTokenService(t)
	user := seedUser(t, svc.Store, "80005")

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	require.NoError(t, svc.Store.Users().DeleteUser(ctx, "80005"))

	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrTokenInvalid)
}

func TestTokenService_Revoke(t *testing.T) {
	ctx := context.Background()
	svc := newTokenService(t)
	user := seedUser(t, svc.Store, "80006")

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, pair.RefreshToken))

	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrTokenInvalid, "revoked token must not refresh")

	// Revoking twice is idempotent at the store level.
	err = svc.Revoke(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrTokenInvalid)
}

func TestTokenService_Revoke_ExpiredIsNoop(t *testing.T) {
	ctx := context.Background()
	svc := newTokenService(t)

	expired, err := svc.Codec.Sign(jwtx.NewRefreshClaims(
		"80007", time.Minute, testIssuer, time.Now().UTC().Add(-time.Hour)))
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, expired))
}

func TestTokenService_Revoke_Garbage(t *testing.T) {
	svc := newTokenService(t)
	err := svc.Revoke(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, service.ErrTokenInvalid)
}
