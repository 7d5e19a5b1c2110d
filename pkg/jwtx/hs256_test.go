package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testSecret() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func TestNewHS256RejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewHS256([]byte("too-short"), "pingpong")
	require.Error(t, err)
}

func TestHS256RoundTrip(t *testing.T) {
	t.Parallel()

	codec, err := NewHS256(testSecret(), "pingpong")
	require.NoError(t, err)

	now := time.Now().UTC()
	claims := NewAccessClaims("12345", "user", 2, time.Hour, "pingpong", now)

	raw, err := codec.Sign(claims)
	require.NoError(t, err)

	got, err := codec.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "12345", got.Subject)
	require.Equal(t, TokenTypeAccess, got.TokenType)
	require.Equal(t, "user", got.Role)
	require.Equal(t, int64(2), got.RoleID)
	require.NotEmpty(t, got.ID, "jti should be set")
}

func TestHS256RefreshClaims(t *testing.T) {
	t.Parallel()

	codec, err := NewHS256(testSecret(), "pingpong")
	require.NoError(t, err)

	raw, err := codec.Sign(NewRefreshClaims("12345", time.Hour, "pingpong", time.Now().UTC()))
	require.NoError(t, err)

	got, err := codec.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, TokenTypeRefresh, got.TokenType)
	require.Empty(t, got.Role)
}

func TestHS256RejectsExpired(t *testing.T) {
	t.Parallel()

	codec, err := NewHS256(testSecret(), "pingpong")
	require.NoError(t, err)

	past := time.Now().UTC().Add(-2 * time.Hour)
	raw, err := codec.Sign(NewRefreshClaims("12345", time.Hour, "pingpong", past))
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, ErrExpired)
}

func TestHS256RejectsTampered(t *testing.T) {
	t.Parallel()

	codec, err := NewHS256(testSecret(), "pingpong")
	require.NoError(t, err)

	raw, err := codec.Sign(NewAccessClaims("12345", "user", 2, time.Hour, "pingpong", time.Now().UTC()))
	require.NoError(t, err)

	// Flip a character in the signature segment.
	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	forged := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = codec.Verify(forged)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestHS256RejectsWrongSecret(t *testing.T) {
	t.Parallel()

	codec, err := NewHS256(testSecret(), "pingpong")
	require.NoError(t, err)
	other, err := NewHS256([]byte("ffffffffffffffffffffffffffffffff"), "pingpong")
	require.NoError(t, err)

	raw, err := other.Sign(NewAccessClaims("12345", "user", 2, time.Hour, "pingpong", time.Now().UTC()))
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestHS256RejectsMalformed(t *testing.T) {
	t.Parallel()

	codec, err := NewHS256(testSecret(), "pingpong")
	require.NoError(t, err)

	_, err = codec.Verify("not-a-jwt")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestHS256RejectsIssuerMismatch(t *testing.T) {
	t.Parallel()

	signer, err := NewHS256(testSecret(), "someone-else")
	require.NoError(t, err)
	codec, err := NewHS256(testSecret(), "pingpong")
	require.NoError(t, err)

	raw, err := signer.Sign(NewAccessClaims("12345", "user", 2, time.Hour, "someone-else", time.Now().UTC()))
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, ErrIssuer)
}
