package service_test

import (
	"context"
	"crypto/sha256"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pingpong42/account/internal/account/domain"
	"github.com/pingpong42/account/internal/account/store"
	"github.com/pingpong42/account/internal/account/store/drivers/sqlite"
	"github.com/pingpong42/account/pkg/cryptox"
	"github.com/pingpong42/account/pkg/jwtx"
)

const testIssuer = "account-test"

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "account.db") + "?_pragma=busy_timeout(5000)"
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestCodec(t *testing.T) *jwtx.HS256 {
	t.Helper()

	secret := sha256.Sum256([]byte("service-test-signing-secret"))
	codec, err := jwtx.NewHS256(secret[:], testIssuer)
	require.NoError(t, err)
	return codec
}

func newTestSealer(t *testing.T) *cryptox.SecretBox {
	t.Helper()

	key := sha256.Sum256([]byte("service-test-sealing-key"))
	box, err := cryptox.NewSecretBox(key[:])
	require.NoError(t, err)
	return box
}

func seedUser(t *testing.T, st store.Store, id string) domain.User {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	user := domain.User{
		ID:        id,
		Name:      "user-" + id,
		Email:     "user-" + id + "@example.com",
		RoleID:    domain.RoleUser,
		IsActive:  true,
		CreatedAt: now,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), user))
	return user
}
