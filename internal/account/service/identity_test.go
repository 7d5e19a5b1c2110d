package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pingpong42/account/internal/account/domain"
	"github.com/pingpong42/account/internal/account/service"
)

func TestIdentityService_Register(t *testing.T) {
	ctx := context.Background()
	svc := &service.IdentityService{Store: newTestStore(t)}

	profile := domain.Profile{UserID: "90001", Name: "alice", Email: "alice@student.42.fr"}

	user, err := svc.Register(ctx, profile)
	require.NoError(t, err)
	require.Equal(t, "90001", user.ID)
	require.Equal(t, "alice", user.Name)
	require.Equal(t, domain.RoleUser, user.RoleID)
	require.True(t, user.IsActive)
	require.False(t, user.IsAdmin)

	_, err = svc.Register(ctx, profile)
	require.ErrorIs(t, err, service.ErrAccountExists)
}

func TestIdentityService_Register_EmptyID(t *testing.T) {
	svc := &service.IdentityService{Store: newTestStore(t)}

	_, err := svc.Register(context.Background(), domain.Profile{Name: "noid"})
	require.ErrorIs(t, err, service.ErrUnknownIdentity)
}

func TestIdentityService_Authenticate(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &service.IdentityService{Store: st}

	t.Run("unknown identity", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, domain.Profile{UserID: "404"})
		require.ErrorIs(t, err, service.ErrUnknownIdentity)
	})

	t.Run("merges fresh profile fields", func(t *testing.T) {
		seedUser(t, st, "90002")

		user, err := svc.Authenticate(ctx, domain.Profile{
			UserID: "90002",
			Image:  "https://cdn.intra.42.fr/users/alice.jpg",
		})
		require.NoError(t, err)
		require.Equal(t, "https://cdn.intra.42.fr/users/alice.jpg", user.Image)
		require.Equal(t, "user-90002", user.Name, "empty fields must not erase stored data")
		require.NotNil(t, user.LastLogin)
	})
}

func TestIdentityService_Upsert(t *testing.T) {
	ctx := context.Background()
	svc := &service.IdentityService{Store: newTestStore(t)}

	profile := domain.Profile{UserID: "90003", Name: "bob"}

	first, err := svc.Upsert(ctx, profile)
	require.NoError(t, err)
	require.Equal(t, "90003", first.ID)

	profile.Email = "bob@student.42.fr"
	second, err := svc.Upsert(ctx, profile)
	require.NoError(t, err)
	require.Equal(t, "bob@student.42.fr", second.Email)

	count, err := svc.Store.Users().CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count, "upsert must not duplicate accounts")
}

func TestIdentityService_Upsert_Concurrent(t *testing.T) {
	ctx := context.Background()
	svc := &service.IdentityService{Store: newTestStore(t)}

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Upsert(ctx, domain.Profile{UserID: "90004", Name: "carol"})
		}()
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}

	count, err := svc.Store.Users().CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count, "concurrent first logins must land on one row")
}

func TestIdentityService_GetAndDelete(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &service.IdentityService{Store: st}
	seedUser(t, st, "90005")

	user, err := svc.Get(ctx, "90005")
	require.NoError(t, err)
	require.Equal(t, "90005", user.ID)

	require.NoError(t, svc.Delete(ctx, "90005"))

	_, err = svc.Get(ctx, "90005")
	require.ErrorIs(t, err, service.ErrUnknownIdentity)

	err = svc.Delete(ctx, "90005")
	require.ErrorIs(t, err, service.ErrUnknownIdentity)
}
