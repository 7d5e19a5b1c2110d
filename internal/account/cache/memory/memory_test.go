package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pingpong42/account/internal/account/cache/memory"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := memory.New(time.Minute)
	defer m.Close()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", "v", time.Minute))

	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", got)

	require.NoError(t, m.Delete(ctx, "k"))

	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemory_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	m := memory.New(time.Minute)
	defer m.Close()

	require.NoError(t, m.Set(ctx, "ticket", "fp", 20*time.Millisecond))

	_, ok, err := m.Get(ctx, "ticket")
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	_, ok, err = m.Get(ctx, "ticket")
	require.NoError(t, err)
	require.False(t, ok, "entry should expire after its TTL")
}

func TestMemory_DeleteAbsentKey(t *testing.T) {
	m := memory.New(time.Minute)
	defer m.Close()

	require.NoError(t, m.Delete(context.Background(), "never-set"))
}
