package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_FixedWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(2, time.Minute)
	m.now = func() time.Time { return now }
	ctx := context.Background()
	a, b := HashKey("10.0.0.1"), HashKey("10.0.0.2")

	for i := 0; i < 2; i++ {
		ok, _, err := m.Allow(ctx, a)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	now = now.Add(20 * time.Second)
	ok, retryAfter, err := m.Allow(ctx, a)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 40*time.Second, retryAfter)

	ok, _, _ = m.Allow(ctx, b)
	assert.True(t, ok, "clients are limited independently")

	now = now.Add(40 * time.Second)
	ok, _, _ = m.Allow(ctx, a)
	assert.True(t, ok, "a new window starts")
}

func TestMemory_Disabled(t *testing.T) {
	m := NewMemory(0, time.Minute)
	for i := 0; i < 100; i++ {
		ok, _, err := m.Allow(context.Background(), HashKey("x"))
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestMemory_EvictsExpiredWindows(t *testing.T) {
	now := time.Now()
	m := NewMemory(1, time.Second)
	m.now = func() time.Time { return now }

	_, _, _ = m.Allow(context.Background(), HashKey("a"))
	_, _, _ = m.Allow(context.Background(), HashKey("b"))
	now = now.Add(2 * time.Second)
	_, _, _ = m.Allow(context.Background(), HashKey("c"))

	assert.Len(t, m.clients, 1)
}

func TestHashKey_Stable(t *testing.T) {
	assert.Equal(t, HashKey("ip"), HashKey("ip"))
	assert.NotEqual(t, HashKey("ip"), HashKey("other"))
	assert.Len(t, HashKey("ip"), 32)
}
