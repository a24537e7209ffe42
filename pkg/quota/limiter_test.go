package quota

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter(t *testing.T) {
	l := NewMemoryLimiter(2)
	ctx := context.Background()

	for i, want := range []bool{true, true, false, false} {
		ok, err := l.Consume(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "call %d", i+1)
	}

	ok, err := l.Consume(ctx, "user-2")
	require.NoError(t, err)
	assert.True(t, ok, "keys are counted separately")
}

func TestMemoryLimiter_ResetsNextDay(t *testing.T) {
	l := NewMemoryLimiter(1)
	ctx := context.Background()
	day := time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC)
	l.now = func() time.Time { return day }

	ok, _ := l.Consume(ctx, "u")
	assert.True(t, ok)
	ok, _ = l.Consume(ctx, "u")
	assert.False(t, ok)

	day = day.Add(2 * time.Minute)
	ok, _ = l.Consume(ctx, "u")
	assert.True(t, ok)
}

func TestDayKey(t *testing.T) {
	at := time.Date(2025, 3, 1, 1, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))
	assert.Equal(t, "quota:abc:2025-02-28", dayKey("abc", at))
}

func TestMemoryLimiter_Refund(t *testing.T) {
	l := NewMemoryLimiter(1)
	ctx := context.Background()

	require.NoError(t, l.Refund(ctx, "u"), "refund without usage is a no-op")

	ok, _ := l.Consume(ctx, "u")
	assert.True(t, ok)
	require.NoError(t, l.Refund(ctx, "u"))

	ok, _ = l.Consume(ctx, "u")
	assert.True(t, ok)
	ok, _ = l.Consume(ctx, "u")
	assert.False(t, ok)
}
