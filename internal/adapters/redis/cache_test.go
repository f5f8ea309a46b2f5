package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "hotel_ratecheck/internal/adapters/redis"
	"hotel_ratecheck/internal/domain"
)

func TestCache_RoundTripAndExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	var miss domain.CheckRun
	ok, err := c.Get(ctx, "run:latest", &miss)
	require.NoError(t, err)
	assert.False(t, ok)

	run := domain.CheckRun{
		ID:        "run-1",
		StartedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		Reports:   []domain.Report{{ReservationID: "r1", Error: "fetch failed"}},
	}
	require.NoError(t, c.Set(ctx, "run:latest", run, 60))
	assert.True(t, mr.Exists("ratecheck:run:latest"))

	var got domain.CheckRun
	ok, err = c.Get(ctx, "run:latest", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "run-1", got.ID)
	require.Len(t, got.Reports, 1)
	assert.Equal(t, "fetch failed", got.Reports[0].Error)

	mr.FastForward(61 * time.Second)
	ok, err = c.Get(ctx, "run:latest", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_Del(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, 0))
	assert.Equal(t, time.Duration(0), mr.TTL("ratecheck:k"))
	require.NoError(t, c.Del(ctx, "k"))
	assert.False(t, mr.Exists("ratecheck:k"))
}

func TestCache_CorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	require.NoError(t, mr.Set("ratecheck:bad", "{not json"))

	var v map[string]any
	ok, err := c.Get(context.Background(), "bad", &v)
	assert.False(t, ok)
	assert.Error(t, err)
}
