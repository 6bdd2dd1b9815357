package health

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusWithoutRedis(t *testing.T) {
	s := NewService(func() bool { return true }, nil)
	assert.Equal(t, Status{OK: true, ProxyConfigured: true}, s.Status(context.Background()))

	s = NewService(nil, nil)
	assert.False(t, s.Status(context.Background()).ProxyConfigured)
}

func TestStatusReportsRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()

	s := NewService(func() bool { return false }, client)
	got := s.Status(context.Background())
	assert.True(t, got.OK)
	assert.Equal(t, "ok", got.RateLimitStore)

	mr.Close()
	got = s.Status(context.Background())
	assert.True(t, got.OK)
	assert.Equal(t, "unavailable", got.RateLimitStore)
}
