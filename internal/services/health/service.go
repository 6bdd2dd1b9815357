package health

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 2 * time.Second

// Status is the health payload.
type Status struct {
	OK              bool   `json:"ok"`
	ProxyConfigured bool   `json:"proxyConfigured"`
	RateLimitStore  string `json:"rateLimitStore,omitempty"`
}

// Service encapsulates health-related checks.
type Service struct {
	proxyConfigured func() bool
	redis           redis.Cmdable
}

// NewService constructs a new health service. redis may be nil when the rate
// limiter is in-process.
func NewService(proxyConfigured func() bool, rdb redis.Cmdable) *Service {
	if proxyConfigured == nil {
		proxyConfigured = func() bool { return false }
	}
	return &Service{proxyConfigured: proxyConfigured, redis: rdb}
}

// Status reports liveness and whether the proxy can reach the upstream API.
// A missing proxy configuration does not make the service unhealthy.
func (s *Service) Status(ctx context.Context) Status {
	out := Status{OK: true, ProxyConfigured: s.proxyConfigured()}
	if s.redis == nil {
		return out
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		out.RateLimitStore = "unavailable"
		return out
	}
	out.RateLimitStore = "ok"
	return out
}
