package metrics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Proxy outcomes recorded by ObserveProxy.
const (
	OutcomeOK               = "ok"
	OutcomeConfigIncomplete = "config_incomplete"
	OutcomeUpstreamError    = "upstream_error"
	OutcomeInvalidStructure = "invalid_response_structure"
	OutcomeMalformedJSON    = "malformed_json"
	OutcomeValidationError  = "validation_error"
	OutcomeRateLimited      = "rate_limited"
)

var (
	ProxyRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compass_proxy_requests_total",
			Help: "Total proxy requests by outcome and mode",
		},
		[]string{"outcome", "mode"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "compass_upstream_duration_seconds",
			Help:    "Duration of outbound completion calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"mode"},
	)

	ScoresComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compass_scores_computed_total",
			Help: "Total score vectors computed by scheme",
		},
		[]string{"scheme"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compass_rate_limited_total",
			Help: "Total requests rejected by the rate limiter",
		},
		[]string{"route"},
	)
)

// Mode returns the mode label for a proxy request.
func Mode(jsonMode bool) string {
	if jsonMode {
		return "json"
	}
	return "text"
}

// ObserveProxy counts one proxy request.
func ObserveProxy(outcome string, jsonMode bool) {
	ProxyRequests.WithLabelValues(outcome, Mode(jsonMode)).Inc()
}

// ObserveUpstream records the duration of one outbound call.
func ObserveUpstream(jsonMode bool, d time.Duration) {
	if d < 0 {
		d = 0
	}
	UpstreamDuration.WithLabelValues(Mode(jsonMode)).Observe(d.Seconds())
}

// IncScore counts one computed score vector.
func IncScore(scheme string) {
	ScoresComputed.WithLabelValues(scheme).Inc()
}

// IncRateLimited counts one rejected request.
func IncRateLimited(route string) {
	RateLimited.WithLabelValues(route).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusMethodNotAllowed)
			return
		}
		h.ServeHTTP(c.Writer, c.Request)
	}
}
