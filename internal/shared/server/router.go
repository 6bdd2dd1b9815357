package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"compass-backend/internal/services/health"
	"compass-backend/internal/shared/config"
	"compass-backend/internal/shared/metrics"
	"compass-backend/internal/shared/server/middleware"
	"compass-backend/internal/shared/server/respond"
)

const proxyRateLimitGroup = "PROXY"

// RouteRegistrar mounts a feature's routes on a group.
type RouteRegistrar interface {
	RegisterRoutes(r gin.IRoutes)
}

// RouterDeps are the handlers and services the router mounts.
type RouterDeps struct {
	Config         config.Config
	ProxyHandler   RouteRegistrar
	CompassHandler RouteRegistrar
	Health         *health.Service
	// Limiter backs the proxy rate limit. Nil means in-process buckets.
	Limiter middleware.Limiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	apiRoot := r.Group("/api")
	if deps.Config.RateLimitEnabled() {
		apiRoot.Use(middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: "DEFAULT",
			GroupFor: func(c *gin.Context) string {
				if c.FullPath() == "/api/proxy" {
					return proxyRateLimitGroup
				}
				return "DEFAULT"
			},
			Limiter: deps.Limiter,
			Rules: map[string]middleware.RateLimitRule{
				proxyRateLimitGroup: {
					Rate:  deps.Config.ProxyRateLimitRPS,
					Burst: deps.Config.ProxyRateLimitBurst,
				},
			},
		}))
	}
	if deps.ProxyHandler != nil {
		deps.ProxyHandler.RegisterRoutes(apiRoot)
	}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, health.Status{OK: true})
			return
		}
		respond.JSON(c, http.StatusOK, deps.Health.Status(c.Request.Context()))
	})
	if deps.CompassHandler != nil {
		deps.CompassHandler.RegisterRoutes(api)
	}

	r.NoRoute(staticHandler(deps.Config.StaticDir))

	return r
}

// staticHandler serves files from dir and falls back to index.html for
// unknown GET paths outside /api.
func staticHandler(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqPath := c.Request.URL.Path
		if strings.HasPrefix(reqPath, "/api/") || reqPath == "/api" {
			respond.Error(c, http.StatusNotFound, "not_found", "Not found", nil)
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			respond.Error(c, http.StatusNotFound, "not_found", "Not found", nil)
			return
		}
		if strings.TrimSpace(dir) == "" {
			respond.Error(c, http.StatusNotFound, "not_found", "Not found", nil)
			return
		}

		clean := path.Clean("/" + reqPath)
		candidate := filepath.Join(dir, filepath.FromSlash(clean))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			c.File(candidate)
			return
		}
		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err == nil {
			c.File(index)
			return
		}
		respond.Error(c, http.StatusNotFound, "not_found", "Not found", nil)
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":3000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
