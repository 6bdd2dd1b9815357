package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"compass-backend/internal/compass"
	"compass-backend/internal/llm"
	openai "compass-backend/internal/llm/openai"
	"compass-backend/internal/proxy"
	"compass-backend/internal/recommend"
	"compass-backend/internal/scoring"
	"compass-backend/internal/services/health"
	"compass-backend/internal/shared/config"
	"compass-backend/internal/shared/server"
	"compass-backend/internal/shared/server/middleware"
	"compass-backend/internal/shared/telemetry"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	Catalog        *compass.Catalog
	Engine         *scoring.Engine
	Redis          *redis.Client
	Limiter        middleware.Limiter
	ProxyService   *proxy.Service
	ProxyHandler   *proxy.Handler
	CompassHandler *recommend.Handler
	Health         *health.Service
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	catalog, err := buildCatalog(cfg)
	if err != nil {
		return nil, err
	}

	scheme, err := scoring.ParseScheme(string(cfg.ScoringScheme))
	if err != nil {
		return nil, fmt.Errorf("scoring engine: %w", err)
	}
	engine, err := scoring.NewEngine(scheme)
	if err != nil {
		return nil, fmt.Errorf("scoring engine: %w", err)
	}

	completer, err := buildCompleter(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		Catalog: catalog,
		Engine:  engine,
	}

	app.Redis, app.Limiter = buildLimiter(cfg)

	app.ProxyService = proxy.NewService(proxy.Settings{
		APIKey:   cfg.APIKey,
		Endpoint: cfg.APIEndpoint,
		Model:    cfg.APIModel,
	}, completer)
	app.ProxyHandler = proxy.NewHandler(app.ProxyService)
	app.CompassHandler = recommend.NewHandler(catalog, engine)

	var pinger redis.Cmdable
	if app.Redis != nil {
		pinger = app.Redis
	}
	app.Health = health.NewService(app.ProxyService.Configured, pinger)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         app.Config,
		ProxyHandler:   app.ProxyHandler,
		CompassHandler: app.CompassHandler,
		Health:         app.Health,
		Limiter:        app.Limiter,
	})

	if !app.ProxyService.Configured() {
		missing := proxy.Settings{APIKey: cfg.APIKey, Endpoint: cfg.APIEndpoint, Model: cfg.APIModel}.Missing()
		telemetry.Warn("bootstrap.proxy_unconfigured", map[string]any{"missing": strings.Join(missing, ",")})
	}

	return app, nil
}

// Close releases external connections.
func (a *App) Close() error {
	if a == nil || a.Redis == nil {
		return nil
	}
	return a.Redis.Close()
}

func buildCatalog(cfg config.Config) (*compass.Catalog, error) {
	if strings.TrimSpace(cfg.CatalogPath) == "" {
		return compass.Default()
	}
	return compass.Load(cfg.CatalogPath)
}

// buildCompleter returns nil when the upstream settings are incomplete so the
// proxy answers with a configuration error instead of failing startup.
func buildCompleter(cfg config.Config) (llm.Completer, error) {
	if !cfg.ProxyConfigured() {
		return nil, nil
	}
	client, err := openai.NewClient(cfg.APIEndpoint, cfg.APIKey, cfg.APIModel, openai.WithTimeout(cfg.APITimeout))
	if err != nil {
		return nil, err
	}
	return client, nil
}

func buildLimiter(cfg config.Config) (*redis.Client, middleware.Limiter) {
	if !cfg.RateLimitEnabled() {
		return nil, nil
	}
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil, middleware.NewRateLimiter(nil)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"addr": cfg.RedisAddr, "error": err})
	}
	return client, middleware.NewRedisRateLimiter(client)
}
