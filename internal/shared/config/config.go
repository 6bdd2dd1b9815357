package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"compass-backend/internal/scoring"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	APIKey      string
	APIEndpoint string
	APIModel    string
	APITimeout  time.Duration

	CatalogPath   string
	StaticDir     string
	ScoringScheme scoring.SchemeName

	LogLevel  string
	LogFormat string

	ProxyRateLimitRPS   float64
	ProxyRateLimitBurst int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// ProxyConfigured reports whether all three upstream settings are present.
// Missing settings are a request-time error, not a startup failure.
func (c Config) ProxyConfigured() bool {
	return strings.TrimSpace(c.APIKey) != "" &&
		strings.TrimSpace(c.APIEndpoint) != "" &&
		strings.TrimSpace(c.APIModel) != ""
}

// RateLimitEnabled reports whether the proxy route is rate limited.
func (c Config) RateLimitEnabled() bool {
	return c.ProxyRateLimitRPS > 0 && c.ProxyRateLimitBurst > 0
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("env", "dev")
	v.SetDefault("cors_allow_origins", "http://localhost:3000")
	v.SetDefault("api_key", "")
	v.SetDefault("api_endpoint", "")
	v.SetDefault("api_model", "")
	v.SetDefault("api_timeout_seconds", 60)
	v.SetDefault("catalog_path", "")
	v.SetDefault("static_dir", "public")
	v.SetDefault("scoring_scheme", string(scoring.SchemeAdditive))
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("proxy_rate_limit_rps", 0)
	v.SetDefault("proxy_rate_limit_burst", 0)
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
}

// Load reads configuration from .env files, an optional compass.yaml and the
// environment, in increasing precedence.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("compass")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	scheme, err := scoring.ParseScheme(v.GetString("scoring_scheme"))
	if err != nil {
		return Config{}, fmt.Errorf("SCORING_SCHEME %q: %w", v.GetString("scoring_scheme"), err)
	}

	timeoutSeconds := v.GetInt("api_timeout_seconds")
	if timeoutSeconds <= 0 {
		return Config{}, fmt.Errorf("API_TIMEOUT_SECONDS must be positive, got %d", timeoutSeconds)
	}

	rps := v.GetFloat64("proxy_rate_limit_rps")
	burst := v.GetInt("proxy_rate_limit_burst")
	if rps < 0 || burst < 0 {
		return Config{}, fmt.Errorf("proxy rate limit must not be negative (rps=%v burst=%d)", rps, burst)
	}

	return Config{
		Port:                v.GetString("port"),
		Env:                 normalizeEnv(v.GetString("env")),
		CORSAllowOrigin:     splitAndTrim(v.GetString("cors_allow_origins")),
		APIKey:              strings.TrimSpace(v.GetString("api_key")),
		APIEndpoint:         strings.TrimSpace(v.GetString("api_endpoint")),
		APIModel:            strings.TrimSpace(v.GetString("api_model")),
		APITimeout:          time.Duration(timeoutSeconds) * time.Second,
		CatalogPath:         strings.TrimSpace(v.GetString("catalog_path")),
		StaticDir:           v.GetString("static_dir"),
		ScoringScheme:       scheme,
		LogLevel:            v.GetString("log_level"),
		LogFormat:           v.GetString("log_format"),
		ProxyRateLimitRPS:   rps,
		ProxyRateLimitBurst: burst,
		RedisAddr:           strings.TrimSpace(v.GetString("redis_addr")),
		RedisPassword:       v.GetString("redis_password"),
		RedisDB:             v.GetInt("redis_db"),
	}, nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
