package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Duration parses env values as "10s", "5m" or a bare number of seconds.
type Duration time.Duration

func (d *Duration) SetValue(s string) error {
	v, err := parseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }

func parseDuration(s string) (time.Duration, error) {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	if s == "" {
		return 0, errors.New("empty duration")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration must be like 10s, 5m or a number of seconds: %w", err)
	}
	return d, nil
}

type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Limits   RateLimitConfig
	Kafka    KafkaConfig
}

type AppConfig struct {
	Env      string `env:"APP_ENV" env-default:"production"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
}

type HTTPConfig struct {
	Port            string   `env:"HTTP_PORT" env-default:"4000"`
	ReadTimeout     Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout     Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	// Comma separated; "*" allows any origin.
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-default:"*" env-separator:","`
	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that sets them.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" env-default:"false"`
}

type DatabaseConfig struct {
	Driver          string   `env:"DATABASE_DRIVER" env-default:"pgx"`
	URL             string   `env:"DATABASE_URL" env-required:"true"`
	MaxOpenConns    int      `env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int      `env:"DB_MAX_IDLE_CONNS" env-default:"2"`
	ConnMaxLifetime Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
}

type AuthConfig struct {
	SecretKey string   `env:"SECRET_KEY" env-required:"true"`
	TokenTTL  Duration `env:"TOKEN_TTL" env-default:"15m"`
	// Required rejects /expenses requests that carry no bearer token.
	Required bool `env:"AUTH_REQUIRED" env-default:"false"`
}

type RateLimitConfig struct {
	// RPS of 0 disables rate limiting.
	RPS   float64 `env:"RATE_LIMIT_RPS" env-default:"5"`
	Burst int     `env:"RATE_LIMIT_BURST" env-default:"10"`
}

type KafkaConfig struct {
	// Empty disables event publishing.
	Brokers []string `env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `env:"KAFKA_TOPIC" env-default:"expense-events"`
}

// Load reads an optional .env file, then the process environment.
// Variables already set in the environment win over .env.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if strings.TrimSpace(cfg.Database.URL) == "" {
		return Config{}, errors.New("DATABASE_URL is empty")
	}
	if cfg.Auth.SecretKey == "" {
		return Config{}, errors.New("SECRET_KEY is empty")
	}
	cfg.Kafka.Brokers = compact(cfg.Kafka.Brokers)
	if cfg.Limits.RPS < 0 {
		return Config{}, errors.New("RATE_LIMIT_RPS must not be negative")
	}
	return cfg, nil
}

func compact(list []string) []string {
	var out []string
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// IsDev reports whether the service runs in a development environment.
func (c Config) IsDev() bool {
	return c.App.Env == "dev" || c.App.Env == "development"
}
