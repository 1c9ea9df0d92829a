package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bjarke-xyz/careercode/internal/service"
)

const (
	storePostgres = "postgres"
	storeMemory   = "memory"
)

type config struct {
	Env            string
	Port           int
	MetricsPort    int
	Store          string
	DatabaseURL    string
	DBMaxConns     int
	JWTSecret      string
	SessionTTL     time.Duration
	CookieSecure   bool
	AllowedOrigins []string
}

func loadConfig(getenv func(string) string) (config, error) {
	cfg := config{
		Env:         getenv("ENV"),
		Port:        3000,
		MetricsPort: 9091,
		Store:       storePostgres,
		DatabaseURL: getenv("DATABASE_CONNECTION_POOL_URL"),
		DBMaxConns:  16,
		JWTSecret:   getenv("JWT_ACCESS_SECRET"),
		SessionTTL:  service.DefaultSessionTTL,
	}
	var err error
	if cfg.Port, err = intEnv(getenv, "PORT", cfg.Port); err != nil {
		return cfg, err
	}
	if cfg.MetricsPort, err = intEnv(getenv, "METRICS_PORT", cfg.MetricsPort); err != nil {
		return cfg, err
	}
	if cfg.DBMaxConns, err = intEnv(getenv, "DB_MAX_CONNS", cfg.DBMaxConns); err != nil {
		return cfg, err
	}
	if v := getenv("STORE"); v != "" {
		cfg.Store = strings.ToLower(v)
	}
	if cfg.Store != storePostgres && cfg.Store != storeMemory {
		return cfg, fmt.Errorf("unknown STORE %q", cfg.Store)
	}
	if cfg.Store == storePostgres && cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_CONNECTION_POOL_URL is required")
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_ACCESS_SECRET is required")
	}
	if v := getenv("SESSION_TTL"); v != "" {
		cfg.SessionTTL, err = time.ParseDuration(v)
		if err != nil || cfg.SessionTTL <= 0 {
			return cfg, fmt.Errorf("invalid SESSION_TTL %q", v)
		}
	}
	if v := getenv("COOKIE_SECURE"); v != "" {
		cfg.CookieSecure, err = strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid COOKIE_SECURE %q", v)
		}
	}
	origins := getenv("CORS_ALLOWED_ORIGINS")
	if origins == "" {
		origins = "*"
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	return cfg, nil
}

func intEnv(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %v %q", key, v)
	}
	return n, nil
}
