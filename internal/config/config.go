// Package config loads service configuration from the environment, with an
// optional YAML file overlay for deployments that prefer config files.
// Precedence is environment over file over built-in defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddr = ":8000"
	defaultGRPCPort = 50051
	defaultCacheTTL = 10 * time.Minute
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string
	HTTPAddr              string
	DBDriver              string
	DBDSN                 string
	RedisAddr             string
	CacheTTL              time.Duration
	IngestDir             string
	GRPCPort              int
	GRPCReflectionEnabled bool
}

// fileConfig mirrors the subset of settings the YAML overlay may carry.
type fileConfig struct {
	AppEnv    string `yaml:"app_env"`
	HTTPAddr  string `yaml:"http_addr"`
	DBDriver  string `yaml:"db_driver"`
	DBDSN     string `yaml:"db_dsn"`
	RedisAddr string `yaml:"redis_addr"`
	CacheTTL  string `yaml:"cache_ttl"`
	IngestDir string `yaml:"ingest_dir"`
	GRPCPort  int    `yaml:"grpc_port"`
}

// Load builds the configuration. When CONFIG_FILE names a YAML file its
// values overlay the defaults; environment variables win over both.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:    "development",
		HTTPAddr:  defaultHTTPAddr,
		DBDriver:  "sqlite3",
		DBDSN:     "./data/callsight.db",
		RedisAddr: "localhost:6379",
		CacheTTL:  defaultCacheTTL,
		GRPCPort:  defaultGRPCPort,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DBDSN = getEnv("DB_DSN", cfg.DBDSN)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.IngestDir = getEnv("INGEST_DIR", cfg.IngestDir)
	cfg.GRPCPort = getEnvInt("GRPC_PORT", cfg.GRPCPort)
	cfg.GRPCReflectionEnabled = getEnvBool("GRPC_REFLECTION_ENABLED", cfg.GRPCReflectionEnabled)

	if raw := os.Getenv("CACHE_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("CACHE_TTL: %w", err)
		}
		cfg.CacheTTL = ttl
	}

	if cfg.DBDriver != "sqlite3" && cfg.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if fc.AppEnv != "" {
		cfg.AppEnv = fc.AppEnv
	}
	if fc.HTTPAddr != "" {
		cfg.HTTPAddr = fc.HTTPAddr
	}
	if fc.DBDriver != "" {
		cfg.DBDriver = fc.DBDriver
	}
	if fc.DBDSN != "" {
		cfg.DBDSN = fc.DBDSN
	}
	if fc.RedisAddr != "" {
		cfg.RedisAddr = fc.RedisAddr
	}
	if fc.IngestDir != "" {
		cfg.IngestDir = fc.IngestDir
	}
	if fc.GRPCPort != 0 {
		cfg.GRPCPort = fc.GRPCPort
	}
	if fc.CacheTTL != "" {
		ttl, err := time.ParseDuration(fc.CacheTTL)
		if err != nil {
			return fmt.Errorf("cache_ttl: %w", err)
		}
		cfg.CacheTTL = ttl
	}
	return nil
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}
