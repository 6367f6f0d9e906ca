package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "HTTP_ADDR", "DB_DRIVER", "DB_DSN", "REDIS_ADDR",
		"CACHE_TTL", "INGEST_DIR", "GRPC_PORT", "GRPC_REFLECTION_ENABLED",
		"CONFIG_FILE",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, "./data/callsight.db", cfg.DBDSN)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Empty(t, cfg.IngestDir)
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.False(t, cfg.GRPCReflectionEnabled)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://insights:pw@db/insights?sslmode=disable")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("INGEST_DIR", "/var/spool/calls")
	t.Setenv("GRPC_PORT", "6000")
	t.Setenv("GRPC_REFLECTION_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, "/var/spool/calls", cfg.IngestDir)
	assert.Equal(t, 6000, cfg.GRPCPort)
	assert.True(t, cfg.GRPCReflectionEnabled)
}

func TestLoadInvalidValues(t *testing.T) {
	t.Run("bad cache ttl", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CACHE_TTL", "soon")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unsupported driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DB_DRIVER", "oracle")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("non-numeric port falls back", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GRPC_PORT", "fifty")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 50051, cfg.GRPCPort)
	})
}

func TestLoadYAMLOverlay(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "insights.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app_env: staging
http_addr: ":8081"
cache_ttl: 2m
grpc_port: 7000
`), 0o644))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.AppEnv)
	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 7000, cfg.GRPCPort)
	assert.Equal(t, "sqlite3", cfg.DBDriver, "unset file keys keep defaults")
}

func TestEnvWinsOverFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "insights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_addr: \":8081\"\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_ADDR", ":9999")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	t.Run("production", func(t *testing.T) {
		logger, err := NewLogger(&Config{AppEnv: "production"})
		require.NoError(t, err)
		assert.NotNil(t, logger)
	})

	t.Run("development", func(t *testing.T) {
		logger, err := NewLogger(&Config{AppEnv: "development"})
		require.NoError(t, err)
		assert.NotNil(t, logger)
	})
}
