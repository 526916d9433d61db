package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, StoreMemory, cfg.Store)
		assert.Equal(t, "flowr.db", cfg.SQLitePath)
		assert.Empty(t, cfg.RuleSetPaths)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("FLOWR_ADDR", ":9090")
		t.Setenv("FLOWR_STORE", "sqlite")
		t.Setenv("FLOWR_SQLITE_PATH", "/tmp/snaps.db")
		t.Setenv("FLOWR_RULESETS", "a.yaml:b.yaml::c.yaml")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, StoreSQLite, cfg.Store)
		assert.Equal(t, "/tmp/snaps.db", cfg.SQLitePath)
		assert.Equal(t, []string{"a.yaml", "b.yaml", "c.yaml"}, cfg.RuleSetPaths)
	})

	t.Run("postgres requires a DSN", func(t *testing.T) {
		t.Setenv("FLOWR_STORE", "postgres")
		t.Setenv("FLOWR_POSTGRES_DSN", "")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("postgres with DSN", func(t *testing.T) {
		t.Setenv("FLOWR_STORE", "postgres")
		t.Setenv("FLOWR_POSTGRES_DSN", "postgres://localhost/flowr")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, StorePostgres, cfg.Store)
		assert.Equal(t, "postgres://localhost/flowr", cfg.PostgresDSN)
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("FLOWR_STORE", "etcd")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("FLOWR_TEST_INT", "42")
	assert.Equal(t, 42, GetEnvAsInt("FLOWR_TEST_INT", 7))

	t.Setenv("FLOWR_TEST_INT", "not-a-number")
	assert.Equal(t, 7, GetEnvAsInt("FLOWR_TEST_INT", 7))

	assert.Equal(t, 7, GetEnvAsInt("FLOWR_TEST_INT_MISSING", 7))
}
