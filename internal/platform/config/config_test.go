package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MemoryDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("PGSQL_URL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example, http://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "USD", cfg.BaseCurrency)
	assert.Equal(t, 10*time.Minute, cfg.RateCacheTTL)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_PostgresRequiresURL(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("PGSQL_URL", "")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "PGSQL_URL")
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	t.Run("storage driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "sqlite")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("base currency", func(t *testing.T) {
		t.Setenv("BASE_CURRENCY", "DOLLAR")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "BASE_CURRENCY")
	})

	t.Run("cache ttl", func(t *testing.T) {
		t.Setenv("RATE_CACHE_TTL", "soon")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "RATE_CACHE_TTL")
	})
}
