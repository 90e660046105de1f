package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapEnv(vars map[string]string) envLookup {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	err := applyEnv(cfg, mapEnv(map[string]string{
		"DB_MAX_OPEN_CONNS":   " 40 ",
		"DB_AUTO_MIGRATE":     "true",
		"SERVER_CORS_ORIGINS": ",",
		"DB_HOST":             "db.internal",
	}))
	require.NoError(t, err)

	assert.Equal(t, 40, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, []string{}, cfg.Server.CORSOrigins)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "1h", cfg.Database.ConnMaxLifetime)
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := map[string]string{
		"DB_MAX_OPEN_CONNS": "many",
		"DB_AUTO_MIGRATE":   "sometimes",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			cfg := &Config{}
			err := applyEnv(cfg, mapEnv(map[string]string{key: value}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}
