package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/abroadcrm/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Database.Host = "localhost"
	cfg.Database.Port = "5432"
	cfg.Database.User = "crm"
	cfg.Database.Password = "secret"
	cfg.Database.DBName = "abroadcrm"
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxOpenConns = 20
	cfg.Database.MaxIdleConns = 5
	cfg.Database.ConnMaxLifetime = "45m"
	return cfg
}

func TestPoolConfig(t *testing.T) {
	pc, err := poolConfig(testConfig())
	require.NoError(t, err)

	assert.Equal(t, int32(20), pc.MaxConns)
	assert.Equal(t, int32(5), pc.MinConns)
	assert.Equal(t, 45*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, "abroadcrm", pc.ConnConfig.Database)
	assert.Equal(t, "crm", pc.ConnConfig.User)
	assert.NotNil(t, pc.AfterConnect)
}

func TestPoolConfig_BadLifetime(t *testing.T) {
	cfg := testConfig()
	cfg.Database.ConnMaxLifetime = "forever"

	_, err := poolConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conn_max_lifetime")
}
