package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileDefaultsAndEnv(t *testing.T) {
	t.Setenv("SUNFLOWER_SERVER_PORT", "9090")
	t.Setenv("SUNFLOWER_JWT_SECRET", "from-env")
	t.Setenv("SUNFLOWER_S3_BUCKET", "avatars")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ":9090", cfg.Server.Addr())
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.True(t, cfg.S3.Enabled())

	// config.yaml
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 30*time.Second, cfg.Redis.RoomPageTTL)

	// defaults only
	assert.Equal(t, 500, cfg.Workers.FanoutBatchSize)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
	assert.Equal(t, "sunflower-post", cfg.Tracing.ServiceName)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: "postgres", DSN: "host=localhost"},
			JWT:      JWTConfig{Secret: "s"},
		}
	}
	require.NoError(t, valid().Validate())

	c := valid()
	c.JWT.Secret = ""
	assert.ErrorContains(t, c.Validate(), "jwt.secret")

	c = valid()
	c.Database.Driver = "mysql"
	assert.ErrorContains(t, c.Validate(), "database.driver")

	c = valid()
	c.Database.DSN = ""
	assert.ErrorContains(t, c.Validate(), "database.dsn")

	c = valid()
	c.AI.Enabled = true
	assert.ErrorContains(t, c.Validate(), "ai.base_url")
}
