package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Primary.Env)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "/opt/meshing-around/config.ini", cfg.Paths.Config)
	assert.Equal(t, 3600, cfg.Archive.IntervalSeconds)
	assert.Equal(t, "meshbot", cfg.Service.Name)
	assert.Equal(t, "meshpanel-production", cfg.Observability.AppName)
	assert.Nil(t, cfg.Server.CORSOrigins())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MESHPANEL_PRIMARY_ENV", "development")
	t.Setenv("MESHPANEL_SERVER_PORT", "8080")
	t.Setenv("MESHPANEL_PATHS_BOTLOG", "/tmp/meshbot.log")
	t.Setenv("MESHPANEL_SERVER_CORS", "http://localhost:5173, https://panel.example.org")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Primary.Env)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/tmp/meshbot.log", cfg.Paths.BotLog)
	assert.Equal(t, "meshpanel-development", cfg.Observability.AppName)
	assert.Equal(t,
		[]string{"http://localhost:5173", "https://panel.example.org"},
		cfg.Server.CORSOrigins())
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	t.Setenv("MESHPANEL_PRIMARY_ENV", "staging")
	_, err := Load()
	assert.Error(t, err)
}
