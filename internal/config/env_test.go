package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvFrom_Defaults(t *testing.T) {
	e, err := ParseEnvFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "janus.db", e.DB)
	assert.Equal(t, "info", e.LogLevel)
	assert.Empty(t, e.Runtime)
	assert.False(t, e.JWTEnabled())

	lvl, err := e.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)
}

func TestParseEnvFrom_Overrides(t *testing.T) {
	e, err := ParseEnvFrom(map[string]string{
		"JANUS_DB":             "/var/lib/janus/state.db",
		"JANUS_RUNTIME":        "runtime.cue",
		"JANUS_LOG_LEVEL":      "debug",
		"JANUS_JWT_ISSUER":     "idp",
		"JANUS_JWT_PUBLIC_KEY": "AAAA",
		"JANUS_METRICS_ADDR":   ":9090",
	})
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/janus/state.db", e.DB)
	assert.Equal(t, "runtime.cue", e.Runtime)
	assert.Equal(t, ":9090", e.MetricsAddr)
	assert.True(t, e.JWTEnabled())

	lvl, err := e.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestEnv_BadLevel(t *testing.T) {
	_, err := Env{LogLevel: "loud"}.Level()
	assert.Error(t, err)
}

func TestParseEnv_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv("JANUS_DB", "from-env.db")

	e, err := ParseEnv()
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", e.DB)
}
