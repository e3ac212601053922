package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("AGENTCORE_MAX_SESSIONS")
	os.Unsetenv("AGENTCORE_AGENT_NAME")
	os.Unsetenv("AGENTCORE_EPHEMERAL_DEFAULT")
	os.Unsetenv("AGENTCORE_PORT")

	cfg := Load("/nonexistent/path/.env")
	assert.Nil(t, cfg.MaxSessions)
	assert.Equal(t, "default", cfg.AgentName)
	assert.False(t, cfg.EphemeralDefault)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AGENTCORE_MAX_SESSIONS", "5")
	t.Setenv("AGENTCORE_AGENT_NAME", "reviewer")
	t.Setenv("AGENTCORE_EPHEMERAL_DEFAULT", "true")
	t.Setenv("AGENTCORE_PORT", "9090")

	cfg := Load("/nonexistent/path/.env")
	require.NotNil(t, cfg.MaxSessions)
	assert.Equal(t, 5, *cfg.MaxSessions)
	assert.Equal(t, "reviewer", cfg.AgentName)
	assert.True(t, cfg.EphemeralDefault)
	assert.Equal(t, 9090, cfg.Port)
}
