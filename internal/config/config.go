// Package config loads the Session Manager's process-level
// configuration in the teacher's layered order: defaults, then a
// .env file, then environment variables (SPEC_FULL §1.3).
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// SessionManagerConfig is spec §3's SessionManagerConfig.
type SessionManagerConfig struct {
	MaxSessions      *int
	AgentName        string
	EphemeralDefault bool
	Port             int
}

// DefaultConfig returns the baseline configuration before any .env or
// environment override is applied.
func DefaultConfig() SessionManagerConfig {
	return SessionManagerConfig{
		MaxSessions:      nil,
		AgentName:        "default",
		EphemeralDefault: false,
		Port:             8080,
	}
}

// Load builds a SessionManagerConfig from defaults, a .env file at
// envPath (missing file is not an error, exactly like the teacher's
// loadConfigFile treating a missing path as skip-not-fatal), and then
// process environment variables, which take final precedence.
func Load(envPath string) SessionManagerConfig {
	_ = godotenv.Load(envPath)

	cfg := DefaultConfig()

	if v := os.Getenv("AGENTCORE_MAX_SESSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxSessions = &n
		}
	}
	if v := os.Getenv("AGENTCORE_AGENT_NAME"); v != "" {
		cfg.AgentName = v
	}
	if v := os.Getenv("AGENTCORE_EPHEMERAL_DEFAULT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EphemeralDefault = b
		}
	}
	if v := os.Getenv("AGENTCORE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}

	return cfg
}
