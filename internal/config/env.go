package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Env holds settings read from the environment. Command-line flags, when
// set, take precedence over these.
type Env struct {
	DB           string `env:"JANUS_DB"            envDefault:"janus.db"`
	Runtime      string `env:"JANUS_RUNTIME"`
	LogLevel     string `env:"JANUS_LOG_LEVEL"     envDefault:"info"`
	JWTIssuer    string `env:"JANUS_JWT_ISSUER"`
	JWTPublicKey string `env:"JANUS_JWT_PUBLIC_KEY"`
	MetricsAddr  string `env:"JANUS_METRICS_ADDR"`
}

// ParseEnv loads Env from the process environment.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// ParseEnvFrom loads Env from an explicit variable set.
func ParseEnvFrom(vars map[string]string) (Env, error) {
	var e Env
	if err := env.ParseWithOptions(&e, env.Options{Environment: vars}); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// JWTEnabled reports whether bearer origins are configured.
func (e Env) JWTEnabled() bool {
	return strings.TrimSpace(e.JWTIssuer) != "" || strings.TrimSpace(e.JWTPublicKey) != ""
}

// Level maps LogLevel onto a slog level.
func (e Env) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(e.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("JANUS_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}
