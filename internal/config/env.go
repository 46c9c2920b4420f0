package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds settings read from the process environment.
// Command line flags override these when both are given.
type Env struct {
	DataDir    string `env:"CAVE_DATA_DIR"  envDefault:"data"`
	LogLevel   string `env:"CAVE_LOG_LEVEL" envDefault:"info"`
	ConfigPath string `env:"CAVE_CONFIG"`
	DBPath     string `env:"CAVE_DB"        envDefault:"~/.cave/saves.db"`
	NoColor    string `env:"NO_COLOR"`
}

// ParseEnv loads Env from environment variables.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("config: parse env: %w", err)
	}
	return e, nil
}
