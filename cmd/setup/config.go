package main

import (
	"github.com/caarlos0/env/v11"

	"github.com/TheMapleseed/EmscriptenforDeno/internal/artifact"
)

// config holds the setup configuration.
type config struct {
	Postgres string          `env:"EFD_POSTGRES"`
	Store    artifact.Config `envPrefix:"EFD_STORE_"`
}

// parseConfig parses the configuration from the environment variables.
func parseConfig(environ []string) (*config, error) {
	var cfg config

	err := env.ParseWithOptions(&cfg, env.Options{
		Environment: env.ToMap(environ),
	})
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
