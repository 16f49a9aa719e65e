package main

import (
	"github.com/caarlos0/env/v11"

	"github.com/TheMapleseed/EmscriptenforDeno/internal/artifact"
	"github.com/TheMapleseed/EmscriptenforDeno/internal/server"
)

// config holds the artifact server configuration.
type config struct {
	Store  artifact.Config `envPrefix:"EFD_STORE_"`
	Server server.Config   `envPrefix:"EFD_SERVER_"`
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
