package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

const envPrefix = "GEOPOSTS_"

// parseEnv overlays cfg with GEOPOSTS_* variables. Unset variables leave the
// field untouched.
func parseEnv(cfg *Config) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		panic(fmt.Errorf("config: parse environment: %w", err))
	}
}
