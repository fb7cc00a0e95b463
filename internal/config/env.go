package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// EnvPrefix prefixes every environment variable read by FromEnv.
const EnvPrefix = "CUIDD_"

// FromEnv overlays CUIDD_* environment variables onto cfg. Unset variables
// leave the current value untouched.
func FromEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return errors.Wrap(err, "parse env")
	}
	return nil
}
