package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

const EnvPrefix = "STUDYSHARE_CLIENT_"

func parseEnv(cfg *Config) {
	if err := env.Parse(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(fmt.Errorf("read env config error: %w", err))
	}
}
