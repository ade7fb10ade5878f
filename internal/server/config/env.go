package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

// EnvPrefix is prepended to every variable named in the Config env tags.
const EnvPrefix = "STUDYSHARE_"

// parseEnv overrides fields whose STUDYSHARE_* variable is set. Unset
// variables leave the current value in place. Malformed values panic.
func parseEnv(config *Config) {
	if err := env.Parse(config, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(fmt.Errorf("read env config error: %w", err))
	}
}
