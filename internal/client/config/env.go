package config

import (
	"github.com/dmitrijs2005/mandaditos/internal/flagx"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "MANDADITOS"

// parseEnv loads a dotenv file into the process environment and overlays
// the MANDADITOS_* variables that are set. Unset variables keep their value.
func parseEnv(cfg *Config) {
	if f := flagx.EnvFileFlag(); f != "" {
		if err := godotenv.Load(f); err != nil {
			panic(err)
		}
	} else {
		_ = godotenv.Load()
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		panic(err)
	}
}
