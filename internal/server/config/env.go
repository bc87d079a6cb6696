package config

import (
	"github.com/dmitrijs2005/mandaditos/internal/flagx"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "MANDADITOS_SERVER"

// parseEnv loads the dotenv file, if any, and overlays MANDADITOS_SERVER_*
// variables.
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
