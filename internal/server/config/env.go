package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/pairchat/internal/flagx"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const defaultEnvFile = ".env"

// parseEnv overlays Config with environment variables.
//
// A dotenv file is loaded first: the path given by -env, or ./.env when it
// exists. Variables already present in the process environment win over the
// file. A missing default file is not an error; a missing explicit file or an
// invalid variable panics.
func parseEnv(config *Config) {
	envFile := flagx.EnvFileFlags(os.Args[1:])
	explicit := envFile != ""
	if !explicit {
		envFile = defaultEnvFile
	}

	if err := godotenv.Load(envFile); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	if err := envconfig.Process("", config); err != nil {
		panic(err)
	}
}
