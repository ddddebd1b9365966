package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// envFlags lists the environment variables that give flag defaults.
var envFlags = map[string]string{
	"CACHESIM_DB":           "db",
	"CACHESIM_MONITOR_PORT": "monitor-port",
	"CACHESIM_PARALLEL":     "parallel",
}

// loadEnv reads the .env file in the working directory, if any, and sets the
// flags that are not given on the command line from the environment.
func loadEnv(cmd *cobra.Command, _ []string) error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return applyEnv(cmd)
}

func applyEnv(cmd *cobra.Command) error {
	flags := cmd.Flags()

	for env, name := range envFlags {
		value, found := os.LookupEnv(env)
		if !found || flags.Lookup(name) == nil || flags.Changed(name) {
			continue
		}

		err := flags.Set(name, value)
		if err != nil {
			return err
		}
	}

	return nil
}
