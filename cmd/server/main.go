package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/skybi/sunshine/internal/config"
	"github.com/spf13/cobra"
)

var cfg *config.Config

func main() {
	// Set up zerolog to use pretty printing
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out: os.Stderr,
	})

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sunshine",
		Short:         "Weather forecast content store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
	}
	cmd.AddCommand(serveCmd(), schemaCmd())
	return cmd
}

// loadConfig loads the application configuration and adjusts the log level to the environment
func loadConfig() error {
	log.Info().Msg("loading configuration...")
	loaded, err := config.LoadFromEnv()
	if err != nil {
		log.Error().Err(err).Msg("could not load the configuration")
		return err
	}
	if loaded.IsEnvProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Debug().Str("config", fmt.Sprintf("%+v", loaded)).Msg("")
	cfg = loaded
	return nil
}
