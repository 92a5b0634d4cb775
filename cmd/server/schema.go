package main

import (
	"github.com/rs/zerolog/log"
	"github.com/skybi/sunshine/internal/storage/postgres"
	"github.com/spf13/cobra"
)

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply all pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			driver := postgres.New(cfg.PostgresDSN)
			if err := driver.Initialize(cmd.Context()); err != nil {
				log.Error().Err(err).Msg("could not migrate the database schema")
				return err
			}
			driver.Close()
			log.Info().Msg("database schema is up to date")
			return nil
		},
	}, &cobra.Command{
		Use:   "recreate",
		Short: "Drop and recreate both tables, discarding every stored row",
		RunE: func(cmd *cobra.Command, _ []string) error {
			driver := postgres.New(cfg.PostgresDSN)
			if err := driver.Recreate(cmd.Context()); err != nil {
				log.Error().Err(err).Msg("could not recreate the database schema")
				return err
			}
			log.Info().Msg("database schema recreated")
			return nil
		},
	})
	return cmd
}
