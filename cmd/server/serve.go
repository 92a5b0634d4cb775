package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/skybi/sunshine/internal/api"
	"github.com/skybi/sunshine/internal/notify"
	"github.com/skybi/sunshine/internal/provider"
	"github.com/skybi/sunshine/internal/provider/cache"
	"github.com/skybi/sunshine/internal/storage/postgres"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var noCache bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the content API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log.Info().Msg("starting up...")

			// Initialize the PostgreSQL storage driver
			log.Info().Msg("initializing database connection...")
			driver := postgres.New(cfg.PostgresDSN)
			if err := driver.Initialize(cmd.Context()); err != nil {
				log.Error().Err(err).Msg("could not initialize the database connection")
				return err
			}
			defer driver.Close()

			// Create the change notification resolver
			resolver, err := notify.NewResolver()
			if err != nil {
				log.Error().Err(err).Msg("could not create the change notification resolver")
				return err
			}
			defer resolver.Close()

			// Create the content provider and put the query cache in front of it
			var content provider.ContentProvider = provider.New(driver.Engine(), resolver)
			if !noCache {
				cached := cache.New(content, resolver, cfg.CacheLifetime, cfg.CacheCleanupInterval)
				defer cached.Close()
				content = cached
			}

			// Start up the content API
			log.Info().Str("address", cfg.APIListenAddress).Msg("starting up the content API...")
			service := &api.Service{
				Config:   cfg,
				Provider: content,
				Resolver: resolver,
			}
			apiErrs := make(chan error, 1)
			service.Startup(apiErrs)
			defer func() {
				log.Info().Msg("shutting down the content API...")
				service.Shutdown()
			}()

			log.Info().Msg("done!")
			defer log.Info().Msg("shutting down...")

			// Wait for the application to be terminated
			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
			select {
			case <-shutdown:
				return nil
			case err := <-apiErrs:
				log.Error().Err(err).Msg("the content API raised an unexpected error")
				return err
			}
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "query the database directly instead of caching query results")
	return cmd
}
