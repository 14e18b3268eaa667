package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deppfellow/phonebook/internal/database"
	"github.com/deppfellow/phonebook/internal/handler"
	"github.com/deppfellow/phonebook/internal/repository"
	"github.com/deppfellow/phonebook/internal/router"
	"github.com/deppfellow/phonebook/internal/server"
	"github.com/deppfellow/phonebook/internal/service"
)

// DefaultShutdownTimeout is how long in-flight requests get on shutdown.
const DefaultShutdownTimeout = 30 * time.Second

var (
	migrateOnStart  bool
	shutdownTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, loggerService, log, err := bootstrap()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if migrateOnStart {
			migrateCtx, cancel := context.WithTimeout(ctx, MigrationTimeout)
			err := database.Migrate(migrateCtx, &log, cfg)
			cancel()
			if err != nil {
				log.Error().Err(err).Msg("failed to migrate database")
				loggerService.Shutdown()
				return err
			}
		}

		srv, err := server.New(cfg, &log, loggerService)
		if err != nil {
			log.Error().Err(err).Msg("failed to initialize server")
			loggerService.Shutdown()
			return err
		}

		repos := repository.NewRepositories(srv)

		services, err := service.NewServices(srv, repos)
		if err != nil {
			log.Error().Err(err).Msg("could not create services")
			_ = srv.Shutdown(context.Background())
			return err
		}

		handlers := handler.NewHandlers(srv, services)
		srv.SetupHTTPServer(router.NewRouter(srv, handlers))

		serveErr := make(chan error, 1)
		go func() {
			serveErr <- srv.Start()
		}()

		select {
		case err := <-serveErr:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("server stopped unexpectedly")
				_ = srv.Shutdown(context.Background())
				return err
			}
		case <-ctx.Done():
			log.Info().Msg("shutdown signal received")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
			return err
		}

		log.Info().Msg("server exited properly")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply database migrations before serving")
	serveCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", DefaultShutdownTimeout, "grace period for in-flight requests")
	rootCmd.AddCommand(serveCmd)
}
