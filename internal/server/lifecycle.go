package server

import (
	"context"
	"database/sql"
	"fmt"
	"kvk-ranker/internal/config"
	"kvk-ranker/internal/constants"
	"net/http"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// Run binds the HTTP server to the fx lifecycle. Shutdown drains requests
// before the database is closed.
func Run(
	lc fx.Lifecycle,
	kvkServer *KVKServer,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           kvkServer.Handler(),
		ReadHeaderTimeout: constants.DatabaseTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
