package fx

import (
	"context"
	"kvk-ranker/internal/api"
	"kvk-ranker/internal/config"
	"kvk-ranker/internal/constants"
	"kvk-ranker/internal/database"
	"kvk-ranker/internal/logger"
	"kvk-ranker/internal/report"
	"kvk-ranker/internal/repository"
	"kvk-ranker/internal/server"
	"kvk-ranker/internal/service"
	"kvk-ranker/internal/session"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideSessionManager(cfg *config.Config, logger zerolog.Logger) *session.Manager {
	return session.NewManager(cfg.SessionTTL, logger)
}

func ProvideExtractor(cfg *config.Config) api.Extractor {
	if cfg.ExtractProvider == config.ProviderGemini {
		return api.NewGeminiClient(cfg)
	}
	return api.NewOpenAIClient(cfg)
}

func ProvideCredentialSource(prefs *repository.PreferenceRepository) service.CredentialSource {
	return prefs
}

func ProvideHandoffStore(handoffs *repository.HandoffRepository) service.HandoffStore {
	return handoffs
}

func ProvideExporter(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) report.Exporter {
	exporter := report.NewRodExporter(cfg.ChromeBin, logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return exporter.Close()
		},
	})
	return exporter
}

// RunJanitor expires idle sessions and their stored rankings in the background.
func RunJanitor(lc fx.Lifecycle, sessions *session.Manager, handoffs *repository.HandoffRepository, cfg *config.Config, logger zerolog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())

	sweep := func(now time.Time) {
		for _, id := range sessions.Sweep(now) {
			if err := handoffs.Delete(ctx, id); err != nil {
				logger.Warn().Err(err).Str("session_id", id).Msg("failed to delete handoff of expired session")
			}
		}
		if n, err := handoffs.PurgeExpired(ctx, now.Add(-cfg.SessionTTL)); err != nil {
			logger.Warn().Err(err).Msg("failed to purge expired handoffs")
		} else if n > 0 {
			logger.Info().Int64("count", n).Msg("expired handoffs purged")
		}
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			sweep(time.Now())
			go func() {
				ticker := time.NewTicker(constants.SessionSweepEvery)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case now := <-ticker.C:
						sweep(now)
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

// Core wires everything except the root logger, which the server and the CLI
// supply differently.
var Core = fx.Options(
	fx.Provide(config.Load),
	fx.Invoke(logger.ApplyLevel),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewPreferenceRepository),
	fx.Provide(repository.NewHandoffRepository),
	fx.Provide(ProvideCredentialSource),
	fx.Provide(ProvideHandoffStore),
	// session state
	fx.Provide(ProvideSessionManager),
	// api client
	fx.Provide(ProvideExtractor),
	fx.Provide(ProvideExporter),
	// svc
	fx.Provide(service.NewKingdomService),
	fx.Provide(service.NewRankingService),
	fx.Provide(service.NewReportService),
	// server
	fx.Provide(server.NewKVKServer),
	fx.Invoke(RunJanitor),
)

var Module = fx.Options(
	fx.Provide(logger.New),
	Core,
)
