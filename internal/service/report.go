package service

import (
	"context"
	"kvk-ranker/internal/constants"
	"kvk-ranker/internal/report"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

type ReportService struct {
	handoffs HandoffStore
	exporter report.Exporter
	logger   zerolog.Logger
	now      func() time.Time
}

func NewReportService(handoffs HandoffStore, exporter report.Exporter, logger zerolog.Logger) *ReportService {
	return &ReportService{handoffs: handoffs, exporter: exporter, logger: logger, now: time.Now}
}

// View loads the session's last ranking and formats it. A missing or broken
// record surfaces as repository.ErrHandoffMissing.
func (s *ReportService) View(ctx context.Context, sessionID string, lang language.Tag) (*report.View, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	h, err := s.handoffs.Load(ctx, sessionID, constants.HandoffKey)
	if err != nil {
		s.logger.Debug().Err(err).Str("session_id", sessionID).Msg("report unavailable")
		return nil, err
	}
	v := report.NewView(*h, lang, s.now())
	return &v, nil
}

func (s *ReportService) HTML(ctx context.Context, sessionID string, lang language.Tag, preset report.Preset) ([]byte, error) {
	v, err := s.View(ctx, sessionID, lang)
	if err != nil {
		return nil, err
	}
	return report.Render(*v, preset)
}

// Export renders the report and rasterizes it at preset's resolution.
func (s *ReportService) Export(ctx context.Context, sessionID string, lang language.Tag, preset report.Preset) ([]byte, error) {
	page, err := s.HTML(ctx, sessionID, lang, preset)
	if err != nil {
		return nil, err
	}

	exportCtx, cancel := context.WithTimeout(ctx, constants.ExportTimeout)
	defer cancel()

	start := time.Now()
	img, err := s.exporter.Export(exportCtx, page, preset)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Str("preset", preset.Name).Msg("report export failed")
		return nil, err
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Str("preset", preset.Name).
		Dur("duration", time.Since(start)).
		Msg("report exported")
	return img, nil
}
