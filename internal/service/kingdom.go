package service

import (
	"context"
	"errors"
	"fmt"
	"kvk-ranker/internal/api"
	"kvk-ranker/internal/config"
	"kvk-ranker/internal/constants"
	"kvk-ranker/internal/domain"
	"kvk-ranker/internal/repository"
	"kvk-ranker/internal/scoring"
	"kvk-ranker/internal/session"

	"github.com/rs/zerolog"
)

// CredentialSource resolves the extraction key for a provider.
type CredentialSource interface {
	APIKey(ctx context.Context, key, fallback string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type KingdomService struct {
	sessions  *session.Manager
	extractor api.Extractor
	prefs     CredentialSource
	cfg       *config.Config
	logger    zerolog.Logger
}

func NewKingdomService(sessions *session.Manager, extractor api.Extractor, prefs CredentialSource, cfg *config.Config, logger zerolog.Logger) *KingdomService {
	return &KingdomService{sessions: sessions, extractor: extractor, prefs: prefs, cfg: cfg, logger: logger}
}

func (s *KingdomService) credentialKeys() (prefKey, fallback string) {
	if s.extractor.Provider() == config.ProviderGemini {
		return repository.PrefGeminiAPIKey, s.cfg.GeminiAPIKey
	}
	return repository.PrefOpenAIAPIKey, s.cfg.OpenAIAPIKey
}

// SaveAPIKey persists a user-entered key for the active provider. Blank keys
// are ignored, as in the settings dialog.
func (s *KingdomService) SaveAPIKey(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if key == "" {
		return &scoring.ConfigurationError{Reason: "API key must not be empty"}
	}
	prefKey, _ := s.credentialKeys()
	if err := s.prefs.Set(ctx, prefKey, key); err != nil {
		s.logger.Error().Err(err).Msg("failed to save api key")
		return err
	}
	s.logger.Info().Str("provider", s.extractor.Provider()).Msg("api key saved")
	return nil
}

// ExtractReading runs one screenshot through the extraction service, the
// validator and the mapper. It touches no session state.
func (s *KingdomService) ExtractReading(ctx context.Context, img api.Image) (domain.TroopReading, error) {
	prefKey, fallback := s.credentialKeys()
	apiKey, err := s.prefs.APIKey(ctx, prefKey, fallback)
	if err != nil {
		return domain.TroopReading{}, fmt.Errorf("failed to resolve api key: %w", err)
	}
	if apiKey == "" {
		return domain.TroopReading{}, scoring.ErrMissingCredential
	}

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	content, err := s.extractor.Extract(apiCtx, apiKey, img)
	if err != nil {
		return domain.TroopReading{}, err
	}

	raw, err := scoring.DecodeResponse(content)
	if err != nil {
		return domain.TroopReading{}, err
	}
	return scoring.ReadingFromResponse(raw)
}

// Upload replaces a kingdom's reading with the one read from img. On any
// failure the previous reading stays in place.
func (s *KingdomService) Upload(ctx context.Context, sessionID, kingdomID string, img api.Image) (domain.KingdomEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	logger := s.logger.With().Str("session_id", sessionID).Str("kingdom_id", kingdomID).Logger()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return domain.KingdomEntry{}, err
	}
	if _, err := sess.Entry(kingdomID); err != nil {
		return domain.KingdomEntry{}, err
	}

	ticket, err := sess.BeginUpload(kingdomID)
	if err != nil {
		return domain.KingdomEntry{}, err
	}

	logger.Info().Int("bytes", len(img.Data)).Str("provider", s.extractor.Provider()).Msg("extracting reading")

	reading, err := s.ExtractReading(ctx, img)
	if err != nil {
		logger.Warn().Err(err).Str("kind", string(scoring.KindOf(err))).Msg("extraction failed")
		return domain.KingdomEntry{}, err
	}

	if err := sess.CommitReading(ticket, reading); err != nil {
		if errors.Is(err, session.ErrUploadSuperseded) {
			logger.Info().Msg("discarding reading from superseded upload")
		}
		return domain.KingdomEntry{}, err
	}

	totals := scoring.Score(&reading, sess.Weights())
	logger.Info().
		Int64("t5", totals.Tier5Total).
		Int64("t4", totals.Tier4Total).
		Msg("reading stored")

	return sess.Entry(kingdomID)
}
