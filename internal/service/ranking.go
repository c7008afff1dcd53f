package service

import (
	"context"
	"kvk-ranker/internal/constants"
	"kvk-ranker/internal/domain"
	"kvk-ranker/internal/i18n"
	"kvk-ranker/internal/scoring"
	"kvk-ranker/internal/session"

	"github.com/rs/zerolog"
)

// HandoffStore keeps the computed ranking for the report view.
type HandoffStore interface {
	Save(ctx context.Context, sessionID, key string, h domain.Handoff) error
	Load(ctx context.Context, sessionID, key string) (*domain.Handoff, error)
}

type RankingResult struct {
	Handoff domain.Handoff       `json:"handoff"`
	Summary domain.GlobalSummary `json:"summary"`
}

type RankingService struct {
	sessions *session.Manager
	handoffs HandoffStore
	logger   zerolog.Logger
}

func NewRankingService(sessions *session.Manager, handoffs HandoffStore, logger zerolog.Logger) *RankingService {
	return &RankingService{sessions: sessions, handoffs: handoffs, logger: logger}
}

// Calculate ranks the session's scored kingdoms and stores the handoff record.
// The session's entries are only read.
func (s *RankingService) Calculate(ctx context.Context, sessionID string) (*RankingResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	ranking, weights, err := sess.Rank(i18n.KingdomLabel(sess.Language()))
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("ranking not computed")
		return nil, err
	}

	handoff, err := scoring.NewHandoff(ranking, weights)
	if err != nil {
		return nil, err
	}

	if err := s.handoffs.Save(ctx, sessionID, constants.HandoffKey, handoff); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to store handoff")
		return nil, err
	}

	summary := scoring.Summarize(ranking)
	s.logger.Info().
		Str("session_id", sessionID).
		Int("kingdoms", len(ranking)).
		Str("champion", handoff.Champion.Name).
		Float64("total_score", summary.TotalScore).
		Msg("ranking calculated")

	return &RankingResult{Handoff: handoff, Summary: summary}, nil
}
