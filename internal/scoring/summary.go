package scoring

import (
	"kvk-ranker/internal/domain"
)

// Summarize folds a ranking into session-wide totals. An empty ranking yields
// zeros; the report view may refresh with nothing in it.
func Summarize(r Ranking) domain.GlobalSummary {
	var s domain.GlobalSummary
	for _, k := range r {
		s.TotalScore += k.TotalScore
		s.Tier5Total += k.Stats.TotalT5
		s.Tier4Total += k.Stats.TotalT4
	}
	return s
}

// NewHandoff packages a ranking for the report view.
func NewHandoff(r Ranking, w domain.ScoringWeights) (domain.Handoff, error) {
	champion, ok := r.Champion()
	if !ok {
		return domain.Handoff{}, ErrEmptyRanking
	}
	return domain.Handoff{
		Champion: champion,
		Ranking:  append([]domain.ScoredKingdom(nil), r...),
		Config:   w,
	}, nil
}
