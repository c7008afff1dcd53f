package scoring

import (
	"fmt"
	"kvk-ranker/internal/domain"
	"math"
	"sort"
	"strings"
)

// DefaultLabel names an unnamed kingdom from its 1-based position among the
// scored entries, in the order they were added.
type DefaultLabel func(position int) string

func NumberedLabel(prefix string) DefaultLabel {
	return func(position int) string {
		return fmt.Sprintf("%s %d", prefix, position)
	}
}

type Ranking []domain.ScoredKingdom

// Champion returns the top entry. On a tie it is the one added first.
func (r Ranking) Champion() (domain.ScoredKingdom, bool) {
	if len(r) == 0 {
		return domain.ScoredKingdom{}, false
	}
	return r[0], true
}

// Resort orders by total score, highest first, keeping ties in their current order.
func (r Ranking) Resort() {
	sort.SliceStable(r, func(i, j int) bool {
		return r[i].TotalScore > r[j].TotalScore
	})
}

func ValidateWeights(w domain.ScoringWeights) error {
	if math.IsNaN(w.T5) || math.IsInf(w.T5, 0) {
		return &ValidationError{Reason: "weight t5 must be a finite number"}
	}
	if math.IsNaN(w.T4) || math.IsInf(w.T4, 0) {
		return &ValidationError{Reason: "weight t4 must be a finite number"}
	}
	return nil
}

// Rank scores every entry that has a reading and sorts them. Entries without a
// reading are left out rather than scored as zero. The input is not modified.
func Rank(entries []domain.KingdomEntry, w domain.ScoringWeights, label DefaultLabel) (Ranking, error) {
	scored := make([]domain.KingdomEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Scored() {
			scored = append(scored, entry)
		}
	}
	if len(scored) == 0 {
		return nil, ErrEmptyRanking
	}
	if err := ValidateWeights(w); err != nil {
		return nil, err
	}
	if label == nil {
		label = NumberedLabel("Kingdom")
	}

	ranking := make(Ranking, 0, len(scored))
	for _, entry := range scored {
		totals := Score(entry.Reading, w)

		name := strings.TrimSpace(entry.Name)
		if name == "" {
			name = label(len(ranking) + 1)
		}

		ranking = append(ranking, domain.ScoredKingdom{
			Name:       name,
			TotalScore: totals.TotalScore,
			Stats: domain.TierStats{
				TotalT5: totals.Tier5Total,
				TotalT4: totals.Tier4Total,
			},
			Breakdown: *entry.Reading,
		})
	}

	ranking.Resort()
	return ranking, nil
}
