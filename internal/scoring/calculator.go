package scoring

import (
	"kvk-ranker/internal/domain"
)

type Totals struct {
	Tier5Total int64
	Tier4Total int64
	TotalScore float64
}

// Score sums each tier and applies the weights. A nil reading counts as all
// zeros: this is the aggregation boundary, the validator upstream is strict.
func Score(r *domain.TroopReading, w domain.ScoringWeights) Totals {
	if r == nil {
		return Totals{}
	}
	t5 := r.InfantryT5 + r.CavalryT5 + r.ArcherT5 + r.SiegeT5
	t4 := r.InfantryT4 + r.CavalryT4 + r.ArcherT4 + r.SiegeT4

	return Totals{
		Tier5Total: t5,
		Tier4Total: t4,
		TotalScore: float64(t5)*w.T5 + float64(t4)*w.T4,
	}
}

type UnitDetail struct {
	Field  string  `json:"field"`
	Kills  int64   `json:"kills"`
	Factor float64 `json:"factor"`
	Points float64 `json:"points"`
}

// Breakdown lists the contribution of every field in mapping order.
func Breakdown(r *domain.TroopReading, w domain.ScoringWeights) []UnitDetail {
	var reading domain.TroopReading
	if r != nil {
		reading = *r
	}

	fields := []struct {
		name   string
		kills  int64
		factor float64
	}{
		{"infantry_t5", reading.InfantryT5, w.T5},
		{"cavalry_t5", reading.CavalryT5, w.T5},
		{"archer_t5", reading.ArcherT5, w.T5},
		{"siege_t5", reading.SiegeT5, w.T5},
		{"infantry_t4", reading.InfantryT4, w.T4},
		{"cavalry_t4", reading.CavalryT4, w.T4},
		{"archer_t4", reading.ArcherT4, w.T4},
		{"siege_t4", reading.SiegeT4, w.T4},
	}

	details := make([]UnitDetail, 0, len(fields))
	for _, f := range fields {
		details = append(details, UnitDetail{
			Field:  f.name,
			Kills:  f.kills,
			Factor: f.factor,
			Points: float64(f.kills) * f.factor,
		})
	}
	return details
}
