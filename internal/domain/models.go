package domain

import (
	"time"
)

// TroopReading is one kingdom's extracted kill counts, one per unit class and tier.
type TroopReading struct {
	InfantryT5 int64 `json:"infantry_t5"`
	CavalryT5  int64 `json:"cavalry_t5"`
	ArcherT5   int64 `json:"archer_t5"`
	SiegeT5    int64 `json:"siege_t5"`
	InfantryT4 int64 `json:"infantry_t4"`
	CavalryT4  int64 `json:"cavalry_t4"`
	ArcherT4   int64 `json:"archer_t4"`
	SiegeT4    int64 `json:"siege_t4"`
}

type ScoringWeights struct {
	T5 float64 `json:"t5"`
	T4 float64 `json:"t4"`
}

type KingdomEntry struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Reading *TroopReading `json:"reading,omitempty"`
}

func (k KingdomEntry) Scored() bool {
	return k.Reading != nil
}

type TierStats struct {
	TotalT5 int64 `json:"totalT5"`
	TotalT4 int64 `json:"totalT4"`
}

type ScoredKingdom struct {
	Name       string       `json:"reino"`
	TotalScore float64      `json:"totalPontos"`
	Stats      TierStats    `json:"stats"`
	Breakdown  TroopReading `json:"breakdown"`
}

type GlobalSummary struct {
	TotalScore float64 `json:"score"`
	Tier5Total int64   `json:"t5"`
	Tier4Total int64   `json:"t4"`
}

// Handoff is the record passed from the ranking step to the report view.
type Handoff struct {
	Champion ScoredKingdom   `json:"champion"`
	Ranking  []ScoredKingdom `json:"ranking"`
	Config   ScoringWeights  `json:"config"`
}

type Preference struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
