package scoring

import (
	"fmt"
	"kvk-ranker/internal/constants"
	"kvk-ranker/internal/domain"
)

// Positions of each field in the extracted sequence: the screenshot is read
// left to right, row by row, T5 classes first.
const (
	PosInfantryT5 = iota
	PosCavalryT5
	PosArcherT5
	PosSiegeT5
	PosInfantryT4
	PosCavalryT4
	PosArcherT4
	PosSiegeT4
)

// MapValues assigns a validated sequence to reading fields by position. The
// count is checked again here; callers are not trusted to have validated.
func MapValues(values []int64) (domain.TroopReading, error) {
	if len(values) != constants.ReadingValueCount {
		return domain.TroopReading{}, fmt.Errorf("invalid input: expected %d values, received %d", constants.ReadingValueCount, len(values))
	}

	return domain.TroopReading{
		InfantryT5: values[PosInfantryT5],
		CavalryT5:  values[PosCavalryT5],
		ArcherT5:   values[PosArcherT5],
		SiegeT5:    values[PosSiegeT5],
		InfantryT4: values[PosInfantryT4],
		CavalryT4:  values[PosCavalryT4],
		ArcherT4:   values[PosArcherT4],
		SiegeT4:    values[PosSiegeT4],
	}, nil
}

// ReadingFromResponse runs the validator and the mapper in sequence.
func ReadingFromResponse(raw any) (domain.TroopReading, error) {
	values, err := ValidateResponse(raw)
	if err != nil {
		return domain.TroopReading{}, err
	}
	return MapValues(values)
}
