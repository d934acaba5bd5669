package allocation

import (
	"errors"
	"fmt"

	"MacroSentinel/internal/model"
)

// ErrUnknownSector is returned when a name-keyed snapshot carries a sector outside the enumeration.
var ErrUnknownSector = errors.New("unknown sector")

// Contribution breaks one sector's weight into its phase deltas.
type Contribution struct {
	Sector  model.Sector `json:"sector"`
	Macro   float64      `json:"macro"`
	Market  float64      `json:"market"`
	Weight  float64      `json:"weight"`
	Missing bool         `json:"missing,omitempty"`
}

// Allocate computes the sector weights for one evaluation.
//
// Every sector starts at zero. The macro tilt is applied once, then each sector present in
// sectors receives its market adjustment. A sector absent from sectors keeps its baseline
// plus macro contribution.
func Allocate(economic model.EconomicSnapshot, sectors model.SectorSnapshot) model.SectorWeightMap {
	var weights model.SectorWeightMap

	// Step a: macro tilt
	for _, s := range tiltedSectors(ClassifyRegime(economic)) {
		weights[s] += MacroTilt
	}

	// Step b: per-sector market adjustment, canonical order
	for _, s := range model.AllSectors() {
		m, ok := sectors[s]
		if !ok {
			continue
		}
		weights[s] += scoreMarket(m)
	}

	return weights
}

// Explain returns the per-sector phase contributions behind Allocate, in canonical order.
func Explain(economic model.EconomicSnapshot, sectors model.SectorSnapshot) []Contribution {
	var macro model.SectorWeightMap
	for _, s := range tiltedSectors(ClassifyRegime(economic)) {
		macro[s] = MacroTilt
	}

	weights := Allocate(economic, sectors)
	out := make([]Contribution, 0, model.SectorCount)
	for _, s := range model.AllSectors() {
		c := Contribution{Sector: s, Macro: macro[s], Weight: weights[s]}
		if m, ok := sectors[s]; ok {
			c.Market = scoreMarket(m)
		} else {
			c.Missing = true
		}
		out = append(out, c)
	}
	return out
}

// MissingSectors lists the enumerated sectors absent from sectors.
func MissingSectors(sectors model.SectorSnapshot) []model.Sector {
	var missing []model.Sector
	for _, s := range model.AllSectors() {
		if _, ok := sectors[s]; !ok {
			missing = append(missing, s)
		}
	}
	return missing
}

// SnapshotFromNames converts a name-keyed snapshot, rejecting names outside the enumeration.
func SnapshotFromNames(in map[string]model.SectorMetrics) (model.SectorSnapshot, error) {
	out := make(model.SectorSnapshot, len(in))
	for name, m := range in {
		s, err := model.ParseSector(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSector, name)
		}
		out[s] = m
	}
	return out, nil
}
