package allocation

import (
	"sort"

	"MacroSentinel/internal/model"
)

// RankedWeight is one entry of a weight map sorted for display.
type RankedWeight struct {
	Sector model.Sector `json:"sector"`
	Label  string       `json:"label"`
	Weight float64      `json:"weight"`
}

// Rank sorts weights descending. Ties keep canonical sector order.
func Rank(w model.SectorWeightMap) []RankedWeight {
	out := make([]RankedWeight, 0, model.SectorCount)
	for _, s := range model.AllSectors() {
		out = append(out, RankedWeight{Sector: s, Label: s.Label(), Weight: w[s]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out
}

// PositiveShares returns each sector's share of the total positive weight, for pie rendering.
// Non-positive weights get no slice. All zeros when nothing is positive.
func PositiveShares(w model.SectorWeightMap) model.SectorWeightMap {
	var total float64
	for _, v := range w {
		if v > 0 {
			total += v
		}
	}
	var shares model.SectorWeightMap
	if total == 0 {
		return shares
	}
	for i, v := range w {
		if v > 0 {
			shares[i] = v / total
		}
	}
	return shares
}
