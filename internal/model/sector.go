package model

import (
	"encoding/json"
	"fmt"
)

// Sector is one member of the fixed GICS-style sector set.
type Sector int

const (
	Technology Sector = iota
	Financials
	Healthcare
	Energy
	Utilities
	ConsumerDiscretionary
	Industrials
	RealEstate
	Materials
	CommunicationServices
	ConsumerStaples

	// SectorCount is the size of the enumeration. Keep it last.
	SectorCount
)

type sectorInfo struct {
	Name  string
	Label string
	ETF   string
}

var sectorTable = [SectorCount]sectorInfo{
	Technology:            {"Technology", "Tech", "XLK"},
	Financials:            {"Financials", "Fin", "XLF"},
	Healthcare:            {"Healthcare", "HC", "XLV"},
	Energy:                {"Energy", "Energy", "XLE"},
	Utilities:             {"Utilities", "Utils", "XLU"},
	ConsumerDiscretionary: {"ConsumerDiscretionary", "CD", "XLY"},
	Industrials:           {"Industrials", "Indust", "XLI"},
	RealEstate:            {"RealEstate", "RE", "XLRE"},
	Materials:             {"Materials", "Mat", "XLB"},
	CommunicationServices: {"CommunicationServices", "Comm", "XLC"},
	ConsumerStaples:       {"ConsumerStaples", "CS", "XLP"},
}

// AllSectors returns every sector in canonical order.
func AllSectors() []Sector {
	out := make([]Sector, SectorCount)
	for i := range out {
		out[i] = Sector(i)
	}
	return out
}

// Valid reports whether s is a member of the enumeration.
func (s Sector) Valid() bool { return s >= 0 && s < SectorCount }

// String returns the canonical sector name, e.g. "ConsumerStaples".
func (s Sector) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Sector(%d)", int(s))
	}
	return sectorTable[s].Name
}

// Label returns the abbreviated display label used on charts.
func (s Sector) Label() string {
	if !s.Valid() {
		return s.String()
	}
	return sectorTable[s].Label
}

// ETF returns the default sector ETF used as a price proxy.
func (s Sector) ETF() string {
	if !s.Valid() {
		return ""
	}
	return sectorTable[s].ETF
}

// ParseSector maps a canonical name back to its Sector.
func ParseSector(name string) (Sector, error) {
	for i, info := range sectorTable {
		if info.Name == name {
			return Sector(i), nil
		}
	}
	return -1, fmt.Errorf("unknown sector %q", name)
}

func (s Sector) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid sector %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Sector) UnmarshalText(text []byte) error {
	parsed, err := ParseSector(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SectorMetrics holds the trailing performance figures for one sector.
type SectorMetrics struct {
	Momentum   float64 `json:"momentum"`
	Volatility float64 `json:"volatility"`
}

// SectorSnapshot maps each sector to its market metrics.
type SectorSnapshot map[Sector]SectorMetrics

// SectorWeightMap holds one signed, unnormalized weight per sector.
// The array type pins the key set to the enumeration.
type SectorWeightMap [SectorCount]float64

// Get returns the weight for s.
func (w SectorWeightMap) Get(s Sector) float64 { return w[s] }

// ToMap converts the weights to a name-keyed map.
func (w SectorWeightMap) ToMap() map[string]float64 {
	m := make(map[string]float64, SectorCount)
	for i, v := range w {
		m[Sector(i).String()] = v
	}
	return m
}

func (w SectorWeightMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.ToMap())
}

func (w *SectorWeightMap) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out SectorWeightMap
	for name, v := range m {
		s, err := ParseSector(name)
		if err != nil {
			return err
		}
		out[s] = v
	}
	*w = out
	return nil
}
