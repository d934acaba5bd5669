package recorder

import (
	"time"

	"MacroSentinel/internal/model"
)

// AllocationRow is a persisted allocation run as read back from storage.
type AllocationRow struct {
	ID       int64
	At       time.Time
	Source   string
	Economic model.EconomicSnapshot
	Weights  model.SectorWeightMap
	Missing  int
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordAllocation(run *model.AllocationRun) error
	RecordMacro(d *model.MacroDashboard) error
	RecentAllocations(limit int) ([]AllocationRow, error)
	Close() error
}
