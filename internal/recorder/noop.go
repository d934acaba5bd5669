package recorder

import "MacroSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAllocation(_ *model.AllocationRun) error    { return nil }
func (n *NoopRecorder) RecordMacro(_ *model.MacroDashboard) error        { return nil }
func (n *NoopRecorder) RecentAllocations(_ int) ([]AllocationRow, error) { return nil, nil }
func (n *NoopRecorder) Close() error                                     { return nil }
