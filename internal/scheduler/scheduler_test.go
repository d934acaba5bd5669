package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroSentinel/internal/collector"
	"MacroSentinel/internal/metrics"
	"MacroSentinel/internal/model"
	"MacroSentinel/internal/recorder"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

type fakeRecorder struct {
	recorder.NoopRecorder
	runs   []*model.AllocationRun
	macros []*model.MacroDashboard
}

func (f *fakeRecorder) RecordAllocation(run *model.AllocationRun) error {
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeRecorder) RecordMacro(d *model.MacroDashboard) error {
	f.macros = append(f.macros, d)
	return nil
}

func mockMacro() *collector.MockMacro {
	return &collector.MockMacro{
		CPI: []model.Observation{
			{Year: 2024, Period: "M08", Value: 103},
			{Year: 2023, Period: "M08", Value: 100},
		},
		Unemployment: []model.Observation{{Year: 2024, Period: "M08", Value: 4.2}},
		Treasury:     []model.Observation{{Year: 2024, Period: "M09", Value: 3.72}},
		GDP: []model.Observation{
			{Year: 2024, Period: "A01", Value: 101},
			{Year: 2023, Period: "A01", Value: 100},
		},
	}
}

func newTestScheduler(t *testing.T, macro *collector.MockMacro) (*Scheduler, *fakeNotifier, *fakeRecorder, *prometheus.Registry) {
	t.Helper()
	prices := &collector.MockPrices{
		Drift: 0.001,
		Errs:  map[string]error{"XLE": errors.New("not found")},
	}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	col := collector.NewCollector(macro, prices, collector.Options{OnFetchError: m.FetchError}, zerolog.Nop())
	n := &fakeNotifier{}
	rec := &fakeRecorder{}
	s := NewScheduler(context.Background(), col, n, rec, m, zerolog.Nop())
	return s, n, rec, reg
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestRunNow_StoresRecordsAndMeasures(t *testing.T) {
	s, n, rec, reg := newTestScheduler(t, mockMacro())

	run, err := s.RunNow(context.Background())
	require.NoError(t, err)

	// contraction tilt 0.2 plus strong-momentum, zero-volatility bonus 0.1
	assert.InDelta(t, 0.3, run.Weights[model.Healthcare], 1e-9)
	assert.InDelta(t, 0.1, run.Weights[model.Technology], 1e-9)
	assert.Zero(t, run.Weights[model.Energy])
	assert.Equal(t, []model.Sector{model.Energy}, run.Missing)
	assert.Equal(t, "mock/mock", run.Source)

	latest, macro := s.Latest()
	assert.Same(t, run, latest)
	require.NotNil(t, macro)
	assert.Equal(t, 4.2, macro.UnemploymentRate)

	require.Len(t, rec.runs, 1)
	assert.Empty(t, n.sent, "RunNow does not notify")
	assert.Equal(t, 1.0, counterValue(t, reg, "macrosentinel_allocation_runs_total", "result", "ok"))
	assert.Equal(t, 1.0, counterValue(t, reg, "macrosentinel_fetch_errors_total", "source", "mock"))
}

func TestRunNow_CollectFailureKeepsPreviousRun(t *testing.T) {
	macro := mockMacro()
	s, _, rec, reg := newTestScheduler(t, macro)

	first, err := s.RunNow(context.Background())
	require.NoError(t, err)

	macro.Err = errors.New("bls down")
	_, err = s.RunNow(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bls down")

	latest, _ := s.Latest()
	assert.Same(t, first, latest)
	assert.Len(t, rec.runs, 1)
	assert.Equal(t, 1.0, counterValue(t, reg, "macrosentinel_allocation_runs_total", "result", "error"))
}

func TestRefreshTask_Notifies(t *testing.T) {
	macro := mockMacro()
	s, n, _, _ := newTestScheduler(t, macro)

	s.refreshTask()
	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0], "MacroSentinel Allocation")

	macro.Err = errors.New("quota")
	s.refreshTask()
	require.Len(t, n.sent, 2)
	assert.Contains(t, n.sent[1], "refresh failed")
}

func TestMacroTask_RecordsDashboard(t *testing.T) {
	s, _, rec, _ := newTestScheduler(t, mockMacro())
	s.macroTask()

	require.Len(t, rec.macros, 1)
	_, d := s.Latest()
	require.NotNil(t, d)
	assert.InDelta(t, 3.0, d.Inflation, 1e-9)
	assert.Equal(t, 3.72, d.RiskFreeRate)
}

func TestHandleCommand(t *testing.T) {
	s, _, _, _ := newTestScheduler(t, mockMacro())
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/allocation"), "No allocation yet")
	assert.Contains(t, s.HandleCommand(ctx, "/refresh"), "MacroSentinel Allocation")
	assert.Contains(t, s.HandleCommand(ctx, "/allocation@MacroBot"), "CONTRACTION")
	assert.Contains(t, s.HandleCommand(ctx, "/macro"), "10y Treasury: 3.72%")
	assert.Contains(t, s.HandleCommand(ctx, "hello"), "Available commands")
}

func TestHandleCommand_MacroFetchedOnDemand(t *testing.T) {
	s, _, rec, _ := newTestScheduler(t, mockMacro())
	reply := s.HandleCommand(context.Background(), "/macro")
	assert.Contains(t, reply, "Macro Dashboard")
	assert.Len(t, rec.macros, 1)
}

func TestRegisterAll(t *testing.T) {
	s, _, _, _ := newTestScheduler(t, mockMacro())
	require.NoError(t, s.RegisterAll("0 30 17 * * 1-5", "0 0 9 * * *"))
	assert.Len(t, s.Cron.Entries(), 2)

	assert.Error(t, s.RegisterAll("bad", "0 0 9 * * *"))
}
