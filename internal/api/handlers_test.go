package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroSentinel/internal/allocation"
	"MacroSentinel/internal/metrics"
	"MacroSentinel/internal/model"
	"MacroSentinel/internal/recorder"
)

type fakeState struct {
	run   *model.AllocationRun
	macro *model.MacroDashboard
}

func (f *fakeState) Latest() (*model.AllocationRun, *model.MacroDashboard) { return f.run, f.macro }

type fakeSeries struct {
	gotSymbol, gotWindow string
	err                  error
}

func (f *fakeSeries) CollectSeries(_ context.Context, symbol, window string) (*model.PriceSeries, error) {
	f.gotSymbol, f.gotWindow = symbol, window
	if f.err != nil {
		return nil, f.err
	}
	return &model.PriceSeries{Symbol: symbol, Window: window, Points: []model.PricePoint{{Date: "2024-09-30", Value: 1}}}, nil
}

type fakeHistory struct {
	recorder.NoopRecorder
	rows  []recorder.AllocationRow
	limit int
}

func (f *fakeHistory) RecentAllocations(limit int) ([]recorder.AllocationRow, error) {
	f.limit = limit
	return f.rows, nil
}

func newTestServer(state *fakeState, series SeriesSource, rec recorder.Recorder) *Server {
	return New(Config{
		Log:      zerolog.Nop(),
		State:    state,
		Series:   series,
		Recorder: rec,
		Gatherer: prometheus.NewRegistry(),
	})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(&fakeState{}, nil, nil), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.NotContains(t, rec.Body.String(), "last_run")
}

func TestGetAllocation_UnavailableBeforeFirstRun(t *testing.T) {
	rec := do(t, newTestServer(&fakeState{}, nil, nil), http.MethodGet, "/api/allocation", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no allocation run yet")
}

func TestGetAllocation_Latest(t *testing.T) {
	econ := allocation.SampleEconomic()
	sectors := allocation.SampleSectors()
	at := time.Date(2024, 9, 30, 17, 30, 0, 0, time.UTC)
	state := &fakeState{run: &model.AllocationRun{
		Economic: econ, Sectors: sectors, Weights: allocation.Allocate(econ, sectors),
		Source: "bls+alphavantage/polygon", At: at,
	}}

	rec := do(t, newTestServer(state, nil, nil), http.MethodGet, "/api/allocation", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AllocationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, allocation.RegimeContraction, resp.Regime)
	assert.Equal(t, "bls+alphavantage/polygon", resp.Source)
	require.NotNil(t, resp.At)
	assert.True(t, at.Equal(*resp.At))
	require.Len(t, resp.Ranked, int(model.SectorCount))
	assert.Equal(t, model.Healthcare, resp.Ranked[0].Sector)
	assert.Equal(t, state.run.Weights, resp.Weights)
	assert.Empty(t, resp.Missing)
	assert.Len(t, resp.Contributions, int(model.SectorCount))
}

func TestEvaluateAllocation(t *testing.T) {
	body := `{"economic":{"inflation":2.0,"gdp_growth":2.0,"interest_rate":4.0},
		"sectors":{"Technology":{"momentum":0.1,"volatility":0.1}}}`
	rec := do(t, newTestServer(&fakeState{}, nil, nil), http.MethodPost, "/api/allocation", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AllocationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, allocation.RegimeExpansion, resp.Regime)
	assert.InDelta(t, 0.3, resp.Weights[model.Technology], 1e-9)
	assert.InDelta(t, 0.2, resp.Weights[model.Industrials], 1e-9)
	assert.Zero(t, resp.Weights[model.Healthcare])
	assert.Len(t, resp.Missing, int(model.SectorCount)-1)
	assert.Nil(t, resp.At)
}

func TestEvaluateAllocation_BadRequests(t *testing.T) {
	s := newTestServer(&fakeState{}, nil, nil)
	tests := []struct {
		name, body, want string
	}{
		{"unknown sector", `{"economic":{},"sectors":{"Crypto":{"momentum":1}}}`, "unknown sector"},
		{"malformed json", `{"economic":`, "invalid JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/allocation", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestAllocationHistory(t *testing.T) {
	var w model.SectorWeightMap
	w[model.Utilities] = 0.2
	hist := &fakeHistory{rows: []recorder.AllocationRow{{ID: 2, Source: "mock", Weights: w, Missing: 1}}}
	s := newTestServer(&fakeState{}, nil, hist)

	rec := do(t, s, http.MethodGet, "/api/allocation/history?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, hist.limit)
	assert.Contains(t, rec.Body.String(), `"Utilities":0.2`)
	assert.Contains(t, rec.Body.String(), `"missing":1`)

	rec = do(t, s, http.MethodGet, "/api/allocation/history?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMacro(t *testing.T) {
	rec := do(t, newTestServer(&fakeState{}, nil, nil), http.MethodGet, "/api/macro", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	state := &fakeState{macro: &model.MacroDashboard{Inflation: 3.1, GDPGrowth: 2.0, RiskFreeRate: 4.1}}
	rec = do(t, newTestServer(state, nil, nil), http.MethodGet, "/api/macro", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"regime":"CONTRACTION"`)
	assert.Contains(t, rec.Body.String(), `"inflation":3.1`)
}

func TestGetSeries(t *testing.T) {
	series := &fakeSeries{}
	s := newTestServer(&fakeState{}, series, nil)

	rec := do(t, s, http.MethodGet, "/api/series/spy?window=1w", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SPY", series.gotSymbol)
	assert.Equal(t, "1w", series.gotWindow)
	assert.Contains(t, rec.Body.String(), `"2024-09-30"`)

	rec = do(t, s, http.MethodGet, "/api/series/SPY", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1m", series.gotWindow)

	rec = do(t, s, http.MethodGet, "/api/series/SPY?window=5y", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	series.err = errors.New("upstream down")
	rec = do(t, s, http.MethodGet, "/api/series/SPY?window=3m", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetSeries_NoSource(t *testing.T) {
	rec := do(t, newTestServer(&fakeState{}, nil, nil), http.MethodGet, "/api/series/SPY", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.RunCompleted(metrics.ResultOK)

	s := New(Config{Log: zerolog.Nop(), State: &fakeState{}, Gatherer: reg})
	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `macrosentinel_allocation_runs_total{result="ok"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(&fakeState{}, nil, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/allocation", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
