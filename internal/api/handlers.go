package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"MacroSentinel/internal/allocation"
	"MacroSentinel/internal/collector"
	"MacroSentinel/internal/model"
)

const maxBodyBytes = 1 << 20

// AllocationResponse is the dashboard view of one allocation.
type AllocationResponse struct {
	At            *time.Time                `json:"at,omitempty"`
	Source        string                    `json:"source,omitempty"`
	Regime        allocation.Regime         `json:"regime"`
	Economic      model.EconomicSnapshot    `json:"economic"`
	Sectors       model.SectorSnapshot      `json:"sectors"`
	Weights       model.SectorWeightMap     `json:"weights"`
	Ranked        []allocation.RankedWeight `json:"ranked"`
	Shares        model.SectorWeightMap     `json:"shares"`
	Contributions []allocation.Contribution `json:"contributions"`
	Missing       []model.Sector            `json:"missing"`
}

// EvaluateRequest carries caller-supplied inputs for a direct evaluation.
type EvaluateRequest struct {
	Economic model.EconomicSnapshot         `json:"economic"`
	Sectors  map[string]model.SectorMetrics `json:"sectors"`
}

func newAllocationResponse(economic model.EconomicSnapshot, sectors model.SectorSnapshot, weights model.SectorWeightMap) AllocationResponse {
	if sectors == nil {
		sectors = model.SectorSnapshot{}
	}
	missing := allocation.MissingSectors(sectors)
	if missing == nil {
		missing = []model.Sector{}
	}
	return AllocationResponse{
		Regime:        allocation.ClassifyRegime(economic),
		Economic:      economic,
		Sectors:       sectors,
		Weights:       weights,
		Ranked:        allocation.Rank(weights),
		Shares:        allocation.PositiveShares(weights),
		Contributions: allocation.Explain(economic, sectors),
		Missing:       missing,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	run, _ := s.state.Latest()
	response := map[string]interface{}{
		"status":  "healthy",
		"service": "macrosentinel",
	}
	if run != nil {
		response["last_run"] = run.At
	}
	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetAllocation(w http.ResponseWriter, r *http.Request) {
	run, _ := s.state.Latest()
	if run == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no allocation run yet")
		return
	}
	resp := newAllocationResponse(run.Economic, run.Sectors, run.Weights)
	at := run.At
	resp.At = &at
	resp.Source = run.Source
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEvaluateAllocation(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	sectors, err := allocation.SnapshotFromNames(req.Sectors)
	if err != nil {
		if errors.Is(err, allocation.ErrUnknownSector) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	weights := allocation.Allocate(req.Economic, sectors)
	s.writeJSON(w, http.StatusOK, newAllocationResponse(req.Economic, sectors, weights))
}

func (s *Server) handleAllocationHistory(w http.ResponseWriter, r *http.Request) {
	limit := 30
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			s.writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}
	rows, err := s.recorder.RecentAllocations(limit)
	if err != nil {
		s.log.Error().Err(err).Msg("read allocation history")
		s.writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}

	type historyRow struct {
		At       time.Time              `json:"at"`
		Source   string                 `json:"source"`
		Economic model.EconomicSnapshot `json:"economic"`
		Weights  model.SectorWeightMap  `json:"weights"`
		Missing  int                    `json:"missing"`
	}
	out := make([]historyRow, len(rows))
	for i, row := range rows {
		out[i] = historyRow{At: row.At, Source: row.Source, Economic: row.Economic, Weights: row.Weights, Missing: row.Missing}
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetMacro(w http.ResponseWriter, r *http.Request) {
	_, d := s.state.Latest()
	if d == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no macro data yet")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"dashboard": d,
		"regime":    allocation.ClassifyRegime(d.Snapshot()),
	})
}

func (s *Server) handleGetSeries(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	window := r.URL.Query().Get("window")
	if window == "" {
		window = "1m"
	}
	if !slices.Contains(collector.Windows, window) {
		s.writeError(w, http.StatusBadRequest, "window must be one of "+strings.Join(collector.Windows, ", "))
		return
	}
	if s.series == nil {
		s.writeError(w, http.StatusServiceUnavailable, "price source not configured")
		return
	}

	series, err := s.series.CollectSeries(r.Context(), symbol, window)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Str("window", window).Msg("series fetch failed")
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if series.Points == nil {
		series.Points = []model.PricePoint{}
	}
	s.writeJSON(w, http.StatusOK, series)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error": message,
	})
}
