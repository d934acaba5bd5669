package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"MacroSentinel/internal/model"
)

// Run results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Recorder exposes allocation pipeline metrics to Prometheus.
type Recorder struct {
	runsTotal       *prometheus.CounterVec
	fetchErrors     *prometheus.CounterVec
	sectorWeight    *prometheus.GaugeVec
	collectDuration prometheus.Histogram
}

// New registers the metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		runsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrosentinel_allocation_runs_total",
				Help: "Total number of allocation runs by result",
			},
			[]string{"result"},
		),
		fetchErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrosentinel_fetch_errors_total",
				Help: "Total number of failed upstream fetches by source",
			},
			[]string{"source"},
		),
		sectorWeight: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "macrosentinel_sector_weight",
				Help: "Latest allocation weight per sector",
			},
			[]string{"sector"},
		),
		collectDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "macrosentinel_collect_duration_seconds",
				Help:    "Duration of a full collect cycle in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RunCompleted counts one allocation run.
func (r *Recorder) RunCompleted(result string) {
	r.runsTotal.WithLabelValues(result).Inc()
}

// FetchError counts one failed fetch against source.
func (r *Recorder) FetchError(source string) {
	r.fetchErrors.WithLabelValues(source).Inc()
}

// SetWeights publishes every sector weight of w.
func (r *Recorder) SetWeights(w model.SectorWeightMap) {
	for _, s := range model.AllSectors() {
		r.sectorWeight.WithLabelValues(s.String()).Set(w[s])
	}
}

func (r *Recorder) ObserveCollect(d time.Duration) {
	r.collectDuration.Observe(d.Seconds())
}
