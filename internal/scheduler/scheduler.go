package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"MacroSentinel/internal/allocation"
	"MacroSentinel/internal/collector"
	"MacroSentinel/internal/metrics"
	"MacroSentinel/internal/model"
	"MacroSentinel/internal/notifier"
	"MacroSentinel/internal/recorder"
)

const sendRetries = 3

// Notifier delivers formatted reports.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages all cron tasks and holds the latest results.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  Notifier // nil disables notifications
	Recorder  recorder.Recorder
	Metrics   *metrics.Recorder // nil disables metrics
	Ctx       context.Context

	log zerolog.Logger
	now func() time.Time

	mu     sync.RWMutex
	latest *model.AllocationRun
	macro  *model.MacroDashboard
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, n Notifier, rec recorder.Recorder, m *metrics.Recorder, log zerolog.Logger) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  n,
		Recorder:  rec,
		Metrics:   m,
		Ctx:       ctx,
		log:       log.With().Str("component", "scheduler").Logger(),
		now:       time.Now,
	}
}

// RegisterAll registers the allocation refresh and macro refresh tasks.
func (s *Scheduler) RegisterAll(refreshCron, macroCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddFunc(macroCron, s.macroTask); err != nil {
		return fmt.Errorf("register macro task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow collects, allocates, stores and records one run synchronously.
func (s *Scheduler) RunNow(ctx context.Context) (*model.AllocationRun, error) {
	start := s.now()
	in, err := s.Collector.Collect(ctx)
	if s.Metrics != nil {
		s.Metrics.ObserveCollect(s.now().Sub(start))
	}
	if err != nil {
		s.runCompleted(metrics.ResultError)
		return nil, fmt.Errorf("collect: %w", err)
	}

	economic := in.Macro.Snapshot()
	run := &model.AllocationRun{
		Economic: economic,
		Sectors:  in.Sectors,
		Weights:  allocation.Allocate(economic, in.Sectors),
		Missing:  in.Missing,
		Source:   s.Collector.Macro.Name() + "/" + s.Collector.Prices.Name(),
		At:       s.now(),
	}
	macro := in.Macro

	s.mu.Lock()
	s.latest = run
	s.macro = &macro
	s.mu.Unlock()

	if err := s.Recorder.RecordAllocation(run); err != nil {
		s.log.Error().Err(err).Msg("record allocation")
	}
	if s.Metrics != nil {
		s.Metrics.SetWeights(run.Weights)
	}
	s.runCompleted(metrics.ResultOK)

	top := allocation.Rank(run.Weights)[0]
	s.log.Info().
		Str("regime", string(allocation.ClassifyRegime(economic))).
		Str("top_sector", top.Sector.String()).
		Float64("top_weight", top.Weight).
		Int("missing", len(run.Missing)).
		Msg("allocation run completed")
	return run, nil
}

// RefreshMacro fetches the macro dashboard and stores it as latest.
func (s *Scheduler) RefreshMacro(ctx context.Context) (*model.MacroDashboard, error) {
	d, err := s.Collector.CollectMacro(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect macro: %w", err)
	}
	s.mu.Lock()
	s.macro = d
	s.mu.Unlock()

	if err := s.Recorder.RecordMacro(d); err != nil {
		s.log.Error().Err(err).Msg("record macro")
	}
	return d, nil
}

// Latest returns the most recent run and macro dashboard; either may be nil.
func (s *Scheduler) Latest() (*model.AllocationRun, *model.MacroDashboard) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.macro
}

func (s *Scheduler) refreshTask() {
	s.log.Info().Msg("running allocation refresh")
	run, err := s.RunNow(s.Ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("allocation refresh failed")
		s.trySend(fmt.Sprintf("❌ Allocation refresh failed: %v", err))
		return
	}
	s.trySend(notifier.FormatAllocationReport(run))
}

func (s *Scheduler) macroTask() {
	s.log.Info().Msg("running macro refresh")
	if _, err := s.RefreshMacro(s.Ctx); err != nil {
		s.log.Error().Err(err).Msg("macro refresh failed")
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	// "/allocation@SomeBot" in group chats
	if i := strings.IndexByte(command, '@'); i > 0 {
		command = command[:i]
	}
	switch strings.ToLower(command) {
	case "/allocation":
		run, _ := s.Latest()
		if run == nil {
			return "No allocation yet. Send /refresh to run one now."
		}
		return notifier.FormatAllocationReport(run)
	case "/refresh":
		run, err := s.RunNow(ctx)
		if err != nil {
			return fmt.Sprintf("❌ Allocation refresh failed: %v", err)
		}
		return notifier.FormatAllocationReport(run)
	case "/macro":
		_, d := s.Latest()
		if d == nil {
			var err error
			if d, err = s.RefreshMacro(ctx); err != nil {
				return fmt.Sprintf("❌ Macro refresh failed: %v", err)
			}
		}
		return notifier.FormatMacroReport(d)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) runCompleted(result string) {
	if s.Metrics != nil {
		s.Metrics.RunCompleted(result)
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, sendRetries); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
