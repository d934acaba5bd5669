package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"MacroSentinel/internal/api"
	"MacroSentinel/internal/metrics"
	"MacroSentinel/internal/notifier"
	"MacroSentinel/internal/recorder"
	"MacroSentinel/internal/scheduler"
)

func serveCmd(a *app) *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler, dashboard API and Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), runOnStart)
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-now", false, "run one allocation refresh at startup")
	return cmd
}

func (a *app) serve(ctx context.Context, runOnStart bool) error {
	log := a.log
	cfg := a.cfg
	log.Info().Msg("MacroSentinel starting")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	col, err := buildCollector(cfg, log, m)
	if err != nil {
		return err
	}

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
			defer sr.Close()
		}
	}

	var tn *notifier.TelegramNotifier
	var n scheduler.Notifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier("", cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		n = tn
	} else {
		log.Warn().Msg("telegram not configured, notifications disabled")
	}

	sched := scheduler.NewScheduler(ctx, col, n, rec, m, log)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.MacroCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
	}

	srv := api.New(api.Config{
		Addr:        cfg.HTTP.Addr,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Log:         log,
		State:       sched,
		Series:      col,
		Recorder:    rec,
		Gatherer:    reg,
	})
	srvErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	if runOnStart {
		go func() {
			if _, err := sched.RunNow(ctx); err != nil {
				log.Error().Err(err).Msg("startup refresh failed")
			}
		}()
	}

	log.Info().Msg("MacroSentinel is running. Press Ctrl+C to stop.")
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received, stopping")
	case err := <-srvErr:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown")
	}
	log.Info().Msg("MacroSentinel stopped")
	return nil
}
