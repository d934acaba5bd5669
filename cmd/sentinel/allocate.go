package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"MacroSentinel/internal/model"
	"MacroSentinel/internal/notifier"
	"MacroSentinel/internal/recorder"
	"MacroSentinel/internal/scheduler"
)

func allocateCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		record bool
	)
	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Collect live data once and print the sector allocation",
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := buildCollector(a.cfg, a.log, nil)
			if err != nil {
				return err
			}
			var rec recorder.Recorder = recorder.NewNoopRecorder()
			if record {
				sr, err := recorder.NewSQLiteRecorder(a.cfg.Database.SQLitePath, a.log)
				if err != nil {
					return err
				}
				defer sr.Close()
				rec = sr
			}

			sched := scheduler.NewScheduler(cmd.Context(), col, nil, rec, nil, a.log)
			run, err := sched.RunNow(cmd.Context())
			if err != nil {
				return err
			}
			return printRun(os.Stdout, run, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run as JSON")
	cmd.Flags().BoolVar(&record, "record", false, "store the run in the SQLite history")
	return cmd
}

func printRun(w io.Writer, run *model.AllocationRun, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}
	_, err := fmt.Fprint(w, notifier.PlainText(notifier.FormatAllocationReport(run)))
	return err
}
