package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"MacroSentinel/internal/allocation"
	"MacroSentinel/internal/model"
)

func sampleCmd(_ *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Evaluate the built-in reference inputs without network access",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printRun(os.Stdout, sampleRun(time.Now()), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run as JSON")
	return cmd
}

func sampleRun(at time.Time) *model.AllocationRun {
	economic := allocation.SampleEconomic()
	sectors := allocation.SampleSectors()
	return &model.AllocationRun{
		Economic: economic,
		Sectors:  sectors,
		Weights:  allocation.Allocate(economic, sectors),
		Missing:  allocation.MissingSectors(sectors),
		Source:   "sample",
		At:       at,
	}
}
