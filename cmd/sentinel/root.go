package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"MacroSentinel/internal/config"
	"MacroSentinel/internal/logger"
)

// app carries what every subcommand needs after the root pre-run.
type app struct {
	cfgPath string
	envFile string
	cfg     *config.Config
	log     zerolog.Logger
}

func Execute(ctx context.Context) error {
	a := &app{}
	root := &cobra.Command{
		Use:           "sentinel",
		Short:         "MacroSentinel macro-driven sector allocation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", defaultCfg, "path to the YAML config file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the config")

	root.AddCommand(serveCmd(a), allocateCmd(a), sampleCmd(a))
	return root.ExecuteContext(ctx)
}

func (a *app) init() error {
	// A missing .env is normal outside development.
	if err := godotenv.Load(a.envFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load %s: %w", a.envFile, err)
	}

	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	a.cfg = cfg
	a.log = logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(a.log)
	return nil
}
