package main

import (
	"hose_installation/internal/config"
	"hose_installation/internal/logger"

	"github.com/spf13/cobra"
)

// app is what every subcommand gets once the configuration is loaded.
type app struct {
	configPath string
	cfg        *config.Config
	log        *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "hose-installation",
		Short:         "Guided hydraulic hose installation service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultPath, "Path to the YAML configuration")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newStatusCmd(a))
	cmd.AddCommand(newMigrateCmd(a))
	cmd.AddCommand(newSeedCmd(a))

	return cmd
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.Get(cfg.Log.Level)
	logger.SetLevel(cfg.Log.Level)
	return nil
}
