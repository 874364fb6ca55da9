package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/siesta-sh/siesta/internal/config"
	"github.com/siesta-sh/siesta/internal/schedule"
	"github.com/siesta-sh/siesta/internal/telemetry"
)

var (
	version = "0.1.0"
	cfgFile string
	debug   bool

	rootCmd = &cobra.Command{
		Use:   "siesta",
		Short: "Tag-driven EC2 instance scheduler",
		Long: `Siesta - Tag-driven EC2 instance scheduler

Siesta parks and wakes EC2 instances based on tags. Instances tagged
Autostop=true are stopped while running; instances tagged Autostart=true
are started while stopped. Run one-shot from an external scheduler, or
let the daemon keep its own interval.`,
		Version: version,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`Siesta {{.Version}} - Tag-driven EC2 instance scheduler
`)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.Load(cfgFile)
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level := cfg.Log.Level
	if debug {
		level = "debug"
	}
	return telemetry.NewLogger("siesta", level, true)
}

// applyTagKeys overlays the configured tag keys onto the built-in rules.
func applyTagKeys(rule schedule.Rule, cfg *config.Config) schedule.Rule {
	switch rule.Action {
	case schedule.ActionStop:
		rule.TagKey = cfg.Stop.Tag
	case schedule.ActionStart:
		rule.TagKey = cfg.Start.Tag
	}
	return rule
}
