package main

import (
	"github.com/spf13/cobra"

	cloudaws "github.com/siesta-sh/siesta/internal/cloud/aws"
	"github.com/siesta-sh/siesta/internal/schedule"
)

var runRegions []string

// runCmd applies one rule across all configured regions and exits.
var runCmd = &cobra.Command{
	Use:   "run <stop|start>",
	Short: "Apply one rule across all configured regions and exit",
	Args:  cobra.ExactArgs(1),
	Example: `  siesta run stop                   # stop running instances tagged Autostop=true
  siesta run start                  # start stopped instances tagged Autostart=true
  siesta run stop -r us-east-1      # restrict to one region`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVarP(&runRegions, "region", "r", nil, "Regions to process (default from config)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rule, err := schedule.RuleByName(args[0])
	if err != nil {
		return err
	}
	rule = applyTagKeys(rule, cfg)

	regions := cfg.Regions
	if len(runRegions) > 0 {
		regions = runRegions
	}

	logger := newLogger(cfg)
	runner := schedule.NewRunner(cloudaws.NewFleet(), regions, logger, nil)

	report, err := runner.Run(cmd.Context(), rule)
	if report != nil {
		logger.Info().
			Str("rule", rule.Name).
			Int("transitioned", report.Transitioned()).
			Int("regions_failed", report.Failed()).
			Msg("run complete")
	}
	return err
}
