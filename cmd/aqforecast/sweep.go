package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/breatheroute/aqforecast/internal/api/models"
	"github.com/breatheroute/aqforecast/internal/app"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Forecast every city once and print the overview",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cmd.Flags().Changed("days") {
			cfg.Sweep.Days, _ = cmd.Flags().GetInt("days")
		}
		if cfg.Sweep.Days < 1 || cfg.Sweep.Days > maxDays {
			return fmt.Errorf("--days must be between 1 and %d", maxDays)
		}

		engine, err := buildEngine(ctx)
		if err != nil {
			return err
		}
		overview, err := app.NewSweep(cfg, engine, log).Run(ctx)
		if err != nil {
			return err
		}
		return printJSON(cmd, models.NewOverview(overview))
	},
}

func init() {
	sweepCmd.Flags().Int("days", 7, "forecast horizon per city (overrides SWEEP_DAYS)")
	rootCmd.AddCommand(sweepCmd)
}
