// Command aqforecast answers prediction and forecast queries from the shell
// using the same configuration and engine bootstrap as the API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/breatheroute/aqforecast/internal/app"
	"github.com/breatheroute/aqforecast/internal/config"
	"github.com/breatheroute/aqforecast/internal/forecast"
)

// Version is set at compile time via ldflags.
var Version = "dev"

var (
	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "aqforecast",
	Short: "PM2.5 estimates and forecasts for Indian cities",
	Long: "Estimates current PM2.5 and multi-day forecasts for a city or coordinate. " +
		"Uses a random forest trained on station observations when available and a regional heuristic otherwise.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		log = cfg.Logger(app.ServiceName, Version).Output(cmd.ErrOrStderr())

		if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
			log = log.Level(zerolog.Disabled)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress log output on stderr")
}

// buildEngine bootstraps the engine from the loaded configuration.
func buildEngine(ctx context.Context) (*forecast.Engine, error) {
	return app.BuildEngine(ctx, cfg, app.EngineOptions{Logger: log})
}

// printJSON writes v to the command's stdout, indented.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
