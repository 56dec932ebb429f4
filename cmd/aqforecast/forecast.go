package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/breatheroute/aqforecast/internal/api/models"
)

const maxDays = 14

var forecastCmd = &cobra.Command{
	Use:   "forecast [city]",
	Short: "Forecast daily PM2.5 for a city or coordinate",
	Example: "  aqforecast forecast kolkata --days 3\n" +
		"  aqforecast forecast --lat 28.61 --lon 77.21",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		if days < 1 || days > maxDays {
			return fmt.Errorf("--days must be between 1 and %d", maxDays)
		}

		loc, err := resolveLocation(cmd, args)
		if err != nil {
			return err
		}

		engine, err := buildEngine(cmd.Context())
		if err != nil {
			return err
		}
		out, err := engine.Forecast(loc.Lat, loc.Lon, days)
		if err != nil {
			return err
		}
		return printJSON(cmd, models.NewForecast(loc.Name, loc.Lat, loc.Lon, out))
	},
}

func init() {
	addLocationFlags(forecastCmd)
	forecastCmd.Flags().Int("days", 7, "number of days to forecast (1-14)")
	rootCmd.AddCommand(forecastCmd)
}
