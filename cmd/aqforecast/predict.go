package main

import (
	"github.com/spf13/cobra"

	"github.com/breatheroute/aqforecast/internal/api/models"
)

var predictCmd = &cobra.Command{
	Use:   "predict [city]",
	Short: "Estimate current PM2.5 for a city or coordinate",
	Example: "  aqforecast predict delhi\n" +
		"  aqforecast predict --lat 19.07 --lon 72.88",
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := resolveLocation(cmd, args)
		if err != nil {
			return err
		}

		engine, err := buildEngine(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, models.NewPrediction(loc.Name, loc.Lat, loc.Lon, engine.Predict(loc.Lat, loc.Lon)))
	},
}

func init() {
	addLocationFlags(predictCmd)
	rootCmd.AddCommand(predictCmd)
}
