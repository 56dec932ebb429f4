package main

import (
	"github.com/spf13/cobra"

	"github.com/breatheroute/aqforecast/internal/api/models"
	"github.com/breatheroute/aqforecast/internal/gazetteer"
)

var citiesCmd = &cobra.Command{
	Use:   "cities",
	Short: "List supported cities",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printJSON(cmd, models.NewCities(gazetteer.Default().Unique()))
	},
}

func init() {
	rootCmd.AddCommand(citiesCmd)
}
