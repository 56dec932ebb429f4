package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/breatheroute/aqforecast/internal/gazetteer"
	"github.com/breatheroute/aqforecast/internal/geo"
)

var errNoLocation = errors.New("give a city name or both --lat and --lon")

// location is a resolved query point. Name is empty for raw coordinates.
type location struct {
	Name string
	Lat  float64
	Lon  float64
}

func addLocationFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64("lat", 0, "latitude in decimal degrees")
	f.Float64("lon", 0, "longitude in decimal degrees")
	cmd.MarkFlagsRequiredTogether("lat", "lon")
}

// resolveLocation reads a city argument or the --lat/--lon flags.
func resolveLocation(cmd *cobra.Command, args []string) (location, error) {
	hasCoords := cmd.Flags().Changed("lat")
	name := strings.Join(args, " ")

	switch {
	case name != "" && hasCoords:
		return location{}, errors.New("give either a city name or --lat/--lon, not both")
	case name != "":
		city, err := gazetteer.Default().Resolve(name)
		if err != nil {
			return location{}, fmt.Errorf("%q: %w", name, err)
		}
		return location{Name: city.Name, Lat: city.Lat, Lon: city.Lon}, nil
	case hasCoords:
		lat, _ := cmd.Flags().GetFloat64("lat")
		lon, _ := cmd.Flags().GetFloat64("lon")
		if err := geo.India.Validate(lat, lon); err != nil {
			return location{}, err
		}
		return location{Lat: lat, Lon: lon}, nil
	}
	return location{}, errNoLocation
}
