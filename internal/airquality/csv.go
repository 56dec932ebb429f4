package airquality

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// CSV column names.
const (
	ColumnLat         = "lat"
	ColumnLon         = "lon"
	ColumnPM25        = "pm25_value"
	ColumnStationID   = "station_id"
	ColumnStationName = "station_name"
	ColumnMeasuredAt  = "measured_at"
)

// CSVSource reads station observations from a CSV export with a header row.
type CSVSource struct {
	path   string
	logger zerolog.Logger
}

// NewCSVSource creates a CSV-backed observation source.
func NewCSVSource(path string, logger zerolog.Logger) *CSVSource {
	return &CSVSource{path: path, logger: logger}
}

// Name implements ObservationSource.
func (s *CSVSource) Name() string { return "csv" }

// LoadObservations reads the whole file.
func (s *CSVSource) LoadObservations(ctx context.Context) ([]Observation, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, s.path)
		}
		return nil, fmt.Errorf("open observations file: %w", err)
	}
	defer f.Close()

	obs, skipped, err := ParseCSV(ctx, f)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		s.logger.Warn().
			Str("path", s.path).
			Int("skipped", skipped).
			Msg("skipped unusable station rows")
	}
	if len(obs) == 0 {
		return nil, ErrNoObservations
	}
	return obs, nil
}

// ParseCSV decodes observations from r. The header must name the lat, lon and
// pm25_value columns; station_id, station_name and measured_at are optional.
// Rows that fail to parse or are not Valid are skipped and counted.
func ParseCSV(ctx context.Context, r io.Reader) ([]Observation, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, ErrNoObservations
		}
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{ColumnLat, ColumnLon, ColumnPM25} {
		if _, ok := cols[required]; !ok {
			return nil, 0, fmt.Errorf("csv header missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var (
		observations []Observation
		skipped      int
		line         = 1
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, 0, fmt.Errorf("read csv line %d: %w", line, err)
		}

		lat, errLat := strconv.ParseFloat(field(record, ColumnLat), 64)
		lon, errLon := strconv.ParseFloat(field(record, ColumnLon), 64)
		pm25, errPM := strconv.ParseFloat(field(record, ColumnPM25), 64)
		if errLat != nil || errLon != nil || errPM != nil {
			skipped++
			continue
		}

		o := Observation{
			StationID: field(record, ColumnStationID),
			Name:      field(record, ColumnStationName),
			Lat:       lat,
			Lon:       lon,
			PM25:      pm25,
		}
		if ts := field(record, ColumnMeasuredAt); ts != "" {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				o.MeasuredAt = t
			}
		}
		if !o.Valid() {
			skipped++
			continue
		}
		observations = append(observations, o)
	}

	return observations, skipped, nil
}
