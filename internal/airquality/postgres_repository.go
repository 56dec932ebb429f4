package airquality

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgxpool.Pool used by PostgresSource.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads observations from the station_observations table.
type PostgresSource struct {
	db Querier
}

// NewPostgresSource creates a Postgres-backed observation source.
func NewPostgresSource(db Querier) *PostgresSource {
	return &PostgresSource{db: db}
}

// Name implements ObservationSource.
func (s *PostgresSource) Name() string { return "postgres" }

// LoadObservations returns the latest reading per station.
func (s *PostgresSource) LoadObservations(ctx context.Context) ([]Observation, error) {
	if s.db == nil {
		return nil, ErrSourceUnavailable
	}

	query := `
		SELECT DISTINCT ON (station_id)
			station_id, COALESCE(station_name, ''), lat, lon, pm25_value, measured_at
		FROM station_observations
		WHERE pm25_value IS NOT NULL
		ORDER BY station_id, measured_at DESC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query observations: %v", ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var observations []Observation
	for rows.Next() {
		var o Observation
		if err := rows.Scan(&o.StationID, &o.Name, &o.Lat, &o.Lon, &o.PM25, &o.MeasuredAt); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		if o.Valid() {
			observations = append(observations, o)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}

	if len(observations) == 0 {
		return nil, ErrNoObservations
	}
	return observations, nil
}
