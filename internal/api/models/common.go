// Package models holds the JSON request and response shapes of the forecast
// API. Field names are snake_case to match existing clients.
package models

import (
	"fmt"
	"math"
	"time"
)

// HealthStatus represents the health status of the service.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

// Timestamp marshals as RFC 3339.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler for Timestamp.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(time.RFC3339) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Timestamp.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	parsed, err := parseQuoted(data, time.RFC3339)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// DateLayout is the calendar-date wire format.
const DateLayout = "2006-01-02"

// Date marshals as a calendar date (YYYY-MM-DD) in the value's own location.
type Date time.Time

// MarshalJSON implements json.Marshaler for Date.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(d).Format(DateLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	parsed, err := parseQuoted(data, DateLayout)
	if err != nil {
		return err
	}
	*d = Date(parsed)
	return nil
}

// String returns the wire form.
func (d Date) String() string {
	return time.Time(d).Format(DateLayout)
}

func parseQuoted(data []byte, layout string) (time.Time, error) {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return time.Time{}, fmt.Errorf("expected a quoted string, got %s", data)
	}
	return time.Parse(layout, string(data[1:len(data)-1]))
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
