package handler

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breatheroute/aqforecast/internal/api/models"
)

func TestQueryDays(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantDays int
		wantCode string
	}{
		{"absent uses default", "", DefaultDays, ""},
		{"explicit", "?days=3", 3, ""},
		{"out of range parses", "?days=20", 20, ""},
		{"not a number", "?days=soon", 0, "type"},
		{"fraction", "?days=1.5", 0, "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/v1/forecast/delhi"+tt.query, nil)
			days, ferr := queryDays(r)
			if tt.wantCode != "" {
				require.NotNil(t, ferr)
				assert.Equal(t, "days", ferr.Field)
				assert.Equal(t, tt.wantCode, ferr.Code)
				return
			}
			assert.Nil(t, ferr)
			assert.Equal(t, tt.wantDays, days)
		})
	}
}

func TestQueryFloat(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/predict-coords?lat=28.61&lon=abc", nil)

	lat, ferr := queryFloat(r, "lat")
	assert.Nil(t, ferr)
	assert.Equal(t, 28.61, lat)

	_, ferr = queryFloat(r, "lon")
	require.NotNil(t, ferr)
	assert.Equal(t, "type", ferr.Code)

	_, ferr = queryFloat(r, "days")
	require.NotNil(t, ferr)
	assert.Equal(t, "required", ferr.Code)
}

func TestFieldErrors_Days(t *testing.T) {
	tests := []struct {
		days        int
		wantCode    string
		wantMessage string
	}{
		{0, "gte", "must be at least 1"},
		{15, "lte", "must be at most 14"},
	}
	for _, tt := range tests {
		err := validate.Struct(models.DaysQuery{Days: tt.days})
		require.Error(t, err)

		fields := fieldErrors(err)
		require.Len(t, fields, 1)
		assert.Equal(t, "days", fields[0].Field)
		assert.Equal(t, tt.wantCode, fields[0].Code)
		assert.Equal(t, tt.wantMessage, fields[0].Message)
	}
	assert.NoError(t, validate.Struct(models.DaysQuery{Days: 14}))
}

func TestFieldErrors_Coordinates(t *testing.T) {
	err := validate.Struct(models.CoordinatesQuery{Lat: 91, Lon: -181, Days: 7})
	require.Error(t, err)

	fields := fieldErrors(err)
	require.Len(t, fields, 2)
	assert.Equal(t, "lat", fields[0].Field)
	assert.Equal(t, "must be at most 90", fields[0].Message)
	assert.Equal(t, "lon", fields[1].Field)
	assert.Equal(t, "must be at least -180", fields[1].Message)
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	fields := fieldErrors(errors.New("boom"))
	require.Len(t, fields, 1)
	assert.Equal(t, "query", fields[0].Field)
	assert.Equal(t, "boom", fields[0].Message)
}
