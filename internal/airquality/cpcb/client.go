// Package cpcb provides a client for a CPCB-style real-time station feed.
// The feed returns one record per station and pollutant with string-encoded
// averages; only PM2.5 records are converted into observations.
package cpcb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/breatheroute/aqforecast/internal/airquality"
	"github.com/breatheroute/aqforecast/internal/provider/resilience"
)

const (
	// ProviderName identifies this provider in logs and the health registry.
	ProviderName = "cpcb"

	// DefaultPageSize is the number of records requested per page.
	DefaultPageSize = 500

	pollutantPM25 = "PM2.5"
	timeLayout    = "02-01-2006 15:04:05"
)

// ClientConfig holds configuration for the feed client.
type ClientConfig struct {
	// BaseURL is the full feed URL, without paging parameters.
	BaseURL string

	// APIKey is sent as the api-key query parameter when set.
	APIKey string

	// HTTPClient executes requests. If nil, a resilient client is created and
	// registered in Registry.
	HTTPClient HTTPDoer

	// Registry receives success/failure reports. Defaults to resilience.GlobalRegistry.
	Registry *resilience.Registry

	// PageSize defaults to DefaultPageSize.
	PageSize int

	// Timeout for individual requests (default: 10s).
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client reads station observations from the feed.
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient HTTPDoer
	registry   *resilience.Registry
}

// NewClient creates a feed client.
func NewClient(cfg ClientConfig) *Client {
	registry := cfg.Registry
	if registry == nil {
		registry = resilience.GlobalRegistry
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		rc := resilience.NewClient(resilience.ClientConfig{
			Name:            ProviderName,
			Timeout:         timeout,
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		})
		registry.Register(ProviderName, rc)
		httpClient = rc
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		pageSize:   pageSize,
		httpClient: httpClient,
		registry:   registry,
	}
}

// Name implements airquality.ObservationSource.
func (c *Client) Name() string { return ProviderName }

type feedResponse struct {
	Total   int          `json:"total"`
	Offset  int          `json:"offset"`
	Records []feedRecord `json:"records"`
}

type feedRecord struct {
	Station      string `json:"station"`
	StationID    string `json:"station_id"`
	Latitude     string `json:"latitude"`
	Longitude    string `json:"longitude"`
	PollutantID  string `json:"pollutant_id"`
	PollutantAvg string `json:"pollutant_avg"`
	LastUpdate   string `json:"last_update"`
}

// LoadObservations pages through the feed and returns PM2.5 observations.
func (c *Client) LoadObservations(ctx context.Context) ([]airquality.Observation, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: no feed url configured", airquality.ErrSourceUnavailable)
	}

	var all []airquality.Observation
	offset := 0
	for {
		page, records, total, err := c.fetchPage(ctx, offset)
		if err != nil {
			c.registry.RecordFailure(ProviderName, err)
			return nil, fmt.Errorf("%w: %v", airquality.ErrSourceUnavailable, err)
		}
		all = append(all, page...)

		offset += c.pageSize
		if records == 0 || offset >= total {
			break
		}
	}
	c.registry.RecordSuccess(ProviderName)

	if len(all) == 0 {
		return nil, airquality.ErrNoObservations
	}
	return all, nil
}

// fetchPage fetches one page and returns its observations, the number of raw
// records on the page and the total record count.
func (c *Client) fetchPage(ctx context.Context, offset int) ([]airquality.Observation, int, int, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(c.pageSize))
	q.Set("filters[pollutant_id]", pollutantPM25)
	if c.apiKey != "" {
		q.Set("api-key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("fetch records: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, 0, fmt.Errorf("unexpected status %d from feed", resp.StatusCode)
	}

	var result feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, 0, 0, fmt.Errorf("decode feed response: %w", err)
	}

	observations := make([]airquality.Observation, 0, len(result.Records))
	for i := range result.Records {
		if o, ok := toObservation(&result.Records[i]); ok {
			observations = append(observations, o)
		}
	}

	return observations, len(result.Records), result.Total, nil
}

// toObservation converts a feed record. Non-PM2.5 records and "NA" values are dropped.
func toObservation(r *feedRecord) (airquality.Observation, bool) {
	if !strings.EqualFold(strings.TrimSpace(r.PollutantID), pollutantPM25) {
		return airquality.Observation{}, false
	}

	lat, errLat := strconv.ParseFloat(strings.TrimSpace(r.Latitude), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(r.Longitude), 64)
	pm25, errPM := strconv.ParseFloat(strings.TrimSpace(r.PollutantAvg), 64)
	if errLat != nil || errLon != nil || errPM != nil {
		return airquality.Observation{}, false
	}

	measuredAt, _ := time.Parse(timeLayout, r.LastUpdate)

	o := airquality.Observation{
		StationID:  r.StationID,
		Name:       r.Station,
		Lat:        lat,
		Lon:        lon,
		PM25:       pm25,
		MeasuredAt: measuredAt,
	}
	if o.StationID == "" {
		o.StationID = r.Station
	}
	return o, o.Valid()
}
