package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cityscout/city-data-service/internal/models"
)

// GeocodeClient resolves free-text place queries to coordinates.
type GeocodeClient struct {
	apiKey string
	apiURL string
	client httpDoer
}

// NewGeocodeClient returns a GeocodeClient against apiURL (e.g. the Google
// geocoding endpoint). timeout bounds each request.
func NewGeocodeClient(apiKey, apiURL string, timeout time.Duration) (*GeocodeClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: geocode", ErrMissingAPIKey)
	}
	return &GeocodeClient{
		apiKey: apiKey,
		apiURL: apiURL,
		client: newHTTPClient(timeout),
	}, nil
}

type geocodeResponse struct {
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves query to a Location record without an ID. Returns ErrNoData
// when the provider has zero results for the query.
func (c *GeocodeClient) Geocode(ctx context.Context, query string) (models.Location, error) {
	base, err := url.Parse(c.apiURL)
	if err != nil {
		return models.Location{}, fmt.Errorf("invalid geocode URL: %w", err)
	}
	params := url.Values{}
	params.Set("address", query)
	params.Set("key", c.apiKey)
	base.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return models.Location{}, fmt.Errorf("create geocode request: %w", err)
	}

	var raw geocodeResponse
	if err := doJSON(ctx, c.client, req, "geocode", &raw); err != nil {
		return models.Location{}, err
	}
	return normalizeLocation(query, raw)
}

// normalizeLocation projects the first geocoding result onto a Location.
// Zero results is the distinct no-data condition, not an upstream failure.
func normalizeLocation(query string, raw geocodeResponse) (models.Location, error) {
	if len(raw.Results) == 0 {
		return models.Location{}, fmt.Errorf("%w: geocode %q", ErrNoData, query)
	}
	first := raw.Results[0]
	return models.Location{
		SearchQuery:    query,
		FormattedQuery: first.FormattedAddress,
		Latitude:       first.Geometry.Location.Lat,
		Longitude:      first.Geometry.Location.Lng,
	}, nil
}
