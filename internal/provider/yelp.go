package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cityscout/city-data-service/internal/models"
)

// BusinessClient searches reviewed businesses near a coordinate pair.
// The only provider that authenticates with a bearer token header.
type BusinessClient struct {
	apiKey string
	apiURL string
	client httpDoer
}

// NewBusinessClient returns a BusinessClient against apiURL (e.g. the Yelp
// business-search endpoint).
func NewBusinessClient(apiKey, apiURL string, timeout time.Duration) (*BusinessClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: yelp", ErrMissingAPIKey)
	}
	return &BusinessClient{
		apiKey: apiKey,
		apiURL: apiURL,
		client: newHTTPClient(timeout),
	}, nil
}

type businessResponse struct {
	Businesses []struct {
		URL      string  `json:"url"`
		Name     string  `json:"name"`
		Rating   float64 `json:"rating"`
		Price    string  `json:"price"`
		ImageURL string  `json:"image_url"`
	} `json:"businesses"`
}

// Search returns the provider's businesses for the coordinates, in provider
// order. LocationID is attached by the resolver.
func (c *BusinessClient) Search(ctx context.Context, latitude, longitude float64) ([]models.Business, error) {
	base, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid yelp URL: %w", err)
	}
	params := url.Values{}
	params.Set("latitude", formatCoord(latitude))
	params.Set("longitude", formatCoord(longitude))
	base.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create yelp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	var raw businessResponse
	if err := doJSON(ctx, c.client, req, "yelp", &raw); err != nil {
		return nil, err
	}
	return normalizeBusinesses(raw), nil
}

// normalizeBusinesses is a fixed field projection; a missing price tier or
// image stays a zero value rather than failing the mapping.
func normalizeBusinesses(raw businessResponse) []models.Business {
	businesses := make([]models.Business, 0, len(raw.Businesses))
	for _, b := range raw.Businesses {
		businesses = append(businesses, models.Business{
			URL:      b.URL,
			Name:     b.Name,
			Rating:   b.Rating,
			Price:    b.Price,
			ImageURL: b.ImageURL,
		})
	}
	return businesses
}
