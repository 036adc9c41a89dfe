package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cityscout/city-data-service/internal/models"
)

// WeatherClient fetches the daily forecast for a coordinate pair.
type WeatherClient struct {
	apiKey string
	apiURL string
	client httpDoer
}

// NewWeatherClient returns a WeatherClient. The key is part of the URL path
// for this provider, not a query parameter.
func NewWeatherClient(apiKey, apiURL string, timeout time.Duration) (*WeatherClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: weather", ErrMissingAPIKey)
	}
	return &WeatherClient{
		apiKey: apiKey,
		apiURL: apiURL,
		client: newHTTPClient(timeout),
	}, nil
}

type forecastResponse struct {
	Daily struct {
		Data []struct {
			Summary string `json:"summary"`
			Time    int64  `json:"time"`
		} `json:"data"`
	} `json:"daily"`
}

// DailyForecast returns one Forecast per forecast day, in provider order.
// LocationID is left zero; the resolver attaches it before persisting.
func (c *WeatherClient) DailyForecast(ctx context.Context, latitude, longitude float64) ([]models.Forecast, error) {
	base, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid weather URL: %w", err)
	}
	base.Path, err = url.JoinPath(base.Path, c.apiKey, formatCoord(latitude)+","+formatCoord(longitude))
	if err != nil {
		return nil, fmt.Errorf("build weather path: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create weather request: %w", err)
	}

	var raw forecastResponse
	if err := doJSON(ctx, c.client, req, "weather", &raw); err != nil {
		return nil, err
	}
	return normalizeForecasts(raw), nil
}

// normalizeForecasts maps each daily entry to a Forecast. Times arrive as
// unix seconds and leave as calendar dates.
func normalizeForecasts(raw forecastResponse) []models.Forecast {
	forecasts := make([]models.Forecast, 0, len(raw.Daily.Data))
	for _, day := range raw.Daily.Data {
		forecasts = append(forecasts, models.Forecast{
			Forecast: day.Summary,
			Time:     calendarDate(time.Unix(day.Time, 0).UTC()),
		})
	}
	return forecasts
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
