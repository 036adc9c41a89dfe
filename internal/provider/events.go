package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cityscout/city-data-service/internal/models"
)

// EventsClient fetches upcoming events near a coordinate pair.
type EventsClient struct {
	apiKey string
	apiURL string
	client httpDoer
}

// NewEventsClient returns an EventsClient against apiURL (e.g. the Meetup
// upcoming-events endpoint).
func NewEventsClient(apiKey, apiURL string, timeout time.Duration) (*EventsClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: events", ErrMissingAPIKey)
	}
	return &EventsClient{
		apiKey: apiKey,
		apiURL: apiURL,
		client: newHTTPClient(timeout),
	}, nil
}

type eventsResponse struct {
	Events []struct {
		Link    string `json:"link"`
		Name    string `json:"name"`
		Created int64  `json:"created"`
		Group   struct {
			Name string `json:"name"`
		} `json:"group"`
	} `json:"events"`
}

// UpcomingEvents returns the provider's events for the coordinates, in
// provider order. LocationID is attached by the resolver.
func (c *EventsClient) UpcomingEvents(ctx context.Context, latitude, longitude float64) ([]models.Event, error) {
	base, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid events URL: %w", err)
	}
	params := url.Values{}
	params.Set("lat", formatCoord(latitude))
	params.Set("lon", formatCoord(longitude))
	params.Set("sign", "true")
	params.Set("photo-host", "public")
	params.Set("page", "20")
	params.Set("key", c.apiKey)
	base.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create events request: %w", err)
	}

	var raw eventsResponse
	if err := doJSON(ctx, c.client, req, "events", &raw); err != nil {
		return nil, err
	}
	return normalizeEvents(raw), nil
}

// normalizeEvents maps raw events to Event records. Creation timestamps
// arrive as unix milliseconds and leave as calendar dates.
func normalizeEvents(raw eventsResponse) []models.Event {
	events := make([]models.Event, 0, len(raw.Events))
	for _, e := range raw.Events {
		events = append(events, models.Event{
			Link:         e.Link,
			Name:         e.Name,
			CreationDate: calendarDate(time.UnixMilli(e.Created).UTC()),
			Host:         e.Group.Name,
		})
	}
	return events
}
