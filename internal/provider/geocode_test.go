package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewGeocodeClient_MissingAPIKey(t *testing.T) {
	client, err := NewGeocodeClient("", "https://api.test.com", 2*time.Second)
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("NewGeocodeClient() error = %v, want ErrMissingAPIKey", err)
	}
	if client != nil {
		t.Errorf("NewGeocodeClient() expected nil client on error")
	}
}

func TestGeocodeClient_Geocode_Success(t *testing.T) {
	apiResp := map[string]interface{}{
		"results": []map[string]interface{}{
			{
				"formatted_address": "Seattle, WA, USA",
				"geometry": map[string]interface{}{
					"location": map[string]interface{}{
						"lat": 47.6062,
						"lng": -122.3321,
					},
				},
			},
			{
				"formatted_address": "Seattle, Jakarta, Indonesia",
			},
		},
	}

	var gotAddress, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAddress = r.URL.Query().Get("address")
		gotKey = r.URL.Query().Get("key")
		_ = json.NewEncoder(w).Encode(apiResp)
	}))
	defer server.Close()

	client, err := NewGeocodeClient("test-key", server.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("NewGeocodeClient() error: %v", err)
	}

	loc, err := client.Geocode(context.Background(), "seattle")
	if err != nil {
		t.Fatalf("Geocode() error: %v", err)
	}

	if gotAddress != "seattle" {
		t.Errorf("request address = %q, want %q", gotAddress, "seattle")
	}
	if gotKey != "test-key" {
		t.Errorf("request key = %q, want %q", gotKey, "test-key")
	}
	if loc.SearchQuery != "seattle" {
		t.Errorf("SearchQuery = %q, want %q", loc.SearchQuery, "seattle")
	}
	if loc.FormattedQuery != "Seattle, WA, USA" {
		t.Errorf("FormattedQuery = %q, want first result's address", loc.FormattedQuery)
	}
	if loc.Latitude != 47.6062 || loc.Longitude != -122.3321 {
		t.Errorf("coordinates = (%v, %v), want (47.6062, -122.3321)", loc.Latitude, loc.Longitude)
	}
	if loc.ID != 0 {
		t.Errorf("ID = %d, want 0 (assigned by the store, not the provider)", loc.ID)
	}
}

// Zero geocoding results must surface as the distinct no-data condition,
// not as a transport failure.
func TestGeocodeClient_Geocode_ZeroResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"results": []interface{}{}})
	}))
	defer server.Close()

	client, _ := NewGeocodeClient("test-key", server.URL, 2*time.Second)
	_, err := client.Geocode(context.Background(), "xyzzyplugh")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("Geocode() error = %v, want ErrNoData", err)
	}
	if errors.Is(err, ErrUpstream) {
		t.Errorf("zero results must not be an upstream failure")
	}
}

func TestGeocodeClient_Geocode_UpstreamStatus(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{name: "server error", statusCode: http.StatusInternalServerError},
		{name: "forbidden", statusCode: http.StatusForbidden},
		{name: "rate limited", statusCode: http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			client, _ := NewGeocodeClient("test-key", server.URL, 2*time.Second)
			_, err := client.Geocode(context.Background(), "seattle")
			if !errors.Is(err, ErrUpstream) {
				t.Fatalf("Geocode() error = %v, want ErrUpstream", err)
			}
		})
	}
}

func TestGeocodeClient_Geocode_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused

	client, _ := NewGeocodeClient("test-key", server.URL, 2*time.Second)
	_, err := client.Geocode(context.Background(), "seattle")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("Geocode() error = %v, want ErrUpstream", err)
	}
}
