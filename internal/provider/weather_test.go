package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// N daily entries must yield exactly N forecasts, each with the entry's
// summary and a calendar date derived from its unix timestamp.
func TestWeatherClient_DailyForecast_MapsEveryDay(t *testing.T) {
	apiResp := map[string]interface{}{
		"daily": map[string]interface{}{
			"data": []map[string]interface{}{
				{"summary": "Partly cloudy.", "time": int64(1554076800)}, // 2019-04-01 UTC
				{"summary": "Light rain.", "time": int64(1554163200)},
				{"summary": "Clear.", "time": int64(1554249600)},
			},
		},
	}

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(apiResp)
	}))
	defer server.Close()

	client, err := NewWeatherClient("test-weather-key", server.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("NewWeatherClient() error: %v", err)
	}

	forecasts, err := client.DailyForecast(context.Background(), 47.6, -122.3)
	if err != nil {
		t.Fatalf("DailyForecast() error: %v", err)
	}

	if !strings.Contains(gotPath, "test-weather-key") {
		t.Errorf("request path %q missing API key segment", gotPath)
	}
	if !strings.Contains(gotPath, "47.6,-122.3") {
		t.Errorf("request path %q missing coordinate segment", gotPath)
	}

	if len(forecasts) != 3 {
		t.Fatalf("len(forecasts) = %d, want 3", len(forecasts))
	}
	if forecasts[0].Forecast != "Partly cloudy." {
		t.Errorf("forecasts[0].Forecast = %q, want summary text", forecasts[0].Forecast)
	}
	if forecasts[0].Time != "Mon Apr 01 2019" {
		t.Errorf("forecasts[0].Time = %q, want %q", forecasts[0].Time, "Mon Apr 01 2019")
	}
	if forecasts[2].Time != "Wed Apr 03 2019" {
		t.Errorf("forecasts[2].Time = %q, want %q", forecasts[2].Time, "Wed Apr 03 2019")
	}
	for i, f := range forecasts {
		if f.LocationID != 0 {
			t.Errorf("forecasts[%d].LocationID = %d, want 0 before resolver attaches it", i, f.LocationID)
		}
	}
}

func TestWeatherClient_DailyForecast_EmptyDaily(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"daily": map[string]interface{}{"data": []interface{}{}}})
	}))
	defer server.Close()

	client, _ := NewWeatherClient("test-weather-key", server.URL, 2*time.Second)
	forecasts, err := client.DailyForecast(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("DailyForecast() error: %v", err)
	}
	if len(forecasts) != 0 {
		t.Errorf("len(forecasts) = %d, want 0", len(forecasts))
	}
}
