package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/cityscout/city-data-service/internal/models"
	"github.com/cityscout/city-data-service/internal/provider"
)

// fakeResolver returns canned results and records what it was asked for.
type fakeResolver struct {
	location models.Location
	locErr   error

	forecasts  []models.Forecast
	events     []models.Event
	businesses []models.Business
	movies     []models.Movie
	resErr     error

	gotQuery      string
	gotLocationID int64
}

func (f *fakeResolver) ResolveLocation(ctx context.Context, rawQuery string) (models.Location, error) {
	f.gotQuery = rawQuery
	return f.location, f.locErr
}

func (f *fakeResolver) ResolveWeather(ctx context.Context, locationID int64, latitude, longitude float64) ([]models.Forecast, error) {
	f.gotLocationID = locationID
	return f.forecasts, f.resErr
}

func (f *fakeResolver) ResolveEvents(ctx context.Context, locationID int64, latitude, longitude float64) ([]models.Event, error) {
	f.gotLocationID = locationID
	return f.events, f.resErr
}

func (f *fakeResolver) ResolveBusinesses(ctx context.Context, locationID int64, latitude, longitude float64) ([]models.Business, error) {
	f.gotLocationID = locationID
	return f.businesses, f.resErr
}

func (f *fakeResolver) ResolveMovies(ctx context.Context, locationID int64, searchQuery string) ([]models.Movie, error) {
	f.gotLocationID = locationID
	f.gotQuery = searchQuery
	return f.movies, f.resErr
}

func newTestHandler(r CityResolver) *Handler {
	return NewHandler(r, nil, zap.NewNop(), 100)
}

func TestGetLocation_Success(t *testing.T) {
	resolver := &fakeResolver{location: models.Location{
		ID:             1,
		SearchQuery:    "seattle",
		FormattedQuery: "Seattle, WA, USA",
		Latitude:       47.6062,
		Longitude:      -122.3321,
	}}
	h := newTestHandler(resolver)

	req := httptest.NewRequest("GET", "/location?data=Seattle", nil)
	rec := httptest.NewRecorder()
	h.GetLocation(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if resolver.gotQuery != "Seattle" {
		t.Errorf("resolver query = %q, want %q", resolver.gotQuery, "Seattle")
	}

	var got models.Location
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.ID != 1 || got.FormattedQuery != "Seattle, WA, USA" {
		t.Errorf("body = %+v", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestGetLocation_InvalidQuery(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "whitespace only", data: "   "},
		{name: "disallowed characters", data: "seattle<script>"},
		{name: "too long", data: strings.Repeat("a", 101)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&fakeResolver{})
			req := httptest.NewRequest("GET", "/location?data="+url.QueryEscape(tt.data), nil)
			rec := httptest.NewRecorder()
			h.GetLocation(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			assertErrorCode(t, rec, "INVALID_REQUEST")
		})
	}
}

// A search the geocoder cannot resolve is a 404, not a generic failure.
func TestGetLocation_NoData(t *testing.T) {
	resolver := &fakeResolver{locErr: fmt.Errorf("resolve location: %w", provider.ErrNoData)}
	h := newTestHandler(resolver)

	req := httptest.NewRequest("GET", "/location?data=nowhere", nil)
	rec := httptest.NewRecorder()
	h.GetLocation(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	assertErrorCode(t, rec, "NOT_FOUND")
}

func TestGetLocation_UpstreamFailure(t *testing.T) {
	resolver := &fakeResolver{locErr: fmt.Errorf("resolve location: %w", provider.ErrUpstream)}
	h := newTestHandler(resolver)

	req := httptest.NewRequest("GET", "/location?data=seattle", nil)
	rec := httptest.NewRecorder()
	h.GetLocation(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	assertErrorCode(t, rec, "UPSTREAM_UNAVAILABLE")
}

func TestGetWeather_Success(t *testing.T) {
	resolver := &fakeResolver{forecasts: []models.Forecast{
		{Forecast: "Clear.", Time: "Mon Apr 01 2019", LocationID: 1},
		{Forecast: "Rain.", Time: "Tue Apr 02 2019", LocationID: 1},
	}}
	h := newTestHandler(resolver)

	data := url.QueryEscape(`{"id":1,"latitude":47.6,"longitude":-122.3}`)
	req := httptest.NewRequest("GET", "/weather?data="+data, nil)
	rec := httptest.NewRecorder()
	h.GetWeather(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if resolver.gotLocationID != 1 {
		t.Errorf("resolver location id = %d, want 1", resolver.gotLocationID)
	}

	var got []models.Forecast
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(got) != 2 || got[0].Forecast != "Clear." {
		t.Errorf("body = %+v", got)
	}
}

func TestGetWeather_InvalidPayload(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "missing data", data: ""},
		{name: "not JSON", data: "Seattle"},
		{name: "missing id", data: `{"latitude":47.6,"longitude":-122.3}`},
		{name: "latitude out of range", data: `{"id":1,"latitude":91,"longitude":0}`},
		{name: "longitude out of range", data: `{"id":1,"latitude":0,"longitude":-181}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&fakeResolver{})
			req := httptest.NewRequest("GET", "/weather?data="+url.QueryEscape(tt.data), nil)
			rec := httptest.NewRecorder()
			h.GetWeather(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
			}
			assertErrorCode(t, rec, "INVALID_REQUEST")
		})
	}
}

func TestGetMovies_Success(t *testing.T) {
	resolver := &fakeResolver{movies: []models.Movie{{Title: "Sleepless in Seattle", LocationID: 1}}}
	h := newTestHandler(resolver)

	data := url.QueryEscape(`{"id":1,"search_query":"seattle"}`)
	req := httptest.NewRequest("GET", "/movies?data="+data, nil)
	rec := httptest.NewRecorder()
	h.GetMovies(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if resolver.gotQuery != "seattle" {
		t.Errorf("resolver search query = %q, want %q", resolver.gotQuery, "seattle")
	}
}

func TestGetMovies_MissingSearchQuery(t *testing.T) {
	h := newTestHandler(&fakeResolver{})
	req := httptest.NewRequest("GET", "/movies?data="+url.QueryEscape(`{"id":1}`), nil)
	rec := httptest.NewRecorder()
	h.GetMovies(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetYelp_UpstreamFailure(t *testing.T) {
	resolver := &fakeResolver{resErr: fmt.Errorf("resolve businesses: %w", provider.ErrUpstream)}
	h := newTestHandler(resolver)

	data := url.QueryEscape(`{"id":1,"latitude":47.6,"longitude":-122.3}`)
	req := httptest.NewRequest("GET", "/yelp?data="+data, nil)
	rec := httptest.NewRecorder()
	h.GetYelp(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	assertErrorCode(t, rec, "UPSTREAM_UNAVAILABLE")
}

func TestNotFound(t *testing.T) {
	h := newTestHandler(&fakeResolver{})
	req := httptest.NewRequest("GET", "/no-such-route", nil)
	rec := httptest.NewRecorder()
	h.NotFound(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	assertErrorCode(t, rec, "NOT_FOUND")
}

func TestGetHealth_Healthy(t *testing.T) {
	h := NewHandler(&fakeResolver{}, &HealthConfig{
		StorePing: func(ctx context.Context) error { return nil },
	}, zap.NewNop(), 100)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	h.GetHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", body["status"])
	}
	checks := body["checks"].(map[string]interface{})
	if checks["database"] != "healthy" {
		t.Errorf("database check = %v, want healthy", checks["database"])
	}
}

func TestGetHealth_DatabaseDown(t *testing.T) {
	h := NewHandler(&fakeResolver{}, &HealthConfig{
		StorePing: func(ctx context.Context) error { return fmt.Errorf("connection refused") },
	}, zap.NewNop(), 100)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	h.GetHealth(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error.Code != want {
		t.Errorf("error code = %q, want %q", body.Error.Code, want)
	}
}
