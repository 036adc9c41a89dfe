// Package resolver implements the cache-or-fetch procedure behind every
// route: check the relational store for rows scoped to a location, on miss
// call the resource's provider, normalize, persist and return. The location
// resolver is the anchor; its assigned id is the input to every other
// resolver.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cityscout/city-data-service/internal/models"
	"github.com/cityscout/city-data-service/internal/observability"
)

// Store is the cache-store surface the resolver needs. *store.Store
// implements it; tests substitute fakes.
type Store interface {
	FindLocationByQuery(ctx context.Context, query string) (models.Location, bool, error)
	InsertLocation(ctx context.Context, loc models.Location) (int64, error)

	ForecastsByLocation(ctx context.Context, locationID int64) ([]models.Forecast, error)
	InsertForecasts(ctx context.Context, forecasts []models.Forecast) int

	EventsByLocation(ctx context.Context, locationID int64) ([]models.Event, error)
	InsertEvents(ctx context.Context, events []models.Event) int

	BusinessesByLocation(ctx context.Context, locationID int64) ([]models.Business, error)
	InsertBusinesses(ctx context.Context, businesses []models.Business) int

	MoviesByLocation(ctx context.Context, locationID int64) ([]models.Movie, error)
	InsertMovies(ctx context.Context, movies []models.Movie) int
}

// Per-provider client surfaces, satisfied by the internal/provider clients.
type GeocodeClient interface {
	Geocode(ctx context.Context, query string) (models.Location, error)
}

type WeatherClient interface {
	DailyForecast(ctx context.Context, latitude, longitude float64) ([]models.Forecast, error)
}

type EventsClient interface {
	UpcomingEvents(ctx context.Context, latitude, longitude float64) ([]models.Event, error)
}

type BusinessClient interface {
	Search(ctx context.Context, latitude, longitude float64) ([]models.Business, error)
}

type MovieClient interface {
	Search(ctx context.Context, query string) ([]models.Movie, error)
}

// Resolver holds the store and the five provider clients.
type Resolver struct {
	store      Store
	geocoder   GeocodeClient
	weather    WeatherClient
	events     EventsClient
	businesses BusinessClient
	movies     MovieClient
}

// New creates a Resolver over the provided dependencies.
func New(store Store, geocoder GeocodeClient, weather WeatherClient, events EventsClient, businesses BusinessClient, movies MovieClient) *Resolver {
	return &Resolver{
		store:      store,
		geocoder:   geocoder,
		weather:    weather,
		events:     events,
		businesses: businesses,
		movies:     movies,
	}
}

// loggerFromContext extracts a zap.Logger from request context if present.
// Returns nil if logger is not found or context is invalid.
func loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return nil
}

// normalizeQuery normalizes search strings by trimming whitespace and
// lowercasing, so "Seattle" and " seattle " resolve to the same cached row.
func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// ResolveLocation resolves a raw search string to the anchor Location record.
// Cache hit returns the stored row with its id unchanged; a miss geocodes the
// query, persists the first result and returns it carrying the assigned id.
// Zero geocoding results surface as provider.ErrNoData, untouched.
func (r *Resolver) ResolveLocation(ctx context.Context, rawQuery string) (models.Location, error) {
	query := normalizeQuery(rawQuery)
	logger := loggerFromContext(ctx)

	loc, ok, err := r.store.FindLocationByQuery(ctx, query)
	if err != nil {
		return models.Location{}, fmt.Errorf("resolve location %q: %w", query, err)
	}
	if ok {
		observability.CacheHitsTotal.WithLabelValues("location").Inc()
		if logger != nil {
			logger.Debug("location cache hit", zap.String("query", query), zap.Int64("location_id", loc.ID))
		}
		return loc, nil
	}

	observability.CacheMissesTotal.WithLabelValues("location").Inc()
	if logger != nil {
		logger.Debug("location cache miss, geocoding", zap.String("query", query))
	}

	loc, err = r.geocoder.Geocode(ctx, query)
	if err != nil {
		return models.Location{}, fmt.Errorf("resolve location %q: %w", query, err)
	}

	id, err := r.store.InsertLocation(ctx, loc)
	if err != nil {
		return models.Location{}, fmt.Errorf("resolve location %q: %w", query, err)
	}
	loc.ID = id
	return loc, nil
}

// ResolveWeather returns the cached forecasts for a location, fetching,
// normalizing and persisting them on first request. Rows are served verbatim
// on a hit regardless of age; the cache never expires.
func (r *Resolver) ResolveWeather(ctx context.Context, locationID int64, latitude, longitude float64) ([]models.Forecast, error) {
	logger := loggerFromContext(ctx)

	cached, err := r.store.ForecastsByLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("resolve weather for location %d: %w", locationID, err)
	}
	if len(cached) > 0 {
		observability.CacheHitsTotal.WithLabelValues("weather").Inc()
		return cached, nil
	}

	observability.CacheMissesTotal.WithLabelValues("weather").Inc()
	if logger != nil {
		logger.Debug("weather cache miss, fetching upstream", zap.Int64("location_id", locationID))
	}

	forecasts, err := r.weather.DailyForecast(ctx, latitude, longitude)
	if err != nil {
		return nil, fmt.Errorf("resolve weather for location %d: %w", locationID, err)
	}
	for i := range forecasts {
		forecasts[i].LocationID = locationID
	}

	// Inserts are awaited before responding, but an individual failure only
	// shrinks what was persisted, never what is returned.
	if failed := r.store.InsertForecasts(ctx, forecasts); failed > 0 && logger != nil {
		logger.Warn("weather rows not fully persisted", zap.Int64("location_id", locationID), zap.Int("failed", failed))
	}
	return forecasts, nil
}

// ResolveEvents returns the cached events for a location, fetching on first
// request. Same contract as ResolveWeather.
func (r *Resolver) ResolveEvents(ctx context.Context, locationID int64, latitude, longitude float64) ([]models.Event, error) {
	logger := loggerFromContext(ctx)

	cached, err := r.store.EventsByLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("resolve events for location %d: %w", locationID, err)
	}
	if len(cached) > 0 {
		observability.CacheHitsTotal.WithLabelValues("meetups").Inc()
		return cached, nil
	}

	observability.CacheMissesTotal.WithLabelValues("meetups").Inc()
	if logger != nil {
		logger.Debug("events cache miss, fetching upstream", zap.Int64("location_id", locationID))
	}

	events, err := r.events.UpcomingEvents(ctx, latitude, longitude)
	if err != nil {
		return nil, fmt.Errorf("resolve events for location %d: %w", locationID, err)
	}
	for i := range events {
		events[i].LocationID = locationID
	}

	if failed := r.store.InsertEvents(ctx, events); failed > 0 && logger != nil {
		logger.Warn("meetup rows not fully persisted", zap.Int64("location_id", locationID), zap.Int("failed", failed))
	}
	return events, nil
}

// ResolveBusinesses returns the cached businesses for a location, fetching on
// first request. Same contract as ResolveWeather.
func (r *Resolver) ResolveBusinesses(ctx context.Context, locationID int64, latitude, longitude float64) ([]models.Business, error) {
	logger := loggerFromContext(ctx)

	cached, err := r.store.BusinessesByLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("resolve businesses for location %d: %w", locationID, err)
	}
	if len(cached) > 0 {
		observability.CacheHitsTotal.WithLabelValues("yelp").Inc()
		return cached, nil
	}

	observability.CacheMissesTotal.WithLabelValues("yelp").Inc()
	if logger != nil {
		logger.Debug("business cache miss, fetching upstream", zap.Int64("location_id", locationID))
	}

	businesses, err := r.businesses.Search(ctx, latitude, longitude)
	if err != nil {
		return nil, fmt.Errorf("resolve businesses for location %d: %w", locationID, err)
	}
	for i := range businesses {
		businesses[i].LocationID = locationID
	}

	if failed := r.store.InsertBusinesses(ctx, businesses); failed > 0 && logger != nil {
		logger.Warn("yelp rows not fully persisted", zap.Int64("location_id", locationID), zap.Int("failed", failed))
	}
	return businesses, nil
}

// ResolveMovies returns the cached movies for a location, fetching by the
// location's search text on first request. Same contract as ResolveWeather.
func (r *Resolver) ResolveMovies(ctx context.Context, locationID int64, searchQuery string) ([]models.Movie, error) {
	logger := loggerFromContext(ctx)

	cached, err := r.store.MoviesByLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("resolve movies for location %d: %w", locationID, err)
	}
	if len(cached) > 0 {
		observability.CacheHitsTotal.WithLabelValues("movies").Inc()
		return cached, nil
	}

	observability.CacheMissesTotal.WithLabelValues("movies").Inc()
	if logger != nil {
		logger.Debug("movie cache miss, fetching upstream", zap.Int64("location_id", locationID))
	}

	movies, err := r.movies.Search(ctx, normalizeQuery(searchQuery))
	if err != nil {
		return nil, fmt.Errorf("resolve movies for location %d: %w", locationID, err)
	}
	for i := range movies {
		movies[i].LocationID = locationID
	}

	if failed := r.store.InsertMovies(ctx, movies); failed > 0 && logger != nil {
		logger.Warn("movie rows not fully persisted", zap.Int64("location_id", locationID), zap.Int("failed", failed))
	}
	return movies, nil
}
