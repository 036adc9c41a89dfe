package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cityscout/city-data-service/internal/lifecycle"
	"github.com/cityscout/city-data-service/internal/models"
	"github.com/cityscout/city-data-service/internal/provider"
	"github.com/cityscout/city-data-service/internal/validation"
)

var validate = validator.New()

// CityResolver is the resolver surface the handlers consume.
// *resolver.Resolver implements it; tests substitute fakes.
type CityResolver interface {
	ResolveLocation(ctx context.Context, rawQuery string) (models.Location, error)
	ResolveWeather(ctx context.Context, locationID int64, latitude, longitude float64) ([]models.Forecast, error)
	ResolveEvents(ctx context.Context, locationID int64, latitude, longitude float64) ([]models.Event, error)
	ResolveBusinesses(ctx context.Context, locationID int64, latitude, longitude float64) ([]models.Business, error)
	ResolveMovies(ctx context.Context, locationID int64, searchQuery string) ([]models.Movie, error)
}

// HealthConfig holds the dependency checks the health handler runs.
type HealthConfig struct {
	// StorePing checks database reachability.
	StorePing func(ctx context.Context) error
	// CachePing, when set, checks memcached reachability. Nil when the
	// location hot-row cache is disabled.
	CachePing func() error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	resolver     CityResolver
	healthConfig *HealthConfig
	logger       *zap.Logger
	maxQueryLen  int
}

// NewHandler returns a new Handler. maxQueryLen bounds the /location search
// text (0 disables the check).
func NewHandler(resolver CityResolver, healthConfig *HealthConfig, logger *zap.Logger, maxQueryLen int) *Handler {
	return &Handler{
		resolver:     resolver,
		healthConfig: healthConfig,
		logger:       logger,
		maxQueryLen:  maxQueryLen,
	}
}

// coordinatePayload is the data parameter for /weather, /meetups and /yelp.
type coordinatePayload struct {
	ID        int64   `json:"id" validate:"required,gt=0"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// moviePayload is the data parameter for /movies.
type moviePayload struct {
	ID          int64  `json:"id" validate:"required,gt=0"`
	SearchQuery string `json:"search_query" validate:"required"`
}

// GetLocation handles GET /location?data=<search text>.
func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	query, err := validation.ValidateSearchQuery(r.URL.Query().Get("data"), h.maxQueryLen)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	loc, err := h.resolver.ResolveLocation(r.Context(), query)
	if err != nil {
		writeResolverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

// GetWeather handles GET /weather?data={"id":..,"latitude":..,"longitude":..}.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeCoordinatePayload(w, r)
	if !ok {
		return
	}
	forecasts, err := h.resolver.ResolveWeather(r.Context(), payload.ID, payload.Latitude, payload.Longitude)
	if err != nil {
		writeResolverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, forecasts)
}

// GetMeetups handles GET /meetups?data={"id":..,"latitude":..,"longitude":..}.
func (h *Handler) GetMeetups(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeCoordinatePayload(w, r)
	if !ok {
		return
	}
	events, err := h.resolver.ResolveEvents(r.Context(), payload.ID, payload.Latitude, payload.Longitude)
	if err != nil {
		writeResolverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// GetYelp handles GET /yelp?data={"id":..,"latitude":..,"longitude":..}.
func (h *Handler) GetYelp(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeCoordinatePayload(w, r)
	if !ok {
		return
	}
	businesses, err := h.resolver.ResolveBusinesses(r.Context(), payload.ID, payload.Latitude, payload.Longitude)
	if err != nil {
		writeResolverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, businesses)
}

// GetMovies handles GET /movies?data={"id":..,"search_query":..}.
func (h *Handler) GetMovies(w http.ResponseWriter, r *http.Request) {
	var payload moviePayload
	if !decodePayload(w, r, &payload) {
		return
	}
	movies, err := h.resolver.ResolveMovies(r.Context(), payload.ID, payload.SearchQuery)
	if err != nil {
		writeResolverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// NotFound is the catch-all for unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no such route")
}

// GetHealth handles GET /health. Reports shutdown state and concrete
// dependency checks (database, memcached when enabled).
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	statusCode := http.StatusOK
	checks := make(map[string]string)

	if lifecycle.Draining() {
		status = "shutting-down"
		statusCode = http.StatusServiceUnavailable
	}

	if h.healthConfig != nil && h.healthConfig.StorePing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.healthConfig.StorePing(ctx); err != nil {
			checks["database"] = "unhealthy"
			if status == "healthy" {
				status = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
		} else {
			checks["database"] = "healthy"
		}
	}
	if h.healthConfig != nil && h.healthConfig.CachePing != nil {
		if h.healthConfig.CachePing() == nil {
			checks["cache"] = "healthy"
		} else {
			checks["cache"] = "unhealthy"
		}
	}

	resp := map[string]interface{}{
		"status":    status,
		"service":   "city-data-service",
		"version":   "dev",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// decodeCoordinatePayload parses and validates the data parameter for the
// coordinate-scoped routes. Writes the 400 itself and returns ok=false on
// any failure.
func decodeCoordinatePayload(w http.ResponseWriter, r *http.Request) (coordinatePayload, bool) {
	var payload coordinatePayload
	if !decodePayload(w, r, &payload) {
		return coordinatePayload{}, false
	}
	return payload, true
}

func decodePayload(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	raw := r.URL.Query().Get("data")
	if raw == "" {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "data parameter is required")
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "data parameter is not valid JSON")
		return false
	}
	if err := validate.Struct(out); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return false
	}
	return true
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code,
// message, and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := ""
	if v := r.Context().Value("correlation_id"); v != nil {
		corrID = v.(string)
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}

// writeResolverError maps resolver failures onto the closed error set:
// no-data from geocoding is a client-meaningful 404, everything else is the
// generic upstream failure. The underlying error is logged, never exposed.
func writeResolverError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, provider.ErrNoData) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no results for that search")
		return
	}
	writeError(w, r, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "unable to fetch data")
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
		logger.Debug("resolver error", zap.Error(err))
	}
}
