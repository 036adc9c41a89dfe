package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cityscout/city-data-service/internal/config"
	httphandler "github.com/cityscout/city-data-service/internal/http"
	"github.com/cityscout/city-data-service/internal/lifecycle"
	"github.com/cityscout/city-data-service/internal/observability"
	"github.com/cityscout/city-data-service/internal/provider"
	"github.com/cityscout/city-data-service/internal/resolver"
	"github.com/cityscout/city-data-service/internal/store"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	openCtx, openCancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := store.Open(openCtx, cfg.DatabaseURL, store.Options{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}, logger)
	openCancel()
	if err != nil {
		logger.Fatal("store", zap.Error(err))
	}
	schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := st.EnsureSchema(schemaCtx); err != nil {
		schemaCancel()
		logger.Fatal("schema", zap.Error(err))
	}
	schemaCancel()

	var locationCache *store.MemcachedLocationCache
	if cfg.LocationCacheBackend == "memcached" {
		locationCache, err = store.NewMemcachedLocationCache(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			logger.Fatal("location cache", zap.Error(err))
		}
		st.SetLocationCache(locationCache)
		logger.Info("location cache: memcached", zap.String("addrs", cfg.MemcachedAddrs))
	}

	geocodeClient, err := provider.NewGeocodeClient(cfg.GeocodeAPIKey, cfg.GeocodeAPIURL, cfg.ProviderTimeout)
	if err != nil {
		logger.Fatal("geocode client", zap.Error(err))
	}
	weatherClient, err := provider.NewWeatherClient(cfg.WeatherAPIKey, cfg.WeatherAPIURL, cfg.ProviderTimeout)
	if err != nil {
		logger.Fatal("weather client", zap.Error(err))
	}
	eventsClient, err := provider.NewEventsClient(cfg.MeetupAPIKey, cfg.MeetupAPIURL, cfg.ProviderTimeout)
	if err != nil {
		logger.Fatal("events client", zap.Error(err))
	}
	businessClient, err := provider.NewBusinessClient(cfg.YelpAPIKey, cfg.YelpAPIURL, cfg.ProviderTimeout)
	if err != nil {
		logger.Fatal("yelp client", zap.Error(err))
	}
	movieClient, err := provider.NewMovieClient(cfg.MovieAPIKey, cfg.MovieAPIURL, cfg.MovieImageBase, cfg.ProviderTimeout)
	if err != nil {
		logger.Fatal("movie client", zap.Error(err))
	}

	res := resolver.New(st, geocodeClient, weatherClient, eventsClient, businessClient, movieClient)

	healthConfig := &httphandler.HealthConfig{
		StorePing: st.Ping,
	}
	if locationCache != nil {
		healthConfig.CachePing = locationCache.Ping
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	handler := httphandler.NewHandler(res, healthConfig, logger, cfg.MaxQueryLength)

	router := mux.NewRouter()
	router.Use(httphandler.CorrelationIDMiddleware(logger))
	router.Use(httphandler.MetricsMiddleware)
	router.HandleFunc("/health", handler.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler())

	api := router.NewRoute().Subrouter()
	api.Use(httphandler.RateLimitMiddleware(limiter))
	api.Use(httphandler.TimeoutMiddleware(cfg.RequestTimeout))
	api.HandleFunc("/location", handler.GetLocation).Methods("GET")
	api.HandleFunc("/weather", handler.GetWeather).Methods("GET")
	api.HandleFunc("/meetups", handler.GetMeetups).Methods("GET")
	api.HandleFunc("/yelp", handler.GetYelp).Methods("GET")
	api.HandleFunc("/movies", handler.GetMovies).Methods("GET")
	router.NotFoundHandler = http.HandlerFunc(handler.NotFound)

	// CORS wraps the router itself rather than running as a mux middleware,
	// so preflight OPTIONS requests and unmatched-route responses carry the
	// headers too. mux middleware only runs on matched routes.
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httphandler.CORSMiddleware(router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetDraining(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := observability.Flush(logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}

	if err := st.Close(); err != nil {
		logger.Error("store close", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
