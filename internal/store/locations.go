package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cityscout/city-data-service/internal/models"
	"github.com/cityscout/city-data-service/internal/observability"
)

// FindLocationByQuery looks up the location row for an exact search query.
// Returns (zero, false, nil) when no row exists. The hot-row cache, when
// installed, is consulted first; location rows are immutable so a cached copy
// can never be stale. Cache errors are logged and fall through to Postgres.
func (s *Store) FindLocationByQuery(ctx context.Context, query string) (models.Location, bool, error) {
	if s.hotCache != nil {
		loc, ok, err := s.hotCache.Get(ctx, query)
		if err != nil {
			s.logger.Warn("location cache get failed", zap.String("query", query), zap.Error(err))
		} else if ok {
			observability.LocationHotCacheHitsTotal.Inc()
			return loc, true, nil
		}
	}

	var loc models.Location
	err := s.db.QueryRowContext(ctx,
		`SELECT id, search_query, formatted_query, latitude, longitude
		 FROM locations WHERE search_query = $1`, query).
		Scan(&loc.ID, &loc.SearchQuery, &loc.FormattedQuery, &loc.Latitude, &loc.Longitude)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Location{}, false, nil
	}
	if err != nil {
		return models.Location{}, false, fmt.Errorf("store: find location: %w", err)
	}

	s.cacheLocation(ctx, loc)
	return loc, true, nil
}

// InsertLocation inserts loc and returns the store-assigned id. The upsert on
// search_query makes concurrent misses for the same query converge on a
// single row and a single id.
func (s *Store) InsertLocation(ctx context.Context, loc models.Location) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO locations (search_query, formatted_query, latitude, longitude)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (search_query) DO UPDATE SET search_query = EXCLUDED.search_query
		 RETURNING id`,
		loc.SearchQuery, loc.FormattedQuery, loc.Latitude, loc.Longitude).
		Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("store: insert location: %w", err)
	}

	loc.ID = id
	s.cacheLocation(ctx, loc)
	return id, nil
}

// cacheLocation is best-effort; a failed cache write never fails the request.
func (s *Store) cacheLocation(ctx context.Context, loc models.Location) {
	if s.hotCache == nil {
		return
	}
	if err := s.hotCache.Set(ctx, loc.SearchQuery, loc); err != nil {
		s.logger.Warn("location cache set failed", zap.String("query", loc.SearchQuery), zap.Error(err))
	}
}
