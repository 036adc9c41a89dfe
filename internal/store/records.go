package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cityscout/city-data-service/internal/models"
	"github.com/cityscout/city-data-service/internal/observability"
)

// The child tables share one access pattern: find every row for a location,
// and insert a batch where each record is attempted independently. A failed
// insert is logged and counted but never blocks the rest of the batch or the
// response; the returned count is how many records were skipped.

// ForecastsByLocation returns all cached forecast rows for a location.
func (s *Store) ForecastsByLocation(ctx context.Context, locationID int64) ([]models.Forecast, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT forecast, time, location_id FROM weathers WHERE location_id = $1 ORDER BY id`, locationID)
	if err != nil {
		return nil, fmt.Errorf("store: find weathers: %w", err)
	}
	defer rows.Close()

	var forecasts []models.Forecast
	for rows.Next() {
		var f models.Forecast
		if err := rows.Scan(&f.Forecast, &f.Time, &f.LocationID); err != nil {
			return nil, fmt.Errorf("store: scan weather row: %w", err)
		}
		forecasts = append(forecasts, f)
	}
	return forecasts, rows.Err()
}

// InsertForecasts persists forecasts best-effort, one insert per record.
func (s *Store) InsertForecasts(ctx context.Context, forecasts []models.Forecast) int {
	failed := 0
	for _, f := range forecasts {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO weathers (forecast, time, location_id) VALUES ($1, $2, $3)`,
			f.Forecast, f.Time, f.LocationID)
		if err != nil {
			failed++
			observability.StoreInsertFailuresTotal.WithLabelValues("weather").Inc()
			s.logger.Warn("weather insert failed", zap.Int64("location_id", f.LocationID), zap.Error(err))
		}
	}
	return failed
}

// EventsByLocation returns all cached event rows for a location.
func (s *Store) EventsByLocation(ctx context.Context, locationID int64) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT link, name, creation_date, host, location_id FROM meetups WHERE location_id = $1 ORDER BY id`, locationID)
	if err != nil {
		return nil, fmt.Errorf("store: find meetups: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.Link, &e.Name, &e.CreationDate, &e.Host, &e.LocationID); err != nil {
			return nil, fmt.Errorf("store: scan meetup row: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// InsertEvents persists events best-effort, one insert per record.
func (s *Store) InsertEvents(ctx context.Context, events []models.Event) int {
	failed := 0
	for _, e := range events {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO meetups (link, name, creation_date, host, location_id) VALUES ($1, $2, $3, $4, $5)`,
			e.Link, e.Name, e.CreationDate, e.Host, e.LocationID)
		if err != nil {
			failed++
			observability.StoreInsertFailuresTotal.WithLabelValues("meetups").Inc()
			s.logger.Warn("meetup insert failed", zap.Int64("location_id", e.LocationID), zap.Error(err))
		}
	}
	return failed
}

// BusinessesByLocation returns all cached business rows for a location.
func (s *Store) BusinessesByLocation(ctx context.Context, locationID int64) ([]models.Business, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, name, rating, price, image_url, location_id FROM yelps WHERE location_id = $1 ORDER BY id`, locationID)
	if err != nil {
		return nil, fmt.Errorf("store: find yelps: %w", err)
	}
	defer rows.Close()

	var businesses []models.Business
	for rows.Next() {
		var b models.Business
		if err := rows.Scan(&b.URL, &b.Name, &b.Rating, &b.Price, &b.ImageURL, &b.LocationID); err != nil {
			return nil, fmt.Errorf("store: scan yelp row: %w", err)
		}
		businesses = append(businesses, b)
	}
	return businesses, rows.Err()
}

// InsertBusinesses persists businesses best-effort, one insert per record.
func (s *Store) InsertBusinesses(ctx context.Context, businesses []models.Business) int {
	failed := 0
	for _, b := range businesses {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO yelps (url, name, rating, price, image_url, location_id) VALUES ($1, $2, $3, $4, $5, $6)`,
			b.URL, b.Name, b.Rating, b.Price, b.ImageURL, b.LocationID)
		if err != nil {
			failed++
			observability.StoreInsertFailuresTotal.WithLabelValues("yelp").Inc()
			s.logger.Warn("yelp insert failed", zap.Int64("location_id", b.LocationID), zap.Error(err))
		}
	}
	return failed
}

// MoviesByLocation returns all cached movie rows for a location.
func (s *Store) MoviesByLocation(ctx context.Context, locationID int64) ([]models.Movie, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, released_on, total_votes, average_votes, popularity, image_url, overview, location_id
		 FROM movies WHERE location_id = $1 ORDER BY id`, locationID)
	if err != nil {
		return nil, fmt.Errorf("store: find movies: %w", err)
	}
	defer rows.Close()

	var movies []models.Movie
	for rows.Next() {
		var m models.Movie
		if err := rows.Scan(&m.Title, &m.ReleasedOn, &m.TotalVotes, &m.AverageVotes, &m.Popularity, &m.ImageURL, &m.Overview, &m.LocationID); err != nil {
			return nil, fmt.Errorf("store: scan movie row: %w", err)
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

// InsertMovies persists movies best-effort, one insert per record.
func (s *Store) InsertMovies(ctx context.Context, movies []models.Movie) int {
	failed := 0
	for _, m := range movies {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO movies (title, released_on, total_votes, average_votes, popularity, image_url, overview, location_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			m.Title, m.ReleasedOn, m.TotalVotes, m.AverageVotes, m.Popularity, m.ImageURL, m.Overview, m.LocationID)
		if err != nil {
			failed++
			observability.StoreInsertFailuresTotal.WithLabelValues("movies").Inc()
			s.logger.Warn("movie insert failed", zap.Int64("location_id", m.LocationID), zap.Error(err))
		}
	}
	return failed
}
