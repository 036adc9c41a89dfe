package store

import (
	"context"
	"fmt"
)

// schemaStatements creates the per-resource tables. locations.search_query is
// UNIQUE so concurrent misses for the same query converge on one row; the
// child tables carry no uniqueness constraint, so a concurrent double-fetch
// can duplicate rows there (accepted, the copies are identical and immutable).
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id SERIAL PRIMARY KEY,
		search_query TEXT NOT NULL UNIQUE,
		formatted_query TEXT,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS weathers (
		id SERIAL PRIMARY KEY,
		forecast TEXT,
		time TEXT,
		location_id INTEGER NOT NULL REFERENCES locations(id)
	)`,
	`CREATE TABLE IF NOT EXISTS meetups (
		id SERIAL PRIMARY KEY,
		link TEXT,
		name TEXT,
		creation_date TEXT,
		host TEXT,
		location_id INTEGER NOT NULL REFERENCES locations(id)
	)`,
	`CREATE TABLE IF NOT EXISTS yelps (
		id SERIAL PRIMARY KEY,
		url TEXT,
		name TEXT,
		rating NUMERIC,
		price TEXT,
		image_url TEXT,
		location_id INTEGER NOT NULL REFERENCES locations(id)
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id SERIAL PRIMARY KEY,
		title TEXT,
		released_on TEXT,
		total_votes INTEGER,
		average_votes NUMERIC,
		popularity NUMERIC,
		image_url TEXT,
		overview TEXT,
		location_id INTEGER NOT NULL REFERENCES locations(id)
	)`,
}

// EnsureSchema creates any missing tables. Idempotent; called once at startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: ensure schema: %w", err)
		}
	}
	return nil
}
