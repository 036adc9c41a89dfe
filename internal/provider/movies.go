package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cityscout/city-data-service/internal/models"
)

// DefaultMovieImageBase is the poster base path prefixed onto the partial
// poster_path the movie provider returns.
const DefaultMovieImageBase = "http://image.tmdb.org/t/p/w300"

// MovieClient searches movie metadata by title text.
type MovieClient struct {
	apiKey    string
	apiURL    string
	imageBase string
	client    httpDoer
}

// NewMovieClient returns a MovieClient against apiURL (e.g. the TMDB search
// endpoint). imageBase defaults to DefaultMovieImageBase when empty.
func NewMovieClient(apiKey, apiURL, imageBase string, timeout time.Duration) (*MovieClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: movies", ErrMissingAPIKey)
	}
	if imageBase == "" {
		imageBase = DefaultMovieImageBase
	}
	return &MovieClient{
		apiKey:    apiKey,
		apiURL:    apiURL,
		imageBase: imageBase,
		client:    newHTTPClient(timeout),
	}, nil
}

type movieResponse struct {
	Results []struct {
		Title       string  `json:"title"`
		ReleaseDate string  `json:"release_date"`
		VoteCount   int     `json:"vote_count"`
		VoteAverage float64 `json:"vote_average"`
		Popularity  float64 `json:"popularity"`
		PosterPath  string  `json:"poster_path"`
		Overview    string  `json:"overview"`
	} `json:"results"`
}

// Search returns the provider's movie results for the query text, in provider
// order. LocationID is attached by the resolver.
func (c *MovieClient) Search(ctx context.Context, query string) ([]models.Movie, error) {
	base, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid movies URL: %w", err)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("api_key", c.apiKey)
	base.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create movies request: %w", err)
	}

	var raw movieResponse
	if err := doJSON(ctx, c.client, req, "movies", &raw); err != nil {
		return nil, err
	}
	return normalizeMovies(raw, c.imageBase), nil
}

// normalizeMovies projects raw results onto Movie records. The full image URL
// is synthesized by prefixing imageBase onto the partial poster path; a movie
// with no poster keeps an empty ImageURL.
func normalizeMovies(raw movieResponse, imageBase string) []models.Movie {
	movies := make([]models.Movie, 0, len(raw.Results))
	for _, m := range raw.Results {
		imageURL := ""
		if m.PosterPath != "" {
			imageURL = imageBase + m.PosterPath
		}
		movies = append(movies, models.Movie{
			Title:        m.Title,
			ReleasedOn:   m.ReleaseDate,
			TotalVotes:   m.VoteCount,
			AverageVotes: m.VoteAverage,
			Popularity:   m.Popularity,
			ImageURL:     imageURL,
			Overview:     m.Overview,
		})
	}
	return movies
}
