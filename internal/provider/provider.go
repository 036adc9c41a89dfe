// Package provider holds one outbound HTTP client per external data API
// (geocoding, weather, events, business search, movie metadata) and the pure
// mapping functions that turn each provider's raw response into canonical
// records. Clients do not retry; every failure passes straight through to the
// resolver as one of the sentinel errors below.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cityscout/city-data-service/internal/observability"
)

var (
	// ErrNoData means the provider answered successfully but had zero results
	// for the query. Expected outcome, not a transport failure.
	ErrNoData = errors.New("no data for query")

	// ErrUpstream wraps transport errors and non-2xx provider responses.
	ErrUpstream = errors.New("upstream failure")

	// ErrMissingAPIKey is returned by client constructors.
	ErrMissingAPIKey = errors.New("API key is required")
)

// httpDoer is the subset of *http.Client the shared plumbing needs.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// newHTTPClient returns the http.Client shared shape for all providers.
// The timeout bounds a hung upstream; it surfaces as ErrUpstream like any
// other transport failure.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// doJSON issues req, records per-provider metrics, enforces a 2xx status and
// decodes the body into out. All failures are wrapped in ErrUpstream.
func doJSON(ctx context.Context, c httpDoer, req *http.Request, providerName string, out interface{}) error {
	if corrID := extractCorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.Do(req)
	duration := time.Since(start).Seconds()
	if err != nil {
		observability.ProviderCallsTotal.WithLabelValues(providerName, "error").Inc()
		observability.ProviderCallDuration.WithLabelValues(providerName, "error").Observe(duration)
		return fmt.Errorf("%w: %s request: %v", ErrUpstream, providerName, err)
	}
	defer resp.Body.Close()

	status := statusLabel(resp.StatusCode)
	observability.ProviderCallsTotal.WithLabelValues(providerName, status).Inc()
	observability.ProviderCallDuration.WithLabelValues(providerName, status).Observe(duration)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s returned HTTP %d", ErrUpstream, providerName, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s response: %v", ErrUpstream, providerName, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: parse %s response: %v", ErrUpstream, providerName, err)
	}
	return nil
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}

func extractCorrelationID(ctx context.Context) string {
	if v := ctx.Value("correlation_id"); v != nil {
		if corrID, ok := v.(string); ok {
			return corrID
		}
	}
	return ""
}

// calendarDate renders t as a date with no time-of-day, the format the
// front end expects for forecast and event dates.
func calendarDate(t time.Time) string {
	return t.Format("Mon Jan 02 2006")
}
