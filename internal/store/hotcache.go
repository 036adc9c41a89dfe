package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/cityscout/city-data-service/internal/models"
)

const locationKeyPrefix = "location:"

// LocationCache is an optional read-through cache in front of the locations
// table only. Location rows are immutable, so cached copies never go stale.
type LocationCache interface {
	Get(ctx context.Context, query string) (models.Location, bool, error)
	Set(ctx context.Context, query string, loc models.Location) error
	Ping() error
}

// MemcachedLocationCache implements LocationCache using memcached.
type MemcachedLocationCache struct {
	client *memcache.Client
}

// NewMemcachedLocationCache creates a MemcachedLocationCache. addrs is a
// comma-separated list (e.g. "localhost:11211" or "host1:11211,host2:11211").
// timeout and maxIdleConns configure the client; both use package defaults
// if zero.
func NewMemcachedLocationCache(addrs string, timeout time.Duration, maxIdleConns int) (*MemcachedLocationCache, error) {
	servers := parseAddrs(addrs)
	if len(servers) == 0 {
		servers = []string{"localhost:11211"}
	}
	client := memcache.New(servers...)
	if timeout > 0 {
		client.Timeout = timeout
	}
	if maxIdleConns > 0 {
		client.MaxIdleConns = maxIdleConns
	}
	return &MemcachedLocationCache{client: client}, nil
}

func parseAddrs(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		a = strings.TrimSpace(a)
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

func (c *MemcachedLocationCache) key(query string) string {
	return locationKeyPrefix + query
}

// Get implements LocationCache.Get. Returns false, nil on cache miss.
func (c *MemcachedLocationCache) Get(ctx context.Context, query string) (models.Location, bool, error) {
	if ctx.Err() != nil {
		return models.Location{}, false, ctx.Err()
	}
	item, err := c.client.Get(c.key(query))
	if err != nil {
		if err == memcache.ErrCacheMiss {
			return models.Location{}, false, nil
		}
		return models.Location{}, false, err
	}
	var loc models.Location
	if err := json.Unmarshal(item.Value, &loc); err != nil {
		return models.Location{}, false, err
	}
	return loc, true, nil
}

// Set implements LocationCache.Set. Entries are stored without expiration;
// the backing row never changes.
func (c *MemcachedLocationCache) Set(ctx context.Context, query string, loc models.Location) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	raw, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	return c.client.Set(&memcache.Item{
		Key:   c.key(query),
		Value: raw,
	})
}

// Ping checks memcached reachability for the health endpoint.
func (c *MemcachedLocationCache) Ping() error {
	return c.client.Ping()
}
