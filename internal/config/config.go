package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	GeocodeAPIKey  string
	GeocodeAPIURL  string
	WeatherAPIKey  string
	WeatherAPIURL  string
	MeetupAPIKey   string
	MeetupAPIURL   string
	YelpAPIKey     string
	YelpAPIURL     string
	MovieAPIKey    string
	MovieAPIURL    string
	MovieImageBase string

	ProviderTimeout time.Duration
	RequestTimeout  time.Duration

	LocationCacheBackend  string // "none" or "memcached"
	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	RateLimitRPS   int
	RateLimitBurst int
	MaxQueryLength int

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		URL             string `yaml:"url"`
		MaxOpenConns    int    `yaml:"max_open_conns"`
		MaxIdleConns    int    `yaml:"max_idle_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime"`
	} `yaml:"database"`

	Providers struct {
		Timeout string `yaml:"timeout"`
		Geocode struct {
			URL string `yaml:"url"`
		} `yaml:"geocode"`
		Weather struct {
			URL string `yaml:"url"`
		} `yaml:"weather"`
		Meetup struct {
			URL string `yaml:"url"`
		} `yaml:"meetup"`
		Yelp struct {
			URL string `yaml:"url"`
		} `yaml:"yelp"`
		Movies struct {
			URL       string `yaml:"url"`
			ImageBase string `yaml:"image_base"`
		} `yaml:"movies"`
	} `yaml:"providers"`

	Request struct {
		Timeout        string `yaml:"timeout"`
		MaxQueryLength int    `yaml:"max_query_length"`
	} `yaml:"request"`

	LocationCache struct {
		Backend   string `yaml:"backend"`
		Memcached struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
	} `yaml:"location_cache"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"inflight_timeout"`
		InFlightCheckInterval string `yaml:"inflight_check_interval"`
	} `yaml:"shutdown"`
}

type secretsFile struct {
	GeocodeAPIKey string `yaml:"geocode_api_key"`
	WeatherAPIKey string `yaml:"weather_api_key"`
	MeetupAPIKey  string `yaml:"meetup_api_key"`
	YelpAPIKey    string `yaml:"yelp_api_key"`
	MovieAPIKey   string `yaml:"movie_api_key"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) and
// config/secrets.yaml. A .env file, when present, is loaded first. API keys
// and the database URL come from env or the secrets file; env wins. Call from
// project root.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	var sec secretsFile
	secretsPath := filepath.Join(cwd, "config", "secrets.yaml")
	secretsData, err := os.ReadFile(secretsPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read secrets file: %w", err)
		}
	} else if err := yaml.Unmarshal(secretsData, &sec); err != nil {
		return nil, fmt.Errorf("parse secrets file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = os.Getenv("PORT")
	if cfg.ServerPort == "" {
		cfg.ServerPort = fc.Server.Port
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "3000"
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fc.Database.URL
	}
	cfg.DBMaxOpenConns = fc.Database.MaxOpenConns
	if cfg.DBMaxOpenConns <= 0 {
		cfg.DBMaxOpenConns = 25
	}
	cfg.DBMaxIdleConns = fc.Database.MaxIdleConns
	if cfg.DBMaxIdleConns <= 0 {
		cfg.DBMaxIdleConns = 10
	}
	cfg.DBConnMaxLifetime = parseDuration(fc.Database.ConnMaxLifetime, 5*time.Minute)

	cfg.GeocodeAPIKey = firstNonEmpty(os.Getenv("GEOCODE_API_KEY"), sec.GeocodeAPIKey)
	cfg.WeatherAPIKey = firstNonEmpty(os.Getenv("WEATHER_API_KEY"), sec.WeatherAPIKey)
	cfg.MeetupAPIKey = firstNonEmpty(os.Getenv("MEETUP_API_KEY"), sec.MeetupAPIKey)
	cfg.YelpAPIKey = firstNonEmpty(os.Getenv("YELP_API_KEY"), sec.YelpAPIKey)
	cfg.MovieAPIKey = firstNonEmpty(os.Getenv("MOVIE_API_KEY"), sec.MovieAPIKey)

	cfg.GeocodeAPIURL = fc.Providers.Geocode.URL
	if cfg.GeocodeAPIURL == "" {
		cfg.GeocodeAPIURL = "https://maps.googleapis.com/maps/api/geocode/json"
	}
	cfg.WeatherAPIURL = fc.Providers.Weather.URL
	if cfg.WeatherAPIURL == "" {
		cfg.WeatherAPIURL = "https://api.darksky.net/forecast"
	}
	cfg.MeetupAPIURL = fc.Providers.Meetup.URL
	if cfg.MeetupAPIURL == "" {
		cfg.MeetupAPIURL = "https://api.meetup.com/find/upcoming_events"
	}
	cfg.YelpAPIURL = fc.Providers.Yelp.URL
	if cfg.YelpAPIURL == "" {
		cfg.YelpAPIURL = "https://api.yelp.com/v3/businesses/search"
	}
	cfg.MovieAPIURL = fc.Providers.Movies.URL
	if cfg.MovieAPIURL == "" {
		cfg.MovieAPIURL = "https://api.themoviedb.org/3/search/movie"
	}
	cfg.MovieImageBase = fc.Providers.Movies.ImageBase

	cfg.ProviderTimeout = parseDuration(fc.Providers.Timeout, 5*time.Second)
	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 10*time.Second)
	cfg.MaxQueryLength = fc.Request.MaxQueryLength
	if cfg.MaxQueryLength <= 0 {
		cfg.MaxQueryLength = 100
	}

	cfg.LocationCacheBackend = strings.TrimSpace(strings.ToLower(os.Getenv("LOCATION_CACHE_BACKEND")))
	if cfg.LocationCacheBackend == "" {
		cfg.LocationCacheBackend = strings.TrimSpace(strings.ToLower(fc.LocationCache.Backend))
	}
	if cfg.LocationCacheBackend == "" {
		cfg.LocationCacheBackend = "none"
	}
	cfg.MemcachedAddrs = strings.TrimSpace(os.Getenv("MEMCACHED_ADDRS"))
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = strings.TrimSpace(fc.LocationCache.Memcached.Addrs)
	}
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = "localhost:11211"
	}
	cfg.MemcachedTimeout = parseDuration(fc.LocationCache.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.LocationCache.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}

	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 100
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 250
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseDuration parses a duration string and returns defaultVal if parsing
// fails, the string is empty, or the result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// validate performs post-load validation of configuration values.
func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL required (set env or config database.url)")
	}
	missing := []string{}
	if cfg.GeocodeAPIKey == "" {
		missing = append(missing, "GEOCODE_API_KEY")
	}
	if cfg.WeatherAPIKey == "" {
		missing = append(missing, "WEATHER_API_KEY")
	}
	if cfg.MeetupAPIKey == "" {
		missing = append(missing, "MEETUP_API_KEY")
	}
	if cfg.YelpAPIKey == "" {
		missing = append(missing, "YELP_API_KEY")
	}
	if cfg.MovieAPIKey == "" {
		missing = append(missing, "MOVIE_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing API keys: %s (set env or config/secrets.yaml)", strings.Join(missing, ", "))
	}
	if cfg.RequestTimeout <= cfg.ProviderTimeout {
		cfg.RequestTimeout = cfg.ProviderTimeout + time.Second
	}
	switch cfg.LocationCacheBackend {
	case "none", "memcached":
		// valid
	default:
		return fmt.Errorf("location_cache.backend must be none or memcached, got %q", cfg.LocationCacheBackend)
	}
	return nil
}
