// Package config loads the application configuration from an optional
// config.yml, applies NYSSE_* environment overrides and validates the result.
// A missing Digitransit subscription key is fatal at startup.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nysselive/nysselive/pkg/util"
	iso8601 "github.com/senseyeio/duration"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Listen string `yaml:"listen"`

	Digitransit DigitransitConfig `yaml:"digitransit"`
	Realtime    RealtimeConfig    `yaml:"realtime"`
	Cache       CacheConfig       `yaml:"cache"`
	Trips       TripsConfig       `yaml:"trips"`
}

type DigitransitConfig struct {
	URL    string `yaml:"url" validate:"required,url"`
	APIKey string `yaml:"api_key" validate:"required"`
	FeedID string `yaml:"feed_id" validate:"required"`
}

type RealtimeConfig struct {
	URL             string `yaml:"url" validate:"required,url"`
	IntervalSeconds int    `yaml:"interval_seconds" validate:"gt=0"`
	TimeoutSeconds  int    `yaml:"timeout_seconds" validate:"gt=0"`
}

// CacheConfig TTLs are ISO 8601 durations; the classes differ by orders of
// magnitude because their staleness tolerance does.
type CacheConfig struct {
	MaxEntries int64  `yaml:"max_entries" validate:"gt=0"`
	StopsTTL   string `yaml:"stops_ttl"`
	RoutesTTL  string `yaml:"routes_ttl"`
	AlertsTTL  string `yaml:"alerts_ttl"`
	TripsTTL   string `yaml:"trips_ttl"`

	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig is optional; when Address is empty the cache stays in process.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	Database int    `yaml:"database"`
}

type TripsConfig struct {
	RefreshIntervalSeconds int `yaml:"refresh_interval_seconds" validate:"gt=0"`
}

func defaults() Config {
	return Config{
		Listen: ":9999",
		Digitransit: DigitransitConfig{
			URL:    "https://api.digitransit.fi/routing/v2/waltti/gtfs/v1",
			FeedID: "tampere",
		},
		Realtime: RealtimeConfig{
			URL:             "http://data.itsfactory.fi/siriaccess/vm/json",
			IntervalSeconds: 6,
			TimeoutSeconds:  10,
		},
		Cache: CacheConfig{
			MaxEntries: 4096,
			StopsTTL:   "PT3H",
			RoutesTTL:  "PT1H",
			AlertsTTL:  "PT1M",
			TripsTTL:   "PT10S",
		},
		Trips: TripsConfig{
			RefreshIntervalSeconds: 10,
		},
	}
}

// Load reads the configuration file at path (skipped when absent), applies
// environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnvironment(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyEnvironment(cfg *Config) {
	env := util.GetEnvironmentVariables()

	stringOverrides := map[string]*string{
		"NYSSE_LISTEN":              &cfg.Listen,
		"NYSSE_DIGITRANSIT_URL":     &cfg.Digitransit.URL,
		"NYSSE_DIGITRANSIT_API_KEY": &cfg.Digitransit.APIKey,
		"NYSSE_DIGITRANSIT_FEED_ID": &cfg.Digitransit.FeedID,
		"NYSSE_REALTIME_URL":        &cfg.Realtime.URL,
		"NYSSE_REDIS_ADDRESS":       &cfg.Cache.Redis.Address,
		"NYSSE_REDIS_PASSWORD":      &cfg.Cache.Redis.Password,
	}
	for name, target := range stringOverrides {
		if env[name] != "" {
			*target = env[name]
		}
	}

	if env["NYSSE_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["NYSSE_REDIS_DATABASE"]); err == nil {
			cfg.Cache.Redis.Database = n
		}
	}

	if env["NYSSE_REALTIME_INTERVAL"] != "" {
		if n, err := strconv.Atoi(env["NYSSE_REALTIME_INTERVAL"]); err == nil {
			cfg.Realtime.IntervalSeconds = n
		}
	}
}

// ISODuration converts an ISO 8601 duration like "PT3H" into a time.Duration.
func ISODuration(s string) (time.Duration, error) {
	d, err := iso8601.ParseISO8601(s)
	if err != nil {
		return 0, err
	}

	ref := time.Now()
	return d.Shift(ref).Sub(ref), nil
}

func (c RealtimeConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

func (c RealtimeConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c TripsConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}
