package model

import "time"

// Config holds all runtime configuration. Commands start from
// DefaultConfig and override from flags and environment.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http" mapstructure:"http"`
	Geocode  GeocodeConfig  `yaml:"geocode" mapstructure:"geocode"`
	Validate ValidateConfig `yaml:"validate" mapstructure:"validate"`
	Scrape   ScrapeConfig   `yaml:"scrape" mapstructure:"scrape"`
	Suggest  SuggestConfig  `yaml:"suggest" mapstructure:"suggest"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Workers  int            `yaml:"workers" mapstructure:"workers"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls every outbound client (geocode, validation, scrape).
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// GeocodeConfig controls the address normalizer's geocoding strategy.
// An empty token leaves the strategy unavailable and the regex fallback
// carries every lookup.
type GeocodeConfig struct {
	Endpoint     string        `yaml:"endpoint" mapstructure:"endpoint"`
	Token        string        `yaml:"-" mapstructure:"-"` // From DEALFILL_MAPBOX_TOKEN, never written to disk
	CountryBias  string        `yaml:"country_bias" mapstructure:"country_bias"`
	MinRelevance float64       `yaml:"min_relevance" mapstructure:"min_relevance"`
	CacheTTL     time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	RatePerSec   float64       `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// ValidateConfig controls URL reachability checks.
type ValidateConfig struct {
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxWorkers int           `yaml:"max_workers" mapstructure:"max_workers"`
}

// ScrapeConfig controls company-homepage enrichment.
type ScrapeConfig struct {
	Enabled       bool    `yaml:"enabled" mapstructure:"enabled"`
	RespectRobots bool    `yaml:"respect_robots" mapstructure:"respect_robots"`
	RatePerSec    float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// SuggestConfig controls the optional tagline/keyword provider. An empty
// provider name disables suggestions entirely.
type SuggestConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"`
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"-" mapstructure:"-"` // From provider env vars, never written to disk
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
}

// CacheConfig controls the layered lookup cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format  string `yaml:"format" mapstructure:"format"` // "text" or "json"
	Verbose bool   `yaml:"-" mapstructure:"-"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "Dealfill/0.1 (+https://github.com/fundops/dealfill)",
			MaxBodyBytes: 2_000_000,
		},
		Geocode: GeocodeConfig{
			Endpoint:     "https://api.mapbox.com/geocoding/v5/mapbox.places",
			CountryBias:  "US",
			MinRelevance: 0.8,
			CacheTTL:     24 * time.Hour,
			RatePerSec:   5,
		},
		Validate: ValidateConfig{
			Timeout:    10 * time.Second,
			MaxWorkers: 4,
		},
		Scrape: ScrapeConfig{
			Enabled:       true,
			RespectRobots: true,
			RatePerSec:    1,
		},
		Suggest: SuggestConfig{
			Provider:    "",
			Model:       "gpt-4o-mini",
			MaxTokens:   256,
			Temperature: 0.3,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".dealfill-cache",
			MemoryTTL: 1 * time.Hour,
			DiskTTL:   24 * time.Hour,
		},
		Workers: 4,
		Output: OutputConfig{
			Format: "text",
		},
	}
}
