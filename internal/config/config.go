package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/geolocator/internal/domain"
	"github.com/kailas-cloud/geolocator/internal/domain/geo"
	"github.com/kailas-cloud/geolocator/internal/domain/search/kind"
)

// Config holds the geolocator service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	YouTube  YouTubeConfig  `yaml:"youtube"`
	Search   SearchConfig   `yaml:"search"`
	Quota    QuotaConfig    `yaml:"quota"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// YouTubeConfig holds search provider settings.
type YouTubeConfig struct {
	APIKey       string  `yaml:"api_key"`
	BaseURL      string  `yaml:"base_url"`
	Kind         string  `yaml:"kind"`      // video (default), channel, playlist
	Thumbnail    string  `yaml:"thumbnail"` // default, medium, high (default)
	RateLimitRPS float64 `yaml:"rate_limit_rps"`
	RateBurst    int     `yaml:"rate_limit_burst"`
}

// SearchConfig holds per-session interaction defaults.
type SearchConfig struct {
	Capacity       int     `yaml:"capacity"`
	KeywordSlots   int     `yaml:"keyword_slots"`
	Unit           string  `yaml:"unit"`
	DefaultLat     float64 `yaml:"default_lat"`
	DefaultLng     float64 `yaml:"default_lng"`
	DefaultRadius  int     `yaml:"default_radius"`
	TimeoutSec     int     `yaml:"timeout_sec"`
	MaxSessions    int     `yaml:"max_sessions"`
	SessionIdleSec int     `yaml:"session_idle_sec"` // idle sessions are evicted after this
}

// QuotaConfig holds provider quota settings.
type QuotaConfig struct {
	DailyUnitLimit int64  `yaml:"daily_unit_limit"` // 0 = unlimited
	CostPerSearch  int64  `yaml:"cost_per_search"`
	Action         string `yaml:"action"` // "reject" | "warn" (default)
}

// DatabaseConfig holds the optional quota counter store.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	CacheTTLSec      int      `yaml:"cache_ttl_sec"` // 0 = no response cache
}

// Enabled reports whether a counter store is configured.
func (d DatabaseConfig) Enabled() bool { return len(d.Addrs) > 0 }

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML with ${VAR} expansion, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = "https://youtube.googleapis.com/youtube/v3"
	}
	if c.YouTube.Kind == "" {
		c.YouTube.Kind = string(kind.Video)
	}
	if c.YouTube.Thumbnail == "" {
		c.YouTube.Thumbnail = "high"
	}

	def := domain.DefaultSearchConfig()
	if c.Search.Capacity <= 0 {
		c.Search.Capacity = def.Capacity
	}
	if c.Search.KeywordSlots <= 0 {
		c.Search.KeywordSlots = def.KeywordSlots
	}
	if c.Search.Unit == "" {
		c.Search.Unit = string(def.Unit)
	}
	if c.Search.DefaultLat == 0 && c.Search.DefaultLng == 0 {
		c.Search.DefaultLat = def.DefaultPoint.Lat
		c.Search.DefaultLng = def.DefaultPoint.Lng
	}
	if c.Search.DefaultRadius == 0 {
		c.Search.DefaultRadius = def.DefaultRadius
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = int(def.Timeout / time.Second)
	}
	if c.Search.MaxSessions <= 0 {
		c.Search.MaxSessions = 1000
	}
	if c.Search.SessionIdleSec == 0 {
		c.Search.SessionIdleSec = 1800
	}

	if c.Quota.CostPerSearch <= 0 {
		c.Quota.CostPerSearch = 100
	}
	if c.Quota.Action == "" {
		c.Quota.Action = "warn"
	}

	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.YouTube.APIKey == "" {
		return fmt.Errorf("youtube.api_key is required")
	}
	if k := kind.Kind(c.YouTube.Kind); !k.IsValid() || !k.SupportsLocation() {
		return fmt.Errorf("youtube.kind must support location filtering, got %q", c.YouTube.Kind)
	}
	if !geo.Unit(c.Search.Unit).IsValid() {
		return fmt.Errorf("search.unit must be one of m, km, ft, mi, got %q", c.Search.Unit)
	}
	if !geo.ValidateCoordinates(c.Search.DefaultLat, c.Search.DefaultLng) {
		return fmt.Errorf("search.default_lat/default_lng out of range: %v, %v",
			c.Search.DefaultLat, c.Search.DefaultLng)
	}
	if !geo.RadiusInBounds(c.Search.DefaultRadius) {
		return fmt.Errorf("search.default_radius must be between %d and %d, got %d",
			geo.MinRadius, geo.MaxRadius, c.Search.DefaultRadius)
	}
	if c.Search.SessionIdleSec < 0 {
		return fmt.Errorf("search.session_idle_sec must not be negative, got %d", c.Search.SessionIdleSec)
	}
	if c.Search.Capacity > 50 {
		return fmt.Errorf("search.capacity must be at most 50, got %d", c.Search.Capacity)
	}
	switch c.Quota.Action {
	case "warn", "reject":
	default:
		return fmt.Errorf("quota.action must be \"warn\" or \"reject\", got %q", c.Quota.Action)
	}
	if c.Database.CacheTTLSec < 0 {
		return fmt.Errorf("database.cache_ttl_sec must not be negative, got %d", c.Database.CacheTTLSec)
	}
	if c.Quota.DailyUnitLimit < 0 {
		return fmt.Errorf("quota.daily_unit_limit must not be negative, got %d", c.Quota.DailyUnitLimit)
	}
	return nil
}

// SearchDefaults converts the search section into the domain defaults.
func (c *Config) SearchDefaults() domain.SearchConfig {
	return domain.SearchConfig{
		Capacity:      c.Search.Capacity,
		KeywordSlots:  c.Search.KeywordSlots,
		DefaultPoint:  geo.Point{Lat: c.Search.DefaultLat, Lng: c.Search.DefaultLng},
		DefaultRadius: c.Search.DefaultRadius,
		Unit:          geo.Unit(c.Search.Unit),
		Kind:          kind.Kind(c.YouTube.Kind),
		Timeout:       time.Duration(c.Search.TimeoutSec) * time.Second,
	}
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
