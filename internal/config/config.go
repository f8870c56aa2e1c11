// Package config handles layered YAML configuration with .env and environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all storefront configuration.
type Config struct {
	API    API    `yaml:"api"`
	Auth   Auth   `yaml:"auth"`
	Cache  Cache  `yaml:"cache"`
	UI     UI     `yaml:"ui"`
	Upload Upload `yaml:"upload"`
	Limits Limits `yaml:"limits"`
	Site   Site   `yaml:"site"`
	Log    Log    `yaml:"log"`

	Observability Observability `yaml:"observability"`
}

// API holds backend connection settings.
type API struct {
	BaseURL string        `yaml:"base_url"`
	Version string        `yaml:"version"`
	Timeout time.Duration `yaml:"timeout"`
}

// Auth holds token persistence settings.
type Auth struct {
	TokenKey     string `yaml:"token_key"`
	TokenBackend string `yaml:"token_backend"` // "file" | "sqlite"
	TokenDir     string `yaml:"token_dir"`
}

// Cache holds list cache settings.
type Cache struct {
	TTL time.Duration `yaml:"ttl"`
}

// UI holds interactive display settings.
type UI struct {
	ToastDuration  time.Duration `yaml:"toast_duration"` // 0 keeps toasts until dismissed
	DebounceDelay  time.Duration `yaml:"debounce_delay"`
	HealthInterval time.Duration `yaml:"health_interval"`
}

// Upload holds image upload constraints.
type Upload struct {
	MaxSize      int64    `yaml:"max_size"`
	AllowedTypes []string `yaml:"allowed_types"`
}

// Limits holds catalog entity limits.
type Limits struct {
	MaxColors          int `yaml:"max_colors"`
	MaxSubcategories   int `yaml:"max_subcategories"`
	SubcategoryNameMax int `yaml:"subcategory_name_max"`
}

// Site holds catalog web server settings.
type Site struct {
	Address  string `yaml:"address"`
	PageSize int    `yaml:"page_size"`
}

// Log holds logging settings.
type Log struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // "text" | "json"
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Observability selects where metrics and spans go.
type Observability struct {
	Global bool `yaml:"global"` // use the otel global providers instead of noop
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: API{
			BaseURL: "http://localhost:8080",
			Version: "v1",
			Timeout: 30 * time.Second,
		},
		Auth: Auth{
			TokenKey:     "authToken",
			TokenBackend: "file",
			TokenDir:     ".storefront",
		},
		Cache: Cache{
			TTL: 30 * time.Second,
		},
		UI: UI{
			ToastDuration:  4 * time.Second,
			DebounceDelay:  300 * time.Millisecond,
			HealthInterval: time.Minute,
		},
		Upload: Upload{
			MaxSize:      10 << 20,
			AllowedTypes: []string{"image/jpeg", "image/jpg", "image/png", "image/gif"},
		},
		Limits: Limits{
			MaxColors:          10,
			MaxSubcategories:   50,
			SubcategoryNameMax: 100,
		},
		Site: Site{
			Address:  ":3000",
			PageSize: 12,
		},
		Log: Log{
			Level:      "info",
			Format:     "text",
			File:       ".storefront/storefront.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("config: api.base_url cannot be empty")
	}
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Version == "" {
		return errors.New("config: api.version cannot be empty")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: api.timeout must be positive, got %v", c.API.Timeout)
	}
	if c.Auth.TokenKey == "" {
		return errors.New("config: auth.token_key cannot be empty")
	}
	switch c.Auth.TokenBackend {
	case "file", "sqlite":
		// valid
	default:
		return fmt.Errorf("config: auth.token_backend must be \"file\" or \"sqlite\", got %q", c.Auth.TokenBackend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("config: cache.ttl must be non-negative, got %v", c.Cache.TTL)
	}
	if c.UI.ToastDuration < 0 {
		return fmt.Errorf("config: ui.toast_duration must be non-negative, got %v", c.UI.ToastDuration)
	}
	if c.UI.HealthInterval <= 0 {
		return fmt.Errorf("config: ui.health_interval must be positive, got %v", c.UI.HealthInterval)
	}
	if c.Upload.MaxSize <= 0 {
		return fmt.Errorf("config: upload.max_size must be positive, got %d", c.Upload.MaxSize)
	}
	if c.Limits.MaxColors < 1 {
		return fmt.Errorf("config: limits.max_colors must be at least 1, got %d", c.Limits.MaxColors)
	}
	if c.Limits.SubcategoryNameMax < 1 {
		return fmt.Errorf("config: limits.subcategory_name_max must be at least 1, got %d", c.Limits.SubcategoryNameMax)
	}
	if c.Site.PageSize < 1 {
		return fmt.Errorf("config: site.page_size must be at least 1, got %d", c.Site.PageSize)
	}
	switch c.Log.Format {
	case "", "text", "json":
		// valid
	default:
		return fmt.Errorf("config: log.format must be \"text\" or \"json\", got %q", c.Log.Format)
	}
	return nil
}

// LoadDotEnv loads KEY=value pairs from path into the process environment.
// A missing file is not an error. Variables already set are not overwritten.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: loading %s: %w", path, err)
	}
	return nil
}

// envOverrides lists the supported environment variables.
// Zero values mean "unset" and leave the layered value in place.
type envOverrides struct {
	BaseURL       string        `env:"STOREFRONT_API_BASE_URL"`
	Version       string        `env:"STOREFRONT_API_VERSION"`
	Timeout       time.Duration `env:"STOREFRONT_API_TIMEOUT"`
	TokenKey      string        `env:"STOREFRONT_TOKEN_KEY"`
	TokenBackend  string        `env:"STOREFRONT_TOKEN_BACKEND"`
	TokenDir      string        `env:"STOREFRONT_TOKEN_DIR"`
	CacheTTL      time.Duration `env:"STOREFRONT_CACHE_TTL"`
	ToastDuration time.Duration `env:"STOREFRONT_TOAST_DURATION"`
	SiteAddress   string        `env:"STOREFRONT_SITE_ADDRESS"`
	LogLevel      string        `env:"STOREFRONT_LOG_LEVEL"`
	LogFile       string        `env:"STOREFRONT_LOG_FILE"`
	OtelGlobal    bool          `env:"STOREFRONT_OTEL_GLOBAL"`
}

// ApplyEnv applies STOREFRONT_* environment variable overrides to the config.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("config: parsing environment: %w", err)
	}
	if o.BaseURL != "" {
		c.API.BaseURL = o.BaseURL
	}
	if o.Version != "" {
		c.API.Version = o.Version
	}
	if o.Timeout != 0 {
		c.API.Timeout = o.Timeout
	}
	if o.TokenKey != "" {
		c.Auth.TokenKey = o.TokenKey
	}
	if o.TokenBackend != "" {
		c.Auth.TokenBackend = o.TokenBackend
	}
	if o.TokenDir != "" {
		c.Auth.TokenDir = o.TokenDir
	}
	if o.CacheTTL != 0 {
		c.Cache.TTL = o.CacheTTL
	}
	if o.ToastDuration != 0 {
		c.UI.ToastDuration = o.ToastDuration
	}
	if o.SiteAddress != "" {
		c.Site.Address = o.SiteAddress
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	if o.LogFile != "" {
		c.Log.File = o.LogFile
	}
	if o.OtelGlobal {
		c.Observability.Global = true
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	API    *rawAPI    `yaml:"api"`
	Auth   *rawAuth   `yaml:"auth"`
	Cache  *rawCache  `yaml:"cache"`
	UI     *rawUI     `yaml:"ui"`
	Upload *rawUpload `yaml:"upload"`
	Limits *rawLimits `yaml:"limits"`
	Site   *rawSite   `yaml:"site"`
	Log    *rawLog    `yaml:"log"`

	Observability *rawObservability `yaml:"observability"`
}

type rawAPI struct {
	BaseURL *string        `yaml:"base_url"`
	Version *string        `yaml:"version"`
	Timeout *time.Duration `yaml:"timeout"`
}

type rawAuth struct {
	TokenKey     *string `yaml:"token_key"`
	TokenBackend *string `yaml:"token_backend"`
	TokenDir     *string `yaml:"token_dir"`
}

type rawCache struct {
	TTL *time.Duration `yaml:"ttl"`
}

type rawUI struct {
	ToastDuration  *time.Duration `yaml:"toast_duration"`
	DebounceDelay  *time.Duration `yaml:"debounce_delay"`
	HealthInterval *time.Duration `yaml:"health_interval"`
}

type rawUpload struct {
	MaxSize      *int64    `yaml:"max_size"`
	AllowedTypes *[]string `yaml:"allowed_types"`
}

type rawLimits struct {
	MaxColors          *int `yaml:"max_colors"`
	MaxSubcategories   *int `yaml:"max_subcategories"`
	SubcategoryNameMax *int `yaml:"subcategory_name_max"`
}

type rawSite struct {
	Address  *string `yaml:"address"`
	PageSize *int    `yaml:"page_size"`
}

type rawLog struct {
	Level      *string `yaml:"level"`
	Format     *string `yaml:"format"`
	File       *string `yaml:"file"`
	MaxSizeMB  *int    `yaml:"max_size_mb"`
	MaxBackups *int    `yaml:"max_backups"`
	MaxAgeDays *int    `yaml:"max_age_days"`
}

type rawObservability struct {
	Global *bool `yaml:"global"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if l := layer.API; l != nil {
		set(&c.API.BaseURL, l.BaseURL)
		set(&c.API.Version, l.Version)
		set(&c.API.Timeout, l.Timeout)
	}
	if l := layer.Auth; l != nil {
		set(&c.Auth.TokenKey, l.TokenKey)
		set(&c.Auth.TokenBackend, l.TokenBackend)
		set(&c.Auth.TokenDir, l.TokenDir)
	}
	if l := layer.Cache; l != nil {
		set(&c.Cache.TTL, l.TTL)
	}
	if l := layer.UI; l != nil {
		set(&c.UI.ToastDuration, l.ToastDuration)
		set(&c.UI.DebounceDelay, l.DebounceDelay)
		set(&c.UI.HealthInterval, l.HealthInterval)
	}
	if l := layer.Upload; l != nil {
		set(&c.Upload.MaxSize, l.MaxSize)
		if l.AllowedTypes != nil {
			c.Upload.AllowedTypes = append([]string(nil), (*l.AllowedTypes)...)
		}
	}
	if l := layer.Limits; l != nil {
		set(&c.Limits.MaxColors, l.MaxColors)
		set(&c.Limits.MaxSubcategories, l.MaxSubcategories)
		set(&c.Limits.SubcategoryNameMax, l.SubcategoryNameMax)
	}
	if l := layer.Site; l != nil {
		set(&c.Site.Address, l.Address)
		set(&c.Site.PageSize, l.PageSize)
	}
	if l := layer.Log; l != nil {
		set(&c.Log.Level, l.Level)
		set(&c.Log.Format, l.Format)
		set(&c.Log.File, l.File)
		set(&c.Log.MaxSizeMB, l.MaxSizeMB)
		set(&c.Log.MaxBackups, l.MaxBackups)
		set(&c.Log.MaxAgeDays, l.MaxAgeDays)
	}
	if l := layer.Observability; l != nil {
		set(&c.Observability.Global, l.Global)
	}
}
