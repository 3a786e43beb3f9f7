package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"CrawlFetcher/internal/fetch"
)

const (
	configPathEnv    = "CRAWL_FETCHER_CONFIG"
	logLevelEnv      = "CRAWL_FETCHER_LOG_LEVEL"
	headersPrefixEnv = "CRAWL_FETCHER_HEADERS_PREFIX"
	userAgentEnv     = "CRAWL_FETCHER_USER_AGENT"

	defaultUserAgent    = "crawlfetcher/1.0"
	defaultMaxRedirects = 10
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Fetch   FetchConfig   `yaml:"fetch"`
	HTTP    HTTPConfig    `yaml:"http"`
	Content ContentConfig `yaml:"content"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// FetchConfig controls response classification and metadata capture.
type FetchConfig struct {
	ValidStatusCodes    []int  `yaml:"validStatusCodes"`
	NotFoundStatusCodes []int  `yaml:"notFoundStatusCodes"`
	HeadersPrefix       string `yaml:"headersPrefix"`
	DetectContentType   bool   `yaml:"detectContentType"`
	DetectCharset       bool   `yaml:"detectCharset"`
}

// Policy maps the section onto a fetch policy that does not alias the config slices.
func (f FetchConfig) Policy() fetch.Policy {
	return fetch.Policy{
		ValidStatusCodes:    append([]int(nil), f.ValidStatusCodes...),
		NotFoundStatusCodes: append([]int(nil), f.NotFoundStatusCodes...),
		HeadersPrefix:       f.HeadersPrefix,
		DetectContentType:   f.DetectContentType,
		DetectCharset:       f.DetectCharset,
	}
}

// HTTPConfig configures the transport collaborator.
type HTTPConfig struct {
	Timeout      time.Duration      `yaml:"timeout"`
	UserAgent    string             `yaml:"userAgent"`
	MaxRedirects *int               `yaml:"maxRedirects"`
	Cookies      *bool              `yaml:"cookies"`
	Credentials  []CredentialConfig `yaml:"credentials"`
}

// CookiesEnabled reports whether a cookie jar should be attached. Defaults to true.
func (h HTTPConfig) CookiesEnabled() bool {
	return h.Cookies == nil || *h.Cookies
}

// RedirectLimit is the number of redirects a request may follow. Defaults to 10; 0 disables redirects.
func (h HTTPConfig) RedirectLimit() int {
	if h.MaxRedirects == nil {
		return defaultMaxRedirects
	}
	return *h.MaxRedirects
}

// CredentialConfig holds basic credentials offered to one host.
type CredentialConfig struct {
	Host     string `yaml:"host"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ContentConfig bounds how much fetched content stays in memory.
type ContentConfig struct {
	MaxMemoryBytes int64  `yaml:"maxMemoryBytes"`
	TempDir        string `yaml:"tempDir"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Address string `yaml:"address"`
}

// Serve reports whether the metrics endpoint should be started. Defaults to false.
func (m MetricsConfig) Serve() bool {
	return m.Enabled != nil && *m.Enabled
}

// Load reads the file named by CRAWL_FETCHER_CONFIG (if any) and applies environment overrides.
func Load() Config {
	return LoadFrom(os.Getenv(configPathEnv))
}

// LoadFrom reads YAML configuration from path (if non-empty) and applies environment overrides.
// Unreadable or malformed files are logged and ignored.
func LoadFrom(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg, err := Parse(raw)
			if err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Parse decodes a YAML document without applying defaults.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings the fetcher cannot work with.
func (c Config) Validate() error {
	if err := c.Fetch.Policy().Validate(); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout cannot be negative")
	}
	if c.HTTP.RedirectLimit() < 0 {
		return fmt.Errorf("http.maxRedirects cannot be negative")
	}
	if c.Content.MaxMemoryBytes < 0 {
		return fmt.Errorf("content.maxMemoryBytes cannot be negative")
	}
	for i, cred := range c.HTTP.Credentials {
		if strings.TrimSpace(cred.Host) == "" {
			return fmt.Errorf("http.credentials[%d].host is required", i)
		}
	}
	if c.Metrics.Serve() && strings.TrimSpace(c.Metrics.Address) == "" {
		return fmt.Errorf("metrics.address is required when metrics are enabled")
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v, ok := os.LookupEnv(headersPrefixEnv); ok {
		c.Fetch.HeadersPrefix = v
	}

	if v := os.Getenv(userAgentEnv); v != "" {
		c.HTTP.UserAgent = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Fetch.ValidStatusCodes != nil {
		base.Fetch.ValidStatusCodes = override.Fetch.ValidStatusCodes
	}
	if override.Fetch.NotFoundStatusCodes != nil {
		base.Fetch.NotFoundStatusCodes = override.Fetch.NotFoundStatusCodes
	}
	if override.Fetch.HeadersPrefix != "" {
		base.Fetch.HeadersPrefix = override.Fetch.HeadersPrefix
	}
	base.Fetch.DetectContentType = override.Fetch.DetectContentType
	base.Fetch.DetectCharset = override.Fetch.DetectCharset

	if override.HTTP.Timeout != 0 {
		base.HTTP.Timeout = override.HTTP.Timeout
	}
	if override.HTTP.UserAgent != "" {
		base.HTTP.UserAgent = override.HTTP.UserAgent
	}
	if override.HTTP.MaxRedirects != nil {
		base.HTTP.MaxRedirects = override.HTTP.MaxRedirects
	}
	if override.HTTP.Cookies != nil {
		base.HTTP.Cookies = override.HTTP.Cookies
	}
	if len(override.HTTP.Credentials) > 0 {
		base.HTTP.Credentials = override.HTTP.Credentials
	}

	if override.Content.MaxMemoryBytes != 0 {
		base.Content.MaxMemoryBytes = override.Content.MaxMemoryBytes
	}
	if override.Content.TempDir != "" {
		base.Content.TempDir = override.Content.TempDir
	}

	if override.Metrics.Enabled != nil {
		base.Metrics.Enabled = override.Metrics.Enabled
	}
	if override.Metrics.Address != "" {
		base.Metrics.Address = override.Metrics.Address
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Fetch: FetchConfig{
			ValidStatusCodes:    []int{200},
			NotFoundStatusCodes: []int{404},
		},
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: defaultUserAgent,
		},
		Content: ContentConfig{MaxMemoryBytes: 1 << 20},
		Metrics: MetricsConfig{Address: ":9090"},
	}
}
