package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultUserAgent is the browser identity presented on both the discovery
// session and the CDN fetches so the two look like the same client.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config holds all configuration options for the harvest pipeline
type Config struct {
	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Browser session settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Discovery settings
	Discovery DiscoveryConfig `yaml:"discovery" json:"discovery"`

	// Offline extraction settings
	Extract ExtractConfig `yaml:"extract" json:"extract"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// OutputConfig holds output location configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
	URLsFile  string `yaml:"urls_file" json:"urls_file"`
}

// DownloadConfig holds acquisition-specific configuration
type DownloadConfig struct {
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	Delay          time.Duration `yaml:"delay" json:"delay"`
	MaxRetries     int           `yaml:"max_retries" json:"max_retries"`
	RetryStatuses  []int         `yaml:"retry_statuses" json:"retry_statuses"`
	BackoffFactor  float64       `yaml:"backoff_factor" json:"backoff_factor"`
	IndexPrefix    bool          `yaml:"index_prefix" json:"index_prefix"`
}

// BrowserConfig holds browser session configuration
type BrowserConfig struct {
	Headless     bool          `yaml:"headless" json:"headless"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent"`
	PageLoadWait time.Duration `yaml:"page_load_wait" json:"page_load_wait"`
}

// DiscoveryConfig holds scroll-expansion configuration
type DiscoveryConfig struct {
	MaxScrolls    int           `yaml:"max_scrolls" json:"max_scrolls"`
	ScrollDelay   time.Duration `yaml:"scroll_delay" json:"scroll_delay"`
	NudgeDelay    time.Duration `yaml:"nudge_delay" json:"nudge_delay"`
	MinDOMResults int           `yaml:"min_dom_results" json:"min_dom_results"`
}

// ExtractConfig holds offline extraction configuration
type ExtractConfig struct {
	MinResults int `yaml:"min_results" json:"min_results"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	OnComplete       bool   `yaml:"on_complete" json:"on_complete"`
	OnError          bool   `yaml:"on_error" json:"on_error"`
	NotificationType string `yaml:"notification_type" json:"notification_type"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Directory: "instagram_images",
			URLsFile:  "instagram_urls.txt",
		},
		Download: DownloadConfig{
			RequestTimeout: 30 * time.Second,
			Delay:          500 * time.Millisecond,
			MaxRetries:     3,
			RetryStatuses:  []int{429, 500, 502, 503, 504},
			BackoffFactor:  1.0,
			IndexPrefix:    true,
		},
		Browser: BrowserConfig{
			Headless:     false,
			UserAgent:    DefaultUserAgent,
			PageLoadWait: 5 * time.Second,
		},
		Discovery: DiscoveryConfig{
			MaxScrolls:    50,
			ScrollDelay:   2 * time.Second,
			NudgeDelay:    1 * time.Second,
			MinDOMResults: 5,
		},
		Extract: ExtractConfig{
			MinResults: 5,
		},
		Notifications: NotificationConfig{
			Enabled:          true,
			OnComplete:       true,
			OnError:          true,
			NotificationType: "terminal",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if outputDir := os.Getenv("IGHARVEST_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if urlsFile := os.Getenv("IGHARVEST_URLS_FILE"); urlsFile != "" {
		c.Output.URLsFile = urlsFile
	}

	if delay := os.Getenv("IGHARVEST_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil && d >= 0 {
			c.Download.Delay = d
		}
	}
	if retries := os.Getenv("IGHARVEST_MAX_RETRIES"); retries != "" {
		var val int
		fmt.Sscanf(retries, "%d", &val)
		if val >= 0 {
			c.Download.MaxRetries = val
		}
	}

	if userAgent := os.Getenv("IGHARVEST_USER_AGENT"); userAgent != "" {
		c.Browser.UserAgent = userAgent
	}
	if headless := os.Getenv("IGHARVEST_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) == "true"
	}

	if scrolls := os.Getenv("IGHARVEST_MAX_SCROLLS"); scrolls != "" {
		var val int
		fmt.Sscanf(scrolls, "%d", &val)
		if val > 0 {
			c.Discovery.MaxScrolls = val
		}
	}

	if notifEnabled := os.Getenv("IGHARVEST_NOTIFICATIONS_ENABLED"); notifEnabled != "" {
		c.Notifications.Enabled = strings.ToLower(notifEnabled) == "true"
	}

	if logLevel := os.Getenv("IGHARVEST_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".igharvest.yaml",
		".igharvest.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "igharvest", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "igharvest", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".igharvest.yaml"),
		filepath.Join(os.Getenv("HOME"), ".igharvest.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Output.URLsFile == "" {
		errs = append(errs, errors.New("urls file is required"))
	}

	if c.Download.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Download.Delay < 0 {
		errs = append(errs, errors.New("delay cannot be negative"))
	}
	if c.Download.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}
	if c.Download.BackoffFactor <= 0 {
		errs = append(errs, errors.New("backoff factor must be positive"))
	}
	for _, status := range c.Download.RetryStatuses {
		if status < 100 || status > 599 {
			errs = append(errs, fmt.Errorf("invalid retry status: %d", status))
		}
	}

	if c.Browser.UserAgent == "" {
		errs = append(errs, errors.New("browser user agent is required"))
	}

	if c.Discovery.MaxScrolls <= 0 {
		errs = append(errs, errors.New("max scrolls must be positive"))
	}
	if c.Discovery.ScrollDelay <= 0 {
		errs = append(errs, errors.New("scroll delay must be positive"))
	}
	if c.Discovery.MinDOMResults < 0 {
		errs = append(errs, errors.New("min dom results cannot be negative"))
	}

	if c.Extract.MinResults < 0 {
		errs = append(errs, errors.New("extract min results cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	validNotifTypes := map[string]bool{
		"terminal": true, "desktop": true, "none": true,
	}
	if !validNotifTypes[strings.ToLower(c.Notifications.NotificationType)] {
		errs = append(errs, errors.New("invalid notification type"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if urlsFile, ok := flags["urls-file"].(string); ok && urlsFile != "" {
		c.Output.URLsFile = urlsFile
	}
	if delay, ok := flags["delay"].(time.Duration); ok && delay >= 0 {
		c.Download.Delay = delay
	}
	if retries, ok := flags["retries"].(int); ok && retries >= 0 {
		c.Download.MaxRetries = retries
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if scrolls, ok := flags["max-scrolls"].(int); ok && scrolls > 0 {
		c.Discovery.MaxScrolls = scrolls
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igharvest.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// ShouldRetryStatus reports whether a status code is in the configured retry set.
func (c *DownloadConfig) ShouldRetryStatus(status int) bool {
	for _, s := range c.RetryStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// The yaml package cannot decode duration strings like "500ms" into
// time.Duration fields, so the sections that carry durations implement
// their own (un)marshaling. Absent keys keep whatever value the struct
// already holds, which lets partial config files override defaults.

// UnmarshalYAML decodes download settings, accepting Go duration strings
// for request_timeout and delay.
func (d *DownloadConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		RequestTimeout *string  `yaml:"request_timeout"`
		Delay          *string  `yaml:"delay"`
		MaxRetries     *int     `yaml:"max_retries"`
		RetryStatuses  []int    `yaml:"retry_statuses"`
		BackoffFactor  *float64 `yaml:"backoff_factor"`
		IndexPrefix    *bool    `yaml:"index_prefix"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.RequestTimeout != nil {
		parsed, err := time.ParseDuration(*raw.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid request_timeout: %w", err)
		}
		d.RequestTimeout = parsed
	}
	if raw.Delay != nil {
		parsed, err := time.ParseDuration(*raw.Delay)
		if err != nil {
			return fmt.Errorf("invalid delay: %w", err)
		}
		d.Delay = parsed
	}
	if raw.MaxRetries != nil {
		d.MaxRetries = *raw.MaxRetries
	}
	if raw.RetryStatuses != nil {
		d.RetryStatuses = raw.RetryStatuses
	}
	if raw.BackoffFactor != nil {
		d.BackoffFactor = *raw.BackoffFactor
	}
	if raw.IndexPrefix != nil {
		d.IndexPrefix = *raw.IndexPrefix
	}
	return nil
}

// MarshalYAML writes download settings with durations as strings.
func (d DownloadConfig) MarshalYAML() (interface{}, error) {
	return struct {
		RequestTimeout string  `yaml:"request_timeout"`
		Delay          string  `yaml:"delay"`
		MaxRetries     int     `yaml:"max_retries"`
		RetryStatuses  []int   `yaml:"retry_statuses"`
		BackoffFactor  float64 `yaml:"backoff_factor"`
		IndexPrefix    bool    `yaml:"index_prefix"`
	}{
		RequestTimeout: d.RequestTimeout.String(),
		Delay:          d.Delay.String(),
		MaxRetries:     d.MaxRetries,
		RetryStatuses:  d.RetryStatuses,
		BackoffFactor:  d.BackoffFactor,
		IndexPrefix:    d.IndexPrefix,
	}, nil
}

// UnmarshalYAML decodes browser settings, accepting a Go duration string
// for page_load_wait.
func (b *BrowserConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Headless     *bool   `yaml:"headless"`
		UserAgent    *string `yaml:"user_agent"`
		PageLoadWait *string `yaml:"page_load_wait"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.Headless != nil {
		b.Headless = *raw.Headless
	}
	if raw.UserAgent != nil && *raw.UserAgent != "" {
		b.UserAgent = *raw.UserAgent
	}
	if raw.PageLoadWait != nil {
		parsed, err := time.ParseDuration(*raw.PageLoadWait)
		if err != nil {
			return fmt.Errorf("invalid page_load_wait: %w", err)
		}
		b.PageLoadWait = parsed
	}
	return nil
}

// MarshalYAML writes browser settings with page_load_wait as a string.
func (b BrowserConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Headless     bool   `yaml:"headless"`
		UserAgent    string `yaml:"user_agent"`
		PageLoadWait string `yaml:"page_load_wait"`
	}{
		Headless:     b.Headless,
		UserAgent:    b.UserAgent,
		PageLoadWait: b.PageLoadWait.String(),
	}, nil
}

// UnmarshalYAML decodes discovery settings, accepting Go duration strings
// for scroll_delay and nudge_delay.
func (d *DiscoveryConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		MaxScrolls    *int    `yaml:"max_scrolls"`
		ScrollDelay   *string `yaml:"scroll_delay"`
		NudgeDelay    *string `yaml:"nudge_delay"`
		MinDOMResults *int    `yaml:"min_dom_results"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.MaxScrolls != nil {
		d.MaxScrolls = *raw.MaxScrolls
	}
	if raw.ScrollDelay != nil {
		parsed, err := time.ParseDuration(*raw.ScrollDelay)
		if err != nil {
			return fmt.Errorf("invalid scroll_delay: %w", err)
		}
		d.ScrollDelay = parsed
	}
	if raw.NudgeDelay != nil {
		parsed, err := time.ParseDuration(*raw.NudgeDelay)
		if err != nil {
			return fmt.Errorf("invalid nudge_delay: %w", err)
		}
		d.NudgeDelay = parsed
	}
	if raw.MinDOMResults != nil {
		d.MinDOMResults = *raw.MinDOMResults
	}
	return nil
}

// MarshalYAML writes discovery settings with delays as strings.
func (d DiscoveryConfig) MarshalYAML() (interface{}, error) {
	return struct {
		MaxScrolls    int    `yaml:"max_scrolls"`
		ScrollDelay   string `yaml:"scroll_delay"`
		NudgeDelay    string `yaml:"nudge_delay"`
		MinDOMResults int    `yaml:"min_dom_results"`
	}{
		MaxScrolls:    d.MaxScrolls,
		ScrollDelay:   d.ScrollDelay.String(),
		NudgeDelay:    d.NudgeDelay.String(),
		MinDOMResults: d.MinDOMResults,
	}, nil
}
