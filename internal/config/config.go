// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/mintfeed/mintfeed-cli/internal/composer"
	"github.com/mintfeed/mintfeed-cli/internal/inject"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Wallet() WalletConfig
	Gallery() GalleryConfig
	Fetch() FetchConfig
	Injector() InjectorConfig

	// Browser Setters
	SetBrowserHeadless(bool)
	SetBrowserDebug(bool)

	// Wallet Setter
	SetWalletAddress(string)
}

// Config holds the entire application configuration. It uses private fields
// to enforce access through the Interface's getter methods.
type Config struct {
	logger   LoggerConfig
	browser  BrowserConfig
	wallet   WalletConfig
	gallery  GalleryConfig
	fetch    FetchConfig
	injector InjectorConfig
}

// fileConfig is the exported decode target; mapstructure cannot populate the
// unexported fields Config uses to force getter access.
type fileConfig struct {
	Logger   LoggerConfig   `mapstructure:"logger"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Wallet   WalletConfig   `mapstructure:"wallet"`
	Gallery  GalleryConfig  `mapstructure:"gallery"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Injector InjectorConfig `mapstructure:"injector"`
}

func (fc fileConfig) config() *Config {
	return &Config{
		logger:   fc.Logger,
		browser:  fc.Browser,
		wallet:   fc.Wallet,
		gallery:  fc.Gallery,
		fetch:    fc.Fetch,
		injector: fc.Injector,
	}
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.logger }
func (c *Config) Browser() BrowserConfig   { return c.browser }
func (c *Config) Wallet() WalletConfig     { return c.wallet }
func (c *Config) Gallery() GalleryConfig   { return c.gallery }
func (c *Config) Fetch() FetchConfig       { return c.fetch }
func (c *Config) Injector() InjectorConfig { return c.injector }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBrowserHeadless(b bool) { c.browser.Headless = b }
func (c *Config) SetBrowserDebug(b bool)    { c.browser.Debug = b }
func (c *Config) SetWalletAddress(a string) { c.wallet.Address = a }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the live browser session the injector
// attaches to.
type BrowserConfig struct {
	Headless bool `mapstructure:"headless" yaml:"headless"`
	Debug    bool `mapstructure:"debug" yaml:"debug"`
	// RemoteURL attaches to an already running browser's devtools endpoint
	// instead of launching one.
	RemoteURL         string         `mapstructure:"remote_url" yaml:"remote_url"`
	Args              []string       `mapstructure:"args" yaml:"args"`
	Viewport          map[string]int `mapstructure:"viewport" yaml:"viewport"`
	NavigationTimeout time.Duration  `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	// SnapshotInterval paces the DOM snapshot/mutation polling loop.
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval" yaml:"snapshot_interval"`
}

// WalletConfig identifies the wallet whose NFTs are listed.
type WalletConfig struct {
	Address string `mapstructure:"address" yaml:"address"`
}

// GalleryConfig configures the NFT indexer client.
type GalleryConfig struct {
	BaseURL           string  `mapstructure:"base_url" yaml:"base_url"`
	APIKey            string  `mapstructure:"api_key" yaml:"-"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	MaxRetries        int     `mapstructure:"max_retries" yaml:"max_retries"`
	MaxImageMB        int     `mapstructure:"max_image_mb" yaml:"max_image_mb"`
}

// FetchConfig tunes the outbound image fetches.
type FetchConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// InjectorConfig exposes the discovery heuristics' thresholds and weights so
// they can be recalibrated against host-page changes without a rebuild.
type InjectorConfig struct {
	MinComposeWidth  float64       `mapstructure:"min_compose_width" yaml:"min_compose_width"`
	MinComposeHeight float64       `mapstructure:"min_compose_height" yaml:"min_compose_height"`
	OpacityFloor     float64       `mapstructure:"opacity_floor" yaml:"opacity_floor"`
	ViewportSlack    float64       `mapstructure:"viewport_slack" yaml:"viewport_slack"`
	HighConfidence   float64       `mapstructure:"high_confidence" yaml:"high_confidence"`
	MaxRecent        int           `mapstructure:"max_recent" yaml:"max_recent"`
	RecentTTL        time.Duration `mapstructure:"recent_ttl" yaml:"recent_ttl"`
	SweepInterval    time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
	BlurDelay        time.Duration `mapstructure:"blur_delay" yaml:"blur_delay"`
	ProbeDelay       time.Duration `mapstructure:"probe_delay" yaml:"probe_delay"`

	Weights WeightsConfig `mapstructure:"weights" yaml:"weights"`
}

// WeightsConfig mirrors composer.ScoreWeights for file-based overrides.
type WeightsConfig struct {
	SizeCapPx       float64 `mapstructure:"size_cap_px" yaml:"size_cap_px"`
	SizePerPx       float64 `mapstructure:"size_per_px" yaml:"size_per_px"`
	InViewport      float64 `mapstructure:"in_viewport" yaml:"in_viewport"`
	InModal         float64 `mapstructure:"in_modal" yaml:"in_modal"`
	Focused         float64 `mapstructure:"focused" yaml:"focused"`
	DisabledPenalty float64 `mapstructure:"disabled_penalty" yaml:"disabled_penalty"`
}

// ComposerConfig converts the injector section into the composer package's
// runtime configuration.
func (ic InjectorConfig) ComposerConfig() composer.Config {
	cfg := composer.DefaultConfig()
	if ic.MinComposeWidth > 0 {
		cfg.MinComposeWidth = ic.MinComposeWidth
	}
	if ic.MinComposeHeight > 0 {
		cfg.MinComposeHeight = ic.MinComposeHeight
	}
	if ic.OpacityFloor > 0 {
		cfg.OpacityFloor = ic.OpacityFloor
	}
	if ic.ViewportSlack > 0 {
		cfg.ViewportSlack = ic.ViewportSlack
	}
	if ic.HighConfidence > 0 {
		cfg.HighConfidence = ic.HighConfidence
	}
	if ic.MaxRecent > 0 {
		cfg.MaxRecent = ic.MaxRecent
	}
	if ic.RecentTTL > 0 {
		cfg.RecentTTL = ic.RecentTTL
	}
	if ic.SweepInterval > 0 {
		cfg.SweepInterval = ic.SweepInterval
	}
	if ic.Weights.SizeCapPx > 0 {
		cfg.Weights.SizeCapPx = ic.Weights.SizeCapPx
	}
	if ic.Weights.SizePerPx > 0 {
		cfg.Weights.SizePerPx = ic.Weights.SizePerPx
	}
	if ic.Weights.InViewport > 0 {
		cfg.Weights.InViewport = ic.Weights.InViewport
	}
	if ic.Weights.InModal > 0 {
		cfg.Weights.InModal = ic.Weights.InModal
	}
	if ic.Weights.Focused > 0 {
		cfg.Weights.Focused = ic.Weights.Focused
	}
	if ic.Weights.DisabledPenalty != 0 {
		cfg.Weights.DisabledPenalty = ic.Weights.DisabledPenalty
	}
	return cfg
}

// InjectConfig converts the injector section into the trigger's delays.
func (ic InjectorConfig) InjectConfig() inject.Config {
	cfg := inject.DefaultConfig()
	if ic.BlurDelay > 0 {
		cfg.BlurDelay = ic.BlurDelay
	}
	if ic.ProbeDelay > 0 {
		cfg.ProbeDelay = ic.ProbeDelay
	}
	return cfg
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return fc.config()
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "mintfeed-cli")
	v.SetDefault("logger.log_file", "mintfeed.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.debug", false)
	v.SetDefault("browser.navigation_timeout", "90s")
	v.SetDefault("browser.snapshot_interval", "250ms")

	// -- Gallery --
	v.SetDefault("gallery.base_url", "https://api.mintfeed.io")
	v.SetDefault("gallery.requests_per_second", 4.0)
	v.SetDefault("gallery.max_retries", 2)
	v.SetDefault("gallery.max_image_mb", 16)

	// -- Fetch --
	v.SetDefault("fetch.timeout", "30s")

	// -- Injector --
	d := composer.DefaultConfig()
	v.SetDefault("injector.min_compose_width", d.MinComposeWidth)
	v.SetDefault("injector.min_compose_height", d.MinComposeHeight)
	v.SetDefault("injector.opacity_floor", d.OpacityFloor)
	v.SetDefault("injector.viewport_slack", d.ViewportSlack)
	v.SetDefault("injector.high_confidence", d.HighConfidence)
	v.SetDefault("injector.max_recent", d.MaxRecent)
	v.SetDefault("injector.recent_ttl", d.RecentTTL)
	v.SetDefault("injector.sweep_interval", d.SweepInterval)
	v.SetDefault("injector.blur_delay", "120ms")
	v.SetDefault("injector.probe_delay", "400ms")
	v.SetDefault("injector.weights.size_cap_px", d.Weights.SizeCapPx)
	v.SetDefault("injector.weights.size_per_px", d.Weights.SizePerPx)
	v.SetDefault("injector.weights.in_viewport", d.Weights.InViewport)
	v.SetDefault("injector.weights.in_modal", d.Weights.InModal)
	v.SetDefault("injector.weights.focused", d.Weights.Focused)
	v.SetDefault("injector.weights.disabled_penalty", d.Weights.DisabledPenalty)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// Bind environment variables for sensitive data
	v.BindEnv("gallery.api_key", "MINTFEED_GALLERY_API_KEY")
	v.BindEnv("wallet.address", "MINTFEED_WALLET_ADDRESS")

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg := fc.config()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.gallery.BaseURL == "" {
		return fmt.Errorf("gallery.base_url is a required configuration field")
	}
	if c.gallery.RequestsPerSecond <= 0 {
		return fmt.Errorf("gallery.requests_per_second must be positive")
	}
	if c.injector.OpacityFloor < 0 || c.injector.OpacityFloor >= 1 {
		return fmt.Errorf("injector.opacity_floor must be in [0, 1)")
	}
	if c.injector.MaxRecent <= 0 {
		return fmt.Errorf("injector.max_recent must be a positive integer")
	}
	return nil
}
