// Package config loads and validates linkrot configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lukemcguire/linkrot/crawler"
	"github.com/lukemcguire/linkrot/markup"
)

// Output formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatCSV      = "csv"
)

// EnvPrefix namespaces environment overrides, e.g. LINKROT_MAX_DEPTH.
const EnvPrefix = "LINKROT"

// Config captures every knob of a crawl run.
type Config struct {
	URL            string        `mapstructure:"url"`
	MaxDepth       int           `mapstructure:"max_depth"`
	Concurrency    int           `mapstructure:"concurrency"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	CheckCacheMB   int           `mapstructure:"check_cache_mb"`
	CrawlTimeout   time.Duration `mapstructure:"crawl_timeout"`
	Parser         string        `mapstructure:"parser"`
	Format         string        `mapstructure:"format"`
	Output         string        `mapstructure:"output"`
	NoTUI          bool          `mapstructure:"no_tui"`
	MetricsAddr    string        `mapstructure:"metrics_addr"`
	LogLevel       string        `mapstructure:"log_level"`
	LogDevelopment bool          `mapstructure:"log_development"`
}

// Load builds a Config from defaults, the optional file at path, the
// environment and whatever v already holds (bound flags, explicit Sets).
func Load(v *viper.Viper, path string) (Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// SetDefaults registers the default of every key.
func SetDefaults(v *viper.Viper) {
	d := crawler.DefaultConfig("")
	v.SetDefault("url", "")
	v.SetDefault("max_depth", d.MaxDepth)
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("max_body_bytes", d.MaxBodyBytes)
	v.SetDefault("check_cache_mb", d.CheckCacheMB)
	v.SetDefault("crawl_timeout", time.Duration(0))
	v.SetDefault("parser", markup.ParserTokenizer)
	v.SetDefault("format", FormatText)
	v.SetDefault("output", "")
	v.SetDefault("no_tui", false)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	var errs []error

	if c.URL == "" {
		errs = append(errs, errors.New("url is required"))
	} else if u, err := url.Parse(c.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("url %q must be an absolute http or https URL", c.URL))
	}
	if c.Concurrency <= 0 {
		errs = append(errs, errors.New("concurrency must be > 0"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be > 0"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("max_body_bytes must be > 0"))
	}
	if c.CheckCacheMB < 0 {
		errs = append(errs, errors.New("check_cache_mb must be >= 0"))
	}
	if c.CrawlTimeout < 0 {
		errs = append(errs, errors.New("crawl_timeout must be >= 0"))
	}
	if _, err := markup.New(c.Parser); err != nil {
		errs = append(errs, err)
	}
	switch c.Format {
	case FormatText, FormatMarkdown, FormatJSON, FormatCSV:
	default:
		errs = append(errs, fmt.Errorf("format %q must be one of text, markdown, json, csv", c.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Crawler converts the run configuration into crawler settings.
func (c Config) Crawler() crawler.Config {
	return crawler.Config{
		StartURL:       c.URL,
		MaxDepth:       c.MaxDepth,
		Concurrency:    c.Concurrency,
		RequestTimeout: c.RequestTimeout,
		UserAgent:      c.UserAgent,
		Username:       c.Username,
		Password:       c.Password,
		MaxBodyBytes:   c.MaxBodyBytes,
		CheckCacheMB:   c.CheckCacheMB,
		CrawlTimeout:   c.CrawlTimeout,
	}
}
