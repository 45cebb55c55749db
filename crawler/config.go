package crawler

import "time"

// DefaultUserAgent identifies linkrot to the servers it checks.
const DefaultUserAgent = "linkrot/1.0 (+https://github.com/lukemcguire/linkrot)"

// Config holds crawler configuration.
type Config struct {
	StartURL       string        // The starting URL for the crawl
	MaxDepth       int           // Deepest BFS level to fetch; 0 fetches only the seed, negative is unlimited
	Concurrency    int           // Maximum simultaneous HTTP operations (default 10)
	RequestTimeout time.Duration // Per-request timeout (default 10s)
	UserAgent      string        // User-Agent header sent with every request
	Username       string        // Basic auth user; empty disables auth
	Password       string        // Basic auth password
	MaxBodyBytes   int64         // Page body read limit (default 10 MiB)
	CheckCacheMB   int           // Check cache size; 0 disables caching
	CrawlTimeout   time.Duration // Overall crawl deadline; 0 means none
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(startURL string) Config {
	return Config{
		StartURL:       startURL,
		MaxDepth:       2,
		Concurrency:    10,
		RequestTimeout: 10 * time.Second,
		UserAgent:      DefaultUserAgent,
		MaxBodyBytes:   10 << 20,
		CheckCacheMB:   16,
	}
}

// withDefaults fills zero values that have no meaningful zero setting.
func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = 10
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 10 << 20
	}
	return c
}
