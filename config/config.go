package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Log      LogConfig
	HTTP     HTTPConfig
	Browser  BrowserConfig
	Scrapers ScrapersConfig
	Pipeline PipelineConfig
	Server   ServerConfig
	Webhook  WebhookConfig
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// HTTPConfig controls the plain HTTP fetcher used for listing and post pages.
type HTTPConfig struct {
	// Timeout is the per-request deadline.
	Timeout time.Duration // default: 10s
}

// BrowserConfig controls the Rod browser session used for redirect resolution.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// DefaultProxy is the proxy URL for all browser traffic.
	DefaultProxy string

	// SettleDelay is how long to wait after navigation for the affiliate
	// redirect chain to finish before reading the address bar.
	SettleDelay time.Duration // default: 2s

	// NavigationTimeout is the max time for a single page.Navigate.
	NavigationTimeout time.Duration // default: 15s
}

// ScraperConfig controls one site scraper.
type ScraperConfig struct {
	// Enabled toggles the scraper. A disabled scraper is terminal from
	// construction and never opens a browser session.
	Enabled bool

	// MaxPages caps how many listing pages are scraped. 0 means no cap
	// beyond the site's own pagination bound.
	MaxPages int
}

// ScrapersConfig holds the per-site scraper toggles.
type ScrapersConfig struct {
	CouponScorpion ScraperConfig
}

// PipelineConfig controls the scrape/enroll cycle loop.
type PipelineConfig struct {
	// Interval is the pause between cycles.
	Interval time.Duration // default: 5m

	// SeenTTL is how long a discovered course link is remembered so it is
	// not handed to the enroller twice.
	SeenTTL time.Duration // default: 24h
}

// ServerConfig controls the optional status API.
type ServerConfig struct {
	Enabled bool   // default: false
	Host    string // default: "0.0.0.0"
	Port    int    // default: 8080
	Mode    string // "debug", "release", "test"; default: "release"

	// APIKeys, when non-empty, protects /stats with API-key auth.
	APIKeys []string
}

// WebhookConfig controls the optional discovery webhook.
type WebhookConfig struct {
	// URL receives a JSON event with newly discovered links. Empty disables.
	URL string

	// Secret, when non-empty, signs the payload with HMAC-SHA256.
	Secret string
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Log: LogConfig{
			Level:  envOr("ENROLLER_LOG_LEVEL", "info"),
			Format: envOr("ENROLLER_LOG_FORMAT", "json"),
		},
		HTTP: HTTPConfig{
			Timeout: envDurationOr("ENROLLER_HTTP_TIMEOUT", 10*time.Second),
		},
		Browser: BrowserConfig{
			Headless:          envBoolOr("ENROLLER_HEADLESS", true),
			NoSandbox:         envBoolOr("ENROLLER_NO_SANDBOX", false),
			BrowserBin:        os.Getenv("ENROLLER_BROWSER_BIN"),
			DefaultProxy:      os.Getenv("ENROLLER_PROXY"),
			SettleDelay:       envDurationOr("ENROLLER_SETTLE_DELAY", 2*time.Second),
			NavigationTimeout: envDurationOr("ENROLLER_NAV_TIMEOUT", 15*time.Second),
		},
		Scrapers: ScrapersConfig{
			CouponScorpion: ScraperConfig{
				Enabled:  envBoolOr("ENROLLER_COUPONSCORPION_ENABLED", true),
				MaxPages: envIntOr("ENROLLER_COUPONSCORPION_MAX_PAGES", 0),
			},
		},
		Pipeline: PipelineConfig{
			Interval: envDurationOr("ENROLLER_CYCLE_INTERVAL", 5*time.Minute),
			SeenTTL:  envDurationOr("ENROLLER_SEEN_TTL", 24*time.Hour),
		},
		Server: ServerConfig{
			Enabled: envBoolOr("ENROLLER_SERVER_ENABLED", false),
			Host:    envOr("ENROLLER_HOST", "0.0.0.0"),
			Port:    envIntOr("ENROLLER_PORT", 8080),
			Mode:    envOr("ENROLLER_MODE", "release"),
			APIKeys: envSliceOr("ENROLLER_API_KEYS", nil),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("ENROLLER_WEBHOOK_URL"),
			Secret: os.Getenv("ENROLLER_WEBHOOK_SECRET"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
