package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Census    CensusConfig
	Probe     ProbeConfig
	PageSpeed PageSpeedConfig
	LLM       LLMConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Score     ScoreConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance used for rendered audits.
type BrowserConfig struct {
	// Enabled toggles headless rendering entirely. When false, every census
	// runs in static (source-only) mode.
	Enabled bool // default: true

	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent audits).
	MaxPages int // default: 4

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is the default proxy URL for browser and fetch traffic.
	Proxy string

	// BlockTrackers blocks font loads and known tracker domains during
	// rendering. Image loading is never blocked: the census needs the
	// browser's responsive source selection.
	BlockTrackers bool // default: true
}

// CensusConfig controls the DOM census engine.
type CensusConfig struct {
	// NavigationTimeout bounds the full rendered census of one page.
	// Real pages are slow; this is deliberately generous.
	NavigationTimeout time.Duration // default: 90s

	// ScrollSteps is the number of discrete downward scroll steps used to
	// trigger visibility-based lazy initialization before extraction.
	ScrollSteps int // default: 8

	// ScrollPause is the pause between scroll steps.
	ScrollPause time.Duration // default: 250ms

	// TopImagesPerSection caps the probed largest-image list per section.
	TopImagesPerSection int // default: 3

	// DefaultTarget is the audit target used when a request omits the url
	// parameter. Supplied once at startup, never mutated at runtime.
	DefaultTarget string
}

// ProbeConfig controls the image size prober.
type ProbeConfig struct {
	// Concurrency caps simultaneous outstanding probe requests.
	Concurrency int // default: 6

	// MaxCandidates caps how many URLs one batch will probe.
	MaxCandidates int // default: 40

	// Timeout bounds a single probe.
	Timeout time.Duration // default: 15s
}

// PageSpeedConfig controls the page-speed analysis API client.
type PageSpeedConfig struct {
	// APIKey is the upstream API credential. Requests to /api/audit fail
	// with a config error when it is empty.
	APIKey string

	// Endpoint is the analysis API base URL.
	Endpoint string // default: Google PSI v5

	// Timeout bounds one upstream analysis call.
	Timeout time.Duration // default: 60s
}

// LLMConfig controls the narrative summarizer client. The API key itself is
// bring-your-own, supplied per request.
type LLMConfig struct {
	BaseURL string        // default: "https://api.openai.com/v1"
	Model   string        // default: "gpt-4o-mini"
	Timeout time.Duration // default: 60s
}

// CORSConfig controls the browser origin allow-list. Requests without an
// Origin header (curl, server-to-server) are always permitted.
type CORSConfig struct {
	AllowedOrigins []string // default: ["http://localhost:3000"]
}

// RateLimitConfig controls per-client rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client IP.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per client IP.
	Burst int // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// ScoreConfig controls the scoring engine.
type ScoreConfig struct {
	// ThresholdsFile optionally points to a YAML file overriding the
	// built-in threshold table.
	ThresholdsFile string
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("PAGEPULSE_HOST", "0.0.0.0"),
			Port: envIntOr("PAGEPULSE_PORT", 8080),
			Mode: envOr("PAGEPULSE_MODE", "release"),
		},
		Browser: BrowserConfig{
			Enabled:       envBoolOr("PAGEPULSE_BROWSER_ENABLED", true),
			Headless:      envBoolOr("PAGEPULSE_HEADLESS", true),
			MaxPages:      envIntOr("PAGEPULSE_MAX_PAGES", 4),
			NoSandbox:     envBoolOr("PAGEPULSE_NO_SANDBOX", false),
			BrowserBin:    os.Getenv("PAGEPULSE_BROWSER_BIN"),
			Proxy:         os.Getenv("PAGEPULSE_PROXY"),
			BlockTrackers: envBoolOr("PAGEPULSE_BLOCK_TRACKERS", true),
		},
		Census: CensusConfig{
			NavigationTimeout:   envDurationOr("PAGEPULSE_NAV_TIMEOUT", 90*time.Second),
			ScrollSteps:         envIntOr("PAGEPULSE_SCROLL_STEPS", 8),
			ScrollPause:         envDurationOr("PAGEPULSE_SCROLL_PAUSE", 250*time.Millisecond),
			TopImagesPerSection: envIntOr("PAGEPULSE_TOP_IMAGES", 3),
			DefaultTarget:       os.Getenv("PAGEPULSE_DEFAULT_TARGET"),
		},
		Probe: ProbeConfig{
			Concurrency:   envIntOr("PAGEPULSE_PROBE_CONCURRENCY", 6),
			MaxCandidates: envIntOr("PAGEPULSE_PROBE_MAX_CANDIDATES", 40),
			Timeout:       envDurationOr("PAGEPULSE_PROBE_TIMEOUT", 15*time.Second),
		},
		PageSpeed: PageSpeedConfig{
			APIKey:   os.Getenv("PAGEPULSE_PAGESPEED_API_KEY"),
			Endpoint: envOr("PAGEPULSE_PAGESPEED_ENDPOINT", "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"),
			Timeout:  envDurationOr("PAGEPULSE_PAGESPEED_TIMEOUT", 60*time.Second),
		},
		LLM: LLMConfig{
			BaseURL: envOr("PAGEPULSE_LLM_BASE_URL", "https://api.openai.com/v1"),
			Model:   envOr("PAGEPULSE_LLM_MODEL", "gpt-4o-mini"),
			Timeout: envDurationOr("PAGEPULSE_LLM_TIMEOUT", 60*time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: envSliceOr("PAGEPULSE_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("PAGEPULSE_RATE_RPS", 2.0),
			Burst:             envIntOr("PAGEPULSE_RATE_BURST", 5),
		},
		Log: LogConfig{
			Level:  envOr("PAGEPULSE_LOG_LEVEL", "info"),
			Format: envOr("PAGEPULSE_LOG_FORMAT", "json"),
		},
		Score: ScoreConfig{
			ThresholdsFile: os.Getenv("PAGEPULSE_THRESHOLDS_FILE"),
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

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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
