package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Validator cache settings.
	CacheEnabled       bool
	CacheMaxSize       int
	CacheFileTTL       time.Duration
	CacheURLTTL        time.Duration
	CacheContentTTL    time.Duration
	CacheSweepInterval time.Duration

	// list_operations defaults.
	ListLimit int
	MaxLimit  int

	// Input limits.
	MaxInlineSize int64
	MaxBodySize   int64

	// Query parameter policy applied to every validator.
	AllowUnknownQuery bool
	AllowedQuery      []string

	// AllowPrivateIPs disables the SSRF guard for URL inputs.
	AllowPrivateIPs bool
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from OASGATE_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		CacheEnabled:       envBool("OASGATE_CACHE_ENABLED", true),
		CacheMaxSize:       envInt("OASGATE_CACHE_MAX_SIZE", 10),
		CacheFileTTL:       envDuration("OASGATE_CACHE_FILE_TTL", 15*time.Minute),
		CacheURLTTL:        envDuration("OASGATE_CACHE_URL_TTL", 5*time.Minute),
		CacheContentTTL:    envDuration("OASGATE_CACHE_CONTENT_TTL", 15*time.Minute),
		CacheSweepInterval: envDuration("OASGATE_CACHE_SWEEP_INTERVAL", 60*time.Second),
		ListLimit:          envInt("OASGATE_LIST_LIMIT", 100),
		MaxLimit:           envInt("OASGATE_MAX_LIMIT", 1000),
		MaxInlineSize:      envInt64("OASGATE_MAX_INLINE_SIZE", 10*1024*1024),
		MaxBodySize:        envInt64("OASGATE_MAX_BODY_SIZE", 1024*1024),
		AllowUnknownQuery:  envBool("OASGATE_ALLOW_UNKNOWN_QUERY", false),
		AllowedQuery:       envList("OASGATE_ALLOWED_QUERY_PARAMETERS"),
		AllowPrivateIPs:    envBool("OASGATE_ALLOW_PRIVATE_IPS", false),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return d
}

// envList splits a comma-separated value, dropping empty items.
func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
