package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erraggy/oasgate"
	"github.com/erraggy/oasgate/httpvalidator"
	"github.com/erraggy/oasgate/parser"
)

// specInput represents the three ways an OAS document can be provided to a tool.
// Exactly one of File, URL, or Content must be set.
type specInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to an OAS file on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"URL to fetch an OAS document from"`
	Content string `json:"content,omitempty" jsonschema:"Inline OAS document content (JSON or YAML)"`
}

// loadedSpec is a parsed document together with the validator built for it.
// The validator keeps its compiled schemas, so a cached entry also caches
// every operation validated so far.
type loadedSpec struct {
	result    *parser.ParseResult
	validator *httpvalidator.Validator
}

// cacheEntry holds a cached spec with LRU ordering and TTL expiry.
type cacheEntry struct {
	spec      *loadedSpec
	insertAt  time.Time
	expiresAt time.Time
}

// specCacheStore provides a session-scoped cache of loaded specs.
// File inputs are keyed by (absolutePath, modTime). Content inputs are keyed
// by a SHA-256 hash. URL inputs are keyed by URL string.
// Entries have per-type TTLs and a background sweeper removes expired entries.
type specCacheStore struct {
	mu             sync.Mutex
	entries        map[string]*cacheEntry
	maxSize        int
	sweeperStarted atomic.Bool
}

var specCache = &specCacheStore{
	entries: make(map[string]*cacheEntry),
	maxSize: cfg.CacheMaxSize,
}

// get returns a cached spec or nil. Expired entries are lazily removed.
func (c *specCacheStore) get(key string) *loadedSpec {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
			delete(c.entries, key)
			return nil
		}
		// Touch entry for LRU.
		e.insertAt = time.Now()
		return e.spec
	}
	return nil
}

// putWithTTL stores a spec with a specific TTL, evicting the least recently
// used entry if at capacity.
func (c *specCacheStore) putWithTTL(key string, spec *loadedSpec, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &cacheEntry{spec: spec, insertAt: now, expiresAt: now.Add(ttl)}

	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry
		return
	}

	if len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestTime time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = e.insertAt
			}
		}
		if oldestKey != "" {
			delete(c.entries, oldestKey)
		}
	}

	c.entries[key] = entry
}

// sweep removes all expired entries from the cache.
func (c *specCacheStore) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// startSweeper launches a background goroutine that periodically removes expired entries.
// It is safe to call multiple times; only the first call spawns a sweeper.
// It stops when ctx is cancelled.
func (c *specCacheStore) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	if !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

// reset clears all cached entries. Used in tests.
func (c *specCacheStore) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// size returns the number of cached entries.
func (c *specCacheStore) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// makeCacheKey creates a cache key for the given spec input, or "" when the
// input cannot be cached.
func makeCacheKey(s specInput) string {
	switch {
	case s.File != "":
		absPath, err := filepath.Abs(s.File)
		if err != nil {
			return ""
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return "" // Can't stat, don't cache.
		}
		return fmt.Sprintf("file:%s:%d", absPath, info.ModTime().UnixNano())
	case s.Content != "":
		h := sha256.Sum256([]byte(s.Content))
		return fmt.Sprintf("content:%s", hex.EncodeToString(h[:]))
	case s.URL != "":
		return fmt.Sprintf("url:%s", s.URL)
	default:
		return ""
	}
}

// resolve parses the document from whichever input was provided and builds
// its validator, using the cache for all three input kinds.
func (s specInput) resolve(ctx context.Context) (*loadedSpec, error) {
	count := 0
	if s.File != "" {
		count++
	}
	if s.URL != "" {
		count++
	}
	if s.Content != "" {
		count++
	}
	if count != 1 {
		return nil, fmt.Errorf("exactly one of file, url, or content must be provided (got %d)", count)
	}

	if s.Content != "" && int64(len(s.Content)) > cfg.MaxInlineSize {
		return nil, fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set OASGATE_MAX_INLINE_SIZE to increase",
			len(s.Content), cfg.MaxInlineSize)
	}

	var key string
	var ttl time.Duration
	if cfg.CacheEnabled {
		key = makeCacheKey(s)
		switch {
		case s.File != "":
			ttl = cfg.CacheFileTTL
		case s.URL != "":
			ttl = cfg.CacheURLTTL
		default:
			ttl = cfg.CacheContentTTL
		}
	}

	if key != "" {
		if cached := specCache.get(key); cached != nil {
			return cached, nil
		}
	}

	result, err := s.parse(ctx)
	if err != nil {
		return nil, err
	}
	v, err := httpvalidator.New(result.Document,
		httpvalidator.WithAllowUnknownQueryParameters(cfg.AllowUnknownQuery),
		httpvalidator.WithAllowedQueryParameters(cfg.AllowedQuery...),
		httpvalidator.WithMaxBodySize(cfg.MaxBodySize),
	)
	if err != nil {
		return nil, err
	}
	spec := &loadedSpec{result: result, validator: v}

	if key != "" {
		specCache.putWithTTL(key, spec, ttl)
	}
	return spec, nil
}

func (s specInput) parse(ctx context.Context) (*parser.ParseResult, error) {
	switch {
	case s.File != "":
		return parser.ParseWithOptions(parser.WithFilePath(s.File))
	case s.URL != "":
		return fetchSpec(ctx, s.URL)
	default:
		return parser.ParseWithOptions(parser.WithReader(strings.NewReader(s.Content)))
	}
}

// fetchSpec downloads and parses the document at rawURL. Private and
// loopback addresses are refused unless OASGATE_ALLOW_PRIVATE_IPS is set.
func fetchSpec(ctx context.Context, rawURL string) (*parser.ParseResult, error) {
	client := newFetchClient(addressPolicy{allowPrivate: cfg.AllowPrivateIPs})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	req.Header.Set("User-Agent", oasgate.UserAgent())
	resp, err := client.Do(req) //nolint:gosec // G107: destinations are filtered by addressPolicy
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", rawURL, resp.Status)
	}
	return parser.ParseWithOptions(
		parser.WithReader(resp.Body),
		parser.WithMaxFileSize(cfg.MaxInlineSize),
		parser.WithSourceName(rawURL),
	)
}
