package httpvalidator

import (
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

const cacheShards = 16

// validatorPair is everything needed to validate requests for one
// (method, route, content type) key. It is never modified after it is
// published to the cache.
type validatorPair struct {
	general       CompiledSchema
	body          CompiledSchema
	discriminator *DiscriminatorSpec
	props         *SchemaProperties
	// allowlist holds query parameter names accepted in addition to the
	// declared ones.
	allowlist []string
	// allowUnknown disables the query parameter policy for the operation.
	allowUnknown bool
}

// validatorCache is a copy-on-write map from cache key to validator pair.
// Lookups are lock-free; a store copies the shard's map and publishes the
// copy under the shard mutex.
type validatorCache struct {
	shards [cacheShards]cacheShard
}

type cacheShard struct {
	mu      sync.Mutex
	entries atomic.Pointer[map[string]*validatorPair]
}

func newValidatorCache() *validatorCache {
	c := &validatorCache{}
	for i := range c.shards {
		empty := make(map[string]*validatorPair)
		c.shards[i].entries.Store(&empty)
	}
	return c
}

func (c *validatorCache) shard(key string) *cacheShard {
	return &c.shards[xxhash.Sum64String(key)%cacheShards]
}

// load returns the published pair for key.
func (c *validatorCache) load(key string) (*validatorPair, bool) {
	pair, ok := (*c.shard(key).entries.Load())[key]
	return pair, ok
}

// store publishes pair under key unless another pair was published first,
// and returns the pair that is in the cache. Every caller racing on a key
// therefore ends up with the same pointer.
func (c *validatorCache) store(key string, pair *validatorPair) *validatorPair {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	current := *s.entries.Load()
	if existing, ok := current[key]; ok {
		return existing
	}
	next := make(map[string]*validatorPair, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[key] = pair
	s.entries.Store(&next)
	return pair
}

// len returns the number of cached pairs.
func (c *validatorCache) len() int {
	n := 0
	for i := range c.shards {
		n += len(*c.shards[i].entries.Load())
	}
	return n
}

// cacheKey builds the "{METHOD}-{route}-{content type}" key.
func cacheKey(method, route string, ct ContentType) string {
	return method + "-" + route + "-" + ct.Key()
}
