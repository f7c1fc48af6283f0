// Package dedupe tracks form submission tokens so a replayed POST is ignored.
package dedupe

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Deduper records submission tokens to ensure at-most-once handling.
type Deduper interface {
	// SeenAndRecord atomically checks if token was seen and records it if not.
	// Returns true if token was already seen.
	SeenAndRecord(ctx context.Context, token string) bool

	// Unrecord forgets a token so a failed submission can be retried.
	Unrecord(ctx context.Context, token string)

	Size() int64
}

// boundedDeduper keeps the most recent maxSize tokens; the oldest is evicted first.
type boundedDeduper struct {
	cache *lru.Cache[string, struct{}]
}

// unboundedDeduper never forgets a token unless asked to.
type unboundedDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewInMemoryDeduper creates an in-memory deduper. WithMaxSize(0) disables eviction.
func NewInMemoryDeduper(opts ...Option) Deduper {
	cfg := config{maxSize: 10_000}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.maxSize <= 0 {
		return &unboundedDeduper{seen: make(map[string]struct{})}
	}

	cache, err := lru.New[string, struct{}](cfg.maxSize)
	if err != nil {
		// only fails for a non-positive size, handled above
		panic(err)
	}
	return &boundedDeduper{cache: cache}
}

func (d *boundedDeduper) SeenAndRecord(_ context.Context, token string) bool {
	if token == "" {
		return false
	}
	seen, _ := d.cache.ContainsOrAdd(token, struct{}{})
	return seen
}

func (d *boundedDeduper) Unrecord(_ context.Context, token string) {
	d.cache.Remove(token)
}

func (d *boundedDeduper) Size() int64 {
	return int64(d.cache.Len())
}

func (d *unboundedDeduper) SeenAndRecord(_ context.Context, token string) bool {
	if token == "" {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[token]; ok {
		return true
	}
	d.seen[token] = struct{}{}
	return false
}

func (d *unboundedDeduper) Unrecord(_ context.Context, token string) {
	d.mu.Lock()
	delete(d.seen, token)
	d.mu.Unlock()
}

func (d *unboundedDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
