package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// CacheKey derives a deterministic key from call parameters. The JSON
// encoding of a flat params struct is canonical enough: struct field
// order is fixed by the type definition.
func CacheKey(prompt string, opts Options) string {
	payload, _ := json.Marshal(struct {
		Prompt    string `json:"prompt"`
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		System    string `json:"system"`
	}{prompt, opts.Model, opts.MaxTokens, opts.System})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

type cacheEntry struct {
	value   string
	expires time.Time
}

// ResponseCache holds completion responses for a fixed time-to-live.
// Entries are never invalidated early except by explicit Clear or the
// periodic sweep.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration

	sweepStop chan struct{}
	sweepOnce sync.Once
}

// NewResponseCache creates a cache with the given TTL.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		entries:   make(map[string]cacheEntry),
		ttl:       ttl,
		sweepStop: make(chan struct{}),
	}
}

// Get returns the cached value for key if present and unexpired.
// A nil cache never hits.
func (c *ResponseCache) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expires) {
		return "", false
	}
	return entry.value, true
}

// Put stores a value under key with the configured TTL. A nil cache
// stores nothing.
func (c *ResponseCache) Put(key, value string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		value:   value,
		expires: time.Now().Add(c.ttl),
	}
}

// Clear drops every entry.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of entries, expired or not.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// StartSweep launches a background goroutine that drops expired
// entries at the given interval. Stop terminates it.
func (c *ResponseCache) StartSweep(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.sweepStop:
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

// Stop terminates the sweep goroutine. Safe to call more than once.
func (c *ResponseCache) Stop() {
	c.sweepOnce.Do(func() { close(c.sweepStop) })
}

func (c *ResponseCache) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
		}
	}
}

// CachedCompleter wraps a Completer with the response cache and retry
// policy. The cache is consulted before any new external call.
type CachedCompleter struct {
	inner Completer
	cache *ResponseCache
	retry RetryPolicy
}

// NewCachedCompleter builds the standard retry+cache wrapper.
func NewCachedCompleter(inner Completer, cache *ResponseCache, retry RetryPolicy) *CachedCompleter {
	return &CachedCompleter{inner: inner, cache: cache, retry: retry}
}

// Complete consults the cache, then delegates through the retry path.
func (c *CachedCompleter) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	key := CacheKey(prompt, opts)
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	var result string
	err := c.retry.Do(ctx, "complete", func(ctx context.Context) error {
		text, err := c.inner.Complete(ctx, prompt, opts)
		if err != nil {
			return err
		}
		result = text
		return nil
	})
	if err != nil {
		return "", err
	}

	c.cache.Put(key, result)
	return result, nil
}
