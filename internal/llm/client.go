// Package llm provides the text-generation clients used by executors, the
// style judge and the mutation engine. Providers are selected by config;
// all of them satisfy the same narrow Client interface.
package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Client is the interface for LLM interactions.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Cache is an in-memory response cache keyed on prompt content. It is
// constructed explicitly and injected; there is no package-level instance.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewCache creates an empty response cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

func cacheKey(systemPrompt, userPrompt string) string {
	sum := sha256.Sum256([]byte(systemPrompt + "\n" + userPrompt))
	return hex.EncodeToString(sum[:])
}

// Get returns a cached response if present.
func (c *Cache) Get(systemPrompt, userPrompt string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[cacheKey(systemPrompt, userPrompt)]
	return v, ok
}

// Put stores a response.
func (c *Cache) Put(systemPrompt, userPrompt, response string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(systemPrompt, userPrompt)] = response
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CachedClient wraps a Client with a response cache. Identical prompts
// within one run are answered from memory, saving rollout cost on repeated
// evaluations of unchanged candidates.
type CachedClient struct {
	inner Client
	cache *Cache
}

// NewCachedClient wraps inner with cache.
func NewCachedClient(inner Client, cache *Cache) *CachedClient {
	return &CachedClient{inner: inner, cache: cache}
}

// Complete implements Client.
func (c *CachedClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem implements Client.
func (c *CachedClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if resp, ok := c.cache.Get(systemPrompt, userPrompt); ok {
		return resp, nil
	}
	resp, err := c.inner.CompleteWithSystem(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	c.cache.Put(systemPrompt, userPrompt, resp)
	return resp, nil
}
