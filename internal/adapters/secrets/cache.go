package secrets

import (
	"strings"
	"sync"
	"time"

	"github.com/kevin07696/wompi-go/internal/adapters/ports"
)

// DefaultCacheTTL bounds how long a resolved secret is reused before the backend is asked again
const DefaultCacheTTL = 5 * time.Minute

// secretCache is a small TTL cache shared by the remote secret sources
type secretCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	secret    *ports.Secret
	expiresAt time.Time
}

// newSecretCache returns nil (caching disabled) when ttl is not positive
func newSecretCache(ttl time.Duration) *secretCache {
	if ttl <= 0 {
		return nil
	}
	return &secretCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *secretCache) get(key string) *ports.Secret {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil
	}
	return entry.secret
}

func (c *secretCache) set(key string, secret *ports.Secret) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry{
		secret:    secret,
		expiresAt: c.now().Add(c.ttl),
	}
}

// splitField separates an optional "#field" selector from a secret path.
// "wompi/prod#events_secret" names the events_secret key inside the wompi/prod entry.
func splitField(path string) (string, string) {
	if i := strings.LastIndex(path, "#"); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, ""
}

// pickValue chooses the secret value out of a key/value document:
// the selected field, else "value", else the only string entry.
func pickValue(data map[string]interface{}, field string) (string, bool) {
	if field != "" {
		s, ok := data[field].(string)
		return s, ok && s != ""
	}
	if s, ok := data["value"].(string); ok && s != "" {
		return s, true
	}

	var only string
	count := 0
	for _, v := range data {
		if s, ok := v.(string); ok {
			only = s
			count++
		}
	}
	return only, count == 1 && only != ""
}

// stringMetadata copies the remaining string entries as secret metadata
func stringMetadata(data map[string]interface{}, skip string) map[string]string {
	meta := make(map[string]string)
	for k, v := range data {
		if k == skip || k == "value" {
			continue
		}
		if s, ok := v.(string); ok {
			meta[k] = s
		}
	}
	return meta
}
