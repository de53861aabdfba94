package decision

import (
	"sync"
	"time"
)

// CooldownStore tracks per-key expiry timestamps gating repeat decisions.
type CooldownStore interface {
	// Active reports whether key holds an unexpired cooldown at now.
	Active(key string, now time.Time) bool
	// Set records a cooldown expiring at expiry.
	Set(key string, expiry time.Time)
	// ActiveCount returns the number of unexpired entries at now.
	ActiveCount(now time.Time) int
}

// MemoryCooldowns is the in-process CooldownStore. Expired entries are
// dropped lazily when encountered, never proactively swept; a size bound
// keeps long-running deployments from accumulating keys without limit.
type MemoryCooldowns struct {
	mu      sync.Mutex
	entries map[string]time.Time
	maxKeys int
}

// NewMemoryCooldowns creates a store bounded to maxKeys entries.
func NewMemoryCooldowns(maxKeys int) *MemoryCooldowns {
	if maxKeys <= 0 {
		maxKeys = 128
	}
	return &MemoryCooldowns{
		entries: make(map[string]time.Time),
		maxKeys: maxKeys,
	}
}

// Active reports whether the key's cooldown is still running. An expired
// entry is removed on the way out.
func (c *MemoryCooldowns) Active(key string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiry, ok := c.entries[key]
	if !ok {
		return false
	}
	if now.Before(expiry) {
		return true
	}
	delete(c.entries, key)
	return false
}

// Set records the expiry, evicting the entry closest to expiring when the
// bound is reached.
func (c *MemoryCooldowns) Set(key string, expiry time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxKeys {
		c.evictNearest()
	}
	c.entries[key] = expiry
}

// ActiveCount returns the number of unexpired cooldowns.
func (c *MemoryCooldowns) ActiveCount(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, expiry := range c.entries {
		if now.Before(expiry) {
			count++
		}
	}
	return count
}

func (c *MemoryCooldowns) evictNearest() {
	var victim string
	var nearest time.Time
	first := true
	for key, expiry := range c.entries {
		if first || expiry.Before(nearest) {
			victim = key
			nearest = expiry
			first = false
		}
	}
	if !first {
		delete(c.entries, victim)
	}
}
