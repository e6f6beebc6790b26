// Package cache memoizes resolution results keyed by a fingerprint of
// widget name and script content. Entries never expire by time; eviction
// is demand-driven only.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/pagecraft/backend/internal/engine/extract"
	"github.com/pagecraft/backend/internal/shared/fingerprint"
)

// Entry is one memoized resolution outcome. A nil Unit records a known
// failure so bad content is not re-evaluated on every request. Entries
// are replaced, never updated in place.
type Entry struct {
	Key       string
	Widget    string
	Unit      *extract.Unit
	CreatedAt time.Time
}

// Cache is a process-wide memoization layer over the resolution engine.
// Only its own Put and Evict mutate entries.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// New creates an empty cache
func New() *Cache {
	return &Cache{entries: make(map[string]*Entry)}
}

// Get looks up the unit for a widget's current script content. The
// second return reports a cache hit; a hit with a nil unit is a
// memoized failure.
func (c *Cache) Get(widget, scriptContent string) (*extract.Unit, bool) {
	key := fingerprint.Key(widget, scriptContent)

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return entry.Unit, true
}

// Put memoizes a resolution outcome. Editing a widget's source changes
// the fingerprint, so stale entries are simply never hit again.
func (c *Cache) Put(widget, scriptContent string, unit *extract.Unit) {
	key := fingerprint.Key(widget, scriptContent)
	entry := &Entry{
		Key:       key,
		Widget:    widget,
		Unit:      unit,
		CreatedAt: time.Now(),
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Evict removes entries whose widget name contains the given substring
// and returns how many were dropped. An empty substring clears the whole
// cache. Used for bulk invalidation when a widget's bundle is replaced.
func (c *Cache) Evict(widgetSubstring string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if widgetSubstring == "" {
		n := len(c.entries)
		c.entries = make(map[string]*Entry)
		return n
	}

	evicted := 0
	for key, entry := range c.entries {
		if strings.Contains(entry.Widget, widgetSubstring) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of live entries
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats summarizes cache contents by widget
type Stats struct {
	Entries  int            `json:"entries"`
	Failures int            `json:"failures"`
	ByWidget map[string]int `json:"by_widget"`
}

// Stats returns a snapshot of cache contents
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{Entries: len(c.entries), ByWidget: make(map[string]int)}
	for _, entry := range c.entries {
		s.ByWidget[entry.Widget]++
		if entry.Unit == nil {
			s.Failures++
		}
	}
	return s
}
