package ring

import (
	"strings"
	"sync"

	"github.com/golang/glog"

	"go-ringbridge/daw"
)

// SubscriptionGroup is a keyed registry of unsubscribe thunks, addressable
// by exact key or by ":"-separated prefix, so tearing down every listener
// for one track unsubscribes only that track's keys (RemoveByPrefix still
// scans every key to find them). Adding a key that already exists first invokes the prior
// unsubscribe — a re-subscribe, not two overlapping listeners.
type SubscriptionGroup struct {
	mu      sync.Mutex
	entries map[string]daw.Unsubscribe
}

// NewSubscriptionGroup returns an empty group.
func NewSubscriptionGroup() *SubscriptionGroup {
	return &SubscriptionGroup{entries: make(map[string]daw.Unsubscribe)}
}

// Add stores unsub under key, first tearing down whatever was there.
func (g *SubscriptionGroup) Add(key string, unsub daw.Unsubscribe) {
	g.mu.Lock()
	prev, had := g.entries[key]
	g.entries[key] = unsub
	g.mu.Unlock()
	if had {
		if err := prev(); err != nil {
			glog.Warningf("ring: unsubscribe %s failed on replace: %v", key, err)
		}
	}
}

// Remove tears down and drops key. No-op if absent.
func (g *SubscriptionGroup) Remove(key string) {
	g.mu.Lock()
	unsub, ok := g.entries[key]
	if ok {
		delete(g.entries, key)
	}
	g.mu.Unlock()
	if ok {
		if err := unsub(); err != nil {
			glog.Warningf("ring: unsubscribe %s failed: %v", key, err)
		}
	}
}

// RemoveByPrefix tears down every key beginning with prefix. The intended
// call site is "unsubscribe everything for track X" via "track:{id}:".
func (g *SubscriptionGroup) RemoveByPrefix(prefix string) {
	g.mu.Lock()
	var keys []string
	for k := range g.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	g.mu.Unlock()
	for _, k := range keys {
		g.Remove(k)
	}
}

// Clear snapshots every entry, empties the map synchronously so a
// concurrent Has/Size sees it empty immediately, then invokes every
// unsubscribe concurrently.
func (g *SubscriptionGroup) Clear() {
	g.mu.Lock()
	snapshot := g.entries
	g.entries = make(map[string]daw.Unsubscribe)
	g.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(len(snapshot))
	for key, unsub := range snapshot {
		go func(key string, unsub daw.Unsubscribe) {
			defer wg.Done()
			if err := unsub(); err != nil {
				glog.Warningf("ring: unsubscribe %s failed on clear: %v", key, err)
			}
		}(key, unsub)
	}
	wg.Wait()
}

// Size returns the number of live entries.
func (g *SubscriptionGroup) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

// Has reports whether key is currently registered.
func (g *SubscriptionGroup) Has(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.entries[key]
	return ok
}
