// Package dedupe provides a bounded recent-id set used to drop duplicate
// inbound events before they reach the core.
package dedupe

import "sync"

const defaultCapacity = 8192

// Deduper remembers recently seen event ids.
type Deduper interface {
	// SeenAndRecord reports whether the id was already seen, recording it
	// either way.
	SeenAndRecord(id string) bool

	// Len returns the number of remembered ids.
	Len() int
}

// Ring implements Deduper with a fixed-size ring of ids plus a membership
// set. When the ring fills, the oldest id is forgotten; memory stays
// bounded no matter how long the process runs.
type Ring struct {
	mu   sync.Mutex
	seen map[string]struct{}
	ring []string
	next int
	full bool
}

// NewRing creates a deduper remembering up to capacity ids.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Ring{
		seen: make(map[string]struct{}, capacity),
		ring: make([]string, capacity),
	}
}

// SeenAndRecord reports whether the id was already seen, recording it
// either way. Empty ids are never recorded and never duplicates.
func (r *Ring) SeenAndRecord(id string) bool {
	if id == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[id]; ok {
		return true
	}

	if r.full {
		delete(r.seen, r.ring[r.next])
	}
	r.ring[r.next] = id
	r.seen[id] = struct{}{}
	r.next++
	if r.next == len(r.ring) {
		r.next = 0
		r.full = true
	}
	return false
}

// Len returns the number of remembered ids.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}
