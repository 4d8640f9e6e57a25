package auth

import (
	"sync"
	"time"
)

// Denylist records revoked token ids until the token would have expired anyway.
type Denylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewDenylist() *Denylist {
	return &Denylist{entries: make(map[string]time.Time)}
}

// Revoke denies jti until the given expiry.
func (d *Denylist) Revoke(jti string, until time.Time) {
	if jti == "" {
		return
	}
	d.mu.Lock()
	d.entries[jti] = until
	d.mu.Unlock()
}

// IsRevoked reports whether jti is denied at time now.
func (d *Denylist) IsRevoked(jti string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	until, ok := d.entries[jti]
	return ok && now.Before(until)
}

// Prune drops entries whose token has expired and returns how many were removed.
func (d *Denylist) Prune(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	removed := 0
	for jti, until := range d.entries {
		if !now.Before(until) {
			delete(d.entries, jti)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked entries.
func (d *Denylist) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}
