package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Deduper remembers ids for a TTL so replays within the window are dropped.
type Deduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	max  int
	now  func() time.Time
	seen map[string]time.Time
}

func New(ttl time.Duration, max int) *Deduper {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if max <= 0 {
		max = 10000
	}
	return &Deduper{ttl: ttl, max: max, now: time.Now, seen: make(map[string]time.Time, max)}
}

// WithClock replaces time.Now.
func (d *Deduper) WithClock(now func() time.Time) *Deduper {
	d.now = now
	return d
}

// ShouldProcess reports whether id is new within the TTL and records it.
// An empty id is always processed.
func (d *Deduper) ShouldProcess(id string) bool {
	if id == "" {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if exp, ok := d.seen[id]; ok && now.Before(exp) {
		return false
	}
	d.seen[id] = now.Add(d.ttl)
	if len(d.seen) > d.max {
		d.evictLocked(id, now)
	}
	return true
}

// ShouldProcessPayload keys the check on the SHA-256 of payload, so
// byte-identical redeliveries collapse to one.
func (d *Deduper) ShouldProcessPayload(payload []byte) bool {
	h := sha256.Sum256(payload)
	return d.ShouldProcess(hex.EncodeToString(h[:]))
}

// evictLocked drops expired entries, then the earliest-expiring ones, until the
// set is back under max. keep is never evicted.
func (d *Deduper) evictLocked(keep string, now time.Time) {
	for k, v := range d.seen {
		if now.After(v) {
			delete(d.seen, k)
		}
	}
	for len(d.seen) > d.max {
		var (
			oldest string
			exp    time.Time
		)
		for k, v := range d.seen {
			if k == keep {
				continue
			}
			if oldest == "" || v.Before(exp) {
				oldest, exp = k, v
			}
		}
		if oldest == "" {
			return
		}
		delete(d.seen, oldest)
	}
}

func (d *Deduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
