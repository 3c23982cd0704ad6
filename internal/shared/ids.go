package shared

import (
	"sync"
	"time"
)

// IDGenerator issues time-based identifiers that strictly increase even when
// the clock reports the same instant twice or steps backwards.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator builds a generator reading the provided clock.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next returns the next identifier in nanoseconds since the Unix epoch.
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.now().UnixNano()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
