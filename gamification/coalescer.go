// gamification/coalescer.go - aggregation of near-simultaneous XP toasts
package gamification

import (
	"fmt"
	"sync"
	"time"
)

// DefaultQuietPeriod is how long the grant stream must be idle before the
// buffered grants flush as one aggregated notification.
const DefaultQuietPeriod = 1500 * time.Millisecond

// Coalescer buffers individual XP grants and emits a single aggregated
// notification after a quiet period. Every grant is applied at the store
// before it reaches the coalescer; only the user-visible toast is merged.
type Coalescer struct {
	quiet time.Duration
	sink  func(total int, summary string)

	mu      sync.Mutex
	total   int
	reasons map[string]bool
	timer   *time.Timer
	closed  bool
}

// NewCoalescer builds a coalescer flushing into sink. A zero quiet period
// falls back to DefaultQuietPeriod.
func NewCoalescer(quiet time.Duration, sink func(total int, summary string)) *Coalescer {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Coalescer{
		quiet:   quiet,
		sink:    sink,
		reasons: make(map[string]bool),
	}
}

// Add buffers one grant and restarts the quiet timer.
func (c *Coalescer) Add(amount int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.total += amount
	if reason != "" {
		c.reasons[reason] = true
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.quiet, c.Flush)
}

// Flush emits the aggregated notification for any pending grants.
func (c *Coalescer) Flush() {
	c.mu.Lock()
	total := c.total
	summary := c.summaryLocked()
	c.total = 0
	c.reasons = make(map[string]bool)
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	sink := c.sink
	c.mu.Unlock()

	if total > 0 && sink != nil {
		sink(total, summary)
	}
}

// Close flushes any pending notification and stops the timer. Pending
// grants are never dropped: the XP behind them is already persisted and
// the toast still goes out.
func (c *Coalescer) Close() {
	c.Flush()
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// summaryLocked renders either the single distinct reason or a count of
// distinct actions. Callers hold c.mu.
func (c *Coalescer) summaryLocked() string {
	if len(c.reasons) == 1 {
		for r := range c.reasons {
			return r
		}
	}
	if len(c.reasons) > 1 {
		return fmt.Sprintf("%d ações", len(c.reasons))
	}
	return ""
}
