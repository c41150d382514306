package playback

import (
	"sync"
	"time"
)

// Clock is the elapsed-time source for one rundown: a whole-seconds counter
// that ticks once per second while running. Ticks are delivered to a single
// callback from a single goroutine, so the handler is never invoked
// concurrently with itself. Stop is synchronous: once it returns, no further
// tick will be delivered.
//
// The callback returns false to stop the clock from inside a tick (used when
// playback reaches the end of the rundown); calling Stop from inside the
// callback would deadlock.
type Clock struct {
	mu       sync.Mutex
	elapsed  int
	running  bool
	interval time.Duration
	onTick   func(elapsed int) (keepRunning bool)
	stop     chan struct{}
	done     chan struct{}
}

func NewClock(onTick func(int) bool) *Clock {
	return &Clock{interval: time.Second, onTick: onTick}
}

// Start begins ticking. Idempotent: starting a running clock does nothing.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.run(c.stop, c.done)
}

// Stop cancels the pending tick and waits for the tick goroutine to exit.
// Idempotent. Must not be called from within the tick callback.
func (c *Clock) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	stop, done := c.stop, c.done
	c.mu.Unlock()

	close(stop)
	<-done
}

// SetElapsed overwrites the counter, e.g. when jumping to a position.
// Negative values are treated as zero.
func (c *Clock) SetElapsed(seconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	c.elapsed = seconds
}

func (c *Clock) Elapsed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Clock) run(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			// Stop may have raced with this tick; a cancelled clock
			// must not advance.
			if !c.running {
				c.mu.Unlock()
				return
			}
			c.elapsed++
			elapsed := c.elapsed
			c.mu.Unlock()

			if !c.onTick(elapsed) {
				c.mu.Lock()
				c.running = false
				c.mu.Unlock()
				return
			}
		}
	}
}
