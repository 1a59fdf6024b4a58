package hal

import "time"

// tickClock is a deterministic clock advancing a fixed period per step, so
// headless runs throttle identically regardless of host speed.
type tickClock struct {
	origin time.Time
	period time.Duration
	seq    uint64
}

func newTickClock(origin time.Time, period time.Duration) *tickClock {
	return &tickClock{origin: origin, period: period}
}

func (c *tickClock) now() time.Time {
	return c.origin.Add(time.Duration(c.seq) * c.period)
}

func (c *tickClock) step() time.Time {
	c.seq++
	return c.now()
}
