package reactive

// Clock counts the writes of a Runtime.
//
// Every write that changes an observable value advances the clock by one.
// Computations stamp the tick at which they last validated their inputs, so
// an unchanged clock means nothing needs to be re-checked. Like the rest of
// a Runtime, a Clock belongs to one goroutine at a time.
type Clock struct {
	tick int64
}

// NewClock returns a clock at tick 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt returns a clock at start, for runtimes resumed from a known
// tick.
func NewClockAt(start int64) *Clock {
	return &Clock{tick: start}
}

// Next advances the clock and returns the new tick.
func (c *Clock) Next() int64 {
	c.tick++
	return c.tick
}

// Current returns the last tick handed out.
func (c *Clock) Current() int64 { return c.tick }
