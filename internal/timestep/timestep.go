// Package timestep implements the fixed-timestep accumulator clock
// driving the simulation loop: a variable-rate wall-clock frame delta
// feeds a fixed-rate tick accumulator, so simulation stays
// deterministic regardless of render framerate.
package timestep

import "time"

// Clock accumulates wall-clock time into fixed-size ticks.
type Clock struct {
	tickInterval float64
	accumulator  float64
	tickCount    uint64

	lastAdvance time.Time
	hasAdvanced bool

	now func() time.Time
}

// New returns a clock ticking at tickRate ticks per second.
func New(tickRate float64) *Clock {
	return &Clock{
		tickInterval: 1 / tickRate,
		now:          time.Now,
	}
}

// TickInterval returns the fixed seconds-per-tick this clock was
// constructed with.
func (c *Clock) TickInterval() float64 { return c.tickInterval }

// Advance measures the wall-clock delta since the previous Advance,
// clamps it to maxDt to absorb stalls without a spiral of death, adds
// it to the accumulator, and returns the clamped frame delta. The
// first call after construction has no reference point and reports 0.
func (c *Clock) Advance(maxDt float64) float64 {
	now := c.now()
	if !c.hasAdvanced {
		c.hasAdvanced = true
		c.lastAdvance = now
		return 0
	}

	dt := now.Sub(c.lastAdvance).Seconds()
	c.lastAdvance = now
	if dt > maxDt {
		dt = maxDt
	}
	if dt < 0 {
		dt = 0
	}
	c.accumulator += dt
	return dt
}

// TryAdvanceTick drains one tick from the accumulator if enough time
// has accumulated, returning whether a tick was consumed. Callers loop
// on this after Advance to run as many fixed ticks as have built up.
func (c *Clock) TryAdvanceTick() bool {
	if c.accumulator < c.tickInterval {
		return false
	}
	c.accumulator -= c.tickInterval
	c.tickCount++
	return true
}

// TickFraction reports how far into the next tick the accumulator
// sits, in [0, 1), for interpolating render transforms between the
// previous and current simulation tick.
func (c *Clock) TickFraction() float64 {
	return c.accumulator / c.tickInterval
}

// TickCount returns the number of ticks consumed so far.
func (c *Clock) TickCount() uint64 { return c.tickCount }

// ElapsedTime returns the total simulated time: whole ticks plus the
// fractional remainder sitting in the accumulator.
func (c *Clock) ElapsedTime() float64 {
	return float64(c.tickCount)*c.tickInterval + c.accumulator
}
