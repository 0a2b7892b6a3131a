package clock

// Bus identifies the origin of an externally injected wait-state request,
// for diagnostic purposes only; the clock treats every bus identically.
type Bus uint8

const (
	BusULA Bus = iota
	BusDevice
)

// Clock wraps a VideoTs cursor and a Model's contention rule, advancing
// the cursor for every memory, IO, or internal CPU cycle and inserting
// the model's wait states along the way. It is the sole authority for
// "what time is it" during a frame; the Cpu (external, see ula package)
// only ever asks the clock to advance.
type Clock struct {
	Model Model
	Ts    VideoTs

	// HighRAMContended tracks whether the bank currently paged at
	// 0xC000-0xFFFF is itself contended (128K-family only). It starts
	// false and Reset clears it; nothing else in this module sets it.
	HighRAMContended bool
}

// New returns a Clock positioned at the start of a frame for model m.
func New(m Model) *Clock {
	return &Clock{Model: m}
}

// Reset moves the clock back to the start of a frame without changing
// its model.
func (c *Clock) Reset() {
	c.Ts = VideoTs{}
	c.HighRAMContended = false
}

func (c *Clock) contention(addr uint16) uint16 {
	return c.Model.Contend(c.Ts.VC, c.Ts.HC, addr, c.HighRAMContended)
}

func (c *Clock) advance(n uint16) {
	c.Ts = c.Model.VtsAdd(c.Ts, int32(n))
}

// AddM1 advances the clock for an opcode-fetch (M1) cycle: 4 T-states,
// plus contention if addr falls in a contended bank.
func (c *Clock) AddM1(addr uint16) VideoTs {
	w := c.contention(addr)
	c.advance(4 + w)
	return c.Ts
}

// AddMreq advances the clock for a regular memory access: 3 T-states
// plus contention.
func (c *Clock) AddMreq(addr uint16) VideoTs {
	w := c.contention(addr)
	c.advance(3 + w)
	return c.Ts
}

// AddNoMreq advances the clock for n internal CPU cycles that keep the
// bus asserted but never trigger MREQ; each of the n ticks still incurs
// contention individually.
func (c *Clock) AddNoMreq(addr uint16, n int) VideoTs {
	for i := 0; i < n; i++ {
		w := c.contention(addr)
		c.advance(1 + w)
	}
	return c.Ts
}

// AddIO runs the four-phase IO timing described in §4.1: an early
// contention check (T1), a T2 phase that is always contended once if the
// address is in the contended region, and then either one long contended
// slot (even port) or three short contended slots (odd port). It returns
// the timestamp of the actual IO operation, which falls between phases 2
// and 3; the clock itself ends up at the post-IO timestamp.
func (c *Clock) AddIO(port uint16) VideoTs {
	// T1: contended iff the high port address lies in the contended region.
	w := c.contention(port)
	c.advance(1 + w)

	// T2: always contended once if the port's high byte sits in the
	// contended region.
	w = c.contention(port)
	c.advance(1 + w)

	ioTs := c.Ts

	if port&1 == 0 {
		if c.Model.EvenIOContended {
			w := c.contention(port)
			c.advance(2 + w)
		} else {
			c.advance(2)
		}
	} else {
		for i := 0; i < 3; i++ {
			w := c.contention(port)
			c.advance(1 + w)
		}
	}

	return ioTs
}

// AddIrq advances the clock for an interrupt-acknowledge cycle: 6
// T-states plus any contention on the acknowledge bus access.
func (c *Clock) AddIrq(addr uint16) VideoTs {
	w := c.contention(addr)
	c.advance(6 + w)
	return c.Ts
}

// AddWaitStates applies n externally injected wait states (e.g. from a
// bus device's IO response) with no further contention computation.
func (c *Clock) AddWaitStates(bus Bus, n uint16) VideoTs {
	c.advance(n)
	return c.Ts
}

// AsTimestamp returns the clock's current VideoTs.
func (c *Clock) AsTimestamp() VideoTs {
	return c.Ts
}

// IsPastLimit reports whether the clock has reached or passed limit.
func (c *Clock) IsPastLimit(limit VideoTs) bool {
	return !c.Ts.Less(limit)
}

// NextFrame wraps the clock's timestamp origin, subtracting one frame's
// worth of T-states so a long-running emulation's timestamps stay bounded.
func (c *Clock) NextFrame() {
	c.Ts = c.Model.VtsSaturatingSubFrame(c.Ts)
}
