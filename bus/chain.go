package bus

import "github.com/royaltm/go-spectrusty/clock"

// Chain is a runtime-configurable ordered list of Devices. It gives the
// same read-AND / write-stops-propagation semantics as Link, but lets a
// host choose and reorder peripherals at construction time instead of
// baking the chain's shape into the type system - the dynamic
// counterpart to Link's compile-time composition (spec §9: "dynamic
// configuration is achieved by a single dynamic-dispatch link in a
// fixed-shape chain, not by replacing the chain shape" - here the Chain
// itself is that fixed shape, and each slice element is a dynamic-dispatch
// link).
type Chain struct {
	devices []Device
}

// NewChain builds a chain from devices in priority order (first device
// wins ties on write, first-listed still AND-combines on conflicting
// reads).
func NewChain(devices ...Device) *Chain {
	return &Chain{devices: devices}
}

// ReadIO asks every device in order; two or more matching devices have
// their values AND-combined (open-collector) and their wait states summed.
func (c *Chain) ReadIO(port uint16, ts clock.VideoTs) (value byte, wait WaitStates, ok bool) {
	value = 0xFF
	for _, d := range c.devices {
		v, w, matched := d.ReadIO(port, ts)
		if !matched {
			continue
		}
		if ok {
			value &= v
		} else {
			value = v
		}
		wait += w
		ok = true
	}
	return
}

// WriteIO offers the write to each device in order, stopping at the
// first one that claims it.
func (c *Chain) WriteIO(port uint16, value byte, ts clock.VideoTs) (wait WaitStates, handled bool) {
	for _, d := range c.devices {
		if w, ok := d.WriteIO(port, value, ts); ok {
			return w, true
		}
	}
	return 0, false
}

func (c *Chain) Reset(ts clock.VideoTs) {
	for _, d := range c.devices {
		d.Reset(ts)
	}
}

func (c *Chain) UpdateTimestamp(ts clock.VideoTs) {
	for _, d := range c.devices {
		d.UpdateTimestamp(ts)
	}
}

// NextFrame is broadcast to every device in chain-depth order, exactly
// once per frame, after the final CPU step of the current frame.
func (c *Chain) NextFrame(ts clock.VideoTs) {
	for _, d := range c.devices {
		d.NextFrame(ts)
	}
}

// Devices returns the chain's members in order, for callers (like the
// ULA's cooperative audio walk) that need to type-assert individual
// devices against a narrower interface.
func (c *Chain) Devices() []Device {
	return c.devices
}
