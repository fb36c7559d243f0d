package eye

import (
	"fmt"

	"github.com/thesis09/pseyepy/internal/debug"
	"github.com/thesis09/pseyepy/pkg/eye/driver"
)

// Channel is a write-checked, read-through view of one control across
// every device in a session, slot i belonging to the session's i-th
// device. A slot always holds the last value the hardware verifiably
// accepted: writes outside the control's domain are rejected, and
// accepted writes are read back before being committed.
//
// Rejection and verification failure are advisory. The hardware on
// this class of device occasionally refuses values silently, and a
// hard error here would make batch-configuring many controls across
// many devices needlessly brittle, so the failure mode is "warn and
// continue".
type Channel struct {
	desc    ControlDescriptor
	drv     driver.Driver
	devices []int
	values  []int
}

// newChannel seeds each slot with the control's current hardware
// value. Values are taken as-is; the hardware is the source of truth
// at construction time.
func newChannel(drv driver.Driver, desc ControlDescriptor, devices []int) (*Channel, error) {
	values := make([]int, len(devices))
	for i, dev := range devices {
		v, err := drv.GetParameter(dev, desc.Param)
		if err != nil {
			return nil, fmt.Errorf("read %s from device %d: %w", desc.Name, dev, err)
		}
		values[i] = v
	}
	return &Channel{desc: desc, drv: drv, devices: devices, values: values}, nil
}

// Descriptor returns the control this channel manages.
func (c *Channel) Descriptor() ControlDescriptor {
	return c.desc
}

// Len returns the number of device slots.
func (c *Channel) Len() int {
	return len(c.devices)
}

// Get returns the last verified value for the given device slot.
// Like a slice access, an out-of-range slot panics.
func (c *Channel) Get(slot int) int {
	return c.values[slot]
}

// Values returns a copy of every slot's last verified value, in
// session device order.
func (c *Channel) Values() []int {
	out := make([]int, len(c.values))
	copy(out, c.values)
	return out
}

// Set writes value to the control of the device in the given slot.
//
// Out-of-domain values and writes the hardware does not acknowledge
// are reported as warnings and leave both the hardware and the slot
// unchanged; neither is an error. The only error is a slot outside
// the session's device list.
func (c *Channel) Set(slot, value int) error {
	if slot < 0 || slot >= len(c.devices) {
		return fmt.Errorf("control %s: device slot %d out of range (%d devices)",
			c.desc.Name, slot, len(c.devices))
	}
	if !c.desc.Domain.Contains(value) {
		debug.Warning("control %s accepts %s; rejected write of %d (slot %d unchanged)",
			c.desc.Name, c.desc.Domain, value, slot)
		return nil
	}

	dev := c.devices[slot]
	debug.Control(c.desc.Name, dev, value)
	if err := c.drv.SetParameter(dev, c.desc.Param, value); err != nil {
		debug.Warning("control %s (domain %s): write of %d to device %d failed: %v",
			c.desc.Name, c.desc.Domain, value, dev, err)
		return nil
	}
	got, err := c.drv.GetParameter(dev, c.desc.Param)
	if err != nil {
		debug.Warning("control %s (domain %s): wrote %d to device %d but read-back failed: %v",
			c.desc.Name, c.desc.Domain, value, dev, err)
		return nil
	}
	if got != value {
		debug.Warning("control %s (domain %s): wrote %d to device %d but hardware reports %d; keeping %d",
			c.desc.Name, c.desc.Domain, value, dev, got, c.values[slot])
		return nil
	}
	c.values[slot] = value
	return nil
}

// SetAll writes the same value to every device slot.
func (c *Channel) SetAll(value int) error {
	for slot := range c.devices {
		if err := c.Set(slot, value); err != nil {
			return err
		}
	}
	return nil
}
