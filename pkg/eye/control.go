// Package eye manages groups of simultaneously opened camera devices:
// session lifecycle, validated hardware controls, and per-device frame
// buffers for synchronous multi-camera capture.
//
// A Session is strictly single-threaded: every driver call blocks, and
// concurrent use from multiple goroutines must be serialized by the
// caller.
package eye

import (
	"fmt"

	"github.com/thesis09/pseyepy/pkg/eye/driver"
)

// Control identifies one of the supported hardware controls.
type Control int

const (
	AutoGain Control = iota
	AutoWhiteBalance
	Gain
	Exposure
	Sharpness
	Contrast
	Brightness
	Hue
	RedBalance
	BlueBalance
	GreenBalance
	HFlip
	VFlip
)

// Domain is the contiguous range of values a control accepts.
type Domain struct {
	Min, Max int
}

// Contains reports whether v is an accepted value.
func (d Domain) Contains(v int) bool {
	return v >= d.Min && v <= d.Max
}

func (d Domain) String() string {
	if d.Min == 0 && d.Max == 1 {
		return "{0,1}"
	}
	return fmt.Sprintf("%d..%d", d.Min, d.Max)
}

// ControlDescriptor describes one hardware control: its display name,
// the driver register it maps to, and the values the hardware accepts.
// Descriptors are immutable and shared by every session.
type ControlDescriptor struct {
	ID     Control
	Name   string
	Param  driver.Param
	Domain Domain
}

var boolean = Domain{0, 1}

// registry is the fixed table of supported controls.
//
// Auto-exposure is deliberately not registered: the firmware
// implementation is unreliable on this hardware and silently fights
// manual exposure, so it is not exposed as a tunable control.
var registry = [...]ControlDescriptor{
	{AutoGain, "auto_gain", driver.ParamAutoGain, boolean},
	{AutoWhiteBalance, "auto_whitebalance", driver.ParamAutoWhiteBalance, boolean},
	{Gain, "gain", driver.ParamGain, Domain{0, 63}},
	{Exposure, "exposure", driver.ParamExposure, Domain{0, 255}},
	{Sharpness, "sharpness", driver.ParamSharpness, Domain{0, 63}},
	{Contrast, "contrast", driver.ParamContrast, Domain{0, 255}},
	{Brightness, "brightness", driver.ParamBrightness, Domain{0, 255}},
	{Hue, "hue", driver.ParamHue, Domain{0, 255}},
	{RedBalance, "red_balance", driver.ParamRedBalance, Domain{0, 255}},
	{BlueBalance, "blue_balance", driver.ParamBlueBalance, Domain{0, 255}},
	{GreenBalance, "green_balance", driver.ParamGreenBalance, Domain{0, 255}},
	{HFlip, "hflip", driver.ParamHFlip, boolean},
	{VFlip, "vflip", driver.ParamVFlip, boolean},
}

// DescriptorFor returns the descriptor for a supported control.
// Passing anything else is a caller bug and panics.
func DescriptorFor(c Control) ControlDescriptor {
	if c < 0 || int(c) >= len(registry) {
		panic(fmt.Sprintf("eye: unknown control %d", c))
	}
	return registry[c]
}

// Controls returns the supported control ids in registry order.
func Controls() []Control {
	ids := make([]Control, len(registry))
	for i, d := range registry {
		ids[i] = d.ID
	}
	return ids
}

// ControlByName looks a control up by its display name.
func ControlByName(name string) (Control, bool) {
	for _, d := range registry {
		if d.Name == name {
			return d.ID, true
		}
	}
	return 0, false
}

func (c Control) String() string {
	if c < 0 || int(c) >= len(registry) {
		return fmt.Sprintf("control(%d)", int(c))
	}
	return registry[c].Name
}
