package driver

import (
	"fmt"

	"github.com/thesis09/pseyepy/internal/debug"
)

// Param identifies a hardware control register on the camera.
type Param int

const (
	ParamAutoGain Param = iota
	ParamAutoExposure
	ParamAutoWhiteBalance
	ParamGain
	ParamExposure
	ParamSharpness
	ParamContrast
	ParamBrightness
	ParamHue
	ParamRedBalance
	ParamBlueBalance
	ParamGreenBalance
	ParamHFlip
	ParamVFlip
)

// Format is the pixel format a device is opened with.
type Format int

const (
	FormatRGB24 Format = iota // 3 bytes per pixel, RGB
	FormatGrey                // 1 byte per pixel, declared but no backend supports it yet
)

// BytesPerPixel returns the per-pixel byte width of the format.
func (f Format) BytesPerPixel() int {
	if f == FormatGrey {
		return 1
	}
	return 3
}

func (f Format) String() string {
	switch f {
	case FormatRGB24:
		return "rgb24"
	case FormatGrey:
		return "grey"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// Mode is the capture mode a device is opened with.
type Mode struct {
	Width     int
	Height    int
	FrameRate int
	Format    Format
}

// FrameBytes returns the size of one raw frame in this mode.
func (m Mode) FrameBytes() int {
	return m.Width * m.Height * m.Format.BytesPerPixel()
}

// Driver defines the abstract interface to the low-level camera driver.
// This allows plugging in the real OpenCV-backed implementation or a
// mock for development without cameras attached.
//
// All calls are synchronous and blocking; callers serialize access.
type Driver interface {
	// Init initializes the driver context. Called once per session.
	Init() error
	// Uninit releases the driver context. Called once per session,
	// after every device has been closed. Best-effort, never fails.
	Uninit()
	// DeviceCount returns the number of currently connected devices.
	DeviceCount() int
	// OpenDevice opens the device at index with the given capture mode.
	OpenDevice(index int, m Mode) error
	// CloseDevice closes the device at index. Best-effort.
	CloseDevice(index int)
	// GrabFrame blocks until the next frame from the device is
	// available and writes exactly m.FrameBytes() bytes into dst.
	GrabFrame(index int, dst []byte) error
	// GetParameter reads the current hardware value of a control register.
	GetParameter(index int, p Param) (int, error)
	// SetParameter writes a control register. The hardware may silently
	// refuse the value; callers verify with GetParameter.
	SetParameter(index int, p Param, value int) error
}

// New creates a camera driver based on the chosen mode.
// If mock is true, returns a simulated rig of mockDevices cameras
// (for dev/test); a non-positive count gets a rig of 2.
// If mock is false, returns the real OpenCV-backed driver and
// mockDevices is ignored.
func New(mock bool, mockDevices int) (Driver, error) {
	if mock {
		if mockDevices <= 0 {
			mockDevices = 2
		}
		debug.Info("Using MOCK camera driver (development mode, %d simulated devices)", mockDevices)
		return NewMock(mockDevices), nil
	}
	return NewGocv()
}
