package eye

import (
	"errors"
	"fmt"

	"github.com/thesis09/pseyepy/internal/debug"
	"github.com/thesis09/pseyepy/pkg/eye/driver"
)

// Resolution selects one of the two capture resolutions the hardware
// supports.
type Resolution int

const (
	ResolutionSmall Resolution = iota // 320x240
	ResolutionLarge                   // 640x480
)

func (r Resolution) dims() (w, h int) {
	if r == ResolutionLarge {
		return 640, 480
	}
	return 320, 240
}

func (r Resolution) String() string {
	w, h := r.dims()
	return fmt.Sprintf("%dx%d", w, h)
}

// CaptureConfig is the capture mode shared by every device in a
// session. Immutable after construction.
type CaptureConfig struct {
	Width         int
	Height        int
	FrameRate     int
	Format        driver.Format
	BytesPerPixel int
}

var (
	// ErrDeviceUnavailable is returned when a requested device index is
	// not connected (configuration error).
	ErrDeviceUnavailable = errors.New("requested device index is not connected")
	// ErrOpenFailed is returned when the driver fails to open a device.
	ErrOpenFailed = errors.New("device open failed")
	// ErrGreyscaleUnsupported is returned for color=false. The hardware
	// declares a greyscale flag but no 1-byte format is implemented;
	// guessing a conversion would silently change buffer sizing.
	ErrGreyscaleUnsupported = errors.New("greyscale capture is not supported")
	// ErrClosed is returned when reading from a closed session.
	ErrClosed = errors.New("session is closed")
)

// NewCaptureConfig resolves a resolution and color flag into a capture
// configuration.
func NewCaptureConfig(res Resolution, frameRate int, color bool) (CaptureConfig, error) {
	if !color {
		return CaptureConfig{}, ErrGreyscaleUnsupported
	}
	if frameRate <= 0 {
		return CaptureConfig{}, fmt.Errorf("frame rate must be positive, got %d", frameRate)
	}
	w, h := res.dims()
	return CaptureConfig{
		Width:         w,
		Height:        h,
		FrameRate:     frameRate,
		Format:        driver.FormatRGB24,
		BytesPerPixel: driver.FormatRGB24.BytesPerPixel(),
	}, nil
}

// Session lifecycle. Closed is terminal.
type state int

const (
	stateNotStarted state = iota
	stateOpen
	stateClosed
)

// Session owns a group of opened devices sharing one capture
// configuration, one frame buffer per device, and one validated
// control channel per supported control.
//
// Close the session when done; Close is idempotent and safe under
// defer, so device handles are released on every exit path of the
// owning scope.
type Session struct {
	drv      driver.Driver
	devices  []int
	cfg      CaptureConfig
	buffers  [][]byte
	channels map[Control]*Channel
	state    state
}

// Open initializes the driver context, opens every requested device
// with the given capture settings, allocates frame buffers, and seeds
// one control channel per supported control.
//
// devices is the ordered list of device indices to manage; nil means
// every connected device. If any index is not connected, or any device
// fails to open, everything opened so far is rolled back and the
// driver context is released: no half-open session is ever returned.
func Open(drv driver.Driver, devices []int, res Resolution, frameRate int, color bool) (*Session, error) {
	cfg, err := NewCaptureConfig(res, frameRate, color)
	if err != nil {
		return nil, err
	}

	debug.Step(1, "Initializing driver context")
	if err := drv.Init(); err != nil {
		return nil, fmt.Errorf("driver init: %w", err)
	}

	count := drv.DeviceCount()
	if devices == nil {
		devices = make([]int, count)
		for i := range devices {
			devices[i] = i
		}
	} else {
		devices = append([]int(nil), devices...)
	}
	debug.Info("Opening session: devices=%v resolution=%s fps=%d", devices, res, frameRate)

	// Validate every index before opening anything, so a configuration
	// error never issues a device-open call.
	for _, dev := range devices {
		if dev < 0 || dev >= count {
			drv.Uninit()
			return nil, fmt.Errorf("device %d: %w (%d device(s) connected)",
				dev, ErrDeviceUnavailable, count)
		}
	}

	mode := driver.Mode{
		Width:     cfg.Width,
		Height:    cfg.Height,
		FrameRate: cfg.FrameRate,
		Format:    cfg.Format,
	}

	s := &Session{
		drv:      drv,
		devices:  devices,
		cfg:      cfg,
		buffers:  make([][]byte, 0, len(devices)),
		channels: make(map[Control]*Channel, len(registry)),
	}

	debug.Step(2, "Opening devices and allocating frame buffers")
	for i, dev := range devices {
		if err := drv.OpenDevice(dev, mode); err != nil {
			s.unwind(i)
			return nil, fmt.Errorf("device %d: %w: %v", dev, ErrOpenFailed, err)
		}
		s.buffers = append(s.buffers, make([]byte, mode.FrameBytes()))
		debug.Verbose("device %d open, buffer %d bytes", dev, mode.FrameBytes())
	}

	debug.Step(3, "Seeding control channels from hardware")
	for _, desc := range registry {
		ch, err := newChannel(drv, desc, devices)
		if err != nil {
			s.unwind(len(devices))
			return nil, fmt.Errorf("control channel %s: %w", desc.Name, err)
		}
		s.channels[desc.ID] = ch
	}

	s.state = stateOpen
	debug.Info("Session open: %d device(s)", len(devices))
	return s, nil
}

// unwind closes the first n devices and releases the driver context.
// Used on construction failure, before the session escapes.
func (s *Session) unwind(n int) {
	for i := 0; i < n; i++ {
		s.drv.CloseDevice(s.devices[i])
	}
	s.drv.Uninit()
	s.state = stateClosed
}

// Close closes every managed device and releases the driver context.
// Teardown is best-effort and never fails; calling Close on an already
// closed session is a no-op.
func (s *Session) Close() error {
	if s.state != stateOpen {
		return nil
	}
	debug.Info("Closing session: devices=%v", s.devices)
	for _, dev := range s.devices {
		s.drv.CloseDevice(dev)
	}
	s.drv.Uninit()
	s.state = stateClosed
	return nil
}

// Devices returns the managed device indices in session order.
func (s *Session) Devices() []int {
	return append([]int(nil), s.devices...)
}

// Config returns the session's capture configuration.
func (s *Session) Config() CaptureConfig {
	return s.cfg
}

// Control returns the channel for the given control.
func (s *Session) Control(c Control) *Channel {
	ch, ok := s.channels[c]
	if !ok {
		panic(fmt.Sprintf("eye: unknown control %d", c))
	}
	return ch
}

// Per-control accessors, one per registry entry.

func (s *Session) AutoGain() *Channel         { return s.Control(AutoGain) }
func (s *Session) AutoWhiteBalance() *Channel { return s.Control(AutoWhiteBalance) }
func (s *Session) Gain() *Channel             { return s.Control(Gain) }
func (s *Session) Exposure() *Channel         { return s.Control(Exposure) }
func (s *Session) Sharpness() *Channel        { return s.Control(Sharpness) }
func (s *Session) Contrast() *Channel         { return s.Control(Contrast) }
func (s *Session) Brightness() *Channel       { return s.Control(Brightness) }
func (s *Session) Hue() *Channel              { return s.Control(Hue) }
func (s *Session) RedBalance() *Channel       { return s.Control(RedBalance) }
func (s *Session) BlueBalance() *Channel      { return s.Control(BlueBalance) }
func (s *Session) GreenBalance() *Channel     { return s.Control(GreenBalance) }
func (s *Session) HFlip() *Channel            { return s.Control(HFlip) }
func (s *Session) VFlip() *Channel            { return s.Control(VFlip) }
