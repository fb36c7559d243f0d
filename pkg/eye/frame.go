package eye

import (
	"fmt"

	"github.com/thesis09/pseyepy/internal/debug"
)

// Frame is a read/write view over one device's frame buffer, shaped
// height x width x bytes-per-pixel. It aliases the session's buffer:
// the next Read on the session overwrites it in place, so callers must
// not retain a Frame across Read calls. Copy Pix if the data must
// outlive the next read.
type Frame struct {
	Pix           []byte
	Width         int
	Height        int
	BytesPerPixel int
}

// Stride returns the byte width of one row.
func (f Frame) Stride() int {
	return f.Width * f.BytesPerPixel
}

// At returns the pixel at (x, y) as a BytesPerPixel-long slice into
// the frame buffer. Writing through it writes the buffer.
func (f Frame) At(x, y int) []byte {
	off := y*f.Stride() + x*f.BytesPerPixel
	return f.Pix[off : off+f.BytesPerPixel]
}

// Read grabs one frame per managed device, in session device order,
// and returns one view per device in the same order.
//
// Grabbing blocks until each device delivers its next frame; devices
// are grabbed sequentially, so callers needing hardware-synchronized
// capture must account for the skew between the first and last
// device's exposure instant.
//
// A grab failure is a driver-level condition and propagates as-is,
// wrapped with the failing device index.
func (s *Session) Read() ([]Frame, error) {
	if s.state != stateOpen {
		return nil, ErrClosed
	}
	frames := make([]Frame, len(s.devices))
	for i, dev := range s.devices {
		if err := s.drv.GrabFrame(dev, s.buffers[i]); err != nil {
			return nil, fmt.Errorf("grab frame from device %d: %w", dev, err)
		}
		frames[i] = Frame{
			Pix:           s.buffers[i],
			Width:         s.cfg.Width,
			Height:        s.cfg.Height,
			BytesPerPixel: s.cfg.BytesPerPixel,
		}
	}
	debug.Live("read %d frame(s)", len(frames))
	return frames, nil
}
