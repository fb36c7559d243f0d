package eye

import (
	"errors"
	"testing"
)

func TestOpen_AllocatesOneBufferPerDevice(t *testing.T) {
	drv := newFakeDriver(3)
	s, err := Open(drv, []int{0, 1, 2}, ResolutionSmall, 60, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if len(s.buffers) != 3 {
		t.Fatalf("got %d buffers, want 3", len(s.buffers))
	}
	want := 320 * 240 * 3
	for i, buf := range s.buffers {
		if len(buf) != want {
			t.Errorf("buffer %d is %d bytes, want %d", i, len(buf), want)
		}
	}
	if drv.inits != 1 {
		t.Errorf("driver initialized %d times, want 1", drv.inits)
	}
}

func TestOpen_LargeResolutionBufferSize(t *testing.T) {
	drv := newFakeDriver(1)
	s, err := Open(drv, []int{0}, ResolutionLarge, 60, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if want := 640 * 480 * 3; len(s.buffers[0]) != want {
		t.Errorf("buffer is %d bytes, want %d", len(s.buffers[0]), want)
	}
}

func TestOpen_IndexBeyondConnectedCount(t *testing.T) {
	drv := newFakeDriver(1)
	_, err := Open(drv, []int{0, 1}, ResolutionSmall, 60, true)
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("err = %v, want ErrDeviceUnavailable", err)
	}
	if len(drv.opens) != 0 {
		t.Errorf("configuration error issued %d device-open calls, want 0", len(drv.opens))
	}
	if drv.uninits != 1 {
		t.Errorf("driver context unwound %d times, want 1", drv.uninits)
	}
}

func TestOpen_DeviceOpenFailureRollsBack(t *testing.T) {
	drv := newFakeDriver(3)
	drv.failOpen[2] = true

	_, err := Open(drv, []int{0, 1, 2}, ResolutionSmall, 60, true)
	if !errors.Is(err, ErrOpenFailed) {
		t.Fatalf("err = %v, want ErrOpenFailed", err)
	}
	// Devices 0 and 1 opened before 2 failed; both must be closed again.
	if got, want := len(drv.closes), 2; got != want {
		t.Errorf("closed %d devices on rollback, want %d (%v)", got, want, drv.closes)
	}
	if drv.uninits != 1 {
		t.Errorf("driver context unwound %d times, want 1", drv.uninits)
	}
}

func TestOpen_GreyscaleUnsupported(t *testing.T) {
	drv := newFakeDriver(1)
	_, err := Open(drv, []int{0}, ResolutionSmall, 60, false)
	if !errors.Is(err, ErrGreyscaleUnsupported) {
		t.Fatalf("err = %v, want ErrGreyscaleUnsupported", err)
	}
	if drv.inits != 0 {
		t.Errorf("driver initialized for an invalid config (%d inits)", drv.inits)
	}
}

func TestOpen_NilDevicesMeansAllConnected(t *testing.T) {
	drv := newFakeDriver(2)
	s, err := Open(drv, nil, ResolutionSmall, 60, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	devices := s.Devices()
	if len(devices) != 2 || devices[0] != 0 || devices[1] != 1 {
		t.Errorf("devices = %v, want [0 1]", devices)
	}
}

func TestOpen_BuildsChannelForEveryControl(t *testing.T) {
	drv := newFakeDriver(1)
	s, err := Open(drv, []int{0}, ResolutionSmall, 60, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	for _, id := range Controls() {
		ch := s.Control(id)
		if ch == nil {
			t.Fatalf("no channel for control %s", id)
		}
		if ch.Len() != 1 {
			t.Errorf("channel %s has %d slots, want 1", id, ch.Len())
		}
	}
	if got := s.Gain().Descriptor().ID; got != Gain {
		t.Errorf("Gain() accessor returned channel for %s", got)
	}
	if got := s.VFlip().Descriptor().ID; got != VFlip {
		t.Errorf("VFlip() accessor returned channel for %s", got)
	}
}

func TestClose_Idempotent(t *testing.T) {
	drv := newFakeDriver(2)
	s, err := Open(drv, []int{0, 1}, ResolutionSmall, 60, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if got := len(drv.closes); got != 2 {
		t.Errorf("low-level close called %d times, want 2 (one per device)", got)
	}
	if drv.uninits != 1 {
		t.Errorf("uninit called %d times, want 1", drv.uninits)
	}
}

func TestRead_ReturnsViewsInDeviceOrder(t *testing.T) {
	drv := newFakeDriver(3)
	s, err := Open(drv, []int{2, 0, 1}, ResolutionSmall, 60, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	frames, err := s.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}
	// The fake fills each frame with index+1, so order is observable.
	wantFill := []byte{3, 1, 2}
	for i, f := range frames {
		if f.Width != 320 || f.Height != 240 || f.BytesPerPixel != 3 {
			t.Errorf("frame %d shaped %dx%dx%d, want 320x240x3", i, f.Width, f.Height, f.BytesPerPixel)
		}
		if f.Pix[0] != wantFill[i] {
			t.Errorf("frame %d filled with %d, want device fill %d (session order broken)",
				i, f.Pix[0], wantFill[i])
		}
	}
	wantGrabs := []int{2, 0, 1}
	for i, dev := range wantGrabs {
		if drv.grabs[i] != dev {
			t.Errorf("grab %d hit device %d, want %d", i, drv.grabs[i], dev)
		}
	}
}

func TestRead_ViewsAliasBuffers(t *testing.T) {
	drv := newFakeDriver(1)
	s, err := Open(drv, []int{0}, ResolutionSmall, 60, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	first, err := s.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	first[0].Pix[0] = 0xEE

	second, err := s.Read()
	if err != nil {
		t.Fatalf("second Read: %v", err)
	}
	// Same backing buffer: the first view now shows the second frame.
	if first[0].Pix[0] != second[0].Pix[0] {
		t.Error("views should alias the session buffer, not copy it")
	}
}

func TestRead_GrabFailurePropagates(t *testing.T) {
	drv := newFakeDriver(2)
	s, err := Open(drv, []int{0, 1}, ResolutionSmall, 60, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	grabErr := errors.New("usb transfer stalled")
	drv.grabErr[1] = grabErr

	_, err = s.Read()
	if !errors.Is(err, grabErr) {
		t.Fatalf("err = %v, want wrapped grab error", err)
	}
}

func TestRead_AfterCloseFails(t *testing.T) {
	drv := newFakeDriver(1)
	s, err := Open(drv, []int{0}, ResolutionSmall, 60, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.Close()

	if _, err := s.Read(); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}

func TestOpen_SmallColorScenario(t *testing.T) {
	drv := newFakeDriver(1)
	s, err := Open(drv, []int{0}, ResolutionSmall, 60, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if s.state != stateOpen {
		t.Errorf("state = %d, want open", s.state)
	}
	if want := 320 * 240 * 3; len(s.buffers[0]) != want {
		t.Errorf("buffer is %d bytes, want %d", len(s.buffers[0]), want)
	}
	frames, err := s.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	f := frames[0]
	if f.Height != 240 || f.Width != 320 || f.BytesPerPixel != 3 {
		t.Errorf("frame shaped [%d,%d,%d], want [240,320,3]", f.Height, f.Width, f.BytesPerPixel)
	}
}

func TestSession_DevicesReturnsCopy(t *testing.T) {
	drv := newFakeDriver(2)
	s, err := Open(drv, []int{0, 1}, ResolutionSmall, 60, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	devices := s.Devices()
	devices[0] = 99
	if s.devices[0] == 99 {
		t.Error("mutating the Devices copy must not affect the session")
	}
}

func TestOpen_DriverInitFailure(t *testing.T) {
	drv := newFakeDriver(1)
	drv.initErr = errors.New("no usb access")
	if _, err := Open(drv, []int{0}, ResolutionSmall, 60, true); err == nil {
		t.Fatal("expected error when driver init fails, got nil")
	}
}
