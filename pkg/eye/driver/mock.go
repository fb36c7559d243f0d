package driver

import (
	"fmt"

	"github.com/thesis09/pseyepy/internal/debug"
)

// mockDefaults mirrors the power-on register values of the real hardware.
var mockDefaults = map[Param]int{
	ParamAutoGain:         0,
	ParamAutoExposure:     0,
	ParamAutoWhiteBalance: 0,
	ParamGain:             20,
	ParamExposure:         120,
	ParamSharpness:        0,
	ParamContrast:         37,
	ParamBrightness:       20,
	ParamHue:              143,
	ParamRedBalance:       128,
	ParamBlueBalance:      128,
	ParamGreenBalance:     128,
	ParamHFlip:            0,
	ParamVFlip:            0,
}

// Mock simulates a rig of connected cameras in memory.
// Used for development on machines without cameras, and by tests.
type Mock struct {
	count  int
	inited bool
	modes  map[int]Mode
	params map[int]map[Param]int
	grabs  map[int]int
}

// NewMock creates a simulated rig with the given number of connected devices.
func NewMock(deviceCount int) *Mock {
	return &Mock{
		count:  deviceCount,
		modes:  make(map[int]Mode),
		params: make(map[int]map[Param]int),
		grabs:  make(map[int]int),
	}
}

func (m *Mock) Init() error {
	debug.Trace("mock driver init (%d simulated devices)", m.count)
	m.inited = true
	return nil
}

func (m *Mock) Uninit() {
	debug.Trace("mock driver uninit")
	m.inited = false
}

func (m *Mock) DeviceCount() int {
	return m.count
}

func (m *Mock) OpenDevice(index int, mode Mode) error {
	debug.Driver("OpenDevice", index, mode)
	if !m.inited {
		return fmt.Errorf("mock: driver not initialized")
	}
	if index < 0 || index >= m.count {
		return fmt.Errorf("mock: no device at index %d", index)
	}
	if _, open := m.modes[index]; open {
		return fmt.Errorf("mock: device %d already open", index)
	}
	m.modes[index] = mode
	params := make(map[Param]int, len(mockDefaults))
	for p, v := range mockDefaults {
		params[p] = v
	}
	m.params[index] = params
	m.grabs[index] = 0
	return nil
}

func (m *Mock) CloseDevice(index int) {
	debug.Driver("CloseDevice", index, nil)
	delete(m.modes, index)
	delete(m.params, index)
	delete(m.grabs, index)
}

// GrabFrame fills dst with a deterministic test pattern that varies per
// device and per frame, so consumers can tell frames apart.
func (m *Mock) GrabFrame(index int, dst []byte) error {
	debug.Driver("GrabFrame", index, len(dst))
	mode, open := m.modes[index]
	if !open {
		return fmt.Errorf("mock: device %d is not open", index)
	}
	if len(dst) != mode.FrameBytes() {
		return fmt.Errorf("mock: device %d frame is %d bytes, buffer is %d",
			index, mode.FrameBytes(), len(dst))
	}
	n := m.grabs[index]
	m.grabs[index] = n + 1
	for i := range dst {
		dst[i] = byte(i + n + index*31)
	}
	return nil
}

func (m *Mock) GetParameter(index int, p Param) (int, error) {
	params, open := m.params[index]
	if !open {
		return 0, fmt.Errorf("mock: device %d is not open", index)
	}
	v, ok := params[p]
	if !ok {
		return 0, fmt.Errorf("mock: device %d has no parameter %d", index, p)
	}
	debug.Driver("GetParameter", index, v)
	return v, nil
}

func (m *Mock) SetParameter(index int, p Param, value int) error {
	debug.Driver("SetParameter", index, value)
	params, open := m.params[index]
	if !open {
		return fmt.Errorf("mock: device %d is not open", index)
	}
	if _, ok := params[p]; !ok {
		return fmt.Errorf("mock: device %d has no parameter %d", index, p)
	}
	params[p] = value
	return nil
}
