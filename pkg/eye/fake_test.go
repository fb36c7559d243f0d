package eye

import (
	"fmt"

	"github.com/thesis09/pseyepy/pkg/eye/driver"
)

// fakeDriver scripts low-level driver behavior and records every call,
// so tests can verify call ordering and failure handling.
type fakeDriver struct {
	connected int

	inits   int
	uninits int
	opens   []int
	closes  []int
	grabs   []int

	initErr  error
	failOpen map[int]bool
	grabErr  map[int]error

	params map[int]map[driver.Param]int

	// setHook, when non-nil, decides the value the hardware actually
	// keeps for a SetParameter call. Used to simulate firmware that
	// silently refuses a write.
	setHook func(index int, p driver.Param, v int) int
}

func newFakeDriver(connected int) *fakeDriver {
	return &fakeDriver{
		connected: connected,
		failOpen:  make(map[int]bool),
		grabErr:   make(map[int]error),
		params:    make(map[int]map[driver.Param]int),
	}
}

func (f *fakeDriver) Init() error {
	f.inits++
	return f.initErr
}

func (f *fakeDriver) Uninit() {
	f.uninits++
}

func (f *fakeDriver) DeviceCount() int {
	return f.connected
}

func (f *fakeDriver) OpenDevice(index int, m driver.Mode) error {
	f.opens = append(f.opens, index)
	if f.failOpen[index] {
		return fmt.Errorf("scripted open failure for device %d", index)
	}
	if f.params[index] == nil {
		f.params[index] = make(map[driver.Param]int)
	}
	return nil
}

func (f *fakeDriver) CloseDevice(index int) {
	f.closes = append(f.closes, index)
}

func (f *fakeDriver) GrabFrame(index int, dst []byte) error {
	f.grabs = append(f.grabs, index)
	if err := f.grabErr[index]; err != nil {
		return err
	}
	for i := range dst {
		dst[i] = byte(index + 1)
	}
	return nil
}

// GetParameter returns the stored value, inventing a stable
// device-dependent default (10+index) on first read so channel
// seeding has something real to pick up.
func (f *fakeDriver) GetParameter(index int, p driver.Param) (int, error) {
	params, ok := f.params[index]
	if !ok {
		return 0, fmt.Errorf("device %d is not open", index)
	}
	v, ok := params[p]
	if !ok {
		v = 10 + index
		params[p] = v
	}
	return v, nil
}

func (f *fakeDriver) SetParameter(index int, p driver.Param, value int) error {
	params, ok := f.params[index]
	if !ok {
		return fmt.Errorf("device %d is not open", index)
	}
	if f.setHook != nil {
		value = f.setHook(index, p, value)
	}
	params[p] = value
	return nil
}
