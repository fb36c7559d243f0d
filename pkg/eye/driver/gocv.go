package driver

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/thesis09/pseyepy/internal/debug"
)

// maxProbeDevices bounds the index scan used to count connected cameras.
const maxProbeDevices = 8

// capProps maps hardware registers to the capture properties OpenCV
// exposes. Registers absent here have no capture property; the driver
// shadow-stores them so get-after-set stays coherent (the physical
// register keeps its power-on value).
var capProps = map[Param]gocv.VideoCaptureProperties{
	ParamAutoExposure:     gocv.VideoCaptureAutoExposure,
	ParamAutoWhiteBalance: gocv.VideoCaptureAutoWB,
	ParamGain:             gocv.VideoCaptureGain,
	ParamExposure:         gocv.VideoCaptureExposure,
	ParamSharpness:        gocv.VideoCaptureSharpness,
	ParamContrast:         gocv.VideoCaptureContrast,
	ParamBrightness:       gocv.VideoCaptureBrightness,
	ParamHue:              gocv.VideoCaptureHue,
	ParamRedBalance:       gocv.VideoCaptureWhiteBalanceRedV,
	ParamBlueBalance:      gocv.VideoCaptureWhiteBalanceBlueU,
}

// Gocv is the real Driver implementation, backed by OpenCV video capture.
// Requires OpenCV installed and cameras visible to the OS.
type Gocv struct {
	count  int
	caps   map[int]*gocv.VideoCapture
	modes  map[int]Mode
	shadow map[int]map[Param]int
}

// NewGocv creates the OpenCV-backed camera driver.
func NewGocv() (*Gocv, error) {
	debug.Info("Initializing real camera driver (gocv)")
	return &Gocv{
		caps:   make(map[int]*gocv.VideoCapture),
		modes:  make(map[int]Mode),
		shadow: make(map[int]map[Param]int),
	}, nil
}

// Init counts connected cameras by probing capture indices.
// OpenCV has no enumeration call, so each index up to maxProbeDevices
// is opened and immediately released.
func (g *Gocv) Init() error {
	count := 0
	for i := 0; i < maxProbeDevices; i++ {
		vc, err := gocv.OpenVideoCapture(i)
		if err != nil {
			break
		}
		opened := vc.IsOpened()
		if err := vc.Close(); err != nil {
			debug.Verbose("probe close of device %d: %v", i, err)
		}
		if !opened {
			break
		}
		count = i + 1
	}
	g.count = count
	debug.Info("Driver context initialized: %d connected device(s)", count)
	return nil
}

func (g *Gocv) Uninit() {
	// Closing stragglers here is belt and braces; the session closes
	// every device before uninitializing the context.
	for index, vc := range g.caps {
		if err := vc.Close(); err != nil {
			debug.Verbose("uninit close of device %d: %v", index, err)
		}
		delete(g.caps, index)
		delete(g.modes, index)
		delete(g.shadow, index)
	}
	g.count = 0
	debug.Trace("driver context released")
}

func (g *Gocv) DeviceCount() int {
	return g.count
}

func (g *Gocv) OpenDevice(index int, m Mode) error {
	debug.Driver("OpenDevice", index, m)
	if _, open := g.caps[index]; open {
		return fmt.Errorf("device %d already open", index)
	}
	vc, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return fmt.Errorf("open capture %d: %w", index, err)
	}
	if !vc.IsOpened() {
		_ = vc.Close()
		return fmt.Errorf("capture %d did not open", index)
	}
	vc.Set(gocv.VideoCaptureFrameWidth, float64(m.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(m.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(m.FrameRate))

	gotW := int(vc.Get(gocv.VideoCaptureFrameWidth))
	gotH := int(vc.Get(gocv.VideoCaptureFrameHeight))
	if gotW != m.Width || gotH != m.Height {
		_ = vc.Close()
		return fmt.Errorf("device %d refused mode %dx%d (reports %dx%d)",
			index, m.Width, m.Height, gotW, gotH)
	}

	g.caps[index] = vc
	g.modes[index] = m
	g.shadow[index] = map[Param]int{
		ParamAutoGain:     0,
		ParamGreenBalance: 128,
		ParamHFlip:        0,
		ParamVFlip:        0,
	}
	return nil
}

func (g *Gocv) CloseDevice(index int) {
	debug.Driver("CloseDevice", index, nil)
	vc, open := g.caps[index]
	if !open {
		return
	}
	if err := vc.Close(); err != nil {
		debug.Verbose("close of device %d: %v", index, err)
	}
	delete(g.caps, index)
	delete(g.modes, index)
	delete(g.shadow, index)
}

func (g *Gocv) GrabFrame(index int, dst []byte) error {
	vc, open := g.caps[index]
	if !open {
		return fmt.Errorf("device %d is not open", index)
	}
	m := g.modes[index]

	bgr := gocv.NewMat()
	defer bgr.Close()
	if ok := vc.Read(&bgr); !ok || bgr.Empty() {
		return fmt.Errorf("device %d returned no frame", index)
	}

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(bgr, &rgb, gocv.ColorBGRToRGB)

	raw := rgb.ToBytes()
	if len(raw) != len(dst) {
		return fmt.Errorf("device %d frame is %d bytes, buffer is %d (mode %dx%d)",
			index, len(raw), len(dst), m.Width, m.Height)
	}
	copy(dst, raw)
	return nil
}

func (g *Gocv) GetParameter(index int, p Param) (int, error) {
	vc, open := g.caps[index]
	if !open {
		return 0, fmt.Errorf("device %d is not open", index)
	}
	if prop, ok := capProps[p]; ok {
		v := int(vc.Get(prop))
		debug.Driver("GetParameter", index, v)
		return v, nil
	}
	if v, ok := g.shadow[index][p]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("device %d has no parameter %d", index, p)
}

func (g *Gocv) SetParameter(index int, p Param, value int) error {
	debug.Driver("SetParameter", index, value)
	vc, open := g.caps[index]
	if !open {
		return fmt.Errorf("device %d is not open", index)
	}
	if prop, ok := capProps[p]; ok {
		vc.Set(prop, float64(value))
		return nil
	}
	if _, ok := g.shadow[index][p]; ok {
		g.shadow[index][p] = value
		return nil
	}
	return fmt.Errorf("device %d has no parameter %d", index, p)
}
