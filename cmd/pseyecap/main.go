package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/thesis09/pseyepy/internal/config"
	"github.com/thesis09/pseyepy/internal/debug"
	"github.com/thesis09/pseyepy/internal/telemetry"
	"github.com/thesis09/pseyepy/pkg/eye"
	"github.com/thesis09/pseyepy/pkg/eye/driver"
)

// options are the CLI overrides applied on top of the config file.
type options struct {
	frames  int    // override fps-measurement frame count, 0 = use config
	devices string // override device indices, "" = use config
	list    bool   // list connected devices and exit
}

func main() {
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	frames := flag.Int("frames", 0, "override number of frames to read for the fps measurement")
	devicesArg := flag.String("devices", "", "override device indices, comma-separated (e.g. \"0,2\")")
	list := flag.Bool("list", false, "list connected devices and exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	debug.Init(cfg.Defaults.DebugLevel)
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)
	debug.Value("Mock driver", cfg.Defaults.MockDriver)

	opts := options{frames: *frames, devices: *devicesArg, list: *list}
	if err := run(ctx, cfg, opts); err != nil {
		log.Fatalf("capture failed: %v", err)
	}
}

// loadConfig validates the config path, then loads it.
func loadConfig(path string) (*config.Config, error) {
	if err := config.ValidateConfigPath(path); err != nil {
		return nil, err
	}
	return config.Load(path)
}

// run executes one capture pass. It owns the session for its whole
// lifetime: every return path, including signal-driven cancellation
// mid-measurement, goes through the deferred Close, so no device
// handle outlives the run.
func run(ctx context.Context, cfg *config.Config, opts options) error {
	drv, err := driver.New(cfg.Defaults.MockDriver, cfg.Defaults.MockDevices)
	if err != nil {
		return fmt.Errorf("init camera driver: %w", err)
	}

	if opts.list {
		if err := drv.Init(); err != nil {
			return fmt.Errorf("driver init: %w", err)
		}
		fmt.Printf("%d connected device(s)\n", drv.DeviceCount())
		drv.Uninit()
		return nil
	}

	devices := cfg.Devices()
	if opts.devices != "" {
		devices, err = parseDevices(opts.devices)
		if err != nil {
			return fmt.Errorf("invalid -devices: %w", err)
		}
	}
	res, err := cfg.Resolution()
	if err != nil {
		return err
	}

	session, err := eye.Open(drv, devices, res, cfg.Capture.FrameRate, cfg.Color())
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Printf("closing session failed: %v", err)
		}
	}()

	applyControls(session, cfg.Controls)

	sample := cfg.Defaults.SampleFrames
	if opts.frames > 0 {
		sample = opts.frames
	}
	fps, err := eye.MeasureFPS(ctx, session, sample)
	if err != nil {
		return fmt.Errorf("fps measurement: %w", err)
	}

	c := session.Config()
	fmt.Printf("devices %v: %dx%d @ %d fps requested, %.2f fps achieved over %d frames\n",
		session.Devices(), c.Width, c.Height, c.FrameRate, fps, sample)

	if cfg.MQTT != nil {
		if err := publishReport(cfg.MQTT, session, fps, sample); err != nil {
			// Telemetry is advisory; the capture run itself succeeded.
			debug.Error(err)
		}
	}
	return nil
}

// applyControls pushes configured initial values to every device.
// Rejections are warnings from the control channel, not fatal.
func applyControls(s *eye.Session, controls map[string]int) {
	for name, value := range controls {
		id, ok := eye.ControlByName(name)
		if !ok {
			// Load already validated names; this is unreachable.
			continue
		}
		if err := s.Control(id).SetAll(value); err != nil {
			debug.Error(err)
		}
	}
}

// publishReport sends one capture status snapshot over MQTT.
func publishReport(mc *config.MQTTConfig, s *eye.Session, fps float64, frames int) error {
	client, err := telemetry.NewClient(mc.Broker, mc.ClientID)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	controls := make(map[string]int)
	for _, id := range eye.Controls() {
		ch := s.Control(id)
		if ch.Len() > 0 {
			controls[ch.Descriptor().Name] = ch.Get(0)
		}
	}
	c := s.Config()
	return telemetry.PublishJSON(client, mc.Topic, telemetry.Report{
		Devices:     s.Devices(),
		Width:       c.Width,
		Height:      c.Height,
		FrameRate:   c.FrameRate,
		MeasuredFPS: fps,
		Frames:      frames,
		Controls:    controls,
		Timestamp:   time.Now().UTC(),
	})
}

// parseDevices parses a comma-separated list of device indices.
func parseDevices(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	devices := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty device index in %q", s)
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("device index %q is not an integer", part)
		}
		if n < 0 {
			return nil, fmt.Errorf("device index %d is negative", n)
		}
		devices = append(devices, n)
	}
	return devices, nil
}
