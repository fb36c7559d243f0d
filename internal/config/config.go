package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thesis09/pseyepy/pkg/eye"
)

// MaxConfigFileBytes caps the config file size; anything larger is
// rejected before parsing.
const MaxConfigFileBytes = 1 << 20

// CaptureConfig selects the devices and the capture mode they share.
type CaptureConfig struct {
	Devices    []int  `yaml:"devices"`     // device indices; empty = all connected
	Resolution string `yaml:"resolution"`  // "small" (320x240) or "large" (640x480)
	FrameRate  int    `yaml:"frame_rate"`  // frames per second
	Greyscale  bool   `yaml:"greyscale"`   // declared by the hardware, currently unsupported
}

// MQTTConfig enables telemetry publication when present.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`    // e.g. "tcp://localhost:1883"
	ClientID string `yaml:"client_id"` // generated when empty
	Topic    string `yaml:"topic"`
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel   int  `yaml:"debug_level"`   // debug level 0-4 (0=warnings only, 4=driver trace)
	MockDriver   bool `yaml:"mock_driver"`   // use mock camera driver (true=dev/test, false=real cameras)
	MockDevices  int  `yaml:"mock_devices"`  // simulated rig size when mock_driver is set
	SampleFrames int  `yaml:"sample_frames"` // frames read when measuring fps
}

// Config aggregates all application configuration.
type Config struct {
	Capture  CaptureConfig  `yaml:"capture"`
	Controls map[string]int `yaml:"controls,omitempty"` // control name -> initial value
	Defaults DefaultsConfig `yaml:"defaults"`
	MQTT     *MQTTConfig    `yaml:"mqtt,omitempty"` // optional
}

// ValidateConfigPath rejects paths outside a configs/ directory, paths
// containing traversal, and extensions other than .yaml.
func ValidateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("config path %q contains traversal", path)
	}
	if filepath.Ext(path) != ".yaml" {
		return fmt.Errorf("config path %q must have .yaml extension", path)
	}
	if filepath.Base(filepath.Dir(filepath.Clean(path))) != "configs" {
		return fmt.Errorf("config path %q must live in a configs/ directory", path)
	}
	return nil
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > MaxConfigFileBytes {
		return nil, fmt.Errorf("config file %q is %d bytes, max is %d", path, info.Size(), MaxConfigFileBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// Basic validation
	if cfg.Capture.Resolution == "" {
		cfg.Capture.Resolution = "large"
	}
	res, err := cfg.Resolution()
	if err != nil {
		return nil, err
	}
	if cfg.Capture.FrameRate == 0 {
		cfg.Capture.FrameRate = 60 // hardware default
	}
	if cfg.Capture.FrameRate < 0 {
		return nil, fmt.Errorf("capture.frame_rate must be positive, got %d", cfg.Capture.FrameRate)
	}
	// The sensor tops out at 187 fps in the small mode and 75 in the
	// large mode.
	maxRate := 187
	if res == eye.ResolutionLarge {
		maxRate = 75
	}
	if cfg.Capture.FrameRate > maxRate {
		return nil, fmt.Errorf("capture.frame_rate %d exceeds %d, the maximum at resolution %q",
			cfg.Capture.FrameRate, maxRate, cfg.Capture.Resolution)
	}
	for _, dev := range cfg.Capture.Devices {
		if dev < 0 {
			return nil, fmt.Errorf("capture.devices contains negative index %d", dev)
		}
	}
	for name := range cfg.Controls {
		if _, ok := eye.ControlByName(name); !ok {
			return nil, fmt.Errorf("controls: unknown control %q", name)
		}
	}
	if cfg.MQTT != nil {
		if cfg.MQTT.Broker == "" {
			return nil, fmt.Errorf("mqtt.broker is required when mqtt is configured")
		}
		if cfg.MQTT.Topic == "" {
			cfg.MQTT.Topic = "pseyepy/status"
		}
	}
	if cfg.Defaults.SampleFrames <= 0 {
		cfg.Defaults.SampleFrames = 100
	}
	if cfg.Defaults.MockDevices <= 0 {
		cfg.Defaults.MockDevices = 2
	}
	if cfg.Defaults.DebugLevel < 0 || cfg.Defaults.DebugLevel > 4 {
		return nil, fmt.Errorf("defaults.debug_level must be 0-4, got %d", cfg.Defaults.DebugLevel)
	}

	return &cfg, nil
}

// Resolution maps the configured resolution name onto the capture enum.
func (c *Config) Resolution() (eye.Resolution, error) {
	switch c.Capture.Resolution {
	case "small":
		return eye.ResolutionSmall, nil
	case "large":
		return eye.ResolutionLarge, nil
	default:
		return 0, fmt.Errorf("capture.resolution must be \"small\" or \"large\", got %q", c.Capture.Resolution)
	}
}

// Color reports whether capture is in color (the only supported mode;
// the greyscale flag exists for forward compatibility).
func (c *Config) Color() bool {
	return !c.Capture.Greyscale
}

// Devices returns the configured device list, nil meaning all connected.
func (c *Config) Devices() []int {
	if len(c.Capture.Devices) == 0 {
		return nil
	}
	return append([]int(nil), c.Capture.Devices...)
}
