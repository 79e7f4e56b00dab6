package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SerialConfig describes the command link.
type SerialConfig struct {
	Device        string `yaml:"device"`          // e.g. "/dev/ttyACM0"; empty = no serial link
	Baud          int    `yaml:"baud"`            // default 9600
	ReadTimeoutMs int    `yaml:"read_timeout_ms"` // 0 = blocking reads
}

// MotorConfig holds the driver wiring (BCM pin numbers).
type MotorConfig struct {
	StepPin   int `yaml:"step_pin"`
	DirPin    int `yaml:"dir_pin"`
	EnablePin int `yaml:"enable_pin"` // DRV8825 ENABLE. Active LOW (LOW=enabled).
}

// MotionConfig holds the sequencing and profile parameters.
type MotionConfig struct {
	StepCount             int64   `yaml:"step_count"`                // steps per forward/rewind move
	DwellMs               int     `yaml:"dwell_ms"`                  // hold time after a forward move
	MaxSpeedStepsPerS     float64 `yaml:"max_speed_steps_per_s"`     // profile cruise speed
	AccelerationStepsPerS float64 `yaml:"acceleration_steps_per_s2"` // profile acceleration
}

// DefaultsConfig contains generic runtime parameters.
type DefaultsConfig struct {
	DebugLevel     int  `yaml:"debug_level"`      // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO       bool `yaml:"mock_gpio"`        // use mock GPIO (true=dev/test, false=real Raspberry Pi)
	PollIntervalMs int  `yaml:"poll_interval_ms"` // sequencer poll loop period
}

// Config aggregates all application configuration.
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Motor    MotorConfig    `yaml:"motor"`
	Motion   MotionConfig   `yaml:"motion"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// ValidateConfigPath checks that a -config flag value points into the
// configs/ directory, has a .yaml extension and contains no traversal.
func ValidateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	if filepath.Ext(path) != ".yaml" {
		return fmt.Errorf("config file must have a .yaml extension, got %q", path)
	}
	clean := filepath.Clean(path)
	if strings.Contains(clean, "..") {
		return fmt.Errorf("config path must not contain traversal: %q", path)
	}
	if filepath.Base(filepath.Dir(clean)) != "configs" {
		return fmt.Errorf("config file must live under configs/, got %q", path)
	}
	return nil
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// Basic validation: the three driver pins are required.
	if cfg.Motor.StepPin <= 0 {
		return nil, fmt.Errorf("motor.step_pin is required")
	}
	if cfg.Motor.DirPin <= 0 {
		return nil, fmt.Errorf("motor.dir_pin is required")
	}
	if cfg.Motor.EnablePin <= 0 {
		return nil, fmt.Errorf("motor.enable_pin is required")
	}
	if cfg.Motion.StepCount < 0 {
		return nil, fmt.Errorf("motion.step_count must be >= 0, got %d", cfg.Motion.StepCount)
	}
	if cfg.Motion.DwellMs < 0 {
		return nil, fmt.Errorf("motion.dwell_ms must be >= 0, got %d", cfg.Motion.DwellMs)
	}
	if cfg.Motion.MaxSpeedStepsPerS < 0 {
		return nil, fmt.Errorf("motion.max_speed_steps_per_s must be >= 0, got %g", cfg.Motion.MaxSpeedStepsPerS)
	}
	if cfg.Motion.AccelerationStepsPerS < 0 {
		return nil, fmt.Errorf("motion.acceleration_steps_per_s2 must be >= 0, got %g", cfg.Motion.AccelerationStepsPerS)
	}

	// Zero means "use the default".
	if cfg.Motion.StepCount == 0 {
		cfg.Motion.StepCount = 50
	}
	if cfg.Motion.DwellMs == 0 {
		cfg.Motion.DwellMs = 5000
	}
	if cfg.Motion.MaxSpeedStepsPerS == 0 {
		cfg.Motion.MaxSpeedStepsPerS = 1000
	}
	if cfg.Motion.AccelerationStepsPerS == 0 {
		cfg.Motion.AccelerationStepsPerS = 500
	}
	if cfg.Serial.Baud <= 0 {
		cfg.Serial.Baud = 9600
	}
	if cfg.Defaults.PollIntervalMs <= 0 {
		cfg.Defaults.PollIntervalMs = 1
	}

	return &cfg, nil
}

// Dwell returns the post-move hold duration.
func (c *Config) Dwell() time.Duration {
	return time.Duration(c.Motion.DwellMs) * time.Millisecond
}

// PollInterval returns the sequencer poll loop period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Defaults.PollIntervalMs) * time.Millisecond
}

// SerialReadTimeout returns the serial read timeout (0 = blocking).
func (c *Config) SerialReadTimeout() time.Duration {
	return time.Duration(c.Serial.ReadTimeoutMs) * time.Millisecond
}
