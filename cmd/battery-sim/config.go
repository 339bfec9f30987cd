package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/openfmb-sim/battery-sim-go/pkg/device"
	"github.com/openfmb-sim/battery-sim-go/pkg/simulator"
)

// Config is the simulator configuration file.
type Config struct {
	Device    device.Identity  `yaml:"device"`
	Battery   simulator.Config `yaml:"battery"`
	Publisher PublisherConfig  `yaml:"publisher"`
	Log       LogConfig        `yaml:"log"`

	// MetricsAddr serves /metrics when set (e.g. ":9108").
	MetricsAddr string `yaml:"metricsAddr"`

	// Output receives published frames; "-" is stdout.
	Output string `yaml:"output"`

	// ControlIn is a file or FIFO of control frames to apply.
	ControlIn string `yaml:"controlIn"`

	// StateFile resumes and saves battery state across restarts.
	StateFile string `yaml:"stateFile"`
}

// PublisherConfig controls the publish cadence.
type PublisherConfig struct {
	Interval   time.Duration `yaml:"interval"`
	EventEvery int           `yaml:"eventEvery"`
}

// LogConfig controls operational and publication logging.
type LogConfig struct {
	Level       string `yaml:"level"`
	ProtocolLog string `yaml:"protocolLog"`
}

// parseConfig parses a YAML configuration. Unset battery parameters keep
// their defaults.
func parseConfig(data []byte) (Config, error) {
	cfg := Config{Battery: simulator.DefaultConfig()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// loadConfig reads the configuration file at path. An empty path yields
// the defaults.
func loadConfig(path string) (Config, error) {
	if path == "" {
		return Config{Battery: simulator.DefaultConfig()}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return parseConfig(data)
}

func (c *Config) applyDefaults() {
	if c.Device.LogicalDeviceID == "" {
		c.Device.LogicalDeviceID = "BatterySim"
	}
	if c.Device.Name == "" {
		c.Device.Name = "Simulated Battery"
	}
	if c.Publisher.Interval <= 0 {
		c.Publisher.Interval = simulator.DefaultInterval
	}
	if c.Publisher.EventEvery <= 0 {
		c.Publisher.EventEvery = simulator.DefaultEventEvery
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Output == "" {
		c.Output = "-"
	}
}

func (c *Config) validate() error {
	if err := c.Device.Normalize(); err != nil {
		return fmt.Errorf("device: %w", err)
	}
	if err := c.Battery.Validate(); err != nil {
		return fmt.Errorf("battery: %w", err)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Output == c.ControlIn {
		return fmt.Errorf("output and control input must differ, both are %q", c.Output)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
