// Package config loads and validates the kit configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lasec-lab/iikit-go/pkg/hal"
	"github.com/lasec-lab/iikit-go/pkg/telemetry"
)

// Validation errors.
var (
	ErrBadKitID    = errors.New("kit id must be between 0 and 99")
	ErrBadInterval = errors.New("intervals must be positive")
	ErrBadPoll     = errors.New("poll interval must be positive and below the smallest task interval")
)

// Config is the kit configuration.
type Config struct {
	// KitID is the kit number. It determines the mDNS host
	// (iikit<N>.local) and the default command port (47250+N).
	KitID int `yaml:"kit_id"`

	// LEDPin is the pin the blink task toggles.
	LEDPin hal.Pin `yaml:"led_pin"`

	// BlinkInterval is the LED toggle period.
	BlinkInterval time.Duration `yaml:"blink_interval"`

	// DisplayInterval is the display refresh period.
	DisplayInterval time.Duration `yaml:"display_interval"`

	// PollInterval is the loop's idle sleep between iterations.
	PollInterval time.Duration `yaml:"poll_interval"`

	// DisplayLabels maps display lines to their label text.
	DisplayLabels map[int]string `yaml:"display_labels"`

	// Telemetry configures the LasecPlot UDP link.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// StateFile is where the kit state snapshot is persisted.
	// Empty disables persistence.
	StateFile string `yaml:"state_file"`

	// EventLog is where CBOR kit events are written.
	// Empty disables the file logger.
	EventLog string `yaml:"event_log"`
}

// TelemetryConfig configures the telemetry publisher.
type TelemetryConfig struct {
	// Enabled turns the telemetry link on.
	Enabled bool `yaml:"enabled"`

	// CommandPort overrides the derived command port (47250+kit id).
	// Zero means derive from the kit id.
	CommandPort int `yaml:"command_port"`

	// SendRate is the per-variable sample rate in Hz (1..200).
	SendRate float64 `yaml:"send_rate"`

	// Advertise turns mDNS advertising on.
	Advertise bool `yaml:"advertise"`
}

// Default returns the configuration matching the original firmware:
// kit 1, 500 ms blink on D1, 50 ms display refresh writing "P1:" and
// "T1:" to lines 2 and 3, telemetry on at 30 Hz.
func Default() *Config {
	return &Config{
		KitID:           1,
		LEDPin:          hal.PinD1,
		BlinkInterval:   500 * time.Millisecond,
		DisplayInterval: 50 * time.Millisecond,
		PollInterval:    time.Millisecond,
		DisplayLabels: map[int]string{
			2: "P1:",
			3: "T1:",
		},
		Telemetry: TelemetryConfig{
			Enabled:   true,
			SendRate:  30,
			Advertise: true,
		},
	}
}

// Load reads a YAML config file and merges it over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.KitID < 0 || c.KitID > 99 {
		return fmt.Errorf("%w: got %d", ErrBadKitID, c.KitID)
	}
	if c.BlinkInterval <= 0 || c.DisplayInterval <= 0 {
		return ErrBadInterval
	}

	smallest := c.BlinkInterval
	if c.DisplayInterval < smallest {
		smallest = c.DisplayInterval
	}
	if c.PollInterval <= 0 || c.PollInterval >= smallest {
		return fmt.Errorf("%w: poll=%v smallest task=%v", ErrBadPoll, c.PollInterval, smallest)
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.SendRate < telemetry.MinSendRate || c.Telemetry.SendRate > telemetry.MaxSendRate {
			return fmt.Errorf("telemetry send rate %v outside [%v, %v]",
				c.Telemetry.SendRate, telemetry.MinSendRate, telemetry.MaxSendRate)
		}
		if c.Telemetry.CommandPort < 0 || c.Telemetry.CommandPort > 65535 {
			return fmt.Errorf("invalid telemetry command port %d", c.Telemetry.CommandPort)
		}
	}

	return nil
}

// Host returns the kit's mDNS host name, e.g. "iikit3.local".
func (c *Config) Host() string {
	return telemetry.KitHost(c.KitID)
}

// CommandPort returns the effective telemetry command port: the
// configured override, or 47250+kit id.
func (c *Config) CommandPort() int {
	if c.Telemetry.CommandPort != 0 {
		return c.Telemetry.CommandPort
	}
	return telemetry.KitCommandPort(c.KitID)
}

// KitName returns the kit's short name, e.g. "iikit3".
func (c *Config) KitName() string {
	return fmt.Sprintf("iikit%d", c.KitID)
}
