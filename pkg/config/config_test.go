package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lasec-lab/iikit-go/pkg/config"
	"github.com/lasec-lab/iikit-go/pkg/hal"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, 1, cfg.KitID)
	assert.Equal(t, hal.PinD1, cfg.LEDPin)
	assert.Equal(t, 500*time.Millisecond, cfg.BlinkInterval)
	assert.Equal(t, 50*time.Millisecond, cfg.DisplayInterval)
	assert.Equal(t, time.Millisecond, cfg.PollInterval)
	assert.Equal(t, map[int]string{2: "P1:", 3: "T1:"}, cfg.DisplayLabels)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 30.0, cfg.Telemetry.SendRate)
	assert.True(t, cfg.Telemetry.Advertise)

	require.NoError(t, cfg.Validate())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kit.yaml")
	content := `
kit_id: 3
blink_interval: 250ms
telemetry:
  enabled: true
  send_rate: 60
  advertise: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.KitID)
	assert.Equal(t, 250*time.Millisecond, cfg.BlinkInterval)
	// Untouched fields keep their defaults.
	assert.Equal(t, 50*time.Millisecond, cfg.DisplayInterval)
	assert.Equal(t, hal.PinD1, cfg.LEDPin)
	assert.Equal(t, 60.0, cfg.Telemetry.SendRate)
	assert.False(t, cfg.Telemetry.Advertise)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kit_id: [not an int"), 0644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *config.Config) {},
		},
		{
			name:    "negative kit id",
			mutate:  func(c *config.Config) { c.KitID = -1 },
			wantErr: config.ErrBadKitID,
		},
		{
			name:    "kit id too large",
			mutate:  func(c *config.Config) { c.KitID = 100 },
			wantErr: config.ErrBadKitID,
		},
		{
			name:    "zero blink interval",
			mutate:  func(c *config.Config) { c.BlinkInterval = 0 },
			wantErr: config.ErrBadInterval,
		},
		{
			name:    "negative display interval",
			mutate:  func(c *config.Config) { c.DisplayInterval = -time.Second },
			wantErr: config.ErrBadInterval,
		},
		{
			name:    "poll not below smallest task interval",
			mutate:  func(c *config.Config) { c.PollInterval = 50 * time.Millisecond },
			wantErr: config.ErrBadPoll,
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *config.Config) { c.PollInterval = 0 },
			wantErr: config.ErrBadPoll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTelemetryRate(t *testing.T) {
	cfg := config.Default()
	cfg.Telemetry.SendRate = 500
	assert.Error(t, cfg.Validate())

	// Out-of-range rate is fine when telemetry is off.
	cfg.Telemetry.Enabled = false
	assert.NoError(t, cfg.Validate())
}

func TestDerivedAddressing(t *testing.T) {
	cfg := config.Default()
	cfg.KitID = 3

	assert.Equal(t, "iikit3.local", cfg.Host())
	assert.Equal(t, "iikit3", cfg.KitName())
	assert.Equal(t, 47253, cfg.CommandPort())

	cfg.Telemetry.CommandPort = 50000
	assert.Equal(t, 50000, cfg.CommandPort())
}
