package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Service constants for kit advertisement.
const (
	// ServiceType is the mDNS service type for the telemetry link.
	ServiceType = "_iikit-telemetry._udp"

	// Domain is the mDNS domain.
	Domain = "local."

	// MaxInstanceNameLen is the maximum mDNS instance name length.
	MaxInstanceNameLen = 63
)

// Discovery errors.
var (
	// ErrNotAdvertising is returned when updating or stopping an
	// advertisement that was never started.
	ErrNotAdvertising = errors.New("not advertising")

	// ErrMissingRequired is returned when required kit info is absent.
	ErrMissingRequired = errors.New("missing required field")
)

// KitInfo describes the kit being advertised.
type KitInfo struct {
	// KitID is the kit number; the instance name is "iikit<KitID>".
	KitID int

	// Firmware is the firmware/software version string.
	Firmware string

	// Vars are the exported telemetry variable names.
	Vars []string

	// Port is the UDP command port.
	Port int
}

// InstanceName returns the mDNS instance name for the kit.
func (i *KitInfo) InstanceName() string {
	name := fmt.Sprintf("iikit%d", i.KitID)
	if len(name) > MaxInstanceNameLen {
		name = name[:MaxInstanceNameLen]
	}
	return name
}

// TXTRecords encodes the kit info as mDNS TXT records.
func (i *KitInfo) TXTRecords() []string {
	txt := []string{
		fmt.Sprintf("kit=%d", i.KitID),
	}
	if i.Firmware != "" {
		txt = append(txt, fmt.Sprintf("fw=%s", i.Firmware))
	}
	if len(i.Vars) > 0 {
		txt = append(txt, fmt.Sprintf("vars=%s", strings.Join(i.Vars, ",")))
	}
	return txt
}

// Advertiser provides mDNS advertising for the kit.
type Advertiser interface {
	// Advertise starts advertising the kit. The advertisement stays up
	// until Stop is called or a new Advertise replaces it.
	Advertise(ctx context.Context, info *KitInfo) error

	// Update replaces the TXT records of the active advertisement.
	Update(info *KitInfo) error

	// Stop stops advertising.
	Stop() error
}

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL.
	// Default: 120 seconds.
	TTL time.Duration
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{
		Interface: "",
		TTL:       120 * time.Second,
	}
}
