package ports

import (
	"context"
	"errors"
	"time"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
)

// ErrSourceExhausted is returned by a FrameSource that has no more frames to
// deliver (end of a replayed capture file).
var ErrSourceExhausted = errors.New("frame source exhausted")

// ErrNoChannels is returned by a ChannelScheduler with an empty plan.
var ErrNoChannels = errors.New("channel plan is empty")

// InterfaceLister enumerates adapters with wireless capability.
type InterfaceLister interface {
	// ListInterfaces returns an empty slice when no adapter is found.
	ListInterfaces(ctx context.Context) []string
	// Describe never fails for unknown names; it reports Exists=false.
	Describe(ctx context.Context, name string) domain.InterfaceInfo
}

// InterfaceController owns one wireless adapter for the lifetime of a scan.
// Mutating calls block on privileged system commands with bounded timeouts.
type InterfaceController interface {
	Name() string
	Describe(ctx context.Context) domain.InterfaceInfo
	// EnterMonitorMode is a no-op when the adapter is already in monitor mode.
	EnterMonitorMode(ctx context.Context) error
	// ExitMonitorMode restores the mode recorded by EnterMonitorMode.
	ExitMonitorMode(ctx context.Context) error
	// SetChannel leaves CurrentChannel untouched on failure.
	SetChannel(ctx context.Context, channel int) error
	CurrentChannel() int
}

// FrameSource delivers decoded frames for bounded capture windows.
type FrameSource interface {
	// Capture blocks for at most window (or until ctx is done) and calls fn
	// for every frame read in that time.
	Capture(ctx context.Context, window time.Duration, fn func(domain.Frame)) error
	Close() error
}

// ChannelScheduler walks a channel plan for one adapter. The scan worker
// calls Hop before every dwell window.
type ChannelScheduler interface {
	// Hop returns the channel that was attempted, even when switching failed.
	Hop(ctx context.Context) (int, error)
	Channels() []int
	Current() int
	Dwell() time.Duration
}

// VendorResolver maps a hardware address to a manufacturer name.
type VendorResolver interface {
	// ResolveVendor returns domain.UnknownVendor when nothing matches.
	ResolveVendor(mac string) string
}

// NetworkScanner performs a one-shot managed-mode scan.
type NetworkScanner interface {
	ScanNetworks(ctx context.Context, iface string) ([]domain.AccessPoint, error)
}
