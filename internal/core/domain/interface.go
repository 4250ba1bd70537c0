package domain

import (
	"errors"
)

// WiFiBand represents a typed string for frequency bands.
type WiFiBand string

const (
	Band24GHz WiFiBand = "2.4GHz"
	Band5GHz  WiFiBand = "5GHz"
	Band6GHz  WiFiBand = "6GHz"
)

// InterfaceMode is the 802.11 operating type reported by the driver.
type InterfaceMode string

const (
	ModeManaged InterfaceMode = "managed"
	ModeMonitor InterfaceMode = "monitor"
	ModeUnknown InterfaceMode = "unknown"
)

// Domain Errors for network interfaces.
var (
	ErrInvalidInterfaceName = errors.New("invalid interface name")
	ErrInvalidMAC           = errors.New("invalid MAC address")
	ErrUnsupportedBand      = errors.New("unsupported wifi band")
)

// InterfaceInfo is a read-only probe of one network adapter.
// Exists is false for names the kernel does not know; no other field is
// meaningful in that case.
type InterfaceInfo struct {
	Name              string        `json:"interface" yaml:"interface"`
	Exists            bool          `json:"exists" yaml:"exists"`
	Wireless          bool          `json:"wireless" yaml:"wireless"`
	MonitorCapable    bool          `json:"monitor_capable" yaml:"monitor_capable"`
	CurrentMode       InterfaceMode `json:"current_mode" yaml:"current_mode"`
	HardwareAddress   string        `json:"mac_address,omitempty" yaml:"mac_address,omitempty"`
	Phy               string        `json:"phy,omitempty" yaml:"phy,omitempty"`
	SupportedBands    []WiFiBand    `json:"supported_bands,omitempty" yaml:"supported_bands,omitempty"`
	SupportedChannels []int         `json:"supported_channels,omitempty" yaml:"supported_channels,omitempty"`
}

// NewInterfaceInfo is the factory for a probe result. Unknown names yield
// Exists=false with mode unknown.
func NewInterfaceInfo(name string) (InterfaceInfo, error) {
	if !IsValidInterface(name) {
		return InterfaceInfo{Name: name, CurrentMode: ModeUnknown}, ErrInvalidInterfaceName
	}
	return InterfaceInfo{Name: name, CurrentMode: ModeUnknown}, nil
}

// InMonitorMode reports whether the adapter is already capturing all frames.
func (i InterfaceInfo) InMonitorMode() bool {
	return i.CurrentMode == ModeMonitor
}
