package domain

import (
	"net"
	"regexp"
	"strings"
)

// Validation Helpers

var (
	macRegex       = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$`)
	interfaceRegex = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)
)

// IsValidMAC checks if the string is a valid MAC address
func IsValidMAC(mac string) bool {
	return macRegex.MatchString(mac)
}

// IsValidInterface checks if the string is a safe interface name (alphanumeric + - _)
func IsValidInterface(iface string) bool {
	// Length check (Linux interfaces are usually short, IFNAMSIZ is 16)
	if len(iface) == 0 || len(iface) > 16 {
		return false
	}
	return interfaceRegex.MatchString(iface)
}

// NormalizeMAC returns the canonical lowercase colon-hex form used as record
// key. Inputs that do not parse as a 48-bit address are returned lowercased.
func NormalizeMAC(mac string) string {
	hw, err := net.ParseMAC(strings.ReplaceAll(strings.TrimSpace(mac), "-", ":"))
	if err != nil || len(hw) != 6 {
		return strings.ToLower(strings.TrimSpace(mac))
	}
	return hw.String()
}

// IsBroadcastMAC reports the all-ones and all-zero addresses, which never
// identify a station.
func IsBroadcastMAC(mac string) bool {
	m := NormalizeMAC(mac)
	return m == "ff:ff:ff:ff:ff:ff" || m == "00:00:00:00:00:00" || m == ""
}
