package oui

import (
	"fmt"
	"net"
	"strings"
)

// MACAddress is a validated 48-bit hardware address.
type MACAddress struct {
	address net.HardwareAddr
}

// ParseMAC accepts "xx:xx:xx:xx:xx:xx", "xx-xx-xx-xx-xx-xx" and
// "xxxxxxxxxxxx" in either case.
func ParseMAC(s string) (MACAddress, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return MACAddress{}, ErrEmptyMAC
	}

	normalized := strings.ReplaceAll(s, "-", ":")
	if !strings.Contains(normalized, ":") && len(normalized) == 12 {
		parts := make([]string, 0, 6)
		for i := 0; i < 12; i += 2 {
			parts = append(parts, normalized[i:i+2])
		}
		normalized = strings.Join(parts, ":")
	}

	hw, err := net.ParseMAC(normalized)
	if err != nil || len(hw) != 6 {
		return MACAddress{}, &ValidationError{Field: "mac", Value: s, Err: ErrInvalidMAC}
	}
	return MACAddress{address: hw}, nil
}

// MustParseMAC parses a MAC address and panics on error.
// Only use in tests or with known-valid input.
func MustParseMAC(s string) MACAddress {
	mac, err := ParseMAC(s)
	if err != nil {
		panic(fmt.Sprintf("invalid MAC address %q: %v", s, err))
	}
	return mac
}

// OUI returns the first three octets as "XX:XX:XX".
func (m MACAddress) OUI() string {
	if len(m.address) < 3 {
		return ""
	}
	return fmt.Sprintf("%02X:%02X:%02X", m.address[0], m.address[1], m.address[2])
}

// IsRandomized reports the locally administered bit (0x02 of the first octet).
// Phones set it when they randomize probe addresses.
func (m MACAddress) IsRandomized() bool {
	return len(m.address) > 0 && m.address[0]&0x02 != 0
}

// IsMulticast reports the group bit (0x01 of the first octet).
func (m MACAddress) IsMulticast() bool {
	return len(m.address) > 0 && m.address[0]&0x01 != 0
}

// String returns the canonical lowercase form used for record keys.
func (m MACAddress) String() string {
	return m.address.String()
}

// IsValid returns true if the MAC address is valid (non-empty)
func (m MACAddress) IsValid() bool {
	return len(m.address) > 0
}
