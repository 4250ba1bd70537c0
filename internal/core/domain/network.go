package domain

import (
	"strings"
	"time"
)

// Encryption is the security class advertised by an access point.
type Encryption string

const (
	EncryptionOpen    Encryption = "Open"
	EncryptionWEP     Encryption = "WEP"
	EncryptionWPA     Encryption = "WPA"
	EncryptionWPA2    Encryption = "WPA2"
	EncryptionWPA3    Encryption = "WPA3"
	EncryptionUnknown Encryption = "Unknown"
)

// ParseEncryption maps a free-form label (as stored or printed by iwlist)
// onto the enum. Anything unrecognized is EncryptionUnknown.
func ParseEncryption(s string) Encryption {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OPEN", "NONE", "":
		return EncryptionOpen
	case "WEP":
		return EncryptionWEP
	case "WPA":
		return EncryptionWPA
	case "WPA2":
		return EncryptionWPA2
	case "WPA3":
		return EncryptionWPA3
	}
	return EncryptionUnknown
}

// UnknownVendor is reported when the OUI is not in any vendor table.
const UnknownVendor = "Unknown"

// AccessPoint is the aggregated record for one BSSID.
type AccessPoint struct {
	BSSID       string     `json:"bssid" yaml:"bssid"`
	SSID        string     `json:"ssid" yaml:"ssid"`
	Channel     int        `json:"channel" yaml:"channel"`
	Frequency   int        `json:"frequency" yaml:"frequency"`
	Signal      int        `json:"signal_strength" yaml:"signal_strength"`
	Encryption  Encryption `json:"encryption" yaml:"encryption"`
	Vendor      string     `json:"vendor" yaml:"vendor"`
	FirstSeen   time.Time  `json:"first_seen" yaml:"first_seen"`
	LastSeen    time.Time  `json:"last_seen" yaml:"last_seen"`
	BeaconCount int        `json:"beacon_count" yaml:"beacon_count"`
	Clients     []string   `json:"clients" yaml:"clients"`
}

// Hidden reports whether the AP does not advertise its SSID.
func (a AccessPoint) Hidden() bool {
	return a.SSID == ""
}

// Clone returns a copy that shares no slices with the receiver.
func (a AccessPoint) Clone() AccessPoint {
	c := a
	if a.Clients != nil {
		c.Clients = make([]string, len(a.Clients))
		copy(c.Clients, a.Clients)
	}
	return c
}

// Client is the aggregated record for one station address.
type Client struct {
	MAC             string    `json:"mac_address" yaml:"mac_address"`
	Vendor          string    `json:"vendor" yaml:"vendor"`
	Signal          int       `json:"signal_strength" yaml:"signal_strength"`
	FirstSeen       time.Time `json:"first_seen" yaml:"first_seen"`
	LastSeen        time.Time `json:"last_seen" yaml:"last_seen"`
	ProbedSSIDs     []string  `json:"probed_ssids" yaml:"probed_ssids"`
	AssociatedBSSID string    `json:"associated_bssid,omitempty" yaml:"associated_bssid,omitempty"`
}

// Clone returns a copy that shares no slices with the receiver.
func (c Client) Clone() Client {
	out := c
	if c.ProbedSSIDs != nil {
		out.ProbedSSIDs = make([]string, len(c.ProbedSSIDs))
		copy(out.ProbedSSIDs, c.ProbedSSIDs)
	}
	return out
}
