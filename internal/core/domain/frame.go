package domain

import "time"

// FrameKind classifies a captured 802.11 frame.
type FrameKind int

const (
	FrameOther FrameKind = iota
	FrameBeacon
	FrameProbeRequest
	FrameProbeResponse
	FrameAuthentication
	FrameDeauthentication
	FrameData
	FrameMalformed
)

func (k FrameKind) String() string {
	switch k {
	case FrameBeacon:
		return "beacon"
	case FrameProbeRequest:
		return "probe_request"
	case FrameProbeResponse:
		return "probe_response"
	case FrameAuthentication:
		return "authentication"
	case FrameDeauthentication:
		return "deauthentication"
	case FrameData:
		return "data"
	case FrameMalformed:
		return "malformed"
	}
	return "other"
}

// Frame is a decoded observation, independent of the capture library.
// Addresses are already normalized. Signal is dBm, -100 when the radio
// header did not carry one.
type Frame struct {
	Kind        FrameKind
	Source      string
	Destination string
	BSSID       string
	SSID        string
	Channel     int
	Frequency   int
	Signal      int
	Encryption  Encryption
	Reason      uint16
	Timestamp   time.Time
}

// NoSignal is used when a frame carries no antenna signal field.
const NoSignal = -100

// DeauthEvent is a deauthentication frame kept for threat correlation.
type DeauthEvent struct {
	Source      string    `json:"source" yaml:"source"`
	Destination string    `json:"destination" yaml:"destination"`
	BSSID       string    `json:"bssid" yaml:"bssid"`
	Reason      uint16    `json:"reason" yaml:"reason"`
	Signal      int       `json:"signal_strength" yaml:"signal_strength"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
}
