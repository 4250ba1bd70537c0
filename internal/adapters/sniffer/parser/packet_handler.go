package parser

import (
	"encoding/binary"
	"net"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/lcalzada-xor/airsight/internal/adapters/sniffer/ie"
	"github.com/lcalzada-xor/airsight/internal/core/domain"
)

const (
	// timestamp(8) + beacon interval(2) + capability info(2)
	beaconFixedLen = 12
	capPrivacy     = 0x0010
)

// Decoder turns captured packets into domain frames.
type Decoder struct {
	now func() time.Time
}

// NewDecoder creates a Decoder using the wall clock for packets without
// capture metadata.
func NewDecoder() *Decoder {
	return &Decoder{now: time.Now}
}

// Decode classifies one packet. It never panics: anything that cannot be
// interpreted as an 802.11 frame comes back as domain.FrameMalformed.
func (d *Decoder) Decode(packet gopacket.Packet) (frame domain.Frame) {
	defer func() {
		if r := recover(); r != nil {
			frame = domain.Frame{Kind: domain.FrameMalformed, Signal: domain.NoSignal, Timestamp: d.now()}
		}
	}()

	frame = domain.Frame{Kind: domain.FrameOther, Signal: domain.NoSignal, Timestamp: d.timestamp(packet)}
	extractRadioInfo(packet, &frame)

	dot11Layer := packet.Layer(layers.LayerTypeDot11)
	if dot11Layer == nil {
		frame.Kind = domain.FrameMalformed
		return frame
	}
	dot11, ok := dot11Layer.(*layers.Dot11)
	if !ok {
		frame.Kind = domain.FrameMalformed
		return frame
	}

	body := dot11.LayerPayload()

	switch dot11.Type {
	case layers.Dot11TypeMgmtBeacon:
		return decodeBeaconLike(dot11, body, domain.FrameBeacon, frame)
	case layers.Dot11TypeMgmtProbeResp:
		return decodeBeaconLike(dot11, body, domain.FrameProbeResponse, frame)
	case layers.Dot11TypeMgmtProbeReq:
		frame.Kind = domain.FrameProbeRequest
		frame.Source = mac(dot11.Address2)
		frame.Destination = mac(dot11.Address1)
		frame.BSSID = mac(dot11.Address3)
		if ssid := ie.ParseSSID(body); !ssid.Hidden {
			frame.SSID = ssid.Value
		}
		return frame
	case layers.Dot11TypeMgmtAuthentication:
		frame.Kind = domain.FrameAuthentication
		frame.Source = mac(dot11.Address2)
		frame.Destination = mac(dot11.Address1)
		frame.BSSID = mac(dot11.Address3)
		return frame
	case layers.Dot11TypeMgmtDeauthentication:
		if len(body) < 2 {
			frame.Kind = domain.FrameMalformed
			return frame
		}
		frame.Kind = domain.FrameDeauthentication
		frame.Source = mac(dot11.Address2)
		frame.Destination = mac(dot11.Address1)
		frame.BSSID = mac(dot11.Address3)
		frame.Reason = binary.LittleEndian.Uint16(body[0:2])
		return frame
	}

	if dot11.Type.MainType() == layers.Dot11TypeData {
		return decodeData(dot11, frame)
	}
	return frame
}

func (d *Decoder) timestamp(packet gopacket.Packet) time.Time {
	if md := packet.Metadata(); md != nil && !md.Timestamp.IsZero() {
		return md.Timestamp
	}
	return d.now()
}

// extractRadioInfo reads signal and frequency from the RadioTap header.
// Frames captured without one keep NoSignal and channel 0.
func extractRadioInfo(packet gopacket.Packet, frame *domain.Frame) {
	layer := packet.Layer(layers.LayerTypeRadioTap)
	if layer == nil {
		return
	}
	radiotap, ok := layer.(*layers.RadioTap)
	if !ok {
		return
	}
	if radiotap.Present.DBMAntennaSignal() {
		frame.Signal = int(radiotap.DBMAntennaSignal)
	}
	if radiotap.Present.Channel() {
		frame.Frequency = int(radiotap.ChannelFrequency)
		frame.Channel = domain.ChannelForFrequency(frame.Frequency)
	}
}

func decodeBeaconLike(dot11 *layers.Dot11, body []byte, kind domain.FrameKind, frame domain.Frame) domain.Frame {
	if len(body) < beaconFixedLen {
		frame.Kind = domain.FrameMalformed
		return frame
	}
	capability := binary.LittleEndian.Uint16(body[10:12])
	ies := body[beaconFixedLen:]

	frame.Kind = kind
	frame.Source = mac(dot11.Address2)
	frame.Destination = mac(dot11.Address1)
	frame.BSSID = mac(dot11.Address3)

	if ssid := ie.ParseSSID(ies); !ssid.Hidden {
		frame.SSID = ssid.Value
	}
	// DS parameter set is authoritative; radiotap reports the channel we were
	// tuned to, which can differ for adjacent 2.4 GHz channels.
	if ch, err := ie.ParseChannel(ies); err == nil && ch > 0 {
		frame.Channel = ch
		frame.Frequency = domain.FrequencyForChannel(ch)
	}
	frame.Encryption = ie.ClassifyEncryption(ies, capability&capPrivacy != 0)
	return frame
}

// decodeData attributes a data frame to a (client, BSSID) pair using the
// distribution-system bits. WDS and IBSS frames stay FrameOther.
func decodeData(dot11 *layers.Dot11, frame domain.Frame) domain.Frame {
	toDS, fromDS := dot11.Flags.ToDS(), dot11.Flags.FromDS()
	switch {
	case toDS && !fromDS:
		frame.Source = mac(dot11.Address2)
		frame.BSSID = mac(dot11.Address1)
	case !toDS && fromDS:
		if len(dot11.Address1) > 0 && dot11.Address1[0]&0x01 == 1 {
			return frame
		}
		frame.Source = mac(dot11.Address1)
		frame.BSSID = mac(dot11.Address2)
	default:
		return frame
	}
	frame.Kind = domain.FrameData
	return frame
}

// mac renders an address in the lowercase colon form used as record key.
func mac(addr net.HardwareAddr) string {
	if len(addr) != 6 {
		return ""
	}
	return addr.String()
}
