package parser

import (
	"encoding/binary"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

var broadcast = net.HardwareAddr{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// PacketBuilder helps construct valid 802.11 packets for testing using raw bytes
type PacketBuilder struct {
	radiotap []byte
	data     []byte
}

func NewPacketBuilder() *PacketBuilder {
	return &PacketBuilder{}
}

func hw(s string) net.HardwareAddr {
	addr, err := net.ParseMAC(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// WithRadioTap prepends a radiotap header carrying flags, channel and
// antenna signal.
func (pb *PacketBuilder) WithRadioTap(freq uint16, signal int8) *PacketBuilder {
	h := []byte{
		0x00, 0x00, // version, pad
		0x0f, 0x00, // length 15
		0x2a, 0x00, 0x00, 0x00, // present: flags, channel, dBm antenna signal
		0x10,       // flags: FCS at end
		0x00,       // align channel to 2 bytes
		0x00, 0x00, // channel frequency
		0xa0, 0x00, // channel flags
		byte(signal),
	}
	binary.LittleEndian.PutUint16(h[10:12], freq)
	pb.radiotap = h
	return pb
}

func (pb *PacketBuilder) AddMgmtBeacon(sa, bssid net.HardwareAddr, ssid string, privacy bool) *PacketBuilder {
	return pb.addBeaconLike(0x80, broadcast, sa, bssid, ssid, privacy)
}

func (pb *PacketBuilder) AddMgmtProbeResp(da, sa, bssid net.HardwareAddr, ssid string) *PacketBuilder {
	return pb.addBeaconLike(0x50, da, sa, bssid, ssid, false)
}

func (pb *PacketBuilder) addBeaconLike(fc byte, da, sa, bssid net.HardwareAddr, ssid string, privacy bool) *PacketBuilder {
	pb.data = append(pb.data, buildDot11Header(fc, da, sa, bssid)...)

	caps := byte(0x01) // ESS
	if privacy {
		caps |= 0x10
	}
	fixed := []byte{
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // Timestamp
		0x64, 0x00, // Interval 100
		caps, 0x00,
	}
	pb.data = append(pb.data, fixed...)

	pb.AddIE(layers.Dot11InformationElementIDSSID, []byte(ssid))
	return pb
}

func (pb *PacketBuilder) AddMgmtProbeReq(sa net.HardwareAddr, ssid string) *PacketBuilder {
	pb.data = append(pb.data, buildDot11Header(0x40, broadcast, sa, broadcast)...)
	pb.AddIE(layers.Dot11InformationElementIDSSID, []byte(ssid))
	return pb
}

func (pb *PacketBuilder) AddMgmtAuth(sa, bssid net.HardwareAddr) *PacketBuilder {
	pb.data = append(pb.data, buildDot11Header(0xB0, bssid, sa, bssid)...)
	// algorithm open, sequence 1, status 0
	pb.data = append(pb.data, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00)
	return pb
}

func (pb *PacketBuilder) AddMgmtDeauth(da, sa, bssid net.HardwareAddr, reason uint16) *PacketBuilder {
	pb.data = append(pb.data, buildDot11Header(0xC0, da, sa, bssid)...)
	pb.data = binary.LittleEndian.AppendUint16(pb.data, reason)
	return pb
}

func (pb *PacketBuilder) AddDataFrame(toDS, fromDS bool, addr1, addr2, addr3 net.HardwareAddr, payload []byte) *PacketBuilder {
	var flags byte
	if toDS {
		flags |= 0x01
	}
	if fromDS {
		flags |= 0x02
	}

	header := buildDot11Header(0x08, addr1, addr2, addr3)
	header[1] = flags

	pb.data = append(pb.data, header...)
	pb.data = append(pb.data, payload...)
	return pb
}

// AddRawHeader appends only a management header, producing a frame with no body.
func (pb *PacketBuilder) AddRawHeader(fc byte, a1, a2, a3 net.HardwareAddr) *PacketBuilder {
	pb.data = append(pb.data, buildDot11Header(fc, a1, a2, a3)...)
	return pb
}

func (pb *PacketBuilder) AddIE(id layers.Dot11InformationElementID, data []byte) *PacketBuilder {
	ie := []byte{byte(id), byte(len(data))}
	ie = append(ie, data...)
	pb.data = append(pb.data, ie...)
	return pb
}

func (pb *PacketBuilder) AddDSParam(channel byte) *PacketBuilder {
	return pb.AddIE(layers.Dot11InformationElementIDDSSet, []byte{channel})
}

// AddRSNIE adds an RSN element with the given AKM suite type (2 = PSK, 8 = SAE).
func (pb *PacketBuilder) AddRSNIE(akm byte) *PacketBuilder {
	data := []byte{
		0x01, 0x00, // Version
		0x00, 0x0F, 0xAC, 0x04, // Group Cipher
		0x01, 0x00, // Pairwise Count
		0x00, 0x0F, 0xAC, 0x04, // Pairwise
		0x01, 0x00, // Auth Count
		0x00, 0x0F, 0xAC, akm,
		0x00, 0x00, // Caps
	}
	return pb.AddIE(layers.Dot11InformationElementID(48), data)
}

func (pb *PacketBuilder) Build() gopacket.Packet {
	// Add FCS (Frame Check Sequence) - 4 bytes dummy
	frame := append(pb.data, 0xDE, 0xAD, 0xBE, 0xEF)
	if pb.radiotap != nil {
		return gopacket.NewPacket(append(append([]byte{}, pb.radiotap...), frame...), layers.LayerTypeRadioTap, gopacket.Default)
	}
	return gopacket.NewPacket(frame, layers.LayerTypeDot11, gopacket.Default)
}

// buildDot11Header builds a basic 24 byte MGMT/DATA header.
func buildDot11Header(fcType byte, a1, a2, a3 net.HardwareAddr) []byte {
	h := make([]byte, 24)
	h[0] = fcType
	copy(h[4:], a1)
	copy(h[10:], a2)
	copy(h[16:], a3)
	return h
}
