package parser

import (
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestDecoder() *Decoder {
	return &Decoder{now: func() time.Time { return fixedNow }}
}

func TestDecode_BeaconWithRadioTap(t *testing.T) {
	bssid := hw("AA:BB:CC:DD:EE:01")
	pkt := NewPacketBuilder().
		WithRadioTap(2437, -42).
		AddMgmtBeacon(bssid, bssid, "CorpNet", true).
		AddDSParam(6).
		AddRSNIE(0x02).
		Build()

	f := newTestDecoder().Decode(pkt)

	assert.Equal(t, domain.FrameBeacon, f.Kind)
	assert.Equal(t, "aa:bb:cc:dd:ee:01", f.BSSID)
	assert.Equal(t, "CorpNet", f.SSID)
	assert.Equal(t, 6, f.Channel)
	assert.Equal(t, 2437, f.Frequency)
	assert.Equal(t, -42, f.Signal)
	assert.Equal(t, domain.EncryptionWPA2, f.Encryption)
	assert.Equal(t, fixedNow, f.Timestamp)
}

func TestDecode_BeaconChannelFromRadioTap(t *testing.T) {
	bssid := hw("AA:BB:CC:DD:EE:02")
	pkt := NewPacketBuilder().
		WithRadioTap(5180, -70).
		AddMgmtBeacon(bssid, bssid, "", false).
		Build()

	f := newTestDecoder().Decode(pkt)

	assert.Equal(t, domain.FrameBeacon, f.Kind)
	assert.Equal(t, "", f.SSID)
	assert.Equal(t, 36, f.Channel)
	assert.Equal(t, -70, f.Signal)
	assert.Equal(t, domain.EncryptionOpen, f.Encryption)
}

func TestDecode_BeaconWithoutRadioTap(t *testing.T) {
	bssid := hw("AA:BB:CC:DD:EE:03")
	pkt := NewPacketBuilder().AddMgmtBeacon(bssid, bssid, "Legacy", true).Build()

	f := newTestDecoder().Decode(pkt)

	assert.Equal(t, domain.FrameBeacon, f.Kind)
	assert.Equal(t, domain.NoSignal, f.Signal)
	assert.Equal(t, 0, f.Channel)
	assert.Equal(t, domain.EncryptionWEP, f.Encryption)
}

func TestDecode_WPA3Beacon(t *testing.T) {
	bssid := hw("AA:BB:CC:DD:EE:04")
	pkt := NewPacketBuilder().AddMgmtBeacon(bssid, bssid, "Modern", true).AddRSNIE(0x08).Build()

	assert.Equal(t, domain.EncryptionWPA3, newTestDecoder().Decode(pkt).Encryption)
}

func TestDecode_ProbeRequest(t *testing.T) {
	pkt := NewPacketBuilder().
		WithRadioTap(2412, -55).
		AddMgmtProbeReq(hw("11:22:33:44:55:66"), "HomeWiFi").
		Build()

	f := newTestDecoder().Decode(pkt)

	assert.Equal(t, domain.FrameProbeRequest, f.Kind)
	assert.Equal(t, "11:22:33:44:55:66", f.Source)
	assert.Equal(t, "HomeWiFi", f.SSID)
	assert.Equal(t, -55, f.Signal)
}

func TestDecode_WildcardProbeRequest(t *testing.T) {
	pkt := NewPacketBuilder().AddMgmtProbeReq(hw("11:22:33:44:55:66"), "").Build()

	f := newTestDecoder().Decode(pkt)

	assert.Equal(t, domain.FrameProbeRequest, f.Kind)
	assert.Empty(t, f.SSID)
}

func TestDecode_ProbeResponse(t *testing.T) {
	bssid := hw("AA:BB:CC:DD:EE:05")
	pkt := NewPacketBuilder().AddMgmtProbeResp(hw("11:22:33:44:55:66"), bssid, bssid, "Hidden").Build()

	f := newTestDecoder().Decode(pkt)

	assert.Equal(t, domain.FrameProbeResponse, f.Kind)
	assert.Equal(t, "aa:bb:cc:dd:ee:05", f.BSSID)
	assert.Equal(t, "Hidden", f.SSID)
}

func TestDecode_Authentication(t *testing.T) {
	bssid := hw("AA:BB:CC:DD:EE:06")
	pkt := NewPacketBuilder().AddMgmtAuth(hw("11:22:33:44:55:66"), bssid).Build()

	f := newTestDecoder().Decode(pkt)

	assert.Equal(t, domain.FrameAuthentication, f.Kind)
	assert.Equal(t, "11:22:33:44:55:66", f.Source)
	assert.Equal(t, "aa:bb:cc:dd:ee:06", f.BSSID)
}

func TestDecode_Deauthentication(t *testing.T) {
	bssid := hw("AA:BB:CC:DD:EE:07")
	pkt := NewPacketBuilder().AddMgmtDeauth(broadcast, bssid, bssid, 7).Build()

	f := newTestDecoder().Decode(pkt)

	assert.Equal(t, domain.FrameDeauthentication, f.Kind)
	assert.Equal(t, "ff:ff:ff:ff:ff:ff", f.Destination)
	assert.Equal(t, "aa:bb:cc:dd:ee:07", f.BSSID)
	assert.Equal(t, uint16(7), f.Reason)
}

func TestDecode_DataFrames(t *testing.T) {
	sta := hw("11:22:33:44:55:66")
	ap := hw("AA:BB:CC:DD:EE:08")

	up := newTestDecoder().Decode(NewPacketBuilder().AddDataFrame(true, false, ap, sta, ap, []byte{0x01}).Build())
	assert.Equal(t, domain.FrameData, up.Kind)
	assert.Equal(t, "11:22:33:44:55:66", up.Source)
	assert.Equal(t, "aa:bb:cc:dd:ee:08", up.BSSID)

	down := newTestDecoder().Decode(NewPacketBuilder().AddDataFrame(false, true, sta, ap, ap, []byte{0x01}).Build())
	assert.Equal(t, domain.FrameData, down.Kind)
	assert.Equal(t, "11:22:33:44:55:66", down.Source)

	mcast := newTestDecoder().Decode(NewPacketBuilder().AddDataFrame(false, true, broadcast, ap, ap, []byte{0x01}).Build())
	assert.Equal(t, domain.FrameOther, mcast.Kind)
}

func TestDecode_Malformed(t *testing.T) {
	d := newTestDecoder()

	short := gopacket.NewPacket([]byte{0x80, 0x00, 0x00}, layers.LayerTypeDot11, gopacket.Default)
	assert.Equal(t, domain.FrameMalformed, d.Decode(short).Kind)

	bssid := hw("AA:BB:CC:DD:EE:09")
	truncated := NewPacketBuilder().AddRawHeader(0x80, broadcast, bssid, bssid).Build()
	assert.Equal(t, domain.FrameMalformed, d.Decode(truncated).Kind)

	ethernet := gopacket.NewPacket(make([]byte, 64), layers.LayerTypeEthernet, gopacket.Default)
	assert.Equal(t, domain.FrameMalformed, d.Decode(ethernet).Kind)
}
