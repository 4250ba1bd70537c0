package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/lcalzada-xor/airsight/internal/adapters/sniffer/parser"
	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"github.com/lcalzada-xor/airsight/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawBeacon builds an unencrypted beacon without radiotap, FCS included.
func rawBeacon(bssid byte, ssid string) []byte {
	b := []byte{0x80, 0x00, 0x00, 0x00}
	b = append(b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
	b = append(b, 0x00, 0x11, 0x22, 0x33, 0x44, bssid)
	b = append(b, 0x00, 0x11, 0x22, 0x33, 0x44, bssid)
	b = append(b, 0x00, 0x00)
	b = append(b, make([]byte, 8)...)
	b = append(b, 0x64, 0x00, 0x01, 0x00)
	b = append(b, 0x00, byte(len(ssid)))
	b = append(b, ssid...)
	return append(b, 0x00, 0x00, 0x00, 0x00)
}

func writeCapture(t *testing.T, frames ...[]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "replay.pcap")
	rec, err := NewRecorder(path, DefaultSnaplen, layers.LinkTypeIEEE802_11)
	require.NoError(t, err)

	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, f := range frames {
		ci := gopacket.CaptureInfo{Timestamp: ts.Add(time.Duration(i) * time.Second)}
		require.NoError(t, rec.Write(ci, f))
	}
	require.NoError(t, rec.Close())
	return path
}

func TestFileSource_ReplaysUntilExhausted(t *testing.T) {
	path := writeCapture(t, rawBeacon(0x01, "alpha"), rawBeacon(0x02, "beta"), []byte{0x80})

	src, err := OpenFile(path, parser.NewDecoder())
	require.NoError(t, err)
	defer src.Close()

	var frames []domain.Frame
	err = src.Capture(context.Background(), time.Minute, func(f domain.Frame) {
		frames = append(frames, f)
	})
	assert.ErrorIs(t, err, ports.ErrSourceExhausted)

	require.Len(t, frames, 3)
	assert.Equal(t, domain.FrameBeacon, frames[0].Kind)
	assert.Equal(t, "00:11:22:33:44:01", frames[0].BSSID)
	assert.Equal(t, "alpha", frames[0].SSID)
	assert.Equal(t, domain.EncryptionOpen, frames[0].Encryption)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 1, 0, time.UTC), frames[1].Timestamp.UTC())
	assert.Equal(t, domain.FrameMalformed, frames[2].Kind)

	err = src.Capture(context.Background(), time.Minute, func(domain.Frame) {})
	assert.ErrorIs(t, err, ports.ErrSourceExhausted)
}

func TestFileSource_CancelledContext(t *testing.T) {
	path := writeCapture(t, rawBeacon(0x01, "alpha"))
	src, err := OpenFile(path, parser.NewDecoder())
	require.NoError(t, err)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	require.NoError(t, src.Capture(ctx, time.Minute, func(domain.Frame) { called = true }))
	assert.False(t, called)
}

func TestOpenFile_Errors(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing.pcap"), parser.NewDecoder())
	assert.Error(t, err)

	garbage := filepath.Join(t.TempDir(), "garbage.pcap")
	require.NoError(t, os.WriteFile(garbage, []byte("not a pcap"), 0o644))
	_, err = OpenFile(garbage, parser.NewDecoder())
	assert.Error(t, err)
}

func TestRecorder_WriteAfterClose(t *testing.T) {
	rec, err := NewRecorder(filepath.Join(t.TempDir(), "out.pcap"), DefaultSnaplen, layers.LinkTypeIEEE80211Radio)
	require.NoError(t, err)
	require.NoError(t, rec.Close())
	require.NoError(t, rec.Close())

	assert.ErrorIs(t, rec.Write(gopacket.CaptureInfo{Timestamp: time.Now()}, []byte{1}), os.ErrClosed)
}

type stallReader struct{ reads int }

func (s *stallReader) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	s.reads++
	time.Sleep(time.Millisecond)
	return nil, gopacket.CaptureInfo{}, errRetry
}

func (s *stallReader) LinkType() layers.LinkType { return layers.LinkTypeIEEE802_11 }

func TestPump_WindowElapses(t *testing.T) {
	r := &stallReader{}
	p := &pump{
		label:    "test",
		reader:   r,
		decoder:  parser.NewDecoder(),
		classify: func(err error) error { return err },
		now:      time.Now,
	}

	start := time.Now()
	require.NoError(t, p.run(context.Background(), 30*time.Millisecond, func(domain.Frame) {}))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Positive(t, r.reads)
}
