package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"github.com/lcalzada-xor/airsight/internal/core/ports"
	"github.com/lcalzada-xor/airsight/internal/telemetry"
)

// FrameDecoder turns a raw packet into a domain frame.
type FrameDecoder interface {
	Decode(packet gopacket.Packet) domain.Frame
}

// packetReader is satisfied by *pcap.Handle and *pcapgo.Reader.
type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// errRetry marks reader errors that only mean "nothing yet".
var errRetry = errors.New("retry")

// pump reads packets from r until the window closes, ctx is done or the
// reader fails. classify maps reader errors: errRetry keeps reading, nil
// stops quietly, anything else is returned.
type pump struct {
	label    string
	reader   packetReader
	decoder  FrameDecoder
	recorder *Recorder
	classify func(error) error
	now      func() time.Time
}

func (p *pump) run(ctx context.Context, window time.Duration, fn func(domain.Frame)) error {
	deadline := p.now().Add(window)
	captured := telemetry.FramesCaptured.WithLabelValues(p.label)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if window > 0 && !p.now().Before(deadline) {
			return nil
		}

		data, ci, err := p.reader.ReadPacketData()
		if err != nil {
			switch cerr := p.classify(err); {
			case errors.Is(cerr, errRetry):
				continue
			case cerr == nil:
				return nil
			default:
				return cerr
			}
		}
		captured.Inc()

		if p.recorder != nil {
			if err := p.recorder.Write(ci, data); err != nil {
				return fmt.Errorf("record packet: %w", err)
			}
		}

		packet := gopacket.NewPacket(data, p.reader.LinkType(), gopacket.DecodeOptions{Lazy: true, NoCopy: true})
		packet.Metadata().CaptureInfo = ci
		fn(p.decoder.Decode(packet))
	}
}

func exhaustedOnEOF(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ports.ErrSourceExhausted
	}
	return fmt.Errorf("read packet: %w", err)
}
