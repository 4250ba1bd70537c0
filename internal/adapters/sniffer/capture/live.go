package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/gopacket/pcap"
	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"go.uber.org/zap"
)

const (
	DefaultSnaplen     = 65536
	defaultReadTimeout = 100 * time.Millisecond
)

// LiveConfig configures a capture handle on a monitor-mode interface.
type LiveConfig struct {
	Interface string
	Snaplen   int
	// Filter is an optional BPF expression.
	Filter string
	// RecordPath, when set, receives every raw packet as a pcap file.
	RecordPath string
}

// LiveSource reads frames from a monitor-mode interface via libpcap.
// It implements ports.FrameSource.
type LiveSource struct {
	cfg    LiveConfig
	handle *pcap.Handle
	pump   *pump
	logger *zap.Logger

	closeOnce sync.Once
}

// OpenLive opens the capture handle. The interface must already be in
// monitor mode.
func OpenLive(cfg LiveConfig, decoder FrameDecoder, logger *zap.Logger) (*LiveSource, error) {
	if cfg.Snaplen <= 0 {
		cfg.Snaplen = DefaultSnaplen
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("capture").With(zap.String("interface", cfg.Interface))

	handle, err := pcap.OpenLive(cfg.Interface, int32(cfg.Snaplen), true, defaultReadTimeout)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Interface, err)
	}
	if cfg.Filter != "" {
		if err := handle.SetBPFFilter(cfg.Filter); err != nil {
			handle.Close()
			return nil, fmt.Errorf("set filter %q: %w", cfg.Filter, err)
		}
	}

	var rec *Recorder
	if cfg.RecordPath != "" {
		rec, err = NewRecorder(cfg.RecordPath, uint32(cfg.Snaplen), handle.LinkType())
		if err != nil {
			handle.Close()
			return nil, err
		}
		logger.Info("recording capture", zap.String("path", cfg.RecordPath))
	}

	s := &LiveSource{cfg: cfg, handle: handle, logger: logger}
	s.pump = &pump{
		label:    cfg.Interface,
		reader:   handle,
		decoder:  decoder,
		recorder: rec,
		classify: classifyLive,
		now:      time.Now,
	}
	return s, nil
}

func classifyLive(err error) error {
	if errors.Is(err, pcap.NextErrorTimeoutExpired) {
		return errRetry
	}
	if errors.Is(err, io.EOF) || errors.Is(err, pcap.NextErrorNoMorePackets) {
		return fmt.Errorf("capture handle closed: %w", err)
	}
	return fmt.Errorf("read packet: %w", err)
}

func (s *LiveSource) Capture(ctx context.Context, window time.Duration, fn func(domain.Frame)) error {
	return s.pump.run(ctx, window, fn)
}

// Stats returns libpcap's received/dropped counters.
func (s *LiveSource) Stats() (*pcap.Stats, error) {
	return s.handle.Stats()
}

func (s *LiveSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if stats, serr := s.handle.Stats(); serr == nil {
			s.logger.Debug("capture closed",
				zap.Int("received", stats.PacketsReceived),
				zap.Int("dropped", stats.PacketsDropped))
		}
		s.handle.Close()
		if s.pump.recorder != nil {
			err = s.pump.recorder.Close()
		}
	})
	return err
}
