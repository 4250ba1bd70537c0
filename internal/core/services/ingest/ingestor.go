// Package ingest applies decoded frames to the discovery store.
package ingest

import (
	"sync/atomic"
	"time"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"github.com/lcalzada-xor/airsight/internal/telemetry"
	"go.uber.org/zap"
)

// Store is the subset of registry.DiscoveryStore the ingestor writes to.
type Store interface {
	UpsertBeacon(f domain.Frame)
	UpsertProbe(f domain.Frame)
	ObserveProbeResponse(f domain.Frame) bool
	Associate(clientMAC, bssid string, ts time.Time) bool
	RecordDeauth(f domain.Frame)
}

const numKinds = int(domain.FrameMalformed) + 1

// Ingestor routes frames by kind. It is safe for one writer goroutine and
// any number of Stats readers.
type Ingestor struct {
	store  Store
	iface  string
	logger *zap.Logger

	processed atomic.Int64
	malformed atomic.Int64
	byKind    [numKinds]atomic.Int64
}

func New(store Store, iface string, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		store:  store,
		iface:  iface,
		logger: logger.Named("ingest").With(zap.String("interface", iface)),
	}
}

// Ingest applies one frame. It never panics; a frame that fails to apply is
// counted as malformed.
func (i *Ingestor) Ingest(f domain.Frame) {
	i.processed.Add(1)

	if f.Kind == domain.FrameMalformed {
		i.dropMalformed()
		return
	}

	defer func() {
		if r := recover(); r != nil {
			i.logger.Warn("frame dropped", zap.Any("panic", r), zap.Stringer("kind", f.Kind))
			i.dropMalformed()
		}
	}()

	i.apply(f)
	i.count(f.Kind)
}

func (i *Ingestor) apply(f domain.Frame) {
	switch f.Kind {
	case domain.FrameBeacon:
		i.store.UpsertBeacon(f)
	case domain.FrameProbeRequest:
		i.store.UpsertProbe(f)
	case domain.FrameProbeResponse:
		i.store.ObserveProbeResponse(f)
	case domain.FrameAuthentication:
		// Either direction of the exchange links the pair.
		if !i.store.Associate(f.Source, f.BSSID, f.Timestamp) {
			i.store.Associate(f.Destination, f.BSSID, f.Timestamp)
		}
	case domain.FrameData:
		i.store.Associate(f.Source, f.BSSID, f.Timestamp)
	case domain.FrameDeauthentication:
		i.store.RecordDeauth(f)
	}
}

func (i *Ingestor) count(kind domain.FrameKind) {
	if k := int(kind); k >= 0 && k < numKinds {
		i.byKind[k].Add(1)
	}
	telemetry.FramesProcessed.WithLabelValues(i.iface, kind.String()).Inc()
}

func (i *Ingestor) dropMalformed() {
	i.malformed.Add(1)
	i.byKind[domain.FrameMalformed].Add(1)
	telemetry.FramesMalformed.WithLabelValues(i.iface).Inc()
}

// Stats returns the counters since the ingestor was created.
func (i *Ingestor) Stats() domain.FrameStats {
	stats := domain.FrameStats{
		Processed: i.processed.Load(),
		Malformed: i.malformed.Load(),
		ByKind:    make(map[string]int64),
	}
	for k := 0; k < numKinds; k++ {
		if n := i.byKind[k].Load(); n > 0 {
			stats.ByKind[domain.FrameKind(k).String()] = n
		}
	}
	return stats
}
