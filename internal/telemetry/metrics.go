package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// FramesCaptured counts every packet read from a frame source.
	FramesCaptured = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "airsight",
			Name:      "frames_captured_total",
			Help:      "Total number of frames read from capture sources",
		},
		[]string{"interface"},
	)

	// FramesProcessed counts frames applied to the discovery store, by kind.
	FramesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "airsight",
			Name:      "frames_processed_total",
			Help:      "Total number of frames processed by the ingestor",
		},
		[]string{"interface", "kind"},
	)

	// FramesMalformed counts frames dropped because they could not be decoded.
	FramesMalformed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "airsight",
			Name:      "frames_malformed_total",
			Help:      "Total number of malformed frames dropped",
		},
		[]string{"interface"},
	)

	// ChannelHops counts channel switches by result (ok, error).
	ChannelHops = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "airsight",
			Name:      "channel_hops_total",
			Help:      "Total number of channel switch attempts",
		},
		[]string{"interface", "result"},
	)

	// DiscoveredRecords counts newly created access point and client records.
	DiscoveredRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "airsight",
			Name:      "discovered_records_total",
			Help:      "Total number of access points and clients discovered",
		},
		[]string{"type"},
	)

	// ActiveScans is the number of running scan sessions.
	ActiveScans = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "airsight",
			Name:      "active_scans",
			Help:      "Number of scan sessions currently running",
		},
	)

	// AnalysisDuration observes comprehensive analysis wall-clock time.
	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "airsight",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of comprehensive network analysis",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// Safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		// Errors are ignored so a second registry user does not panic.
		prometheus.DefaultRegisterer.Register(FramesCaptured)
		prometheus.DefaultRegisterer.Register(FramesProcessed)
		prometheus.DefaultRegisterer.Register(FramesMalformed)
		prometheus.DefaultRegisterer.Register(ChannelHops)
		prometheus.DefaultRegisterer.Register(DiscoveredRecords)
		prometheus.DefaultRegisterer.Register(ActiveScans)
		prometheus.DefaultRegisterer.Register(AnalysisDuration)
	})
}
