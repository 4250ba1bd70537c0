package hopping

import (
	"context"
	"sync"
	"time"

	"github.com/lcalzada-xor/airsight/internal/core/ports"
	"github.com/lcalzada-xor/airsight/internal/telemetry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrNoChannels is returned by Hop when the channel plan is empty.
var ErrNoChannels = ports.ErrNoChannels

var _ ports.ChannelScheduler = (*ChannelHopper)(nil)

// ChannelHopper walks a channel plan round-robin. It does not run its own
// goroutine: the scan worker calls Hop before every dwell window.
type ChannelHopper struct {
	iface    string
	switcher ChannelSwitcher
	dwell    time.Duration
	logger   *zap.Logger

	mu           sync.RWMutex // Protects channels, currentIndex and current
	channels     []int
	currentIndex int
	current      int

	errorCount int
	failureLog rate.Sometimes
}

// NewHopper creates a ChannelHopper. A non-positive dwell falls back to 500ms.
func NewHopper(iface string, channels []int, dwell time.Duration, switcher ChannelSwitcher, logger *zap.Logger) *ChannelHopper {
	if dwell <= 0 {
		dwell = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChannelHopper{
		iface:      iface,
		switcher:   switcher,
		dwell:      dwell,
		logger:     logger.Named("hopper"),
		channels:   append([]int(nil), channels...),
		failureLog: rate.Sometimes{First: 1, Every: 10},
	}
}

// Dwell is how long the worker captures after each hop.
func (h *ChannelHopper) Dwell() time.Duration {
	return h.dwell
}

// Channels returns a copy of the current channel list.
func (h *ChannelHopper) Channels() []int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]int(nil), h.channels...)
}

// Current is the last channel successfully applied, 0 before the first hop.
func (h *ChannelHopper) Current() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// next returns the channel at the cursor and advances it with wrap-around.
func (h *ChannelHopper) next() (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.channels) == 0 {
		return 0, false
	}
	if h.currentIndex >= len(h.channels) {
		h.currentIndex = 0
	}
	ch := h.channels[h.currentIndex]
	h.currentIndex = (h.currentIndex + 1) % len(h.channels)
	return ch, true
}

// Hop tunes the adapter to the next channel in the plan. A switch failure is
// returned together with the channel that was attempted; the cursor still
// advances so the following hop tries the next channel.
func (h *ChannelHopper) Hop(ctx context.Context) (int, error) {
	ch, ok := h.next()
	if !ok {
		return 0, ErrNoChannels
	}

	if err := h.switcher.SetChannel(ctx, ch); err != nil {
		h.errorCount++
		telemetry.ChannelHops.WithLabelValues(h.iface, "error").Inc()
		h.failureLog.Do(func() {
			h.logger.Warn("failed to set channel",
				zap.String("interface", h.iface),
				zap.Int("channel", ch),
				zap.Int("consecutive_errors", h.errorCount),
				zap.Error(err))
		})
		return ch, err
	}

	if h.errorCount > 0 {
		h.logger.Info("hopper recovered", zap.String("interface", h.iface), zap.Int("after_errors", h.errorCount))
		h.errorCount = 0
	}
	telemetry.ChannelHops.WithLabelValues(h.iface, "ok").Inc()

	h.mu.Lock()
	h.current = ch
	h.mu.Unlock()
	return ch, nil
}
