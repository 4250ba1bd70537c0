package registry

import (
	"sync"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"github.com/lcalzada-xor/airsight/internal/telemetry"
)

// Observer is notified when the store creates a record. Callbacks run
// synchronously on the ingest path and must not call back into the store's
// mutating methods.
type Observer interface {
	OnAccessPointAdded(ap domain.AccessPoint)
	OnClientAdded(client domain.Client)
}

// subject fans events out to registered observers.
type subject struct {
	mu        sync.RWMutex
	observers []Observer
}

func (s *subject) add(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *subject) accessPointAdded(ap domain.AccessPoint) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.observers {
		o.OnAccessPointAdded(ap)
	}
}

func (s *subject) clientAdded(c domain.Client) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.observers {
		o.OnClientAdded(c)
	}
}

// MetricsObserver counts discovered records in Prometheus.
type MetricsObserver struct{}

func (MetricsObserver) OnAccessPointAdded(domain.AccessPoint) {
	telemetry.DiscoveredRecords.WithLabelValues("access_point").Inc()
}

func (MetricsObserver) OnClientAdded(domain.Client) {
	telemetry.DiscoveredRecords.WithLabelValues("client").Inc()
}
