package persistence

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"github.com/lcalzada-xor/airsight/internal/core/ports"
	"go.uber.org/zap"
)

// DefaultInterval is how often a running session is written out.
const DefaultInterval = 5 * time.Second

// SnapshotWriter is the part of ports.Storage the manager writes through.
type SnapshotWriter interface {
	SaveAccessPoints(aps []domain.AccessPoint) error
	SaveClients(clients []domain.Client) error
}

// PersistenceManager periodically copies a discovery snapshot into storage,
// and once more when the session ends.
type PersistenceManager struct {
	storage  SnapshotWriter
	interval time.Duration
	logger   *zap.Logger

	mu      sync.RWMutex
	enabled bool
	last    mark
}

// mark identifies a snapshot's content closely enough to skip idle flushes.
type mark struct {
	aps, clients int
	latest       time.Time
}

func markOf(snap domain.Snapshot) mark {
	m := mark{aps: len(snap.AccessPoints), clients: len(snap.Clients)}
	for _, ap := range snap.AccessPoints {
		if ap.LastSeen.After(m.latest) {
			m.latest = ap.LastSeen
		}
	}
	for _, c := range snap.Clients {
		if c.LastSeen.After(m.latest) {
			m.latest = c.LastSeen
		}
	}
	return m
}

// NewPersistenceManager creates a new manager. A non-positive interval
// falls back to DefaultInterval.
func NewPersistenceManager(storage SnapshotWriter, interval time.Duration, logger *zap.Logger) *PersistenceManager {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersistenceManager{
		storage:  storage,
		interval: interval,
		logger:   logger.Named("persistence"),
		enabled:  true, // Enabled by default
	}
}

// IsEnabled returns the current persistence status.
func (p *PersistenceManager) IsEnabled() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.enabled
}

// SetEnabled toggles the persistence logic.
func (p *PersistenceManager) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = enabled
}

// Start flushes source on every tick until ctx is done, then flushes one
// last time. The returned channel is closed after that final flush.
func (p *PersistenceManager) Start(ctx context.Context, source ports.SnapshotProvider) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(p.interval)

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				if err := p.Flush(source); err != nil {
					p.logger.Error("final flush failed", zap.Error(err))
				}
				return
			case <-ticker.C:
				if err := p.Flush(source); err != nil {
					p.logger.Warn("flush failed", zap.Error(err))
				}
			}
		}
	}()
	return done
}

// Flush writes the current snapshot unless persistence is disabled or
// nothing changed since the previous successful flush.
func (p *PersistenceManager) Flush(source ports.SnapshotProvider) error {
	if !p.IsEnabled() || p.storage == nil {
		return nil
	}

	snap := source.Snapshot()
	m := markOf(snap)

	p.mu.RLock()
	unchanged := m == p.last
	p.mu.RUnlock()
	if unchanged {
		return nil
	}

	err := errors.Join(
		p.storage.SaveAccessPoints(snap.AccessPoints),
		p.storage.SaveClients(snap.Clients),
	)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.last = m
	p.mu.Unlock()
	p.logger.Debug("snapshot persisted", zap.Int("access_points", m.aps), zap.Int("clients", m.clients))
	return nil
}
