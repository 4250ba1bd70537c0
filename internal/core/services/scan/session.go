package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"github.com/lcalzada-xor/airsight/internal/core/ports"
	"github.com/lcalzada-xor/airsight/internal/core/services/ingest"
	"github.com/lcalzada-xor/airsight/internal/core/services/registry"
	"github.com/lcalzada-xor/airsight/internal/telemetry"
	"go.uber.org/zap"
)

// Session is one capture run on one interface. Its counters and discovery
// data stay readable after it stops, until the next Start on the interface.
type Session struct {
	id       string
	req      StartRequest
	cfg      Config
	recorder ports.SessionRecorder
	logger   *zap.Logger
	now      func() time.Time

	ctrl      ports.InterfaceController
	source    ports.FrameSource
	scheduler ports.ChannelScheduler
	store     *registry.DiscoveryStore
	ingestor  *ingest.Ingestor

	state      AtomicState
	ctx        context.Context
	cancel     context.CancelFunc
	workerDone chan struct{}
	finished   chan struct{}
	stopOnce   sync.Once

	mu        sync.RWMutex // Protects the fields below
	timer     *time.Timer
	mode      domain.InterfaceMode
	startedAt time.Time
	stoppedAt time.Time
	status    domain.ScanStatus
	workerErr error
}

func newSession(id string, req StartRequest, store *registry.DiscoveryStore, cfg Config, recorder ports.SessionRecorder, logger *zap.Logger, now func() time.Time) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:         id,
		req:        req,
		cfg:        cfg,
		recorder:   recorder,
		logger:     logger.With(zap.String("session", id), zap.String("interface", req.Interface)),
		now:        now,
		store:      store,
		ctx:        ctx,
		cancel:     cancel,
		workerDone: make(chan struct{}),
		finished:   make(chan struct{}),
		mode:       domain.ModeUnknown,
	}
}

// active reports whether the session still holds its interface.
func (s *Session) active() bool {
	return s.state.Get() != StateStopped
}

// launch starts the worker and the optional duration timer.
func (s *Session) launch() {
	s.mu.Lock()
	s.startedAt = s.now()
	s.status = domain.ScanRunning
	if s.req.Duration > 0 {
		s.timer = time.AfterFunc(s.req.Duration, func() {
			s.logger.Info("scan duration elapsed", zap.Duration("duration", s.req.Duration))
			_ = s.Stop(context.Background())
		})
	}
	s.mu.Unlock()

	s.state.Set(StateRunning)
	telemetry.ActiveScans.Inc()
	s.record()
	go s.run()
}

func (s *Session) run() {
	defer close(s.workerDone)

	err := s.work()
	s.mu.Lock()
	s.workerErr = err
	s.mu.Unlock()

	// The worker ended by itself: release resources without blocking here.
	if s.ctx.Err() == nil {
		go func() { _ = s.Stop(context.Background()) }()
	}
}

func (s *Session) work() (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scan worker panicked", zap.Any("panic", r))
			err = fmt.Errorf("scan worker panic: %v", r)
		}
	}()

	failures := 0
	for {
		if s.ctx.Err() != nil {
			return nil
		}

		if ch, herr := s.scheduler.Hop(s.ctx); herr != nil && !errors.Is(herr, ports.ErrNoChannels) {
			s.logger.Debug("hop failed, capturing on current channel", zap.Int("channel", ch), zap.Error(herr))
		}

		cerr := s.source.Capture(s.ctx, s.scheduler.Dwell(), s.ingestor.Ingest)
		switch {
		case cerr == nil:
			failures = 0
		case errors.Is(cerr, ports.ErrSourceExhausted):
			s.logger.Info("frame source exhausted")
			return nil
		case s.ctx.Err() != nil:
			return nil
		default:
			failures++
			s.logger.Warn("capture failed", zap.Int("consecutive_failures", failures), zap.Error(cerr))
			if s.cfg.MaxCaptureErrors > 0 && failures >= s.cfg.MaxCaptureErrors {
				return fmt.Errorf("capture failed %d times in a row: %w", failures, cerr)
			}
			select {
			case <-s.ctx.Done():
				return nil
			case <-time.After(s.cfg.CaptureBackoff):
			}
		}
	}
}

// Stop cancels the worker, waits up to the join timeout, then closes the
// source and restores the adapter mode. Concurrent and repeated calls wait
// for the first one to finish.
func (s *Session) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { s.shutdown(ctx) })
	select {
	case <-s.finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) shutdown(ctx context.Context) {
	defer close(s.finished)

	s.state.Set(StateStopping)
	s.mu.RLock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.RUnlock()
	s.cancel()

	join := time.NewTimer(s.cfg.JoinTimeout)
	select {
	case <-s.workerDone:
		join.Stop()
	case <-join.C:
		s.logger.Warn("scan worker did not exit in time", zap.Duration("join_timeout", s.cfg.JoinTimeout))
	}

	if err := s.source.Close(); err != nil {
		s.logger.Warn("failed to close frame source", zap.Error(err))
	}

	rctx := context.WithoutCancel(ctx)
	if err := s.ctrl.ExitMonitorMode(rctx); err != nil {
		s.logger.Warn("failed to restore interface mode", zap.Error(err))
	}
	mode := s.ctrl.Describe(rctx).CurrentMode

	s.mu.Lock()
	s.mode = mode
	s.stoppedAt = s.now()
	s.status = domain.ScanCompleted
	if s.workerErr != nil {
		s.status = domain.ScanError
	}
	s.mu.Unlock()

	telemetry.ActiveScans.Dec()
	s.state.Set(StateStopped)
	s.record()

	stats := s.ingestor.Stats()
	aps, clients := s.store.Counts()
	s.logger.Info("scan stopped",
		zap.Int64("frames_processed", stats.Processed),
		zap.Int64("frames_malformed", stats.Malformed),
		zap.Int("networks", aps),
		zap.Int("clients", clients))
}

func (s *Session) record() {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.SaveSession(s.Metadata()); err != nil {
		s.logger.Warn("failed to record scan session", zap.Error(err))
	}
}

// Done is closed once the session has released its resources.
func (s *Session) Done() <-chan struct{} {
	return s.finished
}

func (s *Session) ID() string        { return s.id }
func (s *Session) Interface() string { return s.req.Interface }

// Lifecycle reports the session's lifecycle position.
func (s *Session) Lifecycle() State {
	return s.state.Get()
}

// Err is the error the worker exited with, if any.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workerErr
}

// State describes the session for status displays.
func (s *Session) State() domain.ScanState {
	aps, clients := s.store.Counts()
	st := domain.ScanState{
		Active:         s.state.Get() == StateRunning,
		Interface:      s.req.Interface,
		ScanType:       s.req.ScanType,
		Channels:       s.scheduler.Channels(),
		CurrentChannel: s.ctrl.CurrentChannel(),
		Frames:         s.ingestor.Stats(),
		NetworksFound:  aps,
		ClientsFound:   clients,
	}
	s.mu.RLock()
	st.Mode = s.mode
	st.StartedAt = s.startedAt
	st.StoppedAt = s.stoppedAt
	st.Status = s.status
	s.mu.RUnlock()
	return st
}

// Snapshot copies the interface's discovery model.
func (s *Session) Snapshot() domain.Snapshot {
	return s.store.Snapshot()
}

// Metadata is the record handed to the session recorder.
func (s *Session) Metadata() domain.ScanSession {
	aps, clients := s.store.Counts()
	meta := domain.ScanSession{
		ID:             s.id,
		Interface:      s.req.Interface,
		ScanType:       s.req.ScanType,
		Channels:       append([]int{}, s.req.Channels...),
		NetworksFound:  aps,
		ClientsFound:   clients,
		FramesCaptured: s.ingestor.Stats().Processed,
	}
	s.mu.RLock()
	meta.StartTime = s.startedAt
	meta.EndTime = s.stoppedAt
	meta.Status = s.status
	if s.workerErr != nil {
		meta.Error = s.workerErr.Error()
	}
	s.mu.RUnlock()
	return meta
}
