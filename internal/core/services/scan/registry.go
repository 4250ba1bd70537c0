// Package scan runs capture sessions, one per wireless interface.
package scan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"github.com/lcalzada-xor/airsight/internal/core/ports"
	"github.com/lcalzada-xor/airsight/internal/core/services/ingest"
	"github.com/lcalzada-xor/airsight/internal/core/services/registry"
	"go.uber.org/zap"
)

var (
	// ErrAlreadyRunning is returned by Start while the interface has a live session.
	ErrAlreadyRunning = errors.New("scan already running on interface")
	// ErrNoScanner is returned by BasicScan when no managed-mode scanner is wired.
	ErrNoScanner = errors.New("no network scanner configured")
	// ErrBasicScanType is returned by Start for ScanBasic requests; use BasicScan.
	ErrBasicScanType = errors.New("basic scans do not start a capture session")
)

// StartRequest describes one capture session.
type StartRequest struct {
	Interface string
	ScanType  domain.ScanType
	// Channels is the hop plan. Empty means the default plan for monitor
	// scans; passive scans stay on the first listed channel, or on whatever
	// channel the adapter is tuned to when none is given.
	Channels []int
	Dwell    time.Duration
	// Duration stops the session automatically when positive.
	Duration time.Duration
	// ReplayFile replays a pcap capture instead of opening the adapter.
	ReplayFile string
	// RecordPath copies raw frames of a live capture to a pcap file.
	RecordPath string
}

// Config holds lifecycle tunables.
type Config struct {
	Dwell          time.Duration
	JoinTimeout    time.Duration
	CaptureBackoff time.Duration
	// MaxCaptureErrors ends the session with an error after this many
	// consecutive capture failures. Zero retries forever.
	MaxCaptureErrors int
}

// DefaultConfig returns the stock lifecycle settings.
func DefaultConfig() Config {
	return Config{
		Dwell:            500 * time.Millisecond,
		JoinTimeout:      5 * time.Second,
		CaptureBackoff:   100 * time.Millisecond,
		MaxCaptureErrors: 50,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Dwell <= 0 {
		c.Dwell = def.Dwell
	}
	if c.JoinTimeout <= 0 {
		c.JoinTimeout = def.JoinTimeout
	}
	if c.CaptureBackoff <= 0 {
		c.CaptureBackoff = def.CaptureBackoff
	}
	if c.MaxCaptureErrors < 0 {
		c.MaxCaptureErrors = 0
	}
	return c
}

// Deps are the adapters a Registry builds sessions from.
type Deps struct {
	Controllers func(req StartRequest) ports.InterfaceController
	Sources     func(ctx context.Context, req StartRequest) (ports.FrameSource, error)
	Schedulers  func(req StartRequest, ctrl ports.InterfaceController) ports.ChannelScheduler

	Vendors   ports.VendorResolver
	Recorder  ports.SessionRecorder
	Scanner   ports.NetworkScanner
	Observers []registry.Observer
}

// Registry owns the scan session of every interface. At most one session
// per interface is running at a time.
type Registry struct {
	deps   Deps
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	starting map[string]bool
	stores   map[string]*registry.DiscoveryStore
}

// NewRegistry validates deps and creates an empty Registry.
func NewRegistry(deps Deps, cfg Config, logger *zap.Logger) (*Registry, error) {
	switch {
	case deps.Controllers == nil:
		return nil, errors.New("scan: controller factory is required")
	case deps.Sources == nil:
		return nil, errors.New("scan: frame source factory is required")
	case deps.Schedulers == nil:
		return nil, errors.New("scan: channel scheduler factory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		deps:     deps,
		cfg:      cfg.withDefaults(),
		logger:   logger.Named("scan"),
		now:      time.Now,
		sessions: make(map[string]*Session),
		starting: make(map[string]bool),
		stores:   make(map[string]*registry.DiscoveryStore),
	}, nil
}

func (r *Registry) normalize(req StartRequest) StartRequest {
	if req.ScanType == "" {
		req.ScanType = domain.ScanMonitor
	}
	if req.Dwell <= 0 {
		req.Dwell = r.cfg.Dwell
	}
	switch req.ScanType {
	case domain.ScanPassive:
		if len(req.Channels) > 0 {
			req.Channels = []int{req.Channels[0]}
		}
	default:
		if len(req.Channels) == 0 {
			req.Channels = domain.DefaultChannels()
		} else {
			req.Channels = append([]int(nil), req.Channels...)
		}
	}
	return req
}

// storeLocked returns the interface's discovery store, creating it on first use.
func (r *Registry) storeLocked(iface string) *registry.DiscoveryStore {
	if st, ok := r.stores[iface]; ok {
		return st
	}
	st := registry.NewDiscoveryStore(r.deps.Vendors)
	for _, o := range r.deps.Observers {
		st.AddObserver(o)
	}
	r.stores[iface] = st
	return st
}

// Start puts the adapter in monitor mode, opens its frame source and
// launches the capture worker. A second Start for a running interface fails
// fast with ErrAlreadyRunning and leaves the running session untouched.
func (r *Registry) Start(ctx context.Context, req StartRequest) (*Session, error) {
	if !domain.IsValidInterface(req.Interface) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidInterfaceName, req.Interface)
	}
	if req.ScanType == domain.ScanBasic {
		return nil, ErrBasicScanType
	}
	req = r.normalize(req)

	r.mu.Lock()
	if cur, ok := r.sessions[req.Interface]; (ok && cur.active()) || r.starting[req.Interface] {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, req.Interface)
	}
	r.starting[req.Interface] = true
	store := r.storeLocked(req.Interface)
	r.mu.Unlock()

	s := newSession(uuid.NewString(), req, store, r.cfg, r.deps.Recorder, r.logger, r.now)
	err := r.open(ctx, s)
	if err == nil {
		s.launch()
	}

	r.mu.Lock()
	delete(r.starting, req.Interface)
	if err == nil {
		r.sessions[req.Interface] = s
	}
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	r.logger.Info("scan started",
		zap.String("session", s.id),
		zap.String("interface", req.Interface),
		zap.String("scan_type", string(req.ScanType)),
		zap.Ints("channels", req.Channels),
		zap.Duration("dwell", req.Dwell),
		zap.Duration("duration", req.Duration))
	return s, nil
}

func (r *Registry) open(ctx context.Context, s *Session) error {
	req := s.req
	ctrl := r.deps.Controllers(req)
	if err := ctrl.EnterMonitorMode(ctx); err != nil {
		return fmt.Errorf("enter monitor mode on %s: %w", req.Interface, err)
	}

	source, err := r.deps.Sources(ctx, req)
	if err != nil {
		if rerr := ctrl.ExitMonitorMode(context.WithoutCancel(ctx)); rerr != nil {
			r.logger.Warn("failed to restore interface mode", zap.String("interface", req.Interface), zap.Error(rerr))
		}
		return fmt.Errorf("open frame source on %s: %w", req.Interface, err)
	}

	s.store.Reset()
	s.ctrl = ctrl
	s.source = source
	s.scheduler = r.deps.Schedulers(req, ctrl)
	s.ingestor = ingest.New(s.store, req.Interface, r.logger)
	s.mode = ctrl.Describe(ctx).CurrentMode
	return nil
}

// Stop ends the interface's session. It is a no-op when nothing is running.
func (r *Registry) Stop(ctx context.Context, iface string) error {
	r.mu.Lock()
	s, ok := r.sessions[iface]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return s.Stop(ctx)
}

// StopAll stops every session and joins their errors.
func (r *Registry) StopAll(ctx context.Context) error {
	var errs []error
	for _, s := range r.Sessions() {
		if err := r.Stop(ctx, s.Interface()); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Interface(), err))
		}
	}
	return errors.Join(errs...)
}

// Session returns the latest session of iface, running or not.
func (r *Registry) Session(iface string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[iface]
	return s, ok
}

// Sessions returns the latest session of every interface, sorted by name.
func (r *Registry) Sessions() []*Session {
	r.mu.Lock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Interface() < out[j].Interface() })
	return out
}

// BasicScan runs a one-shot managed-mode scan and resolves vendors of the
// networks found. It does not touch the interface's discovery store.
func (r *Registry) BasicScan(ctx context.Context, iface string) ([]domain.AccessPoint, error) {
	if r.deps.Scanner == nil {
		return nil, ErrNoScanner
	}
	if !domain.IsValidInterface(iface) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidInterfaceName, iface)
	}

	meta := domain.ScanSession{
		ID:        uuid.NewString(),
		Interface: iface,
		ScanType:  domain.ScanBasic,
		StartTime: r.now(),
		Channels:  []int{},
	}

	aps, err := r.deps.Scanner.ScanNetworks(ctx, iface)
	meta.EndTime = r.now()
	if err != nil {
		meta.Status = domain.ScanError
		meta.Error = err.Error()
		r.record(meta)
		return nil, fmt.Errorf("basic scan on %s: %w", iface, err)
	}

	for i := range aps {
		if r.deps.Vendors != nil && (aps[i].Vendor == "" || aps[i].Vendor == domain.UnknownVendor) {
			aps[i].Vendor = r.deps.Vendors.ResolveVendor(aps[i].BSSID)
		}
	}
	meta.Status = domain.ScanCompleted
	meta.NetworksFound = len(aps)
	r.record(meta)
	r.logger.Info("basic scan finished", zap.String("interface", iface), zap.Int("networks", len(aps)))
	return aps, nil
}

func (r *Registry) record(meta domain.ScanSession) {
	if r.deps.Recorder == nil {
		return
	}
	if err := r.deps.Recorder.SaveSession(meta); err != nil {
		r.logger.Warn("failed to record scan session", zap.String("session", meta.ID), zap.Error(err))
	}
}
