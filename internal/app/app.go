package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lcalzada-xor/airsight/internal/adapters/oui"
	"github.com/lcalzada-xor/airsight/internal/adapters/reporting"
	"github.com/lcalzada-xor/airsight/internal/adapters/sniffer/capture"
	"github.com/lcalzada-xor/airsight/internal/adapters/sniffer/driver"
	"github.com/lcalzada-xor/airsight/internal/adapters/sniffer/hopping"
	"github.com/lcalzada-xor/airsight/internal/adapters/sniffer/parser"
	"github.com/lcalzada-xor/airsight/internal/adapters/storage"
	"github.com/lcalzada-xor/airsight/internal/config"
	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"github.com/lcalzada-xor/airsight/internal/core/ports"
	"github.com/lcalzada-xor/airsight/internal/core/services/analytics"
	"github.com/lcalzada-xor/airsight/internal/core/services/persistence"
	"github.com/lcalzada-xor/airsight/internal/core/services/registry"
	"github.com/lcalzada-xor/airsight/internal/core/services/scan"
	"github.com/lcalzada-xor/airsight/internal/core/services/security"
	"github.com/lcalzada-xor/airsight/internal/telemetry"
	"go.uber.org/zap"
)

// defaultStopTimeout bounds session shutdown when no timeouts are configured.
const defaultStopTimeout = 15 * time.Second

// Version is stamped at build time with -ldflags "-X .../internal/app.Version=...".
var Version = "dev"

// Application holds the core components of the application and wires the
// adapters into the scan registry.
type Application struct {
	Config      *config.Config
	Logger      *zap.Logger
	Storage     ports.Storage
	Inspector   *driver.Inspector
	Scans       *scan.Registry
	Analyzer    *analytics.Analyzer
	Persistence *persistence.PersistenceManager

	vendorRepo     oui.VendorRepository
	vendors        *oui.Resolver
	shutdownTracer func(context.Context) error
}

// Result is the outcome of one scan, replay or stored-data analysis.
type Result struct {
	Session  *domain.ScanSession
	Networks []domain.AccessPoint
	Clients  []domain.Client
	Analysis domain.AnalysisReport
}

// Document wraps r for an exporter.
func (r Result) Document(title string, generatedAt time.Time) reporting.Document {
	return reporting.Document{
		Title:       title,
		GeneratedAt: generatedAt,
		Session:     r.Session,
		Networks:    r.Networks,
		Clients:     r.Clients,
		Analysis:    r.Analysis,
	}
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config, logger *zap.Logger) (*Application, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &Application{
		Config: cfg,
		Logger: logger,
	}

	if err := app.bootstrap(); err != nil {
		app.Close(context.Background())
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}
	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	// 1. Foundation & Infrastructure
	telemetry.InitMetrics()
	if app.Config.Telemetry.Tracing {
		shutdown, err := telemetry.InitTracer(os.Stderr, Version)
		if err != nil {
			app.Logger.Warn("tracing disabled", zap.Error(err))
		} else {
			app.shutdownTracer = shutdown
		}
	}

	store, err := app.initStorage()
	if err != nil {
		return err
	}
	app.Storage = store

	app.initVendors()

	// 2. Domain Services
	threats := security.NewThreatDetector(ThreatConfig(app.Config.Analysis))
	app.Analyzer = analytics.NewAnalyzer(threats, app.Logger)
	app.Persistence = persistence.NewPersistenceManager(app.Storage, app.Config.Scan.PersistInterval, app.Logger)

	// 3. Scan sessions
	app.Inspector = driver.NewInspector(nil, "", app.Logger)
	scans, err := scan.NewRegistry(scan.Deps{
		Controllers: app.controllerFor,
		Sources:     app.sourceFor,
		Schedulers:  app.schedulerFor,
		Vendors:     app.vendors,
		Recorder:    app.Storage,
		Scanner:     driver.NewIwlistScanner(nil, 0),
		Observers:   []registry.Observer{registry.MetricsObserver{}},
	}, scan.Config{
		Dwell:            app.Config.Scan.Dwell,
		JoinTimeout:      app.Config.Scan.JoinTimeout,
		MaxCaptureErrors: app.Config.Scan.MaxCaptureErrors,
	}, app.Logger)
	if err != nil {
		return err
	}
	app.Scans = scans
	return nil
}

func (app *Application) initStorage() (*storage.SQLiteAdapter, error) {
	if err := config.EnsureDir(app.Config.Database.Path); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	store, err := storage.NewSQLiteAdapter(app.Config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}
	return store, nil
}

// initVendors chains the IEEE registry database over the built-in table.
func (app *Application) initVendors() {
	app.vendorRepo = oui.Open(app.Config.OUI.DBPath, app.Config.OUI.CacheSize, app.Logger)
	app.vendors = oui.NewResolver(app.vendorRepo, app.Logger)
}

// ThreatConfig maps the analysis settings onto detector thresholds.
func ThreatConfig(c config.AnalysisConfig) security.Config {
	cfg := security.DefaultConfig()
	if c.EvilTwinSignalDelta > 0 {
		cfg.EvilTwinSignalDelta = c.EvilTwinSignalDelta
	}
	if c.RogueThreshold > 0 {
		cfg.RogueThreshold = c.RogueThreshold
	}
	if c.RogueHighThreshold > 0 {
		cfg.RogueHighThreshold = c.RogueHighThreshold
	}
	if c.StrongSignalDBM != 0 {
		cfg.StrongSignalDBM = c.StrongSignalDBM
	}
	if len(c.HoneypotPatterns) > 0 {
		cfg.HoneypotPatterns = c.HoneypotPatterns
	}
	return cfg
}

// controllerFor leaves the adapter alone when replaying a capture file.
func (app *Application) controllerFor(req scan.StartRequest) ports.InterfaceController {
	if req.ReplayFile != "" {
		return driver.NewNopController(req.Interface)
	}
	return driver.NewController(req.Interface, app.Inspector, driver.Options{
		ModeTimeout:    app.Config.Scan.ModeTimeout,
		ChannelTimeout: app.Config.Scan.ChannelTimeout,
	}, app.Logger)
}

func (app *Application) sourceFor(_ context.Context, req scan.StartRequest) (ports.FrameSource, error) {
	if req.ReplayFile != "" {
		return capture.OpenFile(req.ReplayFile, parser.NewDecoder())
	}
	return capture.OpenLive(capture.LiveConfig{
		Interface:  req.Interface,
		Snaplen:    app.Config.Scan.Snaplen,
		Filter:     app.Config.Scan.Filter,
		RecordPath: req.RecordPath,
	}, parser.NewDecoder(), app.Logger)
}

func (app *Application) schedulerFor(req scan.StartRequest, ctrl ports.InterfaceController) ports.ChannelScheduler {
	return hopping.NewHopper(req.Interface, req.Channels, req.Dwell, ctrl, app.Logger)
}

// RunScan starts one capture session per request and blocks until ctx is
// done or every session ends on its own (duration elapsed, replay
// exhausted, too many capture errors). The merged snapshot is persisted
// while they run and analyzed at the end.
func (app *Application) RunScan(ctx context.Context, reqs ...scan.StartRequest) (Result, error) {
	if len(reqs) == 0 {
		return Result{}, errors.New("no scan requested")
	}

	sessions := make(sessionGroup, 0, len(reqs))
	for _, req := range reqs {
		session, err := app.Scans.Start(ctx, req)
		if err != nil {
			app.stopSessions(sessions)
			return Result{}, err
		}
		sessions = append(sessions, session)
	}

	persistCtx, stopPersist := context.WithCancel(context.Background())
	flushed := app.Persistence.Start(persistCtx, sessions)

	select {
	case <-ctx.Done():
		app.Logger.Info("Termination signal received")
	case <-sessions.done():
	}

	stopErr := app.stopSessions(sessions)
	stopPersist()
	<-flushed

	snap := sessions.Snapshot()
	meta := sessions[0].Metadata()
	result := Result{
		Session:  &meta,
		Networks: snap.AccessPoints,
		Clients:  snap.Clients,
		Analysis: app.Analyzer.AnalyzeSnapshot(context.Background(), snap),
	}
	errs := []error{stopErr}
	for _, s := range sessions {
		errs = append(errs, s.Err())
	}
	return result, errors.Join(errs...)
}

func (app *Application) stopSessions(sessions []*scan.Session) error {
	stopTimeout := app.Config.Scan.JoinTimeout + app.Config.Scan.ModeTimeout
	if stopTimeout <= 0 {
		stopTimeout = defaultStopTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	var errs []error
	for _, s := range sessions {
		errs = append(errs, s.Stop(ctx))
	}
	return errors.Join(errs...)
}

// sessionGroup presents concurrent sessions as one snapshot source.
type sessionGroup []*scan.Session

func (g sessionGroup) Snapshot() domain.Snapshot {
	if len(g) == 1 {
		return g[0].Snapshot()
	}
	snaps := make([]domain.Snapshot, len(g))
	for i, s := range g {
		snaps[i] = s.Snapshot()
	}
	return registry.MergeSnapshots(snaps...)
}

// done is closed once every session has finished.
func (g sessionGroup) done() <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		defer close(ch)
		for _, s := range g {
			<-s.Done()
		}
	}()
	return ch
}

// SplitRequest fans req out over ifaces, dividing the channel plan so the
// adapters do not overlap. Passive requests keep their single channel.
// Each adapter records to its own pcap file.
func SplitRequest(req scan.StartRequest, ifaces []string) []scan.StartRequest {
	if len(ifaces) == 0 {
		return []scan.StartRequest{req}
	}

	plan := req.Channels
	if len(plan) == 0 {
		plan = domain.DefaultChannels()
	}
	var parts [][]int
	if req.ScanType != domain.ScanPassive && len(ifaces) > 1 {
		parts = hopping.Partition(plan, len(ifaces))
	}

	reqs := make([]scan.StartRequest, len(ifaces))
	for i, iface := range ifaces {
		r := req
		r.Interface = iface
		if len(ifaces) > 1 && r.RecordPath != "" {
			r.RecordPath = recordPathFor(req.RecordPath, iface)
		}
		switch {
		case parts == nil:
		case len(parts[i]) > 0:
			r.Channels = parts[i]
		default:
			// more adapters than channels: double up rather than fall back to the full plan
			r.Channels = []int{plan[i%len(plan)]}
		}
		reqs[i] = r
	}
	return reqs
}

// recordPathFor inserts the interface name before the extension:
// out.pcap becomes out.wlan0.pcap.
func recordPathFor(path, iface string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "." + iface + ext
}

// BasicScan runs a managed-mode scan and analyzes the result.
func (app *Application) BasicScan(ctx context.Context, iface string) (Result, error) {
	aps, err := app.Scans.BasicScan(ctx, iface)
	if err != nil {
		return Result{}, err
	}
	if err := app.Storage.SaveAccessPoints(aps); err != nil {
		app.Logger.Warn("failed to persist basic scan", zap.Error(err))
	}

	var meta *domain.ScanSession
	if sessions, err := app.Storage.ListSessions(1); err == nil && len(sessions) == 1 {
		meta = &sessions[0]
	}
	return Result{
		Session:  meta,
		Networks: aps,
		Clients:  []domain.Client{},
		Analysis: app.Analyzer.Analyze(ctx, aps),
	}, nil
}

// AnalyzeStored analyzes everything in the database.
func (app *Application) AnalyzeStored(ctx context.Context) (Result, error) {
	aps, err := app.Storage.ListAccessPoints()
	if err != nil {
		return Result{}, fmt.Errorf("load access points: %w", err)
	}
	clients, err := app.Storage.ListClients()
	if err != nil {
		return Result{}, fmt.Errorf("load clients: %w", err)
	}

	var meta *domain.ScanSession
	if sessions, err := app.Storage.ListSessions(1); err == nil && len(sessions) == 1 {
		meta = &sessions[0]
	}
	return Result{
		Session:  meta,
		Networks: aps,
		Clients:  clients,
		Analysis: app.Analyzer.Analyze(ctx, aps),
	}, nil
}

// ListInterfaces describes every wireless adapter on the host.
func (app *Application) ListInterfaces(ctx context.Context) []domain.InterfaceInfo {
	names := app.Inspector.ListInterfaces(ctx)
	infos := make([]domain.InterfaceInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, app.Inspector.Describe(ctx, name))
	}
	return infos
}

// Close stops every session and releases resources.
func (app *Application) Close(ctx context.Context) error {
	app.Logger.Debug("Cleaning up resources...")

	var errs []error
	if app.Scans != nil {
		errs = append(errs, app.Scans.StopAll(ctx))
	}
	if app.Storage != nil {
		errs = append(errs, app.Storage.Close())
	}
	if app.vendorRepo != nil {
		errs = append(errs, app.vendorRepo.Close())
	}
	if app.shutdownTracer != nil {
		errs = append(errs, app.shutdownTracer(ctx))
	}
	return errors.Join(errs...)
}
