package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lcalzada-xor/airsight/internal/adapters/reporting"
	"github.com/lcalzada-xor/airsight/internal/app"
	"github.com/lcalzada-xor/airsight/internal/config"
	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"github.com/lcalzada-xor/airsight/internal/core/services/scan"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// common holds the flags every command accepts.
type common struct {
	configPath string
	format     string
	out        string
	title      string
	debug      bool
}

func (c *common) register(fs *flag.FlagSet, defaultFormat string) {
	fs.StringVar(&c.configPath, "config", "", "Path to a YAML config file")
	fs.StringVar(&c.format, "format", defaultFormat, "Output format: json, yaml or pdf")
	fs.StringVar(&c.out, "out", "", "Write the report to this file instead of stdout")
	fs.StringVar(&c.title, "title", "Wireless Security Assessment", "Report title")
	fs.BoolVar(&c.debug, "debug", false, "Enable verbose debug logging")
}

// setup loads configuration, applies flag overrides and builds the app.
func (c *common) setup(override func(*config.Config)) (*app.Application, func(), error) {
	v, err := config.Load(c.configPath)
	if err != nil {
		return nil, nil, err
	}
	if c.debug {
		v.Set("logging.level", "debug")
	}
	cfg, err := config.Decode(v)
	if err != nil {
		return nil, nil, err
	}
	if override != nil {
		override(cfg)
	}

	logger, err := config.NewLogger(v)
	if err != nil {
		return nil, nil, err
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Sync()
		return nil, nil, err
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := application.Close(ctx); err != nil {
			logger.Warn("cleanup failed", zap.Error(err))
		}
		logger.Sync()
	}
	return application, cleanup, nil
}

// serveMetrics runs the metrics endpoint for the lifetime of ctx when enabled.
func serveMetrics(ctx context.Context, a *app.Application) {
	if !a.Config.Metrics.Enabled {
		return
	}
	go func() {
		if err := a.ServeMetrics(ctx, a.Config.Metrics.Addr); err != nil {
			a.Logger.Error("metrics server failed", zap.Error(err))
		}
	}()
}

// export renders result in the requested format to -out or stdout.
func (c *common) export(result app.Result, stdout io.Writer) error {
	exporter, err := reporting.ForFormat(c.format)
	if err != nil {
		return err
	}
	data, err := exporter.Export(result.Document(c.title, time.Now()))
	if err != nil {
		return err
	}

	if c.out == "" {
		if exporter.Extension() == "pdf" {
			return fmt.Errorf("pdf output needs -out")
		}
		_, err = stdout.Write(data)
		return err
	}
	if err := config.EnsureDir(c.out); err != nil {
		return err
	}
	if err := os.WriteFile(c.out, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Report written to %s\n", c.out)
	return nil
}

func runInterfaces(ctx context.Context, args []string, stdout io.Writer) error {
	var c common
	fs := flag.NewFlagSet("interfaces", flag.ContinueOnError)
	c.register(fs, "table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, cleanup, err := c.setup(nil)
	if err != nil {
		return err
	}
	defer cleanup()

	return writeInterfaces(stdout, a.ListInterfaces(ctx), c.format)
}

func writeInterfaces(w io.Writer, infos []domain.InterfaceInfo, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	case "yaml", "yml":
		return yaml.NewEncoder(w).Encode(infos)
	}

	if len(infos) == 0 {
		_, err := fmt.Fprintln(w, "No wireless interfaces found")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INTERFACE\tMODE\tMONITOR\tPHY\tBANDS\tMAC")
	for _, info := range infos {
		bands := make([]string, len(info.SupportedBands))
		for i, b := range info.SupportedBands {
			bands[i] = string(b)
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\t%s\n",
			info.Name, info.CurrentMode, info.MonitorCapable, info.Phy, strings.Join(bands, ","), info.HardwareAddress)
	}
	return tw.Flush()
}

// scanFlags are shared by scan and replay.
type scanFlags struct {
	iface     string
	channels  string
	dwell     time.Duration
	duration  time.Duration
	pcapOut   string
	passive   bool
	noPersist bool
}

func (s *scanFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&s.iface, "i", "", "Wireless interface, or a comma separated list to split the channel plan (default from config)")
	fs.StringVar(&s.channels, "c", "", "Comma separated channel list (default: full 2.4/5 GHz plan)")
	fs.DurationVar(&s.dwell, "dwell", 0, "Channel dwell time (default from config)")
	fs.DurationVar(&s.duration, "duration", 0, "Stop after this long (0 runs until interrupted)")
	fs.StringVar(&s.pcapOut, "pcap", "", "Record raw frames to this pcap file")
	fs.BoolVar(&s.passive, "passive", false, "Stay on one channel instead of hopping")
	fs.BoolVar(&s.noPersist, "no-persist", false, "Analyze in memory without writing networks to the database")
}

// apply configures the application for the scan flags that are not part of
// the request.
func (s *scanFlags) apply(a *app.Application) {
	if s.noPersist {
		a.Persistence.SetEnabled(false)
	}
}

// request merges flags over configuration into a StartRequest.
func (s *scanFlags) request(cfg *config.Config) (scan.StartRequest, error) {
	req := scan.StartRequest{
		Interface:  cfg.Scan.Interface,
		ScanType:   domain.ScanMonitor,
		Channels:   cfg.Scan.Channels,
		Dwell:      cfg.Scan.Dwell,
		Duration:   cfg.Scan.Duration,
		RecordPath: cfg.Scan.PcapOut,
	}
	if s.iface != "" {
		req.Interface = s.iface
	}
	if s.channels != "" {
		channels, err := config.ParseChannels(s.channels)
		if err != nil {
			return req, err
		}
		req.Channels = channels
	}
	if s.dwell > 0 {
		req.Dwell = s.dwell
	}
	if s.duration > 0 {
		req.Duration = s.duration
	}
	if s.passive {
		req.ScanType = domain.ScanPassive
	}
	return req, nil
}

func runScan(ctx context.Context, args []string, stdout io.Writer) error {
	var c common
	var s scanFlags
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	c.register(fs, "json")
	s.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, cleanup, err := c.setup(func(cfg *config.Config) {
		if s.pcapOut != "" {
			cfg.Scan.PcapOut = s.pcapOut
		}
	})
	if err != nil {
		return err
	}
	defer cleanup()

	req, err := s.request(a.Config)
	if err != nil {
		return err
	}
	s.apply(a)
	serveMetrics(ctx, a)

	reqs := app.SplitRequest(req, config.SplitList(req.Interface))
	for _, r := range reqs {
		a.Logger.Info("starting scan",
			zap.String("interface", r.Interface),
			zap.String("type", string(r.ScanType)),
			zap.Ints("channels", r.Channels),
			zap.Duration("duration", r.Duration))
	}
	result, err := a.RunScan(ctx, reqs...)
	if result.Session == nil {
		return err
	}
	if err != nil {
		a.Logger.Warn("scan ended with error", zap.Error(err))
	}
	return c.export(result, stdout)
}

func runReplay(ctx context.Context, args []string, stdout io.Writer) error {
	var c common
	var s scanFlags
	var file string
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	c.register(fs, "json")
	s.register(fs)
	fs.StringVar(&file, "file", "", "pcap capture to replay (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if file == "" {
		return fmt.Errorf("replay needs -file")
	}

	a, cleanup, err := c.setup(nil)
	if err != nil {
		return err
	}
	defer cleanup()

	req, err := s.request(a.Config)
	if err != nil {
		return err
	}
	if s.iface == "" {
		req.Interface = "replay"
	}
	req.ReplayFile = file
	req.RecordPath = ""
	s.apply(a)

	result, err := a.RunScan(ctx, req)
	if result.Session == nil {
		return err
	}
	if err != nil {
		a.Logger.Warn("replay ended with error", zap.Error(err))
	}
	return c.export(result, stdout)
}

func runBasic(ctx context.Context, args []string, stdout io.Writer) error {
	var c common
	var iface string
	fs := flag.NewFlagSet("basic", flag.ContinueOnError)
	c.register(fs, "json")
	fs.StringVar(&iface, "i", "", "Wireless interface (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, cleanup, err := c.setup(nil)
	if err != nil {
		return err
	}
	defer cleanup()

	if iface == "" {
		iface = a.Config.Scan.Interface
	}
	result, err := a.BasicScan(ctx, iface)
	if err != nil {
		return err
	}
	return c.export(result, stdout)
}

func runAnalyze(ctx context.Context, args []string, stdout io.Writer) error {
	var c common
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	c.register(fs, "json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, cleanup, err := c.setup(nil)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := a.AnalyzeStored(ctx)
	if err != nil {
		return err
	}
	return c.export(result, stdout)
}
