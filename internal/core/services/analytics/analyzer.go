// Package analytics derives channel, security and signal reports from a
// snapshot of discovered access points and merges them with threat findings
// into one comprehensive report.
package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"github.com/lcalzada-xor/airsight/internal/core/services/security"
	"github.com/lcalzada-xor/airsight/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrNoNetworks is the report error for an empty snapshot.
const ErrNoNetworks = "no networks to analyze"

// Analyzer runs every sub-analysis over a set of access points.
type Analyzer struct {
	threats *security.ThreatDetector
	logger  *zap.Logger
	now     func() time.Time
}

func NewAnalyzer(threats *security.ThreatDetector, logger *zap.Logger) *Analyzer {
	if threats == nil {
		threats = security.NewThreatDetector(security.DefaultConfig())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{threats: threats, logger: logger.Named("analytics"), now: time.Now}
}

// Analyze builds the comprehensive report for aps.
func (a *Analyzer) Analyze(ctx context.Context, aps []domain.AccessPoint) domain.AnalysisReport {
	return a.analyze(ctx, aps, nil)
}

// AnalyzeSnapshot is Analyze plus the snapshot's deauthentication activity.
func (a *Analyzer) AnalyzeSnapshot(ctx context.Context, snap domain.Snapshot) domain.AnalysisReport {
	return a.analyze(ctx, snap.AccessPoints, snap.Deauths)
}

func (a *Analyzer) analyze(ctx context.Context, aps []domain.AccessPoint, deauths []domain.DeauthEvent) domain.AnalysisReport {
	_, span := otel.Tracer("analytics").Start(ctx, "ComprehensiveAnalysis", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	span.SetAttributes(attribute.Int("networks.count", len(aps)))

	start := time.Now()
	report := domain.AnalysisReport{
		Timestamp:       a.now(),
		TotalNetworks:   len(aps),
		Fingerprints:    make(map[string]string, len(aps)),
		ThreatLevel:     domain.ThreatLevelNone,
		Recommendations: []string{},
	}

	var failures []string
	guard := func(name string, fn func()) {
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error("sub-analysis failed", zap.String("analysis", name), zap.Any("panic", r))
				failures = append(failures, fmt.Sprintf("%s: %v", name, r))
			}
		}()
		fn()
	}

	guard("threats", func() {
		report.Threats = a.threats.Analyze(aps, deauths)
		report.ThreatLevel = report.Threats.Level
	})
	guard("channels", func() { report.Channels = AnalyzeChannels(aps) })
	guard("security", func() { report.Security = AnalyzeSecurity(aps) })
	guard("signals", func() { report.Signals = AnalyzeSignals(aps) })
	guard("fingerprints", func() {
		for _, ap := range aps {
			report.Fingerprints[ap.BSSID] = Fingerprint(ap)
		}
	})
	guard("recommendations", func() { report.Recommendations = recommendations(report) })

	switch {
	case len(aps) == 0:
		report.Error = ErrNoNetworks
	case len(failures) > 0:
		report.Error = "analysis error: " + strings.Join(failures, "; ")
		span.SetStatus(codes.Error, report.Error)
	}

	elapsed := time.Since(start)
	report.AnalysisDuration = elapsed.Seconds()
	telemetry.AnalysisDuration.Observe(elapsed.Seconds())
	span.SetAttributes(
		attribute.String("threat.level", string(report.ThreatLevel)),
		attribute.Int("threat.total", report.Threats.TotalThreats),
	)
	return report
}

// recommendations collects advice from each section, first occurrence wins.
func recommendations(r domain.AnalysisReport) []string {
	var recs []string
	if r.Security.Vulnerable > 0 {
		recs = append(recs, fmt.Sprintf("Secure %d vulnerable networks", r.Security.Vulnerable))
	}
	recs = append(recs, r.Channels.Recommendations...)
	if r.Threats.TotalThreats > 0 {
		recs = append(recs, "Investigate detected security threats immediately")
	}
	if r.Signals.Quality == "poor" {
		recs = append(recs, "Consider improving AP placement for better coverage")
	}
	recs = append(recs, r.Security.Recommendations...)

	seen := make(map[string]bool, len(recs))
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		if !seen[rec] {
			seen[rec] = true
			out = append(out, rec)
		}
	}
	return out
}
