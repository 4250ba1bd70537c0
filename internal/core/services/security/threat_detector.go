package security

import (
	"sort"
	"time"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
)

// ThreatDetector runs the evil-twin and rogue-AP detectors over a snapshot.
type ThreatDetector struct {
	evilTwin *EvilTwinDetector
	rogue    *RogueAPDetector
	now      func() time.Time
}

func NewThreatDetector(cfg Config) *ThreatDetector {
	cfg = cfg.withDefaults()
	return &ThreatDetector{
		evilTwin: &EvilTwinDetector{SignalDelta: cfg.EvilTwinSignalDelta},
		rogue: &RogueAPDetector{
			Threshold:        cfg.RogueThreshold,
			HighThreshold:    cfg.RogueHighThreshold,
			StrongSignalDBM:  cfg.StrongSignalDBM,
			HoneypotPatterns: cfg.HoneypotPatterns,
			VendorKeywords:   cfg.UnusualVendorKeywords,
		},
		now: time.Now,
	}
}

// Detectors lists the registered detectors in evaluation order.
func (td *ThreatDetector) Detectors() []Detector {
	return []Detector{td.evilTwin, td.rogue}
}

// Analyze builds the threat report. deauths may be nil.
func (td *ThreatDetector) Analyze(aps []domain.AccessPoint, deauths []domain.DeauthEvent) domain.ThreatReport {
	now := td.now()
	report := domain.ThreatReport{
		EvilTwins:      []domain.ThreatFinding{},
		RogueAPs:       []domain.ThreatFinding{},
		DeauthActivity: SummarizeDeauths(deauths),
	}
	for _, d := range td.Detectors() {
		for _, f := range d.Detect(aps, now) {
			switch f.Kind {
			case domain.ThreatEvilTwin:
				report.EvilTwins = append(report.EvilTwins, f)
			case domain.ThreatRogueAP:
				report.RogueAPs = append(report.RogueAPs, f)
			}
		}
	}
	report.TotalThreats = len(report.EvilTwins) + len(report.RogueAPs)
	report.Level = Level(report.Findings())
	return report
}

// Level derives the overall threat level: any high finding is high, more
// than two medium findings is medium, any medium is low.
func Level(findings []domain.ThreatFinding) domain.ThreatLevel {
	high, medium := 0, 0
	for _, f := range findings {
		switch f.Severity {
		case domain.SeverityHigh:
			high++
		case domain.SeverityMedium:
			medium++
		}
	}
	switch {
	case high > 0:
		return domain.ThreatLevelHigh
	case medium > 2:
		return domain.ThreatLevelMedium
	case medium > 0:
		return domain.ThreatLevelLow
	}
	return domain.ThreatLevelNone
}

// SummarizeDeauths counts deauthentication frames per BSSID, busiest first.
func SummarizeDeauths(events []domain.DeauthEvent) []domain.DeauthSummary {
	byBSSID := make(map[string]*domain.DeauthSummary)
	for _, ev := range events {
		key := ev.BSSID
		if key == "" {
			key = ev.Source
		}
		if key == "" {
			continue
		}
		s, ok := byBSSID[key]
		if !ok {
			s = &domain.DeauthSummary{BSSID: key}
			byBSSID[key] = s
		}
		s.Count++
		if ev.Timestamp.After(s.LastSeen) {
			s.LastSeen = ev.Timestamp
		}
	}

	out := make([]domain.DeauthSummary, 0, len(byBSSID))
	for _, s := range byBSSID {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].BSSID < out[j].BSSID
	})
	return out
}
