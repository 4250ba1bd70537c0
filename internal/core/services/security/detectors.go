package security

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
)

// Detector inspects a set of access points and reports findings.
type Detector interface {
	Name() string
	Detect(aps []domain.AccessPoint, now time.Time) []domain.ThreatFinding
}

// EvilTwinDetector flags pairs of access points advertising the same SSID
// with similar signal strength.
type EvilTwinDetector struct {
	SignalDelta int
}

func (d *EvilTwinDetector) Name() string { return "EvilTwinDetector" }

// Detect evaluates every pair of distinct BSSIDs within each SSID group.
// SSIDs and BSSIDs are walked in sorted order so the result does not depend
// on input order.
func (d *EvilTwinDetector) Detect(aps []domain.AccessPoint, now time.Time) []domain.ThreatFinding {
	groups := make(map[string]map[string]domain.AccessPoint)
	for _, ap := range aps {
		if ap.SSID == "" {
			continue
		}
		g, ok := groups[ap.SSID]
		if !ok {
			g = make(map[string]domain.AccessPoint)
			groups[ap.SSID] = g
		}
		if _, dup := g[ap.BSSID]; !dup {
			g[ap.BSSID] = ap
		}
	}

	findings := []domain.ThreatFinding{}
	for _, ssid := range sortedKeys(groups) {
		group := groups[ssid]
		if len(group) < 2 {
			continue
		}
		bssids := sortedKeys(group)
		for i := 0; i < len(bssids); i++ {
			for j := i + 1; j < len(bssids); j++ {
				a, b := group[bssids[i]], group[bssids[j]]
				if abs(a.Signal-b.Signal) >= d.SignalDelta {
					continue
				}
				findings = append(findings, domain.ThreatFinding{
					Kind:        domain.ThreatEvilTwin,
					Severity:    domain.SeverityHigh,
					Networks:    []domain.AccessPoint{a.Clone(), b.Clone()},
					Reasons:     []string{fmt.Sprintf("Same SSID with signal difference of %d dB", abs(a.Signal-b.Signal))},
					Description: fmt.Sprintf("Potential evil twin detected for %s", ssid),
					DetectedAt:  now,
				})
			}
		}
	}
	return findings
}

// RogueAPDetector scores each access point independently.
type RogueAPDetector struct {
	Threshold        int
	HighThreshold    int
	StrongSignalDBM  int
	HoneypotPatterns []string
	VendorKeywords   []string
}

func (d *RogueAPDetector) Name() string { return "RogueAPDetector" }

func (d *RogueAPDetector) Detect(aps []domain.AccessPoint, now time.Time) []domain.ThreatFinding {
	findings := []domain.ThreatFinding{}
	for _, ap := range aps {
		score, reasons := d.Score(ap)
		if score < d.Threshold {
			continue
		}
		severity := domain.SeverityMedium
		if score >= d.HighThreshold {
			severity = domain.SeverityHigh
		}
		name := ap.SSID
		if name == "" {
			name = "Hidden"
		}
		findings = append(findings, domain.ThreatFinding{
			Kind:        domain.ThreatRogueAP,
			Severity:    severity,
			Networks:    []domain.AccessPoint{ap.Clone()},
			Reasons:     reasons,
			Score:       score,
			Description: fmt.Sprintf("Potential rogue AP: %s", name),
			DetectedAt:  now,
		})
	}
	return findings
}

// Score returns the additive suspicion score and the reasons in the order
// they fired.
func (d *RogueAPDetector) Score(ap domain.AccessPoint) (int, []string) {
	score := 0
	reasons := []string{}

	if ap.Encryption == domain.EncryptionOpen {
		score += 3
		reasons = append(reasons, "Open network detected")
	}
	if containsAny(strings.ToLower(ap.Vendor), d.VendorKeywords) {
		score += 2
		reasons = append(reasons, "Unusual vendor")
	}
	if ap.Signal > d.StrongSignalDBM {
		score++
		reasons = append(reasons, "Unusually strong signal")
	}
	if containsAny(strings.ToLower(ap.SSID), d.HoneypotPatterns) {
		score += 2
		reasons = append(reasons, "Suspicious SSID pattern")
	}
	return score, reasons
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
