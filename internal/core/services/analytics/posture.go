package analytics

import (
	"math"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
)

// encryptionWeights score each class out of 100. Anything else weighs 50.
var encryptionWeights = map[domain.Encryption]int{
	domain.EncryptionWPA3: 100,
	domain.EncryptionWPA2: 80,
	domain.EncryptionWPA:  60,
	domain.EncryptionWEP:  20,
	domain.EncryptionOpen: 0,
}

const unrecognizedWeight = 50

// SecurityLevelNone is reported for an empty input.
const SecurityLevelNone = "none"

// AnalyzeSecurity computes the share-weighted security score of a set of
// access points.
func AnalyzeSecurity(aps []domain.AccessPoint) domain.SecurityReport {
	report := domain.SecurityReport{
		TotalNetworks:   len(aps),
		Distribution:    make(map[domain.Encryption]int),
		Level:           SecurityLevelNone,
		Recommendations: []string{},
	}
	if len(aps) == 0 {
		return report
	}

	for _, ap := range aps {
		enc := ap.Encryption
		if enc == "" {
			enc = domain.EncryptionUnknown
		}
		report.Distribution[enc]++
	}

	weighted := 0
	for enc, count := range report.Distribution {
		w, ok := encryptionWeights[enc]
		if !ok {
			w = unrecognizedWeight
		}
		weighted += count * w
	}
	score := float64(weighted) / float64(len(aps))
	report.Score = math.Round(score*10) / 10
	report.Level = securityLevel(score)

	open := report.Distribution[domain.EncryptionOpen]
	wep := report.Distribution[domain.EncryptionWEP]
	report.Vulnerable = open + wep

	if open > 0 {
		report.Recommendations = append(report.Recommendations, "Secure open networks with WPA2/WPA3")
	}
	if wep > 0 {
		report.Recommendations = append(report.Recommendations, "Upgrade WEP networks to WPA2/WPA3")
	}
	if report.Distribution[domain.EncryptionWPA] > 0 {
		report.Recommendations = append(report.Recommendations, "Upgrade WPA networks to WPA2/WPA3")
	}
	return report
}

func securityLevel(score float64) string {
	switch {
	case score >= 90:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= 50:
		return "fair"
	case score >= 30:
		return "poor"
	}
	return "critical"
}
