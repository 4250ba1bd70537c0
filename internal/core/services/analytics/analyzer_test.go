package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"github.com/lcalzada-xor/airsight/internal/core/services/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleNetworks() []domain.AccessPoint {
	return []domain.AccessPoint{
		{BSSID: "00:00:00:00:00:01", SSID: "corp", Channel: 6, Signal: -40, Encryption: domain.EncryptionWPA2, Vendor: "Cisco Systems"},
		{BSSID: "00:00:00:00:00:02", SSID: "corp", Channel: 6, Signal: -45, Encryption: domain.EncryptionWPA2, Vendor: "Cisco Systems"},
		{BSSID: "00:00:00:00:00:03", SSID: "Free WiFi", Channel: 11, Signal: -20, Encryption: domain.EncryptionOpen, Vendor: "Unknown"},
		{BSSID: "00:00:00:00:00:04", SSID: "legacy", Channel: 1, Signal: -70, Encryption: domain.EncryptionWEP, Vendor: "Netgear"},
	}
}

func TestAnalyze_Comprehensive(t *testing.T) {
	a := NewAnalyzer(security.NewThreatDetector(security.DefaultConfig()), zap.NewNop())
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	report := a.Analyze(context.Background(), sampleNetworks())

	assert.Empty(t, report.Error)
	assert.Equal(t, fixed, report.Timestamp)
	assert.Equal(t, 4, report.TotalNetworks)
	assert.Len(t, report.Threats.EvilTwins, 1)
	assert.Len(t, report.Threats.RogueAPs, 1)
	assert.Equal(t, domain.ThreatLevelHigh, report.ThreatLevel)
	assert.Equal(t, 2, report.Security.Vulnerable)
	assert.Equal(t, CongestionLow, report.Channels.Congestion)
	assert.False(t, report.Signals.NoData)
	assert.Len(t, report.Fingerprints, 4)
	assert.Equal(t, Fingerprint(sampleNetworks()[0]), report.Fingerprints["00:00:00:00:00:01"])
	assert.GreaterOrEqual(t, report.AnalysisDuration, 0.0)

	assert.Equal(t, []string{
		"Secure 2 vulnerable networks",
		"Investigate detected security threats immediately",
		"Secure open networks with WPA2/WPA3",
		"Upgrade WEP networks to WPA2/WPA3",
	}, report.Recommendations)
}

func TestAnalyze_Empty(t *testing.T) {
	report := NewAnalyzer(nil, nil).Analyze(context.Background(), nil)

	assert.Equal(t, ErrNoNetworks, report.Error)
	assert.Zero(t, report.TotalNetworks)
	assert.Equal(t, domain.ThreatLevelNone, report.ThreatLevel)
	assert.Zero(t, report.Threats.TotalThreats)
	assert.Equal(t, CongestionNone, report.Channels.Congestion)
	assert.Equal(t, SecurityLevelNone, report.Security.Level)
	assert.True(t, report.Signals.NoData)
	assert.Empty(t, report.Recommendations)
	assert.NotNil(t, report.Recommendations)
}

func TestAnalyze_SubAnalysisFailureIsContained(t *testing.T) {
	// A nil detector panics inside the threat section only.
	a := &Analyzer{logger: zap.NewNop(), now: time.Now}

	var report domain.AnalysisReport
	require.NotPanics(t, func() {
		report = a.Analyze(context.Background(), sampleNetworks())
	})

	assert.Contains(t, report.Error, "threats:")
	assert.Equal(t, domain.ThreatLevelNone, report.ThreatLevel)
	assert.Equal(t, 4, report.Security.TotalNetworks)
	assert.Len(t, report.Fingerprints, 4)
	assert.Contains(t, report.Recommendations, "Secure 2 vulnerable networks")
}

func TestAnalyzeSnapshot_IncludesDeauths(t *testing.T) {
	snap := domain.Snapshot{
		AccessPoints: sampleNetworks(),
		Deauths: []domain.DeauthEvent{
			{BSSID: "00:00:00:00:00:01"},
			{BSSID: "00:00:00:00:00:01"},
		},
	}
	report := NewAnalyzer(nil, zap.NewNop()).AnalyzeSnapshot(context.Background(), snap)

	require.Len(t, report.Threats.DeauthActivity, 1)
	assert.Equal(t, 2, report.Threats.DeauthActivity[0].Count)
}

func TestRecommendations_PoorSignalAndDedup(t *testing.T) {
	r := domain.AnalysisReport{
		Signals: domain.SignalReport{Quality: "poor"},
		Channels: domain.ChannelReport{Recommendations: []string{
			"Consider using less congested channels",
			"Channel 6 shows optimal performance",
		}},
		Security: domain.SecurityReport{Recommendations: []string{
			"Consider using less congested channels",
		}},
	}
	assert.Equal(t, []string{
		"Consider using less congested channels",
		"Channel 6 shows optimal performance",
		"Consider improving AP placement for better coverage",
	}, recommendations(r))
}
