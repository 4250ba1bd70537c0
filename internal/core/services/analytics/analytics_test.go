package analytics

import (
	"testing"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apOn(channel, signal int) domain.AccessPoint {
	return domain.AccessPoint{Channel: channel, Signal: signal, Encryption: domain.EncryptionWPA2}
}

func withEncryption(encs ...domain.Encryption) []domain.AccessPoint {
	aps := make([]domain.AccessPoint, len(encs))
	for i, e := range encs {
		aps[i] = domain.AccessPoint{Encryption: e}
	}
	return aps
}

func repeat(n int, e domain.Encryption) []domain.Encryption {
	out := make([]domain.Encryption, n)
	for i := range out {
		out[i] = e
	}
	return out
}

func TestAnalyzeChannels_Congestion(t *testing.T) {
	low := AnalyzeChannels([]domain.AccessPoint{apOn(1, -50), apOn(6, -50), apOn(11, -50)})
	assert.Equal(t, CongestionLow, low.Congestion)
	assert.Equal(t, map[int]int{1: 1, 6: 1, 11: 1}, low.Utilization)
	assert.Empty(t, low.Recommendations)

	var aps []domain.AccessPoint
	for _, ch := range []int{1, 6, 11} {
		for i := 0; i < 6; i++ {
			aps = append(aps, apOn(ch, -60))
		}
	}
	high := AnalyzeChannels(aps)
	assert.Equal(t, CongestionHigh, high.Congestion)
	assert.Equal(t, []string{
		"Consider using less congested channels",
		"Channel 1 shows optimal performance",
	}, high.Recommendations)

	assert.Equal(t, CongestionModerate, congestionLevel(map[int]int{1: 2}))
	assert.Equal(t, CongestionSevere, congestionLevel(map[int]int{1: 10}))
}

func TestAnalyzeChannels_Scores(t *testing.T) {
	report := AnalyzeChannels([]domain.AccessPoint{
		apOn(6, -40), apOn(6, -60), // 20 + 100/10 = 30
		apOn(1, -90),               // 10 + 9 = 19
		apOn(11, -90),              // 19, ties broken by channel
		apOn(0, -30),               // ignored
		apOn(36, -80), apOn(36, -80), apOn(36, -80), apOn(36, -80), apOn(36, -80),
		apOn(36, -80), apOn(36, -80), apOn(36, -80), apOn(36, -80), // 90 + 72 capped at 100
		apOn(40, -10), apOn(44, -10), apOn(48, -10),
	})

	_, hasZero := report.Utilization[0]
	assert.False(t, hasZero)

	require.Len(t, report.Ranked, 7)
	require.Len(t, report.Optimal, 5)

	assert.Equal(t, 40, report.Optimal[0].Channel)
	assert.Equal(t, 11.0, report.Optimal[0].InterferenceScore)
	assert.Equal(t, "excellent", report.Optimal[0].Quality)

	assert.Equal(t, 1, report.Optimal[3].Channel)
	assert.Equal(t, 19.0, report.Optimal[3].InterferenceScore)
	assert.Equal(t, 11, report.Optimal[4].Channel)

	last := report.Ranked[len(report.Ranked)-1]
	assert.Equal(t, 36, last.Channel)
	assert.Equal(t, 100.0, last.InterferenceScore)
	assert.Equal(t, "poor", last.Quality)

	six := report.Ranked[5]
	assert.Equal(t, 6, six.Channel)
	assert.Equal(t, 30.0, six.InterferenceScore)
	assert.Equal(t, "good", six.Quality)
}

func TestAnalyzeChannels_Empty(t *testing.T) {
	report := AnalyzeChannels(nil)
	assert.Equal(t, CongestionNone, report.Congestion)
	assert.Empty(t, report.Optimal)
	assert.NotNil(t, report.Utilization)
}

func TestAnalyzeSecurity(t *testing.T) {
	encs := append(repeat(8, domain.EncryptionWPA2), repeat(2, domain.EncryptionOpen)...)
	report := AnalyzeSecurity(withEncryption(encs...))

	assert.Equal(t, 10, report.TotalNetworks)
	assert.Equal(t, 64.0, report.Score)
	assert.Equal(t, "fair", report.Level)
	assert.Equal(t, 2, report.Vulnerable)
	assert.Equal(t, map[domain.Encryption]int{domain.EncryptionWPA2: 8, domain.EncryptionOpen: 2}, report.Distribution)
	assert.Equal(t, []string{"Secure open networks with WPA2/WPA3"}, report.Recommendations)
}

func TestAnalyzeSecurity_LevelsAndRounding(t *testing.T) {
	tests := []struct {
		encs  []domain.Encryption
		score float64
		level string
	}{
		{[]domain.Encryption{domain.EncryptionWPA3}, 100, "excellent"},
		{[]domain.Encryption{domain.EncryptionWPA3, domain.EncryptionWPA2, domain.EncryptionWPA2}, 86.7, "good"},
		{[]domain.Encryption{domain.EncryptionUnknown}, 50, "fair"},
		{[]domain.Encryption{domain.EncryptionWEP, domain.EncryptionWPA}, 40, "poor"},
		{[]domain.Encryption{domain.EncryptionOpen, domain.EncryptionWEP}, 10, "critical"},
	}
	for _, tt := range tests {
		report := AnalyzeSecurity(withEncryption(tt.encs...))
		assert.Equal(t, tt.score, report.Score, tt.encs)
		assert.Equal(t, tt.level, report.Level, tt.encs)
	}

	mixed := AnalyzeSecurity(withEncryption(domain.EncryptionOpen, domain.EncryptionWEP, domain.EncryptionWPA))
	assert.Equal(t, []string{
		"Secure open networks with WPA2/WPA3",
		"Upgrade WEP networks to WPA2/WPA3",
		"Upgrade WPA networks to WPA2/WPA3",
	}, mixed.Recommendations)
}

func TestAnalyzeSecurity_Empty(t *testing.T) {
	report := AnalyzeSecurity(nil)
	assert.Zero(t, report.TotalNetworks)
	assert.Zero(t, report.Score)
	assert.Equal(t, SecurityLevelNone, report.Level)
	assert.Empty(t, report.Recommendations)
}

func TestFingerprint(t *testing.T) {
	a := domain.AccessPoint{BSSID: "aa:bb:cc:00:00:01", SSID: "corp", Channel: 6, Encryption: domain.EncryptionWPA2, Vendor: "Cisco Systems", Signal: -40}
	b := a
	b.Signal = -80
	b.BeaconCount = 99

	fa := Fingerprint(a)
	assert.Len(t, fa, 16)
	assert.Regexp(t, "^[0-9a-f]{16}$", fa)
	assert.Equal(t, fa, Fingerprint(b), "volatile fields do not change identity")

	b.Channel = 11
	assert.NotEqual(t, fa, Fingerprint(b))
}

func TestAnalyzeSignals(t *testing.T) {
	report := AnalyzeSignals([]domain.AccessPoint{
		{Signal: -40}, {Signal: -60}, {Signal: -75}, {Signal: -90},
	})

	assert.False(t, report.NoData)
	assert.Equal(t, 4, report.Samples)
	assert.Equal(t, 66.3, report.Mean)
	assert.Equal(t, 67.5, report.Median)
	assert.Equal(t, 40, report.Min)
	assert.Equal(t, 90, report.Max)
	require.NotNil(t, report.StdDev)
	assert.Equal(t, 21.4, *report.StdDev)
	assert.Equal(t, domain.SignalDistribution{Excellent: 1, Good: 1, Fair: 1, Poor: 1}, report.Distribution)
	assert.Equal(t, "good", report.Quality)
}

func TestAnalyzeSignals_SingleAndEmpty(t *testing.T) {
	single := AnalyzeSignals([]domain.AccessPoint{{Signal: -88}})
	assert.Nil(t, single.StdDev)
	assert.Equal(t, 88.0, single.Median)
	assert.Equal(t, "poor", single.Quality)

	empty := AnalyzeSignals(nil)
	assert.True(t, empty.NoData)
	assert.Equal(t, NoSignalMessage, empty.Message)
	assert.Zero(t, empty.Samples)
}
