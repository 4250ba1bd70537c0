package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/lcalzada-xor/airsight/internal/adapters/sniffer/capture"
	"github.com/lcalzada-xor/airsight/internal/config"
	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"github.com/lcalzada-xor/airsight/internal/core/services/scan"
	"github.com/lcalzada-xor/airsight/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func rawBeacon(bssid byte, ssid string) []byte {
	b := []byte{0x80, 0x00, 0x00, 0x00}
	b = append(b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
	b = append(b, 0x00, 0x11, 0x22, 0x33, 0x44, bssid)
	b = append(b, 0x00, 0x11, 0x22, 0x33, 0x44, bssid)
	b = append(b, 0x00, 0x00)
	b = append(b, make([]byte, 8)...)
	b = append(b, 0x64, 0x00, 0x01, 0x00)
	b = append(b, 0x00, byte(len(ssid)))
	b = append(b, ssid...)
	return append(b, 0x00, 0x00, 0x00, 0x00)
}

func writeCapture(t *testing.T, frames ...[]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "replay.pcap")
	rec, err := capture.NewRecorder(path, capture.DefaultSnaplen, layers.LinkTypeIEEE802_11)
	require.NoError(t, err)
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, f := range frames {
		require.NoError(t, rec.Write(gopacket.CaptureInfo{Timestamp: ts.Add(time.Duration(i) * time.Second)}, f))
	}
	require.NoError(t, rec.Close())
	return path
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Scan: config.ScanConfig{
			Dwell:           5 * time.Millisecond,
			ModeTimeout:     time.Second,
			ChannelTimeout:  time.Second,
			JoinTimeout:     time.Second,
			PersistInterval: 10 * time.Millisecond,
		},
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "db", "airsight.db")},
	}
}

func newTestApp(t *testing.T) *Application {
	t.Helper()
	a, err := New(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })
	return a
}

func TestRunScan_ReplayPersistsAndAnalyzes(t *testing.T) {
	a := newTestApp(t)
	path := writeCapture(t, rawBeacon(0x01, "alpha"), rawBeacon(0x02, "beta"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := a.RunScan(ctx, scan.StartRequest{Interface: "wlan0", ReplayFile: path})
	require.NoError(t, err)

	require.NotNil(t, result.Session)
	assert.Equal(t, domain.ScanCompleted, result.Session.Status)
	require.Len(t, result.Networks, 2)
	assert.Equal(t, 2, result.Analysis.TotalNetworks)

	stored, err := a.AnalyzeStored(context.Background())
	require.NoError(t, err)
	ssids := []string{}
	for _, ap := range stored.Networks {
		ssids = append(ssids, ap.SSID)
	}
	sort.Strings(ssids)
	assert.Equal(t, []string{"alpha", "beta"}, ssids)
	require.NotNil(t, stored.Session)
	assert.Equal(t, result.Session.ID, stored.Session.ID)

	doc := stored.Document("Replay", time.Now())
	assert.Equal(t, "Replay", doc.Title)
	assert.Len(t, doc.Networks, 2)
}

func TestRunScan_PersistenceDisabled(t *testing.T) {
	a := newTestApp(t)
	a.Persistence.SetEnabled(false)
	path := writeCapture(t, rawBeacon(0x01, "alpha"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := a.RunScan(ctx, scan.StartRequest{Interface: "wlan0", ReplayFile: path})
	require.NoError(t, err)
	assert.Len(t, result.Networks, 1)

	stored, err := a.AnalyzeStored(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored.Networks)
}

func TestRunScan_MissingReplayFile(t *testing.T) {
	a := newTestApp(t)
	_, err := a.RunScan(context.Background(), scan.StartRequest{
		Interface:  "wlan0",
		ReplayFile: filepath.Join(t.TempDir(), "missing.pcap"),
	})
	assert.Error(t, err)
	_, running := a.Scans.Session("wlan0")
	assert.False(t, running)
}

func TestRunScan_MergesConcurrentSessions(t *testing.T) {
	a := newTestApp(t)
	first := writeCapture(t, rawBeacon(0x01, "alpha"), rawBeacon(0x02, "beta"))
	second := writeCapture(t, rawBeacon(0x02, "beta"), rawBeacon(0x03, "gamma"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := a.RunScan(ctx,
		scan.StartRequest{Interface: "wlan0", ReplayFile: first},
		scan.StartRequest{Interface: "wlan1", ReplayFile: second},
	)
	require.NoError(t, err)

	require.NotNil(t, result.Session)
	assert.Equal(t, "wlan0", result.Session.Interface)
	assert.Len(t, result.Networks, 3)
	assert.Equal(t, 3, result.Analysis.TotalNetworks)
}

func TestRunScan_NoRequests(t *testing.T) {
	a := newTestApp(t)
	_, err := a.RunScan(context.Background())
	assert.Error(t, err)
}

func TestSplitRequest(t *testing.T) {
	req := scan.StartRequest{ScanType: domain.ScanMonitor, Channels: []int{1, 6, 11, 36, 40}}

	reqs := SplitRequest(req, []string{"wlan0", "wlan1"})
	require.Len(t, reqs, 2)
	assert.Equal(t, "wlan0", reqs[0].Interface)
	assert.Equal(t, []int{1, 6, 11}, reqs[0].Channels)
	assert.Equal(t, "wlan1", reqs[1].Interface)
	assert.Equal(t, []int{36, 40}, reqs[1].Channels)

	single := SplitRequest(req, []string{"wlan2"})
	require.Len(t, single, 1)
	assert.Equal(t, req.Channels, single[0].Channels)

	short := SplitRequest(scan.StartRequest{ScanType: domain.ScanMonitor, Channels: []int{6}}, []string{"wlan0", "wlan1"})
	assert.Equal(t, []int{6}, short[0].Channels)
	assert.Equal(t, []int{6}, short[1].Channels)

	passive := SplitRequest(scan.StartRequest{ScanType: domain.ScanPassive, Channels: []int{6, 11}}, []string{"wlan0", "wlan1"})
	assert.Equal(t, []int{6, 11}, passive[1].Channels)
}

func TestSplitRequest_RecordPathPerInterface(t *testing.T) {
	req := scan.StartRequest{ScanType: domain.ScanMonitor, RecordPath: "/tmp/out.pcap"}

	reqs := SplitRequest(req, []string{"wlan0", "wlan1"})
	require.Len(t, reqs, 2)
	assert.Equal(t, "/tmp/out.wlan0.pcap", reqs[0].RecordPath)
	assert.Equal(t, "/tmp/out.wlan1.pcap", reqs[1].RecordPath)

	single := SplitRequest(req, []string{"wlan0"})
	assert.Equal(t, "/tmp/out.pcap", single[0].RecordPath)

	assert.Equal(t, "capture.wlan2", recordPathFor("capture", "wlan2"))
}

func TestAnalyzeStored_Empty(t *testing.T) {
	a := newTestApp(t)
	result, err := a.AnalyzeStored(context.Background())
	require.NoError(t, err)
	assert.Nil(t, result.Session)
	assert.Empty(t, result.Networks)
	assert.Equal(t, domain.ThreatLevelNone, result.Analysis.ThreatLevel)
}

func TestThreatConfig(t *testing.T) {
	cfg := ThreatConfig(config.AnalysisConfig{RogueThreshold: 5, HoneypotPatterns: []string{"lobby"}})
	assert.Equal(t, 5, cfg.RogueThreshold)
	assert.Equal(t, []string{"lobby"}, cfg.HoneypotPatterns)
	assert.Equal(t, 10, cfg.EvilTwinSignalDelta)
	assert.Equal(t, -30, cfg.StrongSignalDBM)
}

func TestMetricsHandler(t *testing.T) {
	telemetry.InitMetrics()
	h := NewMetricsHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "airsight_active_scans")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
