package driver

import (
	"bufio"
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
)

// DefaultScanTimeout bounds a managed-mode `iwlist scan`.
const DefaultScanTimeout = 30 * time.Second

// IwlistScanner performs a managed-mode scan with iwlist(8).
// It implements ports.NetworkScanner.
type IwlistScanner struct {
	runner  CommandRunner
	timeout time.Duration
	now     func() time.Time
}

func NewIwlistScanner(runner CommandRunner, timeout time.Duration) *IwlistScanner {
	if runner == nil {
		runner = ExecRunner{}
	}
	if timeout <= 0 {
		timeout = DefaultScanTimeout
	}
	return &IwlistScanner{runner: runner, timeout: timeout, now: time.Now}
}

// ScanNetworks returns one AccessPoint per cell. Vendor is left empty.
func (s *IwlistScanner) ScanNetworks(ctx context.Context, iface string) ([]domain.AccessPoint, error) {
	out, err := runWithTimeout(ctx, s.runner, "basic scan", s.timeout, "iwlist", iface, "scan")
	if err != nil {
		return nil, err
	}
	return parseIwlist(out, s.now()), nil
}

var (
	reCellAddress = regexp.MustCompile(`Address: ([0-9A-Fa-f:]{17})`)
	reESSID       = regexp.MustCompile(`ESSID:"([^"]*)"`)
	reChannel     = regexp.MustCompile(`Channel:(\d+)`)
	reFreqGHz     = regexp.MustCompile(`Frequency:([0-9.]+)`)
	reSignal      = regexp.MustCompile(`Signal level=(-?\d+)`)
)

func parseIwlist(out []byte, seen time.Time) []domain.AccessPoint {
	var (
		aps     []domain.AccessPoint
		current *domain.AccessPoint
	)
	flush := func() {
		if current != nil {
			if current.Channel == 0 && current.Frequency != 0 {
				current.Channel = domain.ChannelForFrequency(current.Frequency)
			}
			if current.Frequency == 0 {
				current.Frequency = domain.FrequencyForChannel(current.Channel)
			}
			aps = append(aps, *current)
		}
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.Contains(line, "Cell") && strings.Contains(line, "Address:"):
			flush()
			bssid := ""
			if m := reCellAddress.FindStringSubmatch(line); m != nil {
				bssid = domain.NormalizeMAC(m[1])
			}
			current = &domain.AccessPoint{
				BSSID:       bssid,
				Signal:      domain.NoSignal,
				Encryption:  domain.EncryptionOpen,
				FirstSeen:   seen,
				LastSeen:    seen,
				BeaconCount: 1,
			}
		case current == nil:
			continue
		case strings.Contains(line, "ESSID:"):
			if m := reESSID.FindStringSubmatch(line); m != nil {
				current.SSID = m[1]
			}
		case strings.Contains(line, "Channel:"):
			if m := reChannel.FindStringSubmatch(line); m != nil {
				current.Channel, _ = strconv.Atoi(m[1])
			}
		case strings.Contains(line, "Frequency:"):
			if m := reFreqGHz.FindStringSubmatch(line); m != nil {
				if ghz, err := strconv.ParseFloat(m[1], 64); err == nil {
					current.Frequency = int(ghz*1000 + 0.5)
				}
			}
		case strings.Contains(line, "Signal level="):
			if m := reSignal.FindStringSubmatch(line); m != nil {
				current.Signal, _ = strconv.Atoi(m[1])
			}
		case strings.HasPrefix(line, "Encryption key:"):
			if strings.HasSuffix(line, "on") {
				current.Encryption = domain.EncryptionWEP
			}
		case strings.Contains(line, "IE: IEEE 802.11i/WPA2"):
			current.Encryption = domain.EncryptionWPA2
		case strings.Contains(line, "IE: WPA Version"):
			// WPA2 wins when a cell advertises both.
			if current.Encryption != domain.EncryptionWPA2 {
				current.Encryption = domain.EncryptionWPA
			}
		}
	}
	flush()
	return aps
}
