package driver

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"go.uber.org/zap"
)

// DefaultSysfsRoot is where the kernel exposes network devices.
const DefaultSysfsRoot = "/sys/class/net"

const probeTimeout = 3 * time.Second

// Inspector answers read-only questions about the host's adapters.
// It implements ports.InterfaceLister.
type Inspector struct {
	runner    CommandRunner
	sysfsRoot string
	logger    *zap.Logger

	// lookupLink is net.InterfaceByName unless replaced in tests.
	lookupLink func(name string) (net.HardwareAddr, bool)
}

// NewInspector builds an Inspector. A nil runner runs commands on the host.
func NewInspector(runner CommandRunner, sysfsRoot string, logger *zap.Logger) *Inspector {
	if runner == nil {
		runner = ExecRunner{}
	}
	if sysfsRoot == "" {
		sysfsRoot = DefaultSysfsRoot
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inspector{
		runner:     runner,
		sysfsRoot:  sysfsRoot,
		logger:     logger.Named("inspector"),
		lookupLink: hostLink,
	}
}

func hostLink(name string) (net.HardwareAddr, bool) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, false
	}
	return iface.HardwareAddr, true
}

// ListInterfaces returns wireless adapter names in lexical order.
func (i *Inspector) ListInterfaces(ctx context.Context) []string {
	names := i.listFromSysfs()
	if len(names) == 0 {
		names = i.listFromIw(ctx)
	}
	sort.Strings(names)
	if names == nil {
		names = []string{}
	}
	return names
}

func (i *Inspector) listFromSysfs() []string {
	entries, err := os.ReadDir(i.sysfsRoot)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if i.isWirelessSysfs(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names
}

func (i *Inspector) isWirelessSysfs(name string) bool {
	for _, marker := range []string{"wireless", "phy80211"} {
		if _, err := os.Stat(filepath.Join(i.sysfsRoot, name, marker)); err == nil {
			return true
		}
	}
	return false
}

func (i *Inspector) listFromIw(ctx context.Context) []string {
	out, err := runWithTimeout(ctx, i.runner, "list interfaces", probeTimeout, "iw", "dev")
	if err != nil {
		i.logger.Debug("iw dev failed", zap.Error(err))
		return nil
	}

	// phy#0
	//     Interface wlan0
	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if name, ok := strings.CutPrefix(line, "Interface "); ok {
			names = append(names, strings.TrimSpace(name))
		}
	}
	return names
}

// Describe probes one adapter. Unknown or invalid names report Exists=false.
func (i *Inspector) Describe(ctx context.Context, name string) domain.InterfaceInfo {
	info, err := domain.NewInterfaceInfo(name)
	if err != nil {
		return info
	}

	_, statErr := os.Stat(filepath.Join(i.sysfsRoot, name))
	info.Exists = statErr == nil
	info.Wireless = i.isWirelessSysfs(name)

	if hw, ok := i.lookupLink(name); ok {
		info.Exists = true
		if len(hw) > 0 {
			info.HardwareAddress = domain.NormalizeMAC(hw.String())
		}
	}

	dev, err := runWithTimeout(ctx, i.runner, "describe", probeTimeout, "iw", "dev", name, "info")
	if err != nil {
		i.logger.Debug("iw dev info failed", zap.String("interface", name), zap.Error(err))
		return info
	}

	devInfo := parseDevInfo(dev)
	info.Exists = true
	info.Wireless = true
	info.CurrentMode = devInfo.mode
	info.Phy = devInfo.phy
	if info.HardwareAddress == "" && devInfo.addr != "" {
		info.HardwareAddress = domain.NormalizeMAC(devInfo.addr)
	}

	if info.Phy == "" {
		return info
	}
	phyOut, err := runWithTimeout(ctx, i.runner, "describe", probeTimeout, "iw", "phy", info.Phy, "info")
	if err != nil {
		i.logger.Debug("iw phy info failed", zap.String("phy", info.Phy), zap.Error(err))
		return info
	}
	caps := parsePhyInfo(phyOut)
	info.MonitorCapable = caps.monitor
	info.SupportedChannels = caps.channels
	info.SupportedBands = caps.bands
	return info
}

type devInfo struct {
	mode    domain.InterfaceMode
	phy     string
	addr    string
	channel int
}

// parseDevInfo reads the output of `iw dev <if> info`.
func parseDevInfo(out []byte) devInfo {
	d := devInfo{mode: domain.ModeUnknown}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "type":
			d.mode = parseMode(fields[1])
		case "wiphy":
			d.phy = "phy" + fields[1]
		case "addr":
			d.addr = fields[1]
		case "channel":
			d.channel, _ = strconv.Atoi(fields[1])
		}
	}
	return d
}

func parseMode(s string) domain.InterfaceMode {
	switch strings.ToLower(s) {
	case "monitor":
		return domain.ModeMonitor
	case "managed", "station":
		return domain.ModeManaged
	}
	return domain.InterfaceMode(strings.ToLower(s))
}

type phyCaps struct {
	monitor  bool
	channels []int
	bands    []domain.WiFiBand
}

// Example: * 2412.0 MHz [1] (20.0 dBm)
var reFrequency = regexp.MustCompile(`^\*\s+([0-9]+)(?:\.[0-9]+)?\s+MHz\s+\[([0-9]+)\]`)

// parsePhyInfo reads the output of `iw phy <phy> info`. Disabled channels and
// channels outside the 2.4/5 GHz plan are skipped.
func parsePhyInfo(out []byte) phyCaps {
	var caps phyCaps
	seenBand := make(map[domain.WiFiBand]bool)
	seenChannel := make(map[int]bool)

	const (
		sectionNone = iota
		sectionModes
		sectionFrequencies
	)
	section := sectionNone

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "Supported interface modes:":
			section = sectionModes
			continue
		case line == "Frequencies:":
			section = sectionFrequencies
			continue
		case !strings.HasPrefix(line, "*"):
			section = sectionNone
			continue
		}

		switch section {
		case sectionModes:
			if strings.TrimSpace(strings.TrimPrefix(line, "*")) == "monitor" {
				caps.monitor = true
			}
		case sectionFrequencies:
			if strings.Contains(line, "(disabled)") {
				continue
			}
			m := reFrequency.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			freq, _ := strconv.Atoi(m[1])
			ch := domain.ChannelForFrequency(freq)
			if ch == 0 || seenChannel[ch] {
				continue
			}
			seenChannel[ch] = true
			caps.channels = append(caps.channels, ch)
			if band, err := domain.BandForChannel(ch); err == nil && !seenBand[band] {
				seenBand[band] = true
				caps.bands = append(caps.bands, band)
			}
		}
	}
	return caps
}
