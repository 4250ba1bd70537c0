package oui

import (
	"context"
	"errors"
	"time"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"go.uber.org/zap"
)

const (
	domainUnknown = domain.UnknownVendor

	// RandomizedVendor is reported for locally administered addresses.
	RandomizedVendor = "Randomized"
)

// CommonOUIs is the built-in vendor table used when no registry database is
// available, and as the registry's fallback.
var CommonOUIs = map[string]string{
	"00:11:22": "Cisco Systems",
	"00:1B:63": "Apple Inc.",
	"00:26:BB": "Apple Inc.",
	"28:CF:E9": "Apple Inc.",
	"00:50:56": "VMware Inc.",
	"00:0C:29": "VMware Inc.",
	"08:00:27": "Oracle VirtualBox",
	"00:1C:42": "Parallels Inc.",
	"00:0F:AC": "IEEE 802.11",
	"00:14:6C": "Netgear",
	"00:18:E7": "Cameo Communications",
	"00:1D:7E": "Cisco-Linksys",
	"00:24:01": "D-Link",
	"14:CC:20": "TP-Link",
	"50:C7:BF": "TP-Link",
	"B8:27:EB": "Raspberry Pi Foundation",
	"DC:A6:32": "Raspberry Pi Trading",
	"F0:9F:C2": "Ubiquiti Networks",
	"24:A4:3C": "Ubiquiti Networks",
	"00:0B:86": "Aruba Networks",
	"34:FC:B9": "Hewlett Packard Enterprise",
	"3C:5A:B4": "Google",
	"F4:F5:D8": "Google",
	"AC:84:C6": "TP-Link",
	"00:1A:11": "Google",
	"FC:EC:DA": "Ubiquiti Networks",
	"E0:63:DA": "Ubiquiti Networks",
	"C0:25:E9": "TP-Link",
	"00:E0:4C": "Realtek Semiconductor",
	"00:C0:CA": "Alfa Inc.",
}

// Open builds the lookup chain: the registry database at dbPath (when it can
// be opened) backed by CommonOUIs. An empty dbPath skips the database.
func Open(dbPath string, cacheSize int, logger *zap.Logger) VendorRepository {
	static := NewStaticRepository(CommonOUIs)
	if dbPath == "" {
		return static
	}

	db, err := OpenDatabase(dbPath, cacheSize, static)
	if err != nil {
		logger.Warn("OUI database unavailable, using built-in table",
			zap.String("path", dbPath), zap.Error(err))
		return static
	}

	if stats, err := db.GetStats(context.Background()); err == nil {
		logger.Info("OUI database loaded",
			zap.Int("entries", stats.TotalEntries),
			zap.String("last_updated", stats.LastUpdated))
	}
	return db
}

// Resolver adapts a VendorRepository to ports.VendorResolver.
type Resolver struct {
	repo    VendorRepository
	timeout time.Duration
	logger  *zap.Logger
}

// NewResolver wraps repo. Lookups are bounded to 200ms each.
func NewResolver(repo VendorRepository, logger *zap.Logger) *Resolver {
	return &Resolver{repo: repo, timeout: 200 * time.Millisecond, logger: logger}
}

// ResolveVendor never fails: unparseable and unknown addresses map to
// domain.UnknownVendor, locally administered ones to RandomizedVendor.
func (r *Resolver) ResolveVendor(mac string) string {
	addr, err := ParseMAC(mac)
	if err != nil {
		return domainUnknown
	}
	if addr.IsRandomized() {
		return RandomizedVendor
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	vendor, err := r.repo.LookupVendor(ctx, addr)
	if err != nil {
		if !errors.Is(err, ErrVendorNotFound) {
			r.logger.Debug("vendor lookup failed", zap.String("mac", addr.String()), zap.Error(err))
		}
		return domainUnknown
	}
	if vendor == "" {
		return domainUnknown
	}
	return vendor
}
