package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/lcalzada-xor/airsight/internal/adapters/oui"
	"go.uber.org/zap"
)

var sources = map[string]string{
	oui.FormatIEEE:  "https://standards-oui.ieee.org/oui/oui.csv",
	oui.FormatManuf: "https://gitlab.com/wireshark/wireshark/-/raw/master/manuf",
}

// maxAge is how old the registry may get before an update is due.
const maxAge = 30 * 24 * time.Hour

func main() {
	dbPath := flag.String("db", "data/oui/ieee_oui.db", "Path to OUI database")
	source := flag.String("source", oui.FormatIEEE, "Source: ieee or wireshark")
	force := flag.Bool("force", false, "Force update even if recent")
	statsOnly := flag.Bool("stats", false, "Print database statistics and exit")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := oui.OpenDatabase(*dbPath, 1000, nil)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	stats, err := db.GetStats(ctx)
	if err != nil {
		logger.Warn("could not get stats", zap.Error(err))
	} else {
		logger.Info("current database",
			zap.Int("entries", stats.TotalEntries),
			zap.String("last_updated", stats.LastUpdated))
		if *statsOnly {
			return
		}
		if last, perr := time.Parse("2006-01-02", stats.LastUpdated); perr == nil &&
			stats.TotalEntries > 0 && !*force && time.Since(last) < maxAge {
			logger.Info("database is recent, use -force to update anyway")
			return
		}
	}

	url, ok := sources[*source]
	if !ok {
		logger.Fatal("unknown source", zap.String("source", *source))
	}

	entries, err := download(ctx, url, *source)
	if err != nil {
		logger.Fatal("failed to download OUI data", zap.Error(err))
	}
	logger.Info("downloaded OUI entries", zap.Int("count", len(entries)))

	err = oui.Import(ctx, db, entries, oui.DefaultImportBatch, func(done int) {
		if *verbose {
			logger.Info("inserted entries", zap.Int("count", done))
		}
	})
	if err != nil {
		logger.Fatal("failed to insert entries", zap.Error(err))
	}

	if stats, err = db.GetStats(ctx); err != nil {
		logger.Fatal("failed to get final stats", zap.Error(err))
	}
	logger.Info("update complete",
		zap.Int("total_entries", stats.TotalEntries),
		zap.String("last_updated", stats.LastUpdated))
}

func download(ctx context.Context, url, format string) ([]oui.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
	}
	return oui.ParseRegistry(resp.Body, format, time.Now())
}
