package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/lcalzada-xor/airsight/internal/adapters/oui"
	"go.uber.org/zap"
)

func main() {
	csvPath := flag.String("csv", "data/oui/maclookup.csv", "Path to the registry file")
	format := flag.String("format", oui.FormatMaclookup, "File format: maclookup, ieee or wireshark")
	dbPath := flag.String("db", "data/oui/ieee_oui.db", "Path to OUI database")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()
	logger.Info("importing OUI registry", zap.String("file", *csvPath), zap.String("db", *dbPath))

	f, err := os.Open(*csvPath)
	if err != nil {
		logger.Fatal("failed to open registry file", zap.Error(err))
	}
	defer f.Close()

	entries, err := oui.ParseRegistry(f, *format, time.Now())
	if err != nil {
		logger.Fatal("failed to parse registry file", zap.Error(err))
	}

	db, err := oui.OpenDatabase(*dbPath, 1000, nil)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	err = oui.Import(ctx, db, entries, oui.DefaultImportBatch, func(done int) {
		if *verbose {
			logger.Info("inserted entries", zap.Int("count", done))
		}
	})
	if err != nil {
		logger.Fatal("bulk insert failed", zap.Error(err))
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		logger.Fatal("failed to get stats", zap.Error(err))
	}
	logger.Info("import complete",
		zap.Int("parsed", len(entries)),
		zap.Int("total_entries", stats.TotalEntries),
		zap.String("last_updated", stats.LastUpdated))
}
