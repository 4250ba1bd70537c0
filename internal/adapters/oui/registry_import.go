package oui

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Registry source formats understood by ParseRegistry.
const (
	// FormatIEEE is the IEEE oui.csv: Registry,Assignment,Organization Name,Organization Address.
	FormatIEEE = "ieee"
	// FormatMaclookup is Mac Prefix,Vendor Name,Private,Block Type,Last Update.
	FormatMaclookup = "maclookup"
	// FormatManuf is Wireshark's tab separated manuf file.
	FormatManuf = "wireshark"
)

// DefaultImportBatch is the number of rows written per transaction.
const DefaultImportBatch = 1000

var vendorSuffixes = []string{
	" Co., Ltd.", " Inc.", " Inc", " Corporation", " Corp.", " Corp",
	" Ltd.", " Ltd", " Limited", " Co.", " LLC", " GmbH", " S.A.", " AG",
}

// ShortVendor strips legal suffixes and anything after the first comma.
func ShortVendor(vendor string) string {
	vendor = strings.TrimSpace(vendor)
	for _, suffix := range vendorSuffixes {
		vendor = strings.TrimSuffix(vendor, suffix)
	}
	if idx := strings.Index(vendor, ","); idx > 0 {
		vendor = vendor[:idx]
	}
	return strings.TrimSpace(vendor)
}

// ParseRegistry reads a vendor registry in the given format. Rows without
// a prefix or vendor are skipped; malformed CSV rows are skipped too.
func ParseRegistry(r io.Reader, format string, now time.Time) ([]Entry, error) {
	switch format {
	case FormatIEEE:
		return parseCSV(r, now, 1, 2, 3)
	case FormatMaclookup:
		return parseCSV(r, now, 0, 1, -1)
	case FormatManuf:
		return parseManuf(r, now)
	}
	return nil, fmt.Errorf("unknown registry format %q", format)
}

func parseCSV(r io.Reader, now time.Time, prefixCol, vendorCol, addressCol int) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var entries []Entry
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return entries, err
		}
		if len(record) <= vendorCol || len(record) <= prefixCol {
			continue
		}

		prefix := NormalizePrefix(record[prefixCol])
		vendor := strings.TrimSpace(record[vendorCol])
		if len(prefix) != 8 || vendor == "" {
			continue
		}
		entry := Entry{
			Prefix:      prefix,
			Vendor:      vendor,
			VendorShort: ShortVendor(vendor),
			LastUpdated: now,
		}
		if addressCol >= 0 && len(record) > addressCol {
			entry.Address = strings.TrimSpace(record[addressCol])
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// parseManuf reads "XX:XX:XX<tab>Short<tab>Long" lines. Longer (MA-M/MA-S)
// prefixes are skipped since lookups key on 24 bits.
func parseManuf(r io.Reader, now time.Time) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	var entries []Entry
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 || strings.Contains(parts[0], "/") {
			continue
		}

		prefix := NormalizePrefix(parts[0])
		short := strings.TrimSpace(parts[1])
		vendor := short
		if len(parts) >= 3 && strings.TrimSpace(parts[2]) != "" {
			vendor = strings.TrimSpace(parts[2])
		}
		if len(prefix) != 8 || vendor == "" {
			continue
		}
		entries = append(entries, Entry{
			Prefix:      prefix,
			Vendor:      vendor,
			VendorShort: short,
			LastUpdated: now,
		})
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("scanner error: %w", err)
	}
	return entries, nil
}

// Import writes entries in batches of size batch and reports progress
// after each one. A non-positive batch uses DefaultImportBatch.
func Import(ctx context.Context, db *Database, entries []Entry, batch int, progress func(done int)) error {
	if batch <= 0 {
		batch = DefaultImportBatch
	}
	for start := 0; start < len(entries); start += batch {
		end := min(start+batch, len(entries))
		if err := db.BulkInsertOUIs(ctx, entries[start:end]); err != nil {
			return err
		}
		if progress != nil {
			progress(end)
		}
	}
	return nil
}
