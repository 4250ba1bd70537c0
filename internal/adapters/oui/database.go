package oui

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Database looks vendors up in an sqlite copy of the IEEE OUI registry.
// Misses fall through to an optional fallback repository.
type Database struct {
	db       *sql.DB
	cache    *Cache
	mu       sync.RWMutex
	fallback VendorRepository
	closed   bool

	lookupStmt *sql.Stmt
}

// Entry represents a single OUI registry row.
type Entry struct {
	Prefix      string
	Vendor      string
	VendorShort string
	Address     string
	Country     string
	LastUpdated time.Time
}

// Stats describes the registry contents.
type Stats struct {
	TotalEntries int
	CacheHits    int64
	CacheMisses  int64
	LastUpdated  string
}

const upsertEntry = `
INSERT OR REPLACE INTO oui_registry (prefix, vendor, vendor_short, address, country, last_updated)
VALUES (?, ?, ?, ?, ?, ?)`

// OpenDatabase opens (creating if needed) the registry at dbPath.
func OpenDatabase(dbPath string, cacheSize int, fallback VendorRepository) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, &DatabaseError{Op: "open", Err: err}
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &DatabaseError{Op: "ping", Err: err}
	}

	o := &Database{
		db:       db,
		cache:    NewCache(cacheSize),
		fallback: fallback,
	}

	if err := o.initializeSchema(); err != nil {
		db.Close()
		return nil, &DatabaseError{Op: "initialize_schema", Err: err}
	}

	stmt, err := db.Prepare("SELECT COALESCE(NULLIF(vendor_short, ''), vendor) FROM oui_registry WHERE prefix = ?")
	if err != nil {
		db.Close()
		return nil, &DatabaseError{Op: "prepare_statement", Err: err}
	}
	o.lookupStmt = stmt

	return o, nil
}

func (o *Database) initializeSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS oui_registry (
		prefix TEXT PRIMARY KEY,
		vendor TEXT NOT NULL,
		vendor_short TEXT,
		address TEXT,
		country TEXT,
		last_updated INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_vendor ON oui_registry(vendor);
	`
	if _, err := o.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// LookupVendor checks the cache, then the registry, then the fallback.
func (o *Database) LookupVendor(ctx context.Context, mac MACAddress) (string, error) {
	o.mu.RLock()
	closed := o.closed
	o.mu.RUnlock()
	if closed {
		return "", ErrRepositoryClosed
	}

	if !mac.IsValid() {
		return "", ErrInvalidMAC
	}

	prefix := mac.OUI()
	if vendor, ok := o.cache.Get(prefix); ok {
		return vendor, nil
	}

	var vendor string
	err := o.lookupStmt.QueryRowContext(ctx, prefix).Scan(&vendor)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if v, ok := o.lookupFallback(ctx, mac); ok {
			o.cache.Set(prefix, v)
			return v, nil
		}
		return domainUnknown, ErrVendorNotFound
	case err != nil:
		if v, ok := o.lookupFallback(ctx, mac); ok {
			return v, nil
		}
		return "", &DatabaseError{Op: "lookup", Err: err}
	}

	o.cache.Set(prefix, vendor)
	return vendor, nil
}

func (o *Database) lookupFallback(ctx context.Context, mac MACAddress) (string, bool) {
	if o.fallback == nil {
		return "", false
	}
	v, err := o.fallback.LookupVendor(ctx, mac)
	if err != nil || v == "" || v == domainUnknown {
		return "", false
	}
	return v, true
}

// InsertOUI inserts or replaces a single entry.
func (o *Database) InsertOUI(ctx context.Context, entry Entry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrRepositoryClosed
	}

	_, err := o.db.ExecContext(ctx, upsertEntry,
		NormalizePrefix(entry.Prefix),
		entry.Vendor,
		entry.VendorShort,
		entry.Address,
		entry.Country,
		entry.LastUpdated.Unix(),
	)
	if err != nil {
		return &DatabaseError{Op: "insert", Err: err}
	}
	o.cache.Clear()
	return nil
}

// BulkInsertOUIs inserts entries in one transaction.
func (o *Database) BulkInsertOUIs(ctx context.Context, entries []Entry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrRepositoryClosed
	}

	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return &DatabaseError{Op: "begin_transaction", Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertEntry)
	if err != nil {
		return &DatabaseError{Op: "prepare_bulk_insert", Err: err}
	}
	defer stmt.Close()

	for _, entry := range entries {
		if _, err := stmt.ExecContext(ctx,
			NormalizePrefix(entry.Prefix),
			entry.Vendor,
			entry.VendorShort,
			entry.Address,
			entry.Country,
			entry.LastUpdated.Unix(),
		); err != nil {
			return &DatabaseError{Op: "bulk_insert_entry", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &DatabaseError{Op: "commit_transaction", Err: err}
	}
	o.cache.Clear()
	return nil
}

// GetStats returns the entry count, newest update date and cache counters.
func (o *Database) GetStats(ctx context.Context) (Stats, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return Stats{}, ErrRepositoryClosed
	}

	var count int
	var lastUpdateUnix int64
	err := o.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(MAX(last_updated), 0) FROM oui_registry",
	).Scan(&count, &lastUpdateUnix)
	if err != nil {
		return Stats{}, &DatabaseError{Op: "get_stats", Err: err}
	}

	cs := o.cache.Stats()
	return Stats{
		TotalEntries: count,
		CacheHits:    cs.Hits,
		CacheMisses:  cs.Misses,
		LastUpdated:  time.Unix(lastUpdateUnix, 0).UTC().Format("2006-01-02"),
	}, nil
}

// Close releases the statement and the connection pool. Safe to call twice.
func (o *Database) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true

	if o.lookupStmt != nil {
		o.lookupStmt.Close()
	}
	o.cache.Clear()
	return o.db.Close()
}

// NormalizePrefix converts "00-1b-63", "001B63" or "00:1B:63:xx" to "00:1B:63".
func NormalizePrefix(mac string) string {
	mac = strings.ToUpper(strings.TrimSpace(mac))
	mac = strings.ReplaceAll(mac, "-", ":")
	mac = strings.ReplaceAll(mac, ".", ":")

	if len(mac) >= 8 && mac[2] == ':' && mac[5] == ':' {
		return mac[:8]
	}
	if !strings.Contains(mac, ":") && len(mac) >= 6 {
		return fmt.Sprintf("%s:%s:%s", mac[0:2], mac[2:4], mac[4:6])
	}
	return mac
}
