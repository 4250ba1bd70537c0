package storage

import (
	"fmt"
	"time"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"github.com/lcalzada-xor/airsight/internal/core/ports"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

const batchSize = 100

// SQLiteAdapter implements ports.Storage using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// AccessPointModel is the GORM model for access points.
type AccessPointModel struct {
	BSSID       string `gorm:"column:bssid;primaryKey"`
	SSID        string `gorm:"column:ssid;index"`
	Channel     int
	Frequency   int
	Signal      int
	Encryption  string `gorm:"index"`
	Vendor      string
	FirstSeen   time.Time
	LastSeen    time.Time `gorm:"index"`
	BeaconCount int

	Clients []APClientModel `gorm:"foreignKey:BSSID;references:BSSID"`
}

// APClientModel links a station to the access point it was seen with.
type APClientModel struct {
	ID        uint   `gorm:"primaryKey"`
	BSSID     string `gorm:"column:bssid;uniqueIndex:idx_ap_client"`
	ClientMAC string `gorm:"uniqueIndex:idx_ap_client"`
}

// ClientModel is the GORM model for stations.
type ClientModel struct {
	MAC             string `gorm:"primaryKey"`
	Vendor          string
	Signal          int
	FirstSeen       time.Time
	LastSeen        time.Time `gorm:"index"`
	AssociatedBSSID string `gorm:"column:associated_bssid"`

	ProbedSSIDs []ProbeModel `gorm:"foreignKey:ClientMAC;references:MAC"`
}

// ProbeModel stores SSIDs probed by a station.
type ProbeModel struct {
	ID        uint   `gorm:"primaryKey"`
	ClientMAC string `gorm:"uniqueIndex:idx_client_probe"`
	SSID      string `gorm:"column:ssid;uniqueIndex:idx_client_probe"`
}

// SessionModel is the GORM model for scan sessions.
type SessionModel struct {
	ID             string `gorm:"primaryKey"`
	Interface      string
	ScanType       string
	Channels       string // JSON encoded []int
	StartTime      time.Time `gorm:"index"`
	EndTime        time.Time
	NetworksFound  int
	ClientsFound   int
	FramesCaptured int64
	Status         string
	Error          string
}

// NewSQLiteAdapter opens the database, installs the tracing plugin and
// migrates the schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("install tracing plugin: %w", err)
	}
	if err := migrate(db); err != nil {
		return nil, err
	}
	return &SQLiteAdapter{db: db}, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&AccessPointModel{}, &APClientModel{}, &ClientModel{}, &ProbeModel{}, &SessionModel{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// SaveAccessPoints upserts access points by BSSID in one transaction.
// FirstSeen keeps the earliest stored value; client links only accumulate.
func (a *SQLiteAdapter) SaveAccessPoints(aps []domain.AccessPoint) error {
	if len(aps) == 0 {
		return nil
	}

	models := make([]AccessPointModel, len(aps))
	var links []APClientModel
	for i, ap := range aps {
		models[i] = toAccessPointModel(ap)
		for _, mac := range ap.Clients {
			links = append(links, APClientModel{BSSID: ap.BSSID, ClientMAC: mac})
		}
	}

	return a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "bssid"}},
			DoUpdates: clause.Assignments(map[string]any{
				"ssid":         gorm.Expr("CASE WHEN excluded.ssid <> '' THEN excluded.ssid ELSE access_point_models.ssid END"),
				"channel":      gorm.Expr("excluded.channel"),
				"frequency":    gorm.Expr("excluded.frequency"),
				"signal":       gorm.Expr("excluded.signal"),
				"encryption":   gorm.Expr("excluded.encryption"),
				"vendor":       gorm.Expr("excluded.vendor"),
				"first_seen":   gorm.Expr("MIN(access_point_models.first_seen, excluded.first_seen)"),
				"last_seen":    gorm.Expr("excluded.last_seen"),
				"beacon_count": gorm.Expr("excluded.beacon_count"),
			}),
		}).CreateInBatches(models, batchSize).Error; err != nil {
			return fmt.Errorf("upsert access points: %w", err)
		}
		if len(links) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(links, batchSize).Error; err != nil {
			return fmt.Errorf("save client links: %w", err)
		}
		return nil
	})
}

// SaveClients upserts stations by MAC together with their probed SSIDs.
func (a *SQLiteAdapter) SaveClients(clients []domain.Client) error {
	if len(clients) == 0 {
		return nil
	}

	models := make([]ClientModel, len(clients))
	var probes []ProbeModel
	for i, c := range clients {
		models[i] = toClientModel(c)
		for _, ssid := range c.ProbedSSIDs {
			probes = append(probes, ProbeModel{ClientMAC: c.MAC, SSID: ssid})
		}
	}

	return a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "mac"}},
			DoUpdates: clause.Assignments(map[string]any{
				"vendor":           gorm.Expr("excluded.vendor"),
				"signal":           gorm.Expr("excluded.signal"),
				"first_seen":       gorm.Expr("MIN(client_models.first_seen, excluded.first_seen)"),
				"last_seen":        gorm.Expr("excluded.last_seen"),
				"associated_bssid": gorm.Expr("CASE WHEN excluded.associated_bssid <> '' THEN excluded.associated_bssid ELSE client_models.associated_bssid END"),
			}),
		}).CreateInBatches(models, batchSize).Error; err != nil {
			return fmt.Errorf("upsert clients: %w", err)
		}
		if len(probes) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(probes, batchSize).Error; err != nil {
			return fmt.Errorf("save probes: %w", err)
		}
		return nil
	})
}

// SaveSession inserts or replaces a session record.
func (a *SQLiteAdapter) SaveSession(s domain.ScanSession) error {
	model := toSessionModel(s)
	if err := a.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error; err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

// ListAccessPoints returns every stored access point ordered by BSSID.
func (a *SQLiteAdapter) ListAccessPoints() ([]domain.AccessPoint, error) {
	var models []AccessPointModel
	err := a.db.
		Preload("Clients", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("bssid").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	aps := make([]domain.AccessPoint, len(models))
	for i, m := range models {
		aps[i] = toAccessPoint(m)
	}
	return aps, nil
}

// ListClients returns every stored station ordered by MAC.
func (a *SQLiteAdapter) ListClients() ([]domain.Client, error) {
	var models []ClientModel
	err := a.db.
		Preload("ProbedSSIDs", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("mac").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	clients := make([]domain.Client, len(models))
	for i, m := range models {
		clients[i] = toClient(m)
	}
	return clients, nil
}

// ListSessions returns the most recent sessions first. A non-positive limit
// returns all of them.
func (a *SQLiteAdapter) ListSessions(limit int) ([]domain.ScanSession, error) {
	query := a.db.Order("start_time desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []SessionModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	sessions := make([]domain.ScanSession, len(models))
	for i, m := range models {
		sessions[i] = toSession(m)
	}
	return sessions, nil
}

func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure interface compliance
var _ ports.Storage = (*SQLiteAdapter)(nil)
