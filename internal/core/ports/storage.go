package ports

import "github.com/lcalzada-xor/airsight/internal/core/domain"

// SessionRecorder receives scan-session metadata on start and stop.
type SessionRecorder interface {
	SaveSession(session domain.ScanSession) error
}

// Storage defines the behavior for data persistence.
type Storage interface {
	SessionRecorder

	// SaveAccessPoints upserts records keyed by BSSID.
	SaveAccessPoints(aps []domain.AccessPoint) error
	// SaveClients upserts records keyed by MAC, including probed SSIDs.
	SaveClients(clients []domain.Client) error

	ListAccessPoints() ([]domain.AccessPoint, error)
	ListClients() ([]domain.Client, error)
	// ListSessions returns the most recent sessions first.
	ListSessions(limit int) ([]domain.ScanSession, error)

	// Close closes the storage connection.
	Close() error
}
