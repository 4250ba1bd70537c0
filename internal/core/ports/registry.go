package ports

import "github.com/lcalzada-xor/airsight/internal/core/domain"

// SnapshotProvider exposes a point-in-time copy of the discovery model.
type SnapshotProvider interface {
	Snapshot() domain.Snapshot
}
