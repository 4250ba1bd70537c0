package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"github.com/lcalzada-xor/airsight/internal/core/ports"
)

// DefaultDeauthCapacity bounds the deauthentication ring.
const DefaultDeauthCapacity = 512

type unknownVendor struct{}

func (unknownVendor) ResolveVendor(string) string { return domain.UnknownVendor }

// DiscoveryStore is the in-memory model of access points and clients seen
// during one scan session. Writes come from the ingest path; any number of
// readers may take snapshots concurrently.
type DiscoveryStore struct {
	vendors ports.VendorResolver
	now     func() time.Time
	subject subject

	mu      sync.RWMutex
	aps     map[string]*apRecord
	clients map[string]*clientRecord

	deauths    []domain.DeauthEvent
	deauthNext int
	deauthCap  int
}

// NewDiscoveryStore creates an empty store. A nil resolver reports every
// vendor as unknown.
func NewDiscoveryStore(vendors ports.VendorResolver) *DiscoveryStore {
	if vendors == nil {
		vendors = unknownVendor{}
	}
	return &DiscoveryStore{
		vendors:   vendors,
		now:       time.Now,
		aps:       make(map[string]*apRecord),
		clients:   make(map[string]*clientRecord),
		deauthCap: DefaultDeauthCapacity,
	}
}

// AddObserver registers o for record creation events.
func (s *DiscoveryStore) AddObserver(o Observer) {
	s.subject.add(o)
}

func (s *DiscoveryStore) stamp(f *domain.Frame) {
	if f.Timestamp.IsZero() {
		f.Timestamp = s.now()
	}
}

// UpsertBeacon creates or updates the access point named by f.BSSID.
func (s *DiscoveryStore) UpsertBeacon(f domain.Frame) {
	if f.BSSID == "" {
		return
	}
	s.stamp(&f)

	s.mu.Lock()
	rec, ok := s.aps[f.BSSID]
	if ok {
		mergeBeacon(&rec.ap, f)
		rec.ap.BeaconCount++
		s.mu.Unlock()
		return
	}

	enc := f.Encryption
	if enc == "" {
		enc = domain.EncryptionUnknown
	}
	rec = &apRecord{
		ap: domain.AccessPoint{
			BSSID:       f.BSSID,
			SSID:        f.SSID,
			Channel:     f.Channel,
			Frequency:   frequencyOf(f),
			Signal:      f.Signal,
			Encryption:  enc,
			Vendor:      s.vendors.ResolveVendor(f.BSSID),
			FirstSeen:   f.Timestamp,
			LastSeen:    f.Timestamp,
			BeaconCount: 1,
			Clients:     []string{},
		},
		clients: make(map[string]struct{}),
	}
	s.aps[f.BSSID] = rec
	added := rec.ap.Clone()
	s.mu.Unlock()

	s.subject.accessPointAdded(added)
}

// UpsertProbe creates or updates the client named by f.Source and records
// the probed SSID. Wildcard probes only refresh the client.
func (s *DiscoveryStore) UpsertProbe(f domain.Frame) {
	if f.Source == "" {
		return
	}
	s.stamp(&f)

	s.mu.Lock()
	rec, created := s.clientLocked(f.Source, f.Timestamp)
	touch(&rec.client.FirstSeen, &rec.client.LastSeen, f.Timestamp)
	if f.Signal != domain.NoSignal || created {
		rec.client.Signal = f.Signal
	}
	rec.addProbe(f.SSID)
	added := rec.client.Clone()
	s.mu.Unlock()

	if created {
		s.subject.clientAdded(added)
	}
}

func (s *DiscoveryStore) clientLocked(mac string, ts time.Time) (*clientRecord, bool) {
	if rec, ok := s.clients[mac]; ok {
		return rec, false
	}
	rec := &clientRecord{
		client: domain.Client{
			MAC:         mac,
			Vendor:      s.vendors.ResolveVendor(mac),
			Signal:      domain.NoSignal,
			FirstSeen:   ts,
			LastSeen:    ts,
			ProbedSSIDs: []string{},
		},
		probed: make(map[string]struct{}),
	}
	s.clients[mac] = rec
	return rec, true
}

// ObserveProbeResponse refreshes a known access point from a probe response.
// Unknown BSSIDs are ignored and the beacon count is left alone. It reports
// whether an access point was updated.
func (s *DiscoveryStore) ObserveProbeResponse(f domain.Frame) bool {
	if f.BSSID == "" {
		return false
	}
	s.stamp(&f)

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.aps[f.BSSID]
	if !ok {
		return false
	}
	mergeBeacon(&rec.ap, f)
	return true
}

// Associate links a client to an access point when both records exist.
func (s *DiscoveryStore) Associate(clientMAC, bssid string, ts time.Time) bool {
	if clientMAC == "" || bssid == "" || clientMAC == bssid {
		return false
	}
	if ts.IsZero() {
		ts = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ap, ok := s.aps[bssid]
	if !ok {
		return false
	}
	client, ok := s.clients[clientMAC]
	if !ok {
		return false
	}
	ap.addClient(clientMAC)
	client.client.AssociatedBSSID = bssid
	touch(&client.client.FirstSeen, &client.client.LastSeen, ts)
	return true
}

// RecordDeauth appends a deauthentication event, overwriting the oldest
// once the ring is full.
func (s *DiscoveryStore) RecordDeauth(f domain.Frame) {
	s.stamp(&f)
	ev := domain.DeauthEvent{
		Source:      f.Source,
		Destination: f.Destination,
		BSSID:       f.BSSID,
		Reason:      f.Reason,
		Signal:      f.Signal,
		Timestamp:   f.Timestamp,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.deauths) < s.deauthCap {
		s.deauths = append(s.deauths, ev)
		return
	}
	s.deauths[s.deauthNext] = ev
	s.deauthNext = (s.deauthNext + 1) % s.deauthCap
}

// Reset drops every record. Called at the start of a new scan session.
func (s *DiscoveryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aps = make(map[string]*apRecord)
	s.clients = make(map[string]*clientRecord)
	s.deauths = nil
	s.deauthNext = 0
}

// Snapshot deep-copies the model. Access points and clients are ordered by
// address, deauth events oldest first.
func (s *DiscoveryStore) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := domain.Snapshot{
		TakenAt:      s.now(),
		AccessPoints: make([]domain.AccessPoint, 0, len(s.aps)),
		Clients:      make([]domain.Client, 0, len(s.clients)),
		Deauths:      make([]domain.DeauthEvent, 0, len(s.deauths)),
	}
	for _, rec := range s.aps {
		snap.AccessPoints = append(snap.AccessPoints, rec.ap.Clone())
	}
	for _, rec := range s.clients {
		snap.Clients = append(snap.Clients, rec.client.Clone())
	}
	snap.Deauths = append(snap.Deauths, s.deauths[s.deauthNext:]...)
	snap.Deauths = append(snap.Deauths, s.deauths[:s.deauthNext]...)

	sort.Slice(snap.AccessPoints, func(i, j int) bool {
		return snap.AccessPoints[i].BSSID < snap.AccessPoints[j].BSSID
	})
	sort.Slice(snap.Clients, func(i, j int) bool {
		return snap.Clients[i].MAC < snap.Clients[j].MAC
	})
	return snap
}

func (s *DiscoveryStore) AccessPoint(bssid string) (domain.AccessPoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.aps[bssid]
	if !ok {
		return domain.AccessPoint{}, false
	}
	return rec.ap.Clone(), true
}

func (s *DiscoveryStore) Client(mac string) (domain.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.clients[mac]
	if !ok {
		return domain.Client{}, false
	}
	return rec.client.Clone(), true
}

// Counts returns the number of access points and clients.
func (s *DiscoveryStore) Counts() (accessPoints, clients int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.aps), len(s.clients)
}
