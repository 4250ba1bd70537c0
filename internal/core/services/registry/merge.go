package registry

import (
	"sort"
	"time"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
)

// apRecord keeps a set alongside the ordered client list.
type apRecord struct {
	ap      domain.AccessPoint
	clients map[string]struct{}
}

type clientRecord struct {
	client domain.Client
	probed map[string]struct{}
}

// touch widens the seen window to include ts.
func touch(first, last *time.Time, ts time.Time) {
	if ts.After(*last) {
		*last = ts
	}
	if ts.Before(*first) {
		*first = ts
	}
}

// mergeBeacon applies a later beacon (or probe response) to an existing AP.
// SSID, channel and encryption are only backfilled, never overwritten.
func mergeBeacon(ap *domain.AccessPoint, f domain.Frame) {
	touch(&ap.FirstSeen, &ap.LastSeen, f.Timestamp)

	if f.Signal != domain.NoSignal {
		ap.Signal = f.Signal
	}
	if ap.SSID == "" && f.SSID != "" {
		ap.SSID = f.SSID
	}
	if ap.Channel == 0 && f.Channel != 0 {
		ap.Channel = f.Channel
		ap.Frequency = frequencyOf(f)
	}
	if (ap.Encryption == "" || ap.Encryption == domain.EncryptionUnknown) && f.Encryption != "" {
		ap.Encryption = f.Encryption
	}
}

func frequencyOf(f domain.Frame) int {
	if freq := domain.FrequencyForChannel(f.Channel); freq != 0 {
		return freq
	}
	return f.Frequency
}

func (r *apRecord) addClient(mac string) {
	if _, ok := r.clients[mac]; ok {
		return
	}
	r.clients[mac] = struct{}{}
	r.ap.Clients = append(r.ap.Clients, mac)
}

func (r *clientRecord) addProbe(ssid string) {
	if ssid == "" {
		return
	}
	if _, ok := r.probed[ssid]; ok {
		return
	}
	r.probed[ssid] = struct{}{}
	r.client.ProbedSSIDs = append(r.client.ProbedSSIDs, ssid)
}

// MergeSnapshots combines snapshots taken by sessions on different
// interfaces. Records sharing a key are folded: the most recently seen copy
// wins for point-in-time fields, seen windows widen, beacon counts add up
// and client and probe lists are unioned in first-seen order.
func MergeSnapshots(snaps ...domain.Snapshot) domain.Snapshot {
	out := domain.Snapshot{
		AccessPoints: []domain.AccessPoint{},
		Clients:      []domain.Client{},
		Deauths:      []domain.DeauthEvent{},
	}
	aps := map[string]*apRecord{}
	clients := map[string]*clientRecord{}
	var apOrder, clientOrder []string

	for _, snap := range snaps {
		if snap.TakenAt.After(out.TakenAt) {
			out.TakenAt = snap.TakenAt
		}
		for _, ap := range snap.AccessPoints {
			rec, ok := aps[ap.BSSID]
			if !ok {
				rec = &apRecord{ap: ap.Clone(), clients: map[string]struct{}{}}
				rec.ap.Clients = nil
				aps[ap.BSSID] = rec
				apOrder = append(apOrder, ap.BSSID)
			} else {
				rec.foldAccessPoint(ap)
			}
			for _, mac := range ap.Clients {
				rec.addClient(mac)
			}
		}
		for _, c := range snap.Clients {
			rec, ok := clients[c.MAC]
			if !ok {
				rec = &clientRecord{client: c.Clone(), probed: map[string]struct{}{}}
				rec.client.ProbedSSIDs = nil
				clients[c.MAC] = rec
				clientOrder = append(clientOrder, c.MAC)
			} else {
				rec.foldClient(c)
			}
			for _, ssid := range c.ProbedSSIDs {
				rec.addProbe(ssid)
			}
		}
		out.Deauths = append(out.Deauths, snap.Deauths...)
	}

	for _, bssid := range apOrder {
		ap := aps[bssid].ap
		if ap.Clients == nil {
			ap.Clients = []string{}
		}
		out.AccessPoints = append(out.AccessPoints, ap)
	}
	for _, mac := range clientOrder {
		c := clients[mac].client
		if c.ProbedSSIDs == nil {
			c.ProbedSSIDs = []string{}
		}
		out.Clients = append(out.Clients, c)
	}
	sort.SliceStable(out.Deauths, func(i, j int) bool {
		return out.Deauths[i].Timestamp.Before(out.Deauths[j].Timestamp)
	})
	return out
}

func (r *apRecord) foldAccessPoint(ap domain.AccessPoint) {
	first, last := r.ap.FirstSeen, r.ap.LastSeen
	count, members := r.ap.BeaconCount+ap.BeaconCount, r.ap.Clients
	if ap.LastSeen.After(r.ap.LastSeen) {
		prev := r.ap
		r.ap = ap
		if r.ap.SSID == "" {
			r.ap.SSID = prev.SSID
		}
		if r.ap.Vendor == "" {
			r.ap.Vendor = prev.Vendor
		}
	}
	if ap.FirstSeen.Before(first) {
		first = ap.FirstSeen
	}
	if ap.LastSeen.After(last) {
		last = ap.LastSeen
	}
	r.ap.FirstSeen, r.ap.LastSeen = first, last
	r.ap.BeaconCount, r.ap.Clients = count, members
}

func (r *clientRecord) foldClient(c domain.Client) {
	first, last := r.client.FirstSeen, r.client.LastSeen
	probes := r.client.ProbedSSIDs
	if c.LastSeen.After(r.client.LastSeen) {
		prev := r.client
		r.client = c
		if r.client.AssociatedBSSID == "" {
			r.client.AssociatedBSSID = prev.AssociatedBSSID
		}
		if r.client.Vendor == "" {
			r.client.Vendor = prev.Vendor
		}
	}
	if c.FirstSeen.Before(first) {
		first = c.FirstSeen
	}
	if c.LastSeen.After(last) {
		last = c.LastSeen
	}
	r.client.FirstSeen, r.client.LastSeen = first, last
	r.client.ProbedSSIDs = probes
}
