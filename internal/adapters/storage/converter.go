package storage

import (
	"encoding/json"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
)

func toAccessPointModel(ap domain.AccessPoint) AccessPointModel {
	return AccessPointModel{
		BSSID:       ap.BSSID,
		SSID:        ap.SSID,
		Channel:     ap.Channel,
		Frequency:   ap.Frequency,
		Signal:      ap.Signal,
		Encryption:  string(ap.Encryption),
		Vendor:      ap.Vendor,
		FirstSeen:   ap.FirstSeen,
		LastSeen:    ap.LastSeen,
		BeaconCount: ap.BeaconCount,
	}
}

func toAccessPoint(m AccessPointModel) domain.AccessPoint {
	clients := make([]string, len(m.Clients))
	for i, c := range m.Clients {
		clients[i] = c.ClientMAC
	}
	return domain.AccessPoint{
		BSSID:       m.BSSID,
		SSID:        m.SSID,
		Channel:     m.Channel,
		Frequency:   m.Frequency,
		Signal:      m.Signal,
		Encryption:  domain.ParseEncryption(m.Encryption),
		Vendor:      m.Vendor,
		FirstSeen:   m.FirstSeen,
		LastSeen:    m.LastSeen,
		BeaconCount: m.BeaconCount,
		Clients:     clients,
	}
}

func toClientModel(c domain.Client) ClientModel {
	return ClientModel{
		MAC:             c.MAC,
		Vendor:          c.Vendor,
		Signal:          c.Signal,
		FirstSeen:       c.FirstSeen,
		LastSeen:        c.LastSeen,
		AssociatedBSSID: c.AssociatedBSSID,
	}
}

func toClient(m ClientModel) domain.Client {
	probes := make([]string, len(m.ProbedSSIDs))
	for i, p := range m.ProbedSSIDs {
		probes[i] = p.SSID
	}
	return domain.Client{
		MAC:             m.MAC,
		Vendor:          m.Vendor,
		Signal:          m.Signal,
		FirstSeen:       m.FirstSeen,
		LastSeen:        m.LastSeen,
		ProbedSSIDs:     probes,
		AssociatedBSSID: m.AssociatedBSSID,
	}
}

func toSessionModel(s domain.ScanSession) SessionModel {
	channels, _ := json.Marshal(s.Channels)
	return SessionModel{
		ID:             s.ID,
		Interface:      s.Interface,
		ScanType:       string(s.ScanType),
		Channels:       string(channels),
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		NetworksFound:  s.NetworksFound,
		ClientsFound:   s.ClientsFound,
		FramesCaptured: s.FramesCaptured,
		Status:         string(s.Status),
		Error:          s.Error,
	}
}

func toSession(m SessionModel) domain.ScanSession {
	channels := []int{}
	if m.Channels != "" {
		_ = json.Unmarshal([]byte(m.Channels), &channels)
	}
	if channels == nil {
		channels = []int{}
	}
	return domain.ScanSession{
		ID:             m.ID,
		Interface:      m.Interface,
		ScanType:       domain.ScanType(m.ScanType),
		Channels:       channels,
		StartTime:      m.StartTime,
		EndTime:        m.EndTime,
		NetworksFound:  m.NetworksFound,
		ClientsFound:   m.ClientsFound,
		FramesCaptured: m.FramesCaptured,
		Status:         domain.ScanStatus(m.Status),
		Error:          m.Error,
	}
}
