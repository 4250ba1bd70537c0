package domain

import "time"

// ScanType is how a session gathers observations.
type ScanType string

const (
	ScanBasic   ScanType = "basic"
	ScanMonitor ScanType = "monitor"
	ScanPassive ScanType = "passive"
)

// ScanStatus is the lifecycle status reported to the persistence layer.
type ScanStatus string

const (
	ScanRunning   ScanStatus = "running"
	ScanCompleted ScanStatus = "completed"
	ScanError     ScanStatus = "error"
)

// FrameStats counts frames seen by one session.
type FrameStats struct {
	Processed int64            `json:"frames_processed" yaml:"frames_processed"`
	Malformed int64            `json:"frames_malformed" yaml:"frames_malformed"`
	ByKind    map[string]int64 `json:"frames_by_kind" yaml:"frames_by_kind"`
}

// ScanState describes one interface's scan at a point in time. Counters
// survive Stop and are cleared by the next Start.
type ScanState struct {
	Active         bool          `json:"scanning" yaml:"scanning"`
	Interface      string        `json:"interface" yaml:"interface"`
	Mode           InterfaceMode `json:"mode" yaml:"mode"`
	ScanType       ScanType      `json:"scan_type" yaml:"scan_type"`
	Channels       []int         `json:"channels" yaml:"channels"`
	CurrentChannel int           `json:"current_channel" yaml:"current_channel"`
	Frames         FrameStats    `json:"frames" yaml:"frames"`
	NetworksFound  int           `json:"networks_found" yaml:"networks_found"`
	ClientsFound   int           `json:"clients_found" yaml:"clients_found"`
	StartedAt      time.Time     `json:"scan_start_time" yaml:"scan_start_time"`
	StoppedAt      time.Time     `json:"scan_end_time,omitempty" yaml:"scan_end_time,omitempty"`
	Status         ScanStatus    `json:"status" yaml:"status"`
}

// ScanSession is the metadata handed to the persistence collaborator.
type ScanSession struct {
	ID             string     `json:"id" yaml:"id"`
	Interface      string     `json:"interface" yaml:"interface"`
	ScanType       ScanType   `json:"scan_type" yaml:"scan_type"`
	Channels       []int      `json:"channels" yaml:"channels"`
	StartTime      time.Time  `json:"start_time" yaml:"start_time"`
	EndTime        time.Time  `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	NetworksFound  int        `json:"networks_found" yaml:"networks_found"`
	ClientsFound   int        `json:"clients_found" yaml:"clients_found"`
	FramesCaptured int64      `json:"packets_captured" yaml:"packets_captured"`
	Status         ScanStatus `json:"status" yaml:"status"`
	Error          string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// Snapshot is a read-only copy of the discovery model at one instant.
type Snapshot struct {
	TakenAt      time.Time     `json:"taken_at" yaml:"taken_at"`
	AccessPoints []AccessPoint `json:"networks" yaml:"networks"`
	Clients      []Client      `json:"clients" yaml:"clients"`
	Deauths      []DeauthEvent `json:"deauth_events" yaml:"deauth_events"`
}
