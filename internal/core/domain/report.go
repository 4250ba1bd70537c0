package domain

import "time"

// Severity grades a threat finding.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ThreatKind names the heuristic that produced a finding.
type ThreatKind string

const (
	ThreatEvilTwin ThreatKind = "evil-twin"
	ThreatRogueAP  ThreatKind = "rogue-ap"
)

// ThreatLevel is the overall verdict of an analysis run.
type ThreatLevel string

const (
	ThreatLevelNone   ThreatLevel = "none"
	ThreatLevelLow    ThreatLevel = "low"
	ThreatLevelMedium ThreatLevel = "medium"
	ThreatLevelHigh   ThreatLevel = "high"
)

// ThreatFinding is one detected anomaly. Findings are recomputed on every
// analysis and never mutated afterwards.
type ThreatFinding struct {
	Kind        ThreatKind    `json:"type" yaml:"type"`
	Severity    Severity      `json:"severity" yaml:"severity"`
	Networks    []AccessPoint `json:"networks" yaml:"networks"`
	Reasons     []string      `json:"reasons" yaml:"reasons"`
	Score       int           `json:"suspicion_score,omitempty" yaml:"suspicion_score,omitempty"`
	Description string        `json:"description" yaml:"description"`
	DetectedAt  time.Time     `json:"detected_at" yaml:"detected_at"`
}

// DeauthSummary aggregates deauthentication frames seen for one BSSID.
type DeauthSummary struct {
	BSSID    string    `json:"bssid" yaml:"bssid"`
	Count    int       `json:"count" yaml:"count"`
	LastSeen time.Time `json:"last_seen" yaml:"last_seen"`
}

// ThreatReport groups findings by kind.
type ThreatReport struct {
	EvilTwins      []ThreatFinding `json:"evil_twins" yaml:"evil_twins"`
	RogueAPs       []ThreatFinding `json:"rogue_aps" yaml:"rogue_aps"`
	DeauthActivity []DeauthSummary `json:"deauth_activity" yaml:"deauth_activity"`
	TotalThreats   int             `json:"total_threats" yaml:"total_threats"`
	Level          ThreatLevel     `json:"threat_level" yaml:"threat_level"`
}

// Findings returns evil-twin then rogue-AP findings as one slice.
func (r ThreatReport) Findings() []ThreatFinding {
	out := make([]ThreatFinding, 0, len(r.EvilTwins)+len(r.RogueAPs))
	out = append(out, r.EvilTwins...)
	return append(out, r.RogueAPs...)
}

// ChannelScore is the interference estimate for one occupied channel.
type ChannelScore struct {
	Channel           int     `json:"channel" yaml:"channel"`
	NetworkCount      int     `json:"network_count" yaml:"network_count"`
	InterferenceScore float64 `json:"interference_score" yaml:"interference_score"`
	Quality           string  `json:"recommendation" yaml:"recommendation"`
}

// ChannelReport is the channel utilization analysis.
type ChannelReport struct {
	Utilization     map[int]int    `json:"channel_utilization" yaml:"channel_utilization"`
	Ranked          []ChannelScore `json:"ranked_channels" yaml:"ranked_channels"`
	Optimal         []ChannelScore `json:"optimal_channels" yaml:"optimal_channels"`
	Congestion      string         `json:"congestion_level" yaml:"congestion_level"`
	Recommendations []string       `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}

// SecurityReport is the security posture of a set of networks.
type SecurityReport struct {
	TotalNetworks   int                `json:"total_networks" yaml:"total_networks"`
	Distribution    map[Encryption]int `json:"security_distribution" yaml:"security_distribution"`
	Score           float64            `json:"security_score" yaml:"security_score"`
	Level           string             `json:"security_level" yaml:"security_level"`
	Vulnerable      int                `json:"vulnerable_networks" yaml:"vulnerable_networks"`
	Recommendations []string           `json:"recommendations" yaml:"recommendations"`
}

// SignalDistribution buckets absolute signal magnitudes.
type SignalDistribution struct {
	Excellent int `json:"excellent" yaml:"excellent"`
	Good      int `json:"good" yaml:"good"`
	Fair      int `json:"fair" yaml:"fair"`
	Poor      int `json:"poor" yaml:"poor"`
}

// SignalReport summarizes signal strengths in absolute dBm.
// StdDev is nil with fewer than two samples.
type SignalReport struct {
	NoData       bool               `json:"no_data,omitempty" yaml:"no_data,omitempty"`
	Message      string             `json:"message,omitempty" yaml:"message,omitempty"`
	Samples      int                `json:"samples" yaml:"samples"`
	Mean         float64            `json:"average_signal" yaml:"average_signal"`
	Median       float64            `json:"median_signal" yaml:"median_signal"`
	Min          int                `json:"min_signal" yaml:"min_signal"`
	Max          int                `json:"max_signal" yaml:"max_signal"`
	StdDev       *float64           `json:"signal_std_dev,omitempty" yaml:"signal_std_dev,omitempty"`
	Distribution SignalDistribution `json:"signal_distribution" yaml:"signal_distribution"`
	Quality      string             `json:"quality_assessment" yaml:"quality_assessment"`
}

// AnalysisReport merges every sub-analysis over one snapshot. Error is set
// when a sub-analysis failed; the remaining sections are still populated.
type AnalysisReport struct {
	Timestamp        time.Time         `json:"timestamp" yaml:"timestamp"`
	TotalNetworks    int               `json:"total_networks" yaml:"total_networks"`
	Threats          ThreatReport      `json:"threat_analysis" yaml:"threat_analysis"`
	Channels         ChannelReport     `json:"channel_analysis" yaml:"channel_analysis"`
	Security         SecurityReport    `json:"security_analysis" yaml:"security_analysis"`
	Signals          SignalReport      `json:"signal_analysis" yaml:"signal_analysis"`
	Fingerprints     map[string]string `json:"fingerprints" yaml:"fingerprints"`
	ThreatLevel      ThreatLevel       `json:"threat_level" yaml:"threat_level"`
	Recommendations  []string          `json:"recommendations" yaml:"recommendations"`
	AnalysisDuration float64           `json:"analysis_duration" yaml:"analysis_duration"`
	Error            string            `json:"error,omitempty" yaml:"error,omitempty"`
}
