package security

// Config holds the heuristic thresholds. The zero value is not useful; start
// from DefaultConfig.
type Config struct {
	// EvilTwinSignalDelta is the exclusive upper bound on the signal
	// difference (dB) between two same-SSID access points for a finding.
	EvilTwinSignalDelta int
	// RogueThreshold is the minimum suspicion score reported.
	RogueThreshold int
	// RogueHighThreshold is the score from which a rogue finding is high.
	RogueHighThreshold int
	// StrongSignalDBM is the level above which a signal is suspicious.
	StrongSignalDBM int
	// HoneypotPatterns are lowercase SSID substrings typical of bait networks.
	HoneypotPatterns []string
	// UnusualVendorKeywords are lowercase vendor substrings that add suspicion.
	UnusualVendorKeywords []string
}

func DefaultConfig() Config {
	return Config{
		EvilTwinSignalDelta:   10,
		RogueThreshold:        4,
		RogueHighThreshold:    6,
		StrongSignalDBM:       -30,
		HoneypotPatterns:      []string{"free wifi", "public", "guest", "open", "internet"},
		UnusualVendorKeywords: []string{"unknown", "private", "random"},
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.EvilTwinSignalDelta <= 0 {
		c.EvilTwinSignalDelta = d.EvilTwinSignalDelta
	}
	if c.RogueThreshold <= 0 {
		c.RogueThreshold = d.RogueThreshold
	}
	if c.RogueHighThreshold <= 0 {
		c.RogueHighThreshold = d.RogueHighThreshold
	}
	if c.StrongSignalDBM == 0 {
		c.StrongSignalDBM = d.StrongSignalDBM
	}
	if c.HoneypotPatterns == nil {
		c.HoneypotPatterns = d.HoneypotPatterns
	}
	if c.UnusualVendorKeywords == nil {
		c.UnusualVendorKeywords = d.UnusualVendorKeywords
	}
	return c
}
