package ie

import (
	"encoding/binary"
	"fmt"
)

// RSNInfo is the decoded body of an RSN element (tag 48).
type RSNInfo struct {
	Version         uint16
	GroupCipher     string
	PairwiseCiphers []string
	AKMSuites       []string
	// Management frame protection bits from the capabilities field.
	MFPRequired bool
	MFPCapable  bool
}

var cipherNames = map[byte]string{
	1:  "WEP-40",
	2:  "TKIP",
	4:  "CCMP",
	5:  "WEP-104",
	8:  "GCMP-128",
	9:  "GCMP-256",
	10: "CCMP-256",
}

var akmNames = map[byte]string{
	1:  "802.1X",
	2:  "PSK",
	3:  "FT-802.1X",
	4:  "FT-PSK",
	5:  "802.1X-SHA256",
	6:  "PSK-SHA256",
	8:  "SAE",
	9:  "FT-SAE",
	18: "OWE",
}

// ParseRSN decodes an RSN element body. Only the version is mandatory;
// a body truncated after any later field yields the fields read so far.
func ParseRSN(data []byte) (*RSNInfo, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("RSN IE too short: %w", ErrMalformedIE)
	}
	rsn := &RSNInfo{Version: binary.LittleEndian.Uint16(data)}
	rest := data[2:]

	if len(rest) < 4 {
		return rsn, nil
	}
	rsn.GroupCipher = suiteName(cipherNames, rest[:4])
	rest = rest[4:]

	rsn.PairwiseCiphers, rest = suiteList(cipherNames, rest)
	rsn.AKMSuites, rest = suiteList(akmNames, rest)

	if len(rest) >= 2 {
		caps := binary.LittleEndian.Uint16(rest)
		rsn.MFPRequired = caps&0x0040 != 0
		rsn.MFPCapable = caps&0x0080 != 0
	}
	return rsn, nil
}

// suiteList reads a little-endian count followed by that many 4-byte
// suites, stopping early if the body runs out.
func suiteList(names map[byte]string, data []byte) ([]string, []byte) {
	if len(data) < 2 {
		return nil, nil
	}
	count := int(binary.LittleEndian.Uint16(data))
	data = data[2:]

	var out []string
	for i := 0; i < count && len(data) >= 4; i++ {
		out = append(out, suiteName(names, data[:4]))
		data = data[4:]
	}
	return out, data
}

// suiteName ignores the OUI and names the suite by its type byte.
func suiteName(names map[byte]string, suite []byte) string {
	if name, ok := names[suite[3]]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", suite[3])
}

// HasAKM reports whether any of the given suites is advertised.
func (r *RSNInfo) HasAKM(suites ...string) bool {
	for _, have := range r.AKMSuites {
		for _, want := range suites {
			if have == want {
				return true
			}
		}
	}
	return false
}
