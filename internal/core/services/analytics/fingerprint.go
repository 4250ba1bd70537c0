package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
)

const fingerprintLen = 16

// Fingerprint returns a short stable identifier derived from an access
// point's identity fields. Signal and timestamps do not contribute.
func Fingerprint(ap domain.AccessPoint) string {
	// encoding/json writes map keys sorted, which makes the form canonical.
	canonical, err := json.Marshal(map[string]any{
		"bssid":      ap.BSSID,
		"ssid":       ap.SSID,
		"channel":    ap.Channel,
		"encryption": string(ap.Encryption),
		"vendor":     ap.Vendor,
	})
	if err != nil {
		// Unreachable for these field types.
		panic(err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}
