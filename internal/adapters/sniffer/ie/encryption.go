package ie

import "github.com/lcalzada-xor/airsight/internal/core/domain"

// ClassifyEncryption derives the security class of a beacon or probe
// response from its tagged parameters and the privacy capability bit.
//
// RSN with SAE (or OWE) is WPA3; any other RSN is WPA2; a WPA vendor element
// is WPA; privacy without either is WEP; otherwise the network is open.
func ClassifyEncryption(ies []byte, privacy bool) domain.Encryption {
	if data := FindIE(ies, TagRSN); data != nil {
		rsn, err := ParseRSN(data)
		if err != nil {
			return domain.EncryptionWPA2
		}
		if rsn.HasAKM("SAE", "FT-SAE", "OWE") {
			return domain.EncryptionWPA3
		}
		return domain.EncryptionWPA2
	}
	if HasWPA(ies) {
		return domain.EncryptionWPA
	}
	if privacy {
		return domain.EncryptionWEP
	}
	return domain.EncryptionOpen
}
