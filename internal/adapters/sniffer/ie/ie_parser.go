package ie

import (
	"bytes"
	"errors"
)

// Common IE Tags
const (
	TagSSID           = 0
	TagDSParameterSet = 3
	TagRSN            = 48
	TagVendorSpecific = 221 // 0xDD
)

// Errors
var (
	ErrMalformedIE = errors.New("malformed information element")
	ErrIENotFound  = errors.New("information element not found")
)

// wpaOUIType is the Microsoft OUI plus type 1, the pre-RSN WPA element.
var wpaOUIType = []byte{0x00, 0x50, 0xF2, 0x01}

// SSID represents a Service Set Identifier
type SSID struct {
	Value  string
	Hidden bool
}

// IterateIEs calls callback for each element in data and stops at the first
// element whose length runs past the buffer.
func IterateIEs(data []byte, callback func(id int, data []byte)) {
	offset := 0
	limit := len(data)

	for offset+2 <= limit {
		id := int(data[offset])
		length := int(data[offset+1])
		offset += 2

		if offset+length > limit {
			break
		}

		callback(id, data[offset:offset+length])
		offset += length
	}
}

// Validate reports ErrMalformedIE when the element list does not end
// exactly at the end of data.
func Validate(data []byte) error {
	offset := 0
	for offset < len(data) {
		if offset+2 > len(data) {
			return ErrMalformedIE
		}
		offset += 2 + int(data[offset+1])
	}
	if offset != len(data) {
		return ErrMalformedIE
	}
	return nil
}

// FindIE returns the data of the first IE with the given ID, or nil.
func FindIE(data []byte, targetID int) []byte {
	var result []byte
	IterateIEs(data, func(id int, val []byte) {
		if result == nil && id == targetID {
			result = val
		}
	})
	return result
}

// ParseSSID extracts the SSID. An absent, empty or all-zero element is hidden.
func ParseSSID(data []byte) SSID {
	val := FindIE(data, TagSSID)
	if len(val) == 0 {
		return SSID{Hidden: true}
	}
	if len(bytes.Trim(val, "\x00")) == 0 {
		return SSID{Hidden: true}
	}
	return SSID{Value: safeString(val)}
}

// ParseChannel extracts the channel from the DS Parameter Set (Tag 3).
func ParseChannel(data []byte) (int, error) {
	val := FindIE(data, TagDSParameterSet)
	if len(val) >= 1 {
		return int(val[0]), nil
	}
	return 0, ErrIENotFound
}

// HasWPA reports a WPA1 vendor element (00:50:F2 type 1).
func HasWPA(data []byte) bool {
	found := false
	IterateIEs(data, func(id int, val []byte) {
		if id == TagVendorSpecific && len(val) >= 4 && bytes.Equal(val[:4], wpaOUIType) {
			found = true
		}
	})
	return found
}

// safeString keeps printable UTF-8 and replaces control bytes, so SSIDs can
// be logged and serialized.
func safeString(b []byte) string {
	out := make([]rune, 0, len(b))
	for _, r := range string(b) {
		if r < 0x20 || r == 0x7f {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
