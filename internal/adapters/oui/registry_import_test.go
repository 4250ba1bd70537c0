package oui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var importTime = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func TestShortVendor(t *testing.T) {
	tests := map[string]string{
		"Cisco Systems, Inc":            "Cisco Systems",
		"Apple, Inc.":                   "Apple",
		"Intel Corporation":             "Intel",
		"Huawei Technologies Co., Ltd.": "Huawei Technologies",
		"AVM GmbH":                      "AVM",
		"  Espressif Inc.  ":            "Espressif",
	}
	for in, want := range tests {
		assert.Equal(t, want, ShortVendor(in), in)
	}
}

func TestParseRegistry_IEEE(t *testing.T) {
	csv := `Registry,Assignment,Organization Name,Organization Address
MA-L,00000C,"Cisco Systems, Inc",170 West Tasman Drive San Jose CA US 95134
MA-L,F4F5D8,Google Inc.,1600 Amphitheatre Parkway Mountain View CA US 94043
MA-L,,Nobody,
MA-L,ABCDEF,,
`
	entries, err := ParseRegistry(strings.NewReader(csv), FormatIEEE, importTime)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "00:00:0C", entries[0].Prefix)
	assert.Equal(t, "Cisco Systems, Inc", entries[0].Vendor)
	assert.Equal(t, "Cisco Systems", entries[0].VendorShort)
	assert.Contains(t, entries[0].Address, "San Jose")
	assert.Equal(t, "F4:F5:D8", entries[1].Prefix)
	assert.Equal(t, importTime, entries[1].LastUpdated)
}

func TestParseRegistry_Maclookup(t *testing.T) {
	csv := `Mac Prefix,Vendor Name,Private,Block Type,Last Update
00:1B:63,Apple Inc.,false,MA-L,2015/11/17
3c-5a-b4,Google Inc.,false,MA-L,2016/04/11
`
	entries, err := ParseRegistry(strings.NewReader(csv), FormatMaclookup, importTime)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "00:1B:63", entries[0].Prefix)
	assert.Equal(t, "Apple", entries[0].VendorShort)
	assert.Equal(t, "3C:5A:B4", entries[1].Prefix)
}

func TestParseRegistry_Manuf(t *testing.T) {
	manuf := "# Wireshark manuf\n" +
		"00:00:0C\tCisco\tCisco Systems, Inc\n" +
		"00:1B:63\tApple\n" +
		"00:1B:C5:00:00:00/36\tConverging\tConverging Systems Inc.\n" +
		"\n"
	entries, err := ParseRegistry(strings.NewReader(manuf), FormatManuf, importTime)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Cisco", entries[0].VendorShort)
	assert.Equal(t, "Cisco Systems, Inc", entries[0].Vendor)
	assert.Equal(t, "Apple", entries[1].Vendor)
}

func TestParseRegistry_UnknownFormat(t *testing.T) {
	_, err := ParseRegistry(strings.NewReader(""), "xml", importTime)
	assert.Error(t, err)
}

func TestImport_Batches(t *testing.T) {
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "oui.db"), 10, nil)
	require.NoError(t, err)
	defer db.Close()

	entries := []Entry{
		{Prefix: "00:00:0C", Vendor: "Cisco Systems, Inc", VendorShort: "Cisco Systems", LastUpdated: importTime},
		{Prefix: "00:1B:63", Vendor: "Apple, Inc.", VendorShort: "Apple", LastUpdated: importTime},
		{Prefix: "F4:F5:D8", Vendor: "Google Inc.", VendorShort: "Google", LastUpdated: importTime},
	}
	var progress []int
	require.NoError(t, Import(context.Background(), db, entries, 2, func(done int) {
		progress = append(progress, done)
	}))
	assert.Equal(t, []int{2, 3}, progress)

	stats, err := db.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalEntries)
	assert.Equal(t, "2024-06-01", stats.LastUpdated)
}
