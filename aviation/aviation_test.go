// aviation/aviation_test.go
// Copyright(c) 2024-2026 commsheet contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

func testDB() *AirportDB {
	db := &AirportDB{
		byID:   make(map[string]*Airport),
		search: expirable.NewLRU[string, []Airport](64, nil, time.Minute),
	}
	db.airports = DefaultAirports
	for i := range db.airports {
		db.byID[db.airports[i].ID] = &db.airports[i]
	}
	return db
}

func TestAirportLookup(t *testing.T) {
	db := testDB()

	if ap, ok := db.Lookup("KADH"); !ok || ap.Towered {
		t.Errorf("KADH lookup: ok %v ap %+v", ok, ap)
	}
	// Bare id should retry with the K prefix.
	if ap, ok := db.Lookup("okc"); !ok || ap.ID != "KOKC" {
		t.Errorf("okc lookup: ok %v ap %+v", ok, ap)
	}
	if _, ok := db.Lookup("KZZZ"); ok {
		t.Errorf("KZZZ lookup should fail")
	}
}

func TestAirportSearch(t *testing.T) {
	db := testDB()

	if hits := db.Search("a"); hits != nil {
		t.Errorf("single-character search should return nothing, got %+v", hits)
	}

	// Exact id match returns only that airport.
	hits := db.Search("kadh")
	if len(hits) != 1 || hits[0].ID != "KADH" {
		t.Errorf("exact id search: %+v", hits)
	}
	// Exact match via K prefix.
	hits = db.Search("adh")
	if len(hits) != 1 || hits[0].ID != "KADH" {
		t.Errorf("K-prefix search: %+v", hits)
	}

	// City search: two Oklahoma City airports, exact city first.
	hits = db.Search("oklahoma city")
	if len(hits) != 2 {
		t.Errorf("city search: %+v", hits)
	}

	// Substring match on name.
	hits = db.Search("rogers")
	if len(hits) != 1 || hits[0].ID != "KOKC" {
		t.Errorf("name substring search: %+v", hits)
	}

	// Cached result is identical.
	again := db.Search("rogers")
	if len(again) != len(hits) || again[0].ID != hits[0].ID {
		t.Errorf("cached search mismatch: %+v vs %+v", again, hits)
	}
}

func TestLoadAirportDBFallback(t *testing.T) {
	db := LoadAirportDB(fstest.MapFS{}, nil)
	if len(db.All()) != len(DefaultAirports) {
		t.Errorf("expected default airports on load failure, got %d", len(db.All()))
	}

	fsys := fstest.MapFS{
		"airports.json": &fstest.MapFile{Data: []byte(`[{"id": "KHWO", "name": "North Perry", "abridged": "North Perry", "city": "Hollywood", "state": "FL", "runways": ["10L", "28R"], "towered": true}]`)},
	}
	db = LoadAirportDB(fsys, nil)
	if len(db.All()) != 1 {
		t.Fatalf("expected 1 airport, got %d", len(db.All()))
	}
	if ap, ok := db.Lookup("KHWO"); !ok || !ap.Towered {
		t.Errorf("KHWO lookup after load: ok %v ap %+v", ok, ap)
	}
}

func TestAbbr(t *testing.T) {
	for _, c := range []struct{ full, abbr, short string }{
		{"Skyhawk 12345", "Skyhawk 345", "345"},
		{"Cessna N739AB", "Cessna 9AB", "9AB"},
		{"Archer 45X", "Archer 45X", "45X"},
		{"Solo", "Solo", "Solo"},
		{"", "", ""},
	} {
		if got := Abbr(c.full); got != c.abbr {
			t.Errorf("Abbr(%q) = %q, want %q", c.full, got, c.abbr)
		}
		if got := Short(c.full); got != c.short {
			t.Errorf("Short(%q) = %q, want %q", c.full, got, c.short)
		}
	}
}

func TestParseTaxiRoute(t *testing.T) {
	for _, c := range []struct{ in, abbr, want string }{
		{"a b via 17l", "", "Alpha, Bravo, 17L"},
		{"alpha, x-ray, then 35", "", "Alpha, X-ray, 35"},
		{"hold short 17r", "", "hold short runway 17R"},
		{"hold short b", "", "hold short taxiway Bravo"},
		{"hold short bravo", "", "hold short taxiway Bravo"},
		{"hold short bridge", "", "hold short bridge"},
		{"cross 35 crossing 17l", "", "cross runway 35, cross runway 17L"},
		{"back taxi 35", "", "back taxi, 35"},
		{"a to b and c", "Skyhawk 345", "Alpha, Bravo, Charlie, Skyhawk 345"},
		{"ramp 4", "", "ramp, 4"},
		{"", "Skyhawk 345", ""},
		{"via then and", "", ""},
	} {
		if got := ParseTaxiRoute(c.in, c.abbr); got != c.want {
			t.Errorf("ParseTaxiRoute(%q, %q) = %q, want %q", c.in, c.abbr, got, c.want)
		}
	}
}

func TestSubVars(t *testing.T) {
	vars := map[string]string{"CS_Full": "Skyhawk 12345", "Dep_Traffic": "Ada Traffic"}

	got := SubVars("{{Dep_Traffic}}, {{CS_Full}}, departing runway [##]", vars)
	want := "Ada Traffic, Skyhawk 12345, departing runway [##]"
	if got != want {
		t.Errorf("SubVars = %q, want %q", got, want)
	}

	// Unknown variables stay as-is.
	if got := SubVars("{{Arr_Name}} tower", vars); got != "{{Arr_Name}} tower" {
		t.Errorf("unknown var should be preserved, got %q", got)
	}
}
