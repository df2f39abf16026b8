// aviation/airport.go
// Copyright(c) 2024-2026 commsheet contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"io/fs"
	"strings"
	"time"

	"commsheet/log"
	"commsheet/util"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Airport is one record from the bundled airport directory, which is
// derived offline from the FAA dataset by filtering to non-closed
// public-use airfields; Towered reflects whether a tower frequency record
// exists for the field.
type Airport struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Abridged string   `json:"abridged"`
	City     string   `json:"city"`
	State    string   `json:"state"`
	Runways  []string `json:"runways"`
	Towered  bool     `json:"towered"`
	Type     string   `json:"type,omitempty"`
}

// DefaultAirports is the small hardcoded set used when the bundled
// directory can't be loaded.
var DefaultAirports = []Airport{
	{ID: "KADH", Name: "Ada Municipal", Abridged: "Ada", City: "Ada", State: "OK", Runways: []string{"17", "35"}, Towered: false},
	{ID: "KOKC", Name: "Will Rogers World", Abridged: "Will Rogers", City: "Oklahoma City", State: "OK", Runways: []string{"17L", "35R", "13", "31"}, Towered: true},
	{ID: "KOUN", Name: "Max Westheimer", Abridged: "Max Westheimer", City: "Norman", State: "OK", Runways: []string{"03", "21", "17", "35"}, Towered: true},
	{ID: "KPWA", Name: "Wiley Post", Abridged: "Wiley Post", City: "Oklahoma City", State: "OK", Runways: []string{"17L", "35R", "17R", "35L"}, Towered: true},
	{ID: "KTUL", Name: "Tulsa International", Abridged: "Tulsa", City: "Tulsa", State: "OK", Runways: []string{"18L", "36R", "18R", "36L"}, Towered: true},
}

const maxSearchResults = 10

// AirportDB holds the loaded airport directory and serves lookups and
// ranked search over it.
type AirportDB struct {
	airports []Airport
	byID     map[string]*Airport
	search   *expirable.LRU[string, []Airport]
}

// LoadAirportDB reads airports.json from the given resources filesystem.
// If the file is missing or malformed it falls back to DefaultAirports;
// the caller always gets a usable database.
func LoadAirportDB(fsys fs.FS, lg *log.Logger) *AirportDB {
	var airports []Airport
	if err := util.LoadResourceJSON(fsys, "airports.json", &airports); err != nil {
		lg.Warnf("airports.json: %v; using default airports", err)
		airports = util.DuplicateSlice(DefaultAirports)
	}

	db := &AirportDB{
		airports: airports,
		byID:     make(map[string]*Airport),
		search:   expirable.NewLRU[string, []Airport](64, nil, 15*time.Minute),
	}
	for i := range db.airports {
		db.byID[db.airports[i].ID] = &db.airports[i]
	}

	lg.Infof("loaded %d airports", len(airports))
	return db
}

// Lookup returns the airport with the given identifier; a bare identifier
// is also tried with the US "K" prefix.
func (db *AirportDB) Lookup(id string) (*Airport, bool) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if ap, ok := db.byID[id]; ok {
		return ap, true
	}
	if ap, ok := db.byID["K"+id]; ok {
		return ap, true
	}
	return nil, false
}

func (db *AirportDB) All() []Airport {
	return db.airports
}

// Search returns up to 10 airports matching the given term, best matches
// first: exact id (with and without the K prefix), then id prefix, exact
// city/short-name, starts-with, and finally substring matches.
func (db *AirportDB) Search(term string) []Airport {
	term = strings.TrimSpace(term)
	if len(term) < 2 {
		return nil
	}
	lower := strings.ToLower(term)
	if hits, ok := db.search.Get(lower); ok {
		return hits
	}

	withK := "k" + lower

	var exactID, exactCity, idPrefix, startsWith, other []Airport
	for _, a := range db.airports {
		id := strings.ToLower(a.ID)
		city := strings.ToLower(a.City)
		name := strings.ToLower(a.Name)
		abridged := strings.ToLower(a.Abridged)

		switch {
		case id == lower || id == withK:
			exactID = append(exactID, a)
		case city == lower || abridged == lower:
			exactCity = append(exactCity, a)
		case strings.HasPrefix(id, lower) || strings.HasPrefix(id, withK):
			idPrefix = append(idPrefix, a)
		case strings.HasPrefix(city, lower) || strings.HasPrefix(abridged, lower) || strings.HasPrefix(name, lower):
			startsWith = append(startsWith, a)
		case strings.Contains(id, lower) || strings.Contains(name, lower) ||
			strings.Contains(city, lower) || strings.Contains(abridged, lower):
			other = append(other, a)
		}
		if len(exactID)+len(exactCity)+len(idPrefix)+len(startsWith)+len(other) >= 50 {
			break
		}
	}

	var hits []Airport
	if len(exactID) > 0 {
		hits = exactID
	} else {
		hits = append(append(append(exactCity, idPrefix...), startsWith...), other...)
	}
	if len(hits) > maxSearchResults {
		hits = hits[:maxSearchResults]
	}

	db.search.Add(lower, hits)
	return hits
}
