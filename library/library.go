// library/library.go
// Copyright(c) 2024-2026 commsheet contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package library holds the master radio-call dataset, the user's layered
// customizations of it (the Override Store), and the merge logic that
// combines the two.
package library

import (
	"io/fs"
	"slices"

	"commsheet/log"
	"commsheet/util"
)

// CallType classifies a single line of phraseology.
type CallType string

const (
	CallRadio CallType = "radio" // pilot transmission
	CallATC   CallType = "atc"   // expected ATC response
	CallNote  CallType = "note"  // free-text reminder
	CallBrief CallType = "brief" // multi-line pre-flight brief
)

// Flight-context tags: {vfr|ifr}_{t|nt}. Applicability is exact set
// membership on these; there is no partial matching.
const (
	VFRTowered    = "vfr_t"
	VFRNonTowered = "vfr_nt"
	IFRTowered    = "ifr_t"
	IFRNonTowered = "ifr_nt"
)

// AllContexts lists every flight-context tag.
var AllContexts = []string{VFRNonTowered, VFRTowered, IFRNonTowered, IFRTowered}

// MasterCall is one record of the bundled call dataset. Records are loaded
// once at startup and treated as read-only; user customization is always
// layered on top via overrides keyed by ID.
type MasterCall struct {
	ID              string
	Block           string
	Group           string
	Seq             float64
	Type            CallType
	Text            string
	Applies         []string
	ExpandPerRunway bool
}

// AppliesTo reports whether the call is applicable under the given
// flight-context tag.
func (c *MasterCall) AppliesTo(tag string) bool {
	return slices.Contains(c.Applies, tag)
}

// MasterDatasetFile is the bundled master dataset resource name.
const MasterDatasetFile = "radio_calls_master_v4.json"

// Loader reads and caches the master call dataset.
type Loader struct {
	fsys   fs.FS
	lg     *log.Logger
	calls  []MasterCall
	loaded bool
}

func NewLoader(fsys fs.FS, lg *log.Logger) *Loader {
	return &Loader{fsys: fsys, lg: lg}
}

// Load reads the master dataset, caching it after the first success. A
// missing or malformed dataset degrades to an empty list; callers never
// see an error from here.
func (l *Loader) Load() []MasterCall {
	if l.loaded {
		return l.calls
	}

	var raw struct {
		Calls []rawCall `json:"calls"`
	}
	if err := util.LoadResourceJSON(l.fsys, MasterDatasetFile, &raw); err != nil {
		l.lg.Errorf("%s: %v", MasterDatasetFile, err)
		return nil
	}

	l.calls = util.MapSlice(raw.Calls, normalizeCall)
	l.loaded = true
	l.lg.Infof("loaded %d master calls", len(l.calls))
	return l.calls
}

// GetAll returns the last successfully loaded call set, or an empty slice
// if no load has succeeded yet.
func (l *Loader) GetAll() []MasterCall {
	return l.calls
}

// Get returns the master call with the given id.
func (l *Loader) Get(id string) (MasterCall, bool) {
	for _, c := range l.calls {
		if c.ID == id {
			return c, true
		}
	}
	return MasterCall{}, false
}
