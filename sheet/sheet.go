// sheet/sheet.go
// Copyright(c) 2024-2026 commsheet contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package sheet is the resolution engine: it expands a route into an
// ordered, grouped list of radio calls by merging the master dataset with
// the user's override layers, and keeps that order consistent across
// interactive reordering, with undo.
package sheet

import (
	"commsheet/aviation"
	"commsheet/library"
	"commsheet/log"
)

// FlightRules selects the VFR or IFR side of the applicability tags.
type FlightRules string

const (
	VFR FlightRules = "vfr"
	IFR FlightRules = "ifr"
)

// ContextTag returns the flight-context applicability tag for the given
// tower status, always of the exact form {vfr|ifr}_{t|nt}.
func (r FlightRules) ContextTag(towered bool) string {
	if towered {
		return string(r) + "_t"
	}
	return string(r) + "_nt"
}

// Intention says what happens at an intermediate stop and so which blocks
// are synthesized for the leg departing it.
type Intention string

const (
	IntentionNone       Intention = ""
	IntentionTouchAndGo Intention = "touch_and_go"
	IntentionStopAndGo  Intention = "stop_and_go"
	IntentionFullStop   Intention = "full_stop"
	IntentionTaxiBack   Intention = "taxi_back"
)

// Stop is one airport on the route.
type Stop struct {
	Airport   *aviation.Airport
	Intention Intention
}

// Route is the ordered list of stops; consecutive pairs form legs.
type Route []Stop

// Origin says where a resolved call's authoritative record lives.
type Origin int

const (
	OriginMaster    Origin = iota // bundled dataset, overridable by id
	OriginUser                    // user-authored call in the store
	OriginBlockCall               // call scoped to a user-defined block
)

// ResolvedCall is one line of the generated sheet: a master or user call
// with all override layers folded in. BaseID points back at the
// authoritative record; Instance is a process-local token unique per
// resolved copy, since the same master call can appear on several legs.
type ResolvedCall struct {
	BaseID   string
	Instance int
	Origin   Origin
	// OwnerBlock is the owning UserBlock id for OriginBlockCall calls.
	OwnerBlock string

	BlockKey    string
	Group       string
	Seq         float64
	Type        library.CallType
	Text        string
	Applies     []string
	HasOverride bool
}

// BlockInstance is one concrete occurrence of a block type in a sheet,
// scoped to a leg and airport. Key is unique within the sheet and is the
// join key calls attach to via BlockKey; it is never parsed.
type BlockInstance struct {
	Key string
	// BaseID keys the block's persisted ordering: the block type for
	// built-in blocks, the stored UserBlock id for user blocks, the
	// instance key for sheet-only custom blocks.
	BaseID       string
	BlockType    string
	Name         string
	ContextLabel string
	Target       string
	Towered      bool
	Airport      *aviation.Airport
	// Vars are the leg's template variables ({{Dep_Name}} etc.),
	// computed at generation; the call sign is merged in at render time.
	Vars map[string]string
}

// Sheet is the full session state of one generated comm sheet. Everything
// here is snapshotted for undo.
type Sheet struct {
	CallSign    string
	FlightRules FlightRules
	Route       Route

	Calls  []ResolvedCall
	Blocks []BlockInstance

	// Per-sheet visibility, distinct from the store's permanent hides.
	Hidden       map[int]bool    // by call Instance
	HiddenBlocks map[string]bool // by block Key
	Collapsed    map[string]bool // by block Key
}

func newSheet(callSign string, rules FlightRules, route Route) *Sheet {
	return &Sheet{
		CallSign:     callSign,
		FlightRules:  rules,
		Route:        route,
		Hidden:       make(map[int]bool),
		HiddenBlocks: make(map[string]bool),
		Collapsed:    make(map[string]bool),
	}
}

// Block returns the instance with the given key.
func (sh *Sheet) Block(key string) (*BlockInstance, bool) {
	for i := range sh.Blocks {
		if sh.Blocks[i].Key == key {
			return &sh.Blocks[i], true
		}
	}
	return nil, false
}

// Call returns the resolved call with the given instance token.
func (sh *Sheet) Call(instance int) (*ResolvedCall, bool) {
	for i := range sh.Calls {
		if sh.Calls[i].Instance == instance {
			return &sh.Calls[i], true
		}
	}
	return nil, false
}

// BlockCalls returns the calls attached to the given block instance, in
// sheet order.
func (sh *Sheet) BlockCalls(key string) []ResolvedCall {
	var calls []ResolvedCall
	for _, c := range sh.Calls {
		if c.BlockKey == key {
			calls = append(calls, c)
		}
	}
	return calls
}

// Engine resolves sheets against the master dataset and the override
// store. It is not safe for concurrent use; the tool is single-user,
// single-goroutine.
type Engine struct {
	loader *library.Loader
	store  *library.Store
	lg     *log.Logger

	nextInstance int
}

func NewEngine(loader *library.Loader, store *library.Store, lg *log.Logger) *Engine {
	return &Engine{loader: loader, store: store, lg: lg}
}

func (e *Engine) mintInstance() int {
	e.nextInstance++
	return e.nextInstance
}

// adopt raises the instance counter past every token in the sheet so that
// calls minted after loading a saved sheet can't collide with it.
func (e *Engine) adopt(sh *Sheet) {
	for _, c := range sh.Calls {
		if c.Instance > e.nextInstance {
			e.nextInstance = c.Instance
		}
	}
}
