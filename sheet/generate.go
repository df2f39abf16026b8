// sheet/generate.go
// Copyright(c) 2024-2026 commsheet contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sheet

import (
	"fmt"
	"slices"

	"commsheet/aviation"
	"commsheet/library"
)

// Generate expands the route into a fresh sheet: per leg, the departure,
// enroute, and arrival block sequences; one emergency section per sheet;
// master calls filtered by the leg's flight-context tag with every
// override layer applied; user calls injected into matching blocks.
// Blocks that would be empty never materialize.
func (e *Engine) Generate(callSign string, rules FlightRules, route Route) *Sheet {
	sh := newSheet(callSign, rules, route)

	master := e.loader.Load()
	blockOverrides := e.store.BlockOverrides()
	hides := e.store.PermanentHides()

	for leg := 0; leg+1 < len(route); leg++ {
		dep, arr := route[leg], route[leg+1]
		if dep.Airport == nil || arr.Airport == nil {
			e.lg.Debugf("leg %d: nil airport, skipping", leg)
			continue
		}
		vars := legVars(dep, arr)
		depTag := rules.ContextTag(dep.Airport.Towered)
		arrTag := rules.ContextTag(arr.Airport.Towered)

		// Departure phase. The first leg always flies the full canonical
		// sequence; later legs depend on what happened at the stop.
		depBlocks := library.DepartureBlocks
		if leg > 0 {
			switch dep.Intention {
			case IntentionTouchAndGo, IntentionStopAndGo:
				depBlocks = library.RollingDepartureBlocks()
			default:
				depBlocks = library.FullStopDepartureBlocks()
			}
		}
		for _, bt := range depBlocks {
			e.addBlock(sh, master, blockOverrides, hides, bt, leg, "dep",
				dep.Airport, dep.Airport.Towered, depTag, vars)
		}

		// Enroute, once per leg. Calls are filtered by the departure-side
		// context, but the instance belongs to the destination airport:
		// "to X", X's tower status for target resolution.
		for _, bt := range library.EnrouteBlocks {
			e.addBlock(sh, master, blockOverrides, hides, bt, leg, "enr",
				arr.Airport, arr.Airport.Towered, depTag, vars)
		}

		// Arrival phase: full sequence only at the final destination with
		// no recorded intention.
		arrBlocks := library.ArrivalBlocks
		if leg+2 < len(route) || arr.Intention != IntentionNone {
			arrBlocks = library.IntermediateArrivalBlocks()
		}
		for _, bt := range arrBlocks {
			e.addBlock(sh, master, blockOverrides, hides, bt, leg, "arr",
				arr.Airport, arr.Airport.Towered, arrTag, vars)
		}
	}

	// Emergency, once per sheet, keyed solely off the first stop's
	// context; template vars come from the first leg with both ends set.
	if len(route) > 1 && route[0].Airport != nil {
		first := route[0]
		vars := legVars(first, Stop{})
		for i := 0; i+1 < len(route); i++ {
			if route[i].Airport != nil && route[i+1].Airport != nil {
				vars = legVars(route[i], route[i+1])
				break
			}
		}
		for _, bt := range library.EmergencyBlocks {
			e.addBlock(sh, master, blockOverrides, hides, bt, 0, "emg",
				first.Airport, first.Airport.Towered,
				rules.ContextTag(first.Airport.Towered), vars)
		}
	}

	e.orderBlocks(sh)
	e.applyCallOverrides(sh)
	e.injectUserCalls(sh, hides)
	e.sortCalls(sh)
	e.lg.Infof("generated sheet: %d blocks, %d calls", len(sh.Blocks), len(sh.Calls))
	return sh
}

// addBlock materializes one block instance and its matching master calls,
// or nothing if no call applies.
func (e *Engine) addBlock(sh *Sheet, master []library.MasterCall,
	blockOverrides map[string]library.BlockOverride, hides map[string]bool,
	blockType string, leg int, phase string,
	airport *aviation.Airport, towered bool, tag string, vars map[string]string) {

	def, ok := library.Blocks[blockType]
	if !ok {
		return
	}
	bo := blockOverrides[blockType]
	if bo.Hidden {
		return
	}
	if bo.Name != "" {
		def.Name = bo.Name
	}
	if bo.TargetTowered != "" {
		def.TargetTowered = bo.TargetTowered
	}
	if bo.TargetNonTowered != "" {
		def.TargetNonTowered = bo.TargetNonTowered
	}

	// A block with no target at this kind of field doesn't apply
	// (clearance delivery at a non-towered airport); emergency always does.
	target := def.Target(towered)
	if target == "" && blockType != "emergency" {
		return
	}

	key := fmt.Sprintf("%s_%s_L%d", blockType, phase, leg)
	var calls []ResolvedCall
	for _, c := range master {
		if c.Block != blockType || !c.AppliesTo(tag) || hides[c.ID] {
			continue
		}
		calls = append(calls, ResolvedCall{
			BaseID:   c.ID,
			Instance: e.mintInstance(),
			Origin:   OriginMaster,
			BlockKey: key,
			Group:    c.Group,
			Seq:      c.Seq,
			Type:     c.Type,
			Text:     c.Text,
			Applies:  c.Applies,
		})
	}
	if len(calls) == 0 {
		return
	}

	sh.Blocks = append(sh.Blocks, BlockInstance{
		Key:          key,
		BaseID:       blockType,
		BlockType:    blockType,
		Name:         def.Name,
		ContextLabel: library.ContextLabel(blockType, airport.Name),
		Target:       target,
		Towered:      towered,
		Airport:      airport,
		Vars:         vars,
	})
	sh.Calls = append(sh.Calls, calls...)
}

// applyCallOverrides patches every resolved call with its CallOverride
// and then its SequenceOverride, in that order.
func (e *Engine) applyCallOverrides(sh *Sheet) {
	overrides := e.store.CallOverrides()
	seqOverrides := e.store.SeqOverrides()

	for i := range sh.Calls {
		c := &sh.Calls[i]
		if o, ok := overrides[c.BaseID]; ok {
			if o.Text != "" {
				c.Text = o.Text
			}
			if o.Type != "" {
				c.Type = o.Type
			}
			if o.Applies != nil {
				c.Applies = o.Applies
			}
			if o.Group != "" {
				c.Group = o.Group
			}
			c.HasOverride = true
		}
		if seq, ok := seqOverrides[c.BaseID]; ok {
			c.Seq = seq
			c.HasOverride = true
		}
	}
}

// injectUserCalls attaches each stored user call to the first block
// instance of its block type, if the sheet has one.
func (e *Engine) injectUserCalls(sh *Sheet, hides map[string]bool) {
	seqOverrides := e.store.SeqOverrides()
	for _, uc := range e.store.UserCalls() {
		if hides[uc.ID] {
			continue
		}
		var key string
		for _, b := range sh.Blocks {
			if b.BlockType == uc.Block {
				key = b.Key
				break
			}
		}
		if key == "" {
			continue
		}
		seq := uc.Seq
		if s, ok := seqOverrides[uc.ID]; ok {
			seq = s
		}
		sh.Calls = append(sh.Calls, ResolvedCall{
			BaseID:   uc.ID,
			Instance: e.mintInstance(),
			Origin:   OriginUser,
			BlockKey: key,
			Group:    uc.Group,
			Seq:      seq,
			Type:     uc.Type,
			Text:     uc.Text,
			Applies:  uc.Applies,
		})
	}
}

// orderBlocks applies persisted block ordering: blocks sort by their
// type's sequence override, falling back to the natural block order,
// stable so legs keep their relative order.
func (e *Engine) orderBlocks(sh *Sheet) {
	overrides := e.store.BlockSeqOverrides()
	if len(overrides) == 0 {
		return
	}
	natural := make(map[string]int, len(library.BlockOrder))
	for i, bt := range library.BlockOrder {
		natural[bt] = i
	}
	rank := func(b BlockInstance) float64 {
		if o, ok := overrides[b.BaseID]; ok {
			return o
		}
		if n, ok := natural[b.BlockType]; ok {
			return float64(n + 1)
		}
		return float64(len(library.BlockOrder) + 1)
	}
	slices.SortStableFunc(sh.Blocks, func(a, b BlockInstance) int {
		if ra, rb := rank(a), rank(b); ra < rb {
			return -1
		} else if ra > rb {
			return 1
		}
		return 0
	})
}

// sortCalls orders the sheet's calls by block instance (in block order)
// and then by effective sequence, stable so ties preserve insertion order.
func (e *Engine) sortCalls(sh *Sheet) {
	rank := make(map[string]int, len(sh.Blocks))
	for i, b := range sh.Blocks {
		rank[b.Key] = i
	}
	slices.SortStableFunc(sh.Calls, func(a, b ResolvedCall) int {
		if ra, rb := rank[a.BlockKey], rank[b.BlockKey]; ra != rb {
			return ra - rb
		}
		if a.Seq < b.Seq {
			return -1
		} else if a.Seq > b.Seq {
			return 1
		}
		return 0
	})
}

// legVars builds the per-leg template variables; the call sign pair is
// merged in at render time.
func legVars(dep, arr Stop) map[string]string {
	vars := make(map[string]string, 6)
	if dep.Airport != nil {
		vars["Dep_Name"] = dep.Airport.Name
		vars["Dep_Abridged"] = dep.Airport.Abridged
		vars["Dep_Traffic"] = dep.Airport.Abridged + " Traffic"
	}
	if arr.Airport != nil {
		vars["Arr_Name"] = arr.Airport.Name
		vars["Arr_Abridged"] = arr.Airport.Abridged
		vars["Arr_Traffic"] = arr.Airport.Abridged + " Traffic"
	}
	return vars
}
