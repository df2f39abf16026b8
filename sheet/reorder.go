// sheet/reorder.go
// Copyright(c) 2024-2026 commsheet contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sheet

import (
	"slices"

	"commsheet/library"
	"commsheet/util"

	"github.com/google/uuid"
)

// Position says which side of the drop target the dragged item lands on.
type Position int

const (
	Above Position = iota
	Below
)

// Reorder moves the dragged call next to the target call, optionally
// joining the target's group, and resequences the affected blocks so the
// order survives regeneration. Cross-block drops move the call into the
// target's block. Unresolvable ids and self-drops are complete no-ops;
// the return value tells the caller whether anything changed.
func (e *Engine) Reorder(sh *Sheet, callInstance, targetInstance int, pos Position, groupWithTarget bool) bool {
	if callInstance == targetInstance {
		return false
	}
	ci := slices.IndexFunc(sh.Calls, func(c ResolvedCall) bool { return c.Instance == callInstance })
	ti := slices.IndexFunc(sh.Calls, func(c ResolvedCall) bool { return c.Instance == targetInstance })
	if ci < 0 || ti < 0 {
		e.lg.Debugf("reorder: unresolvable call %d -> %d", callInstance, targetInstance)
		return false
	}

	dragged, target := sh.Calls[ci], sh.Calls[ti]
	sourceKey := dragged.BlockKey

	if target.BlockKey != dragged.BlockKey {
		dragged.BlockKey = target.BlockKey
		if b, ok := sh.Block(target.BlockKey); ok && b.BlockType != "" {
			e.reassignBlockType(&dragged, b.BlockType)
		}
	}

	if groupWithTarget {
		// Joining a group that doesn't have an explicit id yet mints one
		// for both calls.
		if target.Group == "" {
			target.Group = uuid.NewString()
			sh.Calls[ti].Group = target.Group
			e.persistGroup(&sh.Calls[ti])
		}
		dragged.Group = target.Group
	} else {
		// Separation always mints a fresh group id rather than clearing
		// it, so the call can never coincidentally merge with a future
		// neighbor that shares a stale key.
		dragged.Group = uuid.NewString()
	}
	e.persistGroup(&dragged)

	sh.Calls = slices.Delete(sh.Calls, ci, ci+1)
	ti = slices.IndexFunc(sh.Calls, func(c ResolvedCall) bool { return c.Instance == targetInstance })
	at := ti
	if pos == Below {
		at = ti + 1
	}
	sh.Calls = util.InsertSliceElement(sh.Calls, at, dragged)

	e.resequenceBlock(sh, dragged.BlockKey)
	if sourceKey != dragged.BlockKey {
		e.resequenceBlock(sh, sourceKey)
	}
	return true
}

// MoveCallToBlock drops a call at the end of another block instance.
func (e *Engine) MoveCallToBlock(sh *Sheet, callInstance int, targetKey string) bool {
	ci := slices.IndexFunc(sh.Calls, func(c ResolvedCall) bool { return c.Instance == callInstance })
	b, ok := sh.Block(targetKey)
	if ci < 0 || !ok {
		e.lg.Debugf("move: unresolvable call %d or block %q", callInstance, targetKey)
		return false
	}
	if sh.Calls[ci].BlockKey == targetKey {
		return false
	}

	dragged := sh.Calls[ci]
	sourceKey := dragged.BlockKey
	dragged.BlockKey = targetKey
	if b.BlockType != "" {
		e.reassignBlockType(&dragged, b.BlockType)
	}

	sh.Calls = slices.Delete(sh.Calls, ci, ci+1)
	// Insert after the target block's current last call, or at the end.
	at := len(sh.Calls)
	for i := len(sh.Calls) - 1; i >= 0; i-- {
		if sh.Calls[i].BlockKey == targetKey {
			at = i + 1
			break
		}
	}
	sh.Calls = util.InsertSliceElement(sh.Calls, at, dragged)

	e.resequenceBlock(sh, targetKey)
	e.resequenceBlock(sh, sourceKey)
	return true
}

// ReorderBlock moves a block instance next to another and rewrites the
// block sequence override map so the new order covers every block id.
func (e *Engine) ReorderBlock(sh *Sheet, blockKey, targetKey string, pos Position) bool {
	if blockKey == targetKey {
		return false
	}
	bi := slices.IndexFunc(sh.Blocks, func(b BlockInstance) bool { return b.Key == blockKey })
	ti := slices.IndexFunc(sh.Blocks, func(b BlockInstance) bool { return b.Key == targetKey })
	if bi < 0 || ti < 0 {
		e.lg.Debugf("block reorder: unresolvable %q -> %q", blockKey, targetKey)
		return false
	}

	moved := sh.Blocks[bi]
	sh.Blocks = slices.Delete(sh.Blocks, bi, bi+1)
	ti = slices.IndexFunc(sh.Blocks, func(b BlockInstance) bool { return b.Key == targetKey })
	at := ti
	if pos == Below {
		at = ti + 1
	}
	sh.Blocks = util.InsertSliceElement(sh.Blocks, at, moved)

	// Rewrite the whole override map, 1-based by first appearance: the
	// sheet's blocks in their new order, then every remaining built-in
	// block type and stored user block in natural order, so no stale
	// rank survives and absent blocks keep a defined position.
	order := make(map[string]float64)
	next := 1
	assign := func(id string) {
		if id == "" {
			return
		}
		if _, ok := order[id]; !ok {
			order[id] = float64(next)
			next++
		}
	}
	for _, b := range sh.Blocks {
		assign(b.BaseID)
	}
	for _, bt := range library.BlockOrder {
		assign(bt)
	}
	for _, ub := range e.store.UserBlocks() {
		assign(ub.ID)
	}
	e.store.ReplaceBlockSeqOverrides(order)

	// Keep the calls slice grouped in the new block order.
	e.sortCalls(sh)
	return true
}

// reassignBlockType rewrites the call's block association when it crosses
// into an instance of a different type, persisting for user calls.
func (e *Engine) reassignBlockType(c *ResolvedCall, blockType string) {
	if c.Origin == OriginUser {
		e.store.UpdateUserCall(c.BaseID, func(uc *library.UserCall) { uc.Block = blockType })
	}
}

// persistGroup writes a call's group assignment into the appropriate
// override slice.
func (e *Engine) persistGroup(c *ResolvedCall) {
	switch c.Origin {
	case OriginMaster:
		e.store.SetCallOverride(c.BaseID, library.CallOverride{Group: c.Group})
		c.HasOverride = true
	case OriginUser:
		e.store.UpdateUserCall(c.BaseID, func(uc *library.UserCall) { uc.Group = c.Group })
	case OriginBlockCall:
		// Block-scoped calls have no group semantics; order alone applies.
	}
}

// resequenceBlock assigns every call in the block its new 1-based
// position and persists it: SequenceOverride for master calls, the
// UserCall record for user calls, the owning UserBlock for block calls.
func (e *Engine) resequenceBlock(sh *Sheet, blockKey string) {
	seqOverrides := make(map[string]float64)
	pos := 0
	for i := range sh.Calls {
		c := &sh.Calls[i]
		if c.BlockKey != blockKey {
			continue
		}
		pos++
		c.Seq = float64(pos)
		switch c.Origin {
		case OriginMaster:
			seqOverrides[c.BaseID] = c.Seq
			c.HasOverride = true
		case OriginUser:
			seq := c.Seq
			e.store.UpdateUserCall(c.BaseID, func(uc *library.UserCall) { uc.Seq = seq })
		case OriginBlockCall:
			id, seq := c.BaseID, c.Seq
			e.store.UpdateUserBlock(c.OwnerBlock, func(ub *library.UserBlock) {
				for j := range ub.Calls {
					if ub.Calls[j].ID == id {
						ub.Calls[j].Seq = seq
					}
				}
				slices.SortStableFunc(ub.Calls, func(a, b library.BlockCall) int {
					if a.Seq < b.Seq {
						return -1
					} else if a.Seq > b.Seq {
						return 1
					}
					return 0
				})
			})
		}
	}
	if len(seqOverrides) > 0 {
		e.store.SetSeqOverrides(seqOverrides)
	}
}
