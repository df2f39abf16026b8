// sheet/session.go
// Copyright(c) 2024-2026 commsheet contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sheet

import (
	"fmt"
	"slices"

	"commsheet/aviation"
	"commsheet/library"

	"github.com/brunoga/deep"
	"github.com/google/uuid"
)

// Session owns one sheet and its undo history, wrapping the engine's
// operations so every user-visible action gets exactly one snapshot.
type Session struct {
	eng   *Engine
	Sheet *Sheet
	hist  History[*Sheet]
}

func NewSession(eng *Engine) *Session {
	return &Session{eng: eng, Sheet: newSheet("", VFR, nil)}
}

// Generate replaces the session's sheet with a freshly resolved one,
// folding in any calls queued by the library editor and recording the
// call sign in the history list.
func (s *Session) Generate(callSign string, rules FlightRules, route Route) {
	s.pushUndo()
	s.Sheet = s.eng.Generate(callSign, rules, route)

	for _, pc := range s.eng.store.PendingCalls() {
		s.attachUserCall(pc)
	}
	s.eng.store.AddCallSignHistory(callSign)
}

func (s *Session) pushUndo() {
	s.hist.Push(s.Sheet)
}

// Undo restores the previous snapshot; Redo the mirror.
func (s *Session) Undo() bool {
	sh, ok := s.hist.Undo(s.Sheet)
	if ok {
		s.Sheet = sh
		s.eng.adopt(sh)
	}
	return ok
}

func (s *Session) Redo() bool {
	sh, ok := s.hist.Redo(s.Sheet)
	if ok {
		s.Sheet = sh
		s.eng.adopt(sh)
	}
	return ok
}

///////////////////////////////////////////////////////////////////////////
// Visibility

func (s *Session) HideCall(instance int) {
	if _, ok := s.Sheet.Call(instance); !ok {
		return
	}
	s.pushUndo()
	s.Sheet.Hidden[instance] = true
}

func (s *Session) UnhideCall(instance int) {
	if !s.Sheet.Hidden[instance] {
		return
	}
	s.pushUndo()
	delete(s.Sheet.Hidden, instance)
}

func (s *Session) HideBlock(key string) {
	if _, ok := s.Sheet.Block(key); !ok {
		return
	}
	s.pushUndo()
	s.Sheet.HiddenBlocks[key] = true
}

func (s *Session) UnhideBlock(key string) {
	if !s.Sheet.HiddenBlocks[key] {
		return
	}
	s.pushUndo()
	delete(s.Sheet.HiddenBlocks, key)
}

func (s *Session) ToggleCollapse(key string) {
	if _, ok := s.Sheet.Block(key); !ok {
		return
	}
	if s.Sheet.Collapsed[key] {
		delete(s.Sheet.Collapsed, key)
	} else {
		s.Sheet.Collapsed[key] = true
	}
}

///////////////////////////////////////////////////////////////////////////
// Reordering (undo recorded only when something actually moved)

func (s *Session) Reorder(callInstance, targetInstance int, pos Position, groupWithTarget bool) bool {
	before := deep.MustCopy(s.Sheet)
	if !s.eng.Reorder(s.Sheet, callInstance, targetInstance, pos, groupWithTarget) {
		return false
	}
	s.hist.pushOwned(before)
	return true
}

func (s *Session) MoveCallToBlock(callInstance int, targetKey string) bool {
	before := deep.MustCopy(s.Sheet)
	if !s.eng.MoveCallToBlock(s.Sheet, callInstance, targetKey) {
		return false
	}
	s.hist.pushOwned(before)
	return true
}

func (s *Session) ReorderBlock(blockKey, targetKey string, pos Position) bool {
	before := deep.MustCopy(s.Sheet)
	if !s.eng.ReorderBlock(s.Sheet, blockKey, targetKey, pos) {
		return false
	}
	s.hist.pushOwned(before)
	return true
}

///////////////////////////////////////////////////////////////////////////
// Per-sheet call editing

// DeleteCall removes a call from this sheet only; the library is
// untouched.
func (s *Session) DeleteCall(instance int) {
	i := slices.IndexFunc(s.Sheet.Calls, func(c ResolvedCall) bool { return c.Instance == instance })
	if i < 0 {
		return
	}
	s.pushUndo()
	s.Sheet.Calls = slices.Delete(s.Sheet.Calls, i, i+1)
	delete(s.Sheet.Hidden, instance)
}

// AddCustomCall appends a sheet-only call to the given block.
func (s *Session) AddCustomCall(blockKey, text string, typ library.CallType) (int, bool) {
	if _, ok := s.Sheet.Block(blockKey); !ok {
		return 0, false
	}
	s.pushUndo()

	seq := 0.0
	for _, c := range s.Sheet.Calls {
		if c.BlockKey == blockKey && c.Seq > seq {
			seq = c.Seq
		}
	}
	call := ResolvedCall{
		BaseID:   uuid.NewString(),
		Instance: s.eng.mintInstance(),
		Origin:   OriginUser,
		BlockKey: blockKey,
		Seq:      seq + 1,
		Type:     typ,
		Text:     text,
		Applies:  library.AllContexts,
	}
	// Insert after the block's current last call.
	at := len(s.Sheet.Calls)
	for i := len(s.Sheet.Calls) - 1; i >= 0; i-- {
		if s.Sheet.Calls[i].BlockKey == blockKey {
			at = i + 1
			break
		}
	}
	s.Sheet.Calls = slices.Insert(s.Sheet.Calls, at, call)
	return call.Instance, true
}

// AddCustomBlock appends an empty block to the sheet. Empty blocks are
// fine here; only generation suppresses them.
func (s *Session) AddCustomBlock(name, target string) string {
	s.pushUndo()
	key := "custom_" + uuid.NewString()
	s.Sheet.Blocks = append(s.Sheet.Blocks, BlockInstance{
		Key:    key,
		BaseID: key,
		Name:   name,
		Target: target,
	})
	return key
}

// AddTaxiCall expands taxi-route shorthand ("a b, hold short 17l") into
// spoken phraseology and inserts it at the top of the given block, ahead
// of the dataset calls.
func (s *Session) AddTaxiCall(blockKey, route string) (int, bool) {
	if _, ok := s.Sheet.Block(blockKey); !ok {
		return 0, false
	}
	text := aviation.ParseTaxiRoute(route, aviation.Abbr(s.Sheet.CallSign))
	if text == "" {
		return 0, false
	}
	s.pushUndo()

	call := ResolvedCall{
		BaseID:   uuid.NewString(),
		Instance: s.eng.mintInstance(),
		Origin:   OriginUser,
		BlockKey: blockKey,
		Seq:      -1, // sorts ahead of every dataset call in the block
		Type:     library.CallRadio,
		Text:     text,
		Applies:  library.AllContexts,
	}
	at := slices.IndexFunc(s.Sheet.Calls, func(c ResolvedCall) bool { return c.BlockKey == blockKey })
	if at < 0 {
		at = len(s.Sheet.Calls)
	}
	s.Sheet.Calls = slices.Insert(s.Sheet.Calls, at, call)
	return call.Instance, true
}

// AddFromLibrary copies a master call (overrides applied) into the given
// block instance.
func (s *Session) AddFromLibrary(callID, blockKey string) bool {
	if _, ok := s.Sheet.Block(blockKey); !ok {
		return false
	}
	mc, ok := s.eng.loader.Get(callID)
	if !ok {
		return false
	}
	s.pushUndo()

	if o, ok := s.eng.store.CallOverrides()[callID]; ok {
		mc = library.Resolve(mc, o)
	}
	call := ResolvedCall{
		BaseID:   mc.ID,
		Instance: s.eng.mintInstance(),
		Origin:   OriginMaster,
		BlockKey: blockKey,
		Group:    mc.Group,
		Seq:      mc.Seq,
		Type:     mc.Type,
		Text:     mc.Text,
		Applies:  mc.Applies,
	}
	s.Sheet.Calls = append(s.Sheet.Calls, call)
	s.eng.resequenceBlock(s.Sheet, blockKey)
	return true
}

// AddUserBlockToSheet instantiates a stored user-defined block with its
// calls.
func (s *Session) AddUserBlockToSheet(userBlockID string) bool {
	var ub *library.UserBlock
	for _, b := range s.eng.store.UserBlocks() {
		if b.ID == userBlockID {
			ub = &b
			break
		}
	}
	if ub == nil {
		return false
	}
	s.pushUndo()

	key := "userblock_" + uuid.NewString()
	s.Sheet.Blocks = append(s.Sheet.Blocks, BlockInstance{
		Key:    key,
		BaseID: ub.ID,
		Name:   ub.Name,
		Target: ub.Target,
	})
	for _, bc := range ub.Calls {
		s.Sheet.Calls = append(s.Sheet.Calls, ResolvedCall{
			BaseID:     bc.ID,
			Instance:   s.eng.mintInstance(),
			Origin:     OriginBlockCall,
			OwnerBlock: ub.ID,
			BlockKey:   key,
			Seq:        bc.Seq,
			Type:       bc.Type,
			Text:       bc.Text,
		})
	}
	return true
}

// SaveBlockToLibrary stores a sheet block with its current calls as a
// user-defined block, deduplicating the name ("Name (2)", "Name (3)", ...).
func (s *Session) SaveBlockToLibrary(blockKey string) (library.UserBlock, bool) {
	b, ok := s.Sheet.Block(blockKey)
	if !ok {
		return library.UserBlock{}, false
	}

	existing := s.eng.store.UserBlocks()
	name := b.Name
	for n := 2; slices.ContainsFunc(existing, func(ub library.UserBlock) bool { return ub.Name == name }); n++ {
		name = fmt.Sprintf("%s (%d)", b.Name, n)
	}

	ub := library.UserBlock{
		ID:     uuid.NewString(),
		Name:   name,
		Target: b.Target,
		Seq:    float64(len(existing) + 1),
	}
	for i, c := range s.Sheet.BlockCalls(blockKey) {
		ub.Calls = append(ub.Calls, library.BlockCall{
			ID:   uuid.NewString(),
			Text: c.Text,
			Type: c.Type,
			Seq:  float64(i + 1),
		})
	}
	s.eng.store.AddUserBlock(ub)
	return ub, true
}

// EditCall changes a call's text and type on this sheet only.
func (s *Session) EditCall(instance int, text string, typ library.CallType) bool {
	c, ok := s.Sheet.Call(instance)
	if !ok {
		return false
	}
	s.pushUndo()
	c.Text = text
	if typ != "" {
		c.Type = typ
	}
	return true
}

// SaveCallToMaster persists a call's current text and type into the
// library: a CallOverride for master calls, the UserCall record for
// user-authored ones.
func (s *Session) SaveCallToMaster(instance int) bool {
	c, ok := s.Sheet.Call(instance)
	if !ok {
		return false
	}
	switch c.Origin {
	case OriginMaster:
		s.eng.store.SetCallOverride(c.BaseID, library.CallOverride{Text: c.Text, Type: c.Type})
		c.HasOverride = true
	case OriginUser:
		text, typ := c.Text, c.Type
		s.eng.store.UpdateUserCall(c.BaseID, func(uc *library.UserCall) {
			uc.Text = text
			uc.Type = typ
		})
	case OriginBlockCall:
		id, text, typ := c.BaseID, c.Text, c.Type
		s.eng.store.UpdateUserBlock(c.OwnerBlock, func(ub *library.UserBlock) {
			for i := range ub.Calls {
				if ub.Calls[i].ID == id {
					ub.Calls[i].Text = text
					ub.Calls[i].Type = typ
				}
			}
		})
	}
	return true
}

// ResetCallToDefault drops a master call's overrides and restores the
// dataset text, type, and sequence.
func (s *Session) ResetCallToDefault(instance int) bool {
	c, ok := s.Sheet.Call(instance)
	if !ok || c.Origin != OriginMaster {
		return false
	}
	mc, ok := s.eng.loader.Get(c.BaseID)
	if !ok {
		return false
	}
	s.pushUndo()
	s.eng.store.RemoveCallOverride(c.BaseID)
	s.eng.store.RemoveSeqOverride(c.BaseID)

	c.Text = mc.Text
	c.Type = mc.Type
	c.Group = mc.Group
	c.Seq = mc.Seq
	c.HasOverride = false
	return true
}

// attachUserCall adds a queued library call to the first block instance
// of its type, if the sheet has one.
func (s *Session) attachUserCall(uc library.UserCall) {
	for _, b := range s.Sheet.Blocks {
		if b.BlockType == uc.Block {
			s.Sheet.Calls = append(s.Sheet.Calls, ResolvedCall{
				BaseID:   uc.ID,
				Instance: s.eng.mintInstance(),
				Origin:   OriginUser,
				BlockKey: b.Key,
				Group:    uc.Group,
				Seq:      uc.Seq,
				Type:     uc.Type,
				Text:     uc.Text,
				Applies:  uc.Applies,
			})
			s.eng.sortCalls(s.Sheet)
			return
		}
	}
	s.eng.lg.Debugf("pending call %s: no %q block on sheet, dropped", uc.ID, uc.Block)
}
