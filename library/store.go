// library/store.go
// Copyright(c) 2024-2026 commsheet contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package library

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"commsheet/log"

	"github.com/brunoga/deep"
)

// CallOverride is a sparse patch applied atop a master call, keyed by the
// master call's id. Zero-valued fields are "not overridden". Sequence is
// deliberately not here; it lives in its own slice so reordering never
// collides with text edits.
type CallOverride struct {
	Text    string   `json:"text,omitempty"`
	Type    CallType `json:"type,omitempty"`
	Applies []string `json:"applies,omitempty"`
	Group   string   `json:"group,omitempty"`
}

// BlockOverride patches a block definition's name and targets.
type BlockOverride struct {
	Name             string `json:"name,omitempty"`
	TargetTowered    string `json:"targetTowered,omitempty"`
	TargetNonTowered string `json:"targetNonTowered,omitempty"`
	Hidden           bool   `json:"hidden,omitempty"`
}

// UserCall is a call fully owned by the user, with no master counterpart.
type UserCall struct {
	ID        string   `json:"id"`
	Block     string   `json:"block"`
	Group     string   `json:"group,omitempty"`
	Seq       float64  `json:"seq"`
	Type      CallType `json:"type"`
	Text      string   `json:"text"`
	Applies   []string `json:"applies"`
	UserAdded bool     `json:"userAdded"`
}

// BlockCall is a call scoped to a user-defined block.
type BlockCall struct {
	ID   string   `json:"id"`
	Text string   `json:"text"`
	Type CallType `json:"type"`
	Seq  float64  `json:"seq"`
}

// UserBlock is a user-defined block container saved to the library.
type UserBlock struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Target string      `json:"target"`
	Seq    float64     `json:"seq"`
	Calls  []BlockCall `json:"calls,omitempty"`
}

// Persisted slice filenames. Each slice is one whole JSON document,
// re-read on access and rewritten on every mutation.
const (
	callOverridesFile     = "call_overrides.json"
	seqOverridesFile      = "seq_overrides.json"
	userCallsFile         = "user_calls.json"
	permanentHidesFile    = "permanent_hides.json"
	blockOverridesFile    = "block_overrides.json"
	userBlocksFile        = "user_blocks.json"
	blockSeqOverridesFile = "block_seq_overrides.json"
	callSignHistoryFile   = "callsign_history.json"
	pendingCallsFile      = "pending_calls.json"
	defaultBundleFile     = "default_library.json"

	// Pre-v4 installs stored text-only overrides separately; folded into
	// call_overrides.json on first read.
	legacyTextOverridesFile = "text_overrides.json"
)

const maxCallSignHistory = 20

// Store persists the user's library customizations, one JSON document per
// slice, under the given directory. All operations are synchronous and
// total: a missing or corrupt document reads as its empty default.
type Store struct {
	dir string
	lg  *log.Logger
}

// NewStore opens (creating if needed) the store rooted at dir. If a
// default bundle has been promoted, it is applied now so every session
// starts from it.
func NewStore(dir string, lg *log.Logger) *Store {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		lg.Errorf("%s: unable to make store directory: %v", dir, err)
	}
	s := &Store{dir: dir, lg: lg}

	if b, ok := s.DefaultBundle(); ok {
		s.ImportBundle(b)
		lg.Info("applied default library bundle")
	}
	return s
}

func (s *Store) path(file string) string {
	return filepath.Join(s.dir, file)
}

func loadSlice[T any](s *Store, file string, def T) T {
	b, err := os.ReadFile(s.path(file))
	if err != nil {
		return def
	}
	v := def
	if err := json.Unmarshal(b, &v); err != nil {
		s.lg.Warnf("%s: corrupt store slice: %v", file, err)
		return def
	}
	return v
}

func (s *Store) saveSlice(file string, v any) {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		s.lg.Errorf("%s: %v", file, err)
		return
	}
	if err := os.WriteFile(s.path(file), b, 0o600); err != nil {
		s.lg.Errorf("%s: %v", file, err)
	}
}

///////////////////////////////////////////////////////////////////////////
// Call overrides (text, type, applies, group)

func (s *Store) CallOverrides() map[string]CallOverride {
	overrides := loadSlice(s, callOverridesFile, map[string]CallOverride{})

	// Fold in any legacy text-only overrides, then retire the old file.
	if legacy := loadSlice(s, legacyTextOverridesFile, map[string]string{}); len(legacy) > 0 {
		for id, text := range legacy {
			o := overrides[id]
			o.Text = text
			overrides[id] = o
		}
		s.saveSlice(callOverridesFile, overrides)
		if err := os.Remove(s.path(legacyTextOverridesFile)); err != nil {
			s.lg.Warnf("%s: %v", legacyTextOverridesFile, err)
		}
	}
	return overrides
}

// SetCallOverride merges the set fields of patch into the stored override
// for the given master call id.
func (s *Store) SetCallOverride(id string, patch CallOverride) {
	overrides := s.CallOverrides()
	o := overrides[id]
	if patch.Text != "" {
		o.Text = patch.Text
	}
	if patch.Type != "" {
		o.Type = patch.Type
	}
	if patch.Applies != nil {
		o.Applies = patch.Applies
	}
	if patch.Group != "" {
		o.Group = patch.Group
	}
	overrides[id] = o
	s.saveSlice(callOverridesFile, overrides)
}

func (s *Store) RemoveCallOverride(id string) {
	overrides := s.CallOverrides()
	delete(overrides, id)
	s.saveSlice(callOverridesFile, overrides)
}

///////////////////////////////////////////////////////////////////////////
// Sequence overrides

func (s *Store) SeqOverrides() map[string]float64 {
	return loadSlice(s, seqOverridesFile, map[string]float64{})
}

func (s *Store) SetSeqOverride(id string, seq float64) {
	overrides := s.SeqOverrides()
	overrides[id] = seq
	s.saveSlice(seqOverridesFile, overrides)
}

// SetSeqOverrides merges the given map into the stored one.
func (s *Store) SetSeqOverrides(m map[string]float64) {
	overrides := s.SeqOverrides()
	for id, seq := range m {
		overrides[id] = seq
	}
	s.saveSlice(seqOverridesFile, overrides)
}

func (s *Store) RemoveSeqOverride(id string) {
	overrides := s.SeqOverrides()
	delete(overrides, id)
	s.saveSlice(seqOverridesFile, overrides)
}

///////////////////////////////////////////////////////////////////////////
// User-added calls

func (s *Store) UserCalls() []UserCall {
	return loadSlice(s, userCallsFile, []UserCall(nil))
}

func (s *Store) AddUserCall(c UserCall) {
	c.UserAdded = true
	calls := append(s.UserCalls(), c)
	s.saveSlice(userCallsFile, calls)
}

// UpdateUserCall applies update to the stored call with the given id, if
// present.
func (s *Store) UpdateUserCall(id string, update func(*UserCall)) {
	calls := s.UserCalls()
	for i := range calls {
		if calls[i].ID == id {
			update(&calls[i])
			s.saveSlice(userCallsFile, calls)
			return
		}
	}
}

func (s *Store) DeleteUserCall(id string) {
	calls := slices.DeleteFunc(s.UserCalls(), func(c UserCall) bool { return c.ID == id })
	s.saveSlice(userCallsFile, calls)
}

///////////////////////////////////////////////////////////////////////////
// Permanent hides

func (s *Store) PermanentHides() map[string]bool {
	ids := loadSlice(s, permanentHidesFile, []string(nil))
	hides := make(map[string]bool, len(ids))
	for _, id := range ids {
		hides[id] = true
	}
	return hides
}

func (s *Store) SetPermanentHide(id string, hidden bool) {
	hides := s.PermanentHides()
	if hidden {
		hides[id] = true
	} else {
		delete(hides, id)
	}
	ids := make([]string, 0, len(hides))
	for hid := range hides {
		ids = append(ids, hid)
	}
	slices.Sort(ids)
	s.saveSlice(permanentHidesFile, ids)
}

///////////////////////////////////////////////////////////////////////////
// Block overrides

func (s *Store) BlockOverrides() map[string]BlockOverride {
	return loadSlice(s, blockOverridesFile, map[string]BlockOverride{})
}

func (s *Store) SetBlockOverride(id string, patch BlockOverride) {
	overrides := s.BlockOverrides()
	o := overrides[id]
	if patch.Name != "" {
		o.Name = patch.Name
	}
	if patch.TargetTowered != "" {
		o.TargetTowered = patch.TargetTowered
	}
	if patch.TargetNonTowered != "" {
		o.TargetNonTowered = patch.TargetNonTowered
	}
	if patch.Hidden {
		o.Hidden = true
	}
	overrides[id] = o
	s.saveSlice(blockOverridesFile, overrides)
}

func (s *Store) RemoveBlockOverride(id string) {
	overrides := s.BlockOverrides()
	delete(overrides, id)
	s.saveSlice(blockOverridesFile, overrides)
}

///////////////////////////////////////////////////////////////////////////
// User-defined blocks

func (s *Store) UserBlocks() []UserBlock {
	return loadSlice(s, userBlocksFile, []UserBlock(nil))
}

func (s *Store) AddUserBlock(b UserBlock) {
	blocks := append(s.UserBlocks(), b)
	s.saveSlice(userBlocksFile, blocks)
}

func (s *Store) UpdateUserBlock(id string, update func(*UserBlock)) {
	blocks := s.UserBlocks()
	for i := range blocks {
		if blocks[i].ID == id {
			update(&blocks[i])
			s.saveSlice(userBlocksFile, blocks)
			return
		}
	}
}

func (s *Store) DeleteUserBlock(id string) {
	blocks := slices.DeleteFunc(s.UserBlocks(), func(b UserBlock) bool { return b.ID == id })
	s.saveSlice(userBlocksFile, blocks)
}

///////////////////////////////////////////////////////////////////////////
// Block sequence overrides

func (s *Store) BlockSeqOverrides() map[string]float64 {
	return loadSlice(s, blockSeqOverridesFile, map[string]float64{})
}

func (s *Store) SetBlockSeqOverride(blockType string, seq float64) {
	overrides := s.BlockSeqOverrides()
	overrides[blockType] = seq
	s.saveSlice(blockSeqOverridesFile, overrides)
}

// ReplaceBlockSeqOverrides rewrites the whole block ordering map; block
// reordering always recomputes every entry, so nothing is merged.
func (s *Store) ReplaceBlockSeqOverrides(m map[string]float64) {
	s.saveSlice(blockSeqOverridesFile, m)
}

///////////////////////////////////////////////////////////////////////////
// Call sign history

func (s *Store) CallSignHistory() []string {
	return loadSlice(s, callSignHistoryFile, []string(nil))
}

func (s *Store) AddCallSignHistory(cs string) {
	cs = strings.TrimSpace(cs)
	if len(cs) < 3 {
		return
	}
	history := slices.DeleteFunc(s.CallSignHistory(), func(h string) bool { return h == cs })
	history = append([]string{cs}, history...)
	if len(history) > maxCallSignHistory {
		history = history[:maxCallSignHistory]
	}
	s.saveSlice(callSignHistoryFile, history)
}

func (s *Store) DeleteCallSignHistory(cs string) {
	history := slices.DeleteFunc(s.CallSignHistory(), func(h string) bool { return h == cs })
	s.saveSlice(callSignHistoryFile, history)
}

///////////////////////////////////////////////////////////////////////////
// Pending calls (library editor -> sheet handoff)

// PendingCalls returns queued calls and clears the queue.
func (s *Store) PendingCalls() []UserCall {
	calls := loadSlice(s, pendingCallsFile, []UserCall(nil))
	if len(calls) > 0 {
		if err := os.Remove(s.path(pendingCallsFile)); err != nil {
			s.lg.Warnf("%s: %v", pendingCallsFile, err)
		}
	}
	return calls
}

func (s *Store) AddPendingCall(c UserCall) {
	calls := append(loadSlice(s, pendingCallsFile, []UserCall(nil)), c)
	s.saveSlice(pendingCallsFile, calls)
}

///////////////////////////////////////////////////////////////////////////
// Restore defaults

// RestoreDefaults clears every override slice but preserves user-authored
// content: user calls and user blocks survive a reset to factory.
func (s *Store) RestoreDefaults() {
	s.saveSlice(callOverridesFile, map[string]CallOverride{})
	s.saveSlice(permanentHidesFile, []string{})
	s.saveSlice(blockOverridesFile, map[string]BlockOverride{})
	s.saveSlice(seqOverridesFile, map[string]float64{})
	s.saveSlice(blockSeqOverridesFile, map[string]float64{})
}

///////////////////////////////////////////////////////////////////////////
// Snapshot / restore (undo support)

// Snapshot captures the full slice set; Restore rewrites every slice from
// it. The pair is sufficient to roll back any mutation made through the
// store.
type Snapshot struct {
	CallOverrides     map[string]CallOverride
	SeqOverrides      map[string]float64
	UserCalls         []UserCall
	PermanentHides    []string
	BlockOverrides    map[string]BlockOverride
	UserBlocks        []UserBlock
	BlockSeqOverrides map[string]float64
}

func (s *Store) Snapshot() Snapshot {
	return deep.MustCopy(Snapshot{
		CallOverrides:     s.CallOverrides(),
		SeqOverrides:      s.SeqOverrides(),
		UserCalls:         s.UserCalls(),
		PermanentHides:    loadSlice(s, permanentHidesFile, []string(nil)),
		BlockOverrides:    s.BlockOverrides(),
		UserBlocks:        s.UserBlocks(),
		BlockSeqOverrides: s.BlockSeqOverrides(),
	})
}

func (s *Store) Restore(snap Snapshot) {
	s.saveSlice(callOverridesFile, snap.CallOverrides)
	s.saveSlice(seqOverridesFile, snap.SeqOverrides)
	s.saveSlice(userCallsFile, snap.UserCalls)
	s.saveSlice(permanentHidesFile, snap.PermanentHides)
	s.saveSlice(blockOverridesFile, snap.BlockOverrides)
	s.saveSlice(userBlocksFile, snap.UserBlocks)
	s.saveSlice(blockSeqOverridesFile, snap.BlockSeqOverrides)
}

///////////////////////////////////////////////////////////////////////////
// Bundles (backup / sharing / promoted defaults)

// Bundle is the wholesale export format for the library: every slice in
// one JSON document. On import, only sections present in the bundle
// replace their slice.
type Bundle struct {
	CallOverrides     map[string]CallOverride  `json:"overrides,omitempty"`
	UserCalls         []UserCall               `json:"userCalls,omitempty"`
	PermanentHides    []string                 `json:"permanentHides,omitempty"`
	SeqOverrides      map[string]float64       `json:"seqOverrides,omitempty"`
	BlockOverrides    map[string]BlockOverride `json:"blockOverrides,omitempty"`
	UserBlocks        []UserBlock              `json:"userBlocks,omitempty"`
	BlockSeqOverrides map[string]float64       `json:"blockSeqOverrides,omitempty"`
}

func (s *Store) ExportBundle() Bundle {
	return Bundle{
		CallOverrides:     s.CallOverrides(),
		UserCalls:         s.UserCalls(),
		PermanentHides:    loadSlice(s, permanentHidesFile, []string(nil)),
		SeqOverrides:      s.SeqOverrides(),
		BlockOverrides:    s.BlockOverrides(),
		UserBlocks:        s.UserBlocks(),
		BlockSeqOverrides: s.BlockSeqOverrides(),
	}
}

func (s *Store) ImportBundle(b Bundle) {
	if b.CallOverrides != nil {
		s.saveSlice(callOverridesFile, b.CallOverrides)
	}
	if b.UserCalls != nil {
		s.saveSlice(userCallsFile, b.UserCalls)
	}
	if b.PermanentHides != nil {
		s.saveSlice(permanentHidesFile, b.PermanentHides)
	}
	if b.SeqOverrides != nil {
		s.saveSlice(seqOverridesFile, b.SeqOverrides)
	}
	if b.BlockOverrides != nil {
		s.saveSlice(blockOverridesFile, b.BlockOverrides)
	}
	if b.UserBlocks != nil {
		s.saveSlice(userBlocksFile, b.UserBlocks)
	}
	if b.BlockSeqOverrides != nil {
		s.saveSlice(blockSeqOverridesFile, b.BlockSeqOverrides)
	}
}

// SetDefaultBundle promotes the current library state to the bundle
// applied at every future store open.
func (s *Store) SetDefaultBundle() {
	s.saveSlice(defaultBundleFile, s.ExportBundle())
}

func (s *Store) ClearDefaultBundle() {
	if err := os.Remove(s.path(defaultBundleFile)); err != nil && !os.IsNotExist(err) {
		s.lg.Warnf("%s: %v", defaultBundleFile, err)
	}
}

func (s *Store) DefaultBundle() (Bundle, bool) {
	if _, err := os.Stat(s.path(defaultBundleFile)); err != nil {
		return Bundle{}, false
	}
	return loadSlice(s, defaultBundleFile, Bundle{}), true
}
