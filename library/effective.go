// library/effective.go
// Copyright(c) 2024-2026 commsheet contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package library

import (
	"slices"
	"strings"
)

// EffectiveCall is a master or user call with all store overrides folded
// in. The Original* fields preserve the pre-override values so an editor
// can show what changed and offer per-field reverts; they are zero for
// user-added calls.
type EffectiveCall struct {
	MasterCall
	UserAdded   bool
	HasOverride bool

	OriginalText    string
	OriginalType    CallType
	OriginalApplies []string
	OriginalGroup   string
	OriginalSeq     float64
}

// Resolve merges a sparse override into a master call. It is total: a
// zero override returns the call unchanged.
func Resolve(c MasterCall, o CallOverride) MasterCall {
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
	return c
}

// BuildEffectiveCalls returns the full library as the user sees it:
// every master call with its overrides applied, followed by the user's
// own calls, sorted by block (natural block order) then sequence.
// Permanently hidden calls are excluded.
func BuildEffectiveCalls(master []MasterCall, store *Store) []EffectiveCall {
	overrides := store.CallOverrides()
	seqOverrides := store.SeqOverrides()
	hides := store.PermanentHides()

	calls := make([]EffectiveCall, 0, len(master))
	for _, c := range master {
		if hides[c.ID] {
			continue
		}
		ec := EffectiveCall{
			OriginalText:    c.Text,
			OriginalType:    c.Type,
			OriginalApplies: c.Applies,
			OriginalGroup:   c.Group,
			OriginalSeq:     c.Seq,
		}
		if o, ok := overrides[c.ID]; ok {
			c = Resolve(c, o)
			ec.HasOverride = true
		}
		if seq, ok := seqOverrides[c.ID]; ok {
			c.Seq = seq
			ec.HasOverride = true
		}
		ec.MasterCall = c
		calls = append(calls, ec)
	}

	for _, uc := range store.UserCalls() {
		if hides[uc.ID] {
			continue
		}
		seq := uc.Seq
		if s, ok := seqOverrides[uc.ID]; ok {
			seq = s
		}
		calls = append(calls, EffectiveCall{
			MasterCall: MasterCall{
				ID:      uc.ID,
				Block:   uc.Block,
				Group:   uc.Group,
				Seq:     seq,
				Type:    uc.Type,
				Text:    uc.Text,
				Applies: uc.Applies,
			},
			UserAdded: true,
		})
	}

	blockRank := make(map[string]int, len(BlockOrder))
	for i, b := range BlockOrder {
		blockRank[b] = i
	}
	slices.SortStableFunc(calls, func(a, b EffectiveCall) int {
		ra, oka := blockRank[a.Block]
		rb, okb := blockRank[b.Block]
		if !oka {
			ra = len(BlockOrder)
		}
		if !okb {
			rb = len(BlockOrder)
		}
		if ra != rb {
			return ra - rb
		}
		if a.Block != b.Block {
			return strings.Compare(a.Block, b.Block)
		}
		if a.Seq < b.Seq {
			return -1
		} else if a.Seq > b.Seq {
			return 1
		}
		return 0
	})

	return calls
}
