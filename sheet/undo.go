// sheet/undo.go
// Copyright(c) 2024-2026 commsheet contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sheet

import "github.com/brunoga/deep"

// maxHistory bounds both stacks; the oldest snapshot is dropped silently.
const maxHistory = 20

// History is a bounded undo/redo pair over deep snapshots of some state.
// One user-visible action = one snapshot; Push before mutating.
type History[S any] struct {
	undo []S
	redo []S
}

// Push records the pre-mutation state and invalidates the redo stack.
func (h *History[S]) Push(state S) {
	h.pushOwned(deep.MustCopy(state))
}

// pushOwned takes ownership of an already-copied snapshot.
func (h *History[S]) pushOwned(state S) {
	h.undo = append(h.undo, state)
	if len(h.undo) > maxHistory {
		h.undo = h.undo[len(h.undo)-maxHistory:]
	}
	h.redo = nil
}

// Undo returns the most recent snapshot, moving the current state onto
// the redo stack. ok is false when there is nothing to undo.
func (h *History[S]) Undo(current S) (state S, ok bool) {
	if len(h.undo) == 0 {
		return state, false
	}
	h.redo = append(h.redo, deep.MustCopy(current))
	if len(h.redo) > maxHistory {
		h.redo = h.redo[len(h.redo)-maxHistory:]
	}
	state = h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return state, true
}

// Redo is the mirror of Undo.
func (h *History[S]) Redo(current S) (state S, ok bool) {
	if len(h.redo) == 0 {
		return state, false
	}
	h.undo = append(h.undo, deep.MustCopy(current))
	if len(h.undo) > maxHistory {
		h.undo = h.undo[len(h.undo)-maxHistory:]
	}
	state = h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return state, true
}

func (h *History[S]) CanUndo() bool { return len(h.undo) > 0 }
func (h *History[S]) CanRedo() bool { return len(h.redo) > 0 }
