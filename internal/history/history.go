// Package history implements the in-memory FrameSnapshot ring buffer and
// cursor-based playback (spec.md §4.6). Unlike the disk-backed recorder
// this is adapted from, persistence across process restarts is an
// explicit non-goal: everything here lives in RAM and is lost on reset.
package history

import (
	"github.com/fieldsim/engine/internal/events"
	"github.com/fieldsim/engine/internal/params"
	"github.com/fieldsim/engine/internal/signature"
)

// Capacity is the ring buffer's fixed size (spec.md §4.6).
const Capacity = 100

// FrameSnapshot is one recorded step, per spec.md §3.
type FrameSnapshot struct {
	Step        int64
	Grid        []float32
	Width       int
	Params      params.Parameters
	Signature   signature.Signature
	EventMarker *events.Kind
}

// History is a ring buffer of FrameSnapshots with a playback cursor.
//
// Invariant: entries are in strictly ascending Step (spec.md §3).
type History struct {
	buf     []FrameSnapshot
	start   int // index of the oldest entry in buf
	count   int
	cursor  int // index into the logical [0, count) sequence; only meaningful while playing
	playing bool
}

// New returns an empty History.
func New() *History {
	return &History{buf: make([]FrameSnapshot, Capacity)}
}

// Record appends a new live snapshot, evicting the oldest entry if full.
// Recording while in playback mode is not expected by the Driver (playback
// stops forward stepping), but Record itself has no playback side effects.
func (h *History) Record(s FrameSnapshot) {
	idx := (h.start + h.count) % Capacity
	if h.count == Capacity {
		h.start = (h.start + 1) % Capacity
	} else {
		h.count++
	}
	h.buf[idx] = s
}

// Len returns the number of snapshots currently held.
func (h *History) Len() int { return h.count }

// at returns the logical i-th oldest snapshot (0 <= i < count).
func (h *History) at(i int) FrameSnapshot {
	return h.buf[(h.start+i)%Capacity]
}

// Latest returns the most recently recorded snapshot, or the zero value
// and false if History is empty.
func (h *History) Latest() (FrameSnapshot, bool) {
	if h.count == 0 {
		return FrameSnapshot{}, false
	}
	return h.at(h.count - 1), true
}

// Playing reports whether History is in playback mode. The cursor may
// rest on the newest snapshot while playback is still active.
func (h *History) Playing() bool { return h.playing }

// Current returns the snapshot the cursor currently points at while in
// playback mode. Callers should check Playing first.
func (h *History) Current() (FrameSnapshot, bool) {
	if !h.playing || h.count == 0 {
		return FrameSnapshot{}, false
	}
	return h.at(h.cursor), true
}

// SeekToFrame moves the cursor to logical index i, clamped to the valid
// range, and enters playback mode. Per spec.md §7, out-of-range indices
// clamp rather than error.
func (h *History) SeekToFrame(i int) (FrameSnapshot, bool) {
	if h.count == 0 {
		return FrameSnapshot{}, false
	}
	if i < 0 {
		i = 0
	}
	if i > h.count-1 {
		i = h.count - 1
	}
	h.cursor = i
	h.playing = true
	return h.at(h.cursor), true
}

// StepBackward moves the cursor one frame earlier, clamped at the oldest
// snapshot, entering playback mode if not already in it.
func (h *History) StepBackward() (FrameSnapshot, bool) {
	if h.count == 0 {
		return FrameSnapshot{}, false
	}
	if !h.playing {
		h.cursor = h.count - 1
		h.playing = true
	}
	if h.cursor > 0 {
		h.cursor--
	}
	return h.at(h.cursor), true
}

// StepForward moves the cursor one frame later. Advancing past the live
// head exits playback mode, per spec.md §4.6 ("exiting playback snaps the
// cursor to the live head").
func (h *History) StepForward() (FrameSnapshot, bool) {
	if h.count == 0 || !h.playing {
		return FrameSnapshot{}, false
	}
	if h.cursor >= h.count-1 {
		h.playing = false
		return h.at(h.count - 1), true
	}
	h.cursor++
	return h.at(h.cursor), true
}

// ExitPlayback snaps the cursor to the live head and resumes live
// stepping.
func (h *History) ExitPlayback() {
	h.playing = false
	if h.count > 0 {
		h.cursor = h.count - 1
	}
}

// Reset clears all recorded snapshots and exits playback. Per spec.md
// §4.6, this is the only operation that clears history; parameter
// changes do not.
func (h *History) Reset() {
	h.start = 0
	h.count = 0
	h.cursor = 0
	h.playing = false
}
