// Package visit holds the mutation bookkeeping shared by the IR walkers.
//
// A walker hands every statement and expression slot a fresh Context. The
// visitor may ask for at most one structural mutation of that slot, either
// Replace or Remove; the walker applies it once the slot is closed. Misuse is
// an internal error, never silently ignored.
//
// Declaration slots get a Context with neither capability; visitors that
// patch a declaration in place report it with MarkChanged.
package visit

import "scriptc/internal/ice"

// Tracker aggregates whether any mutation happened during one traversal.
type Tracker struct {
	mutations int
}

// Changed reports whether at least one mutation was recorded.
func (t *Tracker) Changed() bool { return t != nil && t.mutations > 0 }

// Mutations returns the number of recorded mutations.
func (t *Tracker) Mutations() int {
	if t == nil {
		return 0
	}
	return t.mutations
}

func (t *Tracker) record() {
	if t != nil {
		t.mutations++
	}
}

// Caps describes which structural mutations a slot supports.
type Caps uint8

const (
	// CanReplace allows Replace on the slot.
	CanReplace Caps = 1 << iota
	// CanRemove allows Remove on the slot (list-held statements only).
	CanRemove
)

type slotState uint8

const (
	slotOpen slotState = iota
	slotReplaced
	slotRemoved
	slotClosed
)

func (s slotState) String() string {
	switch s {
	case slotOpen:
		return "open"
	case slotReplaced:
		return "replaced"
	case slotRemoved:
		return "removed"
	case slotClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Context is the per-slot mutation capability handed to visitors.
type Context[N any] struct {
	tracker *Tracker
	caps    Caps
	state   slotState
	repl    N
}

// NewContext opens a slot bound to tracker.
func NewContext[N any](tracker *Tracker, caps Caps) *Context[N] {
	return &Context[N]{tracker: tracker, caps: caps}
}

// CanReplace reports whether Replace is permitted on this slot right now.
func (c *Context[N]) CanReplace() bool {
	return c.caps&CanReplace != 0 && c.state == slotOpen
}

// CanRemove reports whether Remove is permitted on this slot right now.
func (c *Context[N]) CanRemove() bool {
	return c.caps&CanRemove != 0 && c.state == slotOpen
}

// Replace schedules n to take the place of the current node.
func (c *Context[N]) Replace(n N) {
	c.checkOpen("replace")
	if c.caps&CanReplace == 0 {
		ice.Raise("replace on a slot that cannot be replaced")
	}
	c.state = slotReplaced
	c.repl = n
	c.tracker.record()
}

// Remove schedules the current node for deletion from its enclosing list.
func (c *Context[N]) Remove() {
	c.checkOpen("remove")
	if c.caps&CanRemove == 0 {
		ice.Raise("remove on a slot that is not held in a list")
	}
	c.state = slotRemoved
	c.tracker.record()
}

// MarkChanged records an in-place edit of the current node (for example a
// declaration whose type slot was rewritten). It does not consume the slot.
func (c *Context[N]) MarkChanged() {
	if c.state == slotClosed {
		ice.Raise("mark changed on a closed slot")
	}
	c.tracker.record()
}

func (c *Context[N]) checkOpen(op string) {
	switch c.state {
	case slotOpen:
	case slotClosed:
		ice.Raise("%s outside of a traversal position", op)
	default:
		ice.Raise("%s on a slot already %s", op, c.state)
	}
}

// Mutated reports whether Replace or Remove has been called.
func (c *Context[N]) Mutated() bool {
	return c.state == slotReplaced || c.state == slotRemoved
}

// Close ends the slot and returns its outcome. Any later mutation attempt
// through a retained reference is an internal error.
func (c *Context[N]) Close() (repl N, replaced, removed bool) {
	st := c.state
	c.state = slotClosed
	return c.repl, st == slotReplaced, st == slotRemoved
}
