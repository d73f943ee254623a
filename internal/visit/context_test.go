package visit

import (
	"errors"
	"testing"

	"scriptc/internal/ice"
)

func catch(fn func()) (err error) {
	defer ice.Recover(&err)
	fn()
	return nil
}

func TestReplaceRecordsChange(t *testing.T) {
	tr := &Tracker{}
	ctx := NewContext[string](tr, CanReplace|CanRemove)
	ctx.Replace("new")
	repl, replaced, removed := ctx.Close()
	if !replaced || removed || repl != "new" {
		t.Fatalf("Close() = (%q, %v, %v)", repl, replaced, removed)
	}
	if !tr.Changed() || tr.Mutations() != 1 {
		t.Fatalf("tracker not updated: %d", tr.Mutations())
	}
}

func TestUntouchedSlotIsNotAChange(t *testing.T) {
	tr := &Tracker{}
	ctx := NewContext[int](tr, CanReplace)
	if _, replaced, removed := ctx.Close(); replaced || removed {
		t.Fatalf("untouched slot reported a mutation")
	}
	if tr.Changed() {
		t.Fatalf("tracker changed without mutation")
	}
}

func TestMisuseIsInternalError(t *testing.T) {
	tests := []struct {
		name string
		caps Caps
		run  func(*Context[int])
	}{
		{"double replace", CanReplace, func(c *Context[int]) { c.Replace(1); c.Replace(2) }},
		{"replace then remove", CanReplace | CanRemove, func(c *Context[int]) { c.Replace(1); c.Remove() }},
		{"remove then replace", CanReplace | CanRemove, func(c *Context[int]) { c.Remove(); c.Replace(1) }},
		{"remove expression slot", CanReplace, func(c *Context[int]) { c.Remove() }},
		{"replace declaration", 0, func(c *Context[int]) { c.Replace(1) }},
		{"after close", CanReplace, func(c *Context[int]) { c.Close(); c.Replace(1) }},
		{"mark after close", CanReplace, func(c *Context[int]) { c.Close(); c.MarkChanged() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewContext[int](&Tracker{}, tt.caps)
			err := catch(func() { tt.run(ctx) })
			if !errors.Is(err, ice.ErrInternal) {
				t.Fatalf("expected internal error, got %v", err)
			}
		})
	}
}

func TestCapabilitiesReflectState(t *testing.T) {
	ctx := NewContext[int](&Tracker{}, CanReplace|CanRemove)
	if !ctx.CanReplace() || !ctx.CanRemove() {
		t.Fatalf("fresh list slot should allow both mutations")
	}
	ctx.Remove()
	if ctx.CanReplace() || ctx.CanRemove() {
		t.Fatalf("consumed slot must not offer further mutations")
	}
	if !ctx.Mutated() {
		t.Fatalf("Mutated should be true after Remove")
	}
}

func TestMarkChangedKeepsSlotOpen(t *testing.T) {
	tr := &Tracker{}
	ctx := NewContext[int](tr, CanReplace)
	ctx.MarkChanged()
	ctx.MarkChanged()
	if !ctx.CanReplace() {
		t.Fatalf("MarkChanged must not consume the slot")
	}
	if tr.Mutations() != 2 {
		t.Fatalf("mutations = %d, want 2", tr.Mutations())
	}
}
