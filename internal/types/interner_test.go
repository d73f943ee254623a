package types

import (
	"errors"
	"testing"

	"scriptc/internal/ice"
)

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Void == NoTypeID || b.Bool == NoTypeID || b.String == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	str, _ := in.Lookup(b.String)
	if str.Kind != KindString {
		t.Fatalf("expected string kind, got %v", str.Kind)
	}
}

func TestArraysAreFlattenedAndDeduplicated(t *testing.T) {
	in := NewInterner()
	elem := in.Builtins().Int
	one := in.ArrayOf(elem, 1)
	twoDirect := in.ArrayOf(elem, 2)
	twoNested := in.ArrayOf(one, 1)
	if twoDirect != twoNested {
		t.Fatalf("int[][] interned twice: %d vs %d", twoDirect, twoNested)
	}
	leaf, dims := in.Leaf(twoNested)
	if leaf != elem || dims != 2 {
		t.Fatalf("Leaf(int[][]) = (%d, %d), want (%d, 2)", leaf, dims, elem)
	}
	if got := in.ElemOf(twoDirect); got != one {
		t.Fatalf("ElemOf(int[][]) = %s, want int[]", in.Name(got))
	}
	if got := in.Name(twoDirect); got != "int[][]" {
		t.Fatalf("Name = %q", got)
	}
}

func TestNominalTypesAreDistinct(t *testing.T) {
	in := NewInterner()
	a := in.RegisterClass("Node", NoTypeID)
	b := in.RegisterClass("Node", NoTypeID)
	if a == b {
		t.Fatalf("nominal registrations must not be deduplicated")
	}
	if got, ok := in.LookupNominal("Node"); !ok || got != a {
		t.Fatalf("LookupNominal should return the first registration")
	}
}

func TestWrapperPredicate(t *testing.T) {
	in := NewInterner()
	object := in.RegisterClass("Object", NoTypeID)
	host := in.RegisterClass("HostObject", object)
	element := in.RegisterClass("Element", host)
	div := in.RegisterClass("DivElement", element)
	plain := in.RegisterClass("Widget", object)
	iface := in.RegisterInterface("HasText")
	in.AddInterface(element, iface)
	implementer := in.RegisterClass("Label", object)
	in.AddInterface(implementer, iface)

	if in.IsWrapper(div) {
		t.Fatalf("no wrapper root registered yet")
	}
	in.SetWrapperRoot(host)

	tests := []struct {
		id   TypeID
		want bool
	}{
		{host, true},
		{element, true},
		{div, true},
		{plain, false},
		{object, false},
		{iface, false},
		{implementer, false},
		{in.ArrayOf(div, 1), false},
		{in.Builtins().String, false},
	}
	for _, tt := range tests {
		if got := in.IsWrapper(tt.id); got != tt.want {
			t.Errorf("IsWrapper(%s) = %v, want %v", in.Name(tt.id), got, tt.want)
		}
	}
}

func TestCyclicSupertypeChainIsInternalError(t *testing.T) {
	in := NewInterner()
	host := in.RegisterClass("HostObject", NoTypeID)
	a := in.RegisterClass("A", NoTypeID)
	b := in.RegisterClass("B", a)
	in.SetSuper(a, b)
	in.SetWrapperRoot(host)

	err := func() (err error) {
		defer ice.Recover(&err)
		in.IsWrapper(a)
		return nil
	}()
	if !errors.Is(err, ice.ErrInternal) {
		t.Fatalf("expected internal error for cyclic chain, got %v", err)
	}
}
