package prune

import (
	"context"
	"errors"
	"slices"
	"testing"

	"scriptc/internal/ice"
	"scriptc/internal/js"
)

func TestReachabilityRemovesDeadClusters(t *testing.T) {
	b := newBuilder()
	a := b.name("a", js.NameObfuscatable)
	c := b.name("b", js.NameObfuscatable)
	main := b.name("main", js.NameObfuscatable)
	helper := b.name("helper", js.NameObfuscatable)
	b.fn(a, c)
	b.fn(c, a)
	b.fn(main, helper)
	b.fn(helper)
	b.top(call(main))

	rep, err := RemoveUnreachableFunctions(context.Background(), b.p)
	if err != nil {
		t.Fatalf("RemoveUnreachableFunctions: %v", err)
	}
	if got := idents(rep.Removed); !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("Removed = %v", got)
	}
	if got := declared(b.p); !slices.Equal(got, []string{"main", "helper"}) {
		t.Fatalf("declarations = %v", got)
	}
}

func TestReachabilityRemovesDeadChainsInOneRound(t *testing.T) {
	b := newBuilder()
	x := b.name("x", js.NameObfuscatable)
	y := b.name("y", js.NameObfuscatable)
	b.fn(x, y)
	b.fn(y)

	rep, err := RemoveUnreachableFunctions(context.Background(), b.p)
	if err != nil {
		t.Fatalf("RemoveUnreachableFunctions: %v", err)
	}
	if len(rep.Removed) != 2 || len(b.p.Stmts) != 0 {
		t.Fatalf("Removed = %v, %d statements left", idents(rep.Removed), len(b.p.Stmts))
	}
}

func TestReachabilitySeedsProtectedNames(t *testing.T) {
	b := newBuilder()
	api := b.name("api", 0)
	impl := b.name("impl", js.NameObfuscatable)
	b.fn(api, impl)
	b.fn(impl)

	rep, err := RemoveUnreachableFunctions(context.Background(), b.p)
	if err != nil {
		t.Fatalf("RemoveUnreachableFunctions: %v", err)
	}
	if rep.Changed {
		t.Fatalf("callees of protected functions are live, removed %v", idents(rep.Removed))
	}
}

func TestReachabilityKeepsReferencedInitializers(t *testing.T) {
	b := newBuilder()
	clinit := b.name("$clinit", js.NameObfuscatable|js.NameInitializer)
	dead := b.name("dead", js.NameObfuscatable)
	b.fn(clinit)
	b.fn(dead, clinit)

	rep, err := RemoveUnreachableFunctions(context.Background(), b.p)
	if err != nil {
		t.Fatalf("RemoveUnreachableFunctions: %v", err)
	}
	if got := idents(rep.Removed); !slices.Equal(got, []string{"dead"}) {
		t.Fatalf("Removed = %v", got)
	}
	if got := declared(b.p); !slices.Equal(got, []string{"$clinit"}) {
		t.Fatalf("declarations = %v", got)
	}
}

func TestReachabilityUnreferencedInitializerIsInternalError(t *testing.T) {
	b := newBuilder()
	b.fn(b.name("$clinit", js.NameInitializer))

	_, err := RemoveUnreachableFunctions(context.Background(), b.p)
	if !errors.Is(err, ice.ErrInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}
