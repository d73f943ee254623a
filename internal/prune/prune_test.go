package prune

import (
	"context"
	"errors"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"scriptc/internal/ice"
	"scriptc/internal/js"
)

type builder struct {
	p *js.Program
}

func newBuilder() *builder {
	return &builder{p: &js.Program{Name: "test"}}
}

func (b *builder) name(ident string, flags js.NameFlags) *js.Name {
	return b.p.NewName(ident, flags)
}

func call(n *js.Name) *js.Stmt {
	return js.NewExprStmt(js.NewCall(js.NewNameRef(n)))
}

// fn appends function name() { calls... } to the top level.
func (b *builder) fn(name *js.Name, calls ...*js.Name) *js.Stmt {
	body := js.NewBlock()
	for _, c := range calls {
		body.Stmts = append(body.Stmts, call(c))
	}
	st := js.NewFunctionDecl(name, nil, body)
	b.p.Stmts = append(b.p.Stmts, st)
	return st
}

func (b *builder) top(st *js.Stmt) {
	b.p.Stmts = append(b.p.Stmts, st)
}

func declared(p *js.Program) []string {
	var out []string
	for _, st := range p.Stmts {
		if _, name := st.FunctionDecl(); name != nil {
			out = append(out, name.Ident)
		}
	}
	return out
}

func idents(names []*js.Name) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, n.Ident)
	}
	return out
}

func TestReferencedFromAnotherFunctionSurvives(t *testing.T) {
	b := newBuilder()
	foo := b.name("foo", js.NameObfuscatable)
	bar := b.name("bar", js.NameObfuscatable)
	b.fn(foo)
	b.fn(bar, foo)
	b.top(call(bar))

	rep, err := RemoveUnusedFunctions(context.Background(), b.p)
	if err != nil {
		t.Fatalf("RemoveUnusedFunctions: %v", err)
	}
	if rep.Changed || len(rep.Removed) != 0 {
		t.Fatalf("nothing should be removed, got %v", idents(rep.Removed))
	}
	if rep.Candidates != 2 {
		t.Fatalf("Candidates = %d, want 2", rep.Candidates)
	}
	if got := declared(b.p); !slices.Equal(got, []string{"foo", "bar"}) {
		t.Fatalf("declarations = %v", got)
	}
}

func TestUnreferencedObfuscatableFunctionIsRemoved(t *testing.T) {
	b := newBuilder()
	foo := b.name("foo", js.NameObfuscatable)
	b.fn(foo)

	rep, err := RemoveUnusedFunctions(context.Background(), b.p)
	if err != nil {
		t.Fatalf("RemoveUnusedFunctions: %v", err)
	}
	if !rep.Changed {
		t.Fatalf("expected a change")
	}
	if len(b.p.Stmts) != 0 {
		t.Fatalf("declaration should be gone, %d statements left", len(b.p.Stmts))
	}
	if len(rep.Removed) != 1 || rep.Removed[0] != foo {
		t.Fatalf("Removed = %v", idents(rep.Removed))
	}
}

func TestUnreferencedProtectedFunctionIsRetained(t *testing.T) {
	b := newBuilder()
	foo := b.name("foo", 0)
	b.fn(foo)

	rep, err := RemoveUnusedFunctions(context.Background(), b.p)
	if err != nil {
		t.Fatalf("RemoveUnusedFunctions: %v", err)
	}
	if rep.Changed {
		t.Fatalf("protected function must not be removed")
	}
	if len(b.p.Stmts) != 1 {
		t.Fatalf("declaration should remain")
	}
	if len(rep.Retained) != 1 || rep.Retained[0] != foo {
		t.Fatalf("Retained = %v", idents(rep.Retained))
	}
}

func TestUnreferencedInitializerIsInternalError(t *testing.T) {
	b := newBuilder()
	dead := b.name("dead", js.NameObfuscatable)
	clinit := b.name("$clinit_Main", js.NameObfuscatable|js.NameInitializer)
	b.fn(dead)
	b.fn(clinit)

	_, err := RemoveUnusedFunctions(context.Background(), b.p)
	if !errors.Is(err, ice.ErrInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if !strings.Contains(err.Error(), "initializer $clinit_Main is never referenced") {
		t.Errorf("unexpected message: %v", err)
	}
	if !strings.Contains(err.Error(), "prune") {
		t.Errorf("error should name the pass: %v", err)
	}
	if len(b.p.Stmts) != 2 {
		t.Fatalf("aborted sweep must leave the program untouched, %d statements", len(b.p.Stmts))
	}
}

func TestMutuallyReferencingDeadFunctionsSurviveCensus(t *testing.T) {
	b := newBuilder()
	a := b.name("a", js.NameObfuscatable)
	c := b.name("b", js.NameObfuscatable)
	b.fn(a, c)
	b.fn(c, a)

	rep, err := RemoveUnusedFunctions(context.Background(), b.p)
	if err != nil {
		t.Fatalf("RemoveUnusedFunctions: %v", err)
	}
	if rep.Changed {
		t.Fatalf("census must keep mutually referencing functions")
	}
	if got := declared(b.p); !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("declarations = %v", got)
	}
}

func TestSelfRecursiveFunctionSurvivesCensus(t *testing.T) {
	b := newBuilder()
	loop := b.name("loop", js.NameObfuscatable)
	b.fn(loop, loop)

	rep, err := RemoveUnusedFunctions(context.Background(), b.p)
	if err != nil {
		t.Fatalf("RemoveUnusedFunctions: %v", err)
	}
	if rep.Changed {
		t.Fatalf("a self reference counts as a reference")
	}
}

func TestOnlyNamedTopLevelFunctionsAreCandidates(t *testing.T) {
	b := newBuilder()
	outer := b.name("outer", js.NameObfuscatable)
	inner := b.name("inner", js.NameObfuscatable)
	handler := b.name("handler", js.NameObfuscatable)

	// function outer() { function inner() {} }
	b.top(js.NewFunctionDecl(outer, nil, js.NewBlock(js.NewFunctionDecl(inner, nil, nil))))
	// (function () {})();
	b.top(js.NewExprStmt(js.NewCall(js.NewFunction(nil, nil, nil))))
	// var handler = function () {};
	b.top(js.NewVar(handler, js.NewFunction(nil, nil, nil)))

	rep, err := RemoveUnusedFunctions(context.Background(), b.p)
	if err != nil {
		t.Fatalf("RemoveUnusedFunctions: %v", err)
	}
	if rep.Candidates != 1 {
		t.Fatalf("Candidates = %d, want 1", rep.Candidates)
	}
	if !slices.Equal(idents(rep.Removed), []string{"outer"}) {
		t.Fatalf("Removed = %v", idents(rep.Removed))
	}
	if len(b.p.Stmts) != 2 {
		t.Fatalf("anonymous function and var must remain, got %d statements", len(b.p.Stmts))
	}
}

func TestReferencesThroughPropertiesAndVarsCount(t *testing.T) {
	b := newBuilder()
	exported := b.name("exported", js.NameObfuscatable)
	handler := b.name("handler", js.NameObfuscatable)
	window := b.name("window", 0)
	cb := b.name("cb", js.NameObfuscatable)
	b.fn(exported)
	b.fn(handler)
	// window.onload = exported;
	b.top(js.NewExprStmt(js.NewAssign(js.NewDot(js.NewNameRef(window), "onload"), js.NewNameRef(exported))))
	// var cb = handler;
	b.top(js.NewVar(cb, js.NewNameRef(handler)))

	rep, err := RemoveUnusedFunctions(context.Background(), b.p)
	if err != nil {
		t.Fatalf("RemoveUnusedFunctions: %v", err)
	}
	if rep.Changed {
		t.Fatalf("referenced functions removed: %v", idents(rep.Removed))
	}
}

func TestRemovedAreReportedInProgramOrder(t *testing.T) {
	b := newBuilder()
	var want []string
	for _, id := range []string{"z", "y", "x", "w"} {
		b.fn(b.name(id, js.NameObfuscatable))
		want = append(want, id)
	}
	rep, err := RemoveUnusedFunctions(context.Background(), b.p)
	if err != nil {
		t.Fatalf("RemoveUnusedFunctions: %v", err)
	}
	if got := idents(rep.Removed); !slices.Equal(got, want) {
		t.Fatalf("Removed = %v, want %v", got, want)
	}
}

func TestMalformedReferenceIsInternalError(t *testing.T) {
	b := newBuilder()
	b.top(js.NewExprStmt(&js.Expr{Kind: js.ExprNameRef, Data: js.NameRefData{}}))
	if _, err := RemoveUnusedFunctions(context.Background(), b.p); !errors.Is(err, ice.ErrInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestRemoveHonorsCancellation(t *testing.T) {
	b := newBuilder()
	b.fn(b.name("foo", js.NameObfuscatable))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RemoveUnusedFunctions(ctx, b.p); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(b.p.Stmts) != 1 {
		t.Fatalf("canceled run must not mutate the program")
	}
}

// referenceCounts counts name references per name.
func referenceCounts(t *testing.T, p *js.Program) map[*js.Name]int {
	t.Helper()
	counts := make(map[*js.Name]int)
	scan := &referenceScanner{ref: func(n *js.Name) { counts[n]++ }}
	if _, err := js.Accept(p, scan); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	return counts
}

// randomProgram builds n top-level functions with random call edges,
// random protection flags and a few top-level calls.
func randomProgram(rng *rand.Rand, n int) *builder {
	b := newBuilder()
	names := make([]*js.Name, n)
	for i := range names {
		flags := js.NameObfuscatable
		if rng.Intn(5) == 0 {
			flags = 0
		}
		names[i] = b.name("f"+string(rune('a'+i)), flags)
	}
	for _, name := range names {
		var calls []*js.Name
		for _, callee := range names {
			if rng.Intn(n) == 0 {
				calls = append(calls, callee)
			}
		}
		b.fn(name, calls...)
	}
	for k, m := 0, rng.Intn(3); k < m; k++ {
		b.top(call(names[rng.Intn(n)]))
	}
	return b
}

func TestEliminationSafetyAndSoundness(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		b := randomProgram(rng, 2+rng.Intn(8))
		before := referenceCounts(t, b.p)
		var candidates []*js.Name
		for _, st := range b.p.Stmts {
			if _, name := st.FunctionDecl(); name != nil {
				candidates = append(candidates, name)
			}
		}

		rep, err := RemoveUnusedFunctions(context.Background(), b.p)
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}

		removed := make(map[*js.Name]bool, len(rep.Removed))
		for _, n := range rep.Removed {
			removed[n] = true
			if before[n] != 0 || !n.Obfuscatable() || n.IsInitializer() {
				t.Fatalf("round %d: unsafe removal of %s", round, n.Ident)
			}
		}
		for _, n := range candidates {
			if removed[n] {
				continue
			}
			if before[n] == 0 && n.Obfuscatable() {
				t.Fatalf("round %d: unreferenced %s survived", round, n.Ident)
			}
		}
		if rep.Changed != (len(rep.Removed) > 0) {
			t.Fatalf("round %d: Changed = %v with %d removals", round, rep.Changed, len(rep.Removed))
		}
	}
}

func TestParseStrategy(t *testing.T) {
	cases := map[string]Strategy{
		"":             StrategyCensus,
		"census":       StrategyCensus,
		"Reachability": StrategyReachability,
	}
	for in, want := range cases {
		got, err := ParseStrategy(in)
		if err != nil || got != want {
			t.Errorf("ParseStrategy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseStrategy("aggressive"); err == nil {
		t.Errorf("expected error for unknown strategy")
	}
}
