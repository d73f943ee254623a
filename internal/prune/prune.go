// Package prune removes named top-level functions nothing refers to.
//
// The default strategy is a static reference census: a function survives if
// its name appears in any name reference anywhere in the program, including
// inside other dead functions. Closed clusters of functions that only call
// each other therefore survive. The reachability strategy seeds liveness from
// top-level code and protected names instead and removes such clusters too.
//
// Names that are not obfuscatable are never removed. An unreferenced module
// initializer is an internal error: earlier stages guarantee it is called.
package prune

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"scriptc/internal/ice"
	"scriptc/internal/js"
	"scriptc/internal/trace"
)

// PassName identifies the pass in traces, timings and internal errors.
const PassName = "prune"

// Strategy selects how dead functions are determined.
type Strategy uint8

const (
	// StrategyCensus removes functions with zero static references.
	StrategyCensus Strategy = iota
	// StrategyReachability removes functions not reachable from top-level
	// code or protected names.
	StrategyReachability
)

func (s Strategy) String() string {
	switch s {
	case StrategyCensus:
		return "census"
	case StrategyReachability:
		return "reachability"
	default:
		return "unknown"
	}
}

// ParseStrategy converts a configuration string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "", "census":
		return StrategyCensus, nil
	case "reachability", "reachable":
		return StrategyReachability, nil
	default:
		return StrategyCensus, fmt.Errorf("invalid prune strategy: %q (expected: census|reachability)", s)
	}
}

// Report summarizes one pruning run.
type Report struct {
	Candidates int        // named top-level function declarations found
	Removed    []*js.Name // swept declarations, in program order
	Retained   []*js.Name // dead declarations kept because they are not obfuscatable
	Changed    bool       // whether any statement was removed
}

// RemoveUnusedFunctions runs the census strategy: one walk collects the
// candidates, one walk drops every referenced name, one walk sweeps the rest.
func RemoveUnusedFunctions(ctx context.Context, prog *js.Program) (Report, error) {
	return Run(ctx, prog, StrategyCensus)
}

// RemoveUnreachableFunctions runs the reachability strategy.
func RemoveUnreachableFunctions(ctx context.Context, prog *js.Program) (Report, error) {
	return Run(ctx, prog, StrategyReachability)
}

// Run applies one pruning round with the given strategy.
func Run(ctx context.Context, prog *js.Program, strategy Strategy) (rep Report, err error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	if prog == nil {
		return Report{}, fmt.Errorf("prune: nil program")
	}

	ctx, span := trace.Start(ctx, trace.ScopePass, PassName)
	span.WithExtra("program", prog.Name).WithExtra("strategy", strategy.String())
	defer func() {
		if err != nil {
			span.End("failed")
			return
		}
		span.WithExtra("candidates", strconv.Itoa(rep.Candidates)).
			WithExtra("removed", strconv.Itoa(len(rep.Removed))).
			WithExtra("retained", strconv.Itoa(len(rep.Retained))).
			End("")
	}()

	cands, err := collectCandidates(prog)
	if err != nil {
		return Report{}, wrap(err)
	}

	var dead map[*js.Name]*js.Expr
	switch strategy {
	case StrategyCensus:
		dead, err = unreferenced(prog, cands)
	case StrategyReachability:
		dead, err = unreachable(prog, cands)
	default:
		return Report{}, fmt.Errorf("prune: unknown strategy %v", strategy)
	}
	if err != nil {
		return Report{}, wrap(err)
	}

	rep.Candidates = len(cands.order)
	sw := &sweeper{dead: dead, report: &rep, ctx: ctx}
	changed, err := js.Accept(prog, sw)
	if err != nil {
		return Report{}, wrap(err)
	}
	rep.Changed = changed
	return rep, nil
}

func wrap(err error) error {
	var ie *ice.Error
	if errors.As(err, &ie) && ie.Pass == "" {
		ie.Pass = PassName
	}
	return fmt.Errorf("prune: %w", err)
}

// candidates maps each named top-level function to its literal.
type candidates struct {
	byName map[*js.Name]*js.Expr
	order  []*js.Name
}

func collectCandidates(prog *js.Program) (*candidates, error) {
	c := &censusVisitor{cands: &candidates{byName: make(map[*js.Name]*js.Expr)}}
	if _, err := js.Accept(prog, c); err != nil {
		return nil, err
	}
	return c.cands, nil
}

// censusVisitor records top-level function declarations. Statements are not
// entered, so only program-level statements are ever seen.
type censusVisitor struct {
	js.BaseVisitor
	cands *candidates
}

func (v *censusVisitor) Visit(n js.Node, _ *js.Context) bool {
	switch n := n.(type) {
	case *js.Program:
		return true
	case *js.Stmt:
		fn, name := n.FunctionDecl()
		if fn == nil {
			return false
		}
		if _, dup := v.cands.byName[name]; dup {
			ice.RaiseIn(PassName, "function %s declared twice", name.Ident)
		}
		v.cands.byName[name] = fn
		v.cands.order = append(v.cands.order, name)
	}
	return false
}

// referenceScanner reports the target of every name reference it walks over.
type referenceScanner struct {
	js.BaseVisitor
	ref func(*js.Name)
}

func (v *referenceScanner) Visit(n js.Node, _ *js.Context) bool {
	e, ok := n.(*js.Expr)
	if !ok || e.Kind != js.ExprNameRef {
		return true
	}
	data, ok := e.Data.(js.NameRefData)
	if !ok || data.Name == nil {
		ice.RaiseIn(PassName, "name reference without a name")
	}
	v.ref(data.Name)
	return true
}

// unreferenced keeps the candidates no reference in the program mentions.
func unreferenced(prog *js.Program, cands *candidates) (map[*js.Name]*js.Expr, error) {
	dead := make(map[*js.Name]*js.Expr, len(cands.byName))
	for name, fn := range cands.byName {
		dead[name] = fn
	}
	scan := &referenceScanner{ref: func(n *js.Name) { delete(dead, n) }}
	if _, err := js.Accept(prog, scan); err != nil {
		return nil, err
	}
	return dead, nil
}

// sweeper removes the dead declarations it finds at the top level.
type sweeper struct {
	js.BaseVisitor
	dead   map[*js.Name]*js.Expr
	report *Report
	ctx    context.Context // carries the pass span for removal events
}

func (v *sweeper) Visit(n js.Node, ctx *js.Context) bool {
	st, ok := n.(*js.Stmt)
	if !ok {
		return true
	}
	fn, name := st.FunctionDecl()
	if fn == nil || v.dead[name] != fn {
		return false
	}
	switch {
	case name.IsInitializer():
		ice.RaiseIn(PassName, "initializer %s is never referenced", name.Ident)
	case !name.Obfuscatable():
		v.report.Retained = append(v.report.Retained, name)
	default:
		ctx.Remove()
		v.report.Removed = append(v.report.Removed, name)
		trace.Point(v.ctx, trace.ScopeNode, "remove", name.Ident)
	}
	return false
}
