// Package wrapnorm collapses host-object wrapper subtypes onto the canonical
// wrapper type.
//
// Every wrapper subtype is the same opaque handle once lowered, so after this
// pass the IR mentions only the canonical wrapper: in casts, instanceof tests,
// class literals, array allocations and the declared types of fields, locals,
// parameters and method results. Array types keep their dimensionality; only
// the leaf element type is canonicalized.
package wrapnorm

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"scriptc/internal/hir"
	"scriptc/internal/ice"
	"scriptc/internal/trace"
	"scriptc/internal/types"
)

// PassName identifies the pass in traces, timings and internal errors.
const PassName = "canonicalize"

// ErrNoCanonical is returned when a wrapper predicate is supplied without a
// canonical type to collapse onto.
var ErrNoCanonical = errors.New("wrapper predicate without canonical wrapper type")

// Options selects the wrapper family. Zero values fall back to the program's
// interner: its IsWrapper predicate and its CanonicalWrapper root.
type Options struct {
	IsWrapper func(types.TypeID) bool
	Canonical types.TypeID
}

// Result summarizes one Canonicalize call.
type Result struct {
	Replaced  int  // expression nodes rebuilt with a canonical type
	Retyped   int  // declarations whose type slot was rewritten in place
	Restamped int  // expressions whose stored result type was rewritten in place
	Changed   bool // whether the traversal recorded any mutation
}

// Canonicalize rewrites every wrapper type occurrence in prog in a single
// traversal. Running it again on its own output changes nothing.
func Canonicalize(ctx context.Context, prog *hir.Program, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if prog == nil || prog.Types == nil {
		return Result{}, fmt.Errorf("wrapnorm: program without type interner")
	}

	isWrapper := opts.IsWrapper
	if isWrapper == nil {
		isWrapper = prog.Types.IsWrapper
	}
	canonical := opts.Canonical
	if canonical == types.NoTypeID {
		canonical = prog.Types.CanonicalWrapper()
	}
	if canonical == types.NoTypeID {
		if opts.IsWrapper != nil {
			return Result{}, fmt.Errorf("wrapnorm: %w", ErrNoCanonical)
		}
		// No wrapper family is declared: nothing can be a wrapper.
		return Result{}, nil
	}

	_, span := trace.Start(ctx, trace.ScopePass, PassName)
	span.WithExtra("program", prog.Name)

	r := &rewriter{
		in:        prog.Types,
		isWrapper: isWrapper,
		canonical: canonical,
	}
	changed, err := hir.Accept(prog, r)
	if err != nil {
		span.End("failed")
		var ie *ice.Error
		if errors.As(err, &ie) && ie.Pass == "" {
			ie.Pass = PassName
		}
		return Result{}, fmt.Errorf("wrapnorm: %w", err)
	}

	res := Result{Replaced: r.replaced, Retyped: r.retyped, Restamped: r.restamped, Changed: changed}
	span.WithExtra("replaced", strconv.Itoa(res.Replaced)).
		WithExtra("retyped", strconv.Itoa(res.Retyped)).
		WithExtra("restamped", strconv.Itoa(res.Restamped)).
		End("")
	return res, nil
}

type rewriter struct {
	hir.BaseVisitor
	in        *types.Interner
	isWrapper func(types.TypeID) bool
	canonical types.TypeID

	replaced  int
	retyped   int
	restamped int
}

// wrapper runs the predicate so that a panicking predicate surfaces as an
// internal error.
func (r *rewriter) wrapper(id types.TypeID) (ok bool) {
	ice.Guard("wrapper predicate", func() {
		ok = r.isWrapper(id)
	})
	return ok
}

// translate maps a type occurrence to its canonical form. Arrays are
// canonicalized through their leaf element type at the same dimensionality.
func (r *rewriter) translate(id types.TypeID) types.TypeID {
	if id == types.NoTypeID {
		return id
	}
	leaf, dims := r.in.Leaf(id)
	if dims == 0 {
		if r.wrapper(id) {
			return r.canonical
		}
		return id
	}
	if r.wrapper(leaf) {
		return r.in.ArrayOf(r.canonical, dims)
	}
	return id
}

// retype rewrites a declaration type slot in place.
func (r *rewriter) retype(slot *types.TypeID, ctx *hir.Context) {
	if t := r.translate(*slot); t != *slot {
		*slot = t
		r.retyped++
		ctx.MarkChanged()
	}
}

// Visit handles declarations: their identity must stay stable for every
// reference, so only the type slot changes.
func (r *rewriter) Visit(n hir.Node, ctx *hir.Context) bool {
	switch n := n.(type) {
	case *hir.Field:
		r.retype(&n.Type, ctx)
	case *hir.Method:
		r.retype(&n.Result, ctx)
	case *hir.Param:
		r.retype(&n.Type, ctx)
	case *hir.Local:
		r.retype(&n.Type, ctx)
	}
	return true
}

// EndVisit rebuilds type-bearing expressions once their operands are final.
// Any other expression keeps its identity and only has its stored result
// type translated, so index, conditional and object creation results agree with
// the declarations they were computed from.
func (r *rewriter) EndVisit(n hir.Node, ctx *hir.Context) {
	e, ok := n.(*hir.Expr)
	if !ok {
		return
	}
	var repl *hir.Expr
	switch data := e.Data.(type) {
	case hir.CastData:
		if t := r.translate(data.Target); t != data.Target {
			repl = hir.NewCast(t, data.Value)
		}
	case hir.InstanceOfData:
		if t := r.translate(data.Test); t != data.Test {
			repl = hir.NewInstanceOf(t, data.Value, e.Type)
		}
	case hir.ClassLitData:
		if t := r.translate(data.Ref); t != data.Ref {
			repl = hir.NewClassLit(t, e.Type)
		}
	case hir.NewArrayData:
		if t := r.translate(data.Elem); t != data.Elem {
			repl = hir.NewArrayAlloc(r.in, t, data.Sizes, data.Init)
		}
	}
	if repl == nil {
		if t := r.translate(e.Type); t != e.Type {
			e.Type = t
			r.restamped++
			ctx.MarkChanged()
		}
		return
	}
	if !ctx.CanReplace() {
		ice.RaiseIn(PassName, "%s expression cannot be replaced at its position", e.Kind)
	}
	ctx.Replace(repl)
	r.replaced++
}
