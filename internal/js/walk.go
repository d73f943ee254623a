package js

import (
	"scriptc/internal/ice"
	"scriptc/internal/visit"
)

// Context is the per-slot mutation capability for script IR traversals.
// Statements held in a list (program top level, block bodies) support Replace
// and Remove; expression slots support Replace only.
type Context = visit.Context[Node]

// Visitor receives nodes in depth-first order. Visit runs before the children
// and returns false to skip them; EndVisit runs after the children.
type Visitor interface {
	Visit(n Node, ctx *Context) bool
	EndVisit(n Node, ctx *Context)
}

// BaseVisitor visits everything and does nothing.
type BaseVisitor struct{}

// Visit implements Visitor.
func (BaseVisitor) Visit(Node, *Context) bool { return true }

// EndVisit implements Visitor.
func (BaseVisitor) EndVisit(Node, *Context) {}

// Accept walks n with v and reports whether any mutation was recorded.
// Internal-consistency violations raised during the walk are returned as
// errors matching ice.ErrInternal.
func Accept(n Node, v Visitor) (changed bool, err error) {
	defer ice.Recover(&err)
	w := &walker{v: v, tracker: &visit.Tracker{}}
	switch n := n.(type) {
	case *Program:
		w.program(n)
	case *Block:
		w.block(n)
	case *Stmt:
		w.stmt(n, 0)
	case *Expr:
		e := n
		w.exprSlot(&e, 0)
	default:
		ice.Raise("js: unhandled node type %T", n)
	}
	return w.tracker.Changed(), nil
}

type walker struct {
	v       Visitor
	tracker *visit.Tracker
}

func (w *walker) program(p *Program) {
	if p == nil {
		return
	}
	ctx := visit.NewContext[Node](w.tracker, 0)
	if w.v.Visit(p, ctx) {
		p.Stmts = w.stmtList(p.Stmts)
	}
	w.v.EndVisit(p, ctx)
	ctx.Close()
}

func (w *walker) block(b *Block) {
	if b == nil {
		return
	}
	ctx := visit.NewContext[Node](w.tracker, 0)
	if w.v.Visit(b, ctx) {
		b.Stmts = w.stmtList(b.Stmts)
	}
	w.v.EndVisit(b, ctx)
	ctx.Close()
}

func (w *walker) stmtList(list []*Stmt) []*Stmt {
	var out []*Stmt
	for i, st := range list {
		next, removed := w.stmt(st, visit.CanReplace|visit.CanRemove)
		if out == nil && (removed || next != st) {
			out = make([]*Stmt, 0, len(list))
			out = append(out, list[:i]...)
		}
		if out != nil && !removed {
			out = append(out, next)
		}
	}
	if out == nil {
		return list
	}
	return out
}

func (w *walker) stmt(st *Stmt, caps visit.Caps) (next *Stmt, removed bool) {
	if st == nil {
		ice.Raise("js: nil statement in list")
	}
	ctx := visit.NewContext[Node](w.tracker, caps)
	if w.v.Visit(st, ctx) && !ctx.Mutated() {
		w.stmtChildren(st)
	}
	w.v.EndVisit(st, ctx)
	repl, replaced, removed := ctx.Close()
	if removed {
		return nil, true
	}
	if replaced {
		ns, ok := repl.(*Stmt)
		if !ok || ns == nil {
			ice.Raise("js: statement slot replaced with %T", repl)
		}
		return ns, false
	}
	return st, false
}

func (w *walker) stmtChildren(st *Stmt) {
	switch st.Kind {
	case StmtExpr:
		data, ok := st.Data.(ExprStmtData)
		if !ok {
			ice.Raise("js: expression statement carries %T", st.Data)
		}
		w.expr(&data.Expr)
		st.Data = data
	case StmtVar:
		data, ok := st.Data.(VarData)
		if !ok {
			ice.Raise("js: var statement carries %T", st.Data)
		}
		w.expr(&data.Init)
		st.Data = data
	case StmtReturn:
		data, ok := st.Data.(ReturnData)
		if !ok {
			ice.Raise("js: return statement carries %T", st.Data)
		}
		w.expr(&data.Value)
		st.Data = data
	case StmtIf:
		data, ok := st.Data.(IfData)
		if !ok {
			ice.Raise("js: if statement carries %T", st.Data)
		}
		w.expr(&data.Cond)
		w.block(data.Then)
		w.block(data.Else)
		st.Data = data
	case StmtWhile:
		data, ok := st.Data.(WhileData)
		if !ok {
			ice.Raise("js: while statement carries %T", st.Data)
		}
		w.expr(&data.Cond)
		w.block(data.Body)
		st.Data = data
	case StmtBlock:
		data, ok := st.Data.(BlockStmtData)
		if !ok {
			ice.Raise("js: block statement carries %T", st.Data)
		}
		w.block(data.Block)
	case StmtThrow:
		data, ok := st.Data.(ThrowData)
		if !ok {
			ice.Raise("js: throw statement carries %T", st.Data)
		}
		w.expr(&data.Value)
		st.Data = data
	case StmtBreak, StmtContinue:
	default:
		ice.Raise("js: unhandled statement kind %s", st.Kind)
	}
}

func (w *walker) expr(slot **Expr) {
	w.exprSlot(slot, visit.CanReplace)
}

func (w *walker) exprs(list []*Expr) {
	for i := range list {
		w.expr(&list[i])
	}
}

func (w *walker) exprSlot(slot **Expr, caps visit.Caps) {
	e := *slot
	if e == nil {
		return
	}
	ctx := visit.NewContext[Node](w.tracker, caps)
	if w.v.Visit(e, ctx) && !ctx.Mutated() {
		w.exprChildren(e)
	}
	w.v.EndVisit(e, ctx)
	repl, replaced, _ := ctx.Close()
	if replaced {
		ne, ok := repl.(*Expr)
		if !ok || ne == nil {
			ice.Raise("js: expression slot replaced with %T", repl)
		}
		*slot = ne
	}
}

func (w *walker) exprChildren(e *Expr) {
	switch e.Kind {
	case ExprNameRef, ExprLiteral, ExprThis:
	case ExprFunction:
		data, ok := e.Data.(FunctionData)
		if !ok {
			ice.Raise("js: function carries %T", e.Data)
		}
		w.block(data.Body)
	case ExprCall:
		data, ok := e.Data.(CallData)
		if !ok {
			ice.Raise("js: call carries %T", e.Data)
		}
		w.expr(&data.Callee)
		w.exprs(data.Args)
		e.Data = data
	case ExprNew:
		data, ok := e.Data.(NewData)
		if !ok {
			ice.Raise("js: new carries %T", e.Data)
		}
		w.expr(&data.Ctor)
		w.exprs(data.Args)
		e.Data = data
	case ExprDot:
		data, ok := e.Data.(DotData)
		if !ok {
			ice.Raise("js: property access carries %T", e.Data)
		}
		w.expr(&data.Object)
		e.Data = data
	case ExprIndex:
		data, ok := e.Data.(IndexData)
		if !ok {
			ice.Raise("js: index carries %T", e.Data)
		}
		w.expr(&data.Object)
		w.expr(&data.Index)
		e.Data = data
	case ExprUnary:
		data, ok := e.Data.(UnaryData)
		if !ok {
			ice.Raise("js: unary carries %T", e.Data)
		}
		w.expr(&data.Operand)
		e.Data = data
	case ExprBinary:
		data, ok := e.Data.(BinaryData)
		if !ok {
			ice.Raise("js: binary carries %T", e.Data)
		}
		w.expr(&data.Left)
		w.expr(&data.Right)
		e.Data = data
	case ExprAssign:
		data, ok := e.Data.(AssignData)
		if !ok {
			ice.Raise("js: assignment carries %T", e.Data)
		}
		w.expr(&data.Target)
		w.expr(&data.Value)
		e.Data = data
	case ExprArray:
		data, ok := e.Data.(ArrayData)
		if !ok {
			ice.Raise("js: array literal carries %T", e.Data)
		}
		w.exprs(data.Elems)
		e.Data = data
	case ExprObject:
		data, ok := e.Data.(ObjectData)
		if !ok {
			ice.Raise("js: object literal carries %T", e.Data)
		}
		for i := range data.Props {
			w.expr(&data.Props[i].Value)
		}
		e.Data = data
	case ExprConditional:
		data, ok := e.Data.(ConditionalData)
		if !ok {
			ice.Raise("js: conditional carries %T", e.Data)
		}
		w.expr(&data.Cond)
		w.expr(&data.Then)
		w.expr(&data.Else)
		e.Data = data
	default:
		ice.Raise("js: unhandled expression kind %s", e.Kind)
	}
}
