package hir

import (
	"scriptc/internal/ice"
	"scriptc/internal/visit"
)

// Context is the per-slot mutation capability for HIR traversals.
// Statement slots inside blocks support Replace and Remove, expression slots
// support Replace, declarations support neither.
type Context = visit.Context[Node]

// Visitor receives nodes in depth-first order. Visit runs before the children
// and returns false to skip them; EndVisit runs after the children.
type Visitor interface {
	Visit(n Node, ctx *Context) bool
	EndVisit(n Node, ctx *Context)
}

// BaseVisitor visits everything and does nothing; embed it to override only
// the callbacks a pass needs.
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
	w.root(n)
	return w.tracker.Changed(), nil
}

type walker struct {
	v       Visitor
	tracker *visit.Tracker
}

func (w *walker) root(n Node) {
	switch n := n.(type) {
	case *Program:
		w.program(n)
	case *Class:
		w.class(n)
	case *Field:
		w.field(n)
	case *Method:
		w.method(n)
	case *Param:
		w.leafDecl(n)
	case *Local:
		w.leafDecl(n)
	case *Block:
		w.block(n)
	case *Stmt:
		w.stmt(n, 0)
	case *Expr:
		e := n
		w.exprSlot(&e, 0)
	default:
		ice.Raise("hir: unhandled node type %T", n)
	}
}

// decl visits a node that can never be replaced or removed.
func (w *walker) decl(n Node, children func()) {
	ctx := visit.NewContext[Node](w.tracker, 0)
	if w.v.Visit(n, ctx) && children != nil {
		children()
	}
	w.v.EndVisit(n, ctx)
	ctx.Close()
}

func (w *walker) program(p *Program) {
	if p == nil {
		return
	}
	w.decl(p, func() {
		for _, c := range p.Classes {
			w.class(c)
		}
	})
}

func (w *walker) class(c *Class) {
	if c == nil {
		return
	}
	w.decl(c, func() {
		for _, f := range c.Fields {
			w.field(f)
		}
		for _, m := range c.Methods {
			w.method(m)
		}
	})
}

func (w *walker) field(f *Field) {
	if f == nil {
		return
	}
	w.decl(f, func() {
		w.expr(&f.Init)
	})
}

func (w *walker) method(m *Method) {
	if m == nil {
		return
	}
	w.decl(m, func() {
		for _, p := range m.Params {
			w.leafDecl(p)
		}
		w.block(m.Body)
	})
}

func (w *walker) leafDecl(n Node) {
	w.decl(n, nil)
}

func (w *walker) block(b *Block) {
	if b == nil {
		return
	}
	w.decl(b, func() {
		b.Stmts = w.stmtList(b.Stmts)
	})
}

// stmtList visits every statement of a list and returns the list with
// replacements and removals applied. The input slice is reused when nothing
// changed.
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
		ice.Raise("hir: nil statement in block")
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
			ice.Raise("hir: statement slot replaced with %T", repl)
		}
		return ns, false
	}
	return st, false
}

func (w *walker) stmtChildren(st *Stmt) {
	switch st.Kind {
	case StmtLet:
		data, ok := st.Data.(LetData)
		if !ok {
			ice.Raise("hir: let statement carries %T", st.Data)
		}
		if data.Local == nil {
			ice.Raise("hir: let statement without local")
		}
		w.leafDecl(data.Local)
		w.expr(&data.Value)
		st.Data = data
	case StmtExpr:
		data, ok := st.Data.(ExprStmtData)
		if !ok {
			ice.Raise("hir: expression statement carries %T", st.Data)
		}
		w.expr(&data.Expr)
		st.Data = data
	case StmtReturn:
		data, ok := st.Data.(ReturnData)
		if !ok {
			ice.Raise("hir: return statement carries %T", st.Data)
		}
		w.expr(&data.Value)
		st.Data = data
	case StmtIf:
		data, ok := st.Data.(IfStmtData)
		if !ok {
			ice.Raise("hir: if statement carries %T", st.Data)
		}
		w.expr(&data.Cond)
		w.block(data.Then)
		w.block(data.Else)
		st.Data = data
	case StmtWhile:
		data, ok := st.Data.(WhileData)
		if !ok {
			ice.Raise("hir: while statement carries %T", st.Data)
		}
		w.expr(&data.Cond)
		w.block(data.Body)
		st.Data = data
	case StmtBlock:
		data, ok := st.Data.(BlockStmtData)
		if !ok {
			ice.Raise("hir: block statement carries %T", st.Data)
		}
		w.block(data.Block)
	case StmtThrow:
		data, ok := st.Data.(ThrowData)
		if !ok {
			ice.Raise("hir: throw statement carries %T", st.Data)
		}
		w.expr(&data.Value)
		st.Data = data
	case StmtBreak, StmtContinue:
	default:
		ice.Raise("hir: unhandled statement kind %s", st.Kind)
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
			ice.Raise("hir: expression slot replaced with %T", repl)
		}
		*slot = ne
	}
}

func (w *walker) exprChildren(e *Expr) {
	switch e.Kind {
	case ExprLiteral, ExprLocalRef, ExprParamRef, ExprThis, ExprClassLit:
	case ExprFieldRef:
		data, ok := e.Data.(FieldRefData)
		if !ok {
			ice.Raise("hir: field reference carries %T", e.Data)
		}
		w.expr(&data.Object)
		e.Data = data
	case ExprCall:
		data, ok := e.Data.(CallData)
		if !ok {
			ice.Raise("hir: call carries %T", e.Data)
		}
		w.expr(&data.Receiver)
		w.exprs(data.Args)
		e.Data = data
	case ExprNew:
		data, ok := e.Data.(NewData)
		if !ok {
			ice.Raise("hir: new carries %T", e.Data)
		}
		w.exprs(data.Args)
		e.Data = data
	case ExprNewArray:
		data, ok := e.Data.(NewArrayData)
		if !ok {
			ice.Raise("hir: array allocation carries %T", e.Data)
		}
		w.exprs(data.Sizes)
		w.exprs(data.Init)
		e.Data = data
	case ExprCast:
		data, ok := e.Data.(CastData)
		if !ok {
			ice.Raise("hir: cast carries %T", e.Data)
		}
		w.expr(&data.Value)
		e.Data = data
	case ExprInstanceOf:
		data, ok := e.Data.(InstanceOfData)
		if !ok {
			ice.Raise("hir: instanceof carries %T", e.Data)
		}
		w.expr(&data.Value)
		e.Data = data
	case ExprUnary:
		data, ok := e.Data.(UnaryData)
		if !ok {
			ice.Raise("hir: unary carries %T", e.Data)
		}
		w.expr(&data.Operand)
		e.Data = data
	case ExprBinary:
		data, ok := e.Data.(BinaryData)
		if !ok {
			ice.Raise("hir: binary carries %T", e.Data)
		}
		w.expr(&data.Left)
		w.expr(&data.Right)
		e.Data = data
	case ExprAssign:
		data, ok := e.Data.(AssignData)
		if !ok {
			ice.Raise("hir: assignment carries %T", e.Data)
		}
		w.expr(&data.Target)
		w.expr(&data.Value)
		e.Data = data
	case ExprIndex:
		data, ok := e.Data.(IndexData)
		if !ok {
			ice.Raise("hir: index carries %T", e.Data)
		}
		w.expr(&data.Array)
		w.expr(&data.Index)
		e.Data = data
	case ExprConditional:
		data, ok := e.Data.(ConditionalData)
		if !ok {
			ice.Raise("hir: conditional carries %T", e.Data)
		}
		w.expr(&data.Cond)
		w.expr(&data.Then)
		w.expr(&data.Else)
		e.Data = data
	default:
		ice.Raise("hir: unhandled expression kind %s", e.Kind)
	}
}
