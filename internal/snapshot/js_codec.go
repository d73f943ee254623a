package snapshot

import (
	"errors"
	"fmt"

	"scriptc/internal/ice"
	"scriptc/internal/js"
)

type jsEncoder struct {
	prog *js.Program
}

func encodeJS(p *js.Program) (*wireJS, error) {
	e := &jsEncoder{prog: p}
	out := &wireJS{Name: p.Name}
	for _, n := range p.Names() {
		out.Names = append(out.Names, wireName{Ident: n.Ident, Flags: uint8(n.Flags())})
	}
	for _, st := range p.Stmts {
		out.Stmts = append(out.Stmts, e.stmt(st))
	}
	return out, nil
}

func (e *jsEncoder) name(n *js.Name) uint32 {
	if n == nil {
		return 0
	}
	names := e.prog.Names()
	if int64(n.Index()) >= int64(len(names)) || names[n.Index()] != n {
		ice.Raise("snapshot: name %s does not belong to program %s", n.Ident, e.prog.Name)
	}
	return n.Index() + 1
}

func (e *jsEncoder) block(b *js.Block) *wireBlock {
	if b == nil {
		return nil
	}
	wb := &wireBlock{}
	for _, st := range b.Stmts {
		wb.Stmts = append(wb.Stmts, e.stmt(st))
	}
	return wb
}

func (e *jsEncoder) stmt(st *js.Stmt) *wireStmt {
	if st == nil {
		ice.Raise("snapshot: nil statement")
	}
	w := &wireStmt{Kind: uint8(st.Kind)}
	var kind js.StmtKind
	switch data := st.Data.(type) {
	case js.ExprStmtData:
		kind = js.StmtExpr
		w.Expr = e.expr(data.Expr)
	case js.VarData:
		kind = js.StmtVar
		w.Ref = e.name(data.Name)
		w.Expr = e.expr(data.Init)
	case js.ReturnData:
		kind = js.StmtReturn
		w.Expr = e.expr(data.Value)
	case js.IfData:
		kind = js.StmtIf
		w.Expr = e.expr(data.Cond)
		w.Then = e.block(data.Then)
		w.Else = e.block(data.Else)
	case js.WhileData:
		kind = js.StmtWhile
		w.Expr = e.expr(data.Cond)
		w.Then = e.block(data.Body)
	case js.BlockStmtData:
		kind = js.StmtBlock
		w.Then = e.block(data.Block)
	case js.ThrowData:
		kind = js.StmtThrow
		w.Expr = e.expr(data.Value)
	case js.BreakData:
		kind = js.StmtBreak
	case js.ContinueData:
		kind = js.StmtContinue
	default:
		ice.Raise("snapshot: unhandled statement payload %T", st.Data)
	}
	if kind != st.Kind {
		ice.Raise("snapshot: %s statement carries %T", st.Kind, st.Data)
	}
	return w
}

func (e *jsEncoder) exprs(list ...*js.Expr) []*wireExpr {
	out := make([]*wireExpr, 0, len(list))
	for _, x := range list {
		out = append(out, e.expr(x))
	}
	return out
}

func (e *jsEncoder) expr(x *js.Expr) *wireExpr {
	if x == nil {
		return nil
	}
	w := &wireExpr{Kind: uint8(x.Kind)}
	var kind js.ExprKind
	switch data := x.Data.(type) {
	case js.FunctionData:
		kind = js.ExprFunction
		w.Ref = e.name(data.Name)
		for _, prm := range data.Params {
			w.Params = append(w.Params, e.name(prm))
		}
		w.Body = e.block(data.Body)
	case js.NameRefData:
		kind = js.ExprNameRef
		w.Ref = e.name(data.Name)
	case js.LiteralData:
		kind = js.ExprLiteral
		w.Lit = &wireLit{
			Kind:   uint8(data.Kind),
			Float:  data.NumberValue,
			Bool:   data.BoolValue,
			String: data.StringValue,
		}
	case js.CallData:
		kind = js.ExprCall
		w.Kids = e.exprs(data.Callee)
		w.List = e.exprs(data.Args...)
	case js.NewData:
		kind = js.ExprNew
		w.Kids = e.exprs(data.Ctor)
		w.List = e.exprs(data.Args...)
	case js.DotData:
		kind = js.ExprDot
		w.Op = data.Prop
		w.Kids = e.exprs(data.Object)
	case js.IndexData:
		kind = js.ExprIndex
		w.Kids = e.exprs(data.Object, data.Index)
	case js.UnaryData:
		kind = js.ExprUnary
		w.Op = data.Op
		w.Kids = e.exprs(data.Operand)
	case js.BinaryData:
		kind = js.ExprBinary
		w.Op = data.Op
		w.Kids = e.exprs(data.Left, data.Right)
	case js.AssignData:
		kind = js.ExprAssign
		w.Kids = e.exprs(data.Target, data.Value)
	case js.ArrayData:
		kind = js.ExprArray
		w.List = e.exprs(data.Elems...)
	case js.ObjectData:
		kind = js.ExprObject
		for _, prop := range data.Props {
			w.Keys = append(w.Keys, prop.Key)
			w.List = append(w.List, e.expr(prop.Value))
		}
	case js.ConditionalData:
		kind = js.ExprConditional
		w.Kids = e.exprs(data.Cond, data.Then, data.Else)
	case js.ThisData:
		kind = js.ExprThis
	default:
		ice.Raise("snapshot: unhandled expression payload %T", x.Data)
	}
	if kind != x.Kind {
		ice.Raise("snapshot: %s expression carries %T", x.Kind, x.Data)
	}
	return w
}

type jsDecoder struct {
	prog  *js.Program
	names []*js.Name
	err   error
}

func (d *jsDecoder) fail(format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
	}
}

// decodeJS rebuilds a script program. Names are recreated in table order so
// Index and creation order survive the round trip; declarations bind through
// the js constructors, and a name declared twice surfaces as ErrCorrupt.
func decodeJS(w *wireJS) (prog *js.Program, err error) {
	defer func() {
		var ie *ice.Error
		if errors.As(err, &ie) {
			prog, err = nil, fmt.Errorf("%w: %s", ErrCorrupt, ie.Msg)
		}
	}()
	defer ice.Recover(&err)

	d := &jsDecoder{prog: &js.Program{Name: w.Name}}
	for _, wn := range w.Names {
		d.names = append(d.names, d.prog.NewName(wn.Ident, js.NameFlags(wn.Flags)))
	}
	for _, ws := range w.Stmts {
		if st := d.stmt(ws); st != nil {
			d.prog.Stmts = append(d.prog.Stmts, st)
		}
	}
	if d.err != nil {
		return nil, d.err
	}
	return d.prog, nil
}

func (d *jsDecoder) name(idx uint32) *js.Name {
	if idx == 0 {
		return nil
	}
	if int64(idx) > int64(len(d.names)) {
		d.fail("name reference %d out of range", idx)
		return nil
	}
	return d.names[idx-1]
}

func (d *jsDecoder) block(w *wireBlock) *js.Block {
	if w == nil {
		return nil
	}
	b := &js.Block{}
	for _, ws := range w.Stmts {
		if st := d.stmt(ws); st != nil {
			b.Stmts = append(b.Stmts, st)
		}
	}
	return b
}

func (d *jsDecoder) stmt(w *wireStmt) *js.Stmt {
	if w == nil {
		d.fail("nil statement")
		return nil
	}
	kind := js.StmtKind(w.Kind)
	switch kind {
	case js.StmtExpr:
		return js.NewExprStmt(d.expr(w.Expr))
	case js.StmtVar:
		n := d.name(w.Ref)
		if n == nil {
			d.fail("var statement without name")
			return nil
		}
		return js.NewVar(n, d.expr(w.Expr))
	case js.StmtReturn:
		return js.NewReturn(d.expr(w.Expr))
	case js.StmtIf:
		return &js.Stmt{Kind: kind, Data: js.IfData{Cond: d.expr(w.Expr), Then: d.block(w.Then), Else: d.block(w.Else)}}
	case js.StmtWhile:
		return &js.Stmt{Kind: kind, Data: js.WhileData{Cond: d.expr(w.Expr), Body: d.block(w.Then)}}
	case js.StmtBlock:
		return &js.Stmt{Kind: kind, Data: js.BlockStmtData{Block: d.block(w.Then)}}
	case js.StmtThrow:
		return &js.Stmt{Kind: kind, Data: js.ThrowData{Value: d.expr(w.Expr)}}
	case js.StmtBreak:
		return &js.Stmt{Kind: kind, Data: js.BreakData{}}
	case js.StmtContinue:
		return &js.Stmt{Kind: kind, Data: js.ContinueData{}}
	default:
		d.fail("unknown statement kind %d", w.Kind)
		return nil
	}
}

func (d *jsDecoder) kids(w *wireExpr, n int) []*js.Expr {
	if len(w.Kids) != n {
		d.fail("%s expression has %d operands, want %d", js.ExprKind(w.Kind), len(w.Kids), n)
		return make([]*js.Expr, n)
	}
	return d.exprs(w.Kids)
}

func (d *jsDecoder) exprs(list []*wireExpr) []*js.Expr {
	if len(list) == 0 {
		return nil
	}
	out := make([]*js.Expr, 0, len(list))
	for _, w := range list {
		out = append(out, d.expr(w))
	}
	return out
}

func (d *jsDecoder) expr(w *wireExpr) *js.Expr {
	if w == nil {
		return nil
	}
	kind := js.ExprKind(w.Kind)
	switch kind {
	case js.ExprFunction:
		params := make([]*js.Name, 0, len(w.Params))
		for _, idx := range w.Params {
			if prm := d.name(idx); prm != nil {
				params = append(params, prm)
			}
		}
		return js.NewFunction(d.name(w.Ref), params, d.block(w.Body))
	case js.ExprNameRef:
		n := d.name(w.Ref)
		if n == nil {
			d.fail("name reference without name")
			return nil
		}
		return js.NewNameRef(n)
	case js.ExprLiteral:
		if w.Lit == nil {
			d.fail("literal without value")
			return nil
		}
		return &js.Expr{Kind: kind, Data: js.LiteralData{
			Kind:        js.LiteralKind(w.Lit.Kind),
			NumberValue: w.Lit.Float,
			StringValue: w.Lit.String,
			BoolValue:   w.Lit.Bool,
		}}
	case js.ExprCall:
		k := d.kids(w, 1)
		return &js.Expr{Kind: kind, Data: js.CallData{Callee: k[0], Args: d.exprs(w.List)}}
	case js.ExprNew:
		k := d.kids(w, 1)
		return &js.Expr{Kind: kind, Data: js.NewData{Ctor: k[0], Args: d.exprs(w.List)}}
	case js.ExprDot:
		k := d.kids(w, 1)
		return &js.Expr{Kind: kind, Data: js.DotData{Object: k[0], Prop: w.Op}}
	case js.ExprIndex:
		k := d.kids(w, 2)
		return &js.Expr{Kind: kind, Data: js.IndexData{Object: k[0], Index: k[1]}}
	case js.ExprUnary:
		k := d.kids(w, 1)
		return &js.Expr{Kind: kind, Data: js.UnaryData{Op: w.Op, Operand: k[0]}}
	case js.ExprBinary:
		k := d.kids(w, 2)
		return &js.Expr{Kind: kind, Data: js.BinaryData{Op: w.Op, Left: k[0], Right: k[1]}}
	case js.ExprAssign:
		k := d.kids(w, 2)
		return &js.Expr{Kind: kind, Data: js.AssignData{Target: k[0], Value: k[1]}}
	case js.ExprArray:
		return &js.Expr{Kind: kind, Data: js.ArrayData{Elems: d.exprs(w.List)}}
	case js.ExprObject:
		if len(w.Keys) != len(w.List) {
			d.fail("object literal has %d keys and %d values", len(w.Keys), len(w.List))
			return nil
		}
		props := make([]js.Property, 0, len(w.Keys))
		for i, key := range w.Keys {
			props = append(props, js.Property{Key: key, Value: d.expr(w.List[i])})
		}
		return &js.Expr{Kind: kind, Data: js.ObjectData{Props: props}}
	case js.ExprConditional:
		k := d.kids(w, 3)
		return &js.Expr{Kind: kind, Data: js.ConditionalData{Cond: k[0], Then: k[1], Else: k[2]}}
	case js.ExprThis:
		return &js.Expr{Kind: kind, Data: js.ThisData{}}
	default:
		d.fail("unknown expression kind %d", w.Kind)
		return nil
	}
}
