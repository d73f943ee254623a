package snapshot

import (
	"fmt"

	"fortio.org/safecast"

	"scriptc/internal/hir"
	"scriptc/internal/ice"
	"scriptc/internal/types"
)

// table assigns 1-based indices to objects on first sight.
type table[T comparable] struct {
	index map[T]uint32
	items []T
}

func (t *table[T]) ref(v T) uint32 {
	var zero T
	if v == zero {
		return 0
	}
	if idx, ok := t.index[v]; ok {
		return idx
	}
	if t.index == nil {
		t.index = make(map[T]uint32)
	}
	idx, err := safecast.Conv[uint32](len(t.items) + 1)
	if err != nil {
		panic(fmt.Errorf("snapshot table overflow: %w", err))
	}
	t.index[v] = idx
	t.items = append(t.items, v)
	return idx
}

type hirEncoder struct {
	in      *types.Interner
	fields  table[*hir.Field]
	methods table[*hir.Method]
	params  table[*hir.Param]
	locals  table[*hir.Local]
}

func encodeHIR(p *hir.Program) (*wireHIR, error) {
	if p.Types == nil {
		return nil, fmt.Errorf("program %s has no type interner", p.Name)
	}
	e := &hirEncoder{in: p.Types}
	out := &wireHIR{
		Name:    p.Name,
		Wrapper: uint32(p.Types.CanonicalWrapper()),
	}

	for i := 1; i < p.Types.Len(); i++ {
		id, err := safecast.Conv[types.TypeID](i)
		if err != nil {
			panic(fmt.Errorf("type id overflow: %w", err))
		}
		out.Types = append(out.Types, e.typ(id))
	}

	for _, c := range p.Classes {
		wc := wireClass{Name: c.Name, Type: uint32(c.Type)}
		for _, f := range c.Fields {
			wc.Fields = append(wc.Fields, e.fields.ref(f))
		}
		for _, m := range c.Methods {
			wc.Methods = append(wc.Methods, e.methods.ref(m))
		}
		out.Classes = append(out.Classes, wc)
	}

	// Initializers and bodies may reference declarations outside any class;
	// those join the tables while encoding and are picked up by the loop.
	for fi, mi := 0, 0; fi < len(e.fields.items) || mi < len(e.methods.items); {
		if fi < len(e.fields.items) {
			out.Fields = append(out.Fields, e.field(e.fields.items[fi]))
			fi++
			continue
		}
		out.Methods = append(out.Methods, e.method(e.methods.items[mi]))
		mi++
	}
	for _, prm := range e.params.items {
		out.Params = append(out.Params, wireBinding{Name: prm.Name, Type: uint32(prm.Type)})
	}
	for _, l := range e.locals.items {
		out.Locals = append(out.Locals, wireBinding{Name: l.Name, Type: uint32(l.Type)})
	}
	return out, nil
}

func (e *hirEncoder) typ(id types.TypeID) wireType {
	tt := e.in.MustLookup(id)
	wt := wireType{Kind: uint8(tt.Kind)}
	switch tt.Kind {
	case types.KindArray:
		wt.Elem = uint32(tt.Elem)
		wt.Dims = tt.Dims
	case types.KindClass, types.KindInterface:
		info, _ := e.in.Nominal(id)
		if info != nil {
			wt.Name = info.Name
			wt.Super = uint32(info.Super)
			for _, iface := range info.Interfaces {
				wt.Interfaces = append(wt.Interfaces, uint32(iface))
			}
		}
	}
	return wt
}

func (e *hirEncoder) field(f *hir.Field) wireField {
	return wireField{
		Name:   f.Name,
		Type:   uint32(f.Type),
		Static: f.Static,
		Init:   e.expr(f.Init),
	}
}

func (e *hirEncoder) method(m *hir.Method) wireMethod {
	wm := wireMethod{
		Name:   m.Name,
		Result: uint32(m.Result),
		Flags:  uint32(m.Flags),
		Body:   e.block(m.Body),
	}
	for _, prm := range m.Params {
		wm.Params = append(wm.Params, e.params.ref(prm))
	}
	return wm
}

func (e *hirEncoder) block(b *hir.Block) *wireBlock {
	if b == nil {
		return nil
	}
	wb := &wireBlock{}
	for _, st := range b.Stmts {
		wb.Stmts = append(wb.Stmts, e.stmt(st))
	}
	return wb
}

func (e *hirEncoder) stmt(st *hir.Stmt) *wireStmt {
	if st == nil {
		ice.Raise("snapshot: nil statement")
	}
	w := &wireStmt{Kind: uint8(st.Kind)}
	var kind hir.StmtKind
	switch data := st.Data.(type) {
	case hir.LetData:
		kind = hir.StmtLet
		w.Ref = e.locals.ref(data.Local)
		w.Expr = e.expr(data.Value)
	case hir.ExprStmtData:
		kind = hir.StmtExpr
		w.Expr = e.expr(data.Expr)
	case hir.ReturnData:
		kind = hir.StmtReturn
		w.Expr = e.expr(data.Value)
	case hir.IfStmtData:
		kind = hir.StmtIf
		w.Expr = e.expr(data.Cond)
		w.Then = e.block(data.Then)
		w.Else = e.block(data.Else)
	case hir.WhileData:
		kind = hir.StmtWhile
		w.Expr = e.expr(data.Cond)
		w.Then = e.block(data.Body)
	case hir.BlockStmtData:
		kind = hir.StmtBlock
		w.Then = e.block(data.Block)
	case hir.ThrowData:
		kind = hir.StmtThrow
		w.Expr = e.expr(data.Value)
	case hir.BreakData:
		kind = hir.StmtBreak
	case hir.ContinueData:
		kind = hir.StmtContinue
	default:
		ice.Raise("snapshot: unhandled statement payload %T", st.Data)
	}
	if kind != st.Kind {
		ice.Raise("snapshot: %s statement carries %T", st.Kind, st.Data)
	}
	return w
}

func (e *hirEncoder) exprs(list ...*hir.Expr) []*wireExpr {
	out := make([]*wireExpr, 0, len(list))
	for _, x := range list {
		out = append(out, e.expr(x))
	}
	return out
}

func (e *hirEncoder) expr(x *hir.Expr) *wireExpr {
	if x == nil {
		return nil
	}
	w := &wireExpr{Kind: uint8(x.Kind), Type: uint32(x.Type)}
	var kind hir.ExprKind
	switch data := x.Data.(type) {
	case hir.LiteralData:
		kind = hir.ExprLiteral
		w.Lit = &wireLit{
			Kind:   uint8(data.Kind),
			Int:    data.IntValue,
			Float:  data.FloatValue,
			Bool:   data.BoolValue,
			String: data.StringValue,
		}
	case hir.LocalRefData:
		kind = hir.ExprLocalRef
		w.Ref = e.locals.ref(data.Local)
	case hir.ParamRefData:
		kind = hir.ExprParamRef
		w.Ref = e.params.ref(data.Param)
	case hir.FieldRefData:
		kind = hir.ExprFieldRef
		w.Ref = e.fields.ref(data.Field)
		w.Kids = e.exprs(data.Object)
	case hir.ThisData:
		kind = hir.ExprThis
	case hir.CallData:
		kind = hir.ExprCall
		w.Ref = e.methods.ref(data.Method)
		w.Kids = e.exprs(data.Receiver)
		w.List = e.exprs(data.Args...)
	case hir.NewData:
		kind = hir.ExprNew
		w.Ref = e.methods.ref(data.Ctor)
		w.List = e.exprs(data.Args...)
	case hir.NewArrayData:
		kind = hir.ExprNewArray
		w.TypeOp = uint32(data.Elem)
		w.Kids = e.exprs(data.Sizes...)
		w.List = e.exprs(data.Init...)
	case hir.CastData:
		kind = hir.ExprCast
		w.TypeOp = uint32(data.Target)
		w.Kids = e.exprs(data.Value)
	case hir.InstanceOfData:
		kind = hir.ExprInstanceOf
		w.TypeOp = uint32(data.Test)
		w.Kids = e.exprs(data.Value)
	case hir.ClassLitData:
		kind = hir.ExprClassLit
		w.TypeOp = uint32(data.Ref)
	case hir.UnaryData:
		kind = hir.ExprUnary
		w.Op = data.Op.String()
		w.Kids = e.exprs(data.Operand)
	case hir.BinaryData:
		kind = hir.ExprBinary
		w.Op = data.Op.String()
		w.Kids = e.exprs(data.Left, data.Right)
	case hir.AssignData:
		kind = hir.ExprAssign
		w.Kids = e.exprs(data.Target, data.Value)
	case hir.IndexData:
		kind = hir.ExprIndex
		w.Kids = e.exprs(data.Array, data.Index)
	case hir.ConditionalData:
		kind = hir.ExprConditional
		w.Kids = e.exprs(data.Cond, data.Then, data.Else)
	default:
		ice.Raise("snapshot: unhandled expression payload %T", x.Data)
	}
	if kind != x.Kind {
		ice.Raise("snapshot: %s expression carries %T", x.Kind, x.Data)
	}
	return w
}

// hirDecoder rebuilds a program from its wire form. The first inconsistency
// is kept in err; decoding continues with nil nodes and the caller reports it.
type hirDecoder struct {
	in      *types.Interner
	fields  []*hir.Field
	methods []*hir.Method
	params  []*hir.Param
	locals  []*hir.Local
	err     error
}

func (d *hirDecoder) fail(format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
	}
}

func decodeHIR(w *wireHIR) (*hir.Program, error) {
	d := &hirDecoder{in: types.NewInterner()}
	d.types(w)
	if d.err != nil {
		return nil, d.err
	}

	for _, b := range w.Params {
		d.params = append(d.params, &hir.Param{Name: b.Name, Type: d.typ(b.Type)})
	}
	for _, b := range w.Locals {
		d.locals = append(d.locals, &hir.Local{Name: b.Name, Type: d.typ(b.Type)})
	}
	for _, wf := range w.Fields {
		d.fields = append(d.fields, &hir.Field{Name: wf.Name, Type: d.typ(wf.Type), Static: wf.Static})
	}
	for _, wm := range w.Methods {
		m := &hir.Method{Name: wm.Name, Result: d.typ(wm.Result), Flags: hir.MethodFlags(wm.Flags)}
		for _, idx := range wm.Params {
			m.Params = append(m.Params, d.param(idx))
		}
		d.methods = append(d.methods, m)
	}

	for i, wf := range w.Fields {
		d.fields[i].Init = d.expr(wf.Init)
	}
	for i, wm := range w.Methods {
		d.methods[i].Body = d.block(wm.Body)
	}

	prog := &hir.Program{Name: w.Name, Types: d.in}
	for _, wc := range w.Classes {
		c := &hir.Class{Name: wc.Name, Type: d.typ(wc.Type)}
		for _, idx := range wc.Fields {
			c.Fields = append(c.Fields, d.field(idx))
		}
		for _, idx := range wc.Methods {
			c.Methods = append(c.Methods, d.method(idx))
		}
		prog.Classes = append(prog.Classes, c)
	}
	if d.err != nil {
		return nil, d.err
	}
	return prog, nil
}

// types replays the type table into a fresh interner. Every entry must land on
// the TypeID it had when encoded.
func (d *hirDecoder) types(w *wireHIR) {
	for i, wt := range w.Types {
		want, err := safecast.Conv[types.TypeID](i + 1)
		if err != nil {
			d.fail("type table too large")
			return
		}
		kind := types.Kind(wt.Kind)
		var got types.TypeID
		switch kind {
		case types.KindInvalid:
			d.fail("type %d has invalid kind", want)
			return
		case types.KindClass:
			got = d.in.RegisterClass(wt.Name, types.NoTypeID)
		case types.KindInterface:
			got = d.in.RegisterInterface(wt.Name)
		case types.KindArray:
			if wt.Elem == 0 || types.TypeID(wt.Elem) >= want || wt.Dims == 0 {
				d.fail("array type %d has element %d and %d dimensions", want, wt.Elem, wt.Dims)
				return
			}
			got = d.in.ArrayOf(types.TypeID(wt.Elem), wt.Dims)
		default:
			if kind > types.KindArray {
				d.fail("type %d has unknown kind %d", want, wt.Kind)
				return
			}
			got = d.in.Intern(types.Type{Kind: kind})
		}
		if got != want {
			d.fail("type %d decodes as %d", want, got)
			return
		}
	}
	for i, wt := range w.Types {
		id := types.TypeID(i + 1)
		if wt.Super != 0 {
			d.in.SetSuper(id, d.typ(wt.Super))
		}
		for _, iface := range wt.Interfaces {
			d.in.AddInterface(id, d.typ(iface))
		}
	}
	if w.Wrapper != 0 {
		d.in.SetWrapperRoot(d.typ(w.Wrapper))
	}
}

func (d *hirDecoder) typ(raw uint32) types.TypeID {
	if int64(raw) >= int64(d.in.Len()) {
		d.fail("type reference %d out of range", raw)
		return types.NoTypeID
	}
	return types.TypeID(raw)
}

func lookup[T any](d *hirDecoder, list []*T, idx uint32, what string) *T {
	if idx == 0 {
		return nil
	}
	if int64(idx) > int64(len(list)) {
		d.fail("%s reference %d out of range", what, idx)
		return nil
	}
	return list[idx-1]
}

func (d *hirDecoder) field(idx uint32) *hir.Field   { return lookup(d, d.fields, idx, "field") }
func (d *hirDecoder) method(idx uint32) *hir.Method { return lookup(d, d.methods, idx, "method") }
func (d *hirDecoder) param(idx uint32) *hir.Param   { return lookup(d, d.params, idx, "parameter") }
func (d *hirDecoder) local(idx uint32) *hir.Local   { return lookup(d, d.locals, idx, "local") }

func (d *hirDecoder) block(w *wireBlock) *hir.Block {
	if w == nil {
		return nil
	}
	b := &hir.Block{}
	for _, ws := range w.Stmts {
		if st := d.stmt(ws); st != nil {
			b.Stmts = append(b.Stmts, st)
		}
	}
	return b
}

func (d *hirDecoder) stmt(w *wireStmt) *hir.Stmt {
	if w == nil {
		d.fail("nil statement")
		return nil
	}
	kind := hir.StmtKind(w.Kind)
	st := &hir.Stmt{Kind: kind}
	switch kind {
	case hir.StmtLet:
		st.Data = hir.LetData{Local: d.local(w.Ref), Value: d.expr(w.Expr)}
	case hir.StmtExpr:
		st.Data = hir.ExprStmtData{Expr: d.expr(w.Expr)}
	case hir.StmtReturn:
		st.Data = hir.ReturnData{Value: d.expr(w.Expr)}
	case hir.StmtIf:
		st.Data = hir.IfStmtData{Cond: d.expr(w.Expr), Then: d.block(w.Then), Else: d.block(w.Else)}
	case hir.StmtWhile:
		st.Data = hir.WhileData{Cond: d.expr(w.Expr), Body: d.block(w.Then)}
	case hir.StmtBlock:
		st.Data = hir.BlockStmtData{Block: d.block(w.Then)}
	case hir.StmtThrow:
		st.Data = hir.ThrowData{Value: d.expr(w.Expr)}
	case hir.StmtBreak:
		st.Data = hir.BreakData{}
	case hir.StmtContinue:
		st.Data = hir.ContinueData{}
	default:
		d.fail("unknown statement kind %d", w.Kind)
		return nil
	}
	return st
}

// kids returns exactly n decoded leading operands.
func (d *hirDecoder) kids(w *wireExpr, n int) []*hir.Expr {
	if len(w.Kids) != n {
		d.fail("%s expression has %d operands, want %d", hir.ExprKind(w.Kind), len(w.Kids), n)
		return make([]*hir.Expr, n)
	}
	return d.exprs(w.Kids)
}

func (d *hirDecoder) exprs(list []*wireExpr) []*hir.Expr {
	if len(list) == 0 {
		return nil
	}
	out := make([]*hir.Expr, 0, len(list))
	for _, w := range list {
		out = append(out, d.expr(w))
	}
	return out
}

func (d *hirDecoder) expr(w *wireExpr) *hir.Expr {
	if w == nil {
		return nil
	}
	kind := hir.ExprKind(w.Kind)
	x := &hir.Expr{Kind: kind, Type: d.typ(w.Type)}
	switch kind {
	case hir.ExprLiteral:
		if w.Lit == nil {
			d.fail("literal without value")
			return nil
		}
		x.Data = hir.LiteralData{
			Kind:        hir.LiteralKind(w.Lit.Kind),
			IntValue:    w.Lit.Int,
			FloatValue:  w.Lit.Float,
			BoolValue:   w.Lit.Bool,
			StringValue: w.Lit.String,
		}
	case hir.ExprLocalRef:
		x.Data = hir.LocalRefData{Local: d.local(w.Ref)}
	case hir.ExprParamRef:
		x.Data = hir.ParamRefData{Param: d.param(w.Ref)}
	case hir.ExprFieldRef:
		k := d.kids(w, 1)
		x.Data = hir.FieldRefData{Object: k[0], Field: d.field(w.Ref)}
	case hir.ExprThis:
		x.Data = hir.ThisData{}
	case hir.ExprCall:
		k := d.kids(w, 1)
		x.Data = hir.CallData{Receiver: k[0], Method: d.method(w.Ref), Args: d.exprs(w.List)}
	case hir.ExprNew:
		x.Data = hir.NewData{Ctor: d.method(w.Ref), Args: d.exprs(w.List)}
	case hir.ExprNewArray:
		x.Data = hir.NewArrayData{Elem: d.typ(w.TypeOp), Sizes: d.exprs(w.Kids), Init: d.exprs(w.List)}
	case hir.ExprCast:
		k := d.kids(w, 1)
		x.Data = hir.CastData{Target: d.typ(w.TypeOp), Value: k[0]}
	case hir.ExprInstanceOf:
		k := d.kids(w, 1)
		x.Data = hir.InstanceOfData{Test: d.typ(w.TypeOp), Value: k[0]}
	case hir.ExprClassLit:
		x.Data = hir.ClassLitData{Ref: d.typ(w.TypeOp)}
	case hir.ExprUnary:
		op, ok := unaryOps[w.Op]
		if !ok {
			d.fail("unknown unary operator %q", w.Op)
		}
		k := d.kids(w, 1)
		x.Data = hir.UnaryData{Op: op, Operand: k[0]}
	case hir.ExprBinary:
		op, ok := binaryOps[w.Op]
		if !ok {
			d.fail("unknown binary operator %q", w.Op)
		}
		k := d.kids(w, 2)
		x.Data = hir.BinaryData{Op: op, Left: k[0], Right: k[1]}
	case hir.ExprAssign:
		k := d.kids(w, 2)
		x.Data = hir.AssignData{Target: k[0], Value: k[1]}
	case hir.ExprIndex:
		k := d.kids(w, 2)
		x.Data = hir.IndexData{Array: k[0], Index: k[1]}
	case hir.ExprConditional:
		k := d.kids(w, 3)
		x.Data = hir.ConditionalData{Cond: k[0], Then: k[1], Else: k[2]}
	default:
		d.fail("unknown expression kind %d", w.Kind)
		return nil
	}
	return x
}

var (
	unaryOps  = opTable(hir.UnaryNeg, hir.UnaryNot)
	binaryOps = opTable(
		hir.BinaryAdd, hir.BinarySub, hir.BinaryMul, hir.BinaryDiv,
		hir.BinaryEq, hir.BinaryNe, hir.BinaryLt, hir.BinaryLe,
		hir.BinaryGt, hir.BinaryGe, hir.BinaryAnd, hir.BinaryOr,
	)
)

func opTable[T fmt.Stringer](ops ...T) map[string]T {
	m := make(map[string]T, len(ops))
	for _, op := range ops {
		m[op.String()] = op
	}
	return m
}
