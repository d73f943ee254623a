package hir

import (
	"scriptc/internal/types"
)

// Constructors for the node kinds that carry a type occurrence. They are used
// by upstream builders, the snapshot decoder and rewriting passes that must
// produce a fresh node of the same kind.

// NewCast builds (target) value.
func NewCast(target types.TypeID, value *Expr) *Expr {
	return &Expr{Kind: ExprCast, Type: target, Data: CastData{Target: target, Value: value}}
}

// NewInstanceOf builds value instanceof test; the result type is boolType.
func NewInstanceOf(test types.TypeID, value *Expr, boolType types.TypeID) *Expr {
	return &Expr{Kind: ExprInstanceOf, Type: boolType, Data: InstanceOfData{Test: test, Value: value}}
}

// NewClassLit builds ref.class; classType is the type of class objects.
func NewClassLit(ref, classType types.TypeID) *Expr {
	return &Expr{Kind: ExprClassLit, Type: classType, Data: ClassLitData{Ref: ref}}
}

// NewArrayAlloc builds new elem[sizes...] or new elem[]{init...}.
// The result type is elem[] as interned by in.
func NewArrayAlloc(in *types.Interner, elem types.TypeID, sizes, init []*Expr) *Expr {
	return &Expr{
		Kind: ExprNewArray,
		Type: in.ArrayOf(elem, 1),
		Data: NewArrayData{Elem: elem, Sizes: sizes, Init: init},
	}
}

// NewLocalRef builds a read of l.
func NewLocalRef(l *Local) *Expr {
	return &Expr{Kind: ExprLocalRef, Data: LocalRefData{Local: l}}
}

// NewParamRef builds a read of p.
func NewParamRef(p *Param) *Expr {
	return &Expr{Kind: ExprParamRef, Data: ParamRefData{Param: p}}
}

// NewFieldRef builds object.f, or a static read when object is nil.
func NewFieldRef(object *Expr, f *Field) *Expr {
	return &Expr{Kind: ExprFieldRef, Data: FieldRefData{Object: object, Field: f}}
}

// NewCall builds receiver.m(args...), or a static call when receiver is nil.
func NewCall(receiver *Expr, m *Method, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, Data: CallData{Receiver: receiver, Method: m, Args: args}}
}

// NewNull builds the null literal.
func NewNull(nullType types.TypeID) *Expr {
	return &Expr{Kind: ExprLiteral, Type: nullType, Data: LiteralData{Kind: LiteralNull}}
}

// NewInt builds an int literal.
func NewInt(intType types.TypeID, v int64) *Expr {
	return &Expr{Kind: ExprLiteral, Type: intType, Data: LiteralData{Kind: LiteralInt, IntValue: v}}
}

// NewLet builds a local declaration statement.
func NewLet(l *Local, value *Expr) *Stmt {
	return &Stmt{Kind: StmtLet, Data: LetData{Local: l, Value: value}}
}

// NewExprStmt wraps e into a statement.
func NewExprStmt(e *Expr) *Stmt {
	return &Stmt{Kind: StmtExpr, Data: ExprStmtData{Expr: e}}
}

// NewReturn builds return value (value may be nil).
func NewReturn(value *Expr) *Stmt {
	return &Stmt{Kind: StmtReturn, Data: ReturnData{Value: value}}
}
