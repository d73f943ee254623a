package js

import "scriptc/internal/ice"

// bindDecl records decl as the single declaring node of n.
func bindDecl(n *Name, decl Node) {
	if n == nil {
		return
	}
	if n.decl != nil && n.decl != decl {
		ice.Raise("js: name %s declared twice", n.Ident)
	}
	n.decl = decl
}

// NewFunction builds a function literal and makes it the declaring node of
// name (when non-nil) and of every parameter.
func NewFunction(name *Name, params []*Name, body *Block) *Expr {
	if body == nil {
		body = &Block{}
	}
	e := &Expr{Kind: ExprFunction, Data: FunctionData{Name: name, Params: params, Body: body}}
	bindDecl(name, e)
	for _, p := range params {
		bindDecl(p, e)
	}
	return e
}

// NewFunctionDecl builds the top-level declaration shape function name(...) {...}.
func NewFunctionDecl(name *Name, params []*Name, body *Block) *Stmt {
	return NewExprStmt(NewFunction(name, params, body))
}

// NewVar builds var name = init and makes the statement the declaring node of name.
func NewVar(name *Name, init *Expr) *Stmt {
	st := &Stmt{Kind: StmtVar, Data: VarData{Name: name, Init: init}}
	bindDecl(name, st)
	return st
}

// NewNameRef builds a read of n.
func NewNameRef(n *Name) *Expr {
	return &Expr{Kind: ExprNameRef, Data: NameRefData{Name: n}}
}

// NewCall builds callee(args...).
func NewCall(callee *Expr, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, Data: CallData{Callee: callee, Args: args}}
}

// NewDot builds object.prop.
func NewDot(object *Expr, prop string) *Expr {
	return &Expr{Kind: ExprDot, Data: DotData{Object: object, Prop: prop}}
}

// NewAssign builds target = value.
func NewAssign(target, value *Expr) *Expr {
	return &Expr{Kind: ExprAssign, Data: AssignData{Target: target, Value: value}}
}

// NewNumber builds a number literal.
func NewNumber(v float64) *Expr {
	return &Expr{Kind: ExprLiteral, Data: LiteralData{Kind: LiteralNumber, NumberValue: v}}
}

// NewString builds a string literal.
func NewString(v string) *Expr {
	return &Expr{Kind: ExprLiteral, Data: LiteralData{Kind: LiteralString, StringValue: v}}
}

// NewExprStmt wraps e into a statement.
func NewExprStmt(e *Expr) *Stmt {
	return &Stmt{Kind: StmtExpr, Data: ExprStmtData{Expr: e}}
}

// NewReturn builds return value (value may be nil).
func NewReturn(value *Expr) *Stmt {
	return &Stmt{Kind: StmtReturn, Data: ReturnData{Value: value}}
}
