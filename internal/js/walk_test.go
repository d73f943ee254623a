package js

import (
	"errors"
	"strings"
	"testing"

	"scriptc/internal/ice"
)

// sample builds:
//
//	function helper(a) { return a; }
//	var total = helper(1);
//	(function () { log(total); })();
func sample() (*Program, *Name, *Name) {
	p := &Program{Name: "sample"}
	helper := p.NewName("helper", NameObfuscatable)
	a := p.NewName("a", NameObfuscatable)
	total := p.NewName("total", NameObfuscatable)
	log := p.NewName("log", 0)

	p.Stmts = []*Stmt{
		NewFunctionDecl(helper, []*Name{a}, NewBlock(NewReturn(NewNameRef(a)))),
		NewVar(total, NewCall(NewNameRef(helper), NewNumber(1))),
		NewExprStmt(NewCall(NewFunction(nil, nil, NewBlock(
			NewExprStmt(NewCall(NewNameRef(log), NewNameRef(total))),
		)))),
	}
	return p, helper, total
}

type refCollector struct {
	BaseVisitor
	refs []string
}

func (r *refCollector) Visit(n Node, _ *Context) bool {
	if e, ok := n.(*Expr); ok && e.Kind == ExprNameRef {
		r.refs = append(r.refs, e.Data.(NameRefData).Name.Ident)
	}
	return true
}

func TestAcceptReachesFunctionBodies(t *testing.T) {
	p, _, _ := sample()
	r := &refCollector{}
	changed, err := Accept(p, r)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if changed {
		t.Fatalf("read-only traversal reported a change")
	}
	if got := strings.Join(r.refs, ","); got != "a,helper,log,total" {
		t.Fatalf("references = %s", got)
	}
}

type removeVars struct {
	BaseVisitor
}

func (removeVars) Visit(n Node, ctx *Context) bool {
	if st, ok := n.(*Stmt); ok && st.Kind == StmtVar {
		ctx.Remove()
		return false
	}
	return true
}

func TestAcceptRemovesTopLevelStatements(t *testing.T) {
	p, _, _ := sample()
	changed, err := Accept(p, removeVars{})
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if !changed {
		t.Fatalf("expected a change")
	}
	if len(p.Stmts) != 2 {
		t.Fatalf("expected 2 statements left, got %d", len(p.Stmts))
	}
	for _, st := range p.Stmts {
		if st.Kind == StmtVar {
			t.Fatalf("var statement survived removal")
		}
	}
}

type swapLiterals struct {
	BaseVisitor
}

func (swapLiterals) EndVisit(n Node, ctx *Context) {
	if e, ok := n.(*Expr); ok && e.Kind == ExprLiteral {
		ctx.Replace(NewString("swapped"))
	}
}

func TestAcceptReplacesArguments(t *testing.T) {
	p, _, _ := sample()
	if _, err := Accept(p, swapLiterals{}); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	call := p.Stmts[1].Data.(VarData).Init.Data.(CallData)
	lit := call.Args[0].Data.(LiteralData)
	if lit.Kind != LiteralString || lit.StringValue != "swapped" {
		t.Fatalf("argument not replaced: %+v", lit)
	}
}

type removeExpr struct {
	BaseVisitor
}

func (removeExpr) Visit(n Node, ctx *Context) bool {
	if e, ok := n.(*Expr); ok && e.Kind == ExprLiteral {
		ctx.Remove()
	}
	return true
}

func TestAcceptRejectsRemovingExpressions(t *testing.T) {
	p, _, _ := sample()
	_, err := Accept(p, removeExpr{})
	if !errors.Is(err, ice.ErrInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestAcceptRejectsUnknownKinds(t *testing.T) {
	p, _, _ := sample()
	p.Stmts = append(p.Stmts, NewExprStmt(&Expr{Kind: ExprKind(77)}))
	_, err := Accept(p, &refCollector{})
	if !errors.Is(err, ice.ErrInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestNamesAreStampedAndNormalized(t *testing.T) {
	p := &Program{}
	composed := p.NewName("caf\u00e9", NameObfuscatable)
	decomposed := p.NewName("cafe\u0301", NameInitializer)
	if composed.Ident != decomposed.Ident {
		t.Fatalf("identifiers should be NFC-normalized: %q vs %q", composed.Ident, decomposed.Ident)
	}
	if composed == decomposed {
		t.Fatalf("equal spellings must still be distinct identities")
	}
	if !composed.Obfuscatable() || composed.IsInitializer() {
		t.Fatalf("flags of composed not preserved")
	}
	if decomposed.Obfuscatable() || !decomposed.IsInitializer() {
		t.Fatalf("flags of decomposed not preserved")
	}
	if got := p.Initializers(); len(got) != 1 || got[0] != decomposed {
		t.Fatalf("Initializers() = %v", got)
	}
	if decomposed.Index() != 1 {
		t.Fatalf("Index() = %d, want 1", decomposed.Index())
	}
}

func TestFunctionDeclShape(t *testing.T) {
	p, helper, _ := sample()
	fn, name := p.Stmts[0].FunctionDecl()
	if fn == nil || name != helper {
		t.Fatalf("first statement should be the helper declaration")
	}
	if helper.Decl() != fn {
		t.Fatalf("helper must point back at its function literal")
	}
	if fn, _ := p.Stmts[2].FunctionDecl(); fn != nil {
		t.Fatalf("an invoked anonymous function is not a declaration")
	}
	if fn, _ := p.Stmts[1].FunctionDecl(); fn != nil {
		t.Fatalf("a var statement is not a function declaration")
	}
}
