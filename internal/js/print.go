//nolint:errcheck // Type assertions are checked by construction
package js

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Printer renders script IR as script source.
type Printer struct {
	w      io.Writer
	indent int
	err    error
}

// NewPrinter creates a new script IR printer.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Dump writes the program as script source.
func Dump(w io.Writer, p *Program) error {
	return NewPrinter(w).PrintProgram(p)
}

// PrintProgram prints every top-level statement.
func (p *Printer) PrintProgram(prog *Program) error {
	for _, st := range prog.Stmts {
		p.printStmt(st)
	}
	return p.err
}

func (p *Printer) printBlock(b *Block) {
	p.printf("{\n")
	p.indent++
	if b != nil {
		for _, st := range b.Stmts {
			p.printStmt(st)
		}
	}
	p.indent--
	p.writeIndent()
	p.printf("}")
}

func (p *Printer) printStmt(st *Stmt) {
	p.writeIndent()
	switch st.Kind {
	case StmtExpr:
		e := st.Data.(ExprStmtData).Expr
		p.printExpr(e)
		if e.Kind != ExprFunction {
			p.printf(";")
		}
	case StmtVar:
		data := st.Data.(VarData)
		p.printf("var %s", data.Name.Ident)
		if data.Init != nil {
			p.printf(" = ")
			p.printExpr(data.Init)
		}
		p.printf(";")
	case StmtReturn:
		data := st.Data.(ReturnData)
		p.printf("return")
		if data.Value != nil {
			p.printf(" ")
			p.printExpr(data.Value)
		}
		p.printf(";")
	case StmtIf:
		data := st.Data.(IfData)
		p.printf("if (")
		p.printExpr(data.Cond)
		p.printf(") ")
		p.printBlock(data.Then)
		if data.Else != nil {
			p.printf(" else ")
			p.printBlock(data.Else)
		}
	case StmtWhile:
		data := st.Data.(WhileData)
		p.printf("while (")
		p.printExpr(data.Cond)
		p.printf(") ")
		p.printBlock(data.Body)
	case StmtBlock:
		p.printBlock(st.Data.(BlockStmtData).Block)
	case StmtThrow:
		p.printf("throw ")
		p.printExpr(st.Data.(ThrowData).Value)
		p.printf(";")
	case StmtBreak:
		p.printf("break;")
	case StmtContinue:
		p.printf("continue;")
	default:
		p.printf("/* %s */", st.Kind)
	}
	p.printf("\n")
}

func (p *Printer) printExpr(e *Expr) {
	if e == nil {
		p.printf("undefined")
		return
	}
	switch e.Kind {
	case ExprFunction:
		data := e.Data.(FunctionData)
		p.printf("function")
		if data.Name != nil {
			p.printf(" %s", data.Name.Ident)
		}
		p.printf("(")
		for i, param := range data.Params {
			if i > 0 {
				p.printf(", ")
			}
			p.printf("%s", param.Ident)
		}
		p.printf(") ")
		p.printBlock(data.Body)
	case ExprNameRef:
		p.printf("%s", e.Data.(NameRefData).Name.Ident)
	case ExprLiteral:
		p.printLiteral(e.Data.(LiteralData))
	case ExprCall:
		data := e.Data.(CallData)
		p.printOperand(data.Callee)
		p.printf("(")
		p.printList(data.Args)
		p.printf(")")
	case ExprNew:
		data := e.Data.(NewData)
		p.printf("new ")
		p.printOperand(data.Ctor)
		p.printf("(")
		p.printList(data.Args)
		p.printf(")")
	case ExprDot:
		data := e.Data.(DotData)
		p.printOperand(data.Object)
		p.printf(".%s", data.Prop)
	case ExprIndex:
		data := e.Data.(IndexData)
		p.printOperand(data.Object)
		p.printf("[")
		p.printExpr(data.Index)
		p.printf("]")
	case ExprUnary:
		data := e.Data.(UnaryData)
		p.printf("%s", data.Op)
		if len(data.Op) > 1 {
			p.printf(" ")
		}
		p.printOperand(data.Operand)
	case ExprBinary:
		data := e.Data.(BinaryData)
		p.printOperand(data.Left)
		p.printf(" %s ", data.Op)
		p.printOperand(data.Right)
	case ExprAssign:
		data := e.Data.(AssignData)
		p.printExpr(data.Target)
		p.printf(" = ")
		p.printExpr(data.Value)
	case ExprArray:
		p.printf("[")
		p.printList(e.Data.(ArrayData).Elems)
		p.printf("]")
	case ExprObject:
		data := e.Data.(ObjectData)
		p.printf("{")
		for i, prop := range data.Props {
			if i > 0 {
				p.printf(", ")
			}
			p.printf("%s: ", prop.Key)
			p.printExpr(prop.Value)
		}
		p.printf("}")
	case ExprConditional:
		data := e.Data.(ConditionalData)
		p.printOperand(data.Cond)
		p.printf(" ? ")
		p.printOperand(data.Then)
		p.printf(" : ")
		p.printOperand(data.Else)
	case ExprThis:
		p.printf("this")
	default:
		p.printf("/* %s */", e.Kind)
	}
}

// printOperand parenthesizes compound expressions used as operands.
func (p *Printer) printOperand(e *Expr) {
	if e != nil {
		switch e.Kind {
		case ExprBinary, ExprAssign, ExprConditional, ExprFunction:
			p.printf("(")
			p.printExpr(e)
			p.printf(")")
			return
		}
	}
	p.printExpr(e)
}

func (p *Printer) printLiteral(lit LiteralData) {
	switch lit.Kind {
	case LiteralNumber:
		p.printf("%s", strconv.FormatFloat(lit.NumberValue, 'g', -1, 64))
	case LiteralString:
		p.printf("%s", strconv.Quote(lit.StringValue))
	case LiteralBool:
		p.printf("%t", lit.BoolValue)
	case LiteralNull:
		p.printf("null")
	case LiteralUndefined:
		p.printf("undefined")
	}
}

func (p *Printer) printList(list []*Expr) {
	for i, e := range list {
		if i > 0 {
			p.printf(", ")
		}
		p.printExpr(e)
	}
}

func (p *Printer) writeIndent() {
	p.printf("%s", strings.Repeat("  ", p.indent))
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
