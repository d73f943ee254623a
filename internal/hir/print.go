//nolint:errcheck // Type assertions are checked by construction
package hir

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"scriptc/internal/types"
)

// Printer is used to dump HIR to text format.
type Printer struct {
	w        io.Writer
	interner *types.Interner
	indent   int
	err      error
}

// NewPrinter creates a new HIR printer.
func NewPrinter(w io.Writer, interner *types.Interner) *Printer {
	return &Printer{w: w, interner: interner}
}

// Dump writes the HIR program to the writer.
func Dump(w io.Writer, p *Program) error {
	pr := NewPrinter(w, p.Types)
	return pr.PrintProgram(p)
}

// PrintProgram prints a complete program.
func (p *Printer) PrintProgram(prog *Program) error {
	p.printf("program %s\n", prog.Name)
	for _, c := range prog.Classes {
		p.printf("\n")
		p.printClass(c)
	}
	return p.err
}

func (p *Printer) printClass(c *Class) {
	header := "class " + c.Name
	if info, ok := p.interner.Nominal(c.Type); ok && info.Super != types.NoTypeID {
		header += " extends " + p.typeStr(info.Super)
	}
	p.printf("%s\n", header)
	p.indent++
	for _, f := range c.Fields {
		p.writeIndent()
		if f.Static {
			p.printf("static ")
		}
		p.printf("field %s: %s", f.Name, p.typeStr(f.Type))
		if f.Init != nil {
			p.printf(" = ")
			p.printExpr(f.Init)
		}
		p.printf("\n")
	}
	for _, m := range c.Methods {
		p.printMethod(m)
	}
	p.indent--
}

func (p *Printer) printMethod(m *Method) {
	p.writeIndent()
	p.printf("%smethod %s(", m.Flags, m.Name)
	for i, param := range m.Params {
		if i > 0 {
			p.printf(", ")
		}
		p.printf("%s: %s", param.Name, p.typeStr(param.Type))
	}
	p.printf("): %s\n", p.typeStr(m.Result))
	if m.Body != nil {
		p.indent++
		p.printBlock(m.Body)
		p.indent--
	}
}

func (p *Printer) printBlock(b *Block) {
	for _, st := range b.Stmts {
		p.printStmt(st)
	}
}

func (p *Printer) printStmt(st *Stmt) {
	p.writeIndent()
	switch st.Kind {
	case StmtLet:
		data := st.Data.(LetData)
		p.printf("let %s: %s", data.Local.Name, p.typeStr(data.Local.Type))
		if data.Value != nil {
			p.printf(" = ")
			p.printExpr(data.Value)
		}
		p.printf("\n")
	case StmtExpr:
		p.printExpr(st.Data.(ExprStmtData).Expr)
		p.printf("\n")
	case StmtReturn:
		data := st.Data.(ReturnData)
		p.printf("return")
		if data.Value != nil {
			p.printf(" ")
			p.printExpr(data.Value)
		}
		p.printf("\n")
	case StmtIf:
		data := st.Data.(IfStmtData)
		p.printf("if ")
		p.printExpr(data.Cond)
		p.printf("\n")
		p.nested(data.Then)
		if data.Else != nil {
			p.writeIndent()
			p.printf("else\n")
			p.nested(data.Else)
		}
	case StmtWhile:
		data := st.Data.(WhileData)
		p.printf("while ")
		p.printExpr(data.Cond)
		p.printf("\n")
		p.nested(data.Body)
	case StmtBlock:
		p.printf("block\n")
		p.nested(st.Data.(BlockStmtData).Block)
	case StmtThrow:
		p.printf("throw ")
		p.printExpr(st.Data.(ThrowData).Value)
		p.printf("\n")
	case StmtBreak:
		p.printf("break\n")
	case StmtContinue:
		p.printf("continue\n")
	default:
		p.printf("<%s>\n", st.Kind)
	}
}

func (p *Printer) nested(b *Block) {
	if b == nil {
		return
	}
	p.indent++
	p.printBlock(b)
	p.indent--
}

func (p *Printer) printExpr(e *Expr) {
	if e == nil {
		p.printf("<nil>")
		return
	}
	switch e.Kind {
	case ExprLiteral:
		p.printLiteral(e.Data.(LiteralData))
	case ExprLocalRef:
		p.printf("%s", e.Data.(LocalRefData).Local.Name)
	case ExprParamRef:
		p.printf("%s", e.Data.(ParamRefData).Param.Name)
	case ExprFieldRef:
		data := e.Data.(FieldRefData)
		if data.Object != nil {
			p.printExpr(data.Object)
			p.printf(".")
		}
		p.printf("%s", data.Field.Name)
	case ExprThis:
		p.printf("this")
	case ExprCall:
		data := e.Data.(CallData)
		if data.Receiver != nil {
			p.printExpr(data.Receiver)
			p.printf(".")
		}
		p.printf("%s(", data.Method.Name)
		p.printList(data.Args)
		p.printf(")")
	case ExprNew:
		data := e.Data.(NewData)
		p.printf("new %s(", p.typeStr(e.Type))
		p.printList(data.Args)
		p.printf(")")
	case ExprNewArray:
		data := e.Data.(NewArrayData)
		leaf, dims := p.interner.Leaf(data.Elem)
		p.printf("new %s", p.typeStr(leaf))
		if len(data.Init) > 0 {
			p.printf("%s{", strings.Repeat("[]", int(dims)+1))
			p.printList(data.Init)
			p.printf("}")
			return
		}
		for _, size := range data.Sizes {
			p.printf("[")
			p.printExpr(size)
			p.printf("]")
		}
		for i := len(data.Sizes); i < int(dims)+1; i++ {
			p.printf("[]")
		}
	case ExprCast:
		data := e.Data.(CastData)
		p.printf("((%s) ", p.typeStr(data.Target))
		p.printExpr(data.Value)
		p.printf(")")
	case ExprInstanceOf:
		data := e.Data.(InstanceOfData)
		p.printf("(")
		p.printExpr(data.Value)
		p.printf(" instanceof %s)", p.typeStr(data.Test))
	case ExprClassLit:
		p.printf("%s.class", p.typeStr(e.Data.(ClassLitData).Ref))
	case ExprUnary:
		data := e.Data.(UnaryData)
		p.printf("(%s", data.Op)
		p.printExpr(data.Operand)
		p.printf(")")
	case ExprBinary:
		data := e.Data.(BinaryData)
		p.printf("(")
		p.printExpr(data.Left)
		p.printf(" %s ", data.Op)
		p.printExpr(data.Right)
		p.printf(")")
	case ExprAssign:
		data := e.Data.(AssignData)
		p.printExpr(data.Target)
		p.printf(" = ")
		p.printExpr(data.Value)
	case ExprIndex:
		data := e.Data.(IndexData)
		p.printExpr(data.Array)
		p.printf("[")
		p.printExpr(data.Index)
		p.printf("]")
	case ExprConditional:
		data := e.Data.(ConditionalData)
		p.printf("(")
		p.printExpr(data.Cond)
		p.printf(" ? ")
		p.printExpr(data.Then)
		p.printf(" : ")
		p.printExpr(data.Else)
		p.printf(")")
	default:
		p.printf("<%s>", e.Kind)
	}
}

func (p *Printer) printLiteral(lit LiteralData) {
	switch lit.Kind {
	case LiteralInt:
		p.printf("%d", lit.IntValue)
	case LiteralDouble:
		p.printf("%s", strconv.FormatFloat(lit.FloatValue, 'g', -1, 64))
	case LiteralBool:
		p.printf("%t", lit.BoolValue)
	case LiteralString:
		p.printf("%q", lit.StringValue)
	case LiteralNull:
		p.printf("null")
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

func (p *Printer) typeStr(id types.TypeID) string {
	if p.interner == nil {
		return fmt.Sprintf("type#%d", id)
	}
	return p.interner.Name(id)
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
