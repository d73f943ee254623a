package hir

import (
	"scriptc/internal/types"
)

// ExprKind enumerates HIR expression kinds.
type ExprKind uint8

const (
	// ExprLiteral represents literals (int, double, boolean, string, null).
	ExprLiteral ExprKind = iota
	// ExprLocalRef reads a local variable.
	ExprLocalRef
	// ExprParamRef reads a method parameter.
	ExprParamRef
	// ExprFieldRef reads an instance or static field.
	ExprFieldRef
	// ExprThis is the receiver of an instance method.
	ExprThis
	// ExprCall invokes a method.
	ExprCall
	// ExprNew instantiates a class through a constructor.
	ExprNew
	// ExprNewArray allocates an array (new T[n][m] or new T[]{...}).
	ExprNewArray
	// ExprCast converts a value to a target type ((T) x).
	ExprCast
	// ExprInstanceOf tests the runtime type of a value (x instanceof T).
	ExprInstanceOf
	// ExprClassLit names a class object (T.class).
	ExprClassLit
	// ExprUnary represents unary operators (-, !).
	ExprUnary
	// ExprBinary represents binary operators (+, ==, &&, ...).
	ExprBinary
	// ExprAssign stores a value into a local, field or array element.
	ExprAssign
	// ExprIndex reads an array element.
	ExprIndex
	// ExprConditional is the ternary operator.
	ExprConditional
)

// String returns a human-readable name for the expression kind.
func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "Literal"
	case ExprLocalRef:
		return "LocalRef"
	case ExprParamRef:
		return "ParamRef"
	case ExprFieldRef:
		return "FieldRef"
	case ExprThis:
		return "This"
	case ExprCall:
		return "Call"
	case ExprNew:
		return "New"
	case ExprNewArray:
		return "NewArray"
	case ExprCast:
		return "Cast"
	case ExprInstanceOf:
		return "InstanceOf"
	case ExprClassLit:
		return "ClassLit"
	case ExprUnary:
		return "Unary"
	case ExprBinary:
		return "Binary"
	case ExprAssign:
		return "Assign"
	case ExprIndex:
		return "Index"
	case ExprConditional:
		return "Conditional"
	default:
		return "Unknown"
	}
}

// Expr represents an HIR expression with type information.
type Expr struct {
	Kind ExprKind
	Type types.TypeID // result type; derived from the target for refs, calls and assignments
	Data ExprData     // Kind-specific payload
}

// ExprData is the interface for expression-specific data.
type ExprData interface {
	exprData()
}

// TypeOf returns the static type of e. Reference and call expressions take
// their type from the declaration they point at, so rewriting a declaration
// type is visible at every use; an assignment has the type of its target.
// Every other kind carries its result type in Type.
func (e *Expr) TypeOf() types.TypeID {
	if e == nil {
		return types.NoTypeID
	}
	switch data := e.Data.(type) {
	case LocalRefData:
		if data.Local != nil {
			return data.Local.Type
		}
	case ParamRefData:
		if data.Param != nil {
			return data.Param.Type
		}
	case FieldRefData:
		if data.Field != nil {
			return data.Field.Type
		}
	case CallData:
		if data.Method != nil {
			return data.Method.Result
		}
	case AssignData:
		if data.Target != nil {
			return data.Target.TypeOf()
		}
	}
	return e.Type
}

// LiteralKind enumerates literal value kinds.
type LiteralKind uint8

const (
	LiteralInt LiteralKind = iota
	LiteralDouble
	LiteralBool
	LiteralString
	LiteralNull
)

// LiteralData holds data for ExprLiteral.
type LiteralData struct {
	Kind        LiteralKind
	IntValue    int64
	FloatValue  float64
	BoolValue   bool
	StringValue string
}

func (LiteralData) exprData() {}

// LocalRefData holds data for ExprLocalRef.
type LocalRefData struct {
	Local *Local
}

func (LocalRefData) exprData() {}

// ParamRefData holds data for ExprParamRef.
type ParamRefData struct {
	Param *Param
}

func (ParamRefData) exprData() {}

// FieldRefData holds data for ExprFieldRef.
type FieldRefData struct {
	Object *Expr // nil for static fields
	Field  *Field
}

func (FieldRefData) exprData() {}

// ThisData holds data for ExprThis.
type ThisData struct{}

func (ThisData) exprData() {}

// CallData holds data for ExprCall.
type CallData struct {
	Receiver *Expr // nil for static calls
	Method   *Method
	Args     []*Expr
}

func (CallData) exprData() {}

// NewData holds data for ExprNew. The instantiated class is Expr.Type.
type NewData struct {
	Ctor *Method
	Args []*Expr
}

func (NewData) exprData() {}

// NewArrayData holds data for ExprNewArray.
// Elem is the element type of the outermost dimension; Expr.Type is Elem[].
type NewArrayData struct {
	Elem  types.TypeID
	Sizes []*Expr // dimension sizes, empty when Init is used
	Init  []*Expr // initializer elements
}

func (NewArrayData) exprData() {}

// CastData holds data for ExprCast.
type CastData struct {
	Target types.TypeID
	Value  *Expr
}

func (CastData) exprData() {}

// InstanceOfData holds data for ExprInstanceOf.
type InstanceOfData struct {
	Test  types.TypeID
	Value *Expr
}

func (InstanceOfData) exprData() {}

// ClassLitData holds data for ExprClassLit.
type ClassLitData struct {
	Ref types.TypeID
}

func (ClassLitData) exprData() {}

// UnaryOp enumerates unary operators.
type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryNeg:
		return "-"
	case UnaryNot:
		return "!"
	default:
		return "?"
	}
}

// UnaryData holds data for ExprUnary.
type UnaryData struct {
	Op      UnaryOp
	Operand *Expr
}

func (UnaryData) exprData() {}

// BinaryOp enumerates binary operators.
type BinaryOp uint8

const (
	BinaryAdd BinaryOp = iota
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryEq
	BinaryNe
	BinaryLt
	BinaryLe
	BinaryGt
	BinaryGe
	BinaryAnd
	BinaryOr
)

func (op BinaryOp) String() string {
	switch op {
	case BinaryAdd:
		return "+"
	case BinarySub:
		return "-"
	case BinaryMul:
		return "*"
	case BinaryDiv:
		return "/"
	case BinaryEq:
		return "=="
	case BinaryNe:
		return "!="
	case BinaryLt:
		return "<"
	case BinaryLe:
		return "<="
	case BinaryGt:
		return ">"
	case BinaryGe:
		return ">="
	case BinaryAnd:
		return "&&"
	case BinaryOr:
		return "||"
	default:
		return "?"
	}
}

// BinaryData holds data for ExprBinary.
type BinaryData struct {
	Op    BinaryOp
	Left  *Expr
	Right *Expr
}

func (BinaryData) exprData() {}

// AssignData holds data for ExprAssign.
type AssignData struct {
	Target *Expr
	Value  *Expr
}

func (AssignData) exprData() {}

// IndexData holds data for ExprIndex.
type IndexData struct {
	Array *Expr
	Index *Expr
}

func (IndexData) exprData() {}

// ConditionalData holds data for ExprConditional.
type ConditionalData struct {
	Cond *Expr
	Then *Expr
	Else *Expr
}

func (ConditionalData) exprData() {}
