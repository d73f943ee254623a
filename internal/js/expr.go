package js

// ExprKind enumerates script IR expression kinds.
type ExprKind uint8

const (
	// ExprFunction is a function literal, named or anonymous.
	ExprFunction ExprKind = iota
	// ExprNameRef reads a binding.
	ExprNameRef
	// ExprLiteral represents number, string, boolean, null and undefined.
	ExprLiteral
	// ExprCall invokes a callee.
	ExprCall
	// ExprNew invokes a constructor.
	ExprNew
	// ExprDot reads a named property (obj.prop).
	ExprDot
	// ExprIndex reads a computed property (obj[key]).
	ExprIndex
	// ExprUnary represents prefix operators (!, -, typeof, void).
	ExprUnary
	// ExprBinary represents infix operators.
	ExprBinary
	// ExprAssign stores into a name or property.
	ExprAssign
	// ExprArray is an array literal.
	ExprArray
	// ExprObject is an object literal.
	ExprObject
	// ExprConditional is the ternary operator.
	ExprConditional
	// ExprThis is the this keyword.
	ExprThis
)

// String returns a human-readable name for the expression kind.
func (k ExprKind) String() string {
	switch k {
	case ExprFunction:
		return "Function"
	case ExprNameRef:
		return "NameRef"
	case ExprLiteral:
		return "Literal"
	case ExprCall:
		return "Call"
	case ExprNew:
		return "New"
	case ExprDot:
		return "Dot"
	case ExprIndex:
		return "Index"
	case ExprUnary:
		return "Unary"
	case ExprBinary:
		return "Binary"
	case ExprAssign:
		return "Assign"
	case ExprArray:
		return "Array"
	case ExprObject:
		return "Object"
	case ExprConditional:
		return "Conditional"
	case ExprThis:
		return "This"
	default:
		return "Unknown"
	}
}

// Expr represents a script IR expression.
type Expr struct {
	Kind ExprKind
	Data ExprData // Kind-specific payload
}

// ExprData is the interface for expression-specific data.
type ExprData interface {
	exprData()
}

// FunctionData holds data for ExprFunction.
type FunctionData struct {
	Name   *Name // nil for anonymous functions
	Params []*Name
	Body   *Block
}

func (FunctionData) exprData() {}

// NameRefData holds data for ExprNameRef.
type NameRefData struct {
	Name *Name
}

func (NameRefData) exprData() {}

// LiteralKind enumerates literal value kinds.
type LiteralKind uint8

const (
	LiteralNumber LiteralKind = iota
	LiteralString
	LiteralBool
	LiteralNull
	LiteralUndefined
)

// LiteralData holds data for ExprLiteral.
type LiteralData struct {
	Kind        LiteralKind
	NumberValue float64
	StringValue string
	BoolValue   bool
}

func (LiteralData) exprData() {}

// CallData holds data for ExprCall.
type CallData struct {
	Callee *Expr
	Args   []*Expr
}

func (CallData) exprData() {}

// NewData holds data for ExprNew.
type NewData struct {
	Ctor *Expr
	Args []*Expr
}

func (NewData) exprData() {}

// DotData holds data for ExprDot.
type DotData struct {
	Object *Expr
	Prop   string
}

func (DotData) exprData() {}

// IndexData holds data for ExprIndex.
type IndexData struct {
	Object *Expr
	Index  *Expr
}

func (IndexData) exprData() {}

// UnaryData holds data for ExprUnary. Op is the operator spelling.
type UnaryData struct {
	Op      string
	Operand *Expr
}

func (UnaryData) exprData() {}

// BinaryData holds data for ExprBinary. Op is the operator spelling.
type BinaryData struct {
	Op    string
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

// ArrayData holds data for ExprArray.
type ArrayData struct {
	Elems []*Expr
}

func (ArrayData) exprData() {}

// Property is one key/value pair of an object literal.
type Property struct {
	Key   string
	Value *Expr
}

// ObjectData holds data for ExprObject.
type ObjectData struct {
	Props []Property
}

func (ObjectData) exprData() {}

// ConditionalData holds data for ExprConditional.
type ConditionalData struct {
	Cond *Expr
	Then *Expr
	Else *Expr
}

func (ConditionalData) exprData() {}

// ThisData holds data for ExprThis.
type ThisData struct{}

func (ThisData) exprData() {}
