package js

// StmtKind enumerates script IR statement kinds.
type StmtKind uint8

const (
	// StmtExpr represents an expression statement.
	StmtExpr StmtKind = iota
	// StmtVar declares a variable.
	StmtVar
	// StmtReturn represents return statement.
	StmtReturn
	// StmtIf represents if/else statement.
	StmtIf
	// StmtWhile represents while loop.
	StmtWhile
	// StmtBlock represents a nested block.
	StmtBlock
	// StmtThrow raises an exception.
	StmtThrow
	// StmtBreak represents break statement.
	StmtBreak
	// StmtContinue represents continue statement.
	StmtContinue
)

// String returns a human-readable name for the statement kind.
func (k StmtKind) String() string {
	switch k {
	case StmtExpr:
		return "Expr"
	case StmtVar:
		return "Var"
	case StmtReturn:
		return "Return"
	case StmtIf:
		return "If"
	case StmtWhile:
		return "While"
	case StmtBlock:
		return "Block"
	case StmtThrow:
		return "Throw"
	case StmtBreak:
		return "Break"
	case StmtContinue:
		return "Continue"
	default:
		return "Unknown"
	}
}

// Stmt represents a script IR statement.
type Stmt struct {
	Kind StmtKind
	Data StmtData // Kind-specific payload
}

// StmtData is the interface for statement-specific data.
type StmtData interface {
	stmtData()
}

// ExprStmtData holds data for StmtExpr.
type ExprStmtData struct {
	Expr *Expr
}

func (ExprStmtData) stmtData() {}

// VarData holds data for StmtVar.
type VarData struct {
	Name *Name
	Init *Expr // nil if none
}

func (VarData) stmtData() {}

// ReturnData holds data for StmtReturn.
type ReturnData struct {
	Value *Expr // nil for bare return
}

func (ReturnData) stmtData() {}

// IfData holds data for StmtIf.
type IfData struct {
	Cond *Expr
	Then *Block
	Else *Block // nil if no else branch
}

func (IfData) stmtData() {}

// WhileData holds data for StmtWhile.
type WhileData struct {
	Cond *Expr
	Body *Block
}

func (WhileData) stmtData() {}

// BlockStmtData holds data for StmtBlock.
type BlockStmtData struct {
	Block *Block
}

func (BlockStmtData) stmtData() {}

// ThrowData holds data for StmtThrow.
type ThrowData struct {
	Value *Expr
}

func (ThrowData) stmtData() {}

// BreakData holds data for StmtBreak.
type BreakData struct{}

func (BreakData) stmtData() {}

// ContinueData holds data for StmtContinue.
type ContinueData struct{}

func (ContinueData) stmtData() {}

// FunctionDecl returns the named function literal of a top-level function
// declaration, i.e. an expression statement whose expression is a function
// literal with a name. It returns nil for every other statement shape.
func (st *Stmt) FunctionDecl() (*Expr, *Name) {
	if st == nil || st.Kind != StmtExpr {
		return nil, nil
	}
	data, ok := st.Data.(ExprStmtData)
	if !ok || data.Expr == nil || data.Expr.Kind != ExprFunction {
		return nil, nil
	}
	fn, ok := data.Expr.Data.(FunctionData)
	if !ok || fn.Name == nil {
		return nil, nil
	}
	return data.Expr, fn.Name
}
