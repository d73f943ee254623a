package hir

// Block is an ordered list of statements.
type Block struct {
	Stmts []*Stmt
}

// NewBlock wraps stmts into a block.
func NewBlock(stmts ...*Stmt) *Block {
	return &Block{Stmts: stmts}
}
