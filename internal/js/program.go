// Package js provides the script-level IR used for final code generation.
//
// A Program is an ordered list of top-level statements. Bindings are *Name
// values: a Name's identity is its pointer, Ident is only its spelling. The
// protection attributes of a Name (obfuscatable, initializer) are stamped when
// the linking stage creates it and are read-only afterwards.
package js

import (
	"fmt"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"
)

// Node is the closed set of script IR node types a Visitor can receive:
// *Program, *Block, *Stmt and *Expr.
type Node interface {
	jsNode()
}

func (*Program) jsNode() {}
func (*Block) jsNode()   {}
func (*Stmt) jsNode()    {}
func (*Expr) jsNode()    {}

// NameFlags are the protection attributes of a Name.
type NameFlags uint8

const (
	// NameObfuscatable marks a name later stages may rename or remove.
	// Names without it are externally visible entry points.
	NameObfuscatable NameFlags = 1 << iota
	// NameInitializer marks the per-module static initializer routine.
	NameInitializer
)

// HasFlag returns true if the given flag is set.
func (f NameFlags) HasFlag(flag NameFlags) bool {
	return f&flag != 0
}

// Name is a unique binding identity.
type Name struct {
	Ident string
	flags NameFlags
	decl  Node
	index uint32
}

// Obfuscatable reports whether the name may be renamed or removed.
func (n *Name) Obfuscatable() bool { return n.flags.HasFlag(NameObfuscatable) }

// IsInitializer reports whether the name is a module initializer routine.
func (n *Name) IsInitializer() bool { return n.flags.HasFlag(NameInitializer) }

// Flags returns the stamped attributes.
func (n *Name) Flags() NameFlags { return n.flags }

// Decl returns the node declaring the name, or nil for host globals.
func (n *Name) Decl() Node { return n.decl }

// Index is the creation order of the name within its program.
func (n *Name) Index() uint32 { return n.index }

func (n *Name) String() string { return n.Ident }

// Program is the root of the script IR of one compilation unit.
type Program struct {
	Name  string
	Stmts []*Stmt
	names []*Name
}

// NewName creates a binding identity owned by p. The spelling is normalized
// to NFC so equal identifiers print identically.
func (p *Program) NewName(ident string, flags NameFlags) *Name {
	idx, err := safecast.Conv[uint32](len(p.names))
	if err != nil {
		panic(fmt.Errorf("names table overflow: %w", err))
	}
	n := &Name{
		Ident: norm.NFC.String(ident),
		flags: flags,
		index: idx,
	}
	p.names = append(p.names, n)
	return n
}

// Names returns every name created for p, in creation order.
func (p *Program) Names() []*Name {
	return p.names
}

// Initializers returns the names stamped as module initializers.
func (p *Program) Initializers() []*Name {
	var out []*Name
	for _, n := range p.names {
		if n.IsInitializer() {
			out = append(out, n)
		}
	}
	return out
}

// Block is an ordered list of statements.
type Block struct {
	Stmts []*Stmt
}

// NewBlock wraps stmts into a block.
func NewBlock(stmts ...*Stmt) *Block {
	return &Block{Stmts: stmts}
}
