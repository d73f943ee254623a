// Package hir provides the high-level typed object-model IR.
//
// A Program is a set of classes with fields and methods. Every declaration
// and every type-bearing expression carries a types.TypeID from the program's
// interner. Expressions and statements are tagged variants: a Kind plus a
// Kind-specific Data payload.
//
// Passes traverse the IR through Accept, which hands each slot a Context for
// validated in-place rewriting.
package hir

import (
	"scriptc/internal/types"
)

// Node is the closed set of HIR node types a Visitor can receive:
// *Program, *Class, *Field, *Method, *Param, *Local, *Block, *Stmt and *Expr.
type Node interface {
	hirNode()
}

func (*Program) hirNode() {}
func (*Class) hirNode()   {}
func (*Field) hirNode()   {}
func (*Method) hirNode()  {}
func (*Param) hirNode()   {}
func (*Local) hirNode()   {}
func (*Block) hirNode()   {}
func (*Stmt) hirNode()    {}
func (*Expr) hirNode()    {}

// Program is the root of the object-model IR of one compilation unit.
type Program struct {
	Name    string
	Types   *types.Interner
	Classes []*Class
}

// Class represents a class or interface declaration.
type Class struct {
	Name    string
	Type    types.TypeID
	Fields  []*Field
	Methods []*Method
}

// Field represents a field declaration.
type Field struct {
	Name   string
	Type   types.TypeID // Declared type
	Static bool
	Init   *Expr // Initializer (nil if none)
}

// FindClass finds a class by name, returns nil if not found.
func (p *Program) FindClass(name string) *Class {
	for _, c := range p.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindField finds a field by name, returns nil if not found.
func (c *Class) FindField(name string) *Field {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FindMethod finds a method by name, returns nil if not found.
func (c *Class) FindMethod(name string) *Method {
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}
