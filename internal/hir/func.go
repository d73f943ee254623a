package hir

import (
	"scriptc/internal/types"
)

// MethodFlags represents method modifiers as a bitmask.
type MethodFlags uint32

const (
	// MethodStatic indicates a static method.
	MethodStatic MethodFlags = 1 << iota
	// MethodConstructor indicates a constructor.
	MethodConstructor
	// MethodNative indicates a method implemented by the host (no body).
	MethodNative
	// MethodAbstract indicates an abstract or interface method.
	MethodAbstract
)

// HasFlag returns true if the given flag is set.
func (f MethodFlags) HasFlag(flag MethodFlags) bool {
	return f&flag != 0
}

// String returns a human-readable representation of flags.
func (f MethodFlags) String() string {
	s := ""
	if f.HasFlag(MethodStatic) {
		s += "static "
	}
	if f.HasFlag(MethodConstructor) {
		s += "ctor "
	}
	if f.HasFlag(MethodNative) {
		s += "native "
	}
	if f.HasFlag(MethodAbstract) {
		s += "abstract "
	}
	return s
}

// Param represents a method parameter.
type Param struct {
	Name string
	Type types.TypeID
}

// Local represents a local variable, declared by a StmtLet.
type Local struct {
	Name string
	Type types.TypeID
}

// Method represents an HIR method.
type Method struct {
	Name   string
	Params []*Param
	Result types.TypeID // Return type (Builtins().Void for void)
	Flags  MethodFlags
	Body   *Block // nil for native/abstract methods
}

// IsStatic returns true if this is a static method.
func (m *Method) IsStatic() bool {
	return m.Flags.HasFlag(MethodStatic)
}

// HasBody returns true if this method has a body.
func (m *Method) HasBody() bool {
	return m.Body != nil
}
