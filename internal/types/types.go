package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindInt
	KindLong
	KindDouble
	KindString
	KindNull
	KindClass
	KindInterface
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindBool:
		return "boolean"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindDouble:
		return "double"
	case KindString:
		return "String"
	case KindNull:
		return "null"
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsPrimitive reports whether the kind is a non-reference type.
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindVoid, KindBool, KindInt, KindLong, KindDouble:
		return true
	default:
		return false
	}
}

// IsReference reports whether values of the kind are object references.
func (k Kind) IsReference() bool {
	switch k {
	case KindString, KindNull, KindClass, KindInterface, KindArray:
		return true
	default:
		return false
	}
}

// Type is a compact descriptor for any supported type.
//
// Arrays are stored flattened: Elem is the leaf (never an array) and Dims the
// number of dimensions, so int[][] is {Elem: int, Dims: 2}.
type Type struct {
	Kind    Kind
	Elem    TypeID // leaf element type for arrays
	Dims    uint32 // array dimensionality, at least 1 for arrays
	Payload uint32 // index into the nominal table for classes and interfaces
}

// MakeArray describes a Dims-dimensional array of leaf.
// Callers holding a possibly-array element should use Interner.ArrayOf instead.
func MakeArray(leaf TypeID, dims uint32) Type {
	return Type{Kind: KindArray, Elem: leaf, Dims: dims}
}
