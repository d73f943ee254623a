package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the primitive and built-in reference types.
type Builtins struct {
	Invalid TypeID
	Void    TypeID
	Bool    TypeID
	Int     TypeID
	Long    TypeID
	Double  TypeID
	String  TypeID
	Null    TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Classes and interfaces are nominal: every registration yields a fresh TypeID.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	nominals []NominalInfo
	byName   map[string]TypeID
	wrapper  TypeID
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:  make(map[typeKey]TypeID, 64),
		byName: make(map[string]TypeID, 16),
	}
	in.nominals = append(in.nominals, NominalInfo{}) // reserve 0 as invalid sentinel
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Void = in.Intern(Type{Kind: KindVoid})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.Long = in.Intern(Type{Kind: KindLong})
	in.builtins.Double = in.Intern(Type{Kind: KindDouble})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.Null = in.Intern(Type{Kind: KindNull})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
// Array descriptors whose Elem is itself an array are flattened first.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if t.Kind == KindArray {
		if t.Dims == 0 {
			return t.Elem
		}
		if inner, ok := in.Lookup(t.Elem); ok && inner.Kind == KindArray {
			t = MakeArray(inner.Elem, inner.Dims+t.Dims)
		}
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// ArrayOf returns the type of a dims-dimensional array whose element is elem.
// elem may itself be an array; the result is always flattened onto the leaf.
func (in *Interner) ArrayOf(elem TypeID, dims uint32) TypeID {
	return in.Intern(MakeArray(elem, dims))
}

// Leaf splits id into its leaf element type and dimensionality.
// Non-array types are their own leaf with zero dimensions.
func (in *Interner) Leaf(id TypeID) (leaf TypeID, dims uint32) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindArray {
		return id, 0
	}
	return tt.Elem, tt.Dims
}

// ElemOf returns the element type of one array dimension, or NoTypeID for
// non-arrays.
func (in *Interner) ElemOf(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindArray {
		return NoTypeID
	}
	if tt.Dims == 1 {
		return tt.Elem
	}
	return in.Intern(MakeArray(tt.Elem, tt.Dims-1))
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[typeKey(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if in == nil || id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Len reports the number of interned types including the invalid sentinel.
// Valid IDs are 1..Len()-1.
func (in *Interner) Len() int {
	if in == nil {
		return 0
	}
	return len(in.types)
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Dims    uint32
	Payload uint32
}
