package types

import (
	"fmt"

	"fortio.org/safecast"

	"scriptc/internal/ice"
)

// NominalInfo describes a class or interface declaration.
type NominalInfo struct {
	Name       string
	Super      TypeID // superclass, NoTypeID for roots and interfaces
	Interfaces []TypeID
}

// RegisterClass allocates a new class type. super may be NoTypeID and may be
// patched later with SetSuper when the superclass is registered afterwards.
func (in *Interner) RegisterClass(name string, super TypeID) TypeID {
	id := in.registerNominal(KindClass, name)
	in.nominals[in.types[id].Payload].Super = super
	return id
}

// RegisterInterface allocates a new interface type.
func (in *Interner) RegisterInterface(name string) TypeID {
	return in.registerNominal(KindInterface, name)
}

func (in *Interner) registerNominal(kind Kind, name string) TypeID {
	slot, err := safecast.Conv[uint32](len(in.nominals))
	if err != nil {
		panic(fmt.Errorf("nominal table overflow: %w", err))
	}
	in.nominals = append(in.nominals, NominalInfo{Name: name})
	id := in.internRaw(Type{Kind: kind, Payload: slot})
	if _, dup := in.byName[name]; !dup {
		in.byName[name] = id
	}
	return id
}

// SetSuper updates the superclass of a registered class.
func (in *Interner) SetSuper(class, super TypeID) {
	info := in.nominal(class)
	if info == nil {
		return
	}
	info.Super = super
}

// AddInterface records that a class or interface implements iface.
func (in *Interner) AddInterface(id, iface TypeID) {
	info := in.nominal(id)
	if info == nil {
		return
	}
	info.Interfaces = append(info.Interfaces, iface)
}

// Nominal returns the class/interface info for id.
func (in *Interner) Nominal(id TypeID) (*NominalInfo, bool) {
	info := in.nominal(id)
	return info, info != nil
}

// LookupNominal finds the first class or interface registered under name.
func (in *Interner) LookupNominal(name string) (TypeID, bool) {
	if in == nil {
		return NoTypeID, false
	}
	id, ok := in.byName[name]
	return id, ok
}

func (in *Interner) nominal(id TypeID) *NominalInfo {
	tt, ok := in.Lookup(id)
	if !ok || (tt.Kind != KindClass && tt.Kind != KindInterface) {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.nominals) {
		return nil
	}
	return &in.nominals[tt.Payload]
}

// SetWrapperRoot designates the canonical host-object wrapper class.
// Every class whose superclass chain reaches root is a wrapper type.
func (in *Interner) SetWrapperRoot(root TypeID) {
	in.wrapper = root
}

// CanonicalWrapper returns the designated wrapper root, or NoTypeID.
func (in *Interner) CanonicalWrapper() TypeID {
	if in == nil {
		return NoTypeID
	}
	return in.wrapper
}

// IsWrapper is the wrapper-marker predicate: it reports whether id is the
// wrapper root or a class extending it. Wrapper families are class-only: only
// superclass links are followed, so interfaces, and classes that merely
// implement an interface, are never wrappers. Arrays are never wrappers
// themselves. A cyclic superclass chain is an internal error.
func (in *Interner) IsWrapper(id TypeID) bool {
	if in == nil || in.wrapper == NoTypeID {
		return false
	}
	return in.IsSubclass(id, in.wrapper)
}

// IsSubclass reports whether class id equals base or extends it transitively.
func (in *Interner) IsSubclass(id, base TypeID) bool {
	seen := make(map[TypeID]struct{}, 4)
	for cur := id; cur != NoTypeID; {
		if cur == base {
			return true
		}
		if _, ok := seen[cur]; ok {
			ice.Raise("cyclic supertype chain through %s", in.Name(cur))
		}
		seen[cur] = struct{}{}
		tt, ok := in.Lookup(cur)
		if !ok || tt.Kind != KindClass {
			return false
		}
		cur = in.nominals[tt.Payload].Super
	}
	return false
}
