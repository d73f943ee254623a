package types

import (
	"fmt"
	"strings"
)

// Name renders id in source-like notation: int, Foo, Foo[][].
func (in *Interner) Name(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return fmt.Sprintf("type#%d", id)
	}
	switch tt.Kind {
	case KindClass, KindInterface:
		if info := in.nominal(id); info != nil && info.Name != "" {
			return info.Name
		}
		return fmt.Sprintf("%s#%d", tt.Kind, id)
	case KindArray:
		return in.Name(tt.Elem) + strings.Repeat("[]", int(tt.Dims))
	default:
		return tt.Kind.String()
	}
}
