package hir

import (
	"errors"
	"fmt"

	"scriptc/internal/types"
)

// Validate checks structural invariants a pass relies on: every type
// occurrence names a type known to the program's interner and every
// reference expression points at a declaration.
func Validate(p *Program) error {
	if p == nil {
		return fmt.Errorf("hir: nil program")
	}
	if p.Types == nil {
		return fmt.Errorf("hir: program %q has no type interner", p.Name)
	}
	v := &validator{types: p.Types}
	if _, err := Accept(p, v); err != nil {
		return err
	}
	return errors.Join(v.errs...)
}

type validator struct {
	BaseVisitor
	types *types.Interner
	where string
	errs  []error
}

func (v *validator) errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if v.where != "" {
		msg = v.where + ": " + msg
	}
	v.errs = append(v.errs, errors.New("hir: "+msg))
}

func (v *validator) checkType(what string, id types.TypeID) {
	if _, ok := v.types.Lookup(id); !ok {
		v.errorf("%s has unknown type#%d", what, id)
	}
}

func (v *validator) Visit(n Node, _ *Context) bool {
	switch n := n.(type) {
	case *Class:
		v.where = n.Name
		if _, ok := v.types.Nominal(n.Type); !ok {
			v.errorf("class type#%d is not a class or interface", n.Type)
		}
	case *Field:
		v.checkType("field "+n.Name, n.Type)
	case *Method:
		v.checkType("result of "+n.Name, n.Result)
	case *Param:
		v.checkType("parameter "+n.Name, n.Type)
	case *Local:
		v.checkType("local "+n.Name, n.Type)
	case *Expr:
		v.checkExpr(n)
	}
	return true
}

func (v *validator) checkExpr(e *Expr) {
	switch data := e.Data.(type) {
	case LocalRefData:
		if data.Local == nil {
			v.errorf("local reference without local")
		}
	case ParamRefData:
		if data.Param == nil {
			v.errorf("parameter reference without parameter")
		}
	case FieldRefData:
		if data.Field == nil {
			v.errorf("field reference without field")
		}
	case CallData:
		if data.Method == nil {
			v.errorf("call without method")
		}
	case NewArrayData:
		v.checkType("array allocation element", data.Elem)
	case CastData:
		v.checkType("cast target", data.Target)
	case InstanceOfData:
		v.checkType("instanceof test", data.Test)
	case ClassLitData:
		v.checkType("class literal", data.Ref)
	}
	if e.Type != types.NoTypeID {
		v.checkType(e.Kind.String()+" expression", e.Type)
	}
}
