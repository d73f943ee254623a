package js

import (
	"errors"
	"fmt"
)

// Validate checks the binding invariants passes rely on: every declaring
// site is the recorded declaration of its name, no name is declared twice,
// references are non-nil and every initializer routine is declared.
// Names without a declaration are host globals and are allowed.
func Validate(p *Program) error {
	if p == nil {
		return fmt.Errorf("js: nil program")
	}
	v := &validator{declared: make(map[*Name]struct{}, len(p.names))}
	if _, err := Accept(p, v); err != nil {
		return err
	}
	for _, n := range p.Initializers() {
		if n.Decl() == nil {
			v.errorf("initializer %s is never declared", n.Ident)
		}
	}
	return errors.Join(v.errs...)
}

type validator struct {
	BaseVisitor
	declared map[*Name]struct{}
	errs     []error
}

func (v *validator) errorf(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf("js: "+format, args...))
}

func (v *validator) declare(n *Name, site Node, what string) {
	if n == nil {
		v.errorf("%s without a name", what)
		return
	}
	if _, dup := v.declared[n]; dup {
		v.errorf("%s %s is declared more than once", what, n.Ident)
		return
	}
	v.declared[n] = struct{}{}
	if n.Decl() != site {
		v.errorf("%s %s does not point back at its declaration", what, n.Ident)
	}
}

func (v *validator) Visit(n Node, _ *Context) bool {
	switch n := n.(type) {
	case *Stmt:
		if n.Kind == StmtVar {
			if data, ok := n.Data.(VarData); ok {
				v.declare(data.Name, n, "variable")
			}
		}
	case *Expr:
		switch data := n.Data.(type) {
		case FunctionData:
			if data.Name != nil {
				v.declare(data.Name, n, "function")
			}
			for _, param := range data.Params {
				v.declare(param, n, "parameter")
			}
		case NameRefData:
			if data.Name == nil {
				v.errorf("name reference without a name")
			}
		}
	}
	return true
}
