// Package ice carries internal-consistency failures of the rewriting passes.
//
// An internal error means the compiler or an upstream stage is broken: malformed
// IR, a protected declaration about to be removed, an unhandled node kind, or a
// traversal Context used incorrectly. Such errors abort the compilation and are
// never reported as user diagnostics.
//
// Inside a traversal the error is raised with Raise and travels as a panic up to
// the nearest Recover, which turns it back into an ordinary error value:
//
//	func Accept(n Node, v Visitor) (changed bool, err error) {
//		defer ice.Recover(&err)
//		...
//	}
package ice

import (
	"errors"
	"fmt"
)

// ErrInternal matches every *Error via errors.Is.
var ErrInternal = errors.New("internal compiler error")

// Error describes a single internal-consistency violation.
type Error struct {
	Pass string // pass that detected the violation, empty when raised by shared code
	Msg  string
}

func (e *Error) Error() string {
	if e.Pass == "" {
		return "internal compiler error: " + e.Msg
	}
	return "internal compiler error: " + e.Pass + ": " + e.Msg
}

// Is reports whether target is ErrInternal.
func (e *Error) Is(target error) bool {
	return target == ErrInternal
}

// Errorf builds an *Error without a pass attribution.
func Errorf(format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// Raise panics with an *Error. It must only be called below a Recover.
func Raise(format string, args ...any) {
	panic(Errorf(format, args...))
}

// RaiseIn is Raise with a pass attribution.
func RaiseIn(pass, format string, args ...any) {
	e := Errorf(format, args...)
	e.Pass = pass
	panic(e)
}

// Recover converts an in-flight *Error panic into *errp. Any other panic is
// re-raised unchanged.
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(*Error); ok {
		if errp != nil {
			*errp = e
		}
		return
	}
	panic(r)
}

// Guard runs fn and converts a non-*Error panic into an *Error naming what.
// It is used around collaborator callbacks (predicates) whose failure must be
// reported as an internal error rather than crash the process.
func Guard(what string, fn func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(*Error); ok {
			panic(e)
		}
		panic(Errorf("%s panicked: %v", what, r))
	}()
	fn()
}
