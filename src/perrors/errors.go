// Package perrors is a unified errors package for declaration, resolution
// and call-time checking so that every failure can be formatted and
// discriminated in a uniform way by callers.
package perrors

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ErrorKind is an enum to describe which stage of checking the error
	// originates from.
	ErrorKind int
	// Error captures all errors raised by the pedant runtime. It
	// distinguishes between declaration mistakes, type-check violations,
	// call-convention violations and unresolved forward references so that
	// callers can discriminate without string matching.
	Error struct {
		Kind     ErrorKind
		Fn       string   // qualified name of the declaration being checked
		Path     []string // access path into the offending value, outermost first
		Value    string   // repr of the offending value
		Actual   string   // runtime type name of the offending value
		Expected string   // text form of the expected type
		Err      error    // wrapped detail, may be nil
	}
)

const (
	// DeclarationErr is raised at declaration time when a callable or class
	// is structurally invalid for checking, e.g. a missing annotation.
	DeclarationErr ErrorKind = iota
	// TypeCheckErr is raised at call time when a value's runtime type does
	// not match its declared type.
	TypeCheckErr
	// CallConventionErr is raised at call time when positional arguments
	// are used where keyword-only passing is required.
	CallConventionErr
	// ForwardRefErr is raised when a string-form type annotation cannot be
	// resolved in the available context.
	ForwardRefErr
)

func (err *Error) Error() string {
	prefix := ""
	if err.Fn != "" {
		prefix = fmt.Sprintf("in function %v ", err.Fn)
	}
	if len(err.Path) > 0 {
		prefix += strings.Join(err.Path, " ") + " "
	}
	switch err.Kind {
	case DeclarationErr:
		return fmt.Sprintf("declaration error: %v%v", prefix, err.Err)
	case TypeCheckErr:
		if err.Err != nil {
			return fmt.Sprintf("type error: %v%v", prefix, err.Err)
		}
		return fmt.Sprintf(
			"type error: %vvalue %v of type %v does not match expected type %v",
			prefix,
			err.Value,
			err.Actual,
			err.Expected,
		)
	case CallConventionErr:
		return fmt.Sprintf("call error: %v%v", prefix, err.Err)
	case ForwardRefErr:
		return fmt.Sprintf("unresolved reference: %v%v", prefix, err.Err)
	default:
		return err.Err.Error()
	}
}

// Unwrap exposes the wrapped detail for errors.Is and errors.As.
func (err *Error) Unwrap() error { return err.Err }

// WithPath returns a copy of the error with extra access-path segments
// prepended, used while unwinding out of nested containers.
func (err *Error) WithPath(segments ...string) *Error {
	dup := *err
	dup.Path = append(append([]string{}, segments...), err.Path...)
	return &dup
}

// New creates an error of the given kind wrapping a formatted message.
func New(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// IsKind reports whether err is a pedant error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.Kind == kind
}

// IsDeclaration reports whether err is a declaration-time error.
func IsDeclaration(err error) bool { return IsKind(err, DeclarationErr) }

// IsTypeCheck reports whether err is a call-time type violation.
func IsTypeCheck(err error) bool { return IsKind(err, TypeCheckErr) }

// IsCallConvention reports whether err is a call-convention violation.
func IsCallConvention(err error) bool { return IsKind(err, CallConventionErr) }

// IsForwardRef reports whether err is an unresolved forward reference.
func IsForwardRef(err error) bool { return IsKind(err, ForwardRefErr) }
